/*
Package aggregator builds point-in-time health snapshots.

A snapshot combines three sources: live dependency probes (run concurrently,
no shared state between them), a self metrics sample for the process, and
the rolling request recorder. The overall status is always the worst of the
constituent service statuses under the precedence

	unhealthy > degraded > healthy

Snapshot performs real I/O on every call. It is the single read path for
the threshold evaluator, the metrics exporter, and the health endpoints;
any caching belongs in those callers, never here.
*/
package aggregator
