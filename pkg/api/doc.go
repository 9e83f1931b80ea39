/*
Package api exposes the monitoring HTTP surface.

	GET  /health           snapshot JSON, 503 when overall unhealthy
	GET  /health/detailed  snapshot plus runtime descriptors and log summary
	GET  /metrics          Prometheus text exposition
	GET  /alerts           current threshold evaluation with severity counts
	GET  /alerts/history   dispatched alert history
	GET  /ready            200 unless database or application is unhealthy
	GET  /live             process liveness with uptime and pid
	POST /simulate/{condition}  inject a canned alert through dispatch

The health endpoints perform live probes on every request; callers that
poll aggressively should cache responses themselves. Every request through
the server also feeds the rolling request recorder, and the same
instrumentation middleware is importable by the main backend.
*/
package api
