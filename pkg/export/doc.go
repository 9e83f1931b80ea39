/*
Package export renders health snapshots as Prometheus text exposition.

The exporter keeps a private registry: gauges for point-in-time values
(status, memory, CPU, disk, connection count, request rate), counters for
the monotonic request totals, and a fixed-bucket histogram for the
response-time distribution. The Go and process default collectors are
registered too, so scrapers see process_cpu_seconds_total and
process_start_time_seconds alongside the application metrics.

Counters are fed by delta against the last totals seen and can therefore
never decrease across Render calls, whatever the underlying snapshot says.
*/
package export
