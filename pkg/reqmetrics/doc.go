/*
Package reqmetrics keeps in-process rolling request metrics fed by the HTTP
layer: monotonic request and error counters, a global response-time ring
capped at 1000 samples, and per-path rings capped at 100 samples each.
Insertion at capacity always evicts the oldest sample.

The requests-per-second figure in Stats is total requests divided by
process uptime. This is deliberately a long-run average, not a recent
rate; it underestimates bursts on long-running processes, and the alert
thresholds downstream were tuned against exactly this definition.
*/
package reqmetrics
