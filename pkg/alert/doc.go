/*
Package alert contains the threshold evaluator, the alert dispatcher, and
the in-process alert history.

The evaluator is a pure function from a health snapshot to zero or more
alert events, checked against a fixed rule table (Thresholds). Rules are
independent: one snapshot can fire several alerts at once. Error-rate
rules carry a minimum-traffic guard so a handful of requests cannot
produce noise.

The dispatcher owns the side effects. Each event is keyed by
service+metric; a key that fired within its metric's cooldown window is
suppressed silently. Delivered events fan out to notification channels
(one goroutine per channel, failures collected and logged individually),
append a history record, and file an anomaly for human triage. None of
these failures ever propagate to the dispatcher's caller.

Alert lifecycle: triggered → acknowledged → resolved, or triggered →
resolved directly. A later breach of the same key creates a fresh record;
resolved alerts are never reopened. The closed state exists for operator
tooling only.
*/
package alert
