/*
Package status defines the three-valued health status shared across Vitals
and the precedence rule used to aggregate it.

The overall status of a snapshot is always the worst of its constituent
service statuses:

	overall := status.Worst(db.Status, storage.Status, app.Status)

Probes classify their measured round-trip times with LatencyThresholds,
which hold a warning and a critical bound per dependency.
*/
package status
