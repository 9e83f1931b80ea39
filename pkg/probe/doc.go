/*
Package probe implements live health checks against the dependencies of the
Gatherly backend.

Each probe performs one minimal round trip (a database ping, a bucket
existence check), measures the elapsed wall time, and classifies it into
healthy, degraded, or unhealthy using per-dependency latency thresholds. A
round-trip error short-circuits to unhealthy regardless of timing, with the
error message carried in the result's detail map.

Probes implement the Prober interface:

	type Prober interface {
		Name() string
		Check(ctx context.Context) Result
	}

Every Check enforces its own timeout so a stalled dependency cannot hold up
the whole snapshot. Probes never return errors; failure is data.
*/
package probe
