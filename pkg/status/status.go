package status

import "time"

// Status represents the health state of a service or of the system as a whole.
type Status string

const (
	Healthy   Status = "healthy"
	Degraded  Status = "degraded"
	Unhealthy Status = "unhealthy"
)

// rank orders statuses by severity. Higher is worse.
func rank(s Status) int {
	switch s {
	case Unhealthy:
		return 2
	case Degraded:
		return 1
	default:
		return 0
	}
}

// Worst returns the most severe status of the given set under the
// precedence unhealthy > degraded > healthy. An empty set is healthy.
func Worst(statuses ...Status) Status {
	worst := Healthy
	for _, s := range statuses {
		if rank(s) > rank(worst) {
			worst = s
		}
	}
	return worst
}

// LatencyThresholds classifies a response time into a status using a
// warning and a critical bound.
type LatencyThresholds struct {
	Warn     time.Duration
	Critical time.Duration
}

// Classify maps an observed response time onto a status: below Warn is
// healthy, below Critical is degraded, anything else is unhealthy.
func (t LatencyThresholds) Classify(elapsed time.Duration) Status {
	switch {
	case elapsed < t.Warn:
		return Healthy
	case elapsed < t.Critical:
		return Degraded
	default:
		return Unhealthy
	}
}
