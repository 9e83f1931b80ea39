package probe

import (
	"context"
	"time"

	"github.com/gatherly/vitals/pkg/status"
)

// Result represents the outcome of probing one dependency.
type Result struct {
	Status       status.Status     `json:"status"`
	ResponseTime time.Duration     `json:"response_time"`
	Details      map[string]string `json:"details,omitempty"`
	CheckedAt    time.Time         `json:"checked_at"`
}

// Prober is the interface all dependency probes implement.
type Prober interface {
	// Name returns the service name the probe reports under.
	Name() string

	// Check performs one live round trip against the dependency and
	// classifies the elapsed time. Errors are absorbed into an unhealthy
	// Result, never returned.
	Check(ctx context.Context) Result
}

// failure builds the unconditional unhealthy result for a failed round trip.
// Timing is irrelevant once the dependency errored.
func failure(start time.Time, err error) Result {
	return Result{
		Status:       status.Unhealthy,
		ResponseTime: time.Since(start),
		Details:      map[string]string{"error": err.Error()},
		CheckedAt:    start,
	}
}
