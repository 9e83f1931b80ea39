package alert

import (
	"fmt"
	"time"

	"github.com/gatherly/vitals/pkg/aggregator"
	"github.com/gatherly/vitals/pkg/status"
)

// Thresholds is the rule table the evaluator checks a snapshot against.
// Every rule is independent; several can fire from one snapshot.
type Thresholds struct {
	MemoryWarnPct float64
	MemoryCritPct float64

	ResponseWarnMS float64
	ResponseCritMS float64

	// Error-rate rules are guarded by a minimum request count so a handful
	// of early failures cannot fire noise alerts.
	ErrorRateWarnPct     float64
	ErrorRateCritPct     float64
	ErrorRateMinRequests uint64

	DBConnWarn int
	DBConnCrit int

	// Requests-per-second has a warning level only.
	RPSWarn float64

	DiskWarnPct float64
	DiskCritPct float64

	CPUWarnPct float64
	CPUCritPct float64

	// Repeated-error-pattern rule.
	PatternMinRequests uint64
	PatternMinErrors   uint64
	PatternRatePct     float64

	// Performance-trend rule over the most recent global samples.
	TrendSamples int
	TrendDeltaMS float64
	TrendAvgMS   float64
}

// DefaultThresholds returns the documented rule table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MemoryWarnPct:        75,
		MemoryCritPct:        85,
		ResponseWarnMS:       1000,
		ResponseCritMS:       2000,
		ErrorRateWarnPct:     5,
		ErrorRateCritPct:     10,
		ErrorRateMinRequests: 10,
		DBConnWarn:           30,
		DBConnCrit:           50,
		RPSWarn:              100,
		DiskWarnPct:          80,
		DiskCritPct:          90,
		CPUWarnPct:           85,
		CPUCritPct:           95,
		PatternMinRequests:   20,
		PatternMinErrors:     5,
		PatternRatePct:       15,
		TrendSamples:         5,
		TrendDeltaMS:         500,
		TrendAvgMS:           800,
	}
}

// SelfCheckBounds exposes the memory and CPU limits for the aggregator's
// application pseudo-service, keeping snapshot status and alerting in
// step with a single rule table.
func (t Thresholds) SelfCheckBounds() aggregator.Bounds {
	return aggregator.Bounds{
		MemoryWarnPct: t.MemoryWarnPct,
		MemoryCritPct: t.MemoryCritPct,
		CPUWarnPct:    t.CPUWarnPct,
		CPUCritPct:    t.CPUCritPct,
	}
}

// Evaluate inspects a snapshot and returns the alert events it warrants.
// It is a pure function of its inputs: no clock reads besides event
// timestamps, no hidden state.
func (t Thresholds) Evaluate(snap aggregator.Snapshot) []Event {
	var events []Event
	m := snap.Metrics

	if ev, ok := banded(m.MemoryPercent, t.MemoryWarnPct, t.MemoryCritPct,
		"application", MetricMemory, "memory usage"); ok {
		events = append(events, ev)
	}

	if ev, ok := banded(m.AvgResponseMS, t.ResponseWarnMS, t.ResponseCritMS,
		"application", MetricResponseTime, "average response time"); ok {
		events = append(events, ev)
	}

	if m.TotalRequests >= t.ErrorRateMinRequests {
		if ev, ok := banded(m.ErrorRatePct, t.ErrorRateWarnPct, t.ErrorRateCritPct,
			"application", MetricErrorRate, "error rate"); ok {
			events = append(events, ev)
		}
	}

	if ev, ok := banded(float64(m.DBConnections), float64(t.DBConnWarn), float64(t.DBConnCrit),
		"database", MetricDBConns, "connection count"); ok {
		events = append(events, ev)
	}

	if m.RequestsPerSec > t.RPSWarn {
		events = append(events, Event{
			Severity:     SeverityWarning,
			Message:      fmt.Sprintf("request rate high: %.1f req/s (warning above %.1f)", m.RequestsPerSec, t.RPSWarn),
			Service:      "application",
			Metric:       MetricRPS,
			Threshold:    t.RPSWarn,
			CurrentValue: m.RequestsPerSec,
			Timestamp:    time.Now(),
		})
	}

	if ev, ok := banded(m.DiskPercent, t.DiskWarnPct, t.DiskCritPct,
		"application", MetricDiskUsage, "disk usage"); ok {
		events = append(events, ev)
	}

	if ev, ok := banded(m.CPUPercent, t.CPUWarnPct, t.CPUCritPct,
		"application", MetricCPU, "cpu usage"); ok {
		events = append(events, ev)
	}

	events = append(events, t.serviceStatusEvents(snap)...)

	if ev, ok := t.errorPattern(m); ok {
		events = append(events, ev)
	}
	if ev, ok := t.performanceTrend(snap.RecentSamples); ok {
		events = append(events, ev)
	}

	return events
}

// banded emits at most one event for a warn/critical threshold pair: the
// critical band wins, the warning band otherwise, nothing below warn.
func banded(value, warn, crit float64, service string, metric Metric, label string) (Event, bool) {
	var severity Severity
	var threshold float64
	switch {
	case value > crit:
		severity, threshold = SeverityCritical, crit
	case value > warn:
		severity, threshold = SeverityWarning, warn
	default:
		return Event{}, false
	}

	return Event{
		Severity:     severity,
		Message:      fmt.Sprintf("%s at %.1f exceeds %s threshold %.1f", label, value, severity, threshold),
		Service:      service,
		Metric:       metric,
		Threshold:    threshold,
		CurrentValue: value,
		Timestamp:    time.Now(),
	}, true
}

// serviceStatusEvents maps a degraded service to a warning and an
// unhealthy one to a critical.
func (t Thresholds) serviceStatusEvents(snap aggregator.Snapshot) []Event {
	var events []Event
	for name, svc := range snap.Services {
		var severity Severity
		switch svc.Status {
		case status.Degraded:
			severity = SeverityWarning
		case status.Unhealthy:
			severity = SeverityCritical
		default:
			continue
		}
		events = append(events, Event{
			Severity:  severity,
			Message:   fmt.Sprintf("service %s is %s", name, svc.Status),
			Service:   name,
			Metric:    MetricStatus,
			Timestamp: time.Now(),
		})
	}
	return events
}

// errorPattern fires a critical when a sustained error burst is visible:
// enough traffic, enough errors, and a rate well above the plain
// error-rate warning.
func (t Thresholds) errorPattern(m aggregator.Metrics) (Event, bool) {
	if m.TotalRequests < t.PatternMinRequests || m.TotalErrors < t.PatternMinErrors {
		return Event{}, false
	}
	if m.ErrorRatePct <= t.PatternRatePct {
		return Event{}, false
	}
	return Event{
		Severity: SeverityCritical,
		Message: fmt.Sprintf("repeated error pattern: %d errors in %d requests (%.1f%%)",
			m.TotalErrors, m.TotalRequests, m.ErrorRatePct),
		Service:      "application",
		Metric:       MetricErrorPattern,
		Threshold:    t.PatternRatePct,
		CurrentValue: m.ErrorRatePct,
		Timestamp:    time.Now(),
	}, true
}

// performanceTrend fires a warning when the last TrendSamples response
// times are both rising and slow on average.
func (t Thresholds) performanceTrend(samples []float64) (Event, bool) {
	if len(samples) < t.TrendSamples {
		return Event{}, false
	}
	recent := samples[len(samples)-t.TrendSamples:]

	delta := recent[len(recent)-1] - recent[0]
	var sum float64
	for _, s := range recent {
		sum += s
	}
	avg := sum / float64(len(recent))

	if delta <= t.TrendDeltaMS || avg <= t.TrendAvgMS {
		return Event{}, false
	}
	return Event{
		Severity: SeverityWarning,
		Message: fmt.Sprintf("response times trending up: +%.0fms over last %d requests, avg %.0fms",
			delta, t.TrendSamples, avg),
		Service:      "application",
		Metric:       MetricTrend,
		Threshold:    t.TrendAvgMS,
		CurrentValue: avg,
		Timestamp:    time.Now(),
	}, true
}
