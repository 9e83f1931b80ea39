package alert

import "time"

// CooldownPolicy gives the minimum time between two dispatched alerts
// sharing a key, by metric. Slow-changing resource metrics get long
// windows; error-pattern metrics short ones so regressions resurface fast.
type CooldownPolicy struct {
	Default   time.Duration
	PerMetric map[Metric]time.Duration
}

// DefaultCooldowns returns the documented cooldown table.
func DefaultCooldowns() CooldownPolicy {
	return CooldownPolicy{
		Default: 5 * time.Minute,
		PerMetric: map[Metric]time.Duration{
			MetricDiskUsage:    15 * time.Minute,
			MetricDBConns:      15 * time.Minute,
			MetricErrorRate:    2 * time.Minute,
			MetricErrorPattern: 2 * time.Minute,
			MetricTrend:        10 * time.Minute,
		},
	}
}

// For returns the cooldown window for a metric.
func (p CooldownPolicy) For(metric Metric) time.Duration {
	if d, ok := p.PerMetric[metric]; ok {
		return d
	}
	return p.Default
}
