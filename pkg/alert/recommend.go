package alert

// MetricCategory buckets metrics for remediation lookup. The mapping is a
// closed enum rather than substring matching on metric names, so adding a
// metric without categorizing it falls back to the generic advice instead
// of silently matching the wrong pattern.
type MetricCategory int

const (
	CategoryGeneral MetricCategory = iota
	CategoryMemory
	CategoryCPU
	CategoryLatency
	CategoryErrors
	CategoryDatabase
	CategoryDisk
	CategoryTraffic
	CategoryAvailability
)

// CategoryOf maps an evaluator metric onto its category.
func CategoryOf(metric Metric) MetricCategory {
	switch metric {
	case MetricMemory:
		return CategoryMemory
	case MetricCPU:
		return CategoryCPU
	case MetricResponseTime, MetricTrend:
		return CategoryLatency
	case MetricErrorRate, MetricErrorPattern:
		return CategoryErrors
	case MetricDBConns:
		return CategoryDatabase
	case MetricDiskUsage:
		return CategoryDisk
	case MetricRPS:
		return CategoryTraffic
	case MetricStatus:
		return CategoryAvailability
	default:
		return CategoryGeneral
	}
}

var remediations = map[MetricCategory][]string{
	CategoryMemory: {
		"inspect heap usage and recent deploys for leaks",
		"restart the service if usage keeps climbing",
		"raise the instance memory limit if load is legitimate",
	},
	CategoryCPU: {
		"profile hot request paths",
		"check for runaway background jobs",
		"scale out if sustained load is legitimate",
	},
	CategoryLatency: {
		"check slow query logs on the database",
		"review recent deploys for added round trips",
		"verify object storage latency",
	},
	CategoryErrors: {
		"inspect recent error logs for a common failure",
		"check downstream dependency health",
		"roll back the latest deploy if errors started with it",
	},
	CategoryDatabase: {
		"look for connection leaks in request handlers",
		"check for long-running transactions holding connections",
		"raise the pool limit only after ruling out leaks",
	},
	CategoryDisk: {
		"prune old log files and temporary uploads",
		"verify log rotation is running",
		"expand the volume if growth is legitimate",
	},
	CategoryTraffic: {
		"confirm the traffic is legitimate and not a scrape or attack",
		"enable rate limiting if abusive",
		"scale out if organic",
	},
	CategoryAvailability: {
		"check the failing service's own logs and probes",
		"verify network reachability from the backend",
		"fail over or restart the dependency if supported",
	},
	CategoryGeneral: {
		"review the triggering metric and recent system changes",
	},
}

// RecommendationsFor returns remediation suggestions for a metric, falling
// back to generic advice for uncategorized metrics.
func RecommendationsFor(metric Metric) []string {
	if recs, ok := remediations[CategoryOf(metric)]; ok {
		return recs
	}
	return remediations[CategoryGeneral]
}
