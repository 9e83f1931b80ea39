package alert

import "time"

// Severity classifies an alert event.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Metric names produced by the evaluator. The set is closed; the
// remediation lookup and cooldown policy key off these exact values.
const (
	MetricMemory       Metric = "memory"
	MetricCPU          Metric = "cpu"
	MetricResponseTime Metric = "response_time"
	MetricErrorRate    Metric = "error_rate"
	MetricErrorPattern Metric = "error_pattern"
	MetricDBConns      Metric = "db_connections"
	MetricRPS          Metric = "requests_per_sec"
	MetricDiskUsage    Metric = "disk_usage"
	MetricStatus       Metric = "status"
	MetricTrend        Metric = "performance_trend"
)

// Metric names one evaluated quantity.
type Metric string

// Event is one evaluated threshold breach. Events are ephemeral: produced
// by the evaluator, consumed immediately by the dispatcher.
type Event struct {
	Severity     Severity  `json:"severity"`
	Message      string    `json:"message"`
	Service      string    `json:"service"`
	Metric       Metric    `json:"metric"`
	Threshold    float64   `json:"threshold"`
	CurrentValue float64   `json:"current_value"`
	Timestamp    time.Time `json:"timestamp"`
}

// Key identifies an alert for cooldown and history purposes: two events
// with the same service and metric are the same alert.
func (e Event) Key() string {
	return e.Service + ":" + string(e.Metric)
}
