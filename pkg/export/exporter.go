package export

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"

	"github.com/gatherly/vitals/pkg/aggregator"
	"github.com/gatherly/vitals/pkg/status"
)

// ContentType is the exposition format served to scrapers.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// durationBuckets are the fixed response-time histogram bounds in ms.
var durationBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// Exporter renders health snapshots in the Prometheus text exposition
// format. It owns a private registry carrying the Go and process default
// collectors alongside the application instruments.
type Exporter struct {
	mu       sync.Mutex
	registry *prometheus.Registry

	overallStatus prometheus.Gauge
	serviceStatus *prometheus.GaugeVec
	memoryPct     prometheus.Gauge
	cpuPct        prometheus.Gauge
	diskPct       prometheus.Gauge
	dbConns       prometheus.Gauge
	requestRate   prometheus.Gauge
	avgResponseMS prometheus.Gauge
	uptimeSeconds prometheus.Gauge

	requestsTotal prometheus.Counter
	errorsTotal   prometheus.Counter
	duration      prometheus.Histogram

	// last-seen totals guard the counters against ever decreasing.
	lastRequests uint64
	lastErrors   uint64
}

// New creates an exporter with all instruments registered.
func New() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		overallStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vitals_overall_status",
			Help: "Overall health status (0 = healthy, 1 = degraded, 2 = unhealthy)",
		}),
		serviceStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vitals_service_status",
			Help: "Per-service health status (0 = healthy, 1 = degraded, 2 = unhealthy)",
		}, []string{"service"}),
		memoryPct: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vitals_memory_usage_percent",
			Help: "Process RSS relative to the configured total system memory",
		}),
		cpuPct: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vitals_cpu_usage_percent",
			Help: "Process CPU usage sampled over a 100ms window",
		}),
		diskPct: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vitals_disk_usage_percent",
			Help: "Used fraction of the configured data mount",
		}),
		dbConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vitals_db_connections",
			Help: "Current database pool connection count",
		}),
		requestRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vitals_requests_per_second",
			Help: "Total requests divided by process uptime (long-run average)",
		}),
		avgResponseMS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vitals_avg_response_time_ms",
			Help: "Average response time over the rolling sample ring",
		}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vitals_uptime_seconds",
			Help: "Process uptime in seconds",
		}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitals_http_requests_total",
			Help: "Total HTTP requests recorded",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitals_http_request_errors_total",
			Help: "Total HTTP requests recorded as errors",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vitals_http_request_duration_ms",
			Help:    "Response-time distribution of recorded requests",
			Buckets: durationBuckets,
		}),
	}

	e.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		e.overallStatus,
		e.serviceStatus,
		e.memoryPct,
		e.cpuPct,
		e.diskPct,
		e.dbConns,
		e.requestRate,
		e.avgResponseMS,
		e.uptimeSeconds,
		e.requestsTotal,
		e.errorsTotal,
		e.duration,
	)
	return e
}

func statusValue(s status.Status) float64 {
	switch s {
	case status.Unhealthy:
		return 2
	case status.Degraded:
		return 1
	default:
		return 0
	}
}

// Update pushes a snapshot's values into the instruments. Counters only
// advance: a snapshot reporting smaller totals than already seen (which
// would mean a recorder bug) leaves them untouched.
func (e *Exporter) Update(snap aggregator.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.overallStatus.Set(statusValue(snap.Status))
	for name, svc := range snap.Services {
		e.serviceStatus.WithLabelValues(name).Set(statusValue(svc.Status))
	}

	m := snap.Metrics
	e.memoryPct.Set(m.MemoryPercent)
	e.cpuPct.Set(m.CPUPercent)
	e.diskPct.Set(m.DiskPercent)
	e.dbConns.Set(float64(m.DBConnections))
	e.requestRate.Set(m.RequestsPerSec)
	e.avgResponseMS.Set(m.AvgResponseMS)
	e.uptimeSeconds.Set(m.UptimeSeconds)

	if m.TotalRequests > e.lastRequests {
		newRequests := m.TotalRequests - e.lastRequests

		// Feed the newest samples into the histogram: the ring holds at
		// most the last 1000, so under heavy load some observations are
		// lost to eviction, which the counter still accounts for.
		samples := snap.RecentSamples
		if uint64(len(samples)) > newRequests {
			samples = samples[uint64(len(samples))-newRequests:]
		}
		for _, s := range samples {
			e.duration.Observe(s)
		}

		e.requestsTotal.Add(float64(newRequests))
		e.lastRequests = m.TotalRequests
	}
	if m.TotalErrors > e.lastErrors {
		e.errorsTotal.Add(float64(m.TotalErrors - e.lastErrors))
		e.lastErrors = m.TotalErrors
	}
}

// Render updates the instruments from the snapshot and serializes the full
// registry, process defaults included, to the text exposition format.
func (e *Exporter) Render(snap aggregator.Snapshot) ([]byte, error) {
	e.Update(snap)

	families, err := e.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather: %w", err)
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return nil, fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return buf.Bytes(), nil
}
