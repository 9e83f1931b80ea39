package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gatherly/vitals/pkg/log"
	"github.com/gatherly/vitals/pkg/probe"
	"github.com/gatherly/vitals/pkg/reqmetrics"
	"github.com/gatherly/vitals/pkg/status"
	"github.com/gatherly/vitals/pkg/sysmetrics"
)

// Bounds holds the memory and CPU limits that classify the application
// pseudo-service. Callers derive them from the alerting threshold table
// so snapshot status and alerting cannot drift apart.
type Bounds struct {
	MemoryWarnPct float64
	MemoryCritPct float64
	CPUWarnPct    float64
	CPUCritPct    float64
}

// Metrics is the numeric block of a snapshot.
type Metrics struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	AvgResponseMS  float64 `json:"avg_response_ms"`
	MemoryRSS      uint64  `json:"memory_rss_bytes"`
	MemoryPercent  float64 `json:"memory_percent"`
	CPUPercent     float64 `json:"cpu_percent"`
	DiskPercent    float64 `json:"disk_percent"`
	DBConnections  int     `json:"db_connections"`
	TotalRequests  uint64  `json:"total_requests"`
	TotalErrors    uint64  `json:"total_errors"`
	ErrorRatePct   float64 `json:"error_rate_pct"`
	RequestsPerSec float64 `json:"requests_per_sec"`
}

// Snapshot is one aggregated, timestamped view of system health. It is
// created fresh on every call and immutable once returned.
type Snapshot struct {
	Status    status.Status           `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Services  map[string]probe.Result `json:"services"`
	Metrics   Metrics                 `json:"metrics"`

	// RecentSamples carries the recorder's global ring (oldest-first, ms)
	// for trend evaluation. Not serialized.
	RecentSamples []float64 `json:"-"`
}

// ConnectionCounter reports the current database connection count.
// *probe.DatabaseProber implements it.
type ConnectionCounter interface {
	Connections() int
}

// Aggregator combines probe results, self metrics, and request metrics
// into snapshots.
type Aggregator struct {
	probes   []probe.Prober
	sys      *sysmetrics.Collector
	recorder *reqmetrics.Recorder
	conns    ConnectionCounter
	bounds   Bounds
	logger   zerolog.Logger
}

// New creates an aggregator. conns may be nil when no database pool is
// configured.
func New(probes []probe.Prober, sys *sysmetrics.Collector, recorder *reqmetrics.Recorder, conns ConnectionCounter, bounds Bounds) *Aggregator {
	return &Aggregator{
		probes:   probes,
		sys:      sys,
		recorder: recorder,
		conns:    conns,
		bounds:   bounds,
		logger:   log.WithComponent("aggregator"),
	}
}

// Snapshot runs all probes concurrently, samples self metrics, reads the
// request recorder, and derives the overall status as the worst of all
// service statuses. Every call performs live I/O against the probed
// dependencies; callers on hot paths should cache the result, not this
// component.
func (a *Aggregator) Snapshot(ctx context.Context) Snapshot {
	results := make([]probe.Result, len(a.probes))

	var wg sync.WaitGroup
	for i, p := range a.probes {
		wg.Add(1)
		go func(i int, p probe.Prober) {
			defer wg.Done()
			results[i] = p.Check(ctx)
		}(i, p)
	}

	sample := a.sys.Sample(ctx)
	wg.Wait()

	services := make(map[string]probe.Result, len(a.probes)+1)
	statuses := make([]status.Status, 0, len(a.probes)+1)
	for i, p := range a.probes {
		services[p.Name()] = results[i]
		statuses = append(statuses, results[i].Status)
		if results[i].Status == status.Unhealthy {
			svcLog := log.WithService(p.Name())
			svcLog.Warn().
				Str("error", results[i].Details["error"]).
				Msg("dependency probe unhealthy")
		}
	}

	app := a.selfCheck(sample)
	services["application"] = app
	statuses = append(statuses, app.Status)

	stats := a.recorder.Stats()

	metrics := Metrics{
		UptimeSeconds:  sample.Uptime.Seconds(),
		AvgResponseMS:  stats.AvgResponseMS,
		MemoryRSS:      sample.MemoryRSS,
		MemoryPercent:  sample.MemoryPercent,
		CPUPercent:     sample.CPUPercent,
		DiskPercent:    sample.DiskPercent,
		TotalRequests:  stats.TotalRequests,
		TotalErrors:    stats.TotalErrors,
		ErrorRatePct:   stats.ErrorRatePct,
		RequestsPerSec: stats.RequestsPerSec,
	}
	if a.conns != nil {
		metrics.DBConnections = a.conns.Connections()
	}

	overall := status.Worst(statuses...)
	if overall != status.Healthy {
		a.logger.Warn().Str("status", string(overall)).Msg("system health not nominal")
	}

	return Snapshot{
		Status:        overall,
		Timestamp:     time.Now(),
		Services:      services,
		Metrics:       metrics,
		RecentSamples: stats.RecentSamples,
	}
}

// selfCheck turns the process sample into the application pseudo-service.
func (a *Aggregator) selfCheck(sample sysmetrics.Sample) probe.Result {
	st := status.Healthy
	switch {
	case sample.MemoryPercent > a.bounds.MemoryCritPct || sample.CPUPercent > a.bounds.CPUCritPct:
		st = status.Unhealthy
	case sample.MemoryPercent > a.bounds.MemoryWarnPct || sample.CPUPercent > a.bounds.CPUWarnPct:
		st = status.Degraded
	}

	return probe.Result{
		Status:    st,
		CheckedAt: time.Now(),
		Details: map[string]string{
			"uptime": sample.Uptime.Truncate(time.Second).String(),
		},
	}
}
