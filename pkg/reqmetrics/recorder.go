package reqmetrics

import (
	"sync"
	"time"
)

const (
	// GlobalSampleCap bounds the global response-time ring.
	GlobalSampleCap = 1000

	// PathSampleCap bounds each per-path response-time ring.
	PathSampleCap = 100
)

// Stats is a derived, read-only view of the recorder.
type Stats struct {
	TotalRequests   uint64  `json:"total_requests"`
	TotalErrors     uint64  `json:"total_errors"`
	AvgResponseMS   float64 `json:"avg_response_ms"`
	RequestsPerSec  float64 `json:"requests_per_sec"`
	ErrorRatePct    float64 `json:"error_rate_pct"`
	TrackedPaths    int     `json:"tracked_paths"`
	// RecentSamples holds the global ring contents oldest-first, in ms.
	RecentSamples []float64 `json:"-"`
}

type pathRing struct {
	samples  []float64
	lastSeen time.Time
}

// Recorder is the process-wide rolling store of request metrics. It is fed
// synchronously by the HTTP layer on every completed request. Counters are
// monotonic for the process lifetime; sample rings evict oldest-first at
// their caps.
type Recorder struct {
	mu          sync.Mutex
	startedAt   time.Time
	totalReqs   uint64
	totalErrors uint64
	samples     []float64
	paths       map[string]*pathRing
}

// NewRecorder creates an empty recorder; uptime for the requests-per-second
// figure is measured from this call.
func NewRecorder() *Recorder {
	return &Recorder{
		startedAt: time.Now(),
		samples:   make([]float64, 0, GlobalSampleCap),
		paths:     make(map[string]*pathRing),
	}
}

// Record registers one completed request. It never blocks on I/O and is
// safe for concurrent use.
func (r *Recorder) Record(path string, elapsed time.Duration, isError bool) {
	ms := float64(elapsed.Milliseconds())

	r.mu.Lock()
	defer r.mu.Unlock()

	r.totalReqs++
	if isError {
		r.totalErrors++
	}

	if len(r.samples) >= GlobalSampleCap {
		r.samples = r.samples[1:]
	}
	r.samples = append(r.samples, ms)

	ring, ok := r.paths[path]
	if !ok {
		ring = &pathRing{samples: make([]float64, 0, PathSampleCap)}
		r.paths[path] = ring
	}
	if len(ring.samples) >= PathSampleCap {
		ring.samples = ring.samples[1:]
	}
	ring.samples = append(ring.samples, ms)
	ring.lastSeen = time.Now()
}

// Stats derives the current aggregate view. RequestsPerSec is the total
// divided by process uptime, a long-run average rather than a sliding
// window; long-uptime processes underestimate recent bursts. The alerting
// thresholds are tuned against this definition, so it stays as is.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{
		TotalRequests: r.totalReqs,
		TotalErrors:   r.totalErrors,
		TrackedPaths:  len(r.paths),
		RecentSamples: append([]float64(nil), r.samples...),
	}

	if len(r.samples) > 0 {
		var sum float64
		for _, s := range r.samples {
			sum += s
		}
		stats.AvgResponseMS = sum / float64(len(r.samples))
	}

	if uptime := time.Since(r.startedAt).Seconds(); uptime > 0 {
		stats.RequestsPerSec = float64(r.totalReqs) / uptime
	}

	if r.totalReqs > 0 {
		stats.ErrorRatePct = float64(r.totalErrors) / float64(r.totalReqs) * 100
	}

	return stats
}

// PathAverages returns the average response time per tracked path in ms.
func (r *Recorder) PathAverages() map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	averages := make(map[string]float64, len(r.paths))
	for path, ring := range r.paths {
		if len(ring.samples) == 0 {
			continue
		}
		var sum float64
		for _, s := range ring.samples {
			sum += s
		}
		averages[path] = sum / float64(len(ring.samples))
	}
	return averages
}

// Cleanup drops per-path rings that have not seen a request within maxAge.
// Counters and the global ring are untouched; the periodic loop calls this
// to keep the path map from growing without bound.
func (r *Recorder) Cleanup(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for path, ring := range r.paths {
		if ring.lastSeen.Before(cutoff) {
			delete(r.paths, path)
			removed++
		}
	}
	return removed
}
