package api

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gatherly/vitals/pkg/alert"
	"github.com/gatherly/vitals/pkg/export"
	"github.com/gatherly/vitals/pkg/status"
	"github.com/gatherly/vitals/pkg/store"
)

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// healthHandler returns the current snapshot, 503 when overall unhealthy.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.agg.Snapshot(r.Context())

	code := http.StatusOK
	if snap.Status == status.Unhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, snap)
}

type runtimeInfo struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	PID        int    `json:"pid"`
	Hostname   string `json:"hostname"`
	Version    string `json:"version"`
}

type detailedResponse struct {
	Snapshot     interface{}        `json:"snapshot"`
	Runtime      runtimeInfo        `json:"runtime"`
	PathAverages map[string]float64 `json:"path_averages_ms,omitempty"`
	LogSummary   *store.LogSummary  `json:"log_summary,omitempty"`
}

// detailedHandler extends the snapshot with process descriptors, per-path
// averages, and the request-log summary when a log store is configured.
func (s *Server) detailedHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.agg.Snapshot(r.Context())
	hostname, _ := os.Hostname()

	resp := detailedResponse{
		Snapshot: snap,
		Runtime: runtimeInfo{
			GoVersion:  runtime.Version(),
			Goroutines: runtime.NumGoroutine(),
			PID:        os.Getpid(),
			Hostname:   hostname,
			Version:    s.version,
		},
		PathAverages: s.recorder.PathAverages(),
	}

	if s.logs != nil {
		summary, err := s.logs.SummarizeRequestLogs(r.Context(), time.Now().Add(-24*time.Hour))
		if err != nil {
			s.logger.Warn().Err(err).Msg("request log summary unavailable")
		} else {
			resp.LogSummary = &summary
		}
	}

	code := http.StatusOK
	if snap.Status == status.Unhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// metricsHandler serves the Prometheus exposition. A rendering failure
// yields a comment line and a 500, never an empty or malformed payload.
func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.agg.Snapshot(r.Context())

	out, err := s.exporter.Render(snap)
	if err != nil {
		s.logger.Error().Err(err).Msg("metrics rendering failed")
		w.Header().Set("Content-Type", export.ContentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("# metrics rendering failed\n"))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

type alertsResponse struct {
	Alerts      []alert.Event          `json:"alerts"`
	Counts      map[alert.Severity]int `json:"counts"`
	EvaluatedAt time.Time              `json:"evaluated_at"`
}

// alertsHandler evaluates the current snapshot and reports the events and
// their counts by severity without dispatching anything.
func (s *Server) alertsHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.agg.Snapshot(r.Context())
	events := s.thresholds.Evaluate(snap)

	counts := map[alert.Severity]int{
		alert.SeverityCritical: 0,
		alert.SeverityWarning:  0,
		alert.SeverityInfo:     0,
	}
	for _, ev := range events {
		counts[ev.Severity]++
	}

	writeJSON(w, http.StatusOK, alertsResponse{
		Alerts:      events,
		Counts:      counts,
		EvaluatedAt: time.Now(),
	})
}

// historyHandler lists dispatched alerts, oldest first. Active counts
// records not yet resolved or closed.
func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	h := s.dispatcher.History()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": h.Records(),
		"active":  len(h.Active()),
	})
}

// readyHandler reports readiness: the database and the application itself
// must not be unhealthy. Storage being down degrades but does not block
// traffic.
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.agg.Snapshot(r.Context())

	ready := true
	checks := make(map[string]string)
	for _, name := range []string{"database", "application"} {
		svc, ok := snap.Services[name]
		if !ok || svc.Status == status.Unhealthy {
			ready = false
			checks[name] = "not ready"
			continue
		}
		checks[name] = "ok"
	}

	code := http.StatusOK
	state := "ready"
	if !ready {
		code = http.StatusServiceUnavailable
		state = "not ready"
	}
	writeJSON(w, code, map[string]interface{}{
		"status":    state,
		"checks":    checks,
		"timestamp": time.Now(),
	})
}

// liveHandler is the process liveness probe.
func (s *Server) liveHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "alive",
		"uptime": time.Since(s.startedAt).Truncate(time.Second).String(),
		"pid":    os.Getpid(),
	})
}
