package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/gatherly/vitals/pkg/aggregator"
	"github.com/gatherly/vitals/pkg/alert"
	"github.com/gatherly/vitals/pkg/export"
	"github.com/gatherly/vitals/pkg/log"
	"github.com/gatherly/vitals/pkg/reqmetrics"
	"github.com/gatherly/vitals/pkg/store"
)

// LogSummarizer is the narrow read interface to the backend's request log.
// *store.DB implements it; nil disables the summary block in detailed
// health responses.
type LogSummarizer interface {
	SummarizeRequestLogs(ctx context.Context, since time.Time) (store.LogSummary, error)
}

// Server exposes the monitoring HTTP surface: health, readiness, liveness,
// metrics, alerts, and alert simulation.
type Server struct {
	agg        *aggregator.Aggregator
	thresholds alert.Thresholds
	dispatcher *alert.Dispatcher
	exporter   *export.Exporter
	recorder   *reqmetrics.Recorder
	logs       LogSummarizer
	version    string
	startedAt  time.Time
	mux        *http.ServeMux
	httpSrv    *http.Server
	logger     zerolog.Logger
}

// NewServer wires the monitoring components into an HTTP handler.
func NewServer(agg *aggregator.Aggregator, thresholds alert.Thresholds, dispatcher *alert.Dispatcher,
	exporter *export.Exporter, recorder *reqmetrics.Recorder, logs LogSummarizer, version string) *Server {

	s := &Server{
		agg:        agg,
		thresholds: thresholds,
		dispatcher: dispatcher,
		exporter:   exporter,
		recorder:   recorder,
		logs:       logs,
		version:    version,
		startedAt:  time.Now(),
		mux:        http.NewServeMux(),
		logger:     log.WithComponent("api"),
	}

	s.mux.HandleFunc("GET /health", s.instrument(s.healthHandler))
	s.mux.HandleFunc("GET /health/detailed", s.instrument(s.detailedHandler))
	s.mux.HandleFunc("GET /metrics", s.instrument(s.metricsHandler))
	s.mux.HandleFunc("GET /alerts", s.instrument(s.alertsHandler))
	s.mux.HandleFunc("GET /alerts/history", s.instrument(s.historyHandler))
	s.mux.HandleFunc("GET /ready", s.instrument(s.readyHandler))
	s.mux.HandleFunc("GET /live", s.instrument(s.liveHandler))
	s.mux.HandleFunc("POST /simulate/{condition}", s.instrument(s.simulateHandler))

	return s
}

// Start serves until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info().Str("addr", addr).Msg("monitoring API listening")
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the mux for embedding in other servers.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Middleware wraps next with the same request instrumentation the
// monitoring routes use, so the backend's own handlers feed the shared
// recorder.
func (s *Server) Middleware(next http.Handler) http.Handler {
	return s.instrument(next.ServeHTTP)
}

// statusRecorder captures the response code for request metrics.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument feeds the request recorder after every completed request and
// converts panics in the aggregation plumbing into a plain 500. Such a
// panic is a bug, not a modeled failure; the endpoints still must answer.
func (s *Server) instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()

		defer func() {
			if p := recover(); p != nil {
				s.logger.Error().Interface("panic", p).Str("path", r.URL.Path).Msg("handler panicked")
				http.Error(rec, "internal error", http.StatusInternalServerError)
			}
			s.recorder.Record(r.URL.Path, time.Since(start), rec.code >= http.StatusInternalServerError)
		}()

		next(rec, r)
	}
}
