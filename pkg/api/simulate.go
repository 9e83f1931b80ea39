package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gatherly/vitals/pkg/alert"
)

// cannedConditions are the synthetic alerts operators can inject to
// exercise the dispatch path without inducing real load.
var cannedConditions = map[string]alert.Event{
	"high_memory": {
		Severity:     alert.SeverityCritical,
		Message:      "simulated: memory usage at 95.0 exceeds critical threshold 85.0",
		Service:      "application",
		Metric:       alert.MetricMemory,
		Threshold:    85,
		CurrentValue: 95,
	},
	"slow_response": {
		Severity:     alert.SeverityCritical,
		Message:      "simulated: average response time at 3500ms exceeds critical threshold 2000ms",
		Service:      "application",
		Metric:       alert.MetricResponseTime,
		Threshold:    2000,
		CurrentValue: 3500,
	},
	"high_errors": {
		Severity:     alert.SeverityCritical,
		Message:      "simulated: error rate at 25.0% exceeds critical threshold 10.0%",
		Service:      "application",
		Metric:       alert.MetricErrorRate,
		Threshold:    10,
		CurrentValue: 25,
	},
	"disk_full": {
		Severity:     alert.SeverityCritical,
		Message:      "simulated: disk usage at 95.0% exceeds critical threshold 90.0%",
		Service:      "application",
		Metric:       alert.MetricDiskUsage,
		Threshold:    90,
		CurrentValue: 95,
	},
	"db_overload": {
		Severity:     alert.SeverityCritical,
		Message:      "simulated: connection count at 60 exceeds critical threshold 50",
		Service:      "database",
		Metric:       alert.MetricDBConns,
		Threshold:    50,
		CurrentValue: 60,
	},
}

// simulateHandler injects a canned alert through the real dispatch path.
func (s *Server) simulateHandler(w http.ResponseWriter, r *http.Request) {
	condition := r.PathValue("condition")

	ev, ok := cannedConditions[condition]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("unknown condition %q", condition),
		})
		return
	}
	ev.Timestamp = time.Now()

	dispatched := s.dispatcher.Dispatch(r.Context(), ev)
	s.logger.Info().
		Str("condition", condition).
		Bool("dispatched", dispatched).
		Msg("simulated alert")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"condition":  condition,
		"dispatched": dispatched,
		"alert":      ev,
	})
}
