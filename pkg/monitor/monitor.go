package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gatherly/vitals/pkg/aggregator"
	"github.com/gatherly/vitals/pkg/alert"
	"github.com/gatherly/vitals/pkg/log"
	"github.com/gatherly/vitals/pkg/reqmetrics"
)

// pathRetention is how long an idle path keeps its response-time ring
// before the hourly cleanup discards it.
const pathRetention = 24 * time.Hour

// Monitor drives the periodic evaluation and cleanup loops.
type Monitor struct {
	agg        *aggregator.Aggregator
	thresholds alert.Thresholds
	dispatcher *alert.Dispatcher
	recorder   *reqmetrics.Recorder

	checkInterval   time.Duration
	cleanupInterval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
	logger zerolog.Logger
}

// New creates a monitor. checkInterval governs threshold evaluation,
// cleanupInterval governs stale path-metric eviction.
func New(agg *aggregator.Aggregator, thresholds alert.Thresholds, dispatcher *alert.Dispatcher,
	recorder *reqmetrics.Recorder, checkInterval, cleanupInterval time.Duration) *Monitor {

	return &Monitor{
		agg:             agg,
		thresholds:      thresholds,
		dispatcher:      dispatcher,
		recorder:        recorder,
		checkInterval:   checkInterval,
		cleanupInterval: cleanupInterval,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
		logger:          log.WithComponent("monitor"),
	}
}

// Start launches the background loops. The first evaluation runs
// immediately so a freshly started process alerts on pre-existing
// conditions without waiting a full interval.
func (m *Monitor) Start(ctx context.Context) {
	checkTicker := time.NewTicker(m.checkInterval)
	cleanupTicker := time.NewTicker(m.cleanupInterval)

	go func() {
		defer close(m.doneCh)
		defer checkTicker.Stop()
		defer cleanupTicker.Stop()

		m.evaluate(ctx)

		for {
			select {
			case <-checkTicker.C:
				m.evaluate(ctx)
			case <-cleanupTicker.C:
				m.cleanup()
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	m.logger.Info().
		Dur("check_interval", m.checkInterval).
		Dur("cleanup_interval", m.cleanupInterval).
		Msg("monitor loops started")
}

// Stop halts the loops and waits for the current iteration to finish.
func (m *Monitor) Stop() {
	close(m.stopCh)
	<-m.doneCh
}

// evaluate takes one snapshot, runs the threshold rules, and dispatches
// every resulting event. Dispatch applies its own cooldown suppression,
// so firing the full event list each cycle is safe.
func (m *Monitor) evaluate(ctx context.Context) {
	snap := m.agg.Snapshot(ctx)
	events := m.thresholds.Evaluate(snap)
	if len(events) == 0 {
		return
	}

	delivered := 0
	for _, ev := range events {
		if m.dispatcher.Dispatch(ctx, ev) {
			delivered++
		}
	}
	m.logger.Info().
		Int("evaluated", len(events)).
		Int("delivered", delivered).
		Str("status", string(snap.Status)).
		Msg("evaluation cycle complete")
}

func (m *Monitor) cleanup() {
	removed := m.recorder.Cleanup(pathRetention)
	if removed > 0 {
		m.logger.Info().Int("paths", removed).Msg("stale path metrics evicted")
	}
}
