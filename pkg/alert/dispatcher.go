package alert

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gatherly/vitals/pkg/log"
	"github.com/gatherly/vitals/pkg/notify"
	"github.com/gatherly/vitals/pkg/store"
)

// AnomalyFiler persists anomaly records for later human triage.
// *store.DB implements it.
type AnomalyFiler interface {
	FileAnomaly(ctx context.Context, a *store.Anomaly) error
}

// Dispatcher applies cooldown suppression to alert events, fans them out
// to notification channels, and records history. Dispatch never returns an
// error: channel and anomaly-filing failures are logged and absorbed so
// alerting can never break its caller.
type Dispatcher struct {
	mu        sync.Mutex
	lastFired map[string]time.Time

	cooldowns CooldownPolicy
	channels  []notify.Channel
	history   *History
	anomalies AnomalyFiler
	logger    zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewDispatcher creates a dispatcher. anomalies may be nil when no
// database is configured; filing is then skipped.
func NewDispatcher(cooldowns CooldownPolicy, channels []notify.Channel, history *History, anomalies AnomalyFiler) *Dispatcher {
	return &Dispatcher{
		lastFired: make(map[string]time.Time),
		cooldowns: cooldowns,
		channels:  channels,
		history:   history,
		anomalies: anomalies,
		logger:    log.WithComponent("dispatcher"),
		now:       time.Now,
	}
}

// History exposes the dispatcher's history ring.
func (d *Dispatcher) History() *History {
	return d.history
}

// Dispatch delivers one alert event. It returns true when the event was
// delivered and false when cooldown suppressed it.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) bool {
	key := ev.Key()
	window := d.cooldowns.For(ev.Metric)
	now := d.now()

	d.mu.Lock()
	if last, ok := d.lastFired[key]; ok && now.Sub(last) < window {
		d.mu.Unlock()
		d.logger.Debug().
			Str("alert_key", key).
			Dur("cooldown", window).
			Dur("since_last", now.Sub(last)).
			Msg("alert suppressed by cooldown")
		return false
	}
	d.lastFired[key] = now
	d.mu.Unlock()

	notified := d.fanOut(ctx, ev)

	d.history.Append(HistoryRecord{
		Key:       key,
		Timestamp: now,
		Message:   ev.Message,
		Severity:  ev.Severity,
		Status:    StatusTriggered,
		Channels:  notified,
		Metadata: map[string]string{
			"service":       ev.Service,
			"metric":        string(ev.Metric),
			"threshold":     strconv.FormatFloat(ev.Threshold, 'f', -1, 64),
			"current_value": strconv.FormatFloat(ev.CurrentValue, 'f', -1, 64),
		},
	})

	d.fileAnomaly(ctx, ev)
	return true
}

// fanOut sends the event to every channel selected for its severity, one
// goroutine per channel, and collects each result individually. Returns
// the names of channels that accepted the notification.
func (d *Dispatcher) fanOut(ctx context.Context, ev Event) []string {
	selected := d.selectChannels(ev.Severity)
	if len(selected) == 0 {
		return nil
	}

	n := notify.Notification{
		Severity:     string(ev.Severity),
		Service:      ev.Service,
		Metric:       string(ev.Metric),
		Message:      ev.Message,
		CurrentValue: ev.CurrentValue,
		Threshold:    ev.Threshold,
		Timestamp:    ev.Timestamp,
	}

	errs := make([]error, len(selected))
	var wg sync.WaitGroup
	for i, ch := range selected {
		wg.Add(1)
		go func(i int, ch notify.Channel) {
			defer wg.Done()
			errs[i] = ch.Send(ctx, n)
		}(i, ch)
	}
	wg.Wait()

	var notified []string
	for i, ch := range selected {
		if errs[i] != nil {
			chLog := log.WithChannel(ch.Name())
			chLog.Error().
				Err(errs[i]).
				Str("alert_key", ev.Key()).
				Msg("notification delivery failed")
			continue
		}
		notified = append(notified, ch.Name())
	}
	return notified
}

// selectChannels picks delivery targets by severity: critical goes
// everywhere including SMS, warnings to email and webhook, info to the
// low-priority log channel only.
func (d *Dispatcher) selectChannels(severity Severity) []notify.Channel {
	var selected []notify.Channel
	for _, ch := range d.channels {
		switch severity {
		case SeverityCritical:
			selected = append(selected, ch)
		case SeverityWarning:
			if ch.Class() == notify.ClassEmail || ch.Class() == notify.ClassWebhook {
				selected = append(selected, ch)
			}
		case SeverityInfo:
			if ch.Class() == notify.ClassLog {
				selected = append(selected, ch)
			}
		}
	}
	return selected
}

// fileAnomaly records the event for human triage. Failures are logged and
// swallowed.
func (d *Dispatcher) fileAnomaly(ctx context.Context, ev Event) {
	if d.anomalies == nil {
		return
	}

	anomaly := &store.Anomaly{
		Service:         ev.Service,
		Metric:          string(ev.Metric),
		Severity:        string(ev.Severity),
		Message:         ev.Message,
		CurrentValue:    ev.CurrentValue,
		Threshold:       ev.Threshold,
		Recommendations: RecommendationsFor(ev.Metric),
		DetectedAt:      ev.Timestamp,
	}
	if err := d.anomalies.FileAnomaly(ctx, anomaly); err != nil {
		keyLog := log.WithAlertKey(ev.Key())
		keyLog.Error().Err(err).Msg("anomaly filing failed")
	}
}
