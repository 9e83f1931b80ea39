package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gatherly/vitals/pkg/log"
)

// LogChannel writes notifications to the structured log. It is the
// low-priority destination info alerts are routed to.
type LogChannel struct {
	logger zerolog.Logger
}

// NewLogChannel creates a log channel.
func NewLogChannel() *LogChannel {
	return &LogChannel{logger: log.WithComponent("notify")}
}

// Name returns the channel name.
func (c *LogChannel) Name() string {
	return "log"
}

// Class returns ClassLog.
func (c *LogChannel) Class() Class {
	return ClassLog
}

// Send logs the notification. It never fails.
func (c *LogChannel) Send(ctx context.Context, n Notification) error {
	c.logger.Info().
		Str("severity", n.Severity).
		Str("service", n.Service).
		Str("metric", n.Metric).
		Float64("current_value", n.CurrentValue).
		Float64("threshold", n.Threshold).
		Msg(n.Message)
	return nil
}
