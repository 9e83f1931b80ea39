package notify

import (
	"context"
	"time"
)

// Class groups channels by delivery mechanism. The dispatcher selects
// classes by alert severity.
type Class string

const (
	ClassSMS     Class = "sms"
	ClassEmail   Class = "email"
	ClassWebhook Class = "webhook"
	ClassLog     Class = "log"
)

// Notification is the payload delivered to a channel.
type Notification struct {
	Severity     string    `json:"severity"`
	Service      string    `json:"service"`
	Metric       string    `json:"metric"`
	Message      string    `json:"message"`
	CurrentValue float64   `json:"current_value"`
	Threshold    float64   `json:"threshold"`
	Timestamp    time.Time `json:"timestamp"`
}

// Channel is one notification destination. Implementations must be safe
// for concurrent Send calls; the dispatcher fans out one goroutine per
// channel.
type Channel interface {
	// Name identifies the channel in logs and history records.
	Name() string

	// Class returns the delivery class used for severity routing.
	Class() Class

	// Send delivers one notification. A returned error is logged by the
	// caller and never aborts delivery on other channels.
	Send(ctx context.Context, n Notification) error
}
