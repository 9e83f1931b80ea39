package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// EmailChannel delivers notifications through the backend's mail gateway,
// which accepts a JSON POST and handles templating and SMTP itself.
type EmailChannel struct {
	gatewayURL string
	recipients []string
	client     *http.Client
}

// NewEmailChannel creates an email channel.
func NewEmailChannel(gatewayURL string, recipients []string) *EmailChannel {
	return &EmailChannel{
		gatewayURL: gatewayURL,
		recipients: recipients,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the channel name.
func (c *EmailChannel) Name() string {
	return "email"
}

// Class returns ClassEmail.
func (c *EmailChannel) Class() Class {
	return ClassEmail
}

type emailPayload struct {
	To      []string     `json:"to"`
	Subject string       `json:"subject"`
	Alert   Notification `json:"alert"`
}

// Send posts the notification to the mail gateway.
func (c *EmailChannel) Send(ctx context.Context, n Notification) error {
	payload := emailPayload{
		To:      c.recipients,
		Subject: fmt.Sprintf("[%s] %s: %s", n.Severity, n.Service, n.Metric),
		Alert:   n,
	}
	return postJSON(ctx, c.client, c.gatewayURL, payload)
}
