package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// SMSChannel delivers notifications through an SMS gateway API. Reserved
// for critical alerts by the dispatcher's severity routing.
type SMSChannel struct {
	gatewayURL string
	recipients []string
	client     *http.Client
}

// NewSMSChannel creates an SMS channel.
func NewSMSChannel(gatewayURL string, recipients []string) *SMSChannel {
	return &SMSChannel{
		gatewayURL: gatewayURL,
		recipients: recipients,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the channel name.
func (c *SMSChannel) Name() string {
	return "sms"
}

// Class returns ClassSMS.
func (c *SMSChannel) Class() Class {
	return ClassSMS
}

type smsPayload struct {
	To   []string `json:"to"`
	Text string   `json:"text"`
}

// Send posts a short text rendering of the notification to the gateway.
func (c *SMSChannel) Send(ctx context.Context, n Notification) error {
	payload := smsPayload{
		To:   c.recipients,
		Text: fmt.Sprintf("%s %s/%s: %s", n.Severity, n.Service, n.Metric, n.Message),
	}
	return postJSON(ctx, c.client, c.gatewayURL, payload)
}
