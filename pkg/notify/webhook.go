package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookChannel POSTs notifications as JSON to a configured URL.
type WebhookChannel struct {
	name   string
	url    string
	client *http.Client
}

// NewWebhookChannel creates a webhook channel.
func NewWebhookChannel(name, url string) *WebhookChannel {
	return &WebhookChannel{
		name: name,
		url:  url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the channel name.
func (c *WebhookChannel) Name() string {
	return c.name
}

// Class returns ClassWebhook.
func (c *WebhookChannel) Class() Class {
	return ClassWebhook
}

// Send POSTs the notification and treats any non-2xx response as failure.
func (c *WebhookChannel) Send(ctx context.Context, n Notification) error {
	return postJSON(ctx, c.client, c.url, n)
}

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
