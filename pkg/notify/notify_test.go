package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNotification() Notification {
	return Notification{
		Severity:     "critical",
		Service:      "application",
		Metric:       "memory",
		Message:      "memory usage critical",
		CurrentValue: 95,
		Threshold:    85,
		Timestamp:    time.Now(),
	}
}

func TestWebhookChannelSend(t *testing.T) {
	var received Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := NewWebhookChannel("ops-webhook", srv.URL)
	err := ch.Send(context.Background(), testNotification())

	assert.NoError(t, err)
	assert.Equal(t, "memory", received.Metric)
	assert.Equal(t, 95.0, received.CurrentValue)
}

func TestWebhookChannelNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ch := NewWebhookChannel("ops-webhook", srv.URL)
	err := ch.Send(context.Background(), testNotification())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWebhookChannelUnreachable(t *testing.T) {
	ch := NewWebhookChannel("ops-webhook", "http://127.0.0.1:1/hook")
	assert.Error(t, ch.Send(context.Background(), testNotification()))
}

func TestEmailChannelSend(t *testing.T) {
	var payload emailPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	ch := NewEmailChannel(srv.URL, []string{"ops@gatherly.io"})
	err := ch.Send(context.Background(), testNotification())

	assert.NoError(t, err)
	assert.Equal(t, []string{"ops@gatherly.io"}, payload.To)
	assert.Contains(t, payload.Subject, "critical")
	assert.Contains(t, payload.Subject, "memory")
}

func TestSMSChannelSend(t *testing.T) {
	var payload smsPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := NewSMSChannel(srv.URL, []string{"+15550100"})
	err := ch.Send(context.Background(), testNotification())

	assert.NoError(t, err)
	assert.Equal(t, []string{"+15550100"}, payload.To)
	assert.Contains(t, payload.Text, "memory usage critical")
}

func TestLogChannelNeverFails(t *testing.T) {
	ch := NewLogChannel()
	assert.NoError(t, ch.Send(context.Background(), testNotification()))
	assert.Equal(t, ClassLog, ch.Class())
}

func TestChannelClasses(t *testing.T) {
	assert.Equal(t, ClassWebhook, NewWebhookChannel("w", "http://example.invalid").Class())
	assert.Equal(t, ClassEmail, NewEmailChannel("http://example.invalid", nil).Class())
	assert.Equal(t, ClassSMS, NewSMSChannel("http://example.invalid", nil).Class())
}
