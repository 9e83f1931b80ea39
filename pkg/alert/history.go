package alert

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// HistoryCap bounds the in-process alert history ring.
const HistoryCap = 1000

// RecordStatus is the lifecycle state of a history record.
type RecordStatus string

const (
	StatusTriggered    RecordStatus = "triggered"
	StatusAcknowledged RecordStatus = "acknowledged"
	StatusResolved     RecordStatus = "resolved"
	// StatusClosed is terminal and reached only through operator action,
	// never by the automatic alerting logic.
	StatusClosed RecordStatus = "closed"
)

// HistoryRecord is one dispatched alert. A fresh breach of the same key
// after cooldown expiry creates a new record; old records are never
// reopened.
type HistoryRecord struct {
	ID        string            `json:"id"`
	Key       string            `json:"key"`
	Timestamp time.Time         `json:"timestamp"`
	Message   string            `json:"message"`
	Severity  Severity          `json:"severity"`
	Status    RecordStatus      `json:"status"`
	Channels  []string          `json:"channels"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// History is the append-only in-process ring of dispatched alerts, capped
// at HistoryCap with oldest-first truncation.
type History struct {
	mu      sync.Mutex
	records []HistoryRecord
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Append records a dispatched alert and returns its generated ID.
func (h *History) Append(rec HistoryRecord) string {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.Status == "" {
		rec.Status = StatusTriggered
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.records) >= HistoryCap {
		h.records = h.records[1:]
	}
	h.records = append(h.records, rec)
	return rec.ID
}

// Records returns a copy of the history, oldest first.
func (h *History) Records() []HistoryRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HistoryRecord(nil), h.records...)
}

// Active returns the records still awaiting resolution, oldest first.
func (h *History) Active() []HistoryRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	var active []HistoryRecord
	for _, rec := range h.records {
		if rec.Status == StatusTriggered || rec.Status == StatusAcknowledged {
			active = append(active, rec)
		}
	}
	return active
}

// Len returns the number of retained records.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

// Acknowledge moves a triggered record to acknowledged.
func (h *History) Acknowledge(id string) error {
	return h.transition(id, StatusAcknowledged, StatusTriggered)
}

// Resolve moves a triggered or acknowledged record to resolved. There is
// no path back: a later breach of the same key makes a new record.
func (h *History) Resolve(id string) error {
	return h.transition(id, StatusResolved, StatusTriggered, StatusAcknowledged)
}

// Close moves any non-closed record to the terminal closed state. Exposed
// for operator tooling only.
func (h *History) Close(id string) error {
	return h.transition(id, StatusClosed, StatusTriggered, StatusAcknowledged, StatusResolved)
}

func (h *History) transition(id string, to RecordStatus, from ...RecordStatus) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.records {
		if h.records[i].ID != id {
			continue
		}
		for _, f := range from {
			if h.records[i].Status == f {
				h.records[i].Status = to
				return nil
			}
		}
		return fmt.Errorf("alert %s is %s, cannot move to %s", id, h.records[i].Status, to)
	}
	return fmt.Errorf("alert %s not found", id)
}
