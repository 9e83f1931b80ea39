package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the shared Postgres pool of the Gatherly backend. Vitals uses
// it for its liveness probe, for filing anomaly records, and for reading
// summarized request-log counts.
type DB struct {
	pool     *pgxpool.Pool
	migrated atomic.Bool
}

// Open creates a pool against databaseURL. The pool does not dial until
// first use, so Open succeeds while Postgres is down; an error here means
// the URL itself is invalid. The database probe reports the outage until
// the server returns.
func Open(databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Pool exposes the underlying pool for the database probe.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Migrate creates the anomalies table. The request_logs table is owned by
// the main backend; Vitals only reads it. Safe to call more than once.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.migrate(ctx); err != nil {
		return err
	}
	db.migrated.Store(true)
	return nil
}

func (db *DB) migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS anomalies (
			id              TEXT PRIMARY KEY,
			service         TEXT NOT NULL,
			metric          TEXT NOT NULL,
			severity        TEXT NOT NULL,
			message         TEXT NOT NULL,
			current_value   DOUBLE PRECISION NOT NULL,
			threshold       DOUBLE PRECISION NOT NULL,
			recommendations TEXT[] NOT NULL DEFAULT '{}',
			detected_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("migrate anomalies: %w", err)
	}
	return nil
}

// Anomaly is one filed record of a dispatched alert, kept for human triage.
type Anomaly struct {
	ID              string
	Service         string
	Metric          string
	Severity        string
	Message         string
	CurrentValue    float64
	Threshold       float64
	Recommendations []string
	DetectedAt      time.Time
}

// FileAnomaly inserts one anomaly record. The caller treats failures as
// log-and-continue; filing must never break alert dispatch. When the
// startup migration could not run (database down at boot) it is retried
// here before the first insert.
func (db *DB) FileAnomaly(ctx context.Context, a *Anomaly) error {
	if !db.migrated.Load() {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.DetectedAt.IsZero() {
		a.DetectedAt = time.Now()
	}

	_, err := db.pool.Exec(ctx, `
		INSERT INTO anomalies (id, service, metric, severity, message, current_value, threshold, recommendations, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.Service, a.Metric, a.Severity, a.Message, a.CurrentValue, a.Threshold, a.Recommendations, a.DetectedAt)
	if err != nil {
		return fmt.Errorf("file anomaly: %w", err)
	}
	return nil
}

// LogSummary is the narrow view of the backend's request log that health
// reporting consumes.
type LogSummary struct {
	Requests int64     `json:"requests"`
	Errors   int64     `json:"errors"`
	Since    time.Time `json:"since"`
}

// SummarizeRequestLogs counts requests and 5xx errors logged since the
// given instant.
func (db *DB) SummarizeRequestLogs(ctx context.Context, since time.Time) (LogSummary, error) {
	summary := LogSummary{Since: since}
	err := db.pool.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE status_code >= 500)
		FROM request_logs
		WHERE created_at > $1`, since).Scan(&summary.Requests, &summary.Errors)
	if err != nil {
		return LogSummary{}, fmt.Errorf("summarize request logs: %w", err)
	}
	return summary, nil
}
