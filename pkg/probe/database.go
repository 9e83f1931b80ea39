package probe

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/vitals/pkg/status"
)

// DBPool is the subset of pgxpool.Pool the database probe needs.
type DBPool interface {
	Ping(ctx context.Context) error
	Stat() *pgxpool.Stat
}

// DatabaseProber checks the primary Postgres datastore with a liveness
// ping and reports the pool's connection count.
type DatabaseProber struct {
	pool       DBPool
	thresholds status.LatencyThresholds
	timeout    time.Duration
}

// NewDatabaseProber creates a database probe. Default thresholds:
// warn 100ms, critical 500ms.
func NewDatabaseProber(pool DBPool, thresholds status.LatencyThresholds, timeout time.Duration) *DatabaseProber {
	return &DatabaseProber{
		pool:       pool,
		thresholds: thresholds,
		timeout:    timeout,
	}
}

// Name returns the service name.
func (p *DatabaseProber) Name() string {
	return "database"
}

// Check pings the database and classifies the round-trip time.
func (p *DatabaseProber) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	if err := p.pool.Ping(ctx); err != nil {
		return failure(start, err)
	}
	elapsed := time.Since(start)

	details := make(map[string]string)
	if st := p.pool.Stat(); st != nil {
		details["connections"] = strconv.FormatInt(int64(st.TotalConns()), 10)
	}

	return Result{
		Status:       p.thresholds.Classify(elapsed),
		ResponseTime: elapsed,
		Details:      details,
		CheckedAt:    start,
	}
}

// Connections returns the current number of pooled connections, zero when
// the pool exposes no stats.
func (p *DatabaseProber) Connections() int {
	if st := p.pool.Stat(); st != nil {
		return int(st.TotalConns())
	}
	return 0
}
