package sysmetrics

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/gatherly/vitals/pkg/log"
)

// cpuSampleWindow is the wall-clock window the CPU measurement compares the
// process CPU time delta against. Sample blocks for this long and no longer.
const cpuSampleWindow = 100 * time.Millisecond

// Sample is one point-in-time reading of the process's own resource usage.
// All values are approximations; see the package documentation.
type Sample struct {
	MemoryRSS     uint64        `json:"memory_rss_bytes"`
	MemoryPercent float64       `json:"memory_percent"`
	CPUPercent    float64       `json:"cpu_percent"`
	DiskPercent   float64       `json:"disk_percent"`
	Uptime        time.Duration `json:"uptime"`
}

// Collector gathers process-local metrics.
type Collector struct {
	proc        *process.Process
	totalMemory uint64
	diskPath    string
	startedAt   time.Time
	logger      zerolog.Logger
}

// New creates a collector for the current process. totalMemory is the
// assumed total system memory the RSS percentage is computed against.
func New(totalMemory uint64, diskPath string) (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Collector{
		proc:        proc,
		totalMemory: totalMemory,
		diskPath:    diskPath,
		startedAt:   time.Now(),
		logger:      log.WithComponent("sysmetrics"),
	}, nil
}

// StartedAt returns when the collector was constructed; uptime is measured
// from this instant.
func (c *Collector) StartedAt() time.Time {
	return c.startedAt
}

// Uptime returns the wall time since the collector was constructed.
func (c *Collector) Uptime() time.Duration {
	return time.Since(c.startedAt)
}

// Sample reads memory, CPU, and disk usage. Readings that fail are logged
// and left at zero; a partially filled sample is always returned.
func (c *Collector) Sample(ctx context.Context) Sample {
	sample := Sample{Uptime: c.Uptime()}

	if mem, err := c.proc.MemoryInfoWithContext(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("memory reading failed")
	} else {
		sample.MemoryRSS = mem.RSS
		sample.MemoryPercent = float64(mem.RSS) / float64(c.totalMemory) * 100
	}

	// Blocks for cpuSampleWindow while the CPU time delta accumulates.
	if cpu, err := c.proc.PercentWithContext(ctx, cpuSampleWindow); err != nil {
		c.logger.Warn().Err(err).Msg("cpu reading failed")
	} else {
		if cpu > 100 {
			cpu = 100
		}
		sample.CPUPercent = cpu
	}

	if usage, err := disk.UsageWithContext(ctx, c.diskPath); err != nil {
		c.logger.Warn().Err(err).Str("path", c.diskPath).Msg("disk reading failed")
	} else {
		sample.DiskPercent = usage.UsedPercent
	}

	return sample
}
