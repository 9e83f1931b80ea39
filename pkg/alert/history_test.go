package alert

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppendDefaults(t *testing.T) {
	h := NewHistory()

	id := h.Append(HistoryRecord{Key: "application:memory", Severity: SeverityCritical})

	records := h.Records()
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, StatusTriggered, records[0].Status)
	assert.False(t, records[0].Timestamp.IsZero())
}

func TestHistoryCapTruncatesOldest(t *testing.T) {
	h := NewHistory()

	for i := 0; i < HistoryCap+25; i++ {
		h.Append(HistoryRecord{Key: fmt.Sprintf("k%d", i)})
	}

	records := h.Records()
	require.Len(t, records, HistoryCap)
	assert.Equal(t, "k25", records[0].Key)
	assert.Equal(t, fmt.Sprintf("k%d", HistoryCap+24), records[len(records)-1].Key)
}

func TestHistoryLifecycleTransitions(t *testing.T) {
	h := NewHistory()
	id := h.Append(HistoryRecord{Key: "database:status"})

	require.NoError(t, h.Acknowledge(id))
	assert.Equal(t, StatusAcknowledged, h.Records()[0].Status)

	require.NoError(t, h.Resolve(id))
	assert.Equal(t, StatusResolved, h.Records()[0].Status)

	// Resolved records cannot go back to acknowledged
	assert.Error(t, h.Acknowledge(id))
}

func TestHistoryDirectResolve(t *testing.T) {
	h := NewHistory()
	id := h.Append(HistoryRecord{Key: "database:status"})

	require.NoError(t, h.Resolve(id))
	assert.Equal(t, StatusResolved, h.Records()[0].Status)
}

func TestHistoryCloseIsTerminal(t *testing.T) {
	h := NewHistory()
	id := h.Append(HistoryRecord{Key: "application:memory"})

	require.NoError(t, h.Close(id))
	assert.Equal(t, StatusClosed, h.Records()[0].Status)

	assert.Error(t, h.Resolve(id))
	assert.Error(t, h.Close(id))
}

func TestHistoryActiveExcludesSettledRecords(t *testing.T) {
	h := NewHistory()
	triggered := h.Append(HistoryRecord{Key: "application:memory"})
	acked := h.Append(HistoryRecord{Key: "database:status"})
	resolved := h.Append(HistoryRecord{Key: "storage:status"})

	require.NoError(t, h.Acknowledge(acked))
	require.NoError(t, h.Resolve(resolved))

	active := h.Active()
	require.Len(t, active, 2)
	assert.Equal(t, triggered, active[0].ID)
	assert.Equal(t, acked, active[1].ID)
}

func TestHistoryUnknownID(t *testing.T) {
	h := NewHistory()
	assert.Error(t, h.Acknowledge("nope"))
	assert.Error(t, h.Resolve("nope"))
}

func TestRecommendationsCoverAllMetrics(t *testing.T) {
	metrics := []Metric{
		MetricMemory, MetricCPU, MetricResponseTime, MetricErrorRate,
		MetricErrorPattern, MetricDBConns, MetricRPS, MetricDiskUsage,
		MetricStatus, MetricTrend,
	}
	for _, m := range metrics {
		assert.NotEmpty(t, RecommendationsFor(m), "metric %s has no recommendations", m)
	}

	// Unknown metrics fall back to the generic advice
	assert.Equal(t, remediations[CategoryGeneral], RecommendationsFor(Metric("something_new")))
}

func TestCooldownPolicyLookup(t *testing.T) {
	p := DefaultCooldowns()

	assert.Equal(t, p.PerMetric[MetricDiskUsage], p.For(MetricDiskUsage))
	assert.Equal(t, p.Default, p.For(MetricMemory))
	assert.Less(t, p.For(MetricErrorRate), p.For(MetricTrend))
}
