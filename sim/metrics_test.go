package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDistribution_PercentilesInterpolate(t *testing.T) {
	d := NewDistribution([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 10.0, d.Max)
	assert.InDelta(t, 5.5, d.Mean, 1e-9)
	assert.InDelta(t, 5.5, d.P50, 1e-9)
	assert.InDelta(t, 9.55, d.P95, 1e-9)
}

func TestNewDistribution_EmptyAndSingle(t *testing.T) {
	empty := NewDistribution(nil)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Mean)

	one := NewDistribution([]float64{7})
	assert.Equal(t, 1, one.Count)
	assert.Equal(t, 7.0, one.Min)
	assert.Equal(t, 7.0, one.P99)
}

func TestExtractSummary_ServiceLevel(t *testing.T) {
	s := NewSimulationState(DefaultScenario())
	s.CompletedCustom = 20
	s.LateDeliveries = 3
	s.DeliveryTimes = []float64{5, 5, 6, 8}

	m := ExtractSummary(s)

	assert.InDelta(t, 17.0/20.0, m.ServiceLevel, 1e-9)
	assert.InDelta(t, 6.0, m.DeliveryTime.Mean, 1e-9)
}

func TestExtractSummary_NoCompletionsMeansZeroServiceLevel(t *testing.T) {
	s := NewSimulationState(DefaultScenario())
	m := ExtractSummary(s)
	assert.Zero(t, m.ServiceLevel)
}

func TestHistoryRecord_AppendsOneRowPerDay(t *testing.T) {
	s := NewSimulationState(DefaultScenario())
	s.RecordHistory()
	s.Day++
	s.Cash = 12345
	s.RecordHistory()

	h := s.History
	require.Len(t, h.Day, 2)
	assert.Equal(t, []int{0, 1}, h.Day)
	assert.Equal(t, 12345.0, h.Cash[1])
}

func TestRecordHistory_TracksMinCash(t *testing.T) {
	s := NewSimulationState(DefaultScenario())
	s.Cash = 500
	s.RecordHistory()
	s.Cash = 80000
	s.RecordHistory()

	assert.Equal(t, 500.0, s.MinCashObserved)
}
