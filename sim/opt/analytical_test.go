package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factory-sim/factory-sim/sim"
)

func TestBuildBaseline_DerivesFieldsFromFormulas(t *testing.T) {
	sc := sim.DefaultScenario()
	a := NewAnalyticalOptimizer(sc)

	st, err := a.BuildBaseline(10)
	require.NoError(t, err)

	// Material demand is 10*(1 custom + 2 standard) = 30/day, 10950/year.
	// EOQ = sqrt(2*10950*1000/10) ~ 1479.9.
	assert.Equal(t, 1480, st.OrderQuantity)

	// ROP = 30*4 lead + 2 safety days * 30 = 180.
	assert.Equal(t, 180, st.ReorderPoint)

	assert.Equal(t, sc.ShutdownDay, st.EndDay)
	assert.Equal(t, 10.0, st.DailyDemandEstimate)
	assert.InDelta(t, 0.5, st.TargetServiceLevel, 0.5, "newsvendor ratio lands in (0,1)")
	assert.Greater(t, st.TargetServiceLevel, 0.0)
	assert.Less(t, st.TargetServiceLevel, 1.0)
}

func TestBuildBaseline_SeedsOpeningMaterialOrder(t *testing.T) {
	sc := sim.DefaultScenario()
	a := NewAnalyticalOptimizer(sc)

	st, err := a.BuildBaseline(10)
	require.NoError(t, err)

	require.NotEmpty(t, st.TimedActions)
	opening := st.TimedActions[0]
	assert.Equal(t, 0, opening.Day)
	assert.Equal(t, sim.ActionOrderMaterials, opening.Type)
	assert.Equal(t, st.OrderQuantity, opening.Quantity)
}

func TestBuildBaseline_EPQOnlyWhenMCEOutrunsDemand(t *testing.T) {
	sc := sim.DefaultScenario()
	a := NewAnalyticalOptimizer(sc)
	defaultBatch := sim.NewStrategy().StdBatchSize

	// Standard rate is 30*0.5 = 15/day; with demand 20 the EPQ is skipped.
	st, err := a.BuildBaseline(20)
	require.NoError(t, err)
	assert.Equal(t, defaultBatch, st.StdBatchSize)

	// With demand 10 the standard rate outruns demand and EPQ applies.
	st, err = a.BuildBaseline(10)
	require.NoError(t, err)
	assert.NotEqual(t, defaultBatch, st.StdBatchSize)
}

func TestBuildBaseline_RejectsNonPositiveDemand(t *testing.T) {
	a := NewAnalyticalOptimizer(sim.DefaultScenario())
	_, err := a.BuildBaseline(0)
	assert.Error(t, err)
}
