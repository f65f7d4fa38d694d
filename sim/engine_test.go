package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSimulation_DeterministicPerSeed(t *testing.T) {
	sc := DefaultScenario()
	st := NewStrategy()
	st.EndDay = 90

	s1, m1 := RunSimulation(sc, st, 42, nil)
	s2, m2 := RunSimulation(sc, st, 42, nil)

	assert.Equal(t, m1, m2)
	assert.Equal(t, s1.Cash, s2.Cash)
	assert.Equal(t, s1.Debt, s2.Debt)
	assert.Equal(t, s1.History, s2.History)
}

func TestRunSimulation_DoesNotMutateCallerStrategy(t *testing.T) {
	sc := DefaultScenario()
	st := NewStrategy()
	st.EndDay = 60
	before := *st

	RunSimulation(sc, st, 42, nil)

	// Dynamic policy rewrites formula fields on its own clone only.
	assert.Equal(t, before.OrderQuantity, st.OrderQuantity)
	assert.Equal(t, before.ReorderPoint, st.ReorderPoint)
	assert.Equal(t, before.StdBatchSize, st.StdBatchSize)
}

func TestRun_DailyInvariantsHold(t *testing.T) {
	sc := DefaultScenario()
	st := NewStrategy()
	st.EndDay = 120

	s, _ := RunSimulation(sc, st, 7, nil)

	require.Len(t, s.History.Day, 120)
	for i := range s.History.Day {
		assert.GreaterOrEqual(t, s.History.Cash[i], 0.0, "day %d: cash must never go negative", i)
		assert.GreaterOrEqual(t, s.History.Debt[i], 0.0, "day %d", i)
		assert.GreaterOrEqual(t, s.History.RawInventory[i], 0, "day %d", i)
		assert.LessOrEqual(t, s.History.CustomWIP[i], sc.CustomWIPCap, "day %d: WIP cap is a hard limit", i)
	}
}

func TestRun_MaterialConservation(t *testing.T) {
	sc := DefaultScenario()
	st := NewStrategy()
	st.EndDay = 120

	s, _ := RunSimulation(sc, st, 11, nil)

	// Every completed unit consumed its material at the MCE start.
	floor := 2*s.CompletedStandard + 1*s.CompletedCustom
	assert.GreaterOrEqual(t, s.TotalRawConsumed, floor)
}

func TestRunDay_TimedActionAppliesExactlyOnce(t *testing.T) {
	sc := DefaultScenario()
	st := NewStrategy()
	st.EndDay = 8
	st.TimedActions = []StrategyAction{
		{Day: 2, Type: ActionHireRookie, Quantity: 1},
	}

	s, _ := RunSimulation(sc, st, 42, nil)

	// Re-application every day would keep adding rookies.
	assert.Equal(t, 1, s.Rookies())
	assert.Equal(t, sc.Initial.Experts, s.Experts)
}

func TestRunDay_RookieGraduatesToExpert(t *testing.T) {
	sc := DefaultScenario()
	st := NewStrategy()
	st.EndDay = sc.TrainingDays + 2
	st.TimedActions = []StrategyAction{
		{Day: 0, Type: ActionHireRookie, Quantity: 1},
	}

	s, _ := RunSimulation(sc, st, 42, nil)

	assert.Equal(t, 0, s.Rookies())
	assert.Equal(t, sc.Initial.Experts+1, s.Experts)
}

func TestApplyAction_CoversEveryActionType(t *testing.T) {
	sc := DefaultScenario()
	e := NewSimulationEngine(sc, NewStrategy(), 1, nil)

	for _, typ := range AllActionTypes {
		a := StrategyAction{
			Type:     typ,
			Quantity: 1,
			Amount:   1000,
			Fraction: 0.5,
			Price:    100,
			Station:  StationMCE,
			Line:     LineCustom,
		}
		assert.True(t, e.applyAction(a), "action type %s has no dispatch case", typ)
	}
	assert.False(t, e.applyAction(StrategyAction{Type: "NOT_AN_ACTION"}))
}

func TestApplyAction_TakeLoanAddsCommission(t *testing.T) {
	sc := DefaultScenario()
	e := NewSimulationEngine(sc, NewStrategy(), 1, nil)
	cash, debt := e.State.Cash, e.State.Debt

	e.applyAction(StrategyAction{Type: ActionTakeLoan, Amount: 10000})

	assert.InDelta(t, cash+10000, e.State.Cash, 1e-9)
	assert.InDelta(t, debt+10000*1.02, e.State.Debt, 1e-9)
}

func TestApplyAction_PayDebtBoundedByCashAndDebt(t *testing.T) {
	sc := DefaultScenario()
	e := NewSimulationEngine(sc, NewStrategy(), 1, nil)
	e.State.Cash = 500
	e.State.Debt = 300

	e.applyAction(StrategyAction{Type: ActionPayDebt, Amount: 10000})

	assert.InDelta(t, 200, e.State.Cash, 1e-9)
	assert.InDelta(t, 0, e.State.Debt, 1e-9)
}

func TestApplyAction_SellMachineRecoversHalfPrice(t *testing.T) {
	sc := DefaultScenario()
	e := NewSimulationEngine(sc, NewStrategy(), 1, nil)
	e.State.Machines[StationWMA] = 2
	cash := e.State.Cash

	e.applyAction(StrategyAction{Type: ActionSellMachine, Station: StationWMA, Quantity: 1})

	assert.Equal(t, 1, e.State.Machines[StationWMA])
	assert.InDelta(t, cash+15000*0.5, e.State.Cash, 1e-9)
}

func TestApplyAction_AdjustPricePerLine(t *testing.T) {
	sc := DefaultScenario()
	e := NewSimulationEngine(sc, NewStrategy(), 1, nil)

	e.applyAction(StrategyAction{Type: ActionAdjustPrice, Line: LineCustom, Price: 130})
	e.applyAction(StrategyAction{Type: ActionAdjustPrice, Line: LineStandard, Price: 240})

	assert.Equal(t, 130.0, e.Strategy.CustomBasePrice)
	assert.Equal(t, 240.0, e.Strategy.StdPrice)
}
