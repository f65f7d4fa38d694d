package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRulesState() *SimulationState {
	return NewSimulationState(DefaultScenario())
}

func TestRule_ConditionsAreANDCombined(t *testing.T) {
	s := newRulesState()
	s.RawInventory = 10
	s.Cash = 100

	engine := NewRulesEngine(&Rule{
		Name: "restock",
		Conditions: []Condition{
			{Metric: MetricInventory, Op: CompareLT, Value: 50},
			{Metric: MetricCash, Op: CompareGT, Value: 30000},
		},
		Action: StrategyAction{Type: ActionOrderMaterials, Quantity: 400},
	})

	// Inventory condition holds but cash does not.
	assert.Empty(t, engine.Evaluate(s))

	// With both holding, the rule fires.
	s.Cash = 50000
	actions := engine.Evaluate(s)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionOrderMaterials, actions[0].Type)
}

func TestRule_CooldownSuppressesRefiring(t *testing.T) {
	s := newRulesState()
	s.Cash = 1

	engine := NewRulesEngine(&Rule{
		Name:       "broke",
		Conditions: []Condition{{Metric: MetricCash, Op: CompareLT, Value: 100}},
		Action:     StrategyAction{Type: ActionTakeLoan, Amount: 10000},
		Cooldown:   5,
	})

	require.Len(t, engine.Evaluate(s), 1)

	// Days 1-4 are inside the cooldown.
	for s.Day = 1; s.Day < 5; s.Day++ {
		assert.Empty(t, engine.Evaluate(s), "day %d inside cooldown", s.Day)
	}

	s.Day = 5
	assert.Len(t, engine.Evaluate(s), 1, "cooldown expired")
}

func TestRule_MaxTriggersExhausts(t *testing.T) {
	s := newRulesState()
	s.Cash = 1

	engine := NewRulesEngine(&Rule{
		Name:        "twice-only",
		Conditions:  []Condition{{Metric: MetricCash, Op: CompareLT, Value: 100}},
		Action:      StrategyAction{Type: ActionTakeLoan, Amount: 5000},
		MaxTriggers: 2,
	})

	assert.Len(t, engine.Evaluate(s), 1)
	s.Day++
	assert.Len(t, engine.Evaluate(s), 1)
	s.Day++
	assert.Empty(t, engine.Evaluate(s), "trigger budget spent")
}

func TestEvaluate_AllSatisfiedFireInPriorityOrder(t *testing.T) {
	s := newRulesState()
	s.Cash = 1
	s.Day = 42

	engine := NewRulesEngine(
		&Rule{
			Name:       "second",
			Priority:   2,
			Conditions: []Condition{{Metric: MetricCash, Op: CompareLT, Value: 100}},
			Action:     StrategyAction{Type: ActionOrderMaterials, Quantity: 100},
		},
		&Rule{
			Name:       "first",
			Priority:   1,
			Conditions: []Condition{{Metric: MetricCash, Op: CompareLT, Value: 100}},
			Action:     StrategyAction{Type: ActionTakeLoan, Amount: 10000},
		},
	)

	actions := engine.Evaluate(s)

	require.Len(t, actions, 2, "priority orders evaluation, it does not gate firing")
	assert.Equal(t, ActionTakeLoan, actions[0].Type)
	assert.Equal(t, ActionOrderMaterials, actions[1].Type)
	assert.Equal(t, 42, actions[0].Day, "fired actions are stamped with today")
	assert.Equal(t, 42, actions[1].Day)
}

func TestCondition_MetricsReadState(t *testing.T) {
	s := newRulesState()
	s.Day = 7
	s.Debt = 5000
	s.CustomOrders = []*CustomOrder{{Station: StationMCE}, {Station: StationWaiting}}

	cases := []struct {
		cond Condition
		want bool
	}{
		{Condition{Metric: MetricDay, Op: CompareGE, Value: 7}, true},
		{Condition{Metric: MetricDebt, Op: CompareLE, Value: 4999}, false},
		{Condition{Metric: MetricBacklog, Op: CompareGT, Value: 1}, true},
		{Condition{Metric: MetricNetWorth, Op: CompareGT, Value: 0}, true},
		{Condition{Metric: "unknown", Op: CompareGT, Value: 0}, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.cond.evaluate(s), "%s %s %.0f", tc.cond.Metric, tc.cond.Op, tc.cond.Value)
	}
}

func TestDefaultRules_EmergencyMaterialsScenario(t *testing.T) {
	s := newRulesState()
	s.RawInventory = 20
	s.Cash = 60000

	engine := NewRulesEngine(DefaultRules()...)
	actions := engine.Evaluate(s)

	require.Len(t, actions, 1)
	assert.Equal(t, ActionOrderMaterials, actions[0].Type)
	assert.Equal(t, 400, actions[0].Quantity)
}
