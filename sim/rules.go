// Declarative condition -> action triggers providing reactive backpressure.
// Conditions within a rule are AND-combined; every satisfied rule fires (in
// priority order), subject to its cooldown and maximum trigger count.

package sim

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// ConditionMetric names a state quantity a rule condition can test.
type ConditionMetric string

const (
	MetricCash      ConditionMetric = "cash"
	MetricInventory ConditionMetric = "inventory"
	MetricBacklog   ConditionMetric = "backlog" // custom WIP length
	MetricDebt      ConditionMetric = "debt"
	MetricNetWorth  ConditionMetric = "net_worth"
	MetricDay       ConditionMetric = "day"
)

// Comparison is a threshold operator.
type Comparison string

const (
	CompareLT Comparison = "<"
	CompareLE Comparison = "<="
	CompareGT Comparison = ">"
	CompareGE Comparison = ">="
)

// Condition is one threshold test against the current state.
type Condition struct {
	Metric ConditionMetric
	Op     Comparison
	Value  float64
}

// evaluate reads the metric from state and applies the operator.
func (c Condition) evaluate(s *SimulationState) bool {
	var v float64
	switch c.Metric {
	case MetricCash:
		v = s.Cash
	case MetricInventory:
		v = float64(s.RawInventory)
	case MetricBacklog:
		v = float64(s.CustomWIP())
	case MetricDebt:
		v = s.Debt
	case MetricNetWorth:
		v = s.NetWorth()
	case MetricDay:
		v = float64(s.Day)
	default:
		return false
	}
	switch c.Op {
	case CompareLT:
		return v < c.Value
	case CompareLE:
		return v <= c.Value
	case CompareGT:
		return v > c.Value
	case CompareGE:
		return v >= c.Value
	default:
		return false
	}
}

// Rule carries AND-combined conditions and a template action emitted when
// they all hold. Priority orders evaluation only; all satisfied rules fire.
type Rule struct {
	Name        string
	Conditions  []Condition
	Action      StrategyAction
	Cooldown    int // minimum days between firings; 0 = none
	MaxTriggers int // 0 = unlimited
	Priority    int // lower evaluates first

	lastFired    int
	timesFired   int
	hasFiredOnce bool
}

// satisfied reports whether every condition holds and the cooldown and
// trigger budget permit firing.
func (r *Rule) satisfied(s *SimulationState) bool {
	if r.MaxTriggers > 0 && r.timesFired >= r.MaxTriggers {
		return false
	}
	if r.hasFiredOnce && r.Cooldown > 0 && s.Day-r.lastFired < r.Cooldown {
		return false
	}
	for _, c := range r.Conditions {
		if !c.evaluate(s) {
			return false
		}
	}
	return true
}

// RulesEngine evaluates its rule set once per day.
type RulesEngine struct {
	rules []*Rule
}

func NewRulesEngine(rules ...*Rule) *RulesEngine {
	e := &RulesEngine{}
	for _, r := range rules {
		e.AddRule(r)
	}
	return e
}

// AddRule registers a rule, keeping the set sorted by priority.
func (e *RulesEngine) AddRule(r *Rule) {
	e.rules = append(e.rules, r)
	sort.SliceStable(e.rules, func(i, j int) bool {
		return e.rules[i].Priority < e.rules[j].Priority
	})
}

// Rules returns the registered rules in evaluation order.
func (e *RulesEngine) Rules() []*Rule {
	return e.rules
}

// Evaluate fires every satisfied rule and returns the actions to apply,
// stamped with the current day, in priority order.
func (e *RulesEngine) Evaluate(s *SimulationState) []StrategyAction {
	var actions []StrategyAction
	for _, r := range e.rules {
		if !r.satisfied(s) {
			continue
		}
		action := r.Action
		action.Day = s.Day
		actions = append(actions, action)
		r.lastFired = s.Day
		r.hasFiredOnce = true
		r.timesFired++
		logrus.Infof("[day %03d] rule %q fired (%s)", s.Day, r.Name, action.Type)
	}
	return actions
}

// DefaultRules is the reactive backpressure set used when a strategy enables
// rules without supplying its own.
func DefaultRules() []*Rule {
	return []*Rule{
		{
			Name:     "emergency-materials",
			Priority: 1,
			Conditions: []Condition{
				{Metric: MetricInventory, Op: CompareLT, Value: 50},
				{Metric: MetricCash, Op: CompareGT, Value: 30000},
			},
			Action:   StrategyAction{Type: ActionOrderMaterials, Quantity: 400},
			Cooldown: 5,
		},
		{
			Name:     "backlog-shift-to-custom",
			Priority: 2,
			Conditions: []Condition{
				{Metric: MetricBacklog, Op: CompareGT, Value: 300},
			},
			Action:   StrategyAction{Type: ActionAdjustMCEAllocation, Fraction: 0.65},
			Cooldown: 10,
		},
		{
			Name:     "deleverage-when-flush",
			Priority: 3,
			Conditions: []Condition{
				{Metric: MetricCash, Op: CompareGT, Value: 150000},
				{Metric: MetricDebt, Op: CompareGT, Value: 50000},
			},
			Action:   StrategyAction{Type: ActionPayDebt, Amount: 25000},
			Cooldown: 7,
		},
	}
}
