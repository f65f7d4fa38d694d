// Scores a finished run. The objective trades terminal wealth against
// revenue, service level, and massive penalties for catastrophic states that
// the simulator deliberately does not prevent structurally.

package opt

import (
	"github.com/factory-sim/factory-sim/sim"
)

// ViolationKind names a penalized business-constraint breach.
type ViolationKind string

const (
	ViolationZeroMachines  ViolationKind = "zero-machines"
	ViolationBankruptcy    ViolationKind = "bankruptcy"
	ViolationQueueOverflow ViolationKind = "queue-overflow"
	ViolationLateDelivery  ViolationKind = "late-delivery"
	ViolationStockout      ViolationKind = "stockout"
)

// Violation is one assessed penalty.
type Violation struct {
	Kind    ViolationKind
	Count   int
	Penalty float64
}

// ObjectiveWeights parameterizes the fitness function.
type ObjectiveWeights struct {
	NetWorth     float64
	Revenue      float64
	ServiceLevel float64

	ZeroMachines     float64
	Bankruptcy       float64
	QueueOverflowDay float64
	LateDelivery     float64
	StockoutDay      float64

	BankruptcyCashFloor float64
	TerminalAssetFrac   float64 // fraction of book value penalized near shutdown
	TerminalWindowDays  int     // window before shutdown day
}

// DefaultObjectiveWeights returns the reference weighting.
func DefaultObjectiveWeights() ObjectiveWeights {
	return ObjectiveWeights{
		NetWorth:     1.0,
		Revenue:      0.01,
		ServiceLevel: 50000,

		ZeroMachines:     1000000,
		Bankruptcy:       500000,
		QueueOverflowDay: 100000,
		LateDelivery:     10000,
		StockoutDay:      1000,

		BankruptcyCashFloor: -50000,
		TerminalAssetFrac:   0.5,
		TerminalWindowDays:  30,
	}
}

// FitnessResult is the scored outcome of one evaluation.
type FitnessResult struct {
	Score                float64
	NetWorth             float64
	TotalRevenue         float64
	ServiceLevel         float64
	TerminalAssetPenalty float64
	Violations           []Violation
}

// TotalPenalty sums the violation penalties.
func (r *FitnessResult) TotalPenalty() float64 {
	total := 0.0
	for _, v := range r.Violations {
		total += v.Penalty
	}
	return total
}

// ObjectiveFunction scores finished runs against one scenario.
type ObjectiveFunction struct {
	Weights  ObjectiveWeights
	Scenario *sim.Scenario
	finance  *sim.FinanceModule
}

func NewObjectiveFunction(sc *sim.Scenario, w ObjectiveWeights) *ObjectiveFunction {
	return &ObjectiveFunction{
		Weights:  w,
		Scenario: sc,
		finance:  sim.NewFinanceModule(sc),
	}
}

// Score computes
//
//	netWorth + 0.01*revenue + 50000*serviceLevel - terminalAssetPenalty - sum(violations)
//
// under the configured weights.
func (o *ObjectiveFunction) Score(state *sim.SimulationState, m *sim.SummaryMetrics) *FitnessResult {
	w := o.Weights
	result := &FitnessResult{
		NetWorth:     m.NetWorth,
		TotalRevenue: m.TotalRevenue,
		ServiceLevel: m.ServiceLevel,
	}

	if state.Machines[sim.StationMCE] == 0 {
		result.Violations = append(result.Violations, Violation{
			Kind: ViolationZeroMachines, Count: 1, Penalty: w.ZeroMachines,
		})
	}
	if m.MinCashObserved < w.BankruptcyCashFloor {
		result.Violations = append(result.Violations, Violation{
			Kind: ViolationBankruptcy, Count: 1, Penalty: w.Bankruptcy,
		})
	}
	if m.OverflowDays > 0 {
		result.Violations = append(result.Violations, Violation{
			Kind: ViolationQueueOverflow, Count: m.OverflowDays,
			Penalty: float64(m.OverflowDays) * w.QueueOverflowDay,
		})
	}
	if m.LateDeliveries > 0 {
		result.Violations = append(result.Violations, Violation{
			Kind: ViolationLateDelivery, Count: m.LateDeliveries,
			Penalty: float64(m.LateDeliveries) * w.LateDelivery,
		})
	}
	if m.StockoutDays > 0 {
		result.Violations = append(result.Violations, Violation{
			Kind: ViolationStockout, Count: m.StockoutDays,
			Penalty: float64(m.StockoutDays) * w.StockoutDay,
		})
	}

	// Within the terminal window of the shutdown day, half the unliquidated
	// book value (everything but cash) is written off.
	if o.Scenario.ShutdownDay-state.Day <= w.TerminalWindowDays {
		unliquidated := o.finance.BookAssets(state) - state.Cash
		if unliquidated > 0 {
			result.TerminalAssetPenalty = w.TerminalAssetFrac * unliquidated
		}
	}

	result.Score = w.NetWorth*m.NetWorth +
		w.Revenue*m.TotalRevenue +
		w.ServiceLevel*m.ServiceLevel -
		result.TerminalAssetPenalty -
		result.TotalPenalty()
	return result
}
