// SimulationEngine: orchestrates one simulated day across all modules in a
// fixed order, applies timed and rule-fired actions, and records history.
// Single-threaded and synchronous within one day; the phase order below must
// not be reordered.

package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// SimulationEngine drives one run. It owns the state exclusively; nothing is
// shared across concurrent evaluations.
type SimulationEngine struct {
	Scenario *Scenario
	Strategy *Strategy
	State    *SimulationState

	Inventory  *InventoryModule
	Production *ProductionModule
	Finance    *FinanceModule
	Pricing    *PricingModule
	Policy     *DynamicPolicyCalculator
	Rules      *RulesEngine
	Demand     *DemandModel

	rng           *PartitionedRNG
	actionApplied []bool
}

// NewSimulationEngine wires the modules for one run. The strategy is cloned:
// dynamic policy recomputation and actions mutate it, and callers reuse
// strategies across evaluations.
func NewSimulationEngine(sc *Scenario, st *Strategy, seed int64, initial *SimulationState) *SimulationEngine {
	st = st.Clone()
	if initial == nil {
		initial = NewSimulationState(sc)
	} else {
		initial = initial.Clone()
	}
	rng := NewPartitionedRNG(NewSimulationKey(seed))

	finance := NewFinanceModule(sc)
	production := NewProductionModule(sc)
	engine := &SimulationEngine{
		Scenario:   sc,
		Strategy:   st,
		State:      initial,
		Inventory:  NewInventoryModule(sc, finance),
		Production: production,
		Finance:    finance,
		Pricing:    NewPricingModule(sc),
		Policy:     NewDynamicPolicyCalculator(sc, production),
		Demand:     NewDemandModel(sc.Demand, rng.ForSubsystem(SubsystemDemand)),

		rng:           rng,
		actionApplied: make([]bool, len(st.TimedActions)),
	}
	if st.RulesEnabled {
		engine.Rules = NewRulesEngine(DefaultRules()...)
	}
	return engine
}

// RunDay executes one simulated day. Phase order is fixed:
// arrivals and actions, policy recomputation, reorder, demand admission,
// production, sales, finance, workforce training, history.
func (e *SimulationEngine) RunDay() {
	s := e.State
	st := e.Strategy
	logrus.Debugf("[day %03d] cash=%.0f debt=%.0f raw=%d wip=%d",
		s.Day, s.Cash, s.Debt, s.RawInventory, s.CustomWIP())

	// Materials ordered earlier arrive first thing.
	e.Inventory.ProcessArrivals(s)

	// Scheduled actions stamped for today, in array order, exactly once.
	for i, a := range st.TimedActions {
		if !e.actionApplied[i] && a.Day <= s.Day {
			e.applyAction(a)
			e.actionApplied[i] = true
		}
	}

	// Reactive rules.
	if e.Rules != nil {
		for _, a := range e.Rules.Evaluate(s) {
			e.applyAction(a)
		}
	}

	// Formula recomputation on relevant state changes.
	if st.DynamicPolicyEnabled {
		e.Policy.Recalculate(s, st, e.Demand)
	}

	// Inventory reorder check.
	e.Inventory.CheckAndReorder(s, st)

	// Stochastic demand admission.
	incoming := e.Demand.Draw(s.Day)
	e.Production.AdmitCustomOrders(s, incoming)

	// Production flow.
	if shortage := e.Production.ProcessDay(s, st, e.Inventory); shortage {
		s.StockoutDays++
	}
	if s.CustomWIP() > e.Scenario.CustomWIPCap {
		s.OverflowDays++
	}

	// Same-day sales.
	revenue := e.Pricing.SellFinishedGoods(s, st)
	e.Finance.RecordDailyRevenue(s, revenue)

	// Finance: interest, preemptive wage loan, payroll and overhead, paydown.
	e.Finance.AccrueDailyInterest(s)
	e.Finance.PreventWageAdvance(s, st)
	e.Finance.MakePayment(s, e.Finance.DailyPayroll(s, st), PaymentWage)
	e.Finance.MakePayment(s, e.Scenario.DailyOverhead, PaymentPlanned)
	e.Finance.ExecuteDebtPaydown(s, st)
	e.Finance.CheckDebtThreshold(s, st)

	// Rookies train toward expert.
	e.advanceTraining()

	s.Day++
	s.RecordHistory()
}

// Run executes days until endDay and returns the final state and summary.
func (e *SimulationEngine) Run(endDay int) (*SimulationState, *SummaryMetrics) {
	for e.State.Day < endDay {
		e.RunDay()
	}
	return e.State, ExtractSummary(e.State)
}

// RunSimulation is the core entry point: pure over its inputs aside from the
// seeded stochastic demand draw. initial may be nil to start from the
// scenario's day-zero state.
func RunSimulation(sc *Scenario, st *Strategy, seed int64, initial *SimulationState) (*SimulationState, *SummaryMetrics) {
	engine := NewSimulationEngine(sc, st, seed, initial)
	return engine.Run(st.EndDay)
}

// applyAction dispatches one action variant. Every ActionType must have a
// case here; the dispatch-coverage test walks AllActionTypes against it.
func (e *SimulationEngine) applyAction(a StrategyAction) bool {
	s := e.State
	st := e.Strategy
	switch a.Type {
	case ActionOrderMaterials:
		e.Inventory.PlaceOrder(s, a.Quantity)

	case ActionAdjustBatchSize:
		if a.Quantity > 0 {
			st.StdBatchSize = a.Quantity
		}

	case ActionAdjustMCEAllocation:
		st.MCEAllocationCustom = math.Min(1, math.Max(0, a.Fraction))

	case ActionHireRookie:
		n := a.Quantity
		if n <= 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			s.RookieTraining = append(s.RookieTraining, e.Scenario.TrainingDays)
		}

	case ActionTakeLoan:
		if a.Amount > 0 {
			s.Cash += a.Amount
			s.Debt += a.Amount * (1 + e.Scenario.PlannedCommission)
		}

	case ActionPayDebt:
		pay := math.Min(a.Amount, math.Min(s.Debt, s.Cash))
		if pay > 0 {
			s.Cash -= pay
			s.Debt -= pay
		}

	case ActionBuyMachine:
		n := a.Quantity
		if n <= 0 {
			n = 1
		}
		price, ok := e.Scenario.MachinePrices[a.Station]
		if !ok {
			logrus.Warnf("[day %03d] buy-machine for unknown station %q ignored", s.Day, a.Station)
			return true
		}
		for i := 0; i < n; i++ {
			e.Finance.MakePayment(s, price, PaymentPlanned)
			s.Machines[a.Station]++
		}

	case ActionSellMachine:
		n := a.Quantity
		if n <= 0 {
			n = 1
		}
		if n > s.Machines[a.Station] {
			n = s.Machines[a.Station]
		}
		if n > 0 {
			s.Machines[a.Station] -= n
			s.Cash += float64(n) * e.Scenario.MachinePrices[a.Station] * e.Scenario.MachineSaleRecovery
		}

	case ActionAdjustPrice:
		if a.Price > 0 {
			switch a.Line {
			case LineCustom:
				st.CustomBasePrice = a.Price
			default:
				st.StdPrice = a.Price
			}
		}

	case ActionSetReorderPoint:
		if a.Quantity >= 0 {
			st.ReorderPoint = a.Quantity
		}

	case ActionSetOrderQuantity:
		if a.Quantity > 0 {
			st.OrderQuantity = a.Quantity
		}

	default:
		logrus.Warnf("[day %03d] unhandled action type %q", s.Day, a.Type)
		return false
	}
	return true
}

// advanceTraining decrements each rookie's remaining days and graduates
// finished rookies to expert.
func (e *SimulationEngine) advanceTraining() {
	s := e.State
	remaining := s.RookieTraining[:0]
	for _, days := range s.RookieTraining {
		days--
		if days <= 0 {
			s.Experts++
			continue
		}
		remaining = append(remaining, days)
	}
	s.RookieTraining = remaining
}
