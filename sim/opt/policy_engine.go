// PolicyParameters: the 15-field compressed representation searched by the
// Bayesian optimizer, and the PolicyEngine that expands them into a concrete
// day-by-day action schedule via a forward walk over a lightweight,
// non-authoritative state projection.

package opt

import (
	"math"
	"math/rand"

	"github.com/factory-sim/factory-sim/sim"
)

// PolicyParameters is the compressed policy the Bayesian optimizer searches.
type PolicyParameters struct {
	ReorderPoint        float64
	OrderQuantity       float64
	StdBatchSize        float64
	MCEAllocationCustom float64
	StdPrice            float64
	CustomBasePrice     float64
	OvertimeHours       float64
	DebtPaydownRate     float64
	MinCashReserveDays  float64
	RookiesToHire       float64
	HireDay             float64
	MCEMachinesToBuy    float64
	MachineBuyDay       float64
	InitialLoan         float64
	PriceReviewInterval float64
}

// NumPolicyParams is the dimensionality of the parameter vector.
const NumPolicyParams = 15

// PolicyBounds holds [lo, hi] per parameter, in vector order.
var PolicyBounds = [NumPolicyParams][2]float64{
	{50, 1000},   // ReorderPoint
	{100, 2000},  // OrderQuantity
	{10, 200},    // StdBatchSize
	{0.3, 0.8},   // MCEAllocationCustom
	{150, 300},   // StdPrice
	{60, 160},    // CustomBasePrice
	{0, 4},       // OvertimeHours
	{0, 1},       // DebtPaydownRate
	{1, 10},      // MinCashReserveDays
	{0, 6},       // RookiesToHire
	{0, 120},     // HireDay
	{0, 3},       // MCEMachinesToBuy
	{0, 180},     // MachineBuyDay
	{0, 100000},  // InitialLoan
	{10, 60},     // PriceReviewInterval
}

// ToVector flattens the parameters in PolicyBounds order.
func (p PolicyParameters) ToVector() [NumPolicyParams]float64 {
	return [NumPolicyParams]float64{
		p.ReorderPoint, p.OrderQuantity, p.StdBatchSize, p.MCEAllocationCustom,
		p.StdPrice, p.CustomBasePrice, p.OvertimeHours, p.DebtPaydownRate,
		p.MinCashReserveDays, p.RookiesToHire, p.HireDay, p.MCEMachinesToBuy,
		p.MachineBuyDay, p.InitialLoan, p.PriceReviewInterval,
	}
}

// ParamsFromVector rebuilds parameters from a flat vector, clamped to bounds.
func ParamsFromVector(v [NumPolicyParams]float64) PolicyParameters {
	for i := 0; i < NumPolicyParams; i++ {
		lo, hi := PolicyBounds[i][0], PolicyBounds[i][1]
		if v[i] < lo {
			v[i] = lo
		}
		if v[i] > hi {
			v[i] = hi
		}
	}
	return PolicyParameters{
		ReorderPoint: v[0], OrderQuantity: v[1], StdBatchSize: v[2],
		MCEAllocationCustom: v[3], StdPrice: v[4], CustomBasePrice: v[5],
		OvertimeHours: v[6], DebtPaydownRate: v[7], MinCashReserveDays: v[8],
		RookiesToHire: v[9], HireDay: v[10], MCEMachinesToBuy: v[11],
		MachineBuyDay: v[12], InitialLoan: v[13], PriceReviewInterval: v[14],
	}
}

// RandomParameters draws each parameter uniformly within its bounds.
func RandomParameters(rng *rand.Rand) PolicyParameters {
	var v [NumPolicyParams]float64
	for i := 0; i < NumPolicyParams; i++ {
		lo, hi := PolicyBounds[i][0], PolicyBounds[i][1]
		v[i] = lo + rng.Float64()*(hi-lo)
	}
	return ParamsFromVector(v)
}

// Live MCE allocation nudges applied during the forward walk.
const (
	allocNudgeHighWIP  = 0.05 // custom WIP above 300
	allocNudgeMedWIP   = 0.03 // custom WIP above 250
	allocNudgeStarved  = -0.10
	allocFloor         = 0.3
	allocCeil          = 0.8
	highWIPThreshold   = 300
	medWIPThreshold    = 250
	allocEmitTolerance = 0.01
)

// projection is the lightweight state estimate walked by Expand. It is
// deliberately not the authoritative simulation: flows are mean-level
// approximations, good enough to place actions, never reconciled back.
type projection struct {
	inventory float64
	customWIP float64
	alloc     float64
	pending   []pendingArrival
}

type pendingArrival struct {
	day int
	qty float64
}

// PolicyEngine expands PolicyParameters into a Strategy with a concrete
// timed-action list.
type PolicyEngine struct {
	Scenario *sim.Scenario
}

func NewPolicyEngine(sc *sim.Scenario) *PolicyEngine {
	return &PolicyEngine{Scenario: sc}
}

// Expand performs the forward day-walk from the initial state snapshot and
// returns the full strategy. initial may be nil for the scenario's day-zero
// state.
func (pe *PolicyEngine) Expand(p PolicyParameters, initial *sim.SimulationState, endDay int) *sim.Strategy {
	sc := pe.Scenario
	if initial == nil {
		initial = sim.NewSimulationState(sc)
	}
	demand := sim.NewDemandModel(sc.Demand, rand.New(rand.NewSource(0)))

	st := sim.NewStrategy()
	st.ReorderPoint = int(math.Round(p.ReorderPoint))
	st.OrderQuantity = int(math.Round(p.OrderQuantity))
	st.StdBatchSize = int(math.Round(p.StdBatchSize))
	st.MCEAllocationCustom = clampAlloc(p.MCEAllocationCustom)
	st.StdPrice = p.StdPrice
	st.CustomBasePrice = p.CustomBasePrice
	st.OvertimeHours = p.OvertimeHours
	st.DebtPaydownRate = p.DebtPaydownRate
	st.MinCashReserveDays = p.MinCashReserveDays
	st.EndDay = endDay
	// The schedule below is authoritative; dynamic recomputation would fight
	// it mid-run.
	st.DynamicPolicyEnabled = false

	var actions []sim.StrategyAction

	if p.InitialLoan >= 1 {
		actions = append(actions, sim.StrategyAction{
			Day: 0, Type: sim.ActionTakeLoan, Amount: math.Round(p.InitialLoan),
		})
	}
	if hires := int(math.Round(p.RookiesToHire)); hires > 0 {
		actions = append(actions, sim.StrategyAction{
			Day: int(math.Round(p.HireDay)), Type: sim.ActionHireRookie, Quantity: hires,
		})
	}
	if buys := int(math.Round(p.MCEMachinesToBuy)); buys > 0 {
		actions = append(actions, sim.StrategyAction{
			Day: int(math.Round(p.MachineBuyDay)), Type: sim.ActionBuyMachine,
			Station: sim.StationMCE, Quantity: buys,
		})
	}

	proj := projection{
		inventory: float64(initial.RawInventory),
		customWIP: float64(initial.CustomWIP()),
		alloc:     st.MCEAllocationCustom,
	}

	mceTotal := float64(initial.Machines[sim.StationMCE] * sc.MCERatePerMachine)
	arcp := float64(initial.Experts)*sc.ExpertProductivity +
		float64(initial.Rookies())*sc.RookieProductivity
	reviewEvery := int(math.Round(p.PriceReviewInterval))

	for day := 0; day < endDay; day++ {
		mean := demand.Mean(day)

		// Material arrivals due today.
		remaining := proj.pending[:0]
		for _, a := range proj.pending {
			if a.day <= day {
				proj.inventory += a.qty
			} else {
				remaining = append(remaining, a)
			}
		}
		proj.pending = remaining

		// Mean-level flow through the bottleneck.
		customCap := math.Floor(mceTotal * proj.alloc)
		stdCap := math.Floor(mceTotal * (1 - proj.alloc))
		throughput := math.Min(proj.customWIP+mean, math.Min(customCap, arcp))
		proj.customWIP += mean - throughput
		if proj.customWIP < 0 {
			proj.customWIP = 0
		}
		proj.inventory -= mean*float64(sc.CustomMaterialPerUnit) +
			math.Min(stdCap, float64(st.StdBatchSize))*float64(sc.StdMaterialPerUnit)
		if proj.inventory < 0 {
			proj.inventory = 0
		}

		// Reorder when the projection crosses the reorder point.
		if proj.inventory <= p.ReorderPoint && len(proj.pending) == 0 {
			actions = append(actions, sim.StrategyAction{
				Day: day, Type: sim.ActionOrderMaterials, Quantity: st.OrderQuantity,
			})
			proj.pending = append(proj.pending, pendingArrival{
				day: day + sc.MaterialLeadTimeDays, qty: float64(st.OrderQuantity),
			})
		}

		// Live allocation nudges under WIP pressure.
		newAlloc := proj.alloc
		switch {
		case proj.customWIP > highWIPThreshold:
			newAlloc += allocNudgeHighWIP
		case proj.customWIP > medWIPThreshold:
			newAlloc += allocNudgeMedWIP
		case stdCap < float64(st.StdBatchSize)/2:
			// Standard line starved of MCE share.
			newAlloc += allocNudgeStarved
		}
		newAlloc = clampAlloc(newAlloc)
		if math.Abs(newAlloc-proj.alloc) >= allocEmitTolerance {
			proj.alloc = newAlloc
			actions = append(actions, sim.StrategyAction{
				Day: day, Type: sim.ActionAdjustMCEAllocation, Fraction: newAlloc,
			})
		}

		// Periodic custom price review against WIP pressure.
		if reviewEvery > 0 && day > 0 && day%reviewEvery == 0 {
			price := p.CustomBasePrice
			if proj.customWIP > highWIPThreshold {
				price *= 1.05
			} else if proj.customWIP < 50 {
				price *= 0.95
			}
			actions = append(actions, sim.StrategyAction{
				Day: day, Type: sim.ActionAdjustPrice, Line: sim.LineCustom,
				Price: math.Round(price*100) / 100,
			})
		}
	}

	st.TimedActions = actions
	return st
}

func clampAlloc(v float64) float64 {
	if v < allocFloor {
		return allocFloor
	}
	if v > allocCeil {
		return allocCeil
	}
	return v
}
