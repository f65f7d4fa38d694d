// AnalyticalOptimizer: a complete baseline strategy from closed-form
// formulas alone, no search. The genetic and Bayesian layers tune this
// baseline rather than starting from nothing.

package opt

import (
	"fmt"
	"math"

	"github.com/factory-sim/factory-sim/sim"
)

// AnalyticalOptimizer derives strategy fields from EOQ/ROP/EPQ/newsvendor
// closed forms over a scenario.
type AnalyticalOptimizer struct {
	Scenario *sim.Scenario
}

func NewAnalyticalOptimizer(sc *sim.Scenario) *AnalyticalOptimizer {
	return &AnalyticalOptimizer{Scenario: sc}
}

// BuildBaseline produces the closed-form baseline strategy for the given
// daily demand estimate. Fails fast on a scenario that breaks the formulas.
func (a *AnalyticalOptimizer) BuildBaseline(dailyDemand float64) (*sim.Strategy, error) {
	if dailyDemand <= 0 {
		return nil, fmt.Errorf("analytical baseline: daily demand must be positive, got %v", dailyDemand)
	}
	sc := a.Scenario
	st := sim.NewStrategy()
	st.DailyDemandEstimate = dailyDemand
	st.DemandPlateauDay = sc.Demand.PlateauDay
	st.DemandDeclineDay = sc.Demand.DeclineDay
	st.EndDay = sc.ShutdownDay

	// Material demand across both lines.
	dailyMaterial := dailyDemand*float64(sc.CustomMaterialPerUnit) +
		dailyDemand*float64(sc.StdMaterialPerUnit)
	annualMaterial := dailyMaterial * 365

	eoq, err := sim.EOQ(annualMaterial, sc.OrderingCost, sc.HoldingCostPerUnitYear)
	if err != nil {
		return nil, fmt.Errorf("analytical baseline: %w", err)
	}
	st.OrderQuantity = int(math.Round(eoq))

	safety := st.SafetyStockDays * dailyMaterial
	rop, err := sim.ReorderPoint(dailyMaterial, sc.MaterialLeadTimeDays, safety)
	if err != nil {
		return nil, fmt.Errorf("analytical baseline: %w", err)
	}
	st.ReorderPoint = int(math.Round(rop))

	// EPQ sizes the standard batch when MCE outruns demand; otherwise the
	// default batch stands.
	stdRate := float64(sc.Initial.Machines[sim.StationMCE]*sc.MCERatePerMachine) * (1 - st.MCEAllocationCustom)
	if stdRate > dailyDemand {
		epq, err := sim.EPQ(dailyDemand*365, sc.OrderingCost, sc.HoldingCostPerUnitYear, stdRate, dailyDemand)
		if err != nil {
			return nil, fmt.Errorf("analytical baseline: %w", err)
		}
		st.StdBatchSize = int(math.Round(epq))
	}

	// Newsvendor critical ratio becomes the service-level target driving
	// safety stock in later recomputations.
	salvage := 0.5 * sc.MaterialUnitCost
	if ratio, err := sim.NewsvendorCriticalRatio(st.CustomBasePrice, sc.MaterialUnitCost, salvage); err == nil {
		st.TargetServiceLevel = ratio
	}

	// Seed the run with one opening material order so production does not
	// stall before the first reorder cycle.
	st.TimedActions = append(st.TimedActions, sim.StrategyAction{
		Day:      0,
		Type:     sim.ActionOrderMaterials,
		Quantity: st.OrderQuantity,
	})

	return st, nil
}
