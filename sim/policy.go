// Dynamic recomputation of the classical inventory formulas in response to
// state changes, plus bottleneck analysis. Each call snapshots the formula
// inputs; only a classified change triggers recomputation, and a recomputed
// value overwrites the strategy field only when it moves by more than the
// per-field minimum delta. Every applied change lands in an append-only
// audit log.

package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// ChangeTrigger classifies which snapshot difference caused a recomputation.
type ChangeTrigger string

const (
	TriggerProductionRate ChangeTrigger = "production-rate"
	TriggerWorkforce      ChangeTrigger = "workforce"
	TriggerDemand         ChangeTrigger = "demand"
	TriggerDemandPhase    ChangeTrigger = "demand-phase"
)

// Minimum change, in units, before a recomputed value overwrites the current
// strategy field. Prevents churn from negligible drift.
const (
	minDeltaEOQ = 50
	minDeltaROP = 20
	minDeltaEPQ = 5
)

// demandChangeTolerance is the relative demand-estimate drift below which a
// snapshot difference is not classified as a demand change.
const demandChangeTolerance = 0.05

// PolicyInputs snapshots everything the formulas read.
type PolicyInputs struct {
	MCECapacity    int
	WMACapacity    int
	PUCCapacity    int
	ARCPCapacity   int
	Experts        int
	Rookies        int
	DemandEstimate float64
	DemandPhase    DemandPhase
}

// PolicyChange is one applied strategy-field overwrite.
type PolicyChange struct {
	Day      int
	Field    string
	OldValue float64
	NewValue float64
	Trigger  ChangeTrigger
	Inputs   PolicyInputs
}

// BottleneckReport identifies the station constraining system throughput.
type BottleneckReport struct {
	Station     StationTag
	Capacity    int
	Utilization float64
	Critical    bool // utilization above 90%
	PerStation  map[StationTag]int
}

// DynamicPolicyCalculator diffs formula inputs between calls and rewrites
// EOQ/ROP/EPQ-derived strategy fields when a relevant change appears.
type DynamicPolicyCalculator struct {
	scenario   *Scenario
	production *ProductionModule
	prev       *PolicyInputs
	log        []PolicyChange
}

func NewDynamicPolicyCalculator(sc *Scenario, prod *ProductionModule) *DynamicPolicyCalculator {
	return &DynamicPolicyCalculator{scenario: sc, production: prod}
}

// Snapshot captures the current formula inputs.
func (d *DynamicPolicyCalculator) Snapshot(s *SimulationState, st *Strategy, demand *DemandModel) PolicyInputs {
	return PolicyInputs{
		MCECapacity:    d.production.MCECapacity(s),
		WMACapacity:    d.production.WMACapacity(s),
		PUCCapacity:    d.production.PUCCapacity(s),
		ARCPCapacity:   d.production.ARCPCapacity(s, st),
		Experts:        s.Experts,
		Rookies:        s.Rookies(),
		DemandEstimate: demand.Mean(s.Day),
		DemandPhase:    demand.Phase(s.Day),
	}
}

// classify returns the first matching change category, or "" when the
// snapshots are equivalent.
func (d *DynamicPolicyCalculator) classify(prev, cur PolicyInputs) ChangeTrigger {
	if cur.MCECapacity != prev.MCECapacity || cur.WMACapacity != prev.WMACapacity ||
		cur.PUCCapacity != prev.PUCCapacity {
		return TriggerProductionRate
	}
	if cur.Experts != prev.Experts || cur.Rookies != prev.Rookies ||
		cur.ARCPCapacity != prev.ARCPCapacity {
		return TriggerWorkforce
	}
	if cur.DemandPhase != prev.DemandPhase {
		return TriggerDemandPhase
	}
	if prev.DemandEstimate > 0 &&
		math.Abs(cur.DemandEstimate-prev.DemandEstimate)/prev.DemandEstimate > demandChangeTolerance {
		return TriggerDemand
	}
	return ""
}

// Recalculate snapshots inputs, and on a relevant change recomputes order
// quantity (EOQ), reorder point (ROP), and standard batch size (EPQ),
// overwriting strategy fields that moved past their minimum delta.
// Returns the changes applied this call.
func (d *DynamicPolicyCalculator) Recalculate(s *SimulationState, st *Strategy, demand *DemandModel) []PolicyChange {
	cur := d.Snapshot(s, st, demand)
	if d.prev == nil {
		d.prev = &cur
		return nil
	}
	trigger := d.classify(*d.prev, cur)
	d.prev = &cur
	if trigger == "" {
		return nil
	}

	st.DailyDemandEstimate = cur.DemandEstimate
	var applied []PolicyChange

	// Material demand covers both lines.
	dailyMaterial := cur.DemandEstimate*float64(d.scenario.CustomMaterialPerUnit) +
		float64(st.StdBatchSize*d.scenario.StdMaterialPerUnit)
	annualMaterial := dailyMaterial * 365

	if eoq, err := EOQ(annualMaterial, d.scenario.OrderingCost, d.scenario.HoldingCostPerUnitYear); err == nil {
		applied = d.applyField(applied, s.Day, "order_quantity", float64(st.OrderQuantity), eoq, minDeltaEOQ, trigger, cur,
			func(v float64) { st.OrderQuantity = int(math.Round(v)) })
	}

	safety := st.SafetyStockDays * dailyMaterial
	if rop, err := ReorderPoint(dailyMaterial, d.scenario.MaterialLeadTimeDays, safety); err == nil {
		applied = d.applyField(applied, s.Day, "reorder_point", float64(st.ReorderPoint), rop, minDeltaROP, trigger, cur,
			func(v float64) { st.ReorderPoint = int(math.Round(v)) })
	}

	stdRate, _ := d.production.SplitMCE(cur.MCECapacity, st.MCEAllocationCustom)
	if float64(stdRate) > cur.DemandEstimate {
		if epq, err := EPQ(cur.DemandEstimate*365, d.scenario.OrderingCost, d.scenario.HoldingCostPerUnitYear,
			float64(stdRate), cur.DemandEstimate); err == nil {
			applied = d.applyField(applied, s.Day, "std_batch_size", float64(st.StdBatchSize), epq, minDeltaEPQ, trigger, cur,
				func(v float64) { st.StdBatchSize = int(math.Round(v)) })
		}
	}

	return applied
}

func (d *DynamicPolicyCalculator) applyField(applied []PolicyChange, day int, field string,
	old, new float64, minDelta float64, trigger ChangeTrigger, inputs PolicyInputs, set func(float64)) []PolicyChange {
	if math.Abs(new-old) <= minDelta {
		return applied
	}
	set(new)
	change := PolicyChange{
		Day:      day,
		Field:    field,
		OldValue: old,
		NewValue: new,
		Trigger:  trigger,
		Inputs:   inputs,
	}
	d.log = append(d.log, change)
	logrus.Infof("[day %03d] policy %s: %.1f -> %.1f (%s)", day, field, old, new, trigger)
	return append(applied, change)
}

// AuditLog returns a copy of every change ever applied.
func (d *DynamicPolicyCalculator) AuditLog() []PolicyChange {
	return append([]PolicyChange(nil), d.log...)
}

// IdentifyBottleneck computes each station's daily capacity and reports the
// minimum as the system constraint. Idempotent on unchanged state.
func (d *DynamicPolicyCalculator) IdentifyBottleneck(s *SimulationState, st *Strategy, dailyDemand float64) BottleneckReport {
	perStation := map[StationTag]int{
		StationMCE:  d.production.MCECapacity(s),
		StationWMA:  d.production.WMACapacity(s),
		StationPUC:  d.production.PUCCapacity(s),
		StationARCP: d.production.ARCPCapacity(s, st),
	}

	bottleneck := StationMCE
	minCap := perStation[StationMCE]
	for _, station := range []StationTag{StationWMA, StationPUC, StationARCP} {
		if perStation[station] < minCap {
			minCap = perStation[station]
			bottleneck = station
		}
	}

	utilization := 0.0
	if minCap > 0 {
		utilization = dailyDemand / float64(minCap)
	} else if dailyDemand > 0 {
		utilization = math.Inf(1)
	}

	return BottleneckReport{
		Station:     bottleneck,
		Capacity:    minCap,
		Utilization: utilization,
		Critical:    utilization > 0.9,
		PerStation:  perStation,
	}
}
