// Two product lines through four stations. MCE capacity is floor-split
// between lines by the strategy's allocation fraction; WMA and PUC are
// machine-bound; ARCP is a single labor-bound gate shared by both lines,
// with the standard line served first and custom receiving the remainder.
//
// Pipelines:
//
//	standard: preQueue -> MCE -> WMA (4-day dwell) -> PUC (1-day) -> ARCP -> finished
//	custom:   WAITING -> MCE -> WMA_PASS1 -> WMA_PASS2 -> PUC -> ARCP -> complete
//
// Material or capacity shortfall caps the units processed for the day; it is
// never an error. Stages are advanced downstream-first so a unit moves at
// most one station per day.

package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// floorGuard compensates for binary float artifacts before flooring, so a
// nominal 30*0.3 share floors to 9, not 8.
const floorGuard = 1e-9

// ProductionModule advances WIP on both lines for one day at a time.
type ProductionModule struct {
	scenario *Scenario
}

func NewProductionModule(sc *Scenario) *ProductionModule {
	return &ProductionModule{scenario: sc}
}

// MCECapacity is total MCE units per day across both lines.
func (p *ProductionModule) MCECapacity(s *SimulationState) int {
	return s.Machines[StationMCE] * p.scenario.MCERatePerMachine
}

// WMACapacity is WMA units per day, shared by standard batches and both
// custom passes.
func (p *ProductionModule) WMACapacity(s *SimulationState) int {
	return s.Machines[StationWMA] * p.scenario.WMARatePerMachine
}

// PUCCapacity is PUC units per day, shared by both lines.
func (p *ProductionModule) PUCCapacity(s *SimulationState) int {
	return s.Machines[StationPUC] * p.scenario.PUCRatePerMachine
}

// ARCPCapacity is the shared daily labor capacity in units, derived from
// headcount and productivity, overtime-multiplied.
func (p *ProductionModule) ARCPCapacity(s *SimulationState, st *Strategy) int {
	labor := float64(s.Experts)*p.scenario.ExpertProductivity +
		float64(s.Rookies())*p.scenario.RookieProductivity
	return int(math.Floor(labor*overtimeMultiplier(st.OvertimeHours) + floorGuard))
}

// SplitMCE divides total MCE capacity between the lines by the allocation
// fraction, floor-rounded per line. At very low total capacity the floor can
// zero one line's share; that starvation is deliberate and economically
// penalized rather than structurally prevented.
func (p *ProductionModule) SplitMCE(total int, allocationCustom float64) (standard, custom int) {
	custom = int(math.Floor(float64(total)*allocationCustom + floorGuard))
	standard = int(math.Floor(float64(total)*(1-allocationCustom) + floorGuard))
	return standard, custom
}

// AdmitCustomOrders admits up to incoming new custom orders, rejecting any
// that would push WIP past the hard cap. Rejections are counted, not queued.
func (p *ProductionModule) AdmitCustomOrders(s *SimulationState, incoming int) (admitted, rejected int) {
	for i := 0; i < incoming; i++ {
		if s.CustomWIP() >= p.scenario.CustomWIPCap {
			rejected++
			continue
		}
		s.CustomOrders = append(s.CustomOrders, &CustomOrder{
			ArrivalDay: s.Day,
			Station:    StationWaiting,
		})
		admitted++
	}
	if rejected > 0 {
		s.RejectedOrders += rejected
		logrus.Infof("[day %03d] rejected %d custom orders at WIP cap %d", s.Day, rejected, p.scenario.CustomWIPCap)
	}
	return admitted, rejected
}

// ProcessDay advances both pipelines one day: finish work at ARCP, move
// through PUC and WMA, then start new units on MCE, consuming materials.
// Returns true if material shortfall constrained the day's starts.
func (p *ProductionModule) ProcessDay(s *SimulationState, st *Strategy, inv *InventoryModule) bool {
	arcpCap := p.ARCPCapacity(s, st)
	pucCap := p.PUCCapacity(s)
	wmaCap := p.WMACapacity(s)
	stdMCE, customMCE := p.SplitMCE(p.MCECapacity(s), st.MCEAllocationCustom)

	// ARCP: standard first, custom gets the remainder of labor capacity.
	stdFinished := p.drainStandardStage(&s.StdARCP, arcpCap, 0)
	s.FinishedStandard += stdFinished
	s.CompletedStandard += stdFinished

	customRemainder := arcpCap - stdFinished
	p.completeCustomAtARCP(s, customRemainder)

	// PUC: dwell-complete units move to ARCP, standard first.
	toARCP := p.drainStandardStage(&s.StdPUC, pucCap, p.scenario.PUCDwellDays)
	if toARCP > 0 {
		s.StdARCP = append(s.StdARCP, StandardBatch{Units: toARCP})
	}
	pucRemainder := pucCap - toARCP
	p.advanceCustomStation(s, StationPUC, StationARCP, pucRemainder)

	// WMA: 4-day standard batches move to PUC; custom passes share capacity.
	toPUC := p.drainStandardStage(&s.StdWMA, wmaCap, p.scenario.WMADwellDays)
	if toPUC > 0 {
		s.StdPUC = append(s.StdPUC, StandardBatch{Units: toPUC})
	}
	wmaRemainder := wmaCap - toPUC
	used := p.advanceCustomStation(s, StationWMAPass2, StationPUC, wmaRemainder)
	p.advanceCustomStation(s, StationWMAPass1, StationWMAPass2, wmaRemainder-used)

	// Custom MCE processing completes after one day; the capacity gate was
	// paid at start.
	p.advanceCustomStation(s, StationMCE, StationWMAPass1, math.MaxInt32)

	// New starts on MCE, materials permitting.
	shortage := false

	customStarts := p.countAtStation(s, StationWaiting)
	if customStarts > customMCE {
		customStarts = customMCE
	}
	maxByMaterial := s.RawInventory / p.scenario.CustomMaterialPerUnit
	if customStarts > maxByMaterial {
		customStarts = maxByMaterial
		shortage = true
	}
	if customStarts > 0 {
		inv.Consume(s, customStarts*p.scenario.CustomMaterialPerUnit)
		p.startWaitingOrders(s, customStarts)
	}

	// Standard line: cut materials toward the batch-size target, then run MCE.
	cut := st.StdBatchSize - s.StdPreQueue
	if cut > 0 {
		maxCut := s.RawInventory / p.scenario.StdMaterialPerUnit
		if cut > maxCut {
			cut = maxCut
			shortage = true
		}
		if cut > 0 {
			inv.Consume(s, cut*p.scenario.StdMaterialPerUnit)
			s.StdPreQueue += cut
		}
	}
	stdStarts := s.StdPreQueue
	if stdStarts > stdMCE {
		stdStarts = stdMCE
	}
	if stdStarts > 0 {
		s.StdPreQueue -= stdStarts
		s.StdWMA = append(s.StdWMA, StandardBatch{Units: stdStarts})
	}

	p.incrementDwell(s)
	return shortage
}

// drainStandardStage removes up to capacity units whose dwell requirement is
// met, oldest batches first, and returns the units moved.
func (p *ProductionModule) drainStandardStage(stage *[]StandardBatch, capacity, minDwell int) int {
	if capacity <= 0 {
		return 0
	}
	moved := 0
	remaining := (*stage)[:0]
	for _, b := range *stage {
		if b.DaysInStage >= minDwell && moved < capacity {
			take := b.Units
			if take > capacity-moved {
				take = capacity - moved
			}
			moved += take
			b.Units -= take
		}
		if b.Units > 0 {
			remaining = append(remaining, b)
		}
	}
	*stage = remaining
	return moved
}

// completeCustomAtARCP finishes custom orders at ARCP, oldest first, up to
// the remaining labor capacity.
func (p *ProductionModule) completeCustomAtARCP(s *SimulationState, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	done := 0
	remaining := s.CustomOrders[:0]
	for _, o := range s.CustomOrders {
		if o.Station == StationARCP && o.DaysAtStation >= 1 && done < capacity {
			done++
			deliveryDays := float64(s.Day - o.ArrivalDay + 1)
			s.DeliveryTimes = append(s.DeliveryTimes, deliveryDays)
			if deliveryDays > float64(p.scenario.LateThresholdDays) {
				s.LateDeliveries++
			}
			s.FinishedCustom++
			s.CompletedCustom++
			continue
		}
		remaining = append(remaining, o)
	}
	s.CustomOrders = remaining
	return done
}

// advanceCustomStation moves dwell-complete orders from one station to the
// next, oldest first, up to capacity. Returns the units moved.
func (p *ProductionModule) advanceCustomStation(s *SimulationState, from, to StationTag, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	moved := 0
	for _, o := range s.CustomOrders {
		if moved >= capacity {
			break
		}
		if o.Station == from && o.DaysAtStation >= 1 {
			o.Station = to
			o.DaysAtStation = 0
			moved++
		}
	}
	return moved
}

// startWaitingOrders moves the n oldest WAITING orders onto MCE.
func (p *ProductionModule) startWaitingOrders(s *SimulationState, n int) {
	started := 0
	for _, o := range s.CustomOrders {
		if started >= n {
			break
		}
		if o.Station == StationWaiting {
			o.Station = StationMCE
			o.DaysAtStation = 0
			started++
		}
	}
}

func (p *ProductionModule) countAtStation(s *SimulationState, tag StationTag) int {
	n := 0
	for _, o := range s.CustomOrders {
		if o.Station == tag {
			n++
		}
	}
	return n
}

// incrementDwell advances every dwell counter by one day. Units that moved
// today were reset to zero and therefore reach their one-day minimum
// tomorrow.
func (p *ProductionModule) incrementDwell(s *SimulationState) {
	for i := range s.StdWMA {
		s.StdWMA[i].DaysInStage++
	}
	for i := range s.StdPUC {
		s.StdPUC[i].DaysInStage++
	}
	for i := range s.StdARCP {
		s.StdARCP[i].DaysInStage++
	}
	for _, o := range s.CustomOrders {
		if o.Station != StationWaiting {
			o.DaysAtStation++
		}
	}
}
