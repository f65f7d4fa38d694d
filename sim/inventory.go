// Raw-material inventory: reordering, order arrival, and capped consumption.

package sim

import (
	"github.com/sirupsen/logrus"
)

// InventoryModule owns raw-material ordering and consumption policy.
type InventoryModule struct {
	scenario *Scenario
	finance  *FinanceModule
}

func NewInventoryModule(sc *Scenario, fin *FinanceModule) *InventoryModule {
	return &InventoryModule{scenario: sc, finance: fin}
}

// ProcessArrivals receives every pending order whose arrival day has come.
func (inv *InventoryModule) ProcessArrivals(s *SimulationState) {
	remaining := s.PendingOrders[:0]
	for _, o := range s.PendingOrders {
		if o.ArrivalDay <= s.Day {
			s.RawInventory += o.Quantity
			logrus.Debugf("[day %03d] received %d raw units", s.Day, o.Quantity)
		} else {
			remaining = append(remaining, o)
		}
	}
	s.PendingOrders = remaining
}

// CheckAndReorder places one full-quantity order when inventory is at or
// below the reorder point and cash covers the full cost. No partial orders:
// if cash falls short the reorder is silently skipped and retried tomorrow.
func (inv *InventoryModule) CheckAndReorder(s *SimulationState, st *Strategy) bool {
	if s.RawInventory > st.ReorderPoint {
		return false
	}
	if inv.hasPendingOrder(s) {
		return false
	}
	qty := st.OrderQuantity
	if qty <= 0 {
		return false
	}
	cost := float64(qty)*inv.scenario.MaterialUnitCost + inv.scenario.OrderingCost
	if s.Cash < cost {
		logrus.Debugf("[day %03d] reorder skipped: cost %.0f exceeds cash %.0f", s.Day, cost, s.Cash)
		return false
	}
	s.Cash -= cost
	s.PendingOrders = append(s.PendingOrders, PendingOrder{
		Quantity:   qty,
		ArrivalDay: s.Day + inv.scenario.MaterialLeadTimeDays,
	})
	logrus.Infof("[day %03d] ordered %d raw units (cost %.0f, arrives day %d)",
		s.Day, qty, cost, s.Day+inv.scenario.MaterialLeadTimeDays)
	return true
}

// PlaceOrder places an explicit order of the given quantity (timed action or
// rule firing), subject to the same cash check as CheckAndReorder.
func (inv *InventoryModule) PlaceOrder(s *SimulationState, qty int) bool {
	if qty <= 0 {
		return false
	}
	cost := float64(qty)*inv.scenario.MaterialUnitCost + inv.scenario.OrderingCost
	if s.Cash < cost {
		return false
	}
	s.Cash -= cost
	s.PendingOrders = append(s.PendingOrders, PendingOrder{
		Quantity:   qty,
		ArrivalDay: s.Day + inv.scenario.MaterialLeadTimeDays,
	})
	return true
}

// Consume removes up to requested units from stock and returns the units
// actually consumed plus the shortfall. Inventory never goes negative.
func (inv *InventoryModule) Consume(s *SimulationState, requested int) (consumed, shortfall int) {
	if requested <= 0 {
		return 0, 0
	}
	consumed = requested
	if consumed > s.RawInventory {
		consumed = s.RawInventory
		shortfall = requested - consumed
	}
	s.RawInventory -= consumed
	s.TotalRawConsumed += consumed
	return consumed, shortfall
}

func (inv *InventoryModule) hasPendingOrder(s *SimulationState) bool {
	return len(s.PendingOrders) > 0
}
