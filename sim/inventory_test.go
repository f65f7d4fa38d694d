package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInventoryFixture() (*InventoryModule, *SimulationState, *Strategy) {
	sc := DefaultScenario()
	return NewInventoryModule(sc, NewFinanceModule(sc)), NewSimulationState(sc), NewStrategy()
}

func TestCheckAndReorder_PlacesFullOrderAtReorderPoint(t *testing.T) {
	inv, s, st := newInventoryFixture()
	st.ReorderPoint = 200
	st.OrderQuantity = 800
	s.RawInventory = 200
	s.Cash = 100000
	s.Day = 10

	ordered := inv.CheckAndReorder(s, st)

	require.True(t, ordered)
	require.Len(t, s.PendingOrders, 1)
	assert.Equal(t, 800, s.PendingOrders[0].Quantity)
	assert.Equal(t, 14, s.PendingOrders[0].ArrivalDay, "4-day lead time")
	// 800 * 50 + 1000 fixed ordering cost.
	assert.InDelta(t, 100000-41000, s.Cash, 1e-9)
}

func TestCheckAndReorder_SkipsAboveReorderPoint(t *testing.T) {
	inv, s, st := newInventoryFixture()
	s.RawInventory = st.ReorderPoint + 1
	s.Cash = 100000

	assert.False(t, inv.CheckAndReorder(s, st))
	assert.Empty(t, s.PendingOrders)
}

func TestCheckAndReorder_NoPartialOrderWhenCashShort(t *testing.T) {
	inv, s, st := newInventoryFixture()
	s.RawInventory = 0
	s.Cash = 500 // nowhere near the full order cost

	assert.False(t, inv.CheckAndReorder(s, st))
	assert.Empty(t, s.PendingOrders, "no partial orders, retry tomorrow")
	assert.Equal(t, 500.0, s.Cash)
}

func TestCheckAndReorder_AtMostOneOutstandingOrder(t *testing.T) {
	inv, s, st := newInventoryFixture()
	s.RawInventory = 0
	s.Cash = 200000

	require.True(t, inv.CheckAndReorder(s, st))
	assert.False(t, inv.CheckAndReorder(s, st), "pending order suppresses reorder")
	assert.Len(t, s.PendingOrders, 1)
}

func TestProcessArrivals_ReceivesDueOrders(t *testing.T) {
	inv, s, _ := newInventoryFixture()
	s.Day = 14
	s.RawInventory = 10
	s.PendingOrders = []PendingOrder{
		{Quantity: 800, ArrivalDay: 14},
		{Quantity: 300, ArrivalDay: 20},
	}

	inv.ProcessArrivals(s)

	assert.Equal(t, 810, s.RawInventory)
	require.Len(t, s.PendingOrders, 1)
	assert.Equal(t, 20, s.PendingOrders[0].ArrivalDay)
}

func TestConsume_CapsAtStockAndReportsShortfall(t *testing.T) {
	inv, s, _ := newInventoryFixture()
	s.RawInventory = 5

	consumed, shortfall := inv.Consume(s, 8)

	assert.Equal(t, 5, consumed)
	assert.Equal(t, 3, shortfall)
	assert.Equal(t, 0, s.RawInventory, "inventory never goes negative")
	assert.Equal(t, 5, s.TotalRawConsumed)
}
