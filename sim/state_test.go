package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone_IsolatesAllMutableState(t *testing.T) {
	sc := DefaultScenario()
	s := NewSimulationState(sc)
	s.PendingOrders = []PendingOrder{{Quantity: 800, ArrivalDay: 4}}
	s.StdWMA = []StandardBatch{{Units: 5, DaysInStage: 2}}
	s.CustomOrders = []*CustomOrder{{ArrivalDay: 1, Station: StationMCE}}
	s.DeliveryTimes = []float64{5}
	s.RecordHistory()

	c := s.Clone()
	require.Equal(t, s.Cash, c.Cash)
	require.Equal(t, s.CustomWIP(), c.CustomWIP())

	// Mutations on the clone must not leak back.
	c.Cash = -1
	c.Machines[StationMCE] = 99
	c.PendingOrders[0].Quantity = 1
	c.StdWMA[0].Units = 1
	c.CustomOrders[0].Station = StationARCP
	c.DeliveryTimes[0] = 99
	c.RookieTraining = append(c.RookieTraining, 3)
	c.History.Cash = append(c.History.Cash, -1)

	assert.Equal(t, 80000.0, s.Cash)
	assert.Equal(t, 1, s.Machines[StationMCE])
	assert.Equal(t, 800, s.PendingOrders[0].Quantity)
	assert.Equal(t, 5, s.StdWMA[0].Units)
	assert.Equal(t, StationMCE, s.CustomOrders[0].Station, "custom orders are deep-copied")
	assert.Equal(t, 5.0, s.DeliveryTimes[0])
	assert.Equal(t, 0, s.Rookies())
	assert.Len(t, s.History.Cash, 1)
}

func TestStandardWIPUnits_SumsAllStages(t *testing.T) {
	s := NewSimulationState(DefaultScenario())
	s.StdPreQueue = 10
	s.StdWMA = []StandardBatch{{Units: 5}, {Units: 3}}
	s.StdPUC = []StandardBatch{{Units: 2}}
	s.StdARCP = []StandardBatch{{Units: 4}}

	assert.Equal(t, 24, s.StandardWIPUnits())
}

func TestNetWorth_CashMinusDebt(t *testing.T) {
	s := NewSimulationState(DefaultScenario())
	s.Cash = 10000
	s.Debt = 3000

	assert.InDelta(t, 7000, s.NetWorth(), 1e-9)
}
