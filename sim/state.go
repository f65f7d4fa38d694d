// Holds the mutable per-run simulation state: cash, debt, inventory, WIP on
// both product lines, workforce, machines, and the per-day history series.
// One run owns one state exclusively; optimizer evaluations clone it.

package sim

// StationTag identifies a production station (or lifecycle stage) for units
// moving through the factory.
type StationTag string

const (
	StationWaiting  StationTag = "WAITING"
	StationMCE      StationTag = "MCE"
	StationWMA      StationTag = "WMA"
	StationWMAPass1 StationTag = "WMA_PASS1"
	StationWMAPass2 StationTag = "WMA_PASS2"
	StationPUC      StationTag = "PUC"
	StationARCP     StationTag = "ARCP"
	StationComplete StationTag = "COMPLETE"
)

// ProductLine distinguishes the two product lines sharing the factory.
type ProductLine string

const (
	LineStandard ProductLine = "standard"
	LineCustom   ProductLine = "custom"
)

// CustomOrder is a single custom-line order moving through the station
// state machine WAITING -> MCE -> WMA_PASS1 -> WMA_PASS2 -> PUC -> ARCP.
// Orders advance oldest-first, gated by per-station daily capacity and a
// one-day minimum dwell at each station.
type CustomOrder struct {
	ArrivalDay    int
	Station       StationTag
	DaysAtStation int
}

// StandardBatch is a batch of standard-line units dwelling in one pipeline
// stage. DaysInStage counts full days spent in the current stage.
type StandardBatch struct {
	Units       int
	DaysInStage int
}

// PendingOrder is a raw-material purchase in transit.
type PendingOrder struct {
	Quantity   int
	ArrivalDay int
}

// SimulationState is the complete mutable state of one factory run.
// The engine mutates it in place, one day at a time. cash and raw inventory
// are invariantly non-negative; shortfalls are resolved by automatic
// borrowing and partial fulfillment, never by going negative.
type SimulationState struct {
	Day  int
	Cash float64
	Debt float64

	RawInventory  int
	PendingOrders []PendingOrder

	// Standard line pipeline stages, upstream to downstream. StdPreQueue is
	// material-ready units not yet started on MCE.
	StdPreQueue int
	StdWMA      []StandardBatch
	StdPUC      []StandardBatch
	StdARCP     []StandardBatch

	// Custom line WIP: every admitted, unfinished order. Hard cap enforced
	// at admission (CustomWIPCap); excess incoming orders are rejected.
	CustomOrders []*CustomOrder

	FinishedStandard int
	FinishedCustom   int

	Experts int
	// One entry per rookie, holding remaining training days. Rookies work at
	// reduced productivity until they graduate to expert.
	RookieTraining []int

	Machines map[StationTag]int

	// Counters and accumulators surviving to the summary.
	RejectedOrders    int
	StockoutDays      int
	OverflowDays      int
	DebtThresholdDays int
	CompletedStandard int
	CompletedCustom   int
	LateDeliveries    int
	TotalRevenue      float64
	TotalRawConsumed  int
	DeliveryTimes     []float64
	MinCashObserved   float64

	// Trailing daily revenue window for debt-ratio ceilings.
	RevenueWindow []float64

	History *History
}

// NewSimulationState builds the day-zero state from a resolved scenario.
func NewSimulationState(sc *Scenario) *SimulationState {
	machines := make(map[StationTag]int, len(sc.Initial.Machines))
	for k, v := range sc.Initial.Machines {
		machines[k] = v
	}
	rookies := make([]int, sc.Initial.Rookies)
	for i := range rookies {
		rookies[i] = sc.TrainingDays
	}
	return &SimulationState{
		Cash:            sc.Initial.Cash,
		Debt:            sc.Initial.Debt,
		RawInventory:    sc.Initial.RawInventory,
		Experts:         sc.Initial.Experts,
		RookieTraining:  rookies,
		Machines:        machines,
		CustomOrders:    []*CustomOrder{},
		MinCashObserved: sc.Initial.Cash,
		History:         NewHistory(),
	}
}

// Rookies returns the current rookie headcount.
func (s *SimulationState) Rookies() int {
	return len(s.RookieTraining)
}

// CustomWIP returns the number of admitted, unfinished custom orders.
func (s *SimulationState) CustomWIP() int {
	return len(s.CustomOrders)
}

// StandardWIPUnits returns total standard-line units in process, including
// material-ready units waiting on MCE.
func (s *SimulationState) StandardWIPUnits() int {
	total := s.StdPreQueue
	for _, b := range s.StdWMA {
		total += b.Units
	}
	for _, b := range s.StdPUC {
		total += b.Units
	}
	for _, b := range s.StdARCP {
		total += b.Units
	}
	return total
}

// NetWorth is cash minus debt. Book assets are valued separately by the
// finance module.
func (s *SimulationState) NetWorth() float64 {
	return s.Cash - s.Debt
}

// Clone produces a deep copy sharing no mutable data with the receiver.
// Search-layer evaluations and the policy engine's lookahead projection both
// depend on this: aliasing between a projection and the authoritative state
// would corrupt the run.
func (s *SimulationState) Clone() *SimulationState {
	c := *s

	c.PendingOrders = append([]PendingOrder(nil), s.PendingOrders...)
	c.StdWMA = append([]StandardBatch(nil), s.StdWMA...)
	c.StdPUC = append([]StandardBatch(nil), s.StdPUC...)
	c.StdARCP = append([]StandardBatch(nil), s.StdARCP...)
	c.RookieTraining = append([]int(nil), s.RookieTraining...)
	c.DeliveryTimes = append([]float64(nil), s.DeliveryTimes...)
	c.RevenueWindow = append([]float64(nil), s.RevenueWindow...)

	c.CustomOrders = make([]*CustomOrder, len(s.CustomOrders))
	for i, o := range s.CustomOrders {
		oc := *o
		c.CustomOrders[i] = &oc
	}

	c.Machines = make(map[StationTag]int, len(s.Machines))
	for k, v := range s.Machines {
		c.Machines[k] = v
	}

	if s.History != nil {
		c.History = s.History.clone()
	}
	return &c
}

// RecordHistory appends one row to every history series. Called exactly once
// per simulated day, after all modules have run.
func (s *SimulationState) RecordHistory() {
	if s.Cash < s.MinCashObserved {
		s.MinCashObserved = s.Cash
	}
	s.History.Record(s)
}
