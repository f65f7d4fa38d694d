// Per-run history series and end-of-run summary metrics.
// History is append-only and owned exclusively by one run instance; the
// summary is the only artifact that survives past an optimizer evaluation.

package sim

import (
	"math"
	"sort"
)

// History holds the per-day time series recorded once per simulated day.
type History struct {
	Day          []int
	Cash         []float64
	Debt         []float64
	RawInventory []int
	CustomWIP    []int
	StandardWIP  []int
	NetWorth     []float64
	Revenue      []float64
	Experts      []int
	Rookies      []int
}

func NewHistory() *History {
	return &History{}
}

// Record appends one row derived from the current state.
func (h *History) Record(s *SimulationState) {
	h.Day = append(h.Day, s.Day)
	h.Cash = append(h.Cash, s.Cash)
	h.Debt = append(h.Debt, s.Debt)
	h.RawInventory = append(h.RawInventory, s.RawInventory)
	h.CustomWIP = append(h.CustomWIP, s.CustomWIP())
	h.StandardWIP = append(h.StandardWIP, s.StandardWIPUnits())
	h.NetWorth = append(h.NetWorth, s.NetWorth())
	h.Revenue = append(h.Revenue, s.TotalRevenue)
	h.Experts = append(h.Experts, s.Experts)
	h.Rookies = append(h.Rookies, s.Rookies())
}

// Len returns the number of recorded days.
func (h *History) Len() int {
	return len(h.Day)
}

func (h *History) clone() *History {
	return &History{
		Day:          append([]int(nil), h.Day...),
		Cash:         append([]float64(nil), h.Cash...),
		Debt:         append([]float64(nil), h.Debt...),
		RawInventory: append([]int(nil), h.RawInventory...),
		CustomWIP:    append([]int(nil), h.CustomWIP...),
		StandardWIP:  append([]int(nil), h.StandardWIP...),
		NetWorth:     append([]float64(nil), h.NetWorth...),
		Revenue:      append([]float64(nil), h.Revenue...),
		Experts:      append([]int(nil), h.Experts...),
		Rookies:      append([]int(nil), h.Rookies...),
	}
}

// Distribution captures a statistical summary of a metric.
type Distribution struct {
	Mean  float64
	P50   float64
	P95   float64
	P99   float64
	Min   float64
	Max   float64
	Count int
}

// NewDistribution computes a Distribution from raw values.
// Returns zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	return Distribution{
		Mean:  sum / float64(len(sorted)),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		P99:   percentile(sorted, 99),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// percentile computes the p-th percentile using linear interpolation.
// Input must be sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// SummaryMetrics is the scalar summary extracted from a finished run.
type SummaryMetrics struct {
	Days              int
	FinalCash         float64
	FinalDebt         float64
	NetWorth          float64
	TotalRevenue      float64
	CompletedStandard int
	CompletedCustom   int
	RejectedOrders    int
	StockoutDays      int
	OverflowDays      int
	LateDeliveries    int
	ServiceLevel      float64
	DeliveryTime      Distribution
	MinCashObserved   float64
	TotalRawConsumed  int
}

// ExtractSummary builds SummaryMetrics from a finished run's state.
// Service level is the on-time fraction of completed custom orders; a run
// with no completions scores zero, not one.
func ExtractSummary(s *SimulationState) *SummaryMetrics {
	serviceLevel := 0.0
	if s.CompletedCustom > 0 {
		serviceLevel = float64(s.CompletedCustom-s.LateDeliveries) / float64(s.CompletedCustom)
	}
	return &SummaryMetrics{
		Days:              s.Day,
		FinalCash:         s.Cash,
		FinalDebt:         s.Debt,
		NetWorth:          s.NetWorth(),
		TotalRevenue:      s.TotalRevenue,
		CompletedStandard: s.CompletedStandard,
		CompletedCustom:   s.CompletedCustom,
		RejectedOrders:    s.RejectedOrders,
		StockoutDays:      s.StockoutDays,
		OverflowDays:      s.OverflowDays,
		LateDeliveries:    s.LateDeliveries,
		ServiceLevel:      serviceLevel,
		DeliveryTime:      NewDistribution(s.DeliveryTimes),
		MinCashObserved:   s.MinCashObserved,
		TotalRawConsumed:  s.TotalRawConsumed,
	}
}
