// Delivery-time-dependent custom pricing and same-day sales recognition.
// Finished goods never carry over: everything finished today is sold today.

package sim

import (
	"github.com/sirupsen/logrus"
)

// PricingModule prices the custom line against realized delivery times and
// recognizes revenue for the day's finished goods.
type PricingModule struct {
	scenario *Scenario
}

func NewPricingModule(sc *Scenario) *PricingModule {
	return &PricingModule{scenario: sc}
}

// AvgDeliveryTime is the running mean of all realized custom delivery times.
// Zero until the first completion.
func (pm *PricingModule) AvgDeliveryTime(s *SimulationState) float64 {
	if len(s.DeliveryTimes) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range s.DeliveryTimes {
		sum += d
	}
	return sum / float64(len(s.DeliveryTimes))
}

// CustomPrice applies the linear delivery-time decay, floored at half base:
//
//	price = max(0.5*base, base - penaltyPerDay*max(0, avgDelivery-target))
func (pm *PricingModule) CustomPrice(s *SimulationState, st *Strategy) float64 {
	base := st.CustomBasePrice
	overrun := pm.AvgDeliveryTime(s) - st.CustomTargetDays
	if overrun < 0 {
		overrun = 0
	}
	price := base - st.CustomPenaltyPerDay*overrun
	if price < 0.5*base {
		price = 0.5 * base
	}
	return price
}

// SellFinishedGoods sells all finished goods at current prices, credits
// cash, and zeroes the finished counts. Returns the day's revenue.
func (pm *PricingModule) SellFinishedGoods(s *SimulationState, st *Strategy) float64 {
	revenue := float64(s.FinishedStandard) * st.StdPrice
	revenue += float64(s.FinishedCustom) * pm.CustomPrice(s, st)
	if revenue > 0 {
		logrus.Debugf("[day %03d] sold %d standard + %d custom for %.2f",
			s.Day, s.FinishedStandard, s.FinishedCustom, revenue)
	}
	s.FinishedStandard = 0
	s.FinishedCustom = 0
	s.Cash += revenue
	s.TotalRevenue += revenue
	return revenue
}
