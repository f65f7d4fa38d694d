// Closed-form operations-research formulas: EOQ, reorder point, EPQ, and the
// newsvendor critical ratio. Misconfigured inputs (zero holding cost,
// production rate not exceeding demand rate) indicate an invalid scenario
// setup and fail fast.

package sim

import (
	"fmt"
	"math"
)

// EOQ computes the economic order quantity.
//
//	EOQ = sqrt(2 * annualDemand * orderingCost / holdingCostPerUnit)
func EOQ(annualDemand, orderingCost, holdingCostPerUnit float64) (float64, error) {
	if annualDemand <= 0 {
		return 0, fmt.Errorf("EOQ: annual demand must be positive, got %v", annualDemand)
	}
	if orderingCost <= 0 {
		return 0, fmt.Errorf("EOQ: ordering cost must be positive, got %v", orderingCost)
	}
	if holdingCostPerUnit <= 0 {
		return 0, fmt.Errorf("EOQ: holding cost must be positive, got %v", holdingCostPerUnit)
	}
	return math.Sqrt(2 * annualDemand * orderingCost / holdingCostPerUnit), nil
}

// ReorderPoint computes demand over lead time plus safety stock.
func ReorderPoint(dailyDemand float64, leadTimeDays int, safetyStock float64) (float64, error) {
	if dailyDemand < 0 {
		return 0, fmt.Errorf("reorder point: daily demand must be non-negative, got %v", dailyDemand)
	}
	if leadTimeDays < 0 {
		return 0, fmt.Errorf("reorder point: lead time must be non-negative, got %d", leadTimeDays)
	}
	if safetyStock < 0 {
		return 0, fmt.Errorf("reorder point: safety stock must be non-negative, got %v", safetyStock)
	}
	return dailyDemand*float64(leadTimeDays) + safetyStock, nil
}

// EPQ computes the economic production quantity.
//
//	EPQ = sqrt(2 * annualDemand * setupCost / holdingCost) / sqrt(1 - d/p)
//
// The production rate must strictly exceed the demand rate; otherwise the
// formula has no finite solution and the scenario is invalid.
func EPQ(annualDemand, setupCost, holdingCostPerUnit, dailyProductionRate, dailyDemandRate float64) (float64, error) {
	if annualDemand <= 0 {
		return 0, fmt.Errorf("EPQ: annual demand must be positive, got %v", annualDemand)
	}
	if setupCost <= 0 {
		return 0, fmt.Errorf("EPQ: setup cost must be positive, got %v", setupCost)
	}
	if holdingCostPerUnit <= 0 {
		return 0, fmt.Errorf("EPQ: holding cost must be positive, got %v", holdingCostPerUnit)
	}
	if dailyProductionRate <= dailyDemandRate {
		return 0, fmt.Errorf("EPQ: production rate %v must exceed demand rate %v", dailyProductionRate, dailyDemandRate)
	}
	base := math.Sqrt(2 * annualDemand * setupCost / holdingCostPerUnit)
	return base / math.Sqrt(1-dailyDemandRate/dailyProductionRate), nil
}

// NewsvendorCriticalRatio computes the optimal in-stock probability
// Cu / (Cu + Co), with underage cost Cu = price - cost and overage cost
// Co = cost - salvage.
func NewsvendorCriticalRatio(price, cost, salvage float64) (float64, error) {
	underage := price - cost
	overage := cost - salvage
	if underage <= 0 {
		return 0, fmt.Errorf("newsvendor: price %v must exceed cost %v", price, cost)
	}
	if overage <= 0 {
		return 0, fmt.Errorf("newsvendor: cost %v must exceed salvage %v", cost, salvage)
	}
	return underage / (underage + overage), nil
}
