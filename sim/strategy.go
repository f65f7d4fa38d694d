// Strategy: the full policy-parameter set plus the scheduled action list
// governing one run. Compressed representations (genes, policy parameters)
// never touch SimulationState directly; they expand into one of these.

package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ActionType tags a StrategyAction variant. Every type listed here must have
// a handler in the engine's dispatch; the test suite enforces this.
type ActionType string

const (
	ActionOrderMaterials      ActionType = "ORDER_MATERIALS"
	ActionAdjustBatchSize     ActionType = "ADJUST_BATCH_SIZE"
	ActionAdjustMCEAllocation ActionType = "ADJUST_MCE_ALLOCATION"
	ActionHireRookie          ActionType = "HIRE_ROOKIE"
	ActionTakeLoan            ActionType = "TAKE_LOAN"
	ActionPayDebt             ActionType = "PAY_DEBT"
	ActionBuyMachine          ActionType = "BUY_MACHINE"
	ActionSellMachine         ActionType = "SELL_MACHINE"
	ActionAdjustPrice         ActionType = "ADJUST_PRICE"
	ActionSetReorderPoint     ActionType = "SET_REORDER_POINT"
	ActionSetOrderQuantity    ActionType = "SET_ORDER_QUANTITY"
)

// AllActionTypes lists every action variant, in declaration order.
// Used by the dispatch-coverage test.
var AllActionTypes = []ActionType{
	ActionOrderMaterials,
	ActionAdjustBatchSize,
	ActionAdjustMCEAllocation,
	ActionHireRookie,
	ActionTakeLoan,
	ActionPayDebt,
	ActionBuyMachine,
	ActionSellMachine,
	ActionAdjustPrice,
	ActionSetReorderPoint,
	ActionSetOrderQuantity,
}

// StrategyAction is a day-stamped instruction applied exactly once, when the
// simulation reaches Day, in array order. Only the fields relevant to the
// Type are read; the rest stay zero.
type StrategyAction struct {
	Day  int        `yaml:"day"`
	Type ActionType `yaml:"type"`

	Quantity int         `yaml:"quantity,omitempty"` // units, machines, or hires
	Amount   float64     `yaml:"amount,omitempty"`   // money
	Fraction float64     `yaml:"fraction,omitempty"` // MCE allocation
	Station  StationTag  `yaml:"station,omitempty"`  // machine station
	Line     ProductLine `yaml:"line,omitempty"`     // price line
	Price    float64     `yaml:"price,omitempty"`
}

// Strategy is the flat policy field set plus the ordered timed-action list.
type Strategy struct {
	// Inventory policy.
	ReorderPoint  int `yaml:"reorder_point"`
	OrderQuantity int `yaml:"order_quantity"`
	StdBatchSize  int `yaml:"std_batch_size"`

	// Capacity allocation.
	MCEAllocationCustom float64 `yaml:"mce_allocation_custom"`

	// Pricing.
	StdPrice            float64 `yaml:"std_price"`
	CustomBasePrice     float64 `yaml:"custom_base_price"`
	CustomPenaltyPerDay float64 `yaml:"custom_penalty_per_day"`
	CustomTargetDays    float64 `yaml:"custom_target_days"`

	// Workforce.
	OvertimeHours float64 `yaml:"overtime_hours"`

	// Debt management.
	DebtPaydownRate     float64 `yaml:"debt_paydown_rate"` // fraction of excess cash applied daily
	MinCashReserveDays  float64 `yaml:"min_cash_reserve_days"`
	MaxDebtThreshold    float64 `yaml:"max_debt_threshold"`
	MaxDebtToAssets     float64 `yaml:"max_debt_to_assets"`
	MaxDebtToRevenue    float64 `yaml:"max_debt_to_revenue"`
	MinInterestCoverage float64 `yaml:"min_interest_coverage"`
	WageLoanLeadDays    int     `yaml:"wage_loan_lead_days"`

	// Demand-model parameters carried on the strategy so the policy
	// calculator can re-derive formulas without reaching into the scenario.
	DailyDemandEstimate float64 `yaml:"daily_demand_estimate"`
	DemandGrowthRate    float64 `yaml:"demand_growth_rate"`
	DemandPlateauDay    int     `yaml:"demand_plateau_day"`
	DemandDeclineDay    int     `yaml:"demand_decline_day"`

	// Safety stock and service targets feeding ROP recomputation.
	SafetyStockDays    float64 `yaml:"safety_stock_days"`
	TargetServiceLevel float64 `yaml:"target_service_level"`

	// Feature switches.
	DynamicPolicyEnabled bool `yaml:"dynamic_policy_enabled"`
	RulesEnabled         bool `yaml:"rules_enabled"`

	EndDay int `yaml:"end_day"`

	TimedActions []StrategyAction `yaml:"timed_actions"`
}

// NewStrategy returns a Strategy with workable defaults. Callers overriding
// fields do so after construction; nothing downstream re-applies defaults.
func NewStrategy() *Strategy {
	return &Strategy{
		ReorderPoint:  200,
		OrderQuantity: 800,
		StdBatchSize:  60,

		MCEAllocationCustom: 0.5,

		StdPrice:            225,
		CustomBasePrice:     110,
		CustomPenaltyPerDay: 4,
		CustomTargetDays:    5,

		OvertimeHours: 0,

		DebtPaydownRate:     0.2,
		MinCashReserveDays:  5,
		MaxDebtThreshold:    200000,
		MaxDebtToAssets:     0.6,
		MaxDebtToRevenue:    2.0,
		MinInterestCoverage: 3.0,
		WageLoanLeadDays:    3,

		DailyDemandEstimate: 20,
		DemandGrowthRate:    0.13,
		DemandPlateauDay:    150,
		DemandDeclineDay:    300,

		SafetyStockDays:    2,
		TargetServiceLevel: 0.95,

		DynamicPolicyEnabled: true,
		RulesEnabled:         true,

		EndDay: 365,
	}
}

// LoadStrategy reads a yaml strategy document over NewStrategy defaults.
func LoadStrategy(path string) (*Strategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strategy file: %w", err)
	}
	st := NewStrategy()
	if err := yaml.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("parse strategy file %q: %w", path, err)
	}
	return st, nil
}

// Clone returns a deep copy of the strategy, including timed actions.
// The engine mutates policy fields in place (dynamic recomputation, actions),
// so shared Strategy values must be cloned per run.
func (st *Strategy) Clone() *Strategy {
	c := *st
	c.TimedActions = append([]StrategyAction(nil), st.TimedActions...)
	return &c
}
