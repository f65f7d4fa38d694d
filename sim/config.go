// Scenario configuration: the yaml document describing costs, capacities,
// finance rates, demand, and the initial factory state. Defaulting happens
// once in LoadScenario; nothing downstream re-derives defaults per use.

package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DemandConfig parameterizes the phased stochastic custom demand model.
// Mean daily demand ramps from InitialMean to PeakMean by PlateauDay, holds
// until DeclineDay, then decays linearly toward FinalMean at the horizon.
type DemandConfig struct {
	InitialMean float64 `yaml:"initial_mean"`
	PeakMean    float64 `yaml:"peak_mean"`
	FinalMean   float64 `yaml:"final_mean"`
	PlateauDay  int     `yaml:"plateau_day"`
	DeclineDay  int     `yaml:"decline_day"`
	HorizonDay  int     `yaml:"horizon_day"`
}

// InitialState describes the factory on day zero.
type InitialState struct {
	Cash         float64            `yaml:"cash"`
	Debt         float64            `yaml:"debt"`
	RawInventory int                `yaml:"raw_inventory"`
	Experts      int                `yaml:"experts"`
	Rookies      int                `yaml:"rookies"`
	Machines     map[StationTag]int `yaml:"machines"`
}

// Scenario is the fully resolved simulation configuration.
type Scenario struct {
	MaterialUnitCost       float64 `yaml:"material_unit_cost"`
	OrderingCost           float64 `yaml:"ordering_cost"`
	HoldingCostPerUnitYear float64 `yaml:"holding_cost_per_unit_year"`
	MaterialLeadTimeDays   int     `yaml:"material_lead_time_days"`

	MCERatePerMachine int `yaml:"mce_rate_per_machine"`
	WMARatePerMachine int `yaml:"wma_rate_per_machine"`
	PUCRatePerMachine int `yaml:"puc_rate_per_machine"`

	// Material units consumed per unit started on each line.
	StdMaterialPerUnit    int `yaml:"std_material_per_unit"`
	CustomMaterialPerUnit int `yaml:"custom_material_per_unit"`

	WMADwellDays int `yaml:"wma_dwell_days"`
	PUCDwellDays int `yaml:"puc_dwell_days"`

	ExpertProductivity float64 `yaml:"expert_productivity"`
	RookieProductivity float64 `yaml:"rookie_productivity"`
	TrainingDays       int     `yaml:"training_days"`
	ExpertDailyWage    float64 `yaml:"expert_daily_wage"`
	RookieDailyWage    float64 `yaml:"rookie_daily_wage"`
	OvertimeWageFactor float64 `yaml:"overtime_wage_factor"`
	DailyOverhead      float64 `yaml:"daily_overhead"`

	MachinePrices       map[StationTag]float64 `yaml:"machine_prices"`
	MachineSaleRecovery float64                `yaml:"machine_sale_recovery"`

	DailyDebtRate     float64 `yaml:"daily_debt_rate"`
	DailyCashRate     float64 `yaml:"daily_cash_rate"`
	WageCommission    float64 `yaml:"wage_commission"`
	PlannedCommission float64 `yaml:"planned_commission"`

	CustomWIPCap      int `yaml:"custom_wip_cap"`
	LateThresholdDays int `yaml:"late_threshold_days"`
	ShutdownDay       int `yaml:"shutdown_day"`

	Demand  DemandConfig `yaml:"demand"`
	Initial InitialState `yaml:"initial"`
}

// DefaultScenario returns the reference factory configuration.
func DefaultScenario() *Scenario {
	return &Scenario{
		MaterialUnitCost:       50,
		OrderingCost:           1000,
		HoldingCostPerUnitYear: 10,
		MaterialLeadTimeDays:   4,

		MCERatePerMachine: 30,
		WMARatePerMachine: 25,
		PUCRatePerMachine: 40,

		StdMaterialPerUnit:    2,
		CustomMaterialPerUnit: 1,

		WMADwellDays: 4,
		PUCDwellDays: 1,

		ExpertProductivity: 3.0,
		RookieProductivity: 1.2,
		TrainingDays:       15,
		ExpertDailyWage:    150,
		RookieDailyWage:    90,
		OvertimeWageFactor: 1.5,
		DailyOverhead:      1000,

		MachinePrices: map[StationTag]float64{
			StationMCE: 20000,
			StationWMA: 15000,
			StationPUC: 12000,
		},
		MachineSaleRecovery: 0.5,

		DailyDebtRate:     0.001,
		DailyCashRate:     0.0002,
		WageCommission:    0.05,
		PlannedCommission: 0.02,

		CustomWIPCap:      360,
		LateThresholdDays: 7,
		ShutdownDay:       365,

		Demand: DemandConfig{
			InitialMean: 10,
			PeakMean:    30,
			FinalMean:   15,
			PlateauDay:  150,
			DeclineDay:  300,
			HorizonDay:  365,
		},
		Initial: InitialState{
			Cash:         80000,
			Debt:         0,
			RawInventory: 500,
			Experts:      4,
			Rookies:      0,
			Machines: map[StationTag]int{
				StationMCE: 1,
				StationWMA: 2,
				StationPUC: 2,
			},
		},
	}
}

// LoadScenario reads a yaml scenario file and resolves it against defaults.
// Fields absent from the document keep their default values.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	sc := DefaultScenario()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse scenario file %q: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Validate rejects scenario setups that would make the classical inventory
// formulas or the finance model meaningless. These are configuration errors,
// not recoverable runtime conditions.
func (sc *Scenario) Validate() error {
	if sc.MaterialUnitCost < 0 {
		return fmt.Errorf("material unit cost must be non-negative, got %v", sc.MaterialUnitCost)
	}
	if sc.HoldingCostPerUnitYear <= 0 {
		return fmt.Errorf("holding cost must be positive, got %v", sc.HoldingCostPerUnitYear)
	}
	if sc.MCERatePerMachine <= 0 || sc.WMARatePerMachine <= 0 || sc.PUCRatePerMachine <= 0 {
		return fmt.Errorf("machine rates must be positive")
	}
	if sc.OrderingCost <= 0 {
		return fmt.Errorf("ordering cost must be positive, got %v", sc.OrderingCost)
	}
	if sc.MaterialLeadTimeDays < 0 {
		return fmt.Errorf("material lead time must be non-negative, got %d", sc.MaterialLeadTimeDays)
	}
	if sc.CustomWIPCap <= 0 {
		return fmt.Errorf("custom WIP cap must be positive, got %d", sc.CustomWIPCap)
	}
	if sc.DailyDebtRate < 0 || sc.DailyCashRate < 0 {
		return fmt.Errorf("interest rates must be non-negative")
	}
	if sc.MachineSaleRecovery < 0 || sc.MachineSaleRecovery > 1 {
		return fmt.Errorf("machine sale recovery must be in [0,1], got %v", sc.MachineSaleRecovery)
	}
	if sc.Demand.DeclineDay < sc.Demand.PlateauDay {
		return fmt.Errorf("demand decline day %d precedes plateau day %d",
			sc.Demand.DeclineDay, sc.Demand.PlateauDay)
	}
	return nil
}
