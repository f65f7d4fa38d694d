// Finance and debt management: daily interest, payments backed by automatic
// borrowing, preemptive wage loans capped by ratio ceilings, and paydown.
// Cash must never be observably negative after any payment call.

package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// PaymentKind selects the commission applied to an automatic loan.
type PaymentKind string

const (
	// PaymentWage marks a wage-triggered emergency loan (5% commission).
	PaymentWage PaymentKind = "wage"
	// PaymentPlanned marks a planned expense loan (2% commission).
	PaymentPlanned PaymentKind = "planned"
)

// revenueWindowDays bounds the trailing revenue window used by the
// debt-to-revenue and interest-coverage ceilings.
const revenueWindowDays = 30

// FinanceModule owns interest accrual, payments, and the debt manager.
type FinanceModule struct {
	scenario *Scenario
}

func NewFinanceModule(sc *Scenario) *FinanceModule {
	return &FinanceModule{scenario: sc}
}

// AccrueDailyInterest charges interest on debt and credits interest on cash.
func (f *FinanceModule) AccrueDailyInterest(s *SimulationState) {
	s.Debt += s.Debt * f.scenario.DailyDebtRate
	s.Cash += s.Cash * f.scenario.DailyCashRate
}

// MakePayment pays amount from cash. If cash falls short, the exact
// shortfall is borrowed automatically; the commission (5% wage-triggered,
// 2% planned) is added to debt, not deducted from cash. Afterward cash is
// never negative.
func (f *FinanceModule) MakePayment(s *SimulationState, amount float64, kind PaymentKind) {
	if amount <= 0 {
		return
	}
	if s.Cash >= amount {
		s.Cash -= amount
		return
	}
	shortfall := amount - s.Cash
	commission := f.scenario.PlannedCommission
	if kind == PaymentWage {
		commission = f.scenario.WageCommission
	}
	s.Debt += shortfall * (1 + commission)
	s.Cash = 0
	logrus.Infof("[day %03d] auto-loan %.2f (%s, commission %.0f%%)",
		s.Day, shortfall, kind, commission*100)
}

// overtimeMultiplier converts overtime hours (on a nominal 8-hour day) into
// a capacity multiplier.
func overtimeMultiplier(hours float64) float64 {
	if hours <= 0 {
		return 1
	}
	return 1 + hours/8
}

// DailyPayroll returns the day's wage bill, overtime included.
func (f *FinanceModule) DailyPayroll(s *SimulationState, st *Strategy) float64 {
	base := float64(s.Experts)*f.scenario.ExpertDailyWage +
		float64(s.Rookies())*f.scenario.RookieDailyWage
	if st.OvertimeHours > 0 {
		base *= 1 + st.OvertimeHours/8*f.scenario.OvertimeWageFactor
	}
	return base
}

// DailyOperatingExpense amortizes the day's payroll plus fixed overhead.
func (f *FinanceModule) DailyOperatingExpense(s *SimulationState, st *Strategy) float64 {
	return f.DailyPayroll(s, st) + f.scenario.DailyOverhead
}

// CalculateMinCashReserve is the amortized daily operating expense times the
// configured reserve days.
func (f *FinanceModule) CalculateMinCashReserve(s *SimulationState, st *Strategy) float64 {
	return f.DailyOperatingExpense(s, st) * st.MinCashReserveDays
}

// BookAssets values the factory at book: cash, materials at cost, WIP and
// finished goods at material content, machines at purchase price.
func (f *FinanceModule) BookAssets(s *SimulationState) float64 {
	sc := f.scenario
	assets := s.Cash
	assets += float64(s.RawInventory) * sc.MaterialUnitCost
	assets += float64(s.StandardWIPUnits()*sc.StdMaterialPerUnit) * sc.MaterialUnitCost
	assets += float64(s.CustomWIP()*sc.CustomMaterialPerUnit) * sc.MaterialUnitCost
	assets += float64(s.FinishedStandard*sc.StdMaterialPerUnit) * sc.MaterialUnitCost
	assets += float64(s.FinishedCustom*sc.CustomMaterialPerUnit) * sc.MaterialUnitCost
	for station, count := range s.Machines {
		assets += float64(count) * sc.MachinePrices[station]
	}
	return assets
}

// TrailingAnnualRevenue annualizes the trailing revenue window.
func (f *FinanceModule) TrailingAnnualRevenue(s *SimulationState) float64 {
	if len(s.RevenueWindow) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range s.RevenueWindow {
		sum += r
	}
	return sum / float64(len(s.RevenueWindow)) * 365
}

// RecordDailyRevenue appends the day's revenue to the trailing window.
func (f *FinanceModule) RecordDailyRevenue(s *SimulationState, revenue float64) {
	s.RevenueWindow = append(s.RevenueWindow, revenue)
	if len(s.RevenueWindow) > revenueWindowDays {
		s.RevenueWindow = s.RevenueWindow[len(s.RevenueWindow)-revenueWindowDays:]
	}
}

// MaxAdditionalDebt returns the largest loan permitted by the three
// simultaneously enforced ratio ceilings: debt/assets, debt/trailing-revenue,
// and interest coverage. Never negative.
func (f *FinanceModule) MaxAdditionalDebt(s *SimulationState, st *Strategy) float64 {
	assets := f.BookAssets(s)
	byAssets := st.MaxDebtToAssets*assets - s.Debt

	annualRevenue := f.TrailingAnnualRevenue(s)
	byRevenue := st.MaxDebtToRevenue*annualRevenue - s.Debt

	annualRate := f.scenario.DailyDebtRate * 365
	byCoverage := math.Inf(1)
	if annualRate > 0 && st.MinInterestCoverage > 0 {
		operatingIncome := annualRevenue - f.DailyOperatingExpense(s, st)*365
		if operatingIncome < 0 {
			operatingIncome = 0
		}
		byCoverage = operatingIncome/(st.MinInterestCoverage*annualRate) - s.Debt
	}

	cap := math.Min(byAssets, math.Min(byRevenue, byCoverage))
	if cap < 0 {
		return 0
	}
	return cap
}

// PreventWageAdvance takes a cheaper preemptive planned loan ahead of payroll
// when a cash shortfall is projected within the lead window. The loan covers
// the projected gap plus the minimum reserve, capped by MaxAdditionalDebt.
// Returns the principal borrowed (zero if no loan was needed or permitted).
func (f *FinanceModule) PreventWageAdvance(s *SimulationState, st *Strategy) float64 {
	if st.WageLoanLeadDays <= 0 {
		return 0
	}
	projected := f.DailyOperatingExpense(s, st) * float64(st.WageLoanLeadDays)
	need := projected + f.CalculateMinCashReserve(s, st) - s.Cash
	if need <= 0 {
		return 0
	}
	loan := math.Min(need, f.MaxAdditionalDebt(s, st))
	if loan <= 0 {
		return 0
	}
	s.Cash += loan
	s.Debt += loan * (1 + f.scenario.PlannedCommission)
	logrus.Infof("[day %03d] preemptive wage loan %.2f (projected gap %.2f)", s.Day, loan, need)
	return loan
}

// ExecuteDebtPaydown applies the aggressiveness fraction of cash above the
// minimum reserve to outstanding debt.
func (f *FinanceModule) ExecuteDebtPaydown(s *SimulationState, st *Strategy) float64 {
	if s.Debt <= 0 || st.DebtPaydownRate <= 0 {
		return 0
	}
	excess := s.Cash - f.CalculateMinCashReserve(s, st)
	if excess <= 0 {
		return 0
	}
	pay := excess * st.DebtPaydownRate
	if pay > s.Debt {
		pay = s.Debt
	}
	s.Cash -= pay
	s.Debt -= pay
	return pay
}

// CheckDebtThreshold flags debt above the configured threshold. The flag is
// telemetry only; no corrective action is enforced here.
func (f *FinanceModule) CheckDebtThreshold(s *SimulationState, st *Strategy) bool {
	if st.MaxDebtThreshold > 0 && s.Debt > st.MaxDebtThreshold {
		s.DebtThresholdDays++
		logrus.Warnf("[day %03d] debt %.0f exceeds threshold %.0f", s.Day, s.Debt, st.MaxDebtThreshold)
		return true
	}
	return false
}
