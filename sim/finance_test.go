package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFinanceFixture() (*FinanceModule, *SimulationState, *Strategy) {
	sc := DefaultScenario()
	return NewFinanceModule(sc), NewSimulationState(sc), NewStrategy()
}

func TestMakePayment_AutoLoanOnShortfall(t *testing.T) {
	// GIVEN cash=100, debt=0 and a wage payment of 1000
	fin, s, _ := newFinanceFixture()
	s.Cash = 100
	s.Debt = 0

	// WHEN the payment is made
	fin.MakePayment(s, 1000, PaymentWage)

	// THEN cash lands in [0, 0.01], a loan of ~900 is taken with 5%
	// commission, and debt increases by loan plus commission
	assert.GreaterOrEqual(t, s.Cash, 0.0)
	assert.LessOrEqual(t, s.Cash, 0.01)
	assert.InDelta(t, 900*1.05, s.Debt, 0.01)
}

func TestMakePayment_PlannedCommissionIsCheaper(t *testing.T) {
	fin, s, _ := newFinanceFixture()
	s.Cash = 100
	fin.MakePayment(s, 1000, PaymentPlanned)
	assert.InDelta(t, 900*1.02, s.Debt, 0.01)
}

func TestMakePayment_SufficientCashTakesNoLoan(t *testing.T) {
	fin, s, _ := newFinanceFixture()
	s.Cash = 5000
	fin.MakePayment(s, 1000, PaymentWage)
	assert.Equal(t, 4000.0, s.Cash)
	assert.Equal(t, 0.0, s.Debt)
}

func TestAccrueDailyInterest(t *testing.T) {
	fin, s, _ := newFinanceFixture()
	s.Cash = 10000
	s.Debt = 50000
	fin.AccrueDailyInterest(s)
	assert.InDelta(t, 10000*1.0002, s.Cash, 0.01)
	assert.InDelta(t, 50000*1.001, s.Debt, 0.01)
}

func TestCalculateMinCashReserve(t *testing.T) {
	fin, s, st := newFinanceFixture()
	st.MinCashReserveDays = 5
	st.OvertimeHours = 0

	expense := fin.DailyOperatingExpense(s, st)
	assert.Equal(t, expense*5, fin.CalculateMinCashReserve(s, st))
}

func TestExecuteDebtPaydown_AppliesAggressivenessFraction(t *testing.T) {
	fin, s, st := newFinanceFixture()
	s.Debt = 100000
	reserve := fin.CalculateMinCashReserve(s, st)
	s.Cash = reserve + 10000
	st.DebtPaydownRate = 0.5

	paid := fin.ExecuteDebtPaydown(s, st)

	assert.InDelta(t, 5000, paid, 0.01)
	assert.InDelta(t, 95000, s.Debt, 0.01)
	assert.InDelta(t, reserve+5000, s.Cash, 0.01)
}

func TestExecuteDebtPaydown_NeverBelowReserve(t *testing.T) {
	fin, s, st := newFinanceFixture()
	s.Debt = 100000
	s.Cash = 100 // far below reserve
	assert.Equal(t, 0.0, fin.ExecuteDebtPaydown(s, st))
	assert.Equal(t, 100.0, s.Cash)
}

func TestPreventWageAdvance_TakesPreemptiveLoan(t *testing.T) {
	fin, s, st := newFinanceFixture()
	s.Cash = 0
	s.Debt = 0
	// Trailing revenue must support the loan under the ratio ceilings.
	for i := 0; i < 30; i++ {
		fin.RecordDailyRevenue(s, 10000)
	}

	loan := fin.PreventWageAdvance(s, st)

	require.Greater(t, loan, 0.0)
	assert.InDelta(t, loan, s.Cash, 0.01)
	assert.InDelta(t, loan*1.02, s.Debt, 0.01, "preemptive loan carries the planned commission")
}

func TestPreventWageAdvance_CappedByRatioCeilings(t *testing.T) {
	fin, s, st := newFinanceFixture()
	s.Cash = 0
	s.Debt = 0
	// No trailing revenue: debt/revenue and coverage ceilings are zero.
	loan := fin.PreventWageAdvance(s, st)
	assert.Equal(t, 0.0, loan)
	assert.Equal(t, 0.0, s.Debt)
}

func TestMaxAdditionalDebt_TakesMinimumCeiling(t *testing.T) {
	fin, s, st := newFinanceFixture()
	s.Cash = 0
	s.Debt = 0
	for i := 0; i < 30; i++ {
		fin.RecordDailyRevenue(s, 1000)
	}

	cap := fin.MaxAdditionalDebt(s, st)

	byAssets := st.MaxDebtToAssets * fin.BookAssets(s)
	byRevenue := st.MaxDebtToRevenue * fin.TrailingAnnualRevenue(s)
	assert.LessOrEqual(t, cap, byAssets)
	assert.LessOrEqual(t, cap, byRevenue)
	assert.GreaterOrEqual(t, cap, 0.0)
}

func TestCheckDebtThreshold_ObservationalOnly(t *testing.T) {
	fin, s, st := newFinanceFixture()
	st.MaxDebtThreshold = 1000
	s.Debt = 5000
	machinesBefore := s.Machines[StationMCE]

	flagged := fin.CheckDebtThreshold(s, st)

	assert.True(t, flagged)
	assert.Equal(t, 1, s.DebtThresholdDays)
	// No corrective action: debt and machines untouched.
	assert.Equal(t, 5000.0, s.Debt)
	assert.Equal(t, machinesBefore, s.Machines[StationMCE])
}
