package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScenario_Validates(t *testing.T) {
	require.NoError(t, DefaultScenario().Validate())
}

func TestValidate_FailsFastOnBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"negative material cost", func(sc *Scenario) { sc.MaterialUnitCost = -1 }},
		{"zero WIP cap", func(sc *Scenario) { sc.CustomWIPCap = 0 }},
		{"negative lead time", func(sc *Scenario) { sc.MaterialLeadTimeDays = -1 }},
		{"zero MCE rate", func(sc *Scenario) { sc.MCERatePerMachine = 0 }},
		{"decline before plateau", func(sc *Scenario) { sc.Demand.DeclineDay = sc.Demand.PlateauDay - 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sc := DefaultScenario()
			tc.mutate(sc)
			assert.Error(t, sc.Validate())
		})
	}
}

func TestLoadScenario_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	doc := `
material_unit_cost: 75
custom_wip_cap: 100
initial:
  cash: 50000
  experts: 6
  machines:
    MCE: 2
    WMA: 2
    PUC: 2
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, 75.0, sc.MaterialUnitCost)
	assert.Equal(t, 100, sc.CustomWIPCap)
	assert.Equal(t, 50000.0, sc.Initial.Cash)
	assert.Equal(t, 6, sc.Initial.Experts)
	assert.Equal(t, 2, sc.Initial.Machines[StationMCE])
	// Untouched fields keep their defaults.
	assert.Equal(t, 1000.0, sc.OrderingCost)
	assert.Equal(t, 4, sc.MaterialLeadTimeDays)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoadStrategy_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strategy.yaml")
	doc := `
reorder_point: 300
order_quantity: 1000
timed_actions:
  - day: 10
    type: HIRE_ROOKIE
    quantity: 2
  - day: 30
    type: BUY_MACHINE
    station: MCE
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	st, err := LoadStrategy(path)
	require.NoError(t, err)

	assert.Equal(t, 300, st.ReorderPoint)
	assert.Equal(t, 1000, st.OrderQuantity)
	require.Len(t, st.TimedActions, 2)
	assert.Equal(t, ActionHireRookie, st.TimedActions[0].Type)
	assert.Equal(t, StationMCE, st.TimedActions[1].Station)
}
