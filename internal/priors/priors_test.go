package priors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedTableLoads(t *testing.T) {
	table, err := NewTable()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, table.Len(), 10)
}

func TestEstimateUnknownLabel(t *testing.T) {
	table, err := NewTable()
	require.NoError(t, err)
	assert.Nil(t, table.Estimate("flux_capacitor", 0.5))
}

func TestEstimateScalesWithPortionArea(t *testing.T) {
	table, err := NewTable()
	require.NoError(t, err)

	small := table.Estimate("spaghetti_bolognese", 0.15)
	large := table.Estimate("spaghetti_bolognese", 0.80)
	require.NotNil(t, small)
	require.NotNil(t, large)
	assert.Less(t, *small.Calories, *large.Calories)
	assert.NotNil(t, small.CarbsG)
	assert.NotNil(t, small.ProteinG)
	assert.NotNil(t, small.FatG)
}

func TestEstimateClampsToEntryBounds(t *testing.T) {
	yaml := `
- label: test_dish
  base_kcal: 400
  carb_ratio: 0.5
  protein_ratio: 0.25
  fat_ratio: 0.25
  min_kcal: 200
  max_kcal: 560
  portion_scale_gain: 1.0
`
	path := filepath.Join(t.TempDir(), "priors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	table, err := LoadTable(path)
	require.NoError(t, err)

	for _, area := range []float64{0.0, 1.0} {
		est := table.Estimate("test_dish", area)
		require.NotNil(t, est)
		assert.GreaterOrEqual(t, *est.Calories, 200)
		assert.LessOrEqual(t, *est.Calories, 560)
	}
}

func TestEstimateIsDeterministic(t *testing.T) {
	table, err := NewTable()
	require.NoError(t, err)

	first := table.Estimate("ramen_bowl", 0.42)
	require.NotNil(t, first)
	for range 5 {
		again := table.Estimate("ramen_bowl", 0.42)
		require.NotNil(t, again)
		assert.Equal(t, *first.Calories, *again.Calories)
		assert.Equal(t, *first.CarbsG, *again.CarbsG)
		assert.Equal(t, *first.ProteinG, *again.ProteinG)
		assert.Equal(t, *first.FatG, *again.FatG)
	}
}

func TestParseTableSkipsInvalidEntries(t *testing.T) {
	yaml := `
- label: ""
  base_kcal: 300
- label: no_energy
  base_kcal: 0
- label: valid
  base_kcal: 250
  carb_ratio: 0.5
  protein_ratio: 0.3
  fat_ratio: 0.2
`
	table, err := parseTable([]byte(yaml))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.NotNil(t, table.Estimate("valid", 0.35))
}
