package labelparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	est := Parse("Energy 250 kcal\nProtein 12 g\nSodium 300 mg")

	require.NotNil(t, est.Calories)
	assert.Equal(t, 250, *est.Calories)
	require.NotNil(t, est.ProteinG)
	assert.Equal(t, 12, *est.ProteinG)
	require.NotNil(t, est.SodiumMg)
	assert.Equal(t, 300, *est.SodiumMg)
	assert.Equal(t, 3, est.FieldCount(), "no other field may be populated")
}

func TestParseKilojouleConversion(t *testing.T) {
	est := Parse("Energy 1046 kJ")
	require.NotNil(t, est.Calories)
	assert.Equal(t, 250, *est.Calories)
}

func TestParsePrefersKcalOverKilojoules(t *testing.T) {
	est := Parse("Brennwert: 1046 kJ / 250 kcal")
	require.NotNil(t, est.Calories)
	assert.Equal(t, 250, *est.Calories)
}

func TestParseKcalBeyondDistanceCapIgnored(t *testing.T) {
	est := Parse("Energy content of the recommended daily portion overall 250 kcal")
	assert.Nil(t, est.Calories, "kcal value beyond 15 non-digit characters is ignored")
}

func TestParseJouleUnitIsNotKilojoules(t *testing.T) {
	est := Parse("Energy 1046 J")
	assert.Nil(t, est.Calories)
}

func TestParseSaltToSodium(t *testing.T) {
	est := Parse("Salt 2.5 g")
	require.NotNil(t, est.SodiumMg)
	assert.Equal(t, 1000, *est.SodiumMg)
	assert.Nil(t, est.FatG)
}

func TestParseExplicitSodiumBeatsSalt(t *testing.T) {
	est := Parse("Sodium 300 mg\nSalt 2.5 g")
	require.NotNil(t, est.SodiumMg)
	assert.Equal(t, 300, *est.SodiumMg)
}

func TestParseMicrogramConversion(t *testing.T) {
	est := Parse("Vitamin D 5 µg")
	require.NotNil(t, est.VitaminDMg)
	assert.Equal(t, 0, *est.VitaminDMg)
}

func TestParseMicrogramRoundingBoundary(t *testing.T) {
	est := Parse("Vitamin D 500 µg")
	require.NotNil(t, est.VitaminDMg)
	assert.Equal(t, 1, *est.VitaminDMg, "500 µg rounds up to 1 mg")

	est = Parse("Vitamin D 499 µg")
	require.NotNil(t, est.VitaminDMg)
	assert.Equal(t, 0, *est.VitaminDMg, "499 µg rounds down to 0 mg")
}

func TestParseMilligramPreferredForMicros(t *testing.T) {
	est := Parse("Vitamin C 60 mg")
	require.NotNil(t, est.VitaminCMg)
	assert.Equal(t, 60, *est.VitaminCMg)
}

func TestParseCommaDecimalSeparator(t *testing.T) {
	est := Parse("Zucker 2,5 g")
	require.NotNil(t, est.SugarsG)
	assert.Equal(t, 3, *est.SugarsG, "2.5 g rounds to 3 (lossy integer storage)")
}

func TestParseFirstMatchWinsPerField(t *testing.T) {
	est := Parse("Protein 12 g\nProtein 99 g")
	require.NotNil(t, est.ProteinG)
	assert.Equal(t, 12, *est.ProteinG)
}

func TestParseSubtypesDoNotFillTotals(t *testing.T) {
	est := Parse("Fat 10 g\nof which saturates 3 g\nof which monounsaturates 4 g")
	require.NotNil(t, est.FatG)
	assert.Equal(t, 10, *est.FatG)
	require.NotNil(t, est.SaturatedFatG)
	assert.Equal(t, 3, *est.SaturatedFatG)
	require.NotNil(t, est.MonounsaturatedFatG)
	assert.Equal(t, 4, *est.MonounsaturatedFatG)
}

func TestParseMultiLanguage(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		check func(t *testing.T, got *int)
	}{
		{"french carbs", "Glucides 30 g", nil},
		{"german carbs", "Kohlenhydrate 30 g", nil},
		{"spanish carbs", "Hidratos de carbono 30 g", nil},
		{"italian carbs", "Carboidrati 30 g", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			est := Parse(tc.text)
			require.NotNil(t, est.CarbsG)
			assert.Equal(t, 30, *est.CarbsG)
		})
	}

	est := Parse("Eiweiß 8 g")
	require.NotNil(t, est.ProteinG)
	assert.Equal(t, 8, *est.ProteinG)

	est = Parse("Matières grasses 11 g")
	require.NotNil(t, est.FatG)
	assert.Equal(t, 11, *est.FatG)
}

func TestParseGramUnitRequired(t *testing.T) {
	est := Parse("Protein 12")
	assert.Nil(t, est.ProteinG, "grams fields require a gram unit")
}

func TestParseKeywordDistanceCap(t *testing.T) {
	est := Parse("Protein content of this product measured overall 12 g")
	assert.Nil(t, est.ProteinG, "number beyond 15 non-digit characters is ignored")
}

func TestParseUnitlessCalories(t *testing.T) {
	est := Parse("Calories: 250")
	require.NotNil(t, est.Calories)
	assert.Equal(t, 250, *est.Calories)
}

func TestParseMinerals(t *testing.T) {
	est := Parse("Calcium 120 mg\nIron 14 mg\nMagnesium 56 mg\nPotassium 400 mg\nZinc 2 mg")
	for name, got := range map[string]*int{
		"calcium":   est.CalciumMg,
		"iron":      est.IronMg,
		"magnesium": est.MagnesiumMg,
		"potassium": est.PotassiumMg,
		"zinc":      est.ZincMg,
	} {
		require.NotNil(t, got, name)
	}
	assert.Equal(t, 120, *est.CalciumMg)
	assert.Equal(t, 2, *est.ZincMg)
}

func TestParseVitaminVariants(t *testing.T) {
	est := Parse("Vitamina C 60 mg\nVitamin B12 2 µg\nVitamine E 12 mg")
	require.NotNil(t, est.VitaminCMg)
	assert.Equal(t, 60, *est.VitaminCMg)
	require.NotNil(t, est.VitaminB12Mg)
	assert.Equal(t, 0, *est.VitaminB12Mg)
	require.NotNil(t, est.VitaminEMg)
	assert.Equal(t, 12, *est.VitaminEMg)
}

func TestParseEmptyAndGarbage(t *testing.T) {
	assert.Equal(t, 0, Parse("").FieldCount())
	assert.Equal(t, 0, Parse("lorem ipsum dolor sit amet").FieldCount())
	assert.Equal(t, 0, Parse("\n\n\n").FieldCount())
}

func TestParseStarchAndFibre(t *testing.T) {
	est := Parse("Fibre 6 g\nStarch 20 g")
	require.NotNil(t, est.FibreG)
	assert.Equal(t, 6, *est.FibreG)
	require.NotNil(t, est.StarchG)
	assert.Equal(t, 20, *est.StarchG)
}
