// Package priors turns a dish label plus an estimated portion-area ratio
// into a calorie and macro estimate using static per-label reference
// statistics. The table ships embedded and can be overridden from disk.
package priors

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/platescan/internal/nutrition"
)

//go:embed priors.yaml
var embeddedTable []byte

// Entry holds the reference statistics for one dish label. The three macro
// ratios are the energy split and are intended to sum to roughly 1.0.
type Entry struct {
	Label            string  `yaml:"label"`
	BaseKcal         float64 `yaml:"base_kcal"`
	CarbRatio        float64 `yaml:"carb_ratio"`
	ProteinRatio     float64 `yaml:"protein_ratio"`
	FatRatio         float64 `yaml:"fat_ratio"`
	MinKcal          int     `yaml:"min_kcal"`
	MaxKcal          int     `yaml:"max_kcal"`
	PortionScaleGain float64 `yaml:"portion_scale_gain"`
}

// Portion-area clamp bounds and the scale curve constants.
const (
	minAreaRatio = 0.10
	maxAreaRatio = 0.90
	pivotArea    = 0.35
	minScale     = 0.5
	maxScale     = 1.6

	kcalPerGramCarb    = 4.0
	kcalPerGramProtein = 4.0
	kcalPerGramFat     = 9.0
)

// Table maps dish labels to their prior entries.
type Table struct {
	entries map[string]Entry
}

// NewTable loads the embedded priors table.
func NewTable() (*Table, error) {
	return parseTable(embeddedTable)
}

// LoadTable reads a priors table from disk, for deployments that override
// the embedded defaults.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: override path comes from config
	if err != nil {
		return nil, fmt.Errorf("read priors table: %w", err)
	}
	return parseTable(data)
}

func parseTable(data []byte) (*Table, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse priors table: %w", err)
	}
	t := &Table{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if e.Label == "" || e.BaseKcal <= 0 {
			continue
		}
		t.entries[e.Label] = e
	}
	return t, nil
}

// Len reports the number of labels in the table.
func (t *Table) Len() int { return len(t.entries) }

// Estimate scales the label's base statistics by the portion-area ratio and
// returns the resulting estimate, or nil when the label is unknown.
func (t *Table) Estimate(label string, areaRatio float64) *nutrition.Estimate {
	entry, ok := t.entries[label]
	if !ok {
		return nil
	}

	area := clampFloat(areaRatio, minAreaRatio, maxAreaRatio)
	baseScale := 0.70 + 1.00*(area-pivotArea)
	scale := clampFloat(baseScale*(0.6+0.4*entry.PortionScaleGain), minScale, maxScale)

	kcal := int(math.Round(entry.BaseKcal * scale))
	if entry.MinKcal > 0 && kcal < entry.MinKcal {
		kcal = entry.MinKcal
	}
	if entry.MaxKcal > 0 && kcal > entry.MaxKcal {
		kcal = entry.MaxKcal
	}

	est := &nutrition.Estimate{
		Calories: nutrition.Int(kcal),
		CarbsG:   nutrition.Int(macroGrams(kcal, entry.CarbRatio, kcalPerGramCarb)),
		ProteinG: nutrition.Int(macroGrams(kcal, entry.ProteinRatio, kcalPerGramProtein)),
		FatG:     nutrition.Int(macroGrams(kcal, entry.FatRatio, kcalPerGramFat)),
	}
	est.Clamp()
	return est
}

func macroGrams(kcal int, ratio, density float64) int {
	return int(math.Round(float64(kcal) * ratio / density))
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
