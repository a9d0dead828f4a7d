// Package colorguess is the last-resort estimator: it buckets the scene
// into one of four coarse food categories from color statistics alone and
// produces a deliberately conservative nutrition estimate. It never fails,
// which is what guarantees the cascade always terminates with a result.
package colorguess

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/platescan/internal/nutrition"
)

// Category is a coarse scene bucket.
type Category int

const (
	CategoryCarb Category = iota
	CategoryProtein
	CategoryVegetable
	CategoryDessert
)

func (c Category) String() string {
	switch c {
	case CategoryProtein:
		return "protein"
	case CategoryVegetable:
		return "vegetable"
	case CategoryDessert:
		return "dessert"
	default:
		return "carb"
	}
}

// ColorFeatures holds five pixel-bucket ratios in [0,1]. A pixel lands in
// at most one of Warm/Green/Neutral, and independently in Dark or Bright
// by luma threshold.
type ColorFeatures struct {
	Warm    float64
	Green   float64
	Neutral float64
	Dark    float64
	Bright  float64
}

const (
	rasterSide       = 64
	neutralTolerance = 24
	darkLuma         = 60
	brightLuma       = 200

	warmDessert  = 0.35
	greenVeg     = 0.28
	neutralCarb  = 0.30
	warmProtein  = 0.28
	brightSignal = 0.08
	darkSignal   = 0.10

	heartyWarmNeutral = 0.70
	heartyGreenCap    = 0.10
	heartyAreaFloor   = 0.55
	heartyKcalFloor   = 680

	minKcal = 180
	maxKcal = 1400
)

// preset is the per-category base estimate before portion scaling.
type preset struct {
	baseKcal     float64
	carbRatio    float64
	proteinRatio float64
	fatRatio     float64
	micros       func(*nutrition.Estimate)
}

var presets = map[Category]preset{
	CategoryCarb: {
		baseKcal: 560, carbRatio: 0.58, proteinRatio: 0.14, fatRatio: 0.28,
		micros: func(e *nutrition.Estimate) {
			e.IronMg = nutrition.Int(2)
			e.MagnesiumMg = nutrition.Int(40)
		},
	},
	CategoryProtein: {
		baseKcal: 620, carbRatio: 0.15, proteinRatio: 0.42, fatRatio: 0.43,
		micros: func(e *nutrition.Estimate) {
			e.IronMg = nutrition.Int(3)
			e.ZincMg = nutrition.Int(4)
		},
	},
	CategoryVegetable: {
		baseKcal: 260, carbRatio: 0.45, proteinRatio: 0.20, fatRatio: 0.35,
		micros: func(e *nutrition.Estimate) {
			e.VitaminCMg = nutrition.Int(30)
			e.IronMg = nutrition.Int(2)
			e.PotassiumMg = nutrition.Int(400)
		},
	},
	CategoryDessert: {
		baseKcal: 520, carbRatio: 0.55, proteinRatio: 0.07, fatRatio: 0.38,
		micros: func(e *nutrition.Estimate) {
			e.CalciumMg = nutrition.Int(80)
		},
	},
}

// friedBonus adds kcal for scenes whose warm+neutral colors dominate, a
// crude stand-in for breading and frying oil.
func friedBonus(warmNeutral float64) int {
	switch {
	case warmNeutral > 0.85:
		return 320
	case warmNeutral > 0.70:
		return 220
	case warmNeutral > 0.55:
		return 140
	default:
		return 0
	}
}

// Classifier produces color-only nutrition guesses.
type Classifier struct{}

// NewClassifier returns a color-heuristic classifier.
func NewClassifier() *Classifier { return &Classifier{} }

// Features computes the color feature vector over a downscaled raster.
func (c *Classifier) Features(img image.Image) ColorFeatures {
	small := imaging.Resize(img, rasterSide, rasterSide, imaging.Box)
	var f ColorFeatures
	total := float64(rasterSide * rasterSide)
	for y := range rasterSide {
		for x := range rasterSide {
			r16, g16, b16, _ := small.At(x, y).RGBA()
			r, g, b := float64(r16>>8), float64(g16>>8), float64(b16>>8)

			switch {
			case isNeutral(r, g, b):
				f.Neutral++
			case g > r && g > b:
				f.Green++
			case r > g && r > b:
				f.Warm++
			}

			luma := 0.299*r + 0.587*g + 0.114*b
			if luma < darkLuma {
				f.Dark++
			} else if luma > brightLuma {
				f.Bright++
			}
		}
	}
	f.Warm /= total
	f.Green /= total
	f.Neutral /= total
	f.Dark /= total
	f.Bright /= total
	return f
}

func isNeutral(r, g, b float64) bool {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	return maxC-minC <= neutralTolerance
}

// Categorize buckets the feature vector, in fixed priority order.
func Categorize(f ColorFeatures) Category {
	switch {
	case f.Warm > warmDessert && (f.Bright > brightSignal || f.Dark > darkSignal):
		return CategoryDessert
	case f.Green > greenVeg:
		return CategoryVegetable
	case f.Neutral > neutralCarb:
		return CategoryCarb
	case f.Warm > warmProtein:
		return CategoryProtein
	default:
		return CategoryCarb
	}
}

// Guess estimates nutrition from colors and the portion-area ratio. It
// always returns a non-nil estimate; the second return value is the
// confidence used for cross-rotation ranking.
func (c *Classifier) Guess(img image.Image, areaRatio float64) (*nutrition.Estimate, float64) {
	f := c.Features(img)
	category := Categorize(f)
	p := presets[category]

	warmNeutral := f.Warm + f.Neutral
	hearty := warmNeutral > heartyWarmNeutral && f.Green < heartyGreenCap

	area := areaRatio
	if hearty && category != CategoryDessert && area < heartyAreaFloor {
		area = heartyAreaFloor
	}
	area = clamp(area, 0.10, 0.90)
	scale := clamp(0.70+1.00*(area-0.35), 0.5, 1.6)

	kcal := int(math.Round(p.baseKcal * scale))
	kcal += friedBonus(warmNeutral)
	if hearty && category != CategoryDessert && kcal < heartyKcalFloor {
		kcal = heartyKcalFloor
	}
	if kcal < minKcal {
		kcal = minKcal
	}
	if kcal > maxKcal {
		kcal = maxKcal
	}

	est := &nutrition.Estimate{
		Calories: nutrition.Int(kcal),
		CarbsG:   nutrition.Int(macroGrams(kcal, p.carbRatio, 4)),
		ProteinG: nutrition.Int(macroGrams(kcal, p.proteinRatio, 4)),
		FatG:     nutrition.Int(macroGrams(kcal, p.fatRatio, 9)),
	}
	p.micros(est)
	est.Clamp()

	confidence := areaRatio
	if est.HasMacros() {
		confidence += 0.1
	}
	return est, confidence
}

func macroGrams(kcal int, ratio, density float64) int {
	return int(math.Round(float64(kcal) * ratio / density))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
