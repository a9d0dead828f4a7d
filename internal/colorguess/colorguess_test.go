package colorguess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 96, 96))
	for y := range 96 {
		for x := range 96 {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestGreenSceneIsVegetable(t *testing.T) {
	c := NewClassifier()
	f := c.Features(solid(color.RGBA{R: 40, G: 190, B: 50, A: 255}))
	assert.Equal(t, CategoryVegetable, Categorize(f))

	est, conf := c.Guess(solid(color.RGBA{R: 40, G: 190, B: 50, A: 255}), 0.35)
	require.NotNil(t, est)
	require.NotNil(t, est.Calories)
	assert.NotNil(t, est.VitaminCMg)
	assert.Greater(t, conf, 0.35)
}

func TestAllBlackImageStillYieldsEstimate(t *testing.T) {
	c := NewClassifier()
	est, conf := c.Guess(solid(color.RGBA{A: 255}), 0.35)
	require.NotNil(t, est)
	require.NotNil(t, est.Calories)
	assert.GreaterOrEqual(t, *est.Calories, 180)
	assert.LessOrEqual(t, *est.Calories, 1400)
	assert.True(t, est.HasMacros())
	assert.Greater(t, conf, 0.0)
}

func TestWarmBrightSceneIsDessert(t *testing.T) {
	c := NewClassifier()
	// Warm-dominant with a bright quarter.
	img := solid(color.RGBA{R: 200, G: 120, B: 60, A: 255})
	for y := range 48 {
		for x := range 48 {
			img.SetRGBA(x, y, color.RGBA{R: 250, G: 235, B: 225, A: 255})
		}
	}
	f := c.Features(img)
	assert.Equal(t, CategoryDessert, Categorize(f))
}

func TestHeartyPlateAppliesKcalFloor(t *testing.T) {
	c := NewClassifier()
	// Neutral-dominant gray plate, no green: hearty carb scene.
	est, _ := c.Guess(solid(color.RGBA{R: 120, G: 118, B: 116, A: 255}), 0.12)
	require.NotNil(t, est)
	assert.GreaterOrEqual(t, *est.Calories, 680)
}

func TestGuessIsDeterministic(t *testing.T) {
	c := NewClassifier()
	img := solid(color.RGBA{R: 180, G: 90, B: 40, A: 255})

	first, firstConf := c.Guess(img, 0.4)
	require.NotNil(t, first)
	for range 5 {
		again, conf := c.Guess(img, 0.4)
		require.NotNil(t, again)
		assert.Equal(t, *first.Calories, *again.Calories)
		assert.InDelta(t, firstConf, conf, 1e-12)
	}
}

func TestFriedBonusSteps(t *testing.T) {
	assert.Equal(t, 0, friedBonus(0.40))
	assert.Equal(t, 140, friedBonus(0.60))
	assert.Equal(t, 220, friedBonus(0.80))
	assert.Equal(t, 320, friedBonus(0.95))
}
