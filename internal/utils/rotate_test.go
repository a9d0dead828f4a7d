package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// markedImage returns a 4x2 image with a single red pixel at (0,0).
func markedImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := range 2 {
		for x := range 4 {
			img.Set(x, y, color.White)
		}
	}
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	return img
}

func isRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r > 0x8000 && g < 0x8000 && b < 0x8000
}

func TestRotationSetDimensions(t *testing.T) {
	set := RotationSet(markedImage())

	require.Equal(t, 4, set[0].Bounds().Dx())
	require.Equal(t, 2, set[0].Bounds().Dy())

	// 90 and 270 swap width and height.
	assert.Equal(t, 2, set[1].Bounds().Dx())
	assert.Equal(t, 4, set[1].Bounds().Dy())
	assert.Equal(t, 4, set[2].Bounds().Dx())
	assert.Equal(t, 2, set[2].Bounds().Dy())
	assert.Equal(t, 2, set[3].Bounds().Dx())
	assert.Equal(t, 4, set[3].Bounds().Dy())
}

func TestRotationSetIdentityVariant(t *testing.T) {
	src := markedImage()
	set := RotationSet(src)
	assert.True(t, isRed(set[0].At(0, 0)), "variant 0 must be the source image")
}

func TestRotationSetPixelAccuracy(t *testing.T) {
	set := RotationSet(markedImage())

	// Counter-clockwise 90: (0,0) of a 4x2 image lands at (0,3).
	b := set[1].Bounds()
	assert.True(t, isRed(set[1].At(b.Min.X, b.Max.Y-1)))

	// 180: lands at (3,1).
	b = set[2].Bounds()
	assert.True(t, isRed(set[2].At(b.Max.X-1, b.Max.Y-1)))

	// Counter-clockwise 270: lands at (1,0).
	b = set[3].Bounds()
	assert.True(t, isRed(set[3].At(b.Max.X-1, b.Min.Y)))
}

func TestDecodeBytesInvalid(t *testing.T) {
	_, err := DecodeBytes(nil)
	require.ErrorIs(t, err, ErrUndecodable)

	_, err = DecodeBytes([]byte("definitely not an image"))
	require.ErrorIs(t, err, ErrUndecodable)
}
