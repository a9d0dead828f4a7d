package barcode

import (
	"context"
	"image"
	"image/color"
	"testing"

	gozxing "github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/platescan/internal/utils"
)

// encodeEAN13 renders a decodable EAN-13 symbol into a grayscale image with
// a quiet zone around it.
func encodeEAN13(t *testing.T, code string) image.Image {
	t.Helper()
	matrix, err := oned.NewEAN13Writer().Encode(code, gozxing.BarcodeFormat_EAN_13, 400, 120, nil)
	require.NoError(t, err)

	const margin = 20
	w, h := matrix.GetWidth(), matrix.GetHeight()
	img := image.NewGray(image.Rect(0, 0, w+2*margin, h+2*margin))
	for y := range h + 2*margin {
		for x := range w + 2*margin {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	for y := range h {
		for x := range w {
			if matrix.Get(x, y) {
				img.SetGray(x+margin, y+margin, color.Gray{Y: 0})
			}
		}
	}
	return img
}

func TestDetectFirstEAN13(t *testing.T) {
	img := encodeEAN13(t, "4006381333931")
	d := NewDetector(DefaultConfig())

	payload, ok := d.DetectFirst(context.Background(), img)
	require.True(t, ok)
	assert.Equal(t, "4006381333931", payload)
}

func TestDetectFirstRotatedVariant(t *testing.T) {
	// A symbol rotated by the rotation generator and re-leveled decodes to
	// the same payload.
	img := utils.Rotate90(encodeEAN13(t, "4006381333931"))
	d := NewDetector(DefaultConfig())

	payload, ok := d.DetectFirst(context.Background(), utils.Rotate270(img))
	require.True(t, ok)
	assert.Equal(t, "4006381333931", payload)
}

func TestDetectFirstNoBarcode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	d := NewDetector(DefaultConfig())

	_, ok := d.DetectFirst(context.Background(), img)
	assert.False(t, ok)
}

func TestDetectFirstNilImage(t *testing.T) {
	d := NewDetector(DefaultConfig())
	_, ok := d.DetectFirst(context.Background(), nil)
	assert.False(t, ok)
}

func TestDetectFirstCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDetector(DefaultConfig())
	_, ok := d.DetectFirst(ctx, encodeEAN13(t, "4006381333931"))
	assert.False(t, ok)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "4006381333931", NormalizeCode(" 4006381333931 "))
	assert.Equal(t, "12345678", NormalizeCode("EAN: 1234-5678"))
	assert.Equal(t, "", NormalizeCode("no digits"))
}
