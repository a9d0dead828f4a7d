// Package barcode wraps the gozxing decoder behind the narrow adapter the
// estimation cascade needs: one image in, the first decoded retail-symbology
// payload out, no error surface. Decode failures of any kind degrade to
// "no result"; package barcodes that cannot be read simply hand the image
// to the next cascade stage.
package barcode

import (
	"context"
	"image"
	"log/slog"
	"strings"
	"unicode"

	gozxing "github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// Config controls decoding behavior.
type Config struct {
	TryHarder bool
}

// DefaultConfig returns the default decoder configuration.
func DefaultConfig() Config { return Config{TryHarder: true} }

// Detector decodes retail barcodes from images. Readers are tried in a fixed
// order and the first decoded payload wins. The set is restricted to
// symbologies found on food packaging; skipping QR/Aztec/PDF417 keeps the
// per-rotation decode fast.
type Detector struct {
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

// NewDetector creates a Detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	var hints map[gozxing.DecodeHintType]interface{}
	if cfg.TryHarder {
		hints = map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		}
	}
	return &Detector{
		readers: []gozxing.Reader{
			oned.NewEAN13Reader(),
			oned.NewUPCAReader(),
			oned.NewEAN8Reader(),
			oned.NewUPCEReader(),
			oned.NewCode128Reader(),
			oned.NewCode39Reader(),
			oned.NewCode93Reader(),
			oned.NewITFReader(),
		},
		hints: hints,
	}
}

// DetectFirst returns the payload of the first barcode decoded from img, or
// ("", false) when nothing decodes. It never returns an error: decoder
// errors and panics are treated as "no result".
func (d *Detector) DetectFirst(ctx context.Context, img image.Image) (payload string, ok bool) {
	if img == nil || ctx.Err() != nil {
		return "", false
	}
	defer func() {
		// gozxing readers index raw luminance buffers; treat any panic on a
		// degenerate image as a failed decode.
		if r := recover(); r != nil {
			slog.Debug("Barcode decode panicked", "cause", r)
			payload, ok = "", false
		}
	}()

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		slog.Debug("Barcode binarization failed", "error", err)
		return "", false
	}

	for _, reader := range d.readers {
		if ctx.Err() != nil {
			return "", false
		}
		result, err := reader.Decode(bmp, d.hints)
		if err != nil || result == nil {
			continue
		}
		if text := result.GetText(); text != "" {
			slog.Debug("Barcode decoded", "length", len(text))
			return text, true
		}
	}
	return "", false
}

// NormalizeCode reduces a decoded payload to the digits-only form used as a
// lookup key: whitespace stripped, non-digit characters dropped.
func NormalizeCode(code string) string {
	var b strings.Builder
	for _, r := range code {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
