package textrec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// tesseractLangs maps recognition language codes to Tesseract traineddata
// names. Unmapped hints fall back to English.
var tesseractLangs = map[string]string{
	"en": "eng",
	"fr": "fra",
	"de": "deu",
	"es": "spa",
	"it": "ita",
}

// fastPassMaxWidth bounds the fast-pass raster; label text that survives the
// downscale is legible enough for the sparse segmentation mode.
const fastPassMaxWidth = 800

// TesseractEngine is the default Engine, backed by the Tesseract OCR library
// via gosseract. A fresh client is created per call; gosseract clients are
// not safe for concurrent reuse.
type TesseractEngine struct {
	// FastMaxWidth bounds the fast-pass raster width in pixels; zero or
	// negative keeps the built-in default.
	FastMaxWidth int
}

// NewTesseractEngine returns a Tesseract-backed OCR engine.
func NewTesseractEngine() *TesseractEngine { return &TesseractEngine{} }

// Recognize implements Engine. The fast quality level downscales the input
// and uses sparse page segmentation; the accurate level runs the full-size
// image with automatic segmentation.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image, langs []string, quality Quality) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	working := img
	if quality == QualityFast {
		working = e.fastWorkingImage(img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, working); err != nil {
		return "", fmt.Errorf("encode for ocr: %w", err)
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(mapLangs(langs)...); err != nil {
		return "", fmt.Errorf("set ocr languages: %w", err)
	}
	mode := gosseract.PSM_AUTO
	if quality == QualityFast {
		mode = gosseract.PSM_SPARSE_TEXT
	}
	if err := client.SetPageSegMode(mode); err != nil {
		return "", fmt.Errorf("set page segmentation: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set ocr image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr %s pass: %w", quality, err)
	}
	return text, nil
}

// fastWorkingImage downscales the input for the fast pass when it exceeds
// the configured width.
func (e *TesseractEngine) fastWorkingImage(img image.Image) image.Image {
	maxWidth := e.FastMaxWidth
	if maxWidth <= 0 {
		maxWidth = fastPassMaxWidth
	}
	if img.Bounds().Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Linear)
}

func mapLangs(langs []string) []string {
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		if t, ok := tesseractLangs[l]; ok {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		out = append(out, "eng")
	}
	return out
}
