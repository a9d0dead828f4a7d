// Package textrec adapts an OCR engine to the estimation cascade with a
// two-tier quality policy: a fast pass handles most legible printed labels,
// and a slower accurate pass is retried only when the fast output is too
// short to be a plausible label.
package textrec

import (
	"context"
	"image"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
)

// Quality selects the recognition speed/completeness trade-off.
type Quality int

const (
	QualityFast Quality = iota
	QualityAccurate
)

func (q Quality) String() string {
	if q == QualityAccurate {
		return "accurate"
	}
	return "fast"
}

// Engine is a pluggable OCR capability. Implementations return the
// recognized text for an image, or an error when recognition fails outright.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, langs []string, quality Quality) (string, error)
}

// fastPassMinChars is the fast-pass acceptance threshold: anything longer is
// considered a usable label transcription.
const fastPassMinChars = 20

// Languages builds the recognition language list from an optional hint:
// [hint, "en"] when a hint parses to a known language, else ["en"].
func Languages(hint string) []string {
	if hint == "" {
		return []string{"en"}
	}
	tag, err := language.Parse(hint)
	if err != nil {
		return []string{"en"}
	}
	base, _ := tag.Base()
	code := base.String()
	if code == "" || code == "en" {
		return []string{"en"}
	}
	return []string{code, "en"}
}

// Recognize runs the dual-pass policy over the engine: the fast pass first,
// accepted if its output exceeds fastPassMinChars characters, otherwise the
// accurate pass, whose result (possibly empty) is returned as-is. A failed
// pass counts as empty output, never as a hard error.
func Recognize(ctx context.Context, engine Engine, img image.Image, languageHint string) string {
	if engine == nil || img == nil {
		return ""
	}
	langs := Languages(languageHint)

	text, err := engine.Recognize(ctx, img, langs, QualityFast)
	if err != nil {
		slog.Debug("Fast OCR pass failed", "error", err)
		text = ""
	}
	if len(strings.TrimSpace(text)) > fastPassMinChars {
		return text
	}
	if ctx.Err() != nil {
		return ""
	}

	slog.Debug("Fast OCR pass too short, retrying", "chars", len(text))
	text, err = engine.Recognize(ctx, img, langs, QualityAccurate)
	if err != nil {
		slog.Debug("Accurate OCR pass failed", "error", err)
		return ""
	}
	return text
}
