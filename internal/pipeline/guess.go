package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/platescan/internal/barcode"
	"github.com/MeKo-Tech/platescan/internal/labelparse"
	"github.com/MeKo-Tech/platescan/internal/nutrition"
	"github.com/MeKo-Tech/platescan/internal/refmatch"
	"github.com/MeKo-Tech/platescan/internal/textrec"
	"github.com/MeKo-Tech/platescan/internal/utils"
)

// Guess runs the full cascade over a raw image payload and returns the best
// nutrition estimate. It returns an error only when the payload cannot be
// decoded as an image or the context is canceled; once decode succeeds the
// cascade always terminates with a result (the color heuristic has no
// failure path).
func (p *Pipeline) Guess(ctx context.Context, imageBytes []byte, languageHint string) (*Result, error) {
	img, err := utils.DecodeBytes(imageBytes)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return p.GuessImage(ctx, img, languageHint)
}

// GuessImage is Guess for an already-decoded image.
func (p *Pipeline) GuessImage(ctx context.Context, img image.Image, languageHint string) (*Result, error) {
	if img == nil {
		return nil, utils.ErrUndecodable
	}
	if languageHint == "" {
		languageHint = p.cfg.LanguageDefault
	}
	rotations := utils.RotationSet(img)

	// Remembered across stages: a decoded barcode whose lookup missed, so a
	// later label parse can be written back to the store.
	var pendingCode string

	current := stageInit
	for current != stageDone {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := current + 1
		slog.Debug("Cascade stage", "stage", next.String())

		switch next {
		case stageBarcodeSearch:
			result, code := p.runBarcodeSearch(ctx, rotations)
			if result != nil {
				return result, nil
			}
			pendingCode = code
		case stageLabelOCR:
			if result := p.runLabelOCR(ctx, rotations, languageHint, pendingCode); result != nil {
				return result, nil
			}
		case stageReferenceMatch:
			if result := p.runReferenceMatch(ctx, rotations); result != nil {
				return result, nil
			}
		case stageColorHeuristic:
			return p.runColorHeuristic(ctx, rotations), nil
		}
		current = next
	}
	return nil, ctx.Err()
}

// runBarcodeSearch decodes barcodes across rotations and consults the
// lookup. A decode with a lookup hit ends the cascade; a decode with a miss
// (or no lookup wired) returns the normalized code for later upserting.
func (p *Pipeline) runBarcodeSearch(ctx context.Context, rotations [utils.RotationCount]image.Image) (*Result, string) {
	candidates := evalRotations(ctx, rotations, func(ctx context.Context, img image.Image) (string, float64, bool) {
		payload, ok := p.detector.DetectFirst(ctx, img)
		return payload, 0, ok
	})
	hit, idx := firstCandidate(candidates)
	if idx < 0 {
		return nil, ""
	}
	code := barcode.NormalizeCode(hit.value)
	if code == "" {
		return nil, ""
	}
	slog.Debug("Barcode found", "rotation", utils.RotationAngles[idx])

	if p.lookup != nil {
		est, err := p.lookup.LookupCode(ctx, code)
		if err != nil {
			slog.Debug("Barcode lookup failed", "error", err)
		}
		if est != nil && !est.IsEmpty() {
			return &Result{
				Estimate:   est,
				Source:     SourceBarcode,
				SourceName: SourceBarcode.String(),
				Code:       code,
				Confidence: 1.0,
				Rotation:   utils.RotationAngles[idx],
			}, code
		}
	}
	return nil, code
}

// runLabelOCR recognizes text per rotation and parses nutrition facts; the
// parse with the most populated fields wins, ties to the lowest rotation.
func (p *Pipeline) runLabelOCR(
	ctx context.Context,
	rotations [utils.RotationCount]image.Image,
	languageHint, pendingCode string,
) *Result {
	if p.ocr == nil {
		return nil
	}
	candidates := evalRotations(ctx, rotations, func(ctx context.Context, img image.Image) (*nutrition.Estimate, float64, bool) {
		text := textrec.Recognize(ctx, p.ocr, img, languageHint)
		if text == "" {
			return nil, 0, false
		}
		est := labelparse.Parse(text)
		count := est.FieldCount()
		if count == 0 {
			return nil, 0, false
		}
		return est, float64(count), true
	})
	best, idx := bestCandidate(candidates)
	if idx < 0 {
		return nil
	}
	if pendingCode != "" && p.upserter != nil {
		p.upserter.UpsertCode(pendingCode, best.value.Clone())
	}
	return &Result{
		Estimate:   best.value,
		Source:     SourceLabel,
		SourceName: SourceLabel.String(),
		Code:       pendingCode,
		Confidence: best.score,
		Rotation:   utils.RotationAngles[idx],
	}
}

// runReferenceMatch classifies each rotation against the gallery and scales
// the winning label's priors by the salient portion area.
func (p *Pipeline) runReferenceMatch(ctx context.Context, rotations [utils.RotationCount]image.Image) *Result {
	if p.classifier == nil || p.priors == nil {
		return nil
	}
	candidates := evalRotations(ctx, rotations, func(_ context.Context, img image.Image) (refmatch.Match, float64, bool) {
		match, ok := p.classifier.Classify(img)
		return match, match.Confidence, ok
	})
	best, idx := bestCandidate(candidates)
	if idx < 0 {
		return nil
	}
	area := p.saliency.LargestObjectAreaRatio(rotations[idx])
	est := p.priors.Estimate(best.value.Label, area)
	if est == nil {
		slog.Debug("No priors for gallery label", "label", best.value.Label)
		return nil
	}
	return &Result{
		Estimate:   est,
		Source:     SourceReference,
		SourceName: SourceReference.String(),
		Label:      best.value.Label,
		Confidence: best.value.Confidence,
		Rotation:   utils.RotationAngles[idx],
	}
}

// runColorHeuristic always produces a result; it anchors the cascade.
func (p *Pipeline) runColorHeuristic(ctx context.Context, rotations [utils.RotationCount]image.Image) *Result {
	candidates := evalRotations(ctx, rotations, func(_ context.Context, img image.Image) (*nutrition.Estimate, float64, bool) {
		area := p.saliency.LargestObjectAreaRatio(img)
		est, conf := p.colors.Guess(img, area)
		return est, conf, est != nil
	})
	best, idx := bestCandidate(candidates)
	if idx < 0 {
		// Context canceled mid-stage; fall back to the unrotated variant.
		area := p.saliency.LargestObjectAreaRatio(rotations[0])
		est, conf := p.colors.Guess(rotations[0], area)
		return &Result{
			Estimate:   est,
			Source:     SourceColor,
			SourceName: SourceColor.String(),
			Confidence: conf,
			Rotation:   0,
		}
	}
	return &Result{
		Estimate:   best.value,
		Source:     SourceColor,
		SourceName: SourceColor.String(),
		Confidence: best.score,
		Rotation:   utils.RotationAngles[idx],
	}
}
