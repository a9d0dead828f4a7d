// Package pipeline orchestrates the nutrition-estimation cascade: barcode
// lookup, label OCR, reference-gallery matching and the color heuristic,
// each evaluated across four rotation variants of the source photo.
package pipeline

import (
	"context"

	"github.com/MeKo-Tech/platescan/internal/barcode"
	"github.com/MeKo-Tech/platescan/internal/colorguess"
	"github.com/MeKo-Tech/platescan/internal/nutrition"
	"github.com/MeKo-Tech/platescan/internal/priors"
	"github.com/MeKo-Tech/platescan/internal/refmatch"
	"github.com/MeKo-Tech/platescan/internal/saliency"
	"github.com/MeKo-Tech/platescan/internal/textrec"
)

// Lookup resolves a normalized barcode payload to known nutrition facts.
// A miss is (nil, nil); errors are reserved for transport failures.
type Lookup interface {
	LookupCode(ctx context.Context, code string) (*nutrition.Estimate, error)
}

// Upserter records label-derived nutrition facts for a barcode. Calls are
// fire-and-forget from the pipeline's perspective; implementations own
// their error handling.
type Upserter interface {
	UpsertCode(code string, est *nutrition.Estimate)
}

// Config holds configuration for the estimation pipeline.
type Config struct {
	// Gallery configures the reference-image classifier.
	Gallery refmatch.Config
	// PriorsPath optionally overrides the embedded priors table.
	PriorsPath string
	// LanguageDefault is the OCR language hint used when a call supplies
	// none.
	LanguageDefault string
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		Gallery: refmatch.DefaultConfig(),
	}
}

// Pipeline runs the estimation cascade. It is stateless across calls and
// safe for concurrent use once built.
type Pipeline struct {
	cfg Config

	detector   *barcode.Detector
	ocr        textrec.Engine
	lookup     Lookup
	upserter   Upserter
	classifier *refmatch.Classifier
	priors     *priors.Table
	saliency   saliency.Estimator
	colors     *colorguess.Classifier
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg        Config
	ocr        textrec.Engine
	lookup     Lookup
	upserter   Upserter
	embedder   refmatch.Embedder
	classifier *refmatch.Classifier
	priors     *priors.Table
	saliency   saliency.Estimator
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithGalleryDir sets the reference gallery directory.
func (b *Builder) WithGalleryDir(dir string) *Builder {
	if dir != "" {
		b.cfg.Gallery.GalleryDir = dir
	}
	return b
}

// WithPriorsPath overrides the embedded priors table with a file.
func (b *Builder) WithPriorsPath(path string) *Builder {
	if path != "" {
		b.cfg.PriorsPath = path
	}
	return b
}

// WithLanguage sets the default OCR language hint.
func (b *Builder) WithLanguage(lang string) *Builder {
	b.cfg.LanguageDefault = lang
	return b
}

// WithOCREngine injects the OCR engine. Without one, the label stage is
// skipped entirely.
func (b *Builder) WithOCREngine(engine textrec.Engine) *Builder {
	b.ocr = engine
	return b
}

// WithLookup injects the barcode nutrition lookup.
func (b *Builder) WithLookup(lookup Lookup) *Builder {
	b.lookup = lookup
	return b
}

// WithUpserter injects the fire-and-forget store writer.
func (b *Builder) WithUpserter(u Upserter) *Builder {
	b.upserter = u
	return b
}

// WithEmbedder overrides the gallery embedder (the Haar embedder is the
// default).
func (b *Builder) WithEmbedder(e refmatch.Embedder) *Builder {
	b.embedder = e
	return b
}

// WithClassifier injects a prebuilt reference classifier, mainly for tests.
func (b *Builder) WithClassifier(c *refmatch.Classifier) *Builder {
	b.classifier = c
	return b
}

// WithPriorsTable injects a prebuilt priors table, mainly for tests.
func (b *Builder) WithPriorsTable(t *priors.Table) *Builder {
	b.priors = t
	return b
}

// WithSaliencyEstimator overrides the portion-area estimator.
func (b *Builder) WithSaliencyEstimator(e saliency.Estimator) *Builder {
	b.saliency = e
	return b
}

// Build assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	p := &Pipeline{
		cfg:        b.cfg,
		detector:   barcode.NewDetector(barcode.DefaultConfig()),
		ocr:        b.ocr,
		lookup:     b.lookup,
		upserter:   b.upserter,
		classifier: b.classifier,
		priors:     b.priors,
		saliency:   b.saliency,
		colors:     colorguess.NewClassifier(),
	}
	if p.classifier == nil {
		p.classifier = refmatch.NewClassifier(b.cfg.Gallery, b.embedder)
	}
	if p.priors == nil {
		var err error
		if b.cfg.PriorsPath != "" {
			p.priors, err = priors.LoadTable(b.cfg.PriorsPath)
		} else {
			p.priors, err = priors.NewTable()
		}
		if err != nil {
			return nil, err
		}
	}
	if p.saliency == nil {
		p.saliency = saliency.NewContrastEstimator()
	}
	return p, nil
}
