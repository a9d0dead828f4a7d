package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/platescan/internal/config"
	"github.com/MeKo-Tech/platescan/internal/pipeline"
	"github.com/MeKo-Tech/platescan/internal/refmatch"
	"github.com/MeKo-Tech/platescan/internal/store"
	"github.com/MeKo-Tech/platescan/internal/textrec"
)

// buildPipeline assembles the estimation pipeline and its collaborators
// from the resolved configuration. The returned cleanup flushes the
// background writer and closes the store.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	builder := pipeline.NewBuilder().
		WithGalleryDir(cfg.Gallery.Dir).
		WithPriorsPath(cfg.Gallery.PriorsPath).
		WithLanguage(cfg.Language)

	cleanup := func() {}

	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open nutrition store: %w", err)
		}
		var fetcher store.Fetcher
		if cfg.Store.RemoteEnabled {
			fetcher = store.NewRemoteClient(cfg.Store.RemoteBaseURL,
				time.Duration(cfg.Store.TimeoutSec)*time.Second)
		}
		writer := store.NewWriter(st, cfg.Store.QueueDepth)
		builder = builder.
			WithLookup(store.NewCachedLookup(st, fetcher)).
			WithUpserter(writer)
		cleanup = func() {
			writer.Close()
			if err := st.Close(); err != nil {
				slog.Warn("Closing nutrition store failed", "error", err)
			}
		}
	}

	if cfg.Gallery.ModelPath != "" {
		embedder, err := refmatch.NewONNXEmbedder(cfg.Gallery.ModelPath, cfg.Gallery.NumThreads)
		if err != nil {
			slog.Warn("Embedding model unavailable, using wavelet embedder", "error", err)
		} else {
			builder = builder.WithEmbedder(embedder)
		}
	}

	if cfg.OCR.Enabled {
		engine := textrec.NewTesseractEngine()
		engine.FastMaxWidth = cfg.OCR.FastMaxSide
		builder = builder.WithOCREngine(engine)
	}

	p, err := builder.Build()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return p, cleanup, nil
}
