// Package refmatch classifies a probe image by visual similarity against a
// small bundled gallery of labeled reference images. The gallery is embedded
// once per process and cached; classification degrades to "no match" when
// the gallery is unavailable rather than failing the cascade.
package refmatch

import (
	"image"
	"log/slog"
	"math"
	"path/filepath"
	"sync"

	"github.com/MeKo-Tech/platescan/internal/utils"
)

// Config controls gallery loading and embedding.
type Config struct {
	// GalleryDir holds the reference images and the manifest.
	GalleryDir string
	// ManifestName overrides the manifest file name (DefaultManifestName
	// when empty).
	ManifestName string
}

// DefaultConfig returns defaults pointing at the bundled gallery directory.
func DefaultConfig() Config {
	return Config{GalleryDir: "gallery", ManifestName: DefaultManifestName}
}

// Match is a gallery hit with its uncalibrated confidence.
type Match struct {
	Label      string
	Confidence float64 // [0,1]; ordering-only, see Classify
}

// galleryEntry caches one embedded reference image.
type galleryEntry struct {
	label     string
	embedding []float32
}

// Classifier matches probe images against the embedded reference gallery.
// The gallery is built at most once per process even under concurrent use.
type Classifier struct {
	cfg      Config
	embedder Embedder

	buildOnce sync.Once
	gallery   []galleryEntry
}

// NewClassifier creates a Classifier using the given embedder, or the
// default Haar embedder when nil.
func NewClassifier(cfg Config, embedder Embedder) *Classifier {
	if embedder == nil {
		embedder = NewHaarEmbedder()
	}
	if cfg.ManifestName == "" {
		cfg.ManifestName = DefaultManifestName
	}
	return &Classifier{cfg: cfg, embedder: embedder}
}

// buildGallery loads the manifest, resolves and embeds every reference
// image, and caches the result for the process lifetime. Entries that fail
// to load or embed are skipped.
func (c *Classifier) buildGallery() {
	entries := LoadManifest(filepath.Join(c.cfg.GalleryDir, c.cfg.ManifestName))
	if len(entries) == 0 {
		slog.Debug("Reference gallery empty; classifier unavailable")
		return
	}
	gallery := make([]galleryEntry, 0, len(entries))
	for _, e := range entries {
		path := ResolveAsset(c.cfg.GalleryDir, e.Image)
		if path == "" {
			slog.Debug("Gallery image not found", "label", e.Label, "image", e.Image)
			continue
		}
		img, err := utils.LoadImage(path)
		if err != nil {
			slog.Debug("Gallery image unreadable", "label", e.Label, "path", path, "error", err)
			continue
		}
		vec, err := c.embedder.Embed(img)
		if err != nil {
			slog.Debug("Gallery image embedding failed", "label", e.Label, "error", err)
			continue
		}
		gallery = append(gallery, galleryEntry{label: e.Label, embedding: vec})
	}
	slog.Debug("Reference gallery built", "entries", len(gallery))
	c.gallery = gallery
}

// Classify embeds the probe and returns the closest gallery entry, or false
// when the gallery is unavailable or the probe cannot be embedded.
//
// Similarity is 1/(1+distance) and confidence is clamp((similarity+1)/2).
// The mapping is uncalibrated: it preserves the ranking order across
// candidates but the absolute value carries no meaning beyond ordering.
func (c *Classifier) Classify(img image.Image) (Match, bool) {
	c.buildOnce.Do(c.buildGallery)
	if len(c.gallery) == 0 || img == nil {
		return Match{}, false
	}
	probe, err := c.embedder.Embed(img)
	if err != nil {
		slog.Debug("Probe embedding failed", "error", err)
		return Match{}, false
	}

	best := Match{}
	bestSim := math.Inf(-1)
	for _, entry := range c.gallery {
		sim := 1.0 / (1.0 + l2Distance(probe, entry.embedding))
		if sim > bestSim {
			bestSim = sim
			best.Label = entry.label
		}
	}
	best.Confidence = clamp01((bestSim + 1) / 2)
	return best, true
}

// GallerySize reports how many reference entries are cached. Like Classify
// it builds the gallery on first use, so it is safe to call concurrently.
func (c *Classifier) GallerySize() int {
	c.buildOnce.Do(c.buildGallery)
	return len(c.gallery)
}

func l2Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := range n {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
