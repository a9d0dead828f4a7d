package refmatch

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSolidPNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := range 32 {
		for x := range 32 {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path) //nolint:gosec // G304: test temp path
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	require.NoError(t, png.Encode(f, img))
}

func writeGallery(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	writeSolidPNG(t, filepath.Join(dir, "red.png"), color.RGBA{R: 220, G: 30, B: 30, A: 255})
	writeSolidPNG(t, filepath.Join(dir, "green.png"), color.RGBA{R: 30, G: 200, B: 40, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultManifestName), []byte(manifest), 0o600))
	return dir
}

const twoEntryManifest = `
- label: tomato_soup
  image: red
- label: garden_salad
  image: green.png
`

func TestClassifyPicksNearestGalleryEntry(t *testing.T) {
	dir := writeGallery(t, twoEntryManifest)
	c := NewClassifier(Config{GalleryDir: dir}, nil)

	probe := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := range 32 {
		for x := range 32 {
			probe.SetRGBA(x, y, color.RGBA{R: 40, G: 190, B: 50, A: 255})
		}
	}

	match, ok := c.Classify(probe)
	require.True(t, ok)
	assert.Equal(t, "garden_salad", match.Label)
	assert.GreaterOrEqual(t, match.Confidence, 0.0)
	assert.LessOrEqual(t, match.Confidence, 1.0)
	assert.Equal(t, 2, c.GallerySize())
}

func TestClassifyIsDeterministic(t *testing.T) {
	dir := writeGallery(t, twoEntryManifest)
	c := NewClassifier(Config{GalleryDir: dir}, nil)

	probe := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := range 32 {
		for x := range 32 {
			probe.SetRGBA(x, y, color.RGBA{R: 200, G: 60, B: 50, A: 255})
		}
	}

	first, ok := c.Classify(probe)
	require.True(t, ok)
	for range 5 {
		again, ok := c.Classify(probe)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

type countingEmbedder struct {
	calls atomic.Int64
}

func (c *countingEmbedder) Embed(img image.Image) ([]float32, error) {
	c.calls.Add(1)
	b := img.Bounds()
	r, g, bl, _ := img.At(b.Min.X, b.Min.Y).RGBA()
	return []float32{float32(r >> 8), float32(g >> 8), float32(bl >> 8)}, nil
}

func TestGalleryBuildsOnceUnderConcurrency(t *testing.T) {
	dir := writeGallery(t, twoEntryManifest)
	embedder := &countingEmbedder{}
	c := NewClassifier(Config{GalleryDir: dir}, embedder)

	probe := image.NewRGBA(image.Rect(0, 0, 8, 8))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Classify(probe)
		}()
	}
	wg.Wait()

	// 2 gallery embeddings plus one probe embedding per Classify call.
	assert.Equal(t, int64(2+8), embedder.calls.Load())
	assert.Equal(t, 2, c.GallerySize())
}

func TestGallerySizeConcurrentWithFirstClassify(t *testing.T) {
	dir := writeGallery(t, twoEntryManifest)
	embedder := &countingEmbedder{}
	c := NewClassifier(Config{GalleryDir: dir}, embedder)

	probe := image.NewRGBA(image.Rect(0, 0, 8, 8))

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Classify(probe)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, 2, c.GallerySize())
		}()
	}
	wg.Wait()

	// The gallery must still have been built exactly once.
	assert.Equal(t, int64(2+4), embedder.calls.Load())
}

func TestClassifyUnavailableWithoutGallery(t *testing.T) {
	c := NewClassifier(Config{GalleryDir: t.TempDir()}, nil)
	probe := image.NewRGBA(image.Rect(0, 0, 8, 8))
	_, ok := c.Classify(probe)
	assert.False(t, ok)
	assert.Equal(t, 0, c.GallerySize())
}

func TestMalformedManifestDisablesClassifier(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultManifestName), []byte("{{not yaml"), 0o600))
	c := NewClassifier(Config{GalleryDir: dir}, nil)
	_, ok := c.Classify(image.NewRGBA(image.Rect(0, 0, 8, 8)))
	assert.False(t, ok)
}

func TestMissingGalleryImagesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	writeSolidPNG(t, filepath.Join(dir, "red.png"), color.RGBA{R: 220, G: 30, B: 30, A: 255})
	manifest := `
- label: tomato_soup
  image: red.png
- label: ghost
  image: missing.png
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultManifestName), []byte(manifest), 0o600))
	c := NewClassifier(Config{GalleryDir: dir}, nil)

	match, ok := c.Classify(image.NewRGBA(image.Rect(0, 0, 16, 16)))
	require.True(t, ok)
	assert.Equal(t, "tomato_soup", match.Label)
	assert.Equal(t, 1, c.GallerySize())
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(image.Image) ([]float32, error) {
	return nil, errors.New("boom")
}

func TestProbeEmbeddingFailureIsSoftMiss(t *testing.T) {
	dir := writeGallery(t, twoEntryManifest)
	haar := NewClassifier(Config{GalleryDir: dir}, nil)
	_, ok := haar.Classify(image.NewRGBA(image.Rect(0, 0, 16, 16)))
	require.True(t, ok)

	failing := NewClassifier(Config{GalleryDir: dir}, failingEmbedder{})
	_, ok = failing.Classify(image.NewRGBA(image.Rect(0, 0, 16, 16)))
	assert.False(t, ok)
}
