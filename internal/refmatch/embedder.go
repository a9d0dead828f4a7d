package refmatch

import (
	"errors"
	"image"

	"github.com/rivo/duplo"
)

// EmbeddingDim is the fixed length of every embedding vector: the top-left
// 8x8 block of Haar coefficients over three YIQ channels. The low-frequency
// block carries the bulk of the visual signature.
const EmbeddingDim = 8 * 8 * 3

const haarBlock = 8

// Embedder computes a fixed-length feature vector for an image.
type Embedder interface {
	Embed(img image.Image) ([]float32, error)
}

// HaarEmbedder is the default embedder. It reuses the duplo Haar-wavelet
// visual hash and flattens its low-frequency coefficients into a vector.
type HaarEmbedder struct{}

// NewHaarEmbedder returns the default wavelet-based embedder.
func NewHaarEmbedder() *HaarEmbedder { return &HaarEmbedder{} }

// Embed implements Embedder.
func (h *HaarEmbedder) Embed(img image.Image) ([]float32, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	b := img.Bounds()
	if b.Dx() < 2 || b.Dy() < 2 {
		return nil, errors.New("image too small to embed")
	}
	hash, _ := duplo.CreateHash(img)
	matrix := hash.Matrix
	if len(matrix.Coefs) == 0 || matrix.Width == 0 {
		return nil, errors.New("empty wavelet matrix")
	}

	vec := make([]float32, 0, EmbeddingDim)
	for y := range haarBlock {
		for x := range haarBlock {
			idx := y*int(matrix.Width) + x
			// A coefficient holds one value per colour channel; copy caps at
			// three channels so the vector length stays fixed.
			var coef [3]float64
			if idx < len(matrix.Coefs) {
				copy(coef[:], matrix.Coefs[idx][:])
			}
			for _, c := range coef {
				vec = append(vec, float32(c))
			}
		}
	}
	return vec, nil
}
