package refmatch

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/platescan/internal/mempool"
	"github.com/MeKo-Tech/platescan/internal/onnx"
)

// defaultModelSide is used when the model declares dynamic spatial dims.
const defaultModelSide = 224

// ONNXEmbedder embeds images through a bundled feature-extraction model.
// It is an optional upgrade over the Haar embedder; both feed the same
// classifier, so swapping embedders never changes the matching logic.
type ONNXEmbedder struct {
	session *onnx.Session
	height  int
	width   int
}

// NewONNXEmbedder loads the embedding model at modelPath.
func NewONNXEmbedder(modelPath string, numThreads int) (*ONNXEmbedder, error) {
	session, err := onnx.NewSession(modelPath, numThreads)
	if err != nil {
		return nil, fmt.Errorf("load embedding model: %w", err)
	}
	e := &ONNXEmbedder{session: session, height: session.InHeight, width: session.InWidth}
	if e.height <= 0 {
		e.height = defaultModelSide
	}
	if e.width <= 0 {
		e.width = defaultModelSide
	}
	return e, nil
}

// Embed implements Embedder. The image is resized to the model's input
// resolution and converted to a normalized NCHW float32 tensor.
func (e *ONNXEmbedder) Embed(img image.Image) ([]float32, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	resized := imaging.Resize(img, e.width, e.height, imaging.Lanczos)
	data := mempool.GetFloat32(3 * e.height * e.width)
	defer mempool.PutFloat32(data)
	normalizeNCHW(resized, e.height, e.width, data)

	vec, err := e.session.Run(data, e.height, e.width)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return vec, nil
}

// Close releases the underlying model session.
func (e *ONNXEmbedder) Close() {
	if e.session != nil {
		e.session.Close()
		e.session = nil
	}
}

// normalizeNCHW fills data with a 1x3xHxW tensor, pixel values mapped from
// [0,255] to [-1,1], channel-planar. len(data) must be 3*height*width.
func normalizeNCHW(img image.Image, height, width int, data []float32) {
	bounds := img.Bounds()
	plane := height * width
	for y := range height {
		for x := range width {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := y*width + x
			data[idx] = float32(r>>8)/127.5 - 1.0
			data[plane+idx] = float32(g>>8)/127.5 - 1.0
			data[2*plane+idx] = float32(b>>8)/127.5 - 1.0
		}
	}
}
