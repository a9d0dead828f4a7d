// Package saliency estimates how much of an image the dominant object
// occupies. The ratio is a proxy for serving size downstream; it is a
// coarse signal and always yields a usable value.
package saliency

import (
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/platescan/internal/mempool"
)

// FallbackAreaRatio is returned whenever no salient region can be found.
// It encodes a neutral "medium-size single dish" assumption.
const FallbackAreaRatio = 0.35

// Estimator reports the area fraction of the largest salient object.
type Estimator interface {
	// LargestObjectAreaRatio returns a ratio in [0,1]. It never fails;
	// implementations fall back to FallbackAreaRatio.
	LargestObjectAreaRatio(img image.Image) float64
}

// ContrastEstimator is the default estimator. It marks pixels whose luma
// deviates strongly from the image mean, groups them into 4-connected
// components, and returns the normalized bounding-box area of the largest
// component.
type ContrastEstimator struct {
	// Side is the working raster edge length (default 64).
	Side int
	// Threshold is the minimum |luma - mean| for a pixel to count as
	// salient, on a 0-255 scale (default 30).
	Threshold float64
	// MinComponent discards specks smaller than this many working-raster
	// pixels (default 8).
	MinComponent int
}

// NewContrastEstimator returns an estimator with the default parameters.
func NewContrastEstimator() *ContrastEstimator {
	return &ContrastEstimator{Side: 64, Threshold: 30, MinComponent: 8}
}

// LargestObjectAreaRatio implements Estimator.
func (e *ContrastEstimator) LargestObjectAreaRatio(img image.Image) float64 {
	if img == nil {
		return FallbackAreaRatio
	}
	side := e.Side
	if side <= 0 {
		side = 64
	}
	b := img.Bounds()
	if b.Dx() < 2 || b.Dy() < 2 {
		return FallbackAreaRatio
	}

	small := imaging.Resize(img, side, side, imaging.Box)
	luma := make([]float64, side*side)
	var mean float64
	for y := range side {
		for x := range side {
			r, g, bl, _ := small.At(x, y).RGBA()
			l := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8)
			luma[y*side+x] = l
			mean += l
		}
	}
	mean /= float64(side * side)

	threshold := e.Threshold
	if threshold <= 0 {
		threshold = 30
	}
	// Split contrast pixels by luma side; the object is the minority side,
	// the majority side is treated as background.
	dark := mempool.GetBool(side * side)
	bright := mempool.GetBool(side * side)
	defer mempool.PutBool(dark)
	defer mempool.PutBool(bright)
	darkCount, brightCount := 0, 0
	for i, l := range luma {
		switch {
		case l < mean-threshold:
			dark[i] = true
			darkCount++
		case l > mean+threshold:
			bright[i] = true
			brightCount++
		}
	}
	mask := dark
	if darkCount == 0 || (brightCount > 0 && brightCount < darkCount) {
		mask = bright
	}

	minComponent := e.MinComponent
	if minComponent <= 0 {
		minComponent = 8
	}
	bestArea := largestComponentBBoxArea(mask, side, minComponent)
	if bestArea <= 0 {
		slog.Debug("No salient region found, using fallback area ratio")
		return FallbackAreaRatio
	}
	ratio := float64(bestArea) / float64(side*side)
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

// largestComponentBBoxArea flood-fills the mask with 4-connectivity and
// returns the bounding-box pixel area of the largest component, or 0 when
// every component is below minSize.
func largestComponentBBoxArea(mask []bool, side, minSize int) int {
	visited := mempool.GetBool(len(mask))
	defer mempool.PutBool(visited)
	queue := make([]int, 0, side)
	best := 0

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		minX, minY := side, side
		maxX, maxY := 0, 0
		size := 0

		queue = append(queue[:0], start)
		visited[start] = true
		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			size++
			x, y := idx%side, idx/side
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
			for _, n := range [4]int{idx - 1, idx + 1, idx - side, idx + side} {
				if n < 0 || n >= len(mask) {
					continue
				}
				// Row wrap guard for horizontal neighbours.
				if (n == idx-1 || n == idx+1) && n/side != y {
					continue
				}
				if mask[n] && !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}

		if size < minSize {
			continue
		}
		area := (maxX - minX + 1) * (maxY - minY + 1)
		if area > best {
			best = area
		}
	}
	return best
}
