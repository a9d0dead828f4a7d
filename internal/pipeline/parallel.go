package pipeline

import (
	"context"
	"image"
	"sync"

	"github.com/MeKo-Tech/platescan/internal/utils"
)

// rotationCandidate is one rotation variant's stage outcome. ok=false marks
// a variant that produced nothing; score orders the rest.
type rotationCandidate[T any] struct {
	value T
	score float64
	ok    bool
}

// evalRotations runs fn once per rotation variant concurrently and returns
// the candidates indexed by rotation. Results are keyed by index, never by
// arrival order, so downstream merging is deterministic.
func evalRotations[T any](
	ctx context.Context,
	rotations [utils.RotationCount]image.Image,
	fn func(ctx context.Context, img image.Image) (T, float64, bool),
) [utils.RotationCount]rotationCandidate[T] {
	var out [utils.RotationCount]rotationCandidate[T]
	var wg sync.WaitGroup
	for i, img := range rotations {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			v, score, ok := fn(ctx, img)
			out[i] = rotationCandidate[T]{value: v, score: score, ok: ok}
		}()
	}
	wg.Wait()
	return out
}

// bestCandidate picks the highest-scoring candidate; ties go to the lowest
// rotation index. The second return is the rotation index, -1 when no
// variant produced anything.
func bestCandidate[T any](candidates [utils.RotationCount]rotationCandidate[T]) (rotationCandidate[T], int) {
	bestIdx := -1
	var best rotationCandidate[T]
	for i, c := range candidates {
		if !c.ok {
			continue
		}
		if bestIdx == -1 || c.score > best.score {
			best = c
			bestIdx = i
		}
	}
	return best, bestIdx
}

// firstCandidate picks the candidate with the lowest rotation index,
// ignoring scores. Used by the barcode stage, where any decode is final.
func firstCandidate[T any](candidates [utils.RotationCount]rotationCandidate[T]) (rotationCandidate[T], int) {
	for i, c := range candidates {
		if c.ok {
			return c, i
		}
	}
	var zero rotationCandidate[T]
	return zero, -1
}
