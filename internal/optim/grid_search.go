// Package optim tunes scene and engine parameters against a target
// acoustic metric, e.g. sweeping a material's absorption and the engine's
// ray budget until a preset's mid-band T60 lands on a desired value.
package optim

import (
	"context"
	"math"
)

// Evaluate runs one candidate parameter set and returns its cost; lower
// is better. The tune command builds this closure around a scenario
// instance: apply params, run a handful of frames, return the distance
// from the target metric.
type Evaluate func(params map[string]float64) (float64, error)

// GridSearch exhaustively evaluates the cartesian product of per-param
// candidate values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch builds a search over params[i] taking values ranges[i].
func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Range returns n evenly spaced candidate values across [min, max].
func Range(min, max float64, n int) []float64 {
	if n <= 1 {
		return []float64{min}
	}
	vals := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := range vals {
		vals[i] = min + float64(i)*step
	}
	return vals
}

// Search runs every combination through evaluate and returns the
// lowest-cost parameter set. Candidates whose evaluation fails are
// skipped rather than aborting the sweep.
func (g *GridSearch) Search(ctx context.Context, evaluate Evaluate) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), evaluate, &best, &bestParams)
	return bestParams, best, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	evaluate Evaluate,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		cost, err := evaluate(current)
		if err != nil {
			return nil
		}
		if cost < *best {
			*best = cost
			cp := make(map[string]float64, len(current))
			for k, v := range current {
				cp[k] = v
			}
			*bestParams = cp
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, current, evaluate, best, bestParams); err != nil {
			return err
		}
	}
	delete(current, paramName)
	return nil
}
