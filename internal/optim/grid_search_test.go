package optim

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch(
		[]string{"x", "y"},
		[][]float64{Range(-2, 2, 9), Range(-2, 2, 9)},
	)
	best, cost, err := g.Search(context.Background(), func(p map[string]float64) (float64, error) {
		dx := p["x"] - 1
		dy := p["y"] + 0.5
		return dx*dx + dy*dy, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(best["x"]-1) > 1e-9 || math.Abs(best["y"]+0.5) > 1e-9 {
		t.Errorf("best = %v, want x=1 y=-0.5", best)
	}
	if cost > 1e-9 {
		t.Errorf("cost = %v, want 0", cost)
	}
}

func TestGridSearchSkipsFailingCandidates(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})
	best, _, err := g.Search(context.Background(), func(p map[string]float64) (float64, error) {
		if p["x"] == 2 {
			return 0, errors.New("boom")
		}
		return p["x"], nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if best["x"] != 1 {
		t.Errorf("best x = %v, want 1 (failing candidate skipped)", best["x"])
	}
}

func TestRangeEndpoints(t *testing.T) {
	vals := Range(0, 1, 5)
	if len(vals) != 5 || vals[0] != 0 || vals[4] != 1 {
		t.Errorf("Range(0,1,5) = %v", vals)
	}
}
