package cache

import (
	"math/rand"
	"testing"
)

func TestAffinityStaysInBounds(t *testing.T) {
	c := NewRayDistributionCache(DefaultNumDiv, DefaultMinAffinity, DefaultMaxAffinity)
	for i := 0; i < 1000; i++ {
		c.RecordHit(i%c.numDiv, i%c.numLat)
		c.RecordMiss((i+3)%c.numDiv, (i+1)%c.numLat)
	}
	c.Each(func(lon, lat int, affinity float64) {
		if affinity < c.minAffinity || affinity > c.maxAffinity {
			t.Errorf("affinity out of bounds at (%d,%d): %f", lon, lat, affinity)
		}
	})
}

func TestEachVisitsEveryCell(t *testing.T) {
	c := NewRayDistributionCache(DefaultNumDiv, DefaultMinAffinity, DefaultMaxAffinity)
	count := 0
	c.Each(func(lon, lat int, affinity float64) { count++ })
	want := DefaultNumDiv * (DefaultNumDiv / 2)
	if count != want {
		t.Fatalf("got %d cells, want %d", count, want)
	}
}

func TestDrawRaysAtLeastOnePerCell(t *testing.T) {
	c := NewRayDistributionCache(DefaultNumDiv, DefaultMinAffinity, DefaultMaxAffinity)
	rng := rand.New(rand.NewSource(1))
	samples := c.DrawRays(5, rng) // fewer than numCells
	perCell := make(map[[2]int]int)
	for _, s := range samples {
		perCell[[2]int{s.Lon, s.Lat}]++
	}
	if len(perCell) != c.NumCells() {
		t.Fatalf("expected every one of %d cells represented, got %d", c.NumCells(), len(perCell))
	}
	for k, n := range perCell {
		if n < 1 {
			t.Errorf("cell %v got zero rays", k)
		}
	}
}
