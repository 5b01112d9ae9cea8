package cache

import (
	"math"
	"math/rand"

	"github.com/san-kum/acoustid/internal/geom"
)

// RayDistributionCache tiles the unit sphere into numDiv longitudinal by
// numDiv/2 latitudinal cells, each holding an affinity in
// [minAffinity, maxAffinity]. The engine draws its per-tick probe rays
// proportionally to cell affinity, biasing future sampling toward
// directions that have proven productive.
type RayDistributionCache struct {
	numDiv       int
	numLat       int
	minAffinity  float64
	maxAffinity  float64
	affinity     []float64 // numDiv*numLat cells, longitude-major
	latSinBounds []float64 // numLat+1 arcsin-spaced sin(latitude) boundaries
}

const (
	DefaultNumDiv      = 10
	DefaultMinAffinity = 0.05
	DefaultMaxAffinity = 1.0
)

// NewRayDistributionCache builds a cache with uniform initial affinity at
// the midpoint of [minAffinity, maxAffinity].
func NewRayDistributionCache(numDiv int, minAffinity, maxAffinity float64) *RayDistributionCache {
	if numDiv < 2 {
		numDiv = 2
	}
	numLat := numDiv / 2
	if numLat < 1 {
		numLat = 1
	}

	bounds := make([]float64, numLat+1)
	for i := 0; i <= numLat; i++ {
		// equal solid-angle latitude bands: sin(lat) is evenly spaced
		// between -1 and 1.
		bounds[i] = -1 + 2*float64(i)/float64(numLat)
	}

	c := &RayDistributionCache{
		numDiv:       numDiv,
		numLat:       numLat,
		minAffinity:  minAffinity,
		maxAffinity:  maxAffinity,
		affinity:     make([]float64, numDiv*numLat),
		latSinBounds: bounds,
	}
	mid := (minAffinity + maxAffinity) / 2
	for i := range c.affinity {
		c.affinity[i] = mid
	}
	return c
}

// NumCells returns numDiv * numDiv/2, the total number of tiled cells.
func (c *RayDistributionCache) NumCells() int { return len(c.affinity) }

func (c *RayDistributionCache) index(lon, lat int) int { return lat*c.numDiv + lon }

// Affinity returns the current affinity of cell (lon, lat).
func (c *RayDistributionCache) Affinity(lon, lat int) float64 {
	return c.affinity[c.index(lon, lat)]
}

func (c *RayDistributionCache) clamp(v float64) float64 {
	if v < c.minAffinity {
		return c.minAffinity
	}
	if v > c.maxAffinity {
		return c.maxAffinity
	}
	return v
}

// RecordMiss lowers a cell's affinity after a probe ray from it struck no
// geometry.
func (c *RayDistributionCache) RecordMiss(lon, lat int) {
	i := c.index(lon, lat)
	c.affinity[i] = c.clamp(c.affinity[i] - 0.01)
}

// RecordHit raises a cell's affinity after a probe ray from it produced
// at least one valid propagation path.
func (c *RayDistributionCache) RecordHit(lon, lat int) {
	i := c.index(lon, lat)
	c.affinity[i] = c.clamp(c.affinity[i] + 0.1)
}

// Each visits every cell exactly once; order is longitude-major within
// latitude band.
func (c *RayDistributionCache) Each(fn func(lon, lat int, affinity float64)) {
	for lat := 0; lat < c.numLat; lat++ {
		for lon := 0; lon < c.numDiv; lon++ {
			fn(lon, lat, c.affinity[c.index(lon, lat)])
		}
	}
}

// cellDirection samples a uniformly random direction within cell (lon,
// lat) of the tiling.
func (c *RayDistributionCache) cellDirection(lon, lat int, rng *rand.Rand) geom.Vec3 {
	lonFrac := (float64(lon) + rng.Float64()) / float64(c.numDiv)
	phi := lonFrac * 2 * math.Pi

	sinLo := c.latSinBounds[lat]
	sinHi := c.latSinBounds[lat+1]
	sinTheta := sinLo + rng.Float64()*(sinHi-sinLo)
	if sinTheta > 1 {
		sinTheta = 1
	} else if sinTheta < -1 {
		sinTheta = -1
	}
	cosTheta := math.Sqrt(1 - sinTheta*sinTheta)

	return geom.Vec3{
		X: cosTheta * math.Cos(phi),
		Y: sinTheta,
		Z: cosTheta * math.Sin(phi),
	}
}

// RaySample is one drawn direction together with the cell it came from,
// so the engine can report hit/miss feedback after tracing it.
type RaySample struct {
	Direction geom.Vec3
	Lon, Lat  int
}

// DrawRays distributes n rays across the cells proportionally to their
// current affinity, guaranteeing every cell at least one ray, then
// tops up the remainder by
// affinity-weighted rounding.
func (c *RayDistributionCache) DrawRays(n int, rng *rand.Rand) []RaySample {
	numCells := c.NumCells()
	if numCells == 0 || n <= 0 {
		return nil
	}

	counts := make([]int, numCells)
	for i := range counts {
		counts[i] = 1
	}
	remaining := n - numCells
	if remaining < 0 {
		remaining = 0
	}

	total := 0.0
	for _, a := range c.affinity {
		total += a
	}
	if total > 0 && remaining > 0 {
		assigned := 0
		for i, a := range c.affinity {
			extra := int(float64(remaining) * a / total)
			counts[i] += extra
			assigned += extra
		}
		// Assign any leftover (from integer truncation) to the
		// highest-affinity cells first.
		leftover := remaining - assigned
		order := sortedByAffinityDesc(c.affinity)
		for i := 0; i < leftover && i < len(order); i++ {
			counts[order[i]]++
		}
	}

	samples := make([]RaySample, 0, n+numCells)
	for lat := 0; lat < c.numLat; lat++ {
		for lon := 0; lon < c.numDiv; lon++ {
			idx := c.index(lon, lat)
			for k := 0; k < counts[idx]; k++ {
				samples = append(samples, RaySample{
					Direction: c.cellDirection(lon, lat, rng),
					Lon:       lon,
					Lat:       lat,
				})
			}
		}
	}
	return samples
}

func sortedByAffinityDesc(affinity []float64) []int {
	order := make([]int, len(affinity))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 && affinity[order[j-1]] < affinity[order[j]] {
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}
	return order
}
