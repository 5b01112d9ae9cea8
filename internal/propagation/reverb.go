package propagation

import (
	"math"
	"math/rand"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/cache"
	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/world"
)

// estimateReverb shoots numRays source-side
// rays, each reflected up to maxDepth times, tracking mean free path and
// the area-weighted overlap between triangles the source and listener
// have both probed recently.
func (e *Engine) estimateReverb(scene *geom.Scene, listener *world.Listener, src *world.Source, maxDepth, numRays int) world.Reverb {
	sp := src.Position()

	totalHitDistance := 0.0
	numHits := 0
	validRays := 0

	for i := 0; i < numRays; i++ {
		origin := sp
		dir := randomDirection(e.rng)
		rayValid := false

		for depth := 0; depth < maxDepth; depth++ {
			hit, ok := e.Backend.ClosestHit(scene, origin, dir, e.Config.RayEpsilon, 1e6)
			if !ok {
				break
			}
			totalHitDistance += hit.Distance
			numHits++
			rayValid = true

			ref := cache.TriangleRef{Object: hit.Object, Triangle: hit.Triangle}
			src.Triangles.Touch(ref, e.frame)

			obj := findObject(scene, hit.Object)
			wt := obj.WorldTriangle(hit.Triangle)
			reflected := dir.Reflect(wt.Plane.Normal)
			origin = wt.Plane.Offset(hit.Point, e.Config.RayEpsilon, sideTowardPoint(wt.Plane, hit.Point.Add(reflected)))
			dir = reflected
		}
		if rayValid {
			validRays++
		}
	}

	meanFreePath := 0.0
	if numHits > 0 {
		meanFreePath = totalHitDistance / float64(numHits)
	}

	surfaceArea, areaWeightedAttenuation := surfaceAreaEstimate(scene)
	var avgAttenuation acoustic.Response
	if surfaceArea > 0 {
		avgAttenuation = areaWeightedAttenuation.Scale(1 / surfaceArea)
	}

	overlapArea := overlapAreaEstimate(scene, listener, src, e.Config.MaxReverbCacheAge, e.frame)

	validFraction := 0.0
	if numRays > 0 {
		validFraction = float64(validRays) / float64(numRays)
	}

	gain := 0.0
	if surfaceArea > 0 {
		gain = (overlapArea / surfaceArea) * src.ReverbAttenuation.Gain(meanFreePath) * validFraction
	}

	volume := surfaceArea * meanFreePath / 4

	return world.Reverb{
		Volume:              volume,
		SurfaceArea:         surfaceArea,
		AverageAttenuation:  avgAttenuation,
		DistanceAttenuation: avgAttenuation.Scale(gain),
	}
}

// surfaceAreaEstimate sums every triangle's world-space area (component
// S) and its area-weighted reflection response.
func surfaceAreaEstimate(scene *geom.Scene) (float64, acoustic.Response) {
	total := 0.0
	var weighted acoustic.Response
	for _, obj := range scene.Objects {
		for i := range obj.Mesh.Triangles {
			wt := obj.WorldTriangle(i)
			area := wt.Area()
			total += area
			mat := obj.Mesh.Materials[wt.Tri.Material]
			weighted = weighted.Add(mat.Reflection.Scale(area))
		}
	}
	return total, weighted
}

// overlapAreaEstimate sums the area of triangles that both the source
// and the listener have probed within maxAge frames, weighted by
// (1 - age/maxAge) averaged between the source and listener ages.
func overlapAreaEstimate(scene *geom.Scene, listener *world.Listener, src *world.Source, maxAge, currentFrame uint32) float64 {
	if maxAge == 0 {
		return 0
	}
	total := 0.0
	src.Triangles.Each(func(ref cache.TriangleRef, srcAge uint32, hits int) {
		listenerAge, _, ok := listener.Triangles.Get(ref)
		if !ok {
			return
		}
		srcAgeDelta := currentFrame - srcAge
		listenerAgeDelta := currentFrame - listenerAge
		if srcAgeDelta > maxAge || listenerAgeDelta > maxAge {
			return
		}
		obj := findObject(scene, ref.Object)
		if obj == nil || ref.Triangle >= len(obj.Mesh.Triangles) {
			return
		}
		area := obj.WorldTriangle(ref.Triangle).Area()
		weight := (1 - float64(srcAgeDelta)/float64(maxAge) + 1 - float64(listenerAgeDelta)/float64(maxAge)) / 2
		total += area * weight
	})
	return total
}

// randomDirection draws a uniformly distributed unit vector on the
// sphere using the standard u-in-[-1,1] latitude trick.
func randomDirection(rng *rand.Rand) geom.Vec3 {
	u := rng.Float64()*2 - 1
	theta := rng.Float64() * 2 * math.Pi
	r := math.Sqrt(1 - u*u)
	return geom.Vec3{X: r * math.Cos(theta), Y: u, Z: r * math.Sin(theta)}
}
