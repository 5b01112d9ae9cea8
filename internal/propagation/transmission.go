package propagation

import (
	"sort"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/raytrace"
	"github.com/san-kum/acoustid/internal/world"
)

// transmissionPath traces an all-hits ray from the
// listener toward the source whose boundary crossings are multiplied
// into a per-band transmission amplitude.
func (e *Engine) transmissionPath(scene *geom.Scene, listener *world.Listener, src *world.Source, dir geom.Vec3, dist float64) (world.Path, bool) {
	clearDistance := dist - src.Radius
	if clearDistance <= 0 {
		return world.Path{}, false
	}
	hits := e.Backend.AllHits(scene, listener.Position(), dir, e.Config.RayEpsilon, clearDistance-e.Config.RayEpsilon)
	if len(hits) == 0 {
		return world.Path{}, false
	}

	amplitude := transmissionAmplitude(scene, hits)
	desc := world.NewDescription([]world.PathPoint{
		{Tag: world.TagListener},
		{Tag: world.TagSource, SourceID: src.ID},
	})
	return e.finalizePath(scene, listener, src, dir, dir, dist, desc, amplitude), true
}

// transmissionAmplitude folds the two boundary-crossing cases:
//
//   - A single hit (thin wall) degenerates to (1-reflection)*absorption,
//     squared (entry and exit boundary attenuation are identical).
//   - Multiple hits delimit (enter, exit) boundary pairs; each boundary
//     contributes (1-reflection)*absorption, and each interior segment
//     between boundary pairs contributes avg(transmission_A,
//     transmission_B)^segmentLength.
func transmissionAmplitude(scene *geom.Scene, hits []raytrace.Hit) acoustic.Response {
	if len(hits) == 1 {
		mat := materialOf(scene, hits[0])
		boundary := boundaryAttenuation(mat)
		return boundary.Mul(boundary)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })

	result := acoustic.Unity()
	for i := 0; i+1 < len(hits); i += 2 {
		enter := materialOf(scene, hits[i])
		exit := materialOf(scene, hits[i+1])
		result = result.Mul(boundaryAttenuation(enter)).Mul(boundaryAttenuation(exit))

		segmentLength := hits[i+1].Distance - hits[i].Distance
		avgTransmission := avgResponse(enter.Transmission, exit.Transmission)
		result = result.Mul(avgTransmission.Pow(segmentLength))
	}
	return result
}

func boundaryAttenuation(mat acoustic.Material) acoustic.Response {
	oneMinusR := acoustic.Unity().Add(mat.Reflection.Scale(-1))
	return oneMinusR.Mul(mat.Absorption)
}

func avgResponse(a, b acoustic.Response) acoustic.Response {
	var out acoustic.Response
	for i := range out {
		out[i] = avg(a[i], b[i])
	}
	return out
}

func materialOf(scene *geom.Scene, hit raytrace.Hit) acoustic.Material {
	obj := findObject(scene, hit.Object)
	tri := obj.Mesh.Triangles[hit.Triangle]
	return obj.Mesh.Materials[tri.Material]
}
