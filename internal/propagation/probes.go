package propagation

import (
	"github.com/san-kum/acoustid/internal/cache"
	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/world"
)

// shootListenerProbes draws ray
// directions from the listener's RayDistributionCache, specularly
// reflect up to maxDepth times, and at every intersected triangle try
// image-source reflection candidates and diffraction candidates against
// every enabled source.
func (e *Engine) shootListenerProbes(scene *geom.Scene, listener *world.Listener, sources []*world.Source, maxDepth, numRays int, outBuffer *Buffer) {
	samples := listener.Directions.DrawRays(numRays, e.rng)
	lp := listener.Position()

	for _, sample := range samples {
		seq := make([]cache.TriangleRef, 0, maxDepth)
		origin := lp
		dir := sample.Direction
		produced := false

		for depth := 0; depth < maxDepth; depth++ {
			hit, ok := e.Backend.ClosestHit(scene, origin, dir, e.Config.RayEpsilon, 1e6)
			if !ok {
				break
			}
			ref := cache.TriangleRef{Object: hit.Object, Triangle: hit.Triangle}
			seq = append(seq, ref)
			listener.Triangles.Touch(ref, e.frame)

			obj := findObject(scene, hit.Object)
			wt := obj.WorldTriangle(hit.Triangle)

			if e.Config.ReflectionEnabled {
				for i, src := range sources {
					if !src.Enabled {
						continue
					}
					if path, ok := e.validateReflection(scene, listener, src, seq); ok {
						outBuffer.Sources[i].Paths = append(outBuffer.Sources[i].Paths, path)
						produced = true
						src.Triangles.Touch(ref, e.frame)
					}
				}
			}
			if e.Config.DiffractionEnabled {
				for i, src := range sources {
					if !src.Enabled {
						continue
					}
					if path, ok := e.edgeDiffraction(scene, listener, src, hit.Object, wt, hit.Triangle, seq[:len(seq)-1]); ok {
						outBuffer.Sources[i].Paths = append(outBuffer.Sources[i].Paths, path)
						produced = true
					}
				}
			}

			reflected := dir.Reflect(wt.Plane.Normal)
			origin = wt.Plane.Offset(hit.Point, e.Config.RayEpsilon, sideTowardPoint(wt.Plane, hit.Point.Add(reflected)))
			dir = reflected
		}

		if len(seq) == 0 {
			listener.Directions.RecordMiss(sample.Lon, sample.Lat)
			continue
		}
		if produced {
			listener.Directions.RecordHit(sample.Lon, sample.Lat)
		} else {
			listener.Directions.RecordMiss(sample.Lon, sample.Lat)
		}
		probe := cache.NewProbePath(seq)
		probe.FoundPaths = produced
		listener.Paths.Add(probe, e.frame)
	}
}
