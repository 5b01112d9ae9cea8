package raytrace

import (
	"runtime"
	"sort"
	"sync"

	"github.com/san-kum/acoustid/internal/geom"
)

// CPUBackend traces rays against a Scene's top-level BVH and each
// object's mesh BVH. Every query traces one ray; AllHits fans its object
// traversal out over a worker pool (chunked ranges, local accumulators
// merged after a WaitGroup) when the scene has 16 or more objects.
type CPUBackend struct {
	workers int
}

// NewCPUBackend returns a backend sized to the host's CPU count.
func NewCPUBackend() *CPUBackend {
	return &CPUBackend{workers: runtime.NumCPU()}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }

// objectHit intersects a single ray against one object's mesh, in the
// object's local space, returning the closest hit if any.
func objectHit(obj *geom.Object, origin, dir geom.Vec3, tMin, tMax float64) (Hit, bool) {
	localOrigin := obj.Transform.PointToObject(origin)
	localDir := obj.Transform.Orientation.WorldToLocal(dir)

	best := Hit{}
	found := false
	obj.Mesh.VisitTriangles(localOrigin, localDir, tMin, tMax, func(triIdx int) {
		wt := obj.WorldTriangle(triIdx)
		h, ok := geom.IntersectMollerTrumbore(origin, dir, wt.A, wt.B, wt.C, tMin, tMax)
		if !ok {
			return
		}
		if !found || h.Distance < best.Distance {
			best = Hit{Hit: h, Object: obj.ID, Triangle: triIdx}
			found = true
		}
	})
	return best, found
}

// objectAllHits intersects a ray against one object's mesh, appending
// every hit found (unsorted; caller is responsible for any ordering).
func objectAllHits(obj *geom.Object, origin, dir geom.Vec3, tMin, tMax float64, out *[]Hit) {
	localOrigin := obj.Transform.PointToObject(origin)
	localDir := obj.Transform.Orientation.WorldToLocal(dir)

	obj.Mesh.VisitTriangles(localOrigin, localDir, tMin, tMax, func(triIdx int) {
		wt := obj.WorldTriangle(triIdx)
		h, ok := geom.IntersectMollerTrumbore(origin, dir, wt.A, wt.B, wt.C, tMin, tMax)
		if !ok {
			return
		}
		*out = append(*out, Hit{Hit: h, Object: obj.ID, Triangle: triIdx})
	})
}

// ClosestHit implements Backend.
func (c *CPUBackend) ClosestHit(scene *geom.Scene, origin, dir geom.Vec3, tMin, tMax float64) (Hit, bool) {
	best := Hit{}
	found := false
	scene.VisitObjects(origin, dir, tMin, tMax, func(obj *geom.Object) {
		h, ok := objectHit(obj, origin, dir, tMin, tMax)
		if !ok {
			return
		}
		if !found || h.Distance < best.Distance {
			best = h
			found = true
		}
	})
	return best, found
}

// Occluded implements Backend. It visits objects in BVH order and
// returns as soon as any hit is found; it does not need the closest.
func (c *CPUBackend) Occluded(scene *geom.Scene, origin, dir geom.Vec3, tMin, tMax float64) bool {
	occluded := false
	scene.VisitObjects(origin, dir, tMin, tMax, func(obj *geom.Object) {
		if occluded {
			return
		}
		if _, ok := objectHit(obj, origin, dir, tMin, tMax); ok {
			occluded = true
		}
	})
	return occluded
}

// AllHits implements Backend. Object traversal is parallelized across
// workers when the scene has enough objects to be worth the fan-out;
// the per-worker partial hit lists are merged and sorted by ascending
// parametric distance.
func (c *CPUBackend) AllHits(scene *geom.Scene, origin, dir geom.Vec3, tMin, tMax float64) []Hit {
	objs := scene.Objects
	if len(objs) < 16 || c.workers < 2 {
		var hits []Hit
		for _, obj := range objs {
			objectAllHits(obj, origin, dir, tMin, tMax, &hits)
		}
		sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
		return hits
	}

	partials := make([][]Hit, c.workers)
	var wg sync.WaitGroup
	chunkSize := (len(objs) + c.workers - 1) / c.workers
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			start := worker * chunkSize
			end := start + chunkSize
			if end > len(objs) {
				end = len(objs)
			}
			var local []Hit
			for _, obj := range objs[start:end] {
				objectAllHits(obj, origin, dir, tMin, tMax, &local)
			}
			partials[worker] = local
		}(w)
	}
	wg.Wait()

	var hits []Hit
	for _, p := range partials {
		hits = append(hits, p...)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}
