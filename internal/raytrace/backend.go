// Package raytrace implements the RayTracer interface the propagation
// engine uses to query a Scene: closest-hit probes, binary occlusion
// tests, and all-hits transmission rays, each consuming the Scene's and
// Mesh.s precomputed BVHs. The interface is kept opaque to the engine
// so backends can be swapped without touching the propagation pipeline.
package raytrace

import "github.com/san-kum/acoustid/internal/geom"

// Hit is one ray-triangle intersection result, annotated with the owning
// object/triangle indices so callers can resolve materials and cache
// keys.
type Hit struct {
	geom.Hit
	Object   int
	Triangle int
}

// Backend is the RayTracer interface: opaque to the engine, consumed as
// a closest-hit probe, binary occlusion test, and all-hits transmission
// query.
type Backend interface {
	Name() string
	Available() bool

	// ClosestHit returns the nearest intersection of the ray
	// origin+t*dir, t in [tMin, tMax], or ok=false if none.
	ClosestHit(scene *geom.Scene, origin, dir geom.Vec3, tMin, tMax float64) (Hit, bool)

	// Occluded reports whether any geometry blocks the segment
	// origin+t*dir, t in [tMin, tMax] (used for visibility tests; stops
	// at the first hit found, does not need to be the closest).
	Occluded(scene *geom.Scene, origin, dir geom.Vec3, tMin, tMax float64) bool

	// AllHits returns every intersection along the ray within [tMin,
	// tMax], sorted by ascending distance.
	AllHits(scene *geom.Scene, origin, dir geom.Vec3, tMin, tMax float64) []Hit
}

var active Backend

func init() {
	active = AutoSelect()
}

// SetBackend installs b as the active backend.
func SetBackend(b Backend) { active = b }

// GetBackend returns the active backend.
func GetBackend() Backend { return active }

// AutoSelect picks a GPU backend if available, otherwise the CPU
// backend.
func AutoSelect() Backend {
	gpu := NewGPUBackend()
	if gpu.Available() {
		return gpu
	}
	return NewCPUBackend()
}
