//go:build !acoustid_gpu

package raytrace

import "github.com/san-kum/acoustid/internal/geom"

// GPUBackend is a build-tag-gated stub: with the acoustid_gpu build tag
// absent, it reports
// unavailable and every query falls back to a fresh CPUBackend.
type GPUBackend struct{}

// NewGPUBackend returns the disabled GPU backend.
func NewGPUBackend() *GPUBackend { return &GPUBackend{} }

func (g *GPUBackend) Name() string    { return "gpu (not available)" }
func (g *GPUBackend) Available() bool { return false }

func (g *GPUBackend) ClosestHit(scene *geom.Scene, origin, dir geom.Vec3, tMin, tMax float64) (Hit, bool) {
	return NewCPUBackend().ClosestHit(scene, origin, dir, tMin, tMax)
}

func (g *GPUBackend) Occluded(scene *geom.Scene, origin, dir geom.Vec3, tMin, tMax float64) bool {
	return NewCPUBackend().Occluded(scene, origin, dir, tMin, tMax)
}

func (g *GPUBackend) AllHits(scene *geom.Scene, origin, dir geom.Vec3, tMin, tMax float64) []Hit {
	return NewCPUBackend().AllHits(scene, origin, dir, tMin, tMax)
}
