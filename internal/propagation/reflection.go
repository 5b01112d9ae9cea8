package propagation

import (
	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/cache"
	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/world"
)

// validateReflection implements the image-source method:
// given a listener-side probe.s ordered triangle sequence,
// compute successive listener images and walk backward from the deepest
// reflection toward the listener, validating each bounce in turn.
// Returns a finished world.Path on success.
func (e *Engine) validateReflection(scene *geom.Scene, listener *world.Listener, src *world.Source, seq []cache.TriangleRef) (world.Path, bool) {
	if len(seq) == 0 {
		return world.Path{}, false
	}

	wts := make([]geom.WorldTriangle, len(seq))
	for i, ref := range seq {
		obj := findObject(scene, ref.Object)
		if obj == nil {
			return world.Path{}, false
		}
		wts[i] = obj.WorldTriangle(ref.Triangle)
	}

	lp := listener.Position()
	images := make([]geom.Vec3, len(seq)+1)
	images[0] = lp
	for i, wt := range wts {
		images[i+1] = wt.Plane.ReflectPoint(images[i])
	}

	virtual := src.Position()
	radius := src.Radius
	attenuation := acoustic.Unity()
	points := make([]geom.Vec3, len(seq))

	for i := len(seq) - 1; i >= 0; i-- {
		// Walk from the listener image reflected through t_1..t_i; the
		// segment image->virtual crosses t_i at the reflection point.
		lImage := images[i+1]
		wt := wts[i]
		dirToVirtual := virtual.Sub(lImage)
		dist := dirToVirtual.Length()
		if dist <= 1e-9 {
			return world.Path{}, false
		}
		dir := dirToVirtual.Scale(1 / dist)

		hit, ok := geom.IntersectMollerTrumbore(lImage, dir, wt.A, wt.B, wt.C, 0, dist)
		if !ok {
			return world.Path{}, false
		}

		p := hit.Point
		offsetSide := sideTowardPoint(wt.Plane, virtual)
		pOffset := wt.Plane.Offset(p, e.Config.RayEpsilon, offsetSide)

		remaining := virtual.Distance(pOffset) - radius
		if remaining < 0 {
			remaining = 0
		}
		toVirtualDir := virtual.Sub(pOffset)
		toVirtualDist := toVirtualDir.Length()
		if toVirtualDist > 1e-9 {
			toVirtualDir = toVirtualDir.Scale(1 / toVirtualDist)
			if e.Backend.Occluded(scene, pOffset, toVirtualDir, e.Config.RayEpsilon, remaining) {
				return world.Path{}, false
			}
		}

		mat := wt.Tri.Material
		obj := findObject(scene, seq[i].Object)
		attenuation = attenuation.Mul(obj.Mesh.Materials[mat].Reflection)

		points[i] = p
		virtual = p
		radius = 0
	}

	finalDir := virtual.Sub(lp)
	finalDist := finalDir.Length()
	if finalDist <= 1e-9 {
		return world.Path{}, false
	}
	finalDir = finalDir.Scale(1 / finalDist)
	if e.Backend.Occluded(scene, lp, finalDir, e.Config.RayEpsilon, finalDist-e.Config.RayEpsilon) {
		return world.Path{}, false
	}

	total := lp.Distance(points[0])
	for i := 1; i < len(points); i++ {
		total += points[i-1].Distance(points[i])
	}
	total += points[len(points)-1].Distance(src.Position())

	dirAtSource := src.Position().Sub(points[len(points)-1])
	if dirAtSource.Length() <= 1e-9 {
		return world.Path{}, false
	}
	dirAtSource = dirAtSource.Normalize()

	desc := reflectionDescription(seq, src.ID)
	return e.finalizePath(scene, listener, src, finalDir, dirAtSource, total, desc, attenuation), true
}

// sideTowardPoint reports which side of plane p lies on, used to offset
// a reflection hit point toward the continuing ray.
func sideTowardPoint(plane geom.Plane, p geom.Vec3) int {
	d := plane.SignedDistance(p)
	if d >= 0 {
		return 1
	}
	return -1
}

func findObject(scene *geom.Scene, id int) *geom.Object {
	for _, o := range scene.Objects {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func reflectionDescription(seq []cache.TriangleRef, sourceID int) world.Description {
	points := make([]world.PathPoint, 0, len(seq)+2)
	points = append(points, world.PathPoint{Tag: world.TagListener})
	for _, ref := range seq {
		points = append(points, world.PathPoint{Tag: world.TagTriangleReflection, Triangle: ref})
	}
	points = append(points, world.PathPoint{Tag: world.TagSource, SourceID: sourceID})
	return world.NewDescription(points)
}
