package geom

// Plane is a half-space boundary in Hessian normal form: a point p lies on
// the plane when Normal.Dot(p) + D == 0, and on the Normal side when the
// expression is positive.
type Plane struct {
	Normal Vec3
	D      float64
}

// PlaneFromTriangle builds the plane containing the triangle a,b,c with a
// normal given by the right-hand rule over (b-a) x (c-a).
func PlaneFromTriangle(a, b, c Vec3) Plane {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return Plane{Normal: n, D: -n.Dot(a)}
}

// SignedDistance returns the signed distance from p to the plane, positive
// on the normal side.
func (p Plane) SignedDistance(point Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Side reports which side of the plane point lies on: +1, -1, or 0 for
// points within eps of the plane.
func (p Plane) Side(point Vec3, eps float64) int {
	d := p.SignedDistance(point)
	switch {
	case d > eps:
		return 1
	case d < -eps:
		return -1
	default:
		return 0
	}
}

// ReflectPoint mirrors point across the plane. Used by the image-source
// method to compute successive listener images.
func (p Plane) ReflectPoint(point Vec3) Vec3 {
	d := p.SignedDistance(point)
	return point.Sub(p.Normal.Scale(2 * d))
}

// Offset returns a copy of point moved by eps along the plane's normal,
// toward the given side (+1 or -1). Used to bias intersection origins off
// a surface to avoid immediate self-intersection.
func (p Plane) Offset(point Vec3, eps float64, towardSide int) Vec3 {
	if towardSide < 0 {
		return point.Sub(p.Normal.Scale(eps))
	}
	return point.Add(p.Normal.Scale(eps))
}
