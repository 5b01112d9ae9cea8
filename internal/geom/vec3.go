// Package geom provides the 3-D geometric primitives the propagation
// engine operates on: vectors, planes, preprocessed triangles, meshes,
// object instances, and the scene that groups them. Vector arithmetic
// follows a value-type, allocate-a-new-result convention throughout.
package geom

import "math"

// Vec3 is a 3-D point or direction.
type Vec3 struct {
	X, Y, Z float64
}

// Zero is the additive identity.
var Zero = Vec3{}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Neg() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) LengthSq() float64 { return v.Dot(v) }
func (v Vec3) Length() float64   { return math.Sqrt(v.LengthSq()) }

// Normalize returns a unit vector in the direction of v. The zero vector
// normalizes to itself rather than dividing by zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Distance returns the Euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Length() }

// Lerp linearly interpolates between v and o at parameter t.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}

// Reflect reflects v (treated as a direction) about a surface with unit
// normal n.
func (v Vec3) Reflect(n Vec3) Vec3 {
	return v.Sub(n.Scale(2 * v.Dot(n)))
}

// IsValid reports whether all three components are finite.
func (v Vec3) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// Mat3 is a 3x3 orthonormal orientation matrix (rows are the basis
// vectors), used by SoundListener to transform world-space directions
// into listener space.
type Mat3 struct {
	Right, Up, Forward Vec3
}

// Identity returns the standard basis.
func Identity() Mat3 {
	return Mat3{
		Right:   Vec3{1, 0, 0},
		Up:      Vec3{0, 1, 0},
		Forward: Vec3{0, 0, 1},
	}
}

// WorldToLocal projects a world-space direction into this orientation's
// local coordinate frame.
func (m Mat3) WorldToLocal(v Vec3) Vec3 {
	return Vec3{
		X: v.Dot(m.Right),
		Y: v.Dot(m.Up),
		Z: v.Dot(m.Forward),
	}
}

// LocalToWorld is the inverse of WorldToLocal for an orthonormal basis.
func (m Mat3) LocalToWorld(v Vec3) Vec3 {
	return m.Right.Scale(v.X).Add(m.Up.Scale(v.Y)).Add(m.Forward.Scale(v.Z))
}

// Transform is a rigid (translation + rotation) transform applied to an
// Object between frames. Non-uniform scale and shear are not supported.
type Transform struct {
	Position    Vec3
	Orientation Mat3
}

// IdentityTransform places an object at the origin with no rotation.
func IdentityTransform() Transform {
	return Transform{Orientation: Identity()}
}

// PointToWorld maps an object-space point into world space.
func (t Transform) PointToWorld(p Vec3) Vec3 {
	return t.Position.Add(t.Orientation.LocalToWorld(p))
}

// PointToObject maps a world-space point into object space.
func (t Transform) PointToObject(p Vec3) Vec3 {
	return t.Orientation.WorldToLocal(p.Sub(t.Position))
}

// DirectionToWorld maps an object-space direction into world space
// (translation does not apply to directions).
func (t Transform) DirectionToWorld(d Vec3) Vec3 {
	return t.Orientation.LocalToWorld(d)
}
