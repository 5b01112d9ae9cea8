package geom

// Object is a mesh reference plus a rigid transform. Position/orientation
// are mutable between frames; the mesh itself never changes.
// Multiple objects may share a Mesh.
type Object struct {
	ID        int
	Mesh      *Mesh
	Transform Transform
}

// NewObject places mesh at the identity transform.
func NewObject(id int, mesh *Mesh) *Object {
	return &Object{ID: id, Mesh: mesh, Transform: IdentityTransform()}
}

// WorldTriangle returns the world-space view of triangle index i.
func (o *Object) WorldTriangle(i int) WorldTriangle {
	tri := &o.Mesh.Triangles[i]
	a := o.Transform.PointToWorld(o.Mesh.Vertices[tri.V[0]])
	b := o.Transform.PointToWorld(o.Mesh.Vertices[tri.V[1]])
	c := o.Transform.PointToWorld(o.Mesh.Vertices[tri.V[2]])
	n := o.Transform.DirectionToWorld(tri.Plane.Normal).Normalize()
	return WorldTriangle{
		Tri:      tri,
		TriIndex: i,
		ObjIndex: o.ID,
		A:        a,
		B:        b,
		C:        c,
		Plane:    Plane{Normal: n, D: -n.Dot(a)},
	}
}

// WorldBounds returns the object's bounding sphere transformed to world
// space (rigid transforms preserve radius).
func (o *Object) WorldBounds() BoundingSphere {
	return BoundingSphere{
		Center: o.Transform.PointToWorld(o.Mesh.Bounds.Center),
		Radius: o.Mesh.Bounds.Radius,
	}
}

// WorldAABB computes an axis-aligned box enclosing the object's world-space
// vertices, used by the scene's top-level BVH.
func (o *Object) WorldAABB() AABB {
	b := EmptyAABB()
	for _, v := range o.Mesh.Vertices {
		b = b.ExpandPoint(o.Transform.PointToWorld(v))
	}
	return b
}
