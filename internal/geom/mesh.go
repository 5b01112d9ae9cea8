package geom

import (
	"fmt"

	"github.com/san-kum/acoustid/internal/acoustic"
)

// BoundingSphere is a coarse bound used for fast mesh-level culling.
type BoundingSphere struct {
	Center Vec3
	Radius float64
}

// Mesh owns its vertex array, preprocessed triangle array, material array,
// bounding sphere, and a BVH over its triangles. A Mesh is immutable once
// built by NewMesh; multiple Objects may reference the same Mesh.
type Mesh struct {
	Vertices  []Vec3
	Triangles []Triangle
	Materials []acoustic.Material
	Bounds    BoundingSphere

	bvh *bvhNode
}

// NewMesh preprocesses raw vertex/triangle/material data into an
// immutable Mesh: it computes each triangle's plane, links neighbor
// triangles across shared edges, classifies each edge as diffracting or
// not from the dihedral angle between coplanar-facing triangles, computes
// the bounding sphere, and builds the triangle BVH.
//
// rawTriangles gives, per triangle, its three vertex indices and material
// index; neighbor links and edge classification are derived here rather
// than trusted from the caller, so NewMesh is the single place that
// establishes the symmetric-neighbor invariant.
func NewMesh(vertices []Vec3, rawTriangles [][4]int, materials []acoustic.Material) (*Mesh, error) {
	tris := make([]Triangle, len(rawTriangles))
	for i, rt := range rawTriangles {
		v0, v1, v2, mat := rt[0], rt[1], rt[2], rt[3]
		if v0 < 0 || v0 >= len(vertices) || v1 < 0 || v1 >= len(vertices) || v2 < 0 || v2 >= len(vertices) {
			return nil, fmt.Errorf("geom: triangle %d references out-of-range vertex", i)
		}
		if mat < 0 || mat >= len(materials) {
			return nil, fmt.Errorf("geom: triangle %d references out-of-range material", i)
		}
		tris[i] = Triangle{
			V:        [3]int{v0, v1, v2},
			Material: mat,
			Plane:    PlaneFromTriangle(vertices[v0], vertices[v1], vertices[v2]),
			Neighbor: [3]int{NoNeighbor, NoNeighbor, NoNeighbor},
		}
	}

	linkNeighbors(tris)
	classifyEdges(tris)

	m := &Mesh{
		Vertices:  vertices,
		Triangles: tris,
		Materials: materials,
		Bounds:    computeBoundingSphere(vertices),
	}
	m.bvh = BuildBVH(len(tris), func(i int) AABB { return m.triangleBounds(i) })
	return m, nil
}

func (m *Mesh) triangleBounds(i int) AABB {
	tri := m.Triangles[i]
	b := EmptyAABB()
	b = b.ExpandPoint(m.Vertices[tri.V[0]])
	b = b.ExpandPoint(m.Vertices[tri.V[1]])
	b = b.ExpandPoint(m.Vertices[tri.V[2]])
	return b
}

// edgeKey canonically identifies an undirected edge by its sorted vertex
// index pair.
type edgeKey struct{ a, b int }

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

func linkNeighbors(tris []Triangle) {
	type owner struct {
		tri, edge int
	}
	edges := make(map[edgeKey]owner, len(tris)*3)

	for ti := range tris {
		for e := 0; e < 3; e++ {
			a, b := tris[ti].V[e], tris[ti].V[(e+1)%3]
			key := newEdgeKey(a, b)
			if other, ok := edges[key]; ok {
				tris[ti].Neighbor[e] = other.tri
				tris[other.tri].Neighbor[other.edge] = ti
			} else {
				edges[key] = owner{ti, e}
			}
		}
	}
}

func classifyEdges(tris []Triangle) {
	for ti := range tris {
		for e := 0; e < 3; e++ {
			nb := tris[ti].Neighbor[e]
			if nb == NoNeighbor {
				tris[ti].EdgeFlag[e] = Diffracting
				continue
			}
			if DihedralDiffracts(tris[ti].Plane.Normal, tris[nb].Plane.Normal) {
				tris[ti].EdgeFlag[e] = Diffracting
			} else {
				tris[ti].EdgeFlag[e] = NonDiffracting
			}
		}
	}
}

func computeBoundingSphere(vertices []Vec3) BoundingSphere {
	if len(vertices) == 0 {
		return BoundingSphere{}
	}
	center := Zero
	for _, v := range vertices {
		center = center.Add(v)
	}
	center = center.Scale(1 / float64(len(vertices)))

	radius := 0.0
	for _, v := range vertices {
		if d := center.Distance(v); d > radius {
			radius = d
		}
	}
	return BoundingSphere{Center: center, Radius: radius}
}

// VisitTriangles walks every triangle whose bounds the ray may intersect
// within [tMin, tMax] in mesh-local space.
func (m *Mesh) VisitTriangles(origin, dir Vec3, tMin, tMax float64, visit func(triIndex int)) {
	invDir := Vec3{safeInv(dir.X), safeInv(dir.Y), safeInv(dir.Z)}
	m.bvh.Visit(origin, invDir, tMin, tMax, visit)
}

func safeInv(x float64) float64 {
	if x == 0 {
		return 1e300
	}
	return 1 / x
}
