package geom

import "sort"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec3
}

// EmptyAABB returns a degenerate box that Union immediately replaces.
func EmptyAABB() AABB {
	const inf = 1e300
	return AABB{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: Vec3{min(b.Min.X, o.Min.X), min(b.Min.Y, o.Min.Y), min(b.Min.Z, o.Min.Z)},
		Max: Vec3{max(b.Max.X, o.Max.X), max(b.Max.Y, o.Max.Y), max(b.Max.Z, o.Max.Z)},
	}
}

func (b AABB) ExpandPoint(p Vec3) AABB {
	return b.Union(AABB{Min: p, Max: p})
}

func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// IntersectRay performs the standard slab test, returning the entry/exit
// parametric distances along the ray when it overlaps the box within
// [tMin, tMax].
func (b AABB) IntersectRay(origin, invDir Vec3, tMin, tMax float64) (float64, float64, bool) {
	t1 := (b.Min.X - origin.X) * invDir.X
	t2 := (b.Max.X - origin.X) * invDir.X
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	tMin = max(tMin, t1)
	tMax = min(tMax, t2)

	t1 = (b.Min.Y - origin.Y) * invDir.Y
	t2 = (b.Max.Y - origin.Y) * invDir.Y
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	tMin = max(tMin, t1)
	tMax = min(tMax, t2)

	t1 = (b.Min.Z - origin.Z) * invDir.Z
	t2 = (b.Max.Z - origin.Z) * invDir.Z
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	tMin = max(tMin, t1)
	tMax = min(tMax, t2)

	if tMax < tMin {
		return 0, 0, false
	}
	return tMin, tMax, true
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// bvhNode is one node of a median-split bounding volume hierarchy over a
// slice of opaque leaf indices with precomputed bounds. The BVH is built
// once, immutably, at construction time. The implementation is
// intentionally simple (object-median split, no SAH) and exists to give
// Mesh/Scene a working default rather than to be the one true
// acceleration structure; production deployments are free to supply a
// different builder behind the same query surface.
type bvhNode struct {
	Bounds      AABB
	Left, Right *bvhNode
	Leaves      []int // populated only at leaf nodes
}

const bvhLeafSize = 4

// BuildBVH constructs a BVH over n leaves, given each leaf's bounding box.
func BuildBVH(n int, boundsOf func(i int) AABB) *bvhNode {
	if n == 0 {
		return &bvhNode{Bounds: EmptyAABB()}
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return buildRange(idx, boundsOf)
}

func buildRange(idx []int, boundsOf func(i int) AABB) *bvhNode {
	bounds := EmptyAABB()
	for _, i := range idx {
		bounds = bounds.Union(boundsOf(i))
	}
	if len(idx) <= bvhLeafSize {
		leaves := make([]int, len(idx))
		copy(leaves, idx)
		return &bvhNode{Bounds: bounds, Leaves: leaves}
	}

	extent := bounds.Max.Sub(bounds.Min)
	axis := 0
	if extent.Y > extent.X {
		axis = 1
	}
	if axis == 0 && extent.Z > extent.X {
		axis = 2
	}
	if axis == 1 && extent.Z > extent.Y {
		axis = 2
	}

	sort.Slice(idx, func(a, b int) bool {
		ca := boundsOf(idx[a]).Center()
		cb := boundsOf(idx[b]).Center()
		switch axis {
		case 0:
			return ca.X < cb.X
		case 1:
			return ca.Y < cb.Y
		default:
			return ca.Z < cb.Z
		}
	})

	mid := len(idx) / 2
	return &bvhNode{
		Bounds: bounds,
		Left:   buildRange(idx[:mid], boundsOf),
		Right:  buildRange(idx[mid:], boundsOf),
	}
}

// Visit walks every leaf whose bounds the ray (given its inverse direction
// for slab testing) may intersect within [tMin, tMax], invoking visit with
// the leaf index. Traversal order is not guaranteed; visit should itself
// perform the exact primitive test and track the closest hit if needed.
func (n *bvhNode) Visit(origin, invDir Vec3, tMin, tMax float64, visit func(leaf int)) {
	if n == nil {
		return
	}
	if _, _, ok := n.Bounds.IntersectRay(origin, invDir, tMin, tMax); !ok {
		return
	}
	if n.Leaves != nil {
		for _, leaf := range n.Leaves {
			visit(leaf)
		}
		return
	}
	n.Left.Visit(origin, invDir, tMin, tMax, visit)
	n.Right.Visit(origin, invDir, tMin, tMax, visit)
}
