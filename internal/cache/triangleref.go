package cache

// TriangleRef is an object-space reference to one triangle: the owning
// object's index and the triangle's index within that object's mesh. It
// is the stable, hashable identifier used throughout the probe caches and
// (via PropagationPathPoint) the propagation path description.
type TriangleRef struct {
	Object   int
	Triangle int
}

// hashCombine mixes a running hash with a new 64-bit value (FNV-1a style).
func hashCombine(h uint64, v uint64) uint64 {
	h ^= v
	h *= 1099511628211
	return h
}

const fnvOffset = 14695981039346656037

func (t TriangleRef) hash() uint64 {
	h := uint64(fnvOffset)
	h = hashCombine(h, uint64(uint32(t.Object)))
	h = hashCombine(h, uint64(uint32(t.Triangle)))
	return h
}

// Hash exposes the triangle reference's hash to callers outside the
// package (e.g. world.Description, which folds triangle references into
// a path-level hash).
func (t TriangleRef) Hash() uint64 { return t.hash() }

// PathHash computes the order-sensitive hash of a triangle sequence, the
// key used by ProbePathCache. Two sequences with the same triangles in
// different orders hash differently, matching PropagationPathDescription
// equality semantics.
func PathHash(seq []TriangleRef) uint64 {
	h := uint64(fnvOffset)
	for _, t := range seq {
		h = hashCombine(h, t.hash())
	}
	return h
}
