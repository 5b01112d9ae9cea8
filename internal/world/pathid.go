// Package world holds the domain entities the propagation engine
// simulates over: scenes of objects, sound sources and a listener, and
// the path description/identity types that tie a rendered audio path
// back to the sequence of scene interactions that produced it.
package world

import "github.com/san-kum/acoustid/internal/cache"

// PointTag classifies one point of a path description. Points carry
// stable opaque IDs (source index, triangle reference) rather than raw
// pointers, so hashes survive across frames and snapshots.
type PointTag uint8

const (
	TagSource PointTag = iota
	TagListener
	TagTriangleReflection
	TagDiffuseReflection
	TagEdgeDiffraction
)

// PathPoint is one point of a path description: a tag plus the opaque
// identifier relevant to that tag (a source index, nothing for the
// listener, or a triangle reference for reflection/diffraction points).
type PathPoint struct {
	Tag      PointTag
	SourceID int              // valid when Tag == TagSource
	Triangle cache.TriangleRef // valid when Tag is a reflection/diffraction kind
}

// Description is the ordered sequence of interaction points describing a
// PropagationPath end to end: always starts with a Listener point and
// ends with a Source point, with zero or more interior points between.
// Depth is the number of interior (non-Source, non-Listener) points.
type Description struct {
	Points []PathPoint
	hash   uint64
}

// NewDescription builds a Description and precomputes its hash. Two
// Descriptions are equal iff their Points are pointwise equal; equal
// Descriptions always hash equal.
func NewDescription(points []PathPoint) Description {
	pts := make([]PathPoint, len(points))
	copy(pts, points)
	return Description{Points: pts, hash: hashPoints(pts)}
}

func hashPoints(points []PathPoint) uint64 {
	h := uint64(14695981039346656037)
	for _, p := range points {
		h ^= uint64(p.Tag)
		h *= 1099511628211
		h ^= uint64(uint32(p.SourceID))
		h *= 1099511628211
		h ^= p.Triangle.Hash()
		h *= 1099511628211
	}
	return h
}

// Depth returns the number of interior points (excludes the endpoint
// Source/Listener points).
func (d Description) Depth() int {
	depth := 0
	for _, p := range d.Points {
		if p.Tag != TagSource && p.Tag != TagListener {
			depth++
		}
	}
	return depth
}

// Equal reports whether two descriptions are pointwise equal.
func (d Description) Equal(o Description) bool {
	if d.hash != o.hash || len(d.Points) != len(o.Points) {
		return false
	}
	for i := range d.Points {
		if d.Points[i] != o.Points[i] {
			return false
		}
	}
	return true
}

// ID is a PropagationPathID: a description plus its cached hash,
// satisfying the invariant that equal IDs always hash equal.
type ID struct {
	Description Description
}

// NewID wraps a description as a path identity.
func NewID(d Description) ID { return ID{Description: d} }

// Hash returns the description's precomputed hash.
func (id ID) Hash() uint64 { return id.Description.hash }

// Equal reports whether two path IDs describe the same interaction
// sequence.
func (id ID) Equal(o ID) bool { return id.Description.Equal(o.Description) }
