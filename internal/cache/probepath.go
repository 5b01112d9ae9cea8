package cache

// ProbePath is a cache key: the ordered sequence of (object,triangle)
// references a single probe ray struck, plus a flag recording whether
// that sequence produced any valid propagation path the last time it was
// validated.
type ProbePath struct {
	Sequence   []TriangleRef
	FoundPaths bool

	hash uint64
}

// NewProbePath builds a ProbePath from a triangle sequence, precomputing
// its hash.
func NewProbePath(seq []TriangleRef) ProbePath {
	s := make([]TriangleRef, len(seq))
	copy(s, seq)
	return ProbePath{Sequence: s, hash: PathHash(s)}
}

// Hash returns the precomputed hash. Equal ProbePaths (same sequence) are
// guaranteed to hash equal.
func (p ProbePath) Hash() uint64 { return p.hash }

// Equal reports whether two ProbePaths describe the same ordered sequence.
func (p ProbePath) Equal(o ProbePath) bool {
	if len(p.Sequence) != len(o.Sequence) {
		return false
	}
	for i := range p.Sequence {
		if p.Sequence[i] != o.Sequence[i] {
			return false
		}
	}
	return true
}

type probePathEntry struct {
	path ProbePath
	age  uint32
	next *probePathEntry
}

// ProbePathCache is the listener's cache of previously-discovered probe
// paths, letting the engine re-validate known-good triangle sequences
// instead of re-shooting every ray every frame.
type ProbePathCache struct {
	buckets []*probePathEntry
	count   int
}

// NewProbePathCache creates an empty cache sized for an expected
// population.
func NewProbePathCache(expected int) *ProbePathCache {
	return &ProbePathCache{buckets: make([]*probePathEntry, nextPrime(expected))}
}

func (c *ProbePathCache) bucketIndex(h uint64) int {
	return int(h % uint64(len(c.buckets)))
}

// Add inserts p (or, if an equal path is already present, updates its
// FoundPaths flag and age in place). Add is idempotent: adding an equal
// path twice leaves Count() unchanged.
func (c *ProbePathCache) Add(p ProbePath, frame uint32) {
	idx := c.bucketIndex(p.hash)
	for e := c.buckets[idx]; e != nil; e = e.next {
		if e.path.Equal(p) {
			e.path.FoundPaths = p.FoundPaths
			e.age = frame
			return
		}
	}
	c.buckets[idx] = &probePathEntry{path: p, age: frame, next: c.buckets[idx]}
	c.count++
	c.maybeResize()
}

// Contains reports whether an equal path is already tracked.
func (c *ProbePathCache) Contains(p ProbePath) bool {
	idx := c.bucketIndex(p.hash)
	for e := c.buckets[idx]; e != nil; e = e.next {
		if e.path.Equal(p) {
			return true
		}
	}
	return false
}

// Count returns the number of distinct probe paths tracked.
func (c *ProbePathCache) Count() int { return c.count }

// Each visits every tracked path; order is unspecified.
func (c *ProbePathCache) Each(fn func(path ProbePath, age uint32)) {
	for _, head := range c.buckets {
		for e := head; e != nil; e = e.next {
			fn(e.path, e.age)
		}
	}
}

// AgeOut removes paths whose age is more than maxAge frames behind
// currentFrame.
func (c *ProbePathCache) AgeOut(currentFrame uint32, maxAge uint32) {
	for i, head := range c.buckets {
		var kept *probePathEntry
		for e := head; e != nil; {
			next := e.next
			if currentFrame-e.age <= maxAge {
				e.next = kept
				kept = e
			} else {
				c.count--
			}
			e = next
		}
		c.buckets[i] = kept
	}
}

func (c *ProbePathCache) maybeResize() {
	if float64(c.count) <= defaultLoadFactor*float64(len(c.buckets)) {
		return
	}
	old := c.buckets
	c.buckets = make([]*probePathEntry, nextPrime(len(old)*2))
	for _, head := range old {
		for e := head; e != nil; {
			next := e.next
			idx := c.bucketIndex(e.path.hash)
			e.next = c.buckets[idx]
			c.buckets[idx] = e
			e = next
		}
	}
}
