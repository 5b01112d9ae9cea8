package cache

// triangleEntry is one bucket-chain node in a ProbedTriangleCache.
type triangleEntry struct {
	key   TriangleRef
	age   uint32 // frame timestamp this triangle was last probed
	hits  int    // number of probe rays that struck this triangle this age-window
	next  *triangleEntry
}

// ProbedTriangleCache is a per-listener or per-source hash table recording
// which (object,triangle) pairs have recently been struck by a probe ray,
// with an age stamp used for both eviction and the
// reverb overlap-weighting computation.
type ProbedTriangleCache struct {
	buckets    []*triangleEntry
	count      int
	loadFactor float64
}

// NewProbedTriangleCache creates an empty cache sized for an expected
// initial population.
func NewProbedTriangleCache(expected int) *ProbedTriangleCache {
	return &ProbedTriangleCache{
		buckets:    make([]*triangleEntry, nextPrime(expected)),
		loadFactor: defaultLoadFactor,
	}
}

func (c *ProbedTriangleCache) bucketIndex(key TriangleRef) int {
	return int(key.hash() % uint64(len(c.buckets)))
}

// Touch records that key was struck at the given frame, incrementing its
// hit count if already present or inserting a fresh entry otherwise.
func (c *ProbedTriangleCache) Touch(key TriangleRef, frame uint32) {
	idx := c.bucketIndex(key)
	for e := c.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			e.age = frame
			e.hits++
			return
		}
	}
	c.buckets[idx] = &triangleEntry{key: key, age: frame, hits: 1, next: c.buckets[idx]}
	c.count++
	c.maybeResize()
}

// Get returns the entry for key, if present, and whether it was found.
func (c *ProbedTriangleCache) Get(key TriangleRef) (age uint32, hits int, ok bool) {
	idx := c.bucketIndex(key)
	for e := c.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			return e.age, e.hits, true
		}
	}
	return 0, 0, false
}

// Count returns the number of distinct triangles currently tracked.
func (c *ProbedTriangleCache) Count() int { return c.count }

// AgeOut removes every entry whose age is more than maxAge frames behind
// currentFrame.
func (c *ProbedTriangleCache) AgeOut(currentFrame uint32, maxAge uint32) {
	for i, head := range c.buckets {
		var kept *triangleEntry
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

// Each visits every tracked entry; order is unspecified.
func (c *ProbedTriangleCache) Each(fn func(key TriangleRef, age uint32, hits int)) {
	for _, head := range c.buckets {
		for e := head; e != nil; e = e.next {
			fn(e.key, e.age, e.hits)
		}
	}
}

func (c *ProbedTriangleCache) maybeResize() {
	if float64(c.count) <= c.loadFactor*float64(len(c.buckets)) {
		return
	}
	old := c.buckets
	c.buckets = make([]*triangleEntry, nextPrime(len(old)*2))
	for _, head := range old {
		for e := head; e != nil; {
			next := e.next
			idx := c.bucketIndex(e.key)
			e.next = c.buckets[idx]
			c.buckets[idx] = e
			e = next
		}
	}
}
