package cache_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/acoustid/internal/cache"
)

func TestCacheSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "cache suite")
}

var _ = Describe("ProbePathCache", func() {
	var c *cache.ProbePathCache

	BeforeEach(func() {
		c = cache.NewProbePathCache(4)
	})

	It("contains a path immediately after Add", func() {
		p := cache.NewProbePath([]cache.TriangleRef{{Object: 0, Triangle: 1}, {Object: 0, Triangle: 2}})
		c.Add(p, 1)
		Expect(c.Contains(p)).To(BeTrue())
	})

	It("is idempotent when adding an equal path twice", func() {
		p := cache.NewProbePath([]cache.TriangleRef{{Object: 0, Triangle: 1}})
		c.Add(p, 1)
		c.Add(p, 2)
		Expect(c.Count()).To(Equal(1))
	})

	It("treats reordered sequences as distinct", func() {
		p1 := cache.NewProbePath([]cache.TriangleRef{{Object: 0, Triangle: 1}, {Object: 0, Triangle: 2}})
		p2 := cache.NewProbePath([]cache.TriangleRef{{Object: 0, Triangle: 2}, {Object: 0, Triangle: 1}})
		c.Add(p1, 1)
		Expect(c.Contains(p2)).To(BeFalse())
	})

	It("preserves count and containment across many inserts that force a resize", func() {
		seen := make([]cache.ProbePath, 0, 64)
		for i := 0; i < 64; i++ {
			p := cache.NewProbePath([]cache.TriangleRef{{Object: i, Triangle: i + 1}})
			c.Add(p, uint32(i))
			seen = append(seen, p)
		}
		Expect(c.Count()).To(Equal(64))
		for _, p := range seen {
			Expect(c.Contains(p)).To(BeTrue())
		}
	})

	It("ages out entries past maxAge", func() {
		p := cache.NewProbePath([]cache.TriangleRef{{Object: 0, Triangle: 1}})
		c.Add(p, 0)
		c.AgeOut(20, 10)
		Expect(c.Contains(p)).To(BeFalse())
	})
})

var _ = Describe("ProbedTriangleCache", func() {
	It("tracks hit counts and ages per triangle", func() {
		c := cache.NewProbedTriangleCache(4)
		key := cache.TriangleRef{Object: 2, Triangle: 5}

		c.Touch(key, 1)
		c.Touch(key, 2)

		age, hits, ok := c.Get(key)
		Expect(ok).To(BeTrue())
		Expect(age).To(Equal(uint32(2)))
		Expect(hits).To(Equal(2))
	})

	It("ages out stale triangles", func() {
		c := cache.NewProbedTriangleCache(4)
		key := cache.TriangleRef{Object: 0, Triangle: 0}
		c.Touch(key, 0)
		c.AgeOut(100, 10)
		_, _, ok := c.Get(key)
		Expect(ok).To(BeFalse())
	})
})
