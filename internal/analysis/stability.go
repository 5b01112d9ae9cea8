package analysis

import (
	"math"

	"github.com/san-kum/acoustid/internal/acoustic"
)

// PathCountStability measures how steady the engine's per-frame path
// count is: 1 means every observed frame matched the running mean, 0
// means wild jitter. Computed as 1 - (mean absolute deviation / mean).
type PathCountStability struct {
	counts []int
}

// NewPathCountStability returns an empty metric.
func NewPathCountStability() *PathCountStability {
	return &PathCountStability{}
}

// Observe records one frame's total path count.
func (s *PathCountStability) Observe(count int) {
	s.counts = append(s.counts, count)
}

// Samples returns the number of observed frames.
func (s *PathCountStability) Samples() int { return len(s.counts) }

// Value returns the stability score in [0, 1].
func (s *PathCountStability) Value() float64 {
	if len(s.counts) == 0 {
		return 1
	}
	mean := 0.0
	for _, c := range s.counts {
		mean += float64(c)
	}
	mean /= float64(len(s.counts))
	if mean == 0 {
		return 1
	}
	dev := 0.0
	for _, c := range s.counts {
		dev += math.Abs(float64(c) - mean)
	}
	dev /= float64(len(s.counts))
	v := 1 - dev/mean
	if v < 0 {
		v = 0
	}
	return v
}

// Reset clears all observations.
func (s *PathCountStability) Reset() { s.counts = s.counts[:0] }

// ReverbDrift tracks the maximum relative drift of a per-band T60
// estimate from its first observed value, the reverb analogue of an
// energy-drift check: a well-behaved closed scene should hold its decay
// times steady frame to frame.
type ReverbDrift struct {
	initial  acoustic.Response
	maxDrift float64
	samples  int
}

// NewReverbDrift returns an empty metric.
func NewReverbDrift() *ReverbDrift {
	return &ReverbDrift{}
}

// Observe records one frame's per-band decay times.
func (r *ReverbDrift) Observe(decay acoustic.Response) {
	if r.samples == 0 {
		r.initial = decay
	}
	r.samples++
	for b := 0; b < acoustic.NumBands; b++ {
		base := r.initial[b]
		if base == 0 {
			continue
		}
		drift := math.Abs(decay[b]-base) / math.Abs(base)
		if drift > r.maxDrift {
			r.maxDrift = drift
		}
	}
}

// Value returns the worst relative drift seen so far.
func (r *ReverbDrift) Value() float64 { return r.maxDrift }

// Reset clears all observations.
func (r *ReverbDrift) Reset() {
	r.initial = acoustic.Response{}
	r.maxDrift = 0
	r.samples = 0
}
