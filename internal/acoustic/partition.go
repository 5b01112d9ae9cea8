package acoustic

import (
	"fmt"
	"math"
)

// Partition holds the ordered split frequencies defining NumBands rendering
// bands: band i covers (splits[i-1], splits[i]], with band 0 starting at 0
// Hz and the last band extending to infinity. Split frequencies are always
// sorted ascending, strictly positive, and finite; invalid values (from a
// malformed mesh file or hand-authored config) are filtered at construction
// rather than surfaced as an error, matching the engine's silent-reject
// failure model.
type Partition struct {
	splits []float64
}

// DefaultSplits are a reasonable default octave-ish split for NumBands=8,
// covering roughly 125 Hz .. 8 kHz.
var DefaultSplits = []float64{125, 250, 500, 1000, 2000, 4000, 8000}

// NewPartition builds a Partition from candidate split frequencies. NaN,
// infinite, and non-positive values are dropped; the remainder is sorted
// and de-duplicated. If fewer than NumBands-1 splits survive, the
// remaining slots are filled by doubling the last valid split.
func NewPartition(splits []float64) *Partition {
	clean := make([]float64, 0, len(splits))
	for _, f := range splits {
		if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
			continue
		}
		clean = append(clean, f)
	}
	insertionSort(clean)
	clean = dedupe(clean)

	for len(clean) < NumBands-1 {
		last := 1.0
		if len(clean) > 0 {
			last = clean[len(clean)-1]
		}
		clean = append(clean, last*2)
	}
	if len(clean) > NumBands-1 {
		clean = clean[:NumBands-1]
	}
	return &Partition{splits: clean}
}

func insertionSort(s []float64) {
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && s[j] > v {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
	}
}

func dedupe(s []float64) []float64 {
	if len(s) == 0 {
		return s
	}
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// NumSplits returns the number of split frequencies (NumBands-1, once
// constructed via NewPartition).
func (p *Partition) NumSplits() int { return len(p.splits) }

// Splits returns the sorted split frequencies.
func (p *Partition) Splits() []float64 { return p.splits }

// BandIndex returns the band index containing frequency f.
func (p *Partition) BandIndex(f float64) int {
	for i, split := range p.splits {
		if f <= split {
			return i
		}
	}
	return len(p.splits)
}

// BandRange returns the (low, high] Hz range covered by band index i.
func (p *Partition) BandRange(i int) (low, high float64, err error) {
	if i < 0 || i > len(p.splits) {
		return 0, 0, fmt.Errorf("acoustic: band index %d out of range [0,%d]", i, len(p.splits))
	}
	if i == 0 {
		low = 0
	} else {
		low = p.splits[i-1]
	}
	if i == len(p.splits) {
		high = math.Inf(1)
	} else {
		high = p.splits[i]
	}
	return low, high, nil
}

// BandCenter returns a representative frequency for band i, used when
// resampling a differently-banded material response onto this partition.
func (p *Partition) BandCenter(i int) float64 {
	low, high, err := p.BandRange(i)
	if err != nil {
		return 0
	}
	if math.IsInf(high, 1) {
		return low * 2
	}
	if low == 0 {
		return high / 2
	}
	return math.Sqrt(low * high)
}

// ResampleFromCenters maps a response defined at the given arbitrary band
// centers onto this partition's NumBands grid by piecewise-linear
// interpolation on the band-center axis, clamping at the ends. centers and
// values must be the same length and centers need not be sorted.
func (p *Partition) ResampleFromCenters(centers []float64, values []float64) Response {
	var out Response
	if len(centers) == 0 || len(centers) != len(values) {
		return out
	}

	idx := make([]int, len(centers))
	for i := range idx {
		idx[i] = i
	}
	for i := 1; i < len(idx); i++ {
		j := i
		for j > 0 && centers[idx[j-1]] > centers[idx[j]] {
			idx[j-1], idx[j] = idx[j], idx[j-1]
			j--
		}
	}

	for b := 0; b < NumBands; b++ {
		target := p.BandCenter(b)
		out[b] = interpolate(centers, values, idx, target)
	}
	return out
}

func interpolate(centers, values []float64, order []int, target float64) float64 {
	n := len(order)
	first, last := order[0], order[n-1]
	if target <= centers[first] {
		return values[first]
	}
	if target >= centers[last] {
		return values[last]
	}
	for i := 0; i < n-1; i++ {
		a, b := order[i], order[i+1]
		if target >= centers[a] && target <= centers[b] {
			span := centers[b] - centers[a]
			if span == 0 {
				return values[a]
			}
			t := (target - centers[a]) / span
			return values[a] + t*(values[b]-values[a])
		}
	}
	return values[last]
}
