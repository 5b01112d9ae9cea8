package acoustic

import "testing"

func TestPartitionSortedPositiveFinite(t *testing.T) {
	p := NewPartition([]float64{500, 100, 100, -5, 2000})
	splits := p.Splits()
	for i := 1; i < len(splits); i++ {
		if splits[i] <= splits[i-1] {
			t.Fatalf("splits not strictly ascending: %v", splits)
		}
	}
	for _, s := range splits {
		if s <= 0 {
			t.Fatalf("non-positive split survived filtering: %v", splits)
		}
	}
}

func TestBandIndexMonotonic(t *testing.T) {
	p := NewPartition(DefaultSplits)
	prev := -1
	for _, f := range []float64{1, 100, 130, 600, 1500, 5000, 9000, 20000} {
		idx := p.BandIndex(f)
		if idx < prev {
			t.Errorf("band index decreased at f=%f: %d < %d", f, idx, prev)
		}
		prev = idx
	}
}

func TestResampleClampsAtEnds(t *testing.T) {
	p := NewPartition(DefaultSplits)
	centers := []float64{1000}
	values := []float64{0.42}
	out := p.ResampleFromCenters(centers, values)
	for _, v := range out {
		if v != 0.42 {
			t.Errorf("single-center resample should broadcast constant, got %f", v)
		}
	}
}
