package render

import (
	"math"
	"testing"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/propagation"
	"github.com/san-kum/acoustid/internal/world"
)

// rampInput is a SourceInput producing a rising-integer mono signal so
// ring-buffer reads can be checked against exactly what was written.
type rampInput struct{ next float32 }

func (r *rampInput) Pull(bandSamples [][]float32) int {
	n := len(bandSamples[0])
	for i := 0; i < n; i++ {
		for b := range bandSamples {
			bandSamples[b][i] = r.next
		}
		r.next++
	}
	return n
}

func TestRingBufferReadsWhatWasWritten(t *testing.T) {
	rb := newRingBuffer(64, 1, acoustic.NumBands)
	for i := 0; i < 32; i++ {
		rb.set(0, i, 0, float32(i))
	}
	for i := 0; i < 32; i++ {
		if got := rb.at(0, i, 0); got != float32(i) {
			t.Fatalf("at(%d) = %v, want %v", i, got, i)
		}
	}
	// negative wrap
	if got := rb.at(0, -32, 0); got != rb.at(0, 32, 0) {
		t.Fatalf("negative wrap mismatch: at(-32)=%v at(32)=%v", got, rb.at(0, 32, 0))
	}
}

func TestUpdatePathsCreatesAndAgesOutState(t *testing.T) {
	r := NewRenderer(44100, Stereo(), acoustic.NewPartition(acoustic.DefaultSplits))
	src := world.NewSource(1, acoustic.Unity())

	buf := propagation.NewBuffer(1)
	buf.Sources[0].SourceID = 1
	path := world.Path{
		Direction:    [3]float64{0, 0, 1},
		Distance:     5,
		SpeedOfSound: 343,
		Attenuation:  acoustic.Unity(),
		ID:           world.NewID(world.NewDescription([]world.PathPoint{{Tag: world.TagListener}, {Tag: world.TagSource}})),
	}
	buf.Sources[0].Paths = []world.Path{path}

	r.UpdatePaths(buf, []*world.Source{src}, 343)

	st, ok := r.sources[1]
	if !ok {
		t.Fatal("expected source state to be created")
	}
	if len(st.paths) != 1 {
		t.Fatalf("expected 1 path state, got %d", len(st.paths))
	}
	var ps *PathRenderState
	for _, v := range st.paths {
		ps = v
	}
	wantDelay := 5.0 / 343.0
	if math.Abs(ps.CurrentDelay-wantDelay) > 1e-9 {
		t.Errorf("CurrentDelay = %v, want %v", ps.CurrentDelay, wantDelay)
	}

	// Next frame: path absent from the buffer. It should still be present
	// (fading) since age (1) <= default maxPathAge (10).
	buf.Sources[0].Paths = nil
	r.UpdatePaths(buf, []*world.Source{src}, 343)
	if len(st.paths) != 1 {
		t.Fatalf("expected path to still be fading, got %d states", len(st.paths))
	}

	// Age it past maxPathAge.
	for i := 0; i < int(defaultMaxPathAge)+1; i++ {
		r.UpdatePaths(buf, []*world.Source{src}, 343)
	}
	if len(st.paths) != 0 {
		t.Fatalf("expected path state removed after maxPathAge, got %d", len(st.paths))
	}
}

func TestFillBufferWithRampInputStaysFinite(t *testing.T) {
	r := NewRenderer(44100, Stereo(), acoustic.NewPartition(acoustic.DefaultSplits))
	src := world.NewSource(2, acoustic.Unity())
	r.SetSourceInput(2, &rampInput{})

	buf := propagation.NewBuffer(1)
	buf.Sources[0].SourceID = 2
	buf.Sources[0].Paths = []world.Path{{
		Direction:    [3]float64{0, 0, 1},
		Distance:     1,
		SpeedOfSound: 343,
		Attenuation:  acoustic.Unity(),
		ID:           world.NewID(world.NewDescription([]world.PathPoint{{Tag: world.TagListener}, {Tag: world.TagSource}})),
	}}
	r.UpdatePaths(buf, []*world.Source{src}, 343)

	out := [][]float32{make([]float32, 256), make([]float32, 256)}
	r.FillBuffer(out)

	for _, ch := range out {
		for _, v := range ch {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatalf("non-finite sample in output: %v", v)
			}
		}
	}
}

func TestVanishedSourceIsRemovedOnNextUpdate(t *testing.T) {
	r := NewRenderer(44100, Mono(), acoustic.NewPartition(acoustic.DefaultSplits))
	src := world.NewSource(3, acoustic.Unity())
	buf := propagation.NewBuffer(1)
	buf.Sources[0].SourceID = 3
	r.UpdatePaths(buf, []*world.Source{src}, 343)
	if _, ok := r.sources[3]; !ok {
		t.Fatal("expected source state present")
	}

	empty := propagation.NewBuffer(0)
	r.UpdatePaths(empty, nil, 343)
	if _, ok := r.sources[3]; ok {
		t.Fatal("expected source state removed once absent from the buffer")
	}
}
