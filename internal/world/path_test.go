package world

import (
	"testing"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/cache"
)

func triRef(obj, tri int) cache.TriangleRef {
	return cache.TriangleRef{Object: obj, Triangle: tri}
}

func TestDescriptionEqualRequiresSameOrder(t *testing.T) {
	a := NewDescription([]PathPoint{
		{Tag: TagListener},
		{Tag: TagTriangleReflection, Triangle: triRef(0, 1)},
		{Tag: TagSource, SourceID: 0},
	})
	b := NewDescription([]PathPoint{
		{Tag: TagListener},
		{Tag: TagTriangleReflection, Triangle: triRef(0, 2)},
		{Tag: TagSource, SourceID: 0},
	})
	if a.Equal(b) {
		t.Fatal("descriptions with different triangle refs must not be equal")
	}
}

func TestEqualDescriptionsHashEqual(t *testing.T) {
	pts := []PathPoint{
		{Tag: TagListener},
		{Tag: TagEdgeDiffraction, Triangle: triRef(1, 4)},
		{Tag: TagSource, SourceID: 2},
	}
	a := NewDescription(pts)
	b := NewDescription(append([]PathPoint(nil), pts...))
	if !a.Equal(b) {
		t.Fatal("expected equal point sequences to compare equal")
	}
	if a.Equal(b) && NewID(a).Hash() != NewID(b).Hash() {
		t.Fatal("equal descriptions must hash equal")
	}
}

func TestDepthExcludesEndpoints(t *testing.T) {
	d := NewDescription([]PathPoint{
		{Tag: TagListener},
		{Tag: TagTriangleReflection, Triangle: triRef(0, 1)},
		{Tag: TagTriangleReflection, Triangle: triRef(0, 2)},
		{Tag: TagSource, SourceID: 0},
	})
	if d.Depth() != 2 {
		t.Errorf("depth = %d, want 2", d.Depth())
	}
}

func TestReverbDecayTime60DegenerateBandsAreZero(t *testing.T) {
	r := Reverb{
		Volume:             64,
		SurfaceArea:        96,
		AverageAttenuation: acoustic.Constant(1), // perfect reflector: ln(1)=0, degenerate
	}
	t60 := r.DecayTime60(343)
	for b := 0; b < acoustic.NumBands; b++ {
		if t60[b] != 0 {
			t.Errorf("band %d: expected degenerate T60 of 0, got %v", b, t60[b])
		}
	}
}

func TestReverbDecayTime60Positive(t *testing.T) {
	r := Reverb{
		Volume:             64,
		SurfaceArea:        96,
		AverageAttenuation: acoustic.Constant(0.2),
	}
	t60 := r.DecayTime60(343)
	for b := 0; b < acoustic.NumBands; b++ {
		if t60[b] <= 0 {
			t.Errorf("band %d: expected positive T60, got %v", b, t60[b])
		}
	}
}
