package acoustic

import (
	"math"
	"testing"
	"testing/quick"
)

func TestResponseAlgebra(t *testing.T) {
	a := Response{1, 2, 3, 4, 5, 6, 7, 8}
	b := Response{2, 2, 2, 2, 2, 2, 2, 2}

	mul := a.Mul(b)
	add := a.Add(b)
	for i := range a {
		if mul[i] != a[i]*b[i] {
			t.Errorf("band %d: Mul got %f want %f", i, mul[i], a[i]*b[i])
		}
		if add[i] != a[i]+b[i] {
			t.Errorf("band %d: Add got %f want %f", i, add[i], a[i]+b[i])
		}
	}
}

func TestAverageGainSymmetric(t *testing.T) {
	f := func(r Response, lo, hi uint8) bool {
		l := int(lo) % NumBands
		h := int(hi) % NumBands
		return r.AverageGain(l, h) == r.AverageGain(h, l)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestAverageGainKnownRange(t *testing.T) {
	r := Response{1, 2, 3, 4, 5, 6, 7, 8}
	got := r.AverageGain(1, 3)
	want := (2.0 + 3.0 + 4.0) / 3.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("got %f want %f", got, want)
	}
}

func TestIsValidRejectsNaNAndInf(t *testing.T) {
	r := Unity()
	if !r.IsValid() {
		t.Fatal("unity response should be valid")
	}
	r[3] = math.NaN()
	if r.IsValid() {
		t.Error("NaN band should make response invalid")
	}
	r2 := Unity()
	r2[0] = math.Inf(1)
	if r2.IsValid() {
		t.Error("Inf band should make response invalid")
	}
}

func TestClamp01(t *testing.T) {
	r := Response{-1, 0, 0.5, 1, 2, 100, -100, 0.999}
	c := r.Clamp01()
	for _, v := range c {
		if v < 0 || v > 1 {
			t.Errorf("clamped value out of range: %f", v)
		}
	}
}
