package audiodevice

import (
	"testing"

	"github.com/san-kum/acoustid/internal/acoustic"
)

func pull(t *testing.T, in interface {
	Pull([][]float32) int
}, n int) [][]float32 {
	t.Helper()
	buf := make([][]float32, acoustic.NumBands)
	for b := range buf {
		buf[b] = make([]float32, n)
	}
	if got := in.Pull(buf); got != n {
		t.Fatalf("Pull produced %d samples, want %d", got, n)
	}
	return buf
}

func TestToneInputLandsInItsBand(t *testing.T) {
	partition := acoustic.NewPartition(acoustic.DefaultSplits)
	tone := NewToneInput(1000, 0.5, 44100, partition)
	buf := pull(t, tone, 512)

	toneBand := partition.BandIndex(1000)
	var energy [acoustic.NumBands]float64
	for b := range buf {
		for _, v := range buf[b] {
			energy[b] += float64(v) * float64(v)
		}
	}
	if energy[toneBand] == 0 {
		t.Fatal("tone band is silent")
	}
	for b := range energy {
		if b != toneBand && energy[b] != 0 {
			t.Errorf("band %d has energy %v, want 0", b, energy[b])
		}
	}
}

func TestNoiseInputIsDeterministicPerSeed(t *testing.T) {
	a := pull(t, NewNoiseInput(0.5, 42), 64)
	b := pull(t, NewNoiseInput(0.5, 42), 64)
	for band := range a {
		for i := range a[band] {
			if a[band][i] != b[band][i] {
				t.Fatalf("seeded noise diverged at band %d sample %d", band, i)
			}
		}
	}
}

func TestImpulseInputFiresOnce(t *testing.T) {
	im := &ImpulseInput{}
	first := pull(t, im, 16)
	for b := range first {
		if first[b][0] != 1 {
			t.Errorf("band %d first sample = %v, want 1", b, first[b][0])
		}
	}
	second := pull(t, im, 16)
	for b := range second {
		for i, v := range second[b] {
			if v != 0 {
				t.Errorf("band %d sample %d = %v after impulse, want 0", b, i, v)
			}
		}
	}
}
