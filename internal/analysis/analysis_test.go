package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/acoustid/internal/acoustic"
)

func TestPowerSpectrumPeaksAtToneBin(t *testing.T) {
	const n = 1024
	const sampleRate = 1024.0
	const freq = 64.0
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}

	ps := PowerSpectrum(samples)
	peak := 0
	for i := range ps {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	wantBin := int(freq * n / sampleRate)
	if peak != wantBin {
		t.Errorf("spectrum peak at bin %d, want %d", peak, wantBin)
	}
}

func TestBandLevelsRoutesEnergyToToneBand(t *testing.T) {
	const n = 2048
	const sampleRate = 44100.0
	const freq = 1000.0
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	partition := acoustic.NewPartition(acoustic.DefaultSplits)
	levels := BandLevels(PowerSpectrum(samples), sampleRate, partition)

	toneBand := partition.BandIndex(freq)
	for b := 0; b < acoustic.NumBands; b++ {
		if b == toneBand {
			continue
		}
		if levels[b] >= levels[toneBand] {
			t.Errorf("band %d level %v >= tone band %d level %v", b, levels[b], toneBand, levels[toneBand])
		}
	}
}

func TestMeasureDecayTimeOfSyntheticExponential(t *testing.T) {
	const sampleRate = 8000.0
	const t60 = 0.5
	n := int(sampleRate * 2)
	impulse := make([]float64, n)
	// 60 dB amplitude decay over t60 seconds.
	k := math.Log(1e-3) / (t60 * sampleRate)
	for i := range impulse {
		impulse[i] = math.Exp(k * float64(i))
	}

	got := MeasureDecayTime(impulse, sampleRate)
	if math.Abs(got-t60)/t60 > 0.1 {
		t.Errorf("measured T60 = %v, want within 10%% of %v", got, t60)
	}
}

func TestPathCountStability(t *testing.T) {
	steady := NewPathCountStability()
	for i := 0; i < 50; i++ {
		steady.Observe(40)
	}
	if v := steady.Value(); v != 1 {
		t.Errorf("steady stability = %v, want 1", v)
	}

	jittery := NewPathCountStability()
	for i := 0; i < 50; i++ {
		jittery.Observe(10 + 70*(i%2))
	}
	if v := jittery.Value(); v > 0.5 {
		t.Errorf("jittery stability = %v, want <= 0.5", v)
	}
}

func TestReverbDriftTracksWorstBand(t *testing.T) {
	d := NewReverbDrift()
	base := acoustic.Constant(1.0)
	d.Observe(base)
	shifted := base
	shifted[3] = 1.3
	d.Observe(shifted)
	if math.Abs(d.Value()-0.3) > 1e-9 {
		t.Errorf("drift = %v, want 0.3", d.Value())
	}
}
