package audiodevice

import (
	"math"
	"math/rand"

	"github.com/san-kum/acoustid/internal/acoustic"
)

// ToneInput is a render.SourceInput producing a steady triangle-wave
// tone. The tone lands in the single partition band containing its
// frequency; the other bands stay silent, which is exactly what a real
// crossover would do to a narrowband signal.
type ToneInput struct {
	Frequency  float64
	Amplitude  float64
	sampleRate float64
	band       int
	phase      float64
}

// NewToneInput builds a tone at freq Hz rendered at sampleRate, placed
// into the band partition selects for it.
func NewToneInput(freq, amplitude, sampleRate float64, partition *acoustic.Partition) *ToneInput {
	return &ToneInput{
		Frequency:  freq,
		Amplitude:  amplitude,
		sampleRate: sampleRate,
		band:       partition.BandIndex(freq),
	}
}

// triangle is a smooth, buzz-free waveform for audible test signals.
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// Pull implements render.SourceInput.
func (t *ToneInput) Pull(bandSamples [][]float32) int {
	if len(bandSamples) == 0 {
		return 0
	}
	n := len(bandSamples[0])
	step := t.Frequency / t.sampleRate
	for i := 0; i < n; i++ {
		v := float32(triangle(t.phase) * t.Amplitude)
		for b := range bandSamples {
			if b == t.band {
				bandSamples[b][i] = v
			} else {
				bandSamples[b][i] = 0
			}
		}
		t.phase += step
	}
	if t.phase > 1e9 {
		t.phase -= math.Floor(t.phase)
	}
	return n
}

// NoiseInput is a render.SourceInput producing seeded white noise split
// evenly across all bands, useful for reverb listening tests where every
// band should be excited.
type NoiseInput struct {
	Amplitude float64
	rng       *rand.Rand
}

// NewNoiseInput builds a noise source with a deterministic sample
// stream.
func NewNoiseInput(amplitude float64, seed int64) *NoiseInput {
	return &NoiseInput{Amplitude: amplitude, rng: rand.New(rand.NewSource(seed))}
}

// Pull implements render.SourceInput.
func (ni *NoiseInput) Pull(bandSamples [][]float32) int {
	if len(bandSamples) == 0 {
		return 0
	}
	n := len(bandSamples[0])
	perBand := ni.Amplitude / float64(len(bandSamples))
	for i := 0; i < n; i++ {
		for b := range bandSamples {
			bandSamples[b][i] = float32((ni.rng.Float64()*2 - 1) * perBand)
		}
	}
	return n
}

// ImpulseInput emits a single unit impulse in every band on the first
// pull and silence afterwards, the signal MeasureDecayTime expects for
// offline T60 measurement.
type ImpulseInput struct {
	fired bool
}

// Pull implements render.SourceInput.
func (im *ImpulseInput) Pull(bandSamples [][]float32) int {
	if len(bandSamples) == 0 {
		return 0
	}
	n := len(bandSamples[0])
	for b := range bandSamples {
		for i := range bandSamples[b] {
			bandSamples[b][i] = 0
		}
	}
	if !im.fired {
		for b := range bandSamples {
			bandSamples[b][0] = 1
		}
		im.fired = true
	}
	return n
}
