package render

import (
	"math"
	"math/rand"

	"github.com/san-kum/acoustid/internal/acoustic"
)

// combBandState is one comb filter's per-channel, per-band tunable:
// decay time (seconds), the feedback gain derived from it, and a ramped
// current/target output gain.
type combBandState struct {
	DecayTime    float64
	FeedbackGain float64
	Current      float64
	Target       float64
}

// combFilter is one parallel comb in the Schroeder-style reverb bank: a
// delay line per channel and per band, all of one length chosen once at
// construction, with per-channel, per-band feedback and output gain.
type combFilter struct {
	delaySamples int
	line         [][][]float32 // [channel][band] ring of length delaySamples
	writeIdx     int
	bands        [][]combBandState // [channel][band]
}

// allpassFilter is one series all-pass stage with a fixed feedback gain
// derived once from its delay and the fixed 0.1s all-pass decay
// constant.
type allpassFilter struct {
	delaySamples int
	line         [][]float32 // [channel]
	writeIdx     int
	feedback     float64
}

// ReverbRenderState is the per-source parallel-comb + series-all-pass
// Schroeder reverberator. Comb/all-pass delay lengths are drawn once,
// at construction, from fixed uniform ranges; deterministic testing
// requires seeding that draw per-source, which NewReverbRenderState
// does via an explicit rng.
type ReverbRenderState struct {
	Combs     []*combFilter
	Allpasses []*allpassFilter
	channels  int
}

const (
	defaultNumCombs     = 10
	defaultNumAllpasses = 2
	combDelayMin        = 0.02
	combDelayMax        = 0.05
	allpassDelayMin     = 0.005
	allpassDelayMax     = 0.03
	allpassDecayTime    = 0.1
)

// NewReverbRenderState builds a reverb bank for a source with the given
// channel count and sample rate, drawing per-channel comb/all-pass delays
// from rng.
func NewReverbRenderState(channels int, sampleRate float64, rng *rand.Rand) *ReverbRenderState {
	r := &ReverbRenderState{channels: channels}
	for i := 0; i < defaultNumCombs; i++ {
		delay := combDelayMin + rng.Float64()*(combDelayMax-combDelayMin)
		samples := int(delay * sampleRate)
		if samples < 1 {
			samples = 1
		}
		line := make([][][]float32, channels)
		bands := make([][]combBandState, channels)
		for c := 0; c < channels; c++ {
			line[c] = make([][]float32, acoustic.NumBands)
			for b := range line[c] {
				line[c][b] = make([]float32, samples)
			}
			bands[c] = make([]combBandState, acoustic.NumBands)
		}
		r.Combs = append(r.Combs, &combFilter{delaySamples: samples, line: line, bands: bands})
	}
	for i := 0; i < defaultNumAllpasses; i++ {
		delay := allpassDelayMin + rng.Float64()*(allpassDelayMax-allpassDelayMin)
		samples := int(delay * sampleRate)
		if samples < 1 {
			samples = 1
		}
		feedback := math.Pow(0.001, delay/allpassDecayTime)
		line := make([][]float32, channels)
		for c := 0; c < channels; c++ {
			line[c] = make([]float32, samples)
		}
		r.Allpasses = append(r.Allpasses, &allpassFilter{delaySamples: samples, line: line, feedback: feedback})
	}
	return r
}

// update sets each comb's per-channel, per-band decay time/feedback gain
// from decayTime60 and the target output gain from
// distanceAtten (already the per-band, per-source reverb gain), split
// evenly across the comb count.
func (r *ReverbRenderState) update(decayTime60, distanceAtten acoustic.Response, sampleRate float64) {
	if len(r.Combs) == 0 {
		return
	}
	share := 1.0 / float64(len(r.Combs))
	for _, comb := range r.Combs {
		delay := float64(comb.delaySamples) / sampleRate
		for c := 0; c < r.channels; c++ {
			for b := 0; b < acoustic.NumBands; b++ {
				st := &comb.bands[c][b]
				st.DecayTime = decayTime60[b]
				if st.DecayTime > 0 {
					st.FeedbackGain = math.Pow(0.001, delay/st.DecayTime)
				} else {
					st.FeedbackGain = 0
				}
				st.Target = distanceAtten[b] * share
			}
		}
	}
}
