package render

import (
	"math"

	"github.com/san-kum/acoustid/internal/acoustic"
)

const dopplerEpsilon = 1e-9

// FillBuffer is the audio-thread pull: it produces N =
// len(out[0]) frames into C = len(out) channels, summing every active
// source's path-rendered audio and, if enabled, its reverb tail. out is
// zeroed first; callers must not assume additive mixing onto prior
// content. Acquires mu for the whole call, so a concurrent
// UpdatePaths blocks at most one audio callback worth of time.
func (r *Renderer) FillBuffer(out [][]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(out) == 0 || len(out[0]) == 0 {
		return
	}
	n := len(out[0])
	for _, ch := range out {
		for i := range ch {
			ch[i] = 0
		}
	}

	var scratch [][]float32
	if r.reverbOn {
		scratch = make([][]float32, len(out))
		for c := range scratch {
			scratch[c] = make([]float32, n)
		}
	}

	for _, state := range r.sources {
		readBase := state.ring.writeIndex()
		r.pullIntoRing(state, n)
		r.renderPaths(state, out, readBase, n)
		if r.reverbOn && state.reverb != nil {
			r.renderReverb(state, scratch, readBase, n)
		}
		state.ring.advance(n)
	}

	if scratch != nil {
		for c := range out {
			for i := range out[c] {
				out[c][i] += scratch[c][i]
			}
		}
	}
}

// pullIntoRing pulls n samples per band from the source's input chain
// into its ring buffer starting at the current write index, zero-filling
// whatever the input chain didn't produce.
func (r *Renderer) pullIntoRing(state *sourceState, n int) {
	tmp := make([][]float32, acoustic.NumBands)
	for b := range tmp {
		tmp[b] = make([]float32, n)
	}
	got := state.input.Pull(tmp)
	if got < 0 {
		got = 0
	}
	if got > n {
		got = n
	}
	writeBase := state.ring.writeIndex()
	for b := 0; b < acoustic.NumBands; b++ {
		for i := 0; i < n; i++ {
			var v float32
			if i < got {
				v = tmp[b][i]
			}
			for c := 0; c < state.ring.channels; c++ {
				state.ring.set(b, writeBase+i, c, v)
			}
		}
	}
}

// renderPaths walks every PathRenderState for this source, decides the
// next callback's delay trajectory, and mixes
// its band/channel-interpolated, possibly fractionally-delayed output
// into out.
func (r *Renderer) renderPaths(state *sourceState, out [][]float32, readBase, n int) {
	duration := float64(n) / r.sampleRate
	channels := len(out)

	for _, ps := range state.paths {
		current := ps.CurrentDelay
		target := ps.TargetDelay
		halfSample := 0.5 / r.sampleRate

		var newDelay float64
		if math.Abs(current-target) < halfSample {
			newDelay = target
		} else {
			candidateA := duration * ps.DelayChangePerSec
			candidateB := (current+target)/2 - current
			chosen := candidateB
			if math.Abs(candidateA) > dopplerEpsilon {
				chosen = candidateA
			}
			newDelay = current + chosen
		}

		delayStep := 1 - (newDelay-current)*r.sampleRate/float64(n)
		changed := math.Abs(newDelay-current) > dopplerEpsilon

		startPosFloat := float64(readBase) - current*r.sampleRate
		startPos := int(math.Floor(startPosFloat))
		startFrac := startPosFloat - float64(startPos)

		for b := 0; b < acoustic.NumBands; b++ {
			for c := 0; c < channels; c++ {
				g := &ps.Gain[b][c]
				currentAmp := g.Current
				ampStep := (g.Target - g.Current) / float64(n)
				g.Current = g.Target

				if !changed {
					pos := startPos
					for s := 0; s < n; s++ {
						out[c][s] += state.ring.at(b, pos, c) * float32(currentAmp)
						pos++
						currentAmp += ampStep
					}
					continue
				}

				pos := startPos
				frac := startFrac
				for s := 0; s < n; s++ {
					s0 := state.ring.at(b, pos, c)
					s1 := state.ring.at(b, pos+1, c)
					sample := s0*float32(1-frac) + s1*float32(frac)
					out[c][s] += sample * float32(currentAmp)
					currentAmp += ampStep
					frac += delayStep
					for frac >= 1.0 {
						frac -= 1.0
						pos++
					}
					for frac < 0.0 {
						frac += 1.0
						pos--
					}
				}
			}
		}
		ps.CurrentDelay = newDelay
	}
}

// renderReverb mixes this source's comb+all-pass reverb bank into
// scratch, reading its input from the just-filled per-source ring buffer
// at this callback's readBase.
func (r *Renderer) renderReverb(state *sourceState, scratch [][]float32, readBase, n int) {
	channels := len(scratch)
	rv := state.reverb

	for _, comb := range rv.Combs {
		widx := comb.writeIdx
		d := comb.delaySamples
		for s := 0; s < n; s++ {
			t := float64(s) / float64(n)
			for c := 0; c < channels; c++ {
				for b := 0; b < acoustic.NumBands; b++ {
					st := &comb.bands[c][b]
					amt := st.Current + (st.Target-st.Current)*t
					delayed := comb.line[c][b][widx]
					input := state.ring.at(b, readBase+s, c)
					comb.line[c][b][widx] = input + delayed*float32(st.FeedbackGain)
					scratch[c][s] += delayed * float32(amt)
				}
			}
			widx++
			if widx >= d {
				widx = 0
			}
		}
		comb.writeIdx = widx
		for c := 0; c < channels; c++ {
			for b := 0; b < acoustic.NumBands; b++ {
				comb.bands[c][b].Current = comb.bands[c][b].Target
			}
		}
	}

	for _, ap := range rv.Allpasses {
		widx := ap.writeIdx
		d := ap.delaySamples
		g := float32(ap.feedback)
		for s := 0; s < n; s++ {
			for c := 0; c < channels; c++ {
				x := scratch[c][s]
				y := ap.line[c][widx]
				newRing := y*g + x
				ap.line[c][widx] = newRing
				scratch[c][s] = y - newRing*g
			}
			widx++
			if widx >= d {
				widx = 0
			}
		}
		ap.writeIdx = widx
	}
}
