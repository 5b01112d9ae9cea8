package render

// bandChannelGain is one (band, channel) interpolation slot: {current,
// target} linear gain, ramped toward target over the course of one
// fillBuffer call.
type bandChannelGain struct {
	Current float64
	Target  float64
}

// PathRenderState is the per-path-id interpolation state the renderer
// maintains across frames: current/target delay, the
// Doppler delay-change rate, a last-touched frame stamp, and a
// [band][channel] gain grid.
type PathRenderState struct {
	CurrentDelay      float64 // seconds
	TargetDelay       float64 // seconds
	DelayChangePerSec float64
	Timestamp         uint32

	Gain [][]bandChannelGain // [band][channel]

	channels int
}

func newPathRenderState(numBands, channels int) *PathRenderState {
	gain := make([][]bandChannelGain, numBands)
	for b := range gain {
		gain[b] = make([]bandChannelGain, channels)
	}
	return &PathRenderState{Gain: gain, channels: channels}
}

// setBandGain sets the target gain for (band, channel) and, on a
// freshly-created state, snaps current to the same value so a brand-new
// path doesn't ramp in from silence.
func (s *PathRenderState) setBandGain(created bool, band, channel int, gain float64) {
	g := &s.Gain[band][channel]
	g.Target = gain
	if created {
		g.Current = gain
	}
}

// fadeTarget rescales every band/channel's target gain by factor, used to
// fade out a path whose state has aged past being refreshed but not yet
// past maxPathAge.
func (s *PathRenderState) fadeTarget(factor float64) {
	for b := range s.Gain {
		for c := range s.Gain[b] {
			s.Gain[b][c].Target *= factor
		}
	}
}
