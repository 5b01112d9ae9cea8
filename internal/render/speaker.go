package render

import "github.com/san-kum/acoustid/internal/geom"

// Channel is one output speaker: a unit direction vector expressed in
// listener space, used to pan a path's listener-space direction onto the
// channel layout.
type Channel struct {
	Direction geom.Vec3
}

// SpeakerConfig is the renderer's output channel layout: C channels with
// direction vectors for panning.
type SpeakerConfig struct {
	Channels []Channel
}

// Stereo returns the conventional two-channel layout, left/right at +/-
// 90 degrees about the listener's up axis in the listener's XZ plane.
func Stereo() SpeakerConfig {
	return SpeakerConfig{Channels: []Channel{
		{Direction: geom.Vec3{X: -1, Y: 0, Z: 0}},
		{Direction: geom.Vec3{X: 1, Y: 0, Z: 0}},
	}}
}

// Mono returns a single centered channel.
func Mono() SpeakerConfig {
	return SpeakerConfig{Channels: []Channel{{Direction: geom.Vec3{X: 0, Y: 0, Z: 1}}}}
}

// NumChannels returns C, the configured channel count.
func (s SpeakerConfig) NumChannels() int { return len(s.Channels) }

// PanGains returns one non-negative gain per channel for a path arriving
// from dir (a unit vector in listener space), derived from the path's
// direction and the speaker configuration. Each
// channel's raw gain is max(0, dir . channelDirection); when every
// channel's raw gain is non-positive (direction orthogonal to, or behind,
// every speaker) gain is split evenly across channels rather than muted.
func (s SpeakerConfig) PanGains(dir geom.Vec3) []float64 {
	gains := make([]float64, len(s.Channels))
	sum := 0.0
	for i, ch := range s.Channels {
		g := dir.Dot(ch.Direction)
		if g < 0 {
			g = 0
		}
		gains[i] = g
		sum += g
	}
	if sum <= 0 {
		even := 1.0
		if len(gains) > 0 {
			even = 1.0 / float64(len(gains))
		}
		for i := range gains {
			gains[i] = even
		}
		return gains
	}
	for i := range gains {
		gains[i] /= sum
	}
	return gains
}
