package world

import (
	"math"

	"github.com/san-kum/acoustid/internal/acoustic"
)

// Path is a PropagationPath: a snapshot, valid for one simulation frame,
// describing one discovered route from a source to the listener.
// Direction is expressed in listener space.
type Path struct {
	Direction     [3]float64 // unit vector, listener-space
	Distance      float64    // total path length, meters
	RelativeSpeed float64    // source/listener closing speed along the path
	SpeedOfSound  float64
	Attenuation   acoustic.Response
	ID            ID
}

// Delay returns the propagation delay of this path in seconds.
func (p Path) Delay() float64 {
	if p.SpeedOfSound <= 0 {
		return 0
	}
	return p.Distance / p.SpeedOfSound
}

// DelayChangePerSecond is the Doppler rate of change of delay, used by
// the renderer's interpolation step.
func (p Path) DelayChangePerSecond() float64 {
	if p.SpeedOfSound <= 0 {
		return 0
	}
	return p.RelativeSpeed / p.SpeedOfSound
}

// Depth returns the path's interior point count, matching the
// description's Depth.
func (p Path) Depth() int { return p.ID.Description.Depth() }

// Reverb is a ReverbResponse: a per-source statistical late-reverberation
// estimate, recomputed every engine tick.
type Reverb struct {
	Volume              float64
	SurfaceArea         float64
	AverageAttenuation  acoustic.Response // surface reflection, area-weighted
	DistanceAttenuation acoustic.Response // per-band reverb gain for this source
}

// DecayTime60 computes the per-band T60 reverb decay time, in seconds,
// from the Eyring-style formula:
//
//	T_b = (-4*ln(1e-3)*4 / c) * V / (S * (-ln(alphaHat_b)))
//
// speedOfSound is the scene's speed of sound. Bands whose average
// attenuation is <= 0 or >= 1 (perfect absorption or a lossless
// reflector) return 0,
// since ln(0) and ln(1) are singular/degenerate for this formula.
func (r Reverb) DecayTime60(speedOfSound float64) acoustic.Response {
	var out acoustic.Response
	if speedOfSound <= 0 || r.SurfaceArea <= 0 {
		return out
	}
	const lnThousandth = -6.907755278982137 // ln(1e-3)
	numeratorConst := (-4 * lnThousandth * 4) / speedOfSound
	for b := 0; b < acoustic.NumBands; b++ {
		alpha := r.AverageAttenuation[b]
		if alpha <= 0 || alpha >= 1 {
			out[b] = 0
			continue
		}
		negLnAlpha := -math.Log(alpha)
		if negLnAlpha <= 0 {
			out[b] = 0
			continue
		}
		out[b] = numeratorConst * r.Volume / (r.SurfaceArea * negLnAlpha)
	}
	return out
}
