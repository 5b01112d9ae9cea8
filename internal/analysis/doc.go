// Package analysis provides offline analysis tools for rendered audio
// and captured propagation runs.
//
// The package includes:
//
//   - [PowerSpectrum]: windowed FFT power spectrum of a rendered buffer
//   - [BandLevels]: spectrum folded onto a rendering-band partition
//   - [MeasureDecayTime]: T60 estimate via Schroeder backward integration
//   - [PathCountStability]: frame-to-frame path count jitter metric
//   - [ReverbDrift]: max relative drift of a per-band T60 across frames
//
// # Stability
//
// A path count stability near 1 means the engine's discovered path set
// is steady across frames:
//
//	m := analysis.NewPathCountStability()
//	for each frame { m.Observe(buf.TotalPaths()) }
//	if m.Value() > 0.95 {
//	    // path set is stable
//	}
package analysis
