package render

// SourceInput is the renderer's pull-based upstream: the conceptual
// sample-rate-converter -> mono-mixer -> B-band crossover -> splitter
// chain collapsed to the single interface the renderer actually depends
// on. Everything upstream of this interface (decoding, resampling,
// crossover filtering) lives outside this package; the renderer pulls
// the chain.s output (already mono, already split into the renderer.s
// Partition bands) straight into its per-source ring buffer.
type SourceInput interface {
	// Pull fills bandSamples[b][:n] with the next n samples of band b for
	// n = len(bandSamples[0]), for every b in [0, len(bandSamples)). It
	// returns the number of samples actually produced; on source
	// exhaustion it returns less than n (callers zero-fill the remainder).
	Pull(bandSamples [][]float32) int
}

// SilentInput is a SourceInput that never produces samples, used for a
// source whose audio handle is not yet attached or has been exhausted.
type SilentInput struct{}

// Pull implements SourceInput.
func (SilentInput) Pull(bandSamples [][]float32) int { return 0 }
