// Package propagation implements the Propagation Engine: the per-tick
// ray-tracing pipeline that discovers direct, transmitted, reflected and
// diffracted sound paths from each source to the listener and estimates
// a per-source reverb response.
package propagation

import "github.com/san-kum/acoustid/internal/world"

// SourcePathBuffer is one source's slice of a PropagationPathBuffer
// snapshot: the paths discovered for it this tick plus its reverb
// estimate. A plain snapshot container:
// parallel per-source slices plus frame metadata.
type SourcePathBuffer struct {
	SourceID int
	Paths    []world.Path
	Reverb   world.Reverb
}

// Buffer is the PropagationPathBuffer: the engine's per-tick hand-off to
// the renderer. It is resized to scene.numSources() each tick and is
// owned by the caller, who must not mutate it while the renderer is
// reading from it.
type Buffer struct {
	Sources []SourcePathBuffer
	Frame   uint32
}

// NewBuffer allocates a buffer with n empty per-source slots.
func NewBuffer(n int) *Buffer {
	return &Buffer{Sources: make([]SourcePathBuffer, n)}
}

// Reset clears every per-source path list (but keeps the slice capacity)
// and resizes to n sources, preparing the buffer for the next tick
//.
func (b *Buffer) Reset(n int) {
	if cap(b.Sources) >= n {
		b.Sources = b.Sources[:n]
	} else {
		b.Sources = make([]SourcePathBuffer, n)
	}
	for i := range b.Sources {
		b.Sources[i].SourceID = 0
		b.Sources[i].Paths = b.Sources[i].Paths[:0]
		b.Sources[i].Reverb = world.Reverb{}
	}
}

// TotalPaths sums path counts across every source, used by the
// renderer's global path-culling step.
func (b *Buffer) TotalPaths() int {
	total := 0
	for _, s := range b.Sources {
		total += len(s.Paths)
	}
	return total
}
