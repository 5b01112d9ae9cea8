// Package render implements the Propagation Renderer: a pull-based multichannel audio processor that
// consumes a snapshot of PropagationPaths and a ReverbResponse per
// source, maintains per-path delay/gain interpolation state across
// frames, renders each source through frequency-band-split delay lines
// with Doppler-correct time-varying taps, and mixes in a parallel-comb +
// series-all-pass reverberator whose decay times are driven by the
// propagation engine.
package render

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/propagation"
	"github.com/san-kum/acoustid/internal/world"
)

const (
	defaultMaxDelayTime = 0.5 // seconds
	defaultMaxPathAge   = 10  // frames
)

// sourceState is everything the renderer keeps per active source: its
// pull-chain handle, ring delay buffer, path interpolation states keyed
// by path-id hash, and reverb bank.
type sourceState struct {
	input  SourceInput
	ring   *ringBuffer
	paths  map[uint64]*PathRenderState
	reverb *ReverbRenderState
	seen   uint32 // last frame this source appeared in an UpdatePaths call
}

// Renderer is the Propagation Renderer. All exported methods are safe
// for concurrent use: UpdatePaths is called from the simulation thread,
// FillBuffer from the audio thread, and both serialize on mu.
type Renderer struct {
	mu sync.Mutex

	sampleRate float64
	speakers   SpeakerConfig
	partition  *acoustic.Partition

	maxDelayTime float64
	maxPaths     int
	maxPathAge   uint32
	reverbOn     bool

	sources map[int]*sourceState
	frame   uint32
	rngSeed int64
	inputs  map[int]SourceInput
}

// NewRenderer builds a renderer at the given sample rate, speaker
// layout, and band partition, with the stock defaults
// (maxDelayTime=0.5s, maxPathAge=10 frames, maxPaths unbounded until set,
// reverb enabled).
func NewRenderer(sampleRate float64, speakers SpeakerConfig, partition *acoustic.Partition) *Renderer {
	return &Renderer{
		sampleRate:   sampleRate,
		speakers:     speakers,
		partition:    partition,
		maxDelayTime: defaultMaxDelayTime,
		maxPathAge:   defaultMaxPathAge,
		reverbOn:     true,
		sources:      make(map[int]*sourceState),
		inputs:       make(map[int]SourceInput),
		rngSeed:      1,
	}
}

// SetMaxPaths sets the aggregate cross-source path cap used by the
// culling step of UpdatePaths. Zero or negative means
// unbounded.
func (r *Renderer) SetMaxPaths(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxPaths = n
}

// SetMaxPathAge sets the number of frames an un-refreshed PathRenderState
// is kept (fading out) before removal.
func (r *Renderer) SetMaxPathAge(frames uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxPathAge = frames
}

// SetReverbEnabled toggles the reverb mix stage.
func (r *Renderer) SetReverbEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reverbOn = enabled
}

// SetFrequencyPartition replaces the render-band partition, a
// configuration-time change. Since the band count is fixed at
// acoustic.NumBands in this implementation, existing path/reverb state remains valid and
// is kept rather than discarded.
func (r *Renderer) SetFrequencyPartition(p *acoustic.Partition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partition = p
}

// SetSpeakerConfiguration replaces the channel layout. A channel-count
// change invalidates per-source state, since every
// PathRenderState's gain grid and every source's ring buffer are sized
// by channel count; this is configuration-time work, not audio-thread
// work, so the whole source map is discarded and rebuilt lazily.
func (r *Renderer) SetSpeakerConfiguration(s SpeakerConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.NumChannels() != r.speakers.NumChannels() {
		r.sources = make(map[int]*sourceState)
	}
	r.speakers = s
}

// SetSampleRate changes the render sample rate, which invalidates
// per-source ring buffers and comb/all-pass delay lengths
// (all sized in samples), so the source map is discarded.
func (r *Renderer) SetSampleRate(fs float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sampleRate = fs
	r.sources = make(map[int]*sourceState)
}

// SetSourceInput attaches the pull-based audio handle for a source id,
// used the next time that source appears in an UpdatePaths call.
func (r *Renderer) SetSourceInput(sourceID int, input SourceInput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs[sourceID] = input
}

func (r *Renderer) ringLength() int {
	n := int(math.Ceil(2 * r.sampleRate * r.maxDelayTime))
	if n < 2 {
		n = 2
	}
	return n
}

// pathAmplitude is the culling sort key: the mean gain across bands of
// the path's already-fully-baked attenuation (source power, directivity
// and distance attenuation are folded in by the propagation engine; see
// internal/propagation/engine.go finalizePath).
func pathAmplitude(p world.Path) float64 {
	return p.Attenuation.AverageGain(0, acoustic.NumBands-1)
}

// UpdatePaths is the simulation-thread hand-off: it
// snapshots buf's per-source paths and reverb into the renderer's
// internal per-path state under mu, culls to maxPaths in
// aggregate, and ages out path states that went unrefreshed. speedOfSound
// is the scene's speed of sound, needed to derive reverb decay times from
// each source's ReverbResponse. The caller may reuse buf immediately
// after this call returns.
func (r *Renderer) UpdatePaths(buf *propagation.Buffer, sources []*world.Source, speedOfSound float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	currentFrame := r.frame
	r.frame++

	sourceByID := make(map[int]*world.Source, len(sources))
	for _, s := range sources {
		sourceByID[s.ID] = s
	}

	kept := r.cullPaths(buf)

	present := make(map[int]bool, len(buf.Sources))
	for i, sb := range buf.Sources {
		present[sb.SourceID] = true
		state := r.stateFor(sb.SourceID)
		state.seen = currentFrame

		for _, p := range kept[i] {
			r.applyPath(state, p, currentFrame)
		}
		r.ageOutPaths(state, currentFrame)

		if r.reverbOn {
			src := sourceByID[sb.SourceID]
			if src != nil && state.reverb != nil {
				decay := sb.Reverb.DecayTime60(speedOfSound)
				state.reverb.update(decay, sb.Reverb.DistanceAttenuation.Scale(src.Power.AverageGain(0, acoustic.NumBands-1)), r.sampleRate)
			}
		}
	}

	for id, st := range r.sources {
		if !present[id] && st.seen != currentFrame {
			delete(r.sources, id)
		}
	}
}

// cullPaths implements the global culling step: if the aggregate
// path count across all sources exceeds maxPaths, every source's
// incoming paths are sorted by amplitude descending and truncated to an
// even per-source share of the keep budget.
func (r *Renderer) cullPaths(buf *propagation.Buffer) [][]world.Path {
	kept := make([][]world.Path, len(buf.Sources))
	total := buf.TotalPaths()
	if r.maxPaths <= 0 || total <= r.maxPaths || len(buf.Sources) == 0 {
		for i, sb := range buf.Sources {
			kept[i] = sb.Paths
		}
		return kept
	}

	perSource := r.maxPaths / len(buf.Sources)
	if perSource < 1 {
		perSource = 1
	}
	for i, sb := range buf.Sources {
		paths := make([]world.Path, len(sb.Paths))
		copy(paths, sb.Paths)
		sort.Slice(paths, func(a, b int) bool {
			return pathAmplitude(paths[a]) > pathAmplitude(paths[b])
		})
		if len(paths) > perSource {
			paths = paths[:perSource]
		}
		kept[i] = paths
	}
	return kept
}

func (r *Renderer) stateFor(sourceID int) *sourceState {
	st, ok := r.sources[sourceID]
	if ok {
		return st
	}
	channels := r.speakers.NumChannels()
	if channels == 0 {
		channels = 1
	}
	rng := rand.New(rand.NewSource(r.rngSeed + int64(sourceID)))
	st = &sourceState{
		input:  r.inputs[sourceID],
		ring:   newRingBuffer(r.ringLength(), channels, acoustic.NumBands),
		paths:  make(map[uint64]*PathRenderState),
		reverb: NewReverbRenderState(channels, r.sampleRate, rng),
	}
	if st.input == nil {
		st.input = SilentInput{}
	}
	r.sources[sourceID] = st
	return st
}

// applyPath finds or creates the PathRenderState for p.ID and refreshes
// its target delay/gain.
func (r *Renderer) applyPath(state *sourceState, p world.Path, currentFrame uint32) {
	channels := r.speakers.NumChannels()
	key := p.ID.Hash()
	ps, existed := state.paths[key]
	created := !existed
	if created {
		ps = newPathRenderState(acoustic.NumBands, channels)
		state.paths[key] = ps
	}

	delay := p.Delay()
	if delay > r.maxDelayTime {
		delay = r.maxDelayTime
	}
	if created {
		ps.CurrentDelay = delay
	}
	ps.TargetDelay = delay
	ps.DelayChangePerSec = p.DelayChangePerSecond()
	ps.Timestamp = currentFrame

	dir := p.Direction
	panGains := r.speakers.PanGains(geom.Vec3{X: dir[0], Y: dir[1], Z: dir[2]})
	for b := 0; b < acoustic.NumBands; b++ {
		bandGain := p.Attenuation[b]
		for c := 0; c < channels; c++ {
			ps.setBandGain(created, b, c, bandGain*panGains[c])
		}
	}
}

// ageOutPaths fades and drops stale states: states not refreshed
// this frame either fade (age <= maxPathAge) or are dropped (age >
// maxPathAge).
func (r *Renderer) ageOutPaths(state *sourceState, currentFrame uint32) {
	for key, ps := range state.paths {
		if ps.Timestamp == currentFrame {
			continue
		}
		age := currentFrame - ps.Timestamp
		if age > r.maxPathAge {
			delete(state.paths, key)
			continue
		}
		remain := float64(r.maxPathAge-age) / float64(r.maxPathAge)
		ps.fadeTarget(remain * remain)
	}
}
