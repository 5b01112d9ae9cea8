// Package audiodevice connects the renderer to a real output device via
// portaudio. The core renderer only knows the pull contract of
// render.Renderer.FillBuffer; this package owns stream lifecycle and the
// callback plumbing, keeping the device layer out of the core.
package audiodevice

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/san-kum/acoustid/internal/render"
)

const (
	DefaultBufferSize = 1024
)

// Sink drives a render.Renderer from a portaudio output stream.
type Sink struct {
	stream   *portaudio.Stream
	renderer *render.Renderer
	active   bool
}

// NewSink wraps renderer; call Start to open the device.
func NewSink(renderer *render.Renderer) *Sink {
	return &Sink{renderer: renderer}
}

// Start initializes portaudio and opens the default output stream with
// the given channel count and sample rate. Every callback pulls one
// buffer through the renderer.
func (s *Sink) Start(channels int, sampleRate float64, bufferSize int) error {
	if s.active {
		return fmt.Errorf("audiodevice: already started")
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audiodevice: init: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(0, channels, sampleRate, bufferSize, s.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audiodevice: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audiodevice: start stream: %w", err)
	}

	s.stream = stream
	s.active = true
	return nil
}

func (s *Sink) process(out [][]float32) {
	s.renderer.FillBuffer(out)
}

// Stop closes the stream and tears down portaudio.
func (s *Sink) Stop() {
	if s.stream != nil {
		s.stream.Stop()
		s.stream.Close()
		s.stream = nil
	}
	if s.active {
		portaudio.Terminate()
		s.active = false
	}
}

// Active reports whether the stream is running.
func (s *Sink) Active() bool { return s.active }
