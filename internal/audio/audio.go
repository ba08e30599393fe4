// Package audio sonifies the sandbox: a pour sounds like sand hissing
// against the pile.
package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/san-kum/granular/internal/sim"
)

// Sonifier plays the hiss on the default output device. OnFrame runs on the
// game goroutine and Process on the audio callback; target is shared.
type Sonifier struct {
	stream *portaudio.Stream
	synth  *synth

	mu     sync.Mutex
	target float64

	active bool
}

func NewSonifier(seed int64) *Sonifier {
	return &Sonifier{synth: newSynth(seed)}
}

// Start opens a stereo output-only stream.
func (s *Sonifier) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio init: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, s.Process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audio open: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audio start: %w", err)
	}
	s.stream = stream
	s.active = true
	return nil
}

func (s *Sonifier) Stop() {
	if !s.active {
		return
	}
	s.stream.Stop()
	s.stream.Close()
	portaudio.Terminate()
	s.active = false
}

func (s *Sonifier) Active() bool { return s.active }

// OnFrame updates the target level from a finished frame.
func (s *Sonifier) OnFrame(f *sim.Frame) {
	l := Loudness(f)
	s.mu.Lock()
	s.target = l
	s.mu.Unlock()
}

func (s *Sonifier) Process(out [][]float32) {
	s.mu.Lock()
	target := s.target
	s.mu.Unlock()
	s.synth.render(out, target)
}
