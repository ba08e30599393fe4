// Package sandbox holds the interactive state shared by the terminal and
// window front ends: the emitter, the segment drawing tool and the
// running flag. It contains no rendering or input code.
package sandbox

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/sim"
)

var ErrInvalidQuantity = errors.New("sandbox: invalid quantity")

// MaxQuantity bounds a single manual batch.
const MaxQuantity = 100000

type Session struct {
	ctrl    *sim.Controller
	emitter *Emitter
	draw    *DrawTool
	toolbar Toolbar
	input   QuantityInput
	logger  *log.Logger
	dt      float64

	running bool
	last    sim.Frame
}

// NewSession wraps c. A nil logger discards messages.
func NewSession(c *sim.Controller, logger *log.Logger) *Session {
	cfg := c.Config()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		ctrl:    c,
		emitter: NewEmitter(&cfg),
		draw:    NewDrawTool(cfg.Screen.Height, cfg.Segment.Thickness),
		toolbar: NewToolbar(&cfg),
		logger:  logger,
		dt:      cfg.Dt(),
	}
}

func (s *Session) Controller() *sim.Controller { return s.ctrl }
func (s *Session) Emitter() *Emitter           { return s.emitter }
func (s *Session) DrawTool() *DrawTool         { return s.draw }
func (s *Session) Toolbar() Toolbar            { return s.toolbar }
func (s *Session) Input() *QuantityInput       { return &s.input }
func (s *Session) Running() bool               { return s.running }
func (s *Session) LastFrame() sim.Frame        { return s.last }

func (s *Session) Start() {
	if !s.running {
		s.running = true
		s.logger.Info("simulation started")
	}
}

func (s *Session) Stop() {
	if s.running {
		s.running = false
		s.logger.Info("simulation paused")
	}
}

func (s *Session) Toggle() {
	if s.running {
		s.Stop()
	} else {
		s.Start()
	}
}

// Reset clears the world. The running flag and emitter position are kept.
func (s *Session) Reset() {
	s.ctrl.Reset()
	s.last = sim.Frame{}
	s.logger.Info("world reset")
}

// Tick advances one presentation frame. While running it pours one grain
// from the emitter and runs a controller frame; paused ticks do nothing and
// report false.
func (s *Session) Tick() (sim.Frame, bool) {
	if !s.running {
		return s.last, false
	}
	s.ctrl.Emit(s.emitter.Pos(), 1)
	s.last = s.ctrl.Frame(s.dt)
	return s.last, true
}

// EmitBatch pours n grains at once, paused or not, and returns how many
// were created.
func (s *Session) EmitBatch(n int) int {
	if n <= 0 {
		return 0
	}
	created := s.ctrl.Emit(s.emitter.Pos(), n)
	s.logger.Info("grains emitted", "requested", n, "created", created)
	return created
}

// EmitText parses a typed quantity and emits it.
func (s *Session) EmitText(text string) (int, error) {
	n, err := ParseQuantity(text)
	if err != nil {
		s.logger.Error("invalid sand quantity", "input", text)
		return 0, err
	}
	return s.EmitBatch(n), nil
}

func (s *Session) BeginSegment(p geom.Vec2) bool {
	return s.draw.Begin(p)
}

func (s *Session) EndSegment(p geom.Vec2) (bool, error) {
	start, _ := s.draw.Pending()
	_, ok, err := s.draw.End(p, s.ctrl)
	if err != nil {
		s.logger.Warn("segment rejected", "err", err)
		return false, err
	}
	if ok {
		s.logger.Info("segment drawn", "from", start, "to", p)
	}
	return ok, nil
}

// ParseQuantity accepts a positive decimal count of at most MaxQuantity.
func ParseQuantity(text string) (int, error) {
	text = strings.TrimSpace(text)
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, text)
	}
	if n <= 0 || n > MaxQuantity {
		return 0, fmt.Errorf("%w: %d out of range", ErrInvalidQuantity, n)
	}
	return n, nil
}

// Press handles a pointer press at p in window coordinates. Toolbar presses
// trigger their action; canvas presses start a segment in draw mode. Any
// press outside the quantity box deactivates it.
func (s *Session) Press(p geom.Vec2) Action {
	a := s.toolbar.Hit(p)
	s.input.SetActive(a == ActionInput)
	switch a {
	case ActionStart:
		s.Start()
	case ActionStop:
		s.Stop()
	case ActionReset:
		s.Reset()
	case ActionDraw:
		s.draw.Toggle()
		s.logger.Debug("draw mode", "enabled", s.draw.Enabled())
	case ActionNone:
		if !s.toolbar.Contains(p) {
			s.BeginSegment(p)
		}
	}
	return a
}

// Release completes a segment started by Press.
func (s *Session) Release(p geom.Vec2) (bool, error) {
	return s.EndSegment(p)
}

// Submit emits the quantity typed into the input box and clears it.
func (s *Session) Submit() (int, error) {
	if !s.input.Active() {
		return 0, nil
	}
	return s.EmitText(s.input.Take())
}
