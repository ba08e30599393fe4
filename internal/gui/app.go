// Package gui is the desktop front end: an ebiten window with the sandbox
// canvas on top and the toolbar strip below it.
package gui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/sandbox"
	"github.com/san-kum/granular/internal/world"
)

const (
	repeatDelay    = 15
	repeatInterval = 3
	noticeTicks    = 120
)

// Game implements ebiten.Game over a sandbox session. Update and Draw both
// run on ebiten's game goroutine, so the session needs no locking.
type Game struct {
	session *sandbox.Session
	logger  *log.Logger

	width, height int
	canvasHeight  int

	sprites map[world.Tag]*ebiten.Image
	chars   []rune

	notice      string
	noticeTicks int
}

// NewGame sizes the window from the session's configuration: the canvas plus
// the toolbar strip. A nil logger discards messages.
func NewGame(s *sandbox.Session, logger *log.Logger) *Game {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cfg := s.Controller().Config()
	return &Game{
		session:      s,
		logger:       logger,
		width:        int(cfg.Screen.Width),
		canvasHeight: int(cfg.Screen.Height),
		height:       int(cfg.Screen.Height) + cfg.Screen.UIHeight,
	}
}

// Run opens the window and blocks until it is closed.
func Run(s *sandbox.Session, logger *log.Logger) error {
	g := NewGame(s, logger)
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle("granular")
	g.logger.Info("window opened", "width", g.width, "height", g.height)
	return ebiten.RunGame(g)
}

func (g *Game) Update() error {
	g.handleKeys()
	g.handleMouse()
	g.session.Tick()
	if g.noticeTicks > 0 {
		g.noticeTicks--
	}
	return nil
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

func (g *Game) setNotice(format string, args ...interface{}) {
	g.notice = fmt.Sprintf(format, args...)
	g.noticeTicks = noticeTicks
}

// repeating reports a key press on its first tick and then at a fixed rate
// while held.
func repeating(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d == 1 || (d >= repeatDelay && (d-repeatDelay)%repeatInterval == 0)
}

func (g *Game) handleKeys() {
	s := g.session
	in := s.Input()

	if in.Active() {
		g.chars = ebiten.AppendInputChars(g.chars[:0])
		in.Type(g.chars...)
		switch {
		case repeating(ebiten.KeyBackspace):
			in.Backspace()
		case inpututil.IsKeyJustPressed(ebiten.KeyEnter), inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter):
			n, err := s.Submit()
			if err != nil {
				g.setNotice("invalid quantity")
				return
			}
			g.setNotice("emitted %d grains", n)
		case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
			in.Cancel()
		}
		return
	}

	if repeating(ebiten.KeyLeft) {
		s.Emitter().MoveLeft()
	}
	if repeating(ebiten.KeyRight) {
		s.Emitter().MoveRight()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		s.Toggle()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		s.DrawTool().Toggle()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		s.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		n := s.EmitBatch(s.Controller().Config().Emitter.Batch)
		g.setNotice("emitted %d grains", n)
	}
}

func (g *Game) cursor() geom.Vec2 {
	x, y := ebiten.CursorPosition()
	return geom.V(float64(x), float64(y))
}

func (g *Game) handleMouse() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.session.Press(g.cursor())
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if _, err := g.session.Release(g.cursor()); err != nil {
			g.setNotice("segment rejected")
		}
	}
}
