package sandbox

import (
	"github.com/san-kum/granular/internal/config"
	"github.com/san-kum/granular/internal/geom"
)

type Action int

const (
	ActionNone Action = iota
	ActionStart
	ActionStop
	ActionReset
	ActionDraw
	ActionInput
)

func (a Action) String() string {
	switch a {
	case ActionStart:
		return "Start"
	case ActionStop:
		return "Stop"
	case ActionReset:
		return "Reset"
	case ActionDraw:
		return "Draw"
	case ActionInput:
		return "Input"
	}
	return "None"
}

// Rect is an axis-aligned screen rectangle.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(p geom.Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

type Button struct {
	Action Action
	Rect   Rect
}

const (
	buttonWidth = 180
	inputWidth  = 180
)

var buttonActions = []Action{ActionStart, ActionStop, ActionReset, ActionDraw}

// Toolbar is the strip below the canvas: four buttons from the left and the
// quantity input on the right.
type Toolbar struct {
	Top, Width, Height float64
}

func NewToolbar(cfg *config.Config) Toolbar {
	return Toolbar{Top: cfg.Screen.Height, Width: cfg.Screen.Width, Height: float64(cfg.Screen.UIHeight)}
}

func (t Toolbar) Contains(p geom.Vec2) bool { return p.Y >= t.Top }

func (t Toolbar) Buttons() []Button {
	out := make([]Button, 0, len(buttonActions))
	for i, a := range buttonActions {
		out = append(out, Button{Action: a, Rect: Rect{X: float64(i * buttonWidth), Y: t.Top, W: buttonWidth, H: t.Height}})
	}
	return out
}

// InputRect is the quantity box, inset from the toolbar edges.
func (t Toolbar) InputRect() Rect {
	return Rect{X: t.Width - inputWidth, Y: t.Top + 5, W: inputWidth - 10, H: t.Height - 10}
}

// Hit returns the toolbar action under p. The input column takes priority
// over any button it overlaps.
func (t Toolbar) Hit(p geom.Vec2) Action {
	if !t.Contains(p) {
		return ActionNone
	}
	if p.X >= t.Width-inputWidth && p.X <= t.Width {
		return ActionInput
	}
	if p.X < 0 {
		return ActionNone
	}
	i := int(p.X / buttonWidth)
	if i >= len(buttonActions) {
		return ActionNone
	}
	return buttonActions[i]
}
