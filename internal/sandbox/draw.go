package sandbox

import (
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/world"
)

// SegmentMaker is the part of the controller the draw tool needs.
type SegmentMaker interface {
	CreateSegment(a, b geom.Vec2, thickness float64) (world.SegmentHandle, error)
}

// DrawTool turns a press and release inside the canvas into a segment.
// Points at or below the canvas height belong to the toolbar and are
// ignored.
type DrawTool struct {
	canvasHeight float64
	thickness    float64

	enabled bool
	drawing bool
	start   geom.Vec2
}

func NewDrawTool(canvasHeight, thickness float64) *DrawTool {
	return &DrawTool{canvasHeight: canvasHeight, thickness: thickness}
}

func (d *DrawTool) Enabled() bool { return d.enabled }

// Toggle flips draw mode and drops any segment in progress.
func (d *DrawTool) Toggle() {
	d.enabled = !d.enabled
	d.drawing = false
}

func (d *DrawTool) SetEnabled(on bool) {
	d.enabled = on
	if !on {
		d.drawing = false
	}
}

// Pending returns the start of the segment being drawn, if any.
func (d *DrawTool) Pending() (geom.Vec2, bool) {
	return d.start, d.drawing
}

func (d *DrawTool) inCanvas(p geom.Vec2) bool {
	return p.Y < d.canvasHeight
}

// Begin starts a segment at p. It reports whether a segment was started.
func (d *DrawTool) Begin(p geom.Vec2) bool {
	if !d.enabled || !d.inCanvas(p) {
		return false
	}
	d.drawing = true
	d.start = p
	return true
}

// End finishes the pending segment at p. Releasing outside the canvas
// abandons it. ok reports whether a segment was created.
func (d *DrawTool) End(p geom.Vec2, m SegmentMaker) (h world.SegmentHandle, ok bool, err error) {
	if !d.drawing {
		return h, false, nil
	}
	d.drawing = false
	if !d.inCanvas(p) {
		return h, false, nil
	}
	h, err = m.CreateSegment(d.start, p, d.thickness)
	if err != nil {
		return h, false, err
	}
	return h, true, nil
}
