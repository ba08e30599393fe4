package gui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/san-kum/granular/internal/sandbox"
	"github.com/san-kum/granular/internal/world"
)

const glyphWidth = 7

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(sandbox.Background)
	g.drawSegments(screen)
	g.drawGrains(screen)
	g.drawPending(screen)
	g.drawEmitter(screen)
	g.drawToolbar(screen)
	g.drawStatus(screen)
}

// sprite returns a pre-rendered disc for tag. Grains are drawn as image
// copies so ebiten can batch them into a few draw calls.
func (g *Game) sprite(tag world.Tag, radius float64) *ebiten.Image {
	if img, ok := g.sprites[tag]; ok {
		return img
	}
	if g.sprites == nil {
		g.sprites = make(map[world.Tag]*ebiten.Image)
	}
	size := int(math.Ceil(2*radius)) + 2
	img := ebiten.NewImage(size, size)
	c := float32(size) / 2
	vector.DrawFilledCircle(img, c, c, float32(radius), sandbox.TagColor(tag), true)
	g.sprites[tag] = img
	return img
}

func (g *Game) drawGrains(screen *ebiten.Image) {
	var op ebiten.DrawImageOptions
	for _, gr := range g.session.Controller().Grains() {
		img := g.sprite(gr.Tag, gr.Radius)
		half := float64(img.Bounds().Dx()) / 2
		op.GeoM.Reset()
		op.GeoM.Translate(gr.Pos.X-half, gr.Pos.Y-half)
		screen.DrawImage(img, &op)
	}
}

func (g *Game) drawSegments(screen *ebiten.Image) {
	for _, seg := range g.session.Controller().Segments() {
		w := float32(math.Max(seg.Thickness, 1))
		vector.StrokeLine(screen, float32(seg.A.X), float32(seg.A.Y), float32(seg.B.X), float32(seg.B.Y), w, sandbox.Barrier, true)
	}
}

func (g *Game) drawPending(screen *ebiten.Image) {
	start, ok := g.session.DrawTool().Pending()
	if !ok {
		return
	}
	p := g.cursor()
	faded := sandbox.Barrier
	faded.A = 120
	vector.StrokeLine(screen, float32(start.X), float32(start.Y), float32(p.X), float32(p.Y), 1, faded, true)
}

func (g *Game) drawEmitter(screen *ebiten.Image) {
	p := g.session.Emitter().Pos()
	vector.DrawFilledRect(screen, float32(p.X-3), float32(p.Y), 6, 6, sandbox.EmitterMark, false)
}

func (g *Game) drawToolbar(screen *ebiten.Image) {
	s := g.session
	tb := s.Toolbar()
	for _, b := range tb.Buttons() {
		fill := sandbox.ButtonFill
		if (b.Action == sandbox.ActionStart && s.Running()) || (b.Action == sandbox.ActionDraw && s.DrawTool().Enabled()) {
			fill = sandbox.InputActive
		}
		r := b.Rect
		vector.DrawFilledRect(screen, float32(r.X+2), float32(r.Y+2), float32(r.W-4), float32(r.H-4), fill, false)
		label := b.Action.String()
		x := int(r.X+r.W/2) - len(label)*glyphWidth/2
		y := int(r.Y+r.H/2) + 4
		text.Draw(screen, label, basicfont.Face7x13, x, y, sandbox.Text)
	}

	r := tb.InputRect()
	fill := sandbox.Input
	if s.Input().Active() {
		fill = sandbox.InputActive
	}
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), fill, false)
	label := "Qty: " + s.Input().Text()
	if s.Input().Active() {
		label += "_"
	}
	text.Draw(screen, label, basicfont.Face7x13, int(r.X)+6, int(r.Y+r.H/2)+4, sandbox.Text)
}

func (g *Game) drawStatus(screen *ebiten.Image) {
	c := g.session.Controller()
	status := fmt.Sprintf("grains %d/%d  fps %.0f", c.Len(), c.Config().Limits.MaxParticles, ebiten.ActualFPS())
	if g.session.DrawTool().Enabled() {
		status += "  [draw]"
	}
	text.Draw(screen, status, basicfont.Face7x13, 10, 20, color.RGBA{240, 240, 240, 200})
	if g.noticeTicks > 0 {
		text.Draw(screen, g.notice, basicfont.Face7x13, 10, 38, sandbox.Text)
	}
}
