package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/sandbox"
	"github.com/san-kum/granular/internal/world"
)

const (
	defaultCols     = 80
	defaultRows     = 40
	panelWidth      = 50
	historyCapacity = 600

	// The canvas is drawn inside canvasStyle's padding.
	canvasLeft = 2
	canvasTop  = 1

	recordFile = "granular.gif"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(canvasTop, canvasLeft)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the bubbletea sandbox: a braille view of the world next to a
// status panel.
type Model struct {
	session *sandbox.Session
	canvas  *Canvas
	scale   float64 // canvas dots per world unit

	frame         int
	energy        []float64
	grains        []float64
	width, height int

	notice string

	cursor    geom.Vec2
	hasCursor bool

	recording bool
	frames    []*image.Paletted
	showHelp  bool
}

func NewModel(s *sandbox.Session) Model {
	m := Model{
		session: s,
		energy:  make([]float64, 0, historyCapacity),
		grains:  make([]float64, 0, historyCapacity),
	}
	m.resize(defaultCols, defaultRows)
	return m
}

// Run starts the sandbox in the alternate screen with mouse support.
func Run(s *sandbox.Session) error {
	p := tea.NewProgram(NewModel(s), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// resize fits a square world view into cols x rows cells. A braille cell is
// two dots wide and four high, and roughly twice as tall as wide on screen,
// so a square view uses half as many rows as columns.
func (m *Model) resize(cols, rows int) {
	cols = max(20, min(cols, 2*rows))
	rows = cols / 2
	m.canvas = NewCanvas(cols, rows)

	cfg := m.session.Controller().Config()
	m.scale = float64(m.canvas.DotsWide()) / cfg.Screen.Width
	if s := float64(m.canvas.DotsHigh()) / cfg.Screen.Height; s < m.scale {
		m.scale = s
	}
}

// toWorld maps a terminal cell to world coordinates.
func (m *Model) toWorld(x, y int) geom.Vec2 {
	dx := float64((x-canvasLeft)*2) + 1
	dy := float64((y-canvasTop)*4) + 2
	return geom.V(dx/m.scale, dy/m.scale)
}

func (m *Model) toDots(p geom.Vec2) (int, int) {
	return int(math.Floor(p.X * m.scale)), int(math.Floor(p.Y * m.scale))
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize(msg.Width-panelWidth-2*canvasLeft, msg.Height-2*canvasTop)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case TickMsg:
		m.step()
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	key := msg.String()

	in := s.Input()
	if in.Active() {
		switch key {
		case "enter":
			n, err := s.Submit()
			if err != nil {
				m.notice = "invalid quantity"
			} else {
				m.notice = fmt.Sprintf("emitted %d grains", n)
			}
			in.Cancel()
		case "esc":
			in.Cancel()
		case "backspace":
			in.Backspace()
		case "ctrl+c":
			return m, tea.Quit
		default:
			in.Type(msg.Runes...)
		}
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		if m.recording {
			m.saveGIF()
		}
		return m, tea.Quit
	case " ":
		s.Toggle()
	case "left", "h":
		s.Emitter().MoveLeft()
	case "right", "l":
		s.Emitter().MoveRight()
	case "e":
		n := s.EmitBatch(s.Controller().Config().Emitter.Batch)
		m.notice = fmt.Sprintf("emitted %d grains", n)
	case "r":
		s.Reset()
		m.energy = m.energy[:0]
		m.grains = m.grains[:0]
		m.notice = "world reset"
	case "d":
		s.DrawTool().Toggle()
	case "t":
		NextTheme()
	case "g":
		if m.recording {
			m.saveGIF()
			m.recording = false
			m.frames = nil
		} else {
			m.recording = true
			m.frames = make([]*image.Paletted, 0)
		}
	case "?":
		m.showHelp = !m.showHelp
	case "i", "enter":
		in.SetActive(true)
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			in.SetActive(true)
			in.Type(msg.Runes...)
		}
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := m.toWorld(msg.X, msg.Y)
	m.cursor, m.hasCursor = p, true

	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionRelease {
		return
	}
	switch msg.Action {
	case tea.MouseActionPress:
		m.session.BeginSegment(p)
	case tea.MouseActionRelease:
		ok, err := m.session.EndSegment(p)
		if err != nil {
			m.notice = err.Error()
		} else if ok {
			m.notice = "segment added"
		}
	}
}

// step advances the session and records telemetry history.
func (m *Model) step() {
	f, ran := m.session.Tick()
	if !ran {
		return
	}
	m.frame++
	m.energy = appendCapped(m.energy, world.KineticEnergy(f.Grains))
	m.grains = appendCapped(m.grains, float64(len(f.Grains)))
}

func appendCapped(xs []float64, v float64) []float64 {
	if len(xs) >= historyCapacity {
		copy(xs, xs[1:])
		xs = xs[:len(xs)-1]
	}
	return append(xs, v)
}

func (m *Model) draw() {
	c := m.session.Controller()
	m.canvas.Clear()

	for _, s := range c.Segments() {
		x0, y0 := m.toDots(s.A)
		x1, y1 := m.toDots(s.B)
		m.canvas.DrawLine(x0, y0, x1, y1, InkBarrier)
	}

	r := int(c.Config().Grain.Radius * m.scale)
	for _, g := range c.Grains() {
		x, y := m.toDots(g.Pos)
		ink := InkSandA
		if g.Tag == world.TagSandB {
			ink = InkSandB
		}
		m.canvas.FillDisc(x, y, r, ink)
	}

	ex, ey := m.toDots(m.session.Emitter().Pos())
	m.canvas.FillDisc(ex, ey, 1, InkEmitter)

	if start, ok := m.session.DrawTool().Pending(); ok && m.hasCursor {
		x0, y0 := m.toDots(start)
		x1, y1 := m.toDots(m.cursor)
		m.canvas.DrawLine(x0, y0, x1, y1, InkPending)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.Render(inkStyles(CurrentTheme)))
	panel := PanelStyle.Render(m.panel())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel)
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

func (m Model) panel() string {
	s := m.session
	c := s.Controller()
	cfg := c.Config()
	st := c.LastStats()
	t := CurrentTheme

	var b strings.Builder
	b.WriteString(GradientText("GRANULAR SANDBOX", t.Primary, t.Secondary) + "\n\n")

	status := StatusPaused.Render("PAUSED")
	if s.Running() {
		status = StatusRunning.Render(AnimatedSpinner(m.frame) + " RUNNING")
	}
	if s.DrawTool().Enabled() {
		status += "  " + lipgloss.NewStyle().Foreground(t.Warning).Render("DRAW")
	}
	if m.recording {
		status += "  " + StatusRecording.Render("● REC")
	}
	b.WriteString(status + "\n\n")

	row := func(label, value string) {
		b.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", c.Time()))
	row("Grains", fmt.Sprintf("%d / %d", c.Len(), cfg.Limits.MaxParticles))
	b.WriteString(ProgressBar(float64(c.Len())/float64(cfg.Limits.MaxParticles), 30) + "\n")
	row("Segments", fmt.Sprintf("%d", len(c.Segments())))
	row("Contacts", fmt.Sprintf("%d", st.Contacts))
	row("Overlap", fmt.Sprintf("%.3f", st.MaxPenetration))
	row("Emitter", fmt.Sprintf("x=%.0f", s.Emitter().X()))
	energy := 0.0
	if len(m.energy) > 0 {
		energy = m.energy[len(m.energy)-1]
	}
	row("Energy", fmt.Sprintf("%.2f", energy))

	if len(m.energy) > 1 {
		data := m.energy
		if len(data) > 120 {
			data = data[len(data)-120:]
		}
		chart := asciigraph.Plot(data, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		b.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.grains) > 0 {
		b.WriteString(SparklineChart(m.grains, 30) + "\n")
	}

	b.WriteString("\n")
	box := InputStyle
	if m.session.Input().Active() {
		box = InputActiveStyle
	}
	b.WriteString(box.Render("Sand qty: "+m.session.Input().Text()) + "\n")
	if m.notice != "" {
		b.WriteString(Subtle.Render(m.notice) + "\n")
	}

	b.WriteString("\n" + Separator(30) + "\n")
	b.WriteString(KeyHint.Render("SP:Start/Stop R:Reset Q:Quit\n←→:Emitter E:Batch 0-9:Qty\nD:Draw T:Theme G:Record ?:Help"))
	return b.String()
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Start/stop pouring       ║
║  ←/→ H/L  - Move the emitter         ║
║  E        - Emit a batch             ║
║  0-9 I    - Type a quantity, Enter   ║
║  D        - Toggle draw mode         ║
║  Mouse    - Drag to draw a segment   ║
║  R        - Reset the world          ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func (m *Model) captureFrame() {
	charW, charH := 8, 16
	imgW, imgH := m.canvas.Width*charW, m.canvas.Height*charH
	palette := color.Palette{sandbox.Background, sandbox.SandA, sandbox.SandB, sandbox.Barrier, sandbox.EmitterMark, sandbox.Text}
	inkIndex := [numInks]uint8{0, 1, 2, 3, 4, 5}
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), palette)

	dotW, dotH := charW/2, charH/4
	for y := 0; y < m.canvas.DotsHigh(); y++ {
		for x := 0; x < m.canvas.DotsWide(); x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			idx := inkIndex[m.canvas.Ink[y/4][x/2]]
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, idx)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(recordFile)
	if err != nil {
		m.notice = err.Error()
		return
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		m.notice = err.Error()
		return
	}
	m.notice = "saved " + recordFile
}
