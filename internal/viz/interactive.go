package viz

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/san-kum/granular/internal/automation"
	"github.com/san-kum/granular/internal/config"
	"github.com/san-kum/granular/internal/experiment"
	"github.com/san-kum/granular/internal/sandbox"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var sceneInfo = map[string]string{
	"empty":  "floor and walls only",
	"ramp":   "a single tilted ramp",
	"funnel": "two slopes with a narrow spout",
	"steps":  "a staircase of ledges",
}

var menuParams = []string{"friction", "restitution", "segment_friction", "gravity", "damping", "substeps", "max_particles"}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// App lets the user pick a scene and tune parameters before opening the
// sandbox.
type App struct {
	state, cursor int
	scenes        []string
	selected      string
	registry      *experiment.Registry
	base          config.Config
	cfg           config.Config
	logger        *log.Logger
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	width, height int
	live          Model
}

func NewInteractiveApp(registry *experiment.Registry, base *config.Config, logger *log.Logger) *App {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &App{
		state:    stateMenu,
		scenes:   registry.ListScenes(),
		registry: registry,
		base:     *base,
		cfg:      *base,
		logger:   logger,
		width:    80,
		height:   24,
	}
}

func (a App) Init() tea.Cmd { return nil }

// RunInteractive opens the scene menu and then the sandbox.
func RunInteractive(app *App) error {
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		if a.state == stateSim {
			return a.forward(msg)
		}
		return a, nil
	default:
		if a.state == stateSim {
			return a.forward(msg)
		}
	}
	return a, nil
}

func (a App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.live.Update(msg)
	a.live = next.(Model)
	return a, cmd
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.state {
	case stateMenu:
		return a.menuKey(msg)
	case stateConfig:
		return a.configKey(msg)
	case stateSim:
		return a.forward(msg)
	}
	return a, nil
}

func (a App) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.scenes)-1 {
			a.cursor++
		}
	case "enter", " ":
		a.selected = a.scenes[a.cursor]
		a.state, a.paramCursor, a.err = stateConfig, 0, nil
	}
	return a, nil
}

func (a App) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	name := menuParams[a.paramCursor]
	tunable := automation.Tunables[name]

	if a.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(a.editBuf, "%g", &val); err == nil {
				tunable.Set(&a.cfg, val)
			}
			a.editing, a.editBuf = false, ""
		case "esc":
			a.editing, a.editBuf = false, ""
		case "backspace":
			if len(a.editBuf) > 0 {
				a.editBuf = a.editBuf[:len(a.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					a.editBuf += string(c)
				}
			}
		}
		return a, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "q", "esc":
		a.state = stateMenu
	case "up", "k":
		if a.paramCursor > 0 {
			a.paramCursor--
		}
	case "down", "j":
		if a.paramCursor < len(menuParams)-1 {
			a.paramCursor++
		}
	case "enter", " ":
		a.editing, a.editBuf = true, formatParam(tunable.Get(&a.cfg))
	case "left", "h":
		tunable.Set(&a.cfg, tunable.Get(&a.cfg)*0.9)
	case "right", "l":
		tunable.Set(&a.cfg, tunable.Get(&a.cfg)*1.1)
	case "0":
		a.cfg = a.base
	case "s":
		return a.start()
	}
	return a, nil
}

func (a App) start() (tea.Model, tea.Cmd) {
	cfg := a.cfg
	exp := experiment.New(experiment.Config{Sim: &cfg, Scene: a.selected})
	if err := exp.Setup(a.registry, nil); err != nil {
		a.err = err
		return a, nil
	}
	a.logger.Info("sandbox started", "scene", a.selected, "integrator", cfg.Physics.Integrator, "broadphase", cfg.Physics.BroadPhase)

	a.live = NewModel(sandbox.NewSession(exp.Controller(), a.logger))
	a.live.width, a.live.height = a.width, a.height
	a.live.resize(a.width-panelWidth-2*canvasLeft, a.height-2*canvasTop)
	a.state = stateSim
	return a, a.live.Init()
}

func formatParam(v float64) string {
	return fmt.Sprintf("%g", v)
}

func (a App) View() string {
	switch a.state {
	case stateMenu:
		return a.menuView()
	case stateConfig:
		return a.configView()
	case stateSim:
		return a.live.View()
	}
	return ""
}

func (a App) menuView() string {
	var b strings.Builder
	b.WriteString("\n  " + GradientText("GRANULAR", CurrentTheme.Primary, CurrentTheme.Secondary) + "\n")
	b.WriteString("  " + dim.Render("pick a starting scene") + "\n\n")
	for i, name := range a.scenes {
		line := fmt.Sprintf("%-8s %s", name, dim.Render(sceneInfo[name]))
		if i == a.cursor {
			b.WriteString("  " + cyan.Render("> ") + white.Render(line) + "\n")
		} else {
			b.WriteString("    " + line + "\n")
		}
	}
	b.WriteString("\n  " + KeyHint.Render("↑↓:Select Enter:Configure Q:Quit") + "\n")
	return b.String()
}

func (a App) configView() string {
	var b strings.Builder
	b.WriteString("\n  " + cyan.Render(strings.ToUpper(a.selected)) + "  " + dim.Render(sceneInfo[a.selected]) + "\n\n")
	for i, name := range menuParams {
		val := formatParam(automation.Tunables[name].Get(&a.cfg))
		if a.editing && i == a.paramCursor {
			val = yellow.Render(a.editBuf + "_")
		}
		line := fmt.Sprintf("%-18s %s", name, val)
		if i == a.paramCursor {
			b.WriteString("  " + magenta.Render("> "+line) + "\n")
		} else {
			b.WriteString("    " + line + "\n")
		}
	}
	if a.err != nil {
		b.WriteString("\n  " + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n  " + KeyHint.Render("↑↓:Select ←→:Adjust Enter:Edit 0:Defaults S:Start Q:Back") + "\n")
	return b.String()
}
