package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/granular/internal/sandbox"
)

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	SandA   lipgloss.Color
	SandB   lipgloss.Color
	Barrier lipgloss.Color
	Emitter lipgloss.Color
}

func hex(c interface{ RGBA() (r, g, b, a uint32) }) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(hexColor(int(r>>8), int(g>>8), int(b>>8)))
}

// Available themes
var (
	ThemeSand = Theme{
		Name:      "sand",
		Primary:   hex(sandbox.SandA),
		Secondary: lipgloss.Color("#00ccff"),
		Text:      hex(sandbox.Text),
		Muted:     lipgloss.Color("#666688"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff4444"),
		SandA:     hex(sandbox.SandA),
		SandB:     hex(sandbox.SandB),
		Barrier:   hex(sandbox.Barrier),
		Emitter:   hex(sandbox.EmitterMark),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"), // Green phosphor
		Secondary: lipgloss.Color("#00cc00"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Success:   lipgloss.Color("#88ff88"),
		Warning:   lipgloss.Color("#ffff00"),
		Error:     lipgloss.Color("#ff0000"),
		SandA:     lipgloss.Color("#00ff00"),
		SandB:     lipgloss.Color("#00bb00"),
		Barrier:   lipgloss.Color("#88ff88"),
		Emitter:   lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff0000"),
		SandA:     lipgloss.Color("#ffffff"),
		SandB:     lipgloss.Color("#bbbbbb"),
		Barrier:   lipgloss.Color("#0088ff"),
		Emitter:   lipgloss.Color("#ff0000"),
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Primary:   lipgloss.Color("#ff6b6b"), // Coral
		Secondary: lipgloss.Color("#feca57"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
		Success:   lipgloss.Color("#5fd068"),
		Warning:   lipgloss.Color("#ffc048"),
		Error:     lipgloss.Color("#ff4757"),
		SandA:     lipgloss.Color("#feca57"),
		SandB:     lipgloss.Color("#ff9f43"),
		Barrier:   lipgloss.Color("#ff9ff3"),
		Emitter:   lipgloss.Color("#ff4757"),
	}

	// Default theme
	CurrentTheme = ThemeSand

	// All available themes
	Themes = []Theme{
		ThemeSand,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeSand
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// inkStyles maps canvas inks to the colours of t.
func inkStyles(t Theme) [numInks]lipgloss.Style {
	var s [numInks]lipgloss.Style
	s[InkNone] = lipgloss.NewStyle()
	s[InkSandA] = lipgloss.NewStyle().Foreground(t.SandA)
	s[InkSandB] = lipgloss.NewStyle().Foreground(t.SandB)
	s[InkBarrier] = lipgloss.NewStyle().Foreground(t.Barrier)
	s[InkEmitter] = lipgloss.NewStyle().Foreground(t.Emitter).Bold(true)
	s[InkPending] = lipgloss.NewStyle().Foreground(t.Warning)
	return s
}
