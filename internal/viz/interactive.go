package viz

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/experiment"
)

type pickerEntry struct {
	model, preset string
	cfg           *config.Config
}

func (e pickerEntry) describe() string {
	size := ""
	if e.cfg.Size > 0 && e.model != "simple" {
		size = fmt.Sprintf("n=%d ", e.cfg.Size)
	}
	return fmt.Sprintf("%s%s dt=%g", size, e.cfg.Integrator, e.cfg.Dt)
}

// Picker lists the presets and starts a Live view for the chosen one.
type Picker struct {
	reg     *experiment.Registry
	logger  *slog.Logger
	entries []pickerEntry
	cursor  int
	styles  Styles
	err     error

	live    Live
	started bool
}

func NewPicker(reg *experiment.Registry, logger *slog.Logger) Picker {
	var entries []pickerEntry
	for _, model := range config.ListModels() {
		for _, preset := range config.ListPresets(model) {
			entries = append(entries, pickerEntry{model, preset, config.GetPreset(model, preset)})
		}
	}
	return Picker{reg: reg, logger: logger, entries: entries, styles: NewStyles(Themes[0])}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.started {
		next, cmd := p.live.Update(msg)
		p.live = next.(Live)
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.entries)-1 {
			p.cursor++
		}
	case "enter", " ":
		return p.start()
	}
	return p, nil
}

func (p Picker) start() (tea.Model, tea.Cmd) {
	if len(p.entries) == 0 {
		return p, nil
	}
	e := p.entries[p.cursor]
	exp, err := experiment.New(p.reg, e.cfg, p.logger)
	if err != nil {
		p.err = err
		return p, nil
	}
	p.live = NewLive(exp.Simulator(), exp.Model(), e.model+" / "+e.preset, e.cfg.Dt, e.cfg.Steps)
	p.started = true
	return p, p.live.Init()
}

func (p Picker) View() string {
	if p.started {
		return p.live.View()
	}

	var b strings.Builder
	b.WriteString("\n  " + p.styles.Title.Render("SPRINGSIM") + "\n")
	for i, e := range p.entries {
		name := fmt.Sprintf("%-10s %-8s", e.model, e.preset)
		if i == p.cursor {
			b.WriteString("  " + p.styles.Running.Render("▸ "+name) + " " + p.styles.Value.Render(e.describe()) + "\n")
		} else {
			b.WriteString("    " + p.styles.Label.UnsetWidth().Render(name+" "+e.describe()) + "\n")
		}
	}
	if p.err != nil {
		b.WriteString("\n  " + p.styles.Failed.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n  " + p.styles.KeyHint.Render("j/k navigate  enter start  q quit") + "\n")
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// RunPicker opens the preset picker full screen.
func RunPicker(reg *experiment.Registry, logger *slog.Logger) error {
	_, err := tea.NewProgram(NewPicker(reg, logger), tea.WithAltScreen()).Run()
	return err
}
