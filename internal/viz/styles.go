package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles for one theme.
type Styles struct {
	Canvas  lipgloss.Style
	Panel   lipgloss.Style
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Running lipgloss.Style
	Paused  lipgloss.Style
	Failed  lipgloss.Style
	KeyHint lipgloss.Style
	Graph   lipgloss.Style

	sparkHigh, sparkMid, sparkLow lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Canvas: lipgloss.NewStyle().Foreground(t.Mesh).Padding(1, 2),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(40),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Accent).MarginBottom(1),
		Label:   lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		Value:   lipgloss.NewStyle().Foreground(t.Text),
		Running: lipgloss.NewStyle().Bold(true).Foreground(t.Good),
		Paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warn),
		Failed:  lipgloss.NewStyle().Bold(true).Foreground(t.Bad),
		KeyHint: lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		Graph:   lipgloss.NewStyle().Foreground(t.Accent),

		sparkHigh: lipgloss.NewStyle().Foreground(t.Bad),
		sparkMid:  lipgloss.NewStyle().Foreground(t.Warn),
		sparkLow:  lipgloss.NewStyle().Foreground(t.Good),
	}
}

// ProgressBar renders a bar filled to fraction of width.
func (s Styles) ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return s.Graph.Render(strings.Repeat("█", filled)) + s.Label.UnsetWidth().Render(strings.Repeat("░", width-filled))
}

// Sparkline renders the last width values as block glyphs, coloured by
// height.
func (s Styles) Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		norm := (v - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(len(chars)-1, idx))

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			b.WriteString(s.sparkHigh.Render(c))
		case norm > 0.3:
			b.WriteString(s.sparkMid.Render(c))
		default:
			b.WriteString(s.sparkLow.Render(c))
		}
	}
	return b.String()
}
