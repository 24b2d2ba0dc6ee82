package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 300
	frameRate       = 30
	maxPerFrame     = 64
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Live animates a simulator in the terminal. Every frame it ticks the
// simulator perFrame times with step dt and redraws the model.
type Live struct {
	sim     *sim.Simulator
	model   *physics.Model
	initial dynamo.State
	title   string

	dt       float64
	perFrame int
	limit    int

	canvas *Canvas
	cam    *Camera
	opts   SceneOptions
	theme  Theme
	styles Styles

	running  bool
	showHelp bool
	energy   []float64
	speed    []float64
	err      error
}

// NewLive builds a live view. limit > 0 pauses the view after that many
// ticks.
func NewLive(s *sim.Simulator, m *physics.Model, title string, dt float64, limit int) Live {
	cam := NewCamera()
	cam.Fit(m.Positions())
	if m.Kind() == physics.KindSimple {
		cam.Yaw, cam.Pitch = 0, 0
		cam.Fit([]dynamo.Vec3{{X: -1, Y: -1}, {X: 1, Y: 1}})
	}

	l := Live{
		sim:      s,
		model:    m,
		initial:  m.State(),
		title:    title,
		dt:       dt,
		perFrame: 1,
		limit:    limit,
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		cam:      cam,
		opts:     DefaultSceneOptions(),
		theme:    Themes[0],
		styles:   NewStyles(Themes[0]),
		running:  true,
		energy:   make([]float64, 0, historyCapacity),
		speed:    make([]float64, 0, historyCapacity),
	}
	l.record()
	return l
}

func (l Live) Init() tea.Cmd {
	return tick()
}

func (l Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return l, tea.Quit
		case " ":
			l.running = !l.running && l.err == nil
		case ".":
			if !l.running {
				l.advance(1)
			}
		case "r":
			l.reset()
		case "]":
			l.perFrame = min(maxPerFrame, l.perFrame*2)
		case "[":
			l.perFrame = max(1, l.perFrame/2)
		case "left", "h":
			l.cam.Rotate(-0.1, 0)
		case "right", "l":
			l.cam.Rotate(0.1, 0)
		case "up", "k":
			l.cam.Rotate(0, 0.1)
		case "down", "j":
			l.cam.Rotate(0, -0.1)
		case "+", "=":
			l.cam.ZoomIn()
		case "-", "_":
			l.cam.ZoomOut()
		case "f":
			l.cam.Fit(l.model.Positions())
		case "1":
			l.opts.Structural = !l.opts.Structural
		case "2":
			l.opts.Shear = !l.opts.Shear
		case "3":
			l.opts.Flex = !l.opts.Flex
		case "t":
			l.theme = NextTheme(l.theme)
			l.styles = NewStyles(l.theme)
		case "?":
			l.showHelp = !l.showHelp
		}
	case TickMsg:
		if l.running {
			l.advance(l.perFrame)
		}
		return l, tick()
	}
	return l, nil
}

// advance ticks the simulator up to n times, stopping at the limit or on the
// first failed step.
func (l *Live) advance(n int) {
	for i := 0; i < n; i++ {
		if l.limit > 0 && l.sim.Steps() >= l.limit {
			l.running = false
			break
		}
		if err := l.sim.Tick(l.dt); err != nil {
			l.err = err
			l.running = false
			break
		}
	}
	l.record()
}

func (l *Live) record() {
	x := l.model.State()
	l.energy = appendCapped(l.energy, l.model.Energy(x))

	fastest := 0.0
	for i := 0; i < l.model.NumParticles(); i++ {
		v, _ := x.Velocity(i)
		fastest = math.Max(fastest, r3.Norm(v))
	}
	l.speed = appendCapped(l.speed, fastest)
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (l *Live) reset() {
	if err := l.model.SetState(l.initial); err != nil {
		l.err = err
		return
	}
	l.sim.Reset()
	l.err = nil
	l.running = true
	l.energy = l.energy[:0]
	l.speed = l.speed[:0]
	l.record()
}

// Err returns the error that stopped the animation, if any.
func (l Live) Err() error { return l.err }

func (l Live) status() string {
	switch {
	case l.err != nil:
		return l.styles.Failed.Render("FAILED")
	case l.limit > 0 && l.sim.Steps() >= l.limit:
		return l.styles.Paused.Render("DONE")
	case !l.running:
		return l.styles.Paused.Render("PAUSED")
	}
	return l.styles.Running.Render("RUNNING")
}

func (l Live) View() string {
	l.canvas.Clear()
	Draw(l.canvas, l.cam, l.model, l.opts)
	canvasView := l.styles.Canvas.Render(l.canvas.String())

	var s strings.Builder
	s.WriteString(l.styles.Title.Render(strings.ToUpper(l.title)) + "\n")
	s.WriteString(l.status() + "\n\n")

	row := func(label, value string) {
		s.WriteString(l.styles.Label.Render(label) + l.styles.Value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", l.sim.Time()))
	row("Step", fmt.Sprintf("%d", l.sim.Steps()))
	row("Speed", fmt.Sprintf("%dx (dt %g)", l.perFrame, l.dt))
	row("Particles", fmt.Sprintf("%d", l.model.NumParticles()))
	row("Springs", fmt.Sprintf("%d", l.model.NumSprings()))
	if len(l.energy) > 0 {
		e := l.energy[len(l.energy)-1]
		row("Energy", fmt.Sprintf("%.4f", e))
	}
	if l.limit > 0 {
		s.WriteString("\n" + l.styles.ProgressBar(float64(l.sim.Steps())/float64(l.limit), 24) + "\n")
	}

	if len(l.energy) > 1 {
		chart := asciigraph.Plot(l.energy, asciigraph.Height(5), asciigraph.Width(28), asciigraph.Caption("energy"))
		s.WriteString("\n" + l.styles.Graph.Render(chart) + "\n")
	}
	s.WriteString("\n" + l.styles.Label.Render("max speed") + "\n" + l.styles.Sparkline(l.speed, 28) + "\n")

	if l.err != nil {
		s.WriteString("\n" + l.styles.Failed.Render(wrap(l.err.Error(), 34)) + "\n")
	}
	s.WriteString(l.styles.KeyHint.Render("space pause  . step  r reset\n[ ] speed  arrows orbit  +/- zoom\nt theme  ? help  q quit"))

	body := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, l.styles.Panel.Render(s.String()))
	if l.showHelp {
		return helpText + "\n" + body
	}
	return body
}

const helpText = `
  space   pause or resume
  .       single step while paused
  r       restore the initial state
  [ ]     halve or double ticks per frame
  arrows  orbit the camera (also h j k l)
  + -     zoom
  f       refit the view
  1 2 3   toggle structural, shear and flex springs
  t       cycle themes
  q       quit
`

func wrap(s string, width int) string {
	var b strings.Builder
	for len(s) > width {
		b.WriteString(s[:width] + "\n")
		s = s[width:]
	}
	b.WriteString(s)
	return b.String()
}

// RunLive runs a Live view full screen until the user quits.
func RunLive(l Live) error {
	_, err := tea.NewProgram(l, tea.WithAltScreen()).Run()
	return err
}
