// Package ui is the terminal viewer: a bubbletea program that renders a
// page through the viewport controller and feeds it mouse and key input.
package ui

import (
	"math"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/pageview/pkg/frame"
	"github.com/recera/pageview/pkg/gesture"
	"github.com/recera/pageview/pkg/viewport"
)


// KeyMap defines the viewer's own shortcuts. Zoom keys go to the gesture
// recognizer.
type KeyMap struct {
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Reset   key.Binding
	Toggle  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Reset, k.Toggle, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.ZoomIn, k.ZoomOut, k.Toggle}, {k.Reset, k.Help, k.Quit}}
}

var DefaultKeyMap = KeyMap{
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	Reset: key.NewBinding(
		key.WithKeys("0", "esc"),
		key.WithHelp("0/esc", "reset"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("z"),
		key.WithHelp("z", "toggle zoom"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

// Messages
type frameMsg time.Time
type runMsg struct{ fn func() }

// Sender delivers messages to the running program. It is filled in once the
// program exists; sends before that are dropped.
type Sender struct {
	send func(tea.Msg)
}

// Bind attaches the sender to a program
func (s *Sender) Bind(p *tea.Program) { s.send = p.Send }

func (s *Sender) post(fn func()) {
	if s.send != nil {
		s.send(runMsg{fn})
	}
}

// Options configures the viewer model
type Options struct {
	Viewport      viewport.Options
	Gesture       gesture.Options
	FrameInterval time.Duration

	// Clock overrides the affordance clock; tests use a fake one
	Clock viewport.Clock
}

// Model represents the viewer state
type Model struct {
	width  int
	height int

	page   *Page
	bounds *viewport.StaticBounds
	ctrl   *viewport.Controller
	rec    *gesture.Recognizer
	frames *frame.Manual

	interval time.Duration
	ticking  bool
	dragging bool

	help     help.Model
	showHelp bool
	quitting bool
}

// NewModel creates a viewer for page. Affordance timers fire through sender.
func NewModel(page *Page, opts Options, sender *Sender) Model {
	w, h := page.Size()
	bounds := &viewport.StaticBounds{
		ViewportSize: viewport.Size{W: float64(w), H: float64(h)},
		ContentSize:  viewport.Size{W: float64(w), H: float64(h)},
	}
	clock := opts.Clock
	if clock == nil {
		clock = viewport.SystemClock{Post: sender.post}
	}
	frames := frame.NewManual()
	ctrl := viewport.New(&opts.Viewport, viewport.Deps{
		Bounds: bounds,
		Frames: frames,
		Clock:  clock,
	})
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = 33 * time.Millisecond
	}
	return Model{
		page:     page,
		bounds:   bounds,
		ctrl:     ctrl,
		rec:      gesture.NewRecognizer(ctrl, &opts.Gesture),
		frames:   frames,
		interval: interval,
		help:     help.New(),
	}
}

// Controller exposes the model's controller
func (m Model) Controller() *viewport.Controller { return m.ctrl }

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, DefaultKeyMap.Help):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
			m.layout()
		default:
			m.rec.Handle(gesture.Event{Kind: gesture.Key, KeyName: msg.String()})
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case frameMsg:
		m.ticking = false
		m.frames.Step()

	case runMsg:
		msg.fn()
	}
	return m.pump()
}

// layout sizes the page area to the window minus the status and help rows
func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	below := 2
	if m.showHelp {
		below = 1 + len(DefaultKeyMap.FullHelp()[0])
	}
	m.bounds.ViewportSize = viewport.Size{
		W: float64(m.width),
		H: math.Max(1, float64(m.height-below)),
	}
	m.ctrl.Resize()
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	ev := gesture.Event{X: float64(msg.X) + 0.5, Y: float64(msg.Y) + 0.5, Modifier: msg.Ctrl}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		ev.Kind, ev.DeltaY = gesture.Wheel, -1
	case msg.Button == tea.MouseButtonWheelDown:
		ev.Kind, ev.DeltaY = gesture.Wheel, 1
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		ev.Kind = gesture.PointerDown
		m.dragging = true
	case msg.Action == tea.MouseActionMotion && m.dragging:
		ev.Kind = gesture.PointerMove
	case msg.Action == tea.MouseActionRelease && m.dragging:
		ev.Kind = gesture.PointerUp
		m.dragging = false
	default:
		return
	}
	m.rec.Handle(ev)
}

// pump keeps exactly one frame tick in flight while frames are pending
func (m Model) pump() (tea.Model, tea.Cmd) {
	if m.ticking || m.frames.Pending() == 0 {
		return m, nil
	}
	m.ticking = true
	return m, tea.Tick(m.interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// View renders the page and status bar
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// Run starts the viewer in the alternate screen
func Run(page *Page, opts Options) error {
	sender := &Sender{}
	p := tea.NewProgram(
		NewModel(page, opts, sender),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	sender.Bind(p)
	_, err := p.Run()
	return err
}
