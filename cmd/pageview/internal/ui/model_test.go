package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/pageview/pkg/viewport"
)

type nopTimer struct{}

func (nopTimer) Stop() bool { return true }

type nopClock struct{}

func (nopClock) AfterFunc(time.Duration, func()) viewport.Timer { return nopTimer{} }

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(GridPage(80, 40), Options{Clock: nopClock{}}, &Sender{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 22})
	if got := m.bounds.ViewportSize; got.W != 40 || got.H != 20 {
		t.Fatalf("viewport = %+v, want 40x20", got)
	}
	return m
}

func TestKeysZoom(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, runes("+"))
	if got := m.ctrl.Scale(); got != 1.2 {
		t.Fatalf("scale after + = %v, want 1.2", got)
	}
	if !strings.Contains(m.View(), "120%") {
		t.Error("status bar missing zoom level")
	}
	if !strings.Contains(m.View(), "reset view") {
		t.Error("reset affordance not shown")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.ctrl.Scale(); got != 1 {
		t.Errorf("scale after esc = %v, want 1", got)
	}
}

func TestDragFlingSettles(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, runes("+"))

	m, _ = update(t, m, tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: 15, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if got := m.ctrl.State().PanX; got != 5 {
		t.Fatalf("pan after drag = %v, want 5", got)
	}
	m, cmd := update(t, m, tea.MouseMsg{X: 15, Y: 10, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.ctrl.Phase() != viewport.Momentum || cmd == nil {
		t.Fatalf("release: phase %v cmd %v, want momentum with a tick", m.ctrl.Phase(), cmd)
	}

	// a tick is already in flight
	if _, cmd := update(t, m, runes("?")); cmd != nil {
		t.Error("second tick scheduled while one is pending")
	}

	for i := 0; cmd != nil; i++ {
		if i > 500 {
			t.Fatal("momentum did not settle")
		}
		m, cmd = update(t, m, frameMsg(time.Now()))
	}
	st := m.ctrl.State()
	if st.Phase != viewport.Idle || st.PanX != 28 {
		t.Errorf("settled state = %+v, want idle at pan 28", st)
	}
}

func TestWheelZoomsAtPointer(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.MouseMsg{X: 30, Y: 10, Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	if got := m.ctrl.Scale(); got != 1.1 {
		t.Errorf("scale after wheel up = %v, want 1.1", got)
	}
	m, _ = update(t, m, tea.MouseMsg{X: 30, Y: 10, Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if got := m.ctrl.Scale(); got != 1 {
		t.Errorf("scale after wheel down = %v, want 1", got)
	}
}

func TestRunMsgAndQuit(t *testing.T) {
	m := newTestModel(t)
	ran := false
	m, _ = update(t, m, runMsg{func() { ran = true }})
	if !ran {
		t.Error("posted callback not run")
	}
	m, cmd := update(t, m, runes("q"))
	if cmd == nil || !m.quitting || m.View() != "" {
		t.Error("q did not quit")
	}
}

func TestHelpShrinksPage(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, runes("?"))
	if got := m.bounds.ViewportSize.H; got != 18 {
		t.Errorf("page height with help = %v, want 18", got)
	}
}

func TestPage(t *testing.T) {
	p := TextPage("ab\n\tc\n")
	if w, h := p.Size(); w != 5 || h != 2 {
		t.Errorf("size = %dx%d, want 5x2", w, h)
	}
	if p.At(4, 1) != 'c' || p.At(9, 9) != ' ' || p.At(-1, 0) != ' ' {
		t.Error("At returned wrong runes")
	}
	g := GridPage(41, 11)
	if g.At(0, 0) != '+' || g.At(20, 10) != '+' || g.At(5, 0) != '-' || g.At(0, 3) != '|' {
		t.Error("grid lines misplaced")
	}
}
