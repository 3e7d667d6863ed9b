package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recera/pageview/pkg/viewport"
)

// Style definitions
var (
	primaryColor = lipgloss.Color("#3b82f6")
	mutedColor   = lipgloss.Color("#94a3b8")
	warningColor = lipgloss.Color("#f59e0b")

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor).
			Padding(0, 1)

	phaseStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	resetStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true).
			Padding(0, 1)
)

// renderPage samples the page through the current transform, one content
// cell per screen cell centre
func (m Model) renderPage() string {
	vw := int(m.bounds.ViewportSize.W)
	vh := int(m.bounds.ViewportSize.H)
	var b strings.Builder
	b.Grow((vw + 1) * vh)
	for y := 0; y < vh; y++ {
		for x := 0; x < vw; x++ {
			c := m.ctrl.ScreenToContent(viewport.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5})
			b.WriteRune(m.page.At(int(math.Floor(c.X)), int(math.Floor(c.Y))))
		}
		if y < vh-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) renderStatus() string {
	st := m.ctrl.State()
	parts := []string{
		statusStyle.Render(fmt.Sprintf("%.0f%%", st.Scale*100)),
		phaseStyle.Render(fmt.Sprintf("%s  pan %.1f,%.1f", st.Phase, st.PanX, st.PanY)),
	}
	if m.ctrl.AffordanceVisible() {
		parts = append(parts, resetStyle.Render("[0] reset view"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) render() string {
	if m.width == 0 {
		return "loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderPage(),
		m.renderStatus(),
		m.help.View(DefaultKeyMap),
	)
}
