package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"keysurface/theme"
)

const (
	ButtonWidth  = 14
	ButtonHeight = KnobHeight
)

// RenderButton renders a push button. lit shows the just-pressed state.
func RenderButton(th *theme.Theme, label string, lit bool) string {
	bg := th.Warning()
	if lit {
		bg = th.Success()
	}
	face := lipgloss.NewStyle().
		Width(ButtonWidth).
		Align(lipgloss.Center).
		Foreground(th.BG()).
		Background(bg).
		Bold(true)

	blank := face.Render("")
	return strings.Join([]string{blank, face.Render(strings.ToUpper(label)), blank, lipgloss.NewStyle().Width(ButtonWidth).Render("")}, "\n")
}
