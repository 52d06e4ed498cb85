package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"keysurface/control"
	"keysurface/theme"
)

const (
	KnobWidth  = 14
	KnobHeight = 4
	barWidth   = 10
)

// RenderKnob renders a drag knob: label, needle and value, level bar, hint.
// captured highlights the label while the pointer holds the knob.
func RenderKnob(th *theme.Theme, label string, value int, r control.Range, captured bool) string {
	norm := 0.0
	if r.Max > r.Min {
		norm = float64(value-r.Min) / float64(r.Max-r.Min)
	}

	box := lipgloss.NewStyle().Width(KnobWidth).Align(lipgloss.Center)
	title := box.Foreground(th.Muted())
	if captured {
		title = box.Foreground(th.Cursor()).Bold(true)
	}

	needle := th.Symbols.Needle[int(norm*float64(len(th.Symbols.Needle)-1)+0.5)]
	dial := box.Foreground(th.Accent()).Render(fmt.Sprintf("%c %3d", needle, value))

	filled := int(norm*barWidth + 0.5)
	bar := lipgloss.NewStyle().Foreground(th.Color(norm)).Render(strings.Repeat(string(th.Symbols.BarFull), filled)) +
		lipgloss.NewStyle().Foreground(th.Surface()).Render(strings.Repeat(string(th.Symbols.BarEmpty), barWidth-filled))

	return strings.Join([]string{
		title.Render(strings.ToUpper(label)),
		dial,
		box.Render(bar),
		box.Foreground(th.Muted()).Render("drag ↕"),
	}, "\n")
}
