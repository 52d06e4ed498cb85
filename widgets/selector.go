package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"keysurface/theme"
)

const (
	StepWidth      = 2
	SelectorHeight = 3
)

// SelectorWidth is the track width in cells for n steps
func SelectorWidth(steps int) int {
	return steps * StepWidth
}

// RenderSelector renders the step track with its caption and scale
func RenderSelector(th *theme.Theme, label string, value, steps int, captured bool) string {
	width := SelectorWidth(steps)

	caption := lipgloss.NewStyle().Foreground(th.Muted())
	if captured {
		caption = caption.Foreground(th.Cursor()).Bold(true)
	}
	head := caption.Render(fmt.Sprintf("%-*s%*s", width/2, strings.ToUpper(label), width-width/2, fmt.Sprintf("%d/%d", value, steps)))

	on := lipgloss.NewStyle().Foreground(th.Accent())
	off := lipgloss.NewStyle().Foreground(th.Surface())
	var track strings.Builder
	for step := 1; step <= steps; step++ {
		switch {
		case step == value:
			track.WriteString(lipgloss.NewStyle().Foreground(th.Cursor()).Render(string(th.Symbols.StepOn) + " "))
		case step < value:
			track.WriteString(on.Render(string(th.Symbols.Step) + " "))
		default:
			track.WriteString(off.Render(string(th.Symbols.Step) + " "))
		}
	}

	last := fmt.Sprint(steps)
	scale := lipgloss.NewStyle().Foreground(th.Muted()).Render("1" + strings.Repeat(" ", width-1-len(last)) + last)

	return strings.Join([]string{head, track.String(), scale}, "\n")
}
