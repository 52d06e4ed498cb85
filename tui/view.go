package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"keysurface/control"
	"keysurface/widgets"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.theme.Muted())
	indent := strings.Repeat(" ", marginLeft)
	spacer := strings.Repeat(" ", gap)

	header := headerStyle.Render("keysurface") + dimStyle.Render(fmt.Sprintf("  %s → %s", m.source, m.pipePath))

	piano := widgets.RenderPiano(m.theme, m.held)
	if extra := widgets.HeldKeys(m.theme, m.held); extra != "" {
		piano = lipgloss.JoinHorizontal(lipgloss.Top, piano, spacer, extra)
	}

	v := m.surface.Values()
	controls := lipgloss.JoinHorizontal(lipgloss.Top,
		widgets.RenderKnob(m.theme, "rotary", v.Rotary, control.RotarySpec.Range, m.captured == regionRotary),
		spacer,
		widgets.RenderKnob(m.theme, "wave", v.Waveform, control.WaveformSpec.Range, m.captured == regionWaveform),
		spacer,
		widgets.RenderButton(m.theme, "generate", m.flash > 0),
	)

	selector := widgets.RenderSelector(m.theme, "harmonic", v.Selector, control.SelectorSteps, m.captured == regionSelector)

	help := m.help.View(m.keys)
	if m.showHints {
		help += "\n" + dimStyle.Render("drag knobs up/down · drag along the track · click generate · quit key ends the session")
	}

	rows := make([]string, 0, helpRow+2)
	place := func(row int, block string) {
		for len(rows) < row {
			rows = append(rows, "")
		}
		for _, line := range strings.Split(block, "\n") {
			rows = append(rows, indent+line)
		}
	}
	place(headerRow, header)
	place(pianoRow, piano)
	place(controlsRow, controls)
	place(selectorRow, selector)
	place(helpRow, help)

	return strings.Join(rows, "\n")
}
