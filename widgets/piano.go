package widgets

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"keysurface/midi"
	"keysurface/theme"
)

const (
	KeyWidth    = 4
	PianoHeight = 3
	PianoWidth  = KeyWidth * 12
)

// black keys of the octave, by semitone
var sharp = [12]bool{1: true, 3: true, 6: true, 8: true, 10: true}

// RenderPiano renders one octave of the computer-keyboard row: key id,
// key glyph (filled when held) and note name.
func RenderPiano(th *theme.Theme, held []string) string {
	down := make(map[string]bool, len(held))
	for _, id := range held {
		down[id] = true
	}

	cell := lipgloss.NewStyle().Width(KeyWidth).Align(lipgloss.Center)
	label := cell.Foreground(th.Muted())

	var ids, glyphs, notes strings.Builder
	for i, id := range midi.KeyRow {
		note := midi.BaseNote + uint8(i)
		ids.WriteString(label.Render(id))
		glyphs.WriteString(RenderKey(th, down[id], sharp[i]))
		notes.WriteString(label.Render(midi.NoteName(note)))
	}
	return strings.Join([]string{ids.String(), glyphs.String(), notes.String()}, "\n")
}

// RenderKey renders a single piano key glyph
func RenderKey(th *theme.Theme, held, black bool) string {
	style := lipgloss.NewStyle().Width(KeyWidth).Align(lipgloss.Center).Foreground(th.FG())
	glyph := th.Symbols.KeyUp
	if black {
		style = style.Foreground(th.Muted())
	}
	if held {
		glyph = th.Symbols.KeyDown
		style = style.Foreground(th.Active()).Bold(true)
	}
	return style.Render(string(glyph))
}

// HeldKeys renders the ids of held keys that are not on the piano row
func HeldKeys(th *theme.Theme, held []string) string {
	var extra []string
	for _, id := range held {
		if !slices.Contains(midi.KeyRow, id) {
			extra = append(extra, id)
		}
	}
	if len(extra) == 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(th.Active()).Render("+ " + strings.Join(extra, " "))
}
