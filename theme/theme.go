package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Piano keys
	KeyUp   rune // ▯ released
	KeyDown rune // ▮ held

	// Knob needle, clockwise from minimum
	Needle []rune

	// Level bars and selector track
	BarFull  rune // █
	BarEmpty rune // ░
	Step     rune // · unselected step
	StepOn   rune // ◆ selected step
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			KeyUp:   '▯',
			KeyDown: '▮',

			Needle: []rune{'↙', '←', '↖', '↑', '↗', '→', '↘'},

			BarFull:  '█',
			BarEmpty: '░',
			Step:     '·',
			StepOn:   '◆',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // night
	RoleSurface = 0.1 // panel
	RoleMuted   = 0.2 // labels
	RoleFG      = 0.4 // text
	RoleAccent  = 0.5 // knob rings
	RoleCursor  = 0.6 // captured control
	RoleActive  = 0.7 // held keys
	RoleWarning = 0.8 // generate button
	RoleSuccess = 1.0
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
