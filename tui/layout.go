package tui

import (
	"keysurface/control"
	"keysurface/widgets"
)

// Surface units per terminal cell. Pointer positions are converted to the
// centre of the cell so drags have pixel-like resolution.
const (
	cellWidth  = 8
	cellHeight = 16
)

func toSurface(cellX, cellY int) (x, y int) {
	return cellX*cellWidth + cellWidth/2, cellY*cellHeight + cellHeight/2
}

type region int

const (
	regionNone region = iota
	regionRotary
	regionWaveform
	regionSelector
	regionGenerate
)

func (r region) String() string {
	switch r {
	case regionRotary:
		return "rotary"
	case regionWaveform:
		return "waveform"
	case regionSelector:
		return "selector"
	case regionGenerate:
		return "generate"
	default:
		return "none"
	}
}

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// Row and column placement of every block in the view, in cells
const (
	marginLeft = 2
	gap        = 2

	headerRow   = 0
	pianoRow    = 2
	controlsRow = pianoRow + widgets.PianoHeight + 1
	selectorRow = controlsRow + widgets.KnobHeight + 1
	helpRow     = selectorRow + widgets.SelectorHeight + 1
)

// layout holds the hit regions. The view draws blocks at exactly these
// positions.
type layout struct {
	piano    rect
	rotary   rect
	waveform rect
	generate rect
	selector rect
}

func newLayout() layout {
	rotaryX := marginLeft
	waveX := rotaryX + widgets.KnobWidth + gap
	buttonX := waveX + widgets.KnobWidth + gap
	return layout{
		piano:    rect{marginLeft, pianoRow, widgets.PianoWidth, widgets.PianoHeight},
		rotary:   rect{rotaryX, controlsRow, widgets.KnobWidth, widgets.KnobHeight},
		waveform: rect{waveX, controlsRow, widgets.KnobWidth, widgets.KnobHeight},
		generate: rect{buttonX, controlsRow, widgets.ButtonWidth, widgets.ButtonHeight - 1},
		selector: rect{marginLeft, selectorRow, widgets.SelectorWidth(control.SelectorSteps), widgets.SelectorHeight},
	}
}

// hit returns the control under a cell
func (l layout) hit(x, y int) region {
	switch {
	case l.generate.contains(x, y):
		return regionGenerate
	case l.rotary.contains(x, y):
		return regionRotary
	case l.waveform.contains(x, y):
		return regionWaveform
	case l.selector.contains(x, y):
		return regionSelector
	}
	return regionNone
}

// track is the selector's horizontal extent in surface units
func (l layout) track() control.Track {
	return control.Track{
		Origin: l.selector.x * cellWidth,
		Width:  l.selector.w * cellWidth,
	}
}
