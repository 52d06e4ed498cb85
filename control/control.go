package control

import (
	"math"
	"strconv"

	"go.uber.org/zap"

	"keysurface/channel"
)

// Mode says how pointer motion turns into a value
type Mode int

const (
	ModeDelta    Mode = iota // vertical drag, relative to the last pointer position
	ModePosition             // horizontal position along a track, absolute
)

// SelectorSteps is the number of discrete selector positions
const SelectorSteps = 32

// Range is an inclusive integer interval
type Range struct {
	Min, Max int
}

func (r Range) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Spec describes one continuous control
type Spec struct {
	ID      string
	Tag     string
	Range   Range
	Initial int
	Mode    Mode
}

var (
	RotarySpec   = Spec{ID: "rotary", Tag: channel.TagRotary, Range: Range{0, 100}, Initial: 50, Mode: ModeDelta}
	WaveformSpec = Spec{ID: "wave", Tag: channel.TagWave, Range: Range{0, 100}, Initial: 50, Mode: ModeDelta}
	SelectorSpec = Spec{ID: "select", Tag: channel.TagSelect, Range: Range{1, SelectorSteps}, Initial: 1, Mode: ModePosition}
)

// Control holds the current value of one control and the last value that
// was put on the wire.
type Control struct {
	spec     Spec
	value    int
	lastSent int
}

func NewControl(spec Spec) *Control {
	v := spec.Range.Clamp(spec.Initial)
	return &Control{spec: spec, value: v, lastSent: v}
}

func (c *Control) Spec() Spec { return c.spec }
func (c *Control) Value() int { return c.value }

// Set clamps v into range and reports whether a command should go out.
// The last-sent value moves as soon as the answer is yes.
func (c *Control) Set(v int) (channel.Command, bool) {
	c.value = c.spec.Range.Clamp(v)
	if c.value == c.lastSent {
		return channel.Command{}, false
	}
	c.lastSent = c.value
	return channel.Level(c.spec.Tag, c.value), true
}

// Drag applies a vertical pointer delta. Moving up (negative dy) raises the
// value; two surface units per step.
func (c *Control) Drag(dy int) (channel.Command, bool) {
	if c.spec.Mode != ModeDelta {
		return channel.Command{}, false
	}
	return c.Set(c.value - dy/2)
}

// Locate sets a position control from an absolute x on its track
func (c *Control) Locate(x int, t Track) (channel.Command, bool) {
	if c.spec.Mode != ModePosition {
		return channel.Command{}, false
	}
	return c.Set(t.Step(x))
}

// Track is the horizontal extent of the selector in surface units
type Track struct {
	Origin, Width int
}

// Step maps an absolute x onto 1..SelectorSteps
func (t Track) Step(x int) int {
	if t.Width <= 0 {
		return 1
	}
	pos := math.Floor(float64(x-t.Origin) / float64(t.Width) * SelectorSteps)
	return int(pos) + 1
}

// Sender is the write side of the pipe
type Sender interface {
	Send(msg string) error
}

// Surface is the set of controls owned by the interaction loop
type Surface struct {
	rotary   *Control
	waveform *Control
	selector *Control

	out Sender
	log *zap.Logger
}

func NewSurface(out Sender, log *zap.Logger) *Surface {
	if log == nil {
		log = zap.NewNop()
	}
	return &Surface{
		rotary:   NewControl(RotarySpec),
		waveform: NewControl(WaveformSpec),
		selector: NewControl(SelectorSpec),
		out:      out,
		log:      log,
	}
}

func (s *Surface) Rotary() int   { return s.rotary.Value() }
func (s *Surface) Waveform() int { return s.waveform.Value() }
func (s *Surface) Selector() int { return s.selector.Value() }

// UpdateRotary applies a vertical drag to the rotary level
func (s *Surface) UpdateRotary(dy int) {
	if cmd, ok := s.rotary.Drag(dy); ok {
		s.send(cmd)
	}
}

// UpdateWaveform applies a vertical drag to the waveform level
func (s *Surface) UpdateWaveform(dy int) {
	if cmd, ok := s.waveform.Drag(dy); ok {
		s.send(cmd)
	}
}

// UpdateSelector sets the selector from an absolute pointer x
func (s *Surface) UpdateSelector(x int, track Track) {
	if cmd, ok := s.selector.Locate(x, track); ok {
		s.send(cmd)
	}
}

// TriggerGenerate always sends, even when nothing changed
func (s *Surface) TriggerGenerate() {
	s.send(channel.Generate(s.rotary.Value(), s.selector.Value()))
}

func (s *Surface) send(cmd channel.Command) {
	msg := cmd.String()
	if err := s.out.Send(msg); err != nil {
		s.log.Warn("send failed", zap.String("line", msg), zap.Error(err))
		return
	}
	s.log.Debug("control changed", zap.String("tag", cmd.Tag), zap.String("value", cmd.Payload))
}

// Values is a copy of the surface state for rendering
type Values struct {
	Rotary, Waveform, Selector int
}

func (s *Surface) Values() Values {
	return Values{Rotary: s.Rotary(), Waveform: s.Waveform(), Selector: s.Selector()}
}

func (v Values) String() string {
	return "rotary=" + strconv.Itoa(v.Rotary) + " wave=" + strconv.Itoa(v.Waveform) + " select=" + strconv.Itoa(v.Selector)
}
