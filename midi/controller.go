package midi

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerKeyboard
)

func (t ControllerType) String() string {
	switch t {
	case ControllerKeyboard:
		return "keyboard"
	default:
		return "unknown"
	}
}

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string
	Type() ControllerType

	// NoteEvents is closed by Close
	NoteEvents() <-chan NoteEvent

	Close() error
}
