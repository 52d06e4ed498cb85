package input

// KeyEvent is one key transition from an OS-level source. ID is the
// symbolic key name that goes on the wire.
type KeyEvent struct {
	ID   string
	Down bool
}

// KeySource delivers key transitions independent of window focus. Events is
// closed after Stop, or when the device goes away.
type KeySource interface {
	Start() error
	Events() <-chan KeyEvent
	Stop() error
}
