package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
)

// KeyboardController handles a standard MIDI keyboard
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()
	log      *zap.Logger

	mu       sync.Mutex
	closed   bool
	noteChan chan NoteEvent
}

// NewKeyboardController creates a keyboard controller (input only). A nil
// inPort gives a controller that only sees what handle is fed.
func NewKeyboardController(id string, inPort drivers.In, log *zap.Logger) (*KeyboardController, error) {
	if log == nil {
		log = zap.NewNop()
	}
	kb := &KeyboardController{
		id:       id,
		inPort:   inPort,
		log:      log.With(zap.String("port", id)),
		noteChan: make(chan NoteEvent, 128),
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			kb.handle(msg)
		}, gomidi.HandleError(func(err error) {
			kb.log.Warn("listener error", zap.Error(err))
		}))
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

func (kb *KeyboardController) handle(msg gomidi.Message) {
	ev, ok := noteEventFrom(msg)
	if !ok {
		return
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return
	}
	select {
	case kb.noteChan <- ev:
	default:
		kb.log.Warn("note dropped", zap.Uint8("note", ev.Note), zap.Bool("on", ev.On))
	}
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Type() ControllerType {
	return ControllerKeyboard
}

func (kb *KeyboardController) NoteEvents() <-chan NoteEvent {
	return kb.noteChan
}

func (kb *KeyboardController) Close() error {
	kb.mu.Lock()
	if kb.closed {
		kb.mu.Unlock()
		return nil
	}
	kb.closed = true
	close(kb.noteChan)
	kb.mu.Unlock()

	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	if kb.inPort != nil {
		return kb.inPort.Close()
	}
	return nil
}
