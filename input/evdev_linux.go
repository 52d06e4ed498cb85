//go:build linux

package input

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

const (
	evKey = 0x01

	keyUp     = 0
	keyDown   = 1
	keyRepeat = 2
)

// struct input_event: a timeval followed by type u16, code u16, value s32
var (
	timevalSize = int(unsafe.Sizeof(unix.Timeval{}))
	eventSize   = timevalSize + 8
)

type rawEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

func decodeEvent(buf []byte) rawEvent {
	b := buf[timevalSize:]
	return rawEvent{
		Type:  binary.NativeEndian.Uint16(b[0:2]),
		Code:  binary.NativeEndian.Uint16(b[2:4]),
		Value: int32(binary.NativeEndian.Uint32(b[4:8])),
	}
}

// keyEvent maps an EV_KEY record to a transition. Auto-repeat is reported
// as down; the listener's set drops the duplicates.
func (e rawEvent) keyEvent() (KeyEvent, bool) {
	if e.Type != evKey {
		return KeyEvent{}, false
	}
	switch e.Value {
	case keyDown, keyRepeat:
		return KeyEvent{ID: KeyName(e.Code), Down: true}, true
	case keyUp:
		return KeyEvent{ID: KeyName(e.Code)}, true
	}
	return KeyEvent{}, false
}

// Keyboard device links, most specific first
var keyboardGlobs = []string{
	"/dev/input/by-path/*-event-kbd",
	"/dev/input/by-id/*-event-kbd",
}

// FindKeyboard returns the first keyboard event device
func FindKeyboard() (string, error) {
	for _, pattern := range keyboardGlobs {
		matches, _ := filepath.Glob(pattern)
		if len(matches) > 0 {
			return matches[0], nil
		}
	}
	return "", errors.New("no keyboard found under /dev/input (set inputDevice in config)")
}

// EvdevSource reads key events straight from a /dev/input/event* device, so
// keys are seen whether or not the terminal has focus. Needs read access to
// the device (usually the input group).
type EvdevSource struct {
	path string
	log  *zap.Logger

	r        io.ReadCloser
	events   chan KeyEvent
	stopping chan struct{}
	stopOnce sync.Once
}

// NewEvdevSource reads from path, or the detected keyboard when path is empty
func NewEvdevSource(path string, log *zap.Logger) *EvdevSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &EvdevSource{
		path:     path,
		log:      log,
		events:   make(chan KeyEvent, 64),
		stopping: make(chan struct{}),
	}
}

func (s *EvdevSource) Start() error {
	if s.r != nil {
		return errors.New("evdev source already started")
	}
	if s.path == "" {
		path, err := FindKeyboard()
		if err != nil {
			return err
		}
		s.path = path
	}
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	s.log.Info("reading keyboard", zap.String("device", s.path))
	s.attach(f)
	return nil
}

func (s *EvdevSource) attach(r io.ReadCloser) {
	s.r = r
	go s.readLoop()
}

func (s *EvdevSource) readLoop() {
	defer close(s.events)
	buf := make([]byte, eventSize)
	for {
		if _, err := io.ReadFull(s.r, buf); err != nil {
			select {
			case <-s.stopping:
			default:
				s.log.Warn("keyboard read failed", zap.String("device", s.path), zap.Error(err))
			}
			return
		}
		ev, ok := decodeEvent(buf).keyEvent()
		if !ok {
			continue
		}
		select {
		case s.events <- ev:
		case <-s.stopping:
			return
		}
	}
}

func (s *EvdevSource) Events() <-chan KeyEvent {
	return s.events
}

// Stop closes the device, which unblocks the pending read
func (s *EvdevSource) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopping)
		if s.r != nil {
			err = s.r.Close()
		}
	})
	return err
}
