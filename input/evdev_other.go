//go:build !linux

package input

import (
	"errors"
	"runtime"

	"go.uber.org/zap"
)

// EvdevSource is only available on linux
type EvdevSource struct {
	events chan KeyEvent
}

func NewEvdevSource(path string, log *zap.Logger) *EvdevSource {
	return &EvdevSource{events: make(chan KeyEvent)}
}

func FindKeyboard() (string, error) {
	return "", errors.New("evdev keyboards are linux only")
}

func (s *EvdevSource) Start() error {
	return errors.New("evdev key source is not supported on " + runtime.GOOS + " (use inputSource \"midi\")")
}

func (s *EvdevSource) Events() <-chan KeyEvent { return s.events }
func (s *EvdevSource) Stop() error             { return nil }
