package input

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"keysurface/midi"
)

type deviceWatcher interface {
	Run(ctx context.Context)
	Events() <-chan midi.DeviceEvent
}

// MIDISource reads note on/off from every MIDI keyboard whose port name
// matches a pattern. Notes in the mapped octave use the computer-keyboard
// ids, so a MIDI keyboard and the typing keyboard play the same keys.
type MIDISource struct {
	devices deviceWatcher
	events  chan KeyEvent
	log     *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}

func NewMIDISource(pattern string, log *zap.Logger) *MIDISource {
	if log == nil {
		log = zap.NewNop()
	}
	return newMIDISource(midi.NewDeviceManager(pattern, log.Named("devices")), log)
}

func newMIDISource(devices deviceWatcher, log *zap.Logger) *MIDISource {
	return &MIDISource{
		devices: devices,
		events:  make(chan KeyEvent, 64),
		log:     log,
		done:    make(chan struct{}),
	}
}

func (s *MIDISource) Start() error {
	if s.cancel != nil {
		return errors.New("midi source already started")
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.devices.Run(ctx)
	go s.watch(ctx)
	return nil
}

func (s *MIDISource) watch(ctx context.Context) {
	defer close(s.done)
	for ev := range s.devices.Events() {
		if ev.Type != midi.DeviceConnected || ev.Controller == nil {
			continue
		}
		s.log.Info("keyboard attached", zap.String("port", ev.ID))
		s.wg.Add(1)
		go s.forward(ctx, ev.Controller)
	}
	s.wg.Wait()
	close(s.events)
}

// forward relays one controller's notes until its channel closes, then
// releases whatever it still held.
func (s *MIDISource) forward(ctx context.Context, c midi.Controller) {
	defer s.wg.Done()
	held := make(map[uint8]struct{})
	notes := c.NoteEvents()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notes:
			if !ok {
				s.releaseAll(ctx, c.ID(), held)
				return
			}
			if n.On {
				held[n.Note] = struct{}{}
			} else {
				delete(held, n.Note)
			}
			if !s.emit(ctx, KeyEvent{ID: midi.KeyForNote(n.Note), Down: n.On}) {
				return
			}
		}
	}
}

func (s *MIDISource) releaseAll(ctx context.Context, port string, held map[uint8]struct{}) {
	if len(held) == 0 {
		return
	}
	s.log.Info("releasing held notes", zap.String("port", port), zap.Int("count", len(held)))
	for note := range held {
		if !s.emit(ctx, KeyEvent{ID: midi.KeyForNote(note)}) {
			return
		}
	}
}

func (s *MIDISource) emit(ctx context.Context, ev KeyEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *MIDISource) Events() <-chan KeyEvent {
	return s.events
}

func (s *MIDISource) Stop() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	<-s.done
	return nil
}
