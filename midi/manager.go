package midi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
	"go.uber.org/zap"
)

// ErrPortsTimeout is returned when the MIDI backend does not answer a port
// listing in time.
var ErrPortsTimeout = errors.New("midi port listing timed out")

// PortTimeout bounds a single port listing (some backends hang)
const PortTimeout = 3 * time.Second

// Port is a named MIDI input
type Port struct {
	Name string
	In   drivers.In
}

// ListInPorts returns the current MIDI inputs, or ErrPortsTimeout
func ListInPorts(timeout time.Duration) ([]Port, error) {
	ch := make(chan []Port, 1)
	go func() {
		var ports []Port
		for _, in := range gomidi.GetInPorts() {
			ports = append(ports, Port{Name: in.String(), In: in})
		}
		ch <- ports
	}()

	select {
	case ports := <-ch:
		return ports, nil
	case <-time.After(timeout):
		return nil, ErrPortsTimeout
	}
}

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of MIDI keyboards
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
	pattern     string
	log         *zap.Logger

	listPorts func() ([]Port, error)
	connect   func(Port) (Controller, error)
}

// NewDeviceManager creates a device manager for inputs whose name contains
// pattern (case-insensitive). An empty pattern takes every input.
func NewDeviceManager(pattern string, log *zap.Logger) *DeviceManager {
	if log == nil {
		log = zap.NewNop()
	}
	dm := &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		pattern:     strings.ToLower(pattern),
		log:         log,
	}
	dm.listPorts = func() ([]Port, error) { return ListInPorts(PortTimeout) }
	dm.connect = func(p Port) (Controller, error) {
		return NewKeyboardController(p.Name, p.In, dm.log)
	}
	return dm
}

// Events returns a channel of device connect/disconnect events. It is
// closed when Run returns.
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) matches(name string) bool {
	return dm.pattern == "" || strings.Contains(strings.ToLower(name), dm.pattern)
}

func (dm *DeviceManager) scan(ctx context.Context) {
	ports, err := dm.listPorts()
	if err != nil {
		// Backend is hung - skip this scan
		dm.log.Warn("port scan skipped", zap.Error(err))
		return
	}

	seenIDs := make(map[string]bool)

	for _, p := range ports {
		if !dm.matches(p.Name) {
			continue
		}
		id := p.Name
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		kb, err := dm.connect(p)
		if err != nil {
			dm.log.Warn("connect failed", zap.String("port", id), zap.Error(err))
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = kb
		dm.mu.Unlock()

		dm.log.Info("keyboard connected", zap.String("port", id))
		if !dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Controller: kb, ID: id}) {
			return
		}
	}

	// Check for disconnects
	dm.mu.Lock()
	var gone []Controller
	for id, c := range dm.controllers {
		if !seenIDs[id] {
			gone = append(gone, c)
			delete(dm.controllers, id)
		}
	}
	dm.mu.Unlock()

	for _, c := range gone {
		c.Close()
		dm.log.Info("keyboard disconnected", zap.String("port", c.ID()))
		if !dm.emit(ctx, DeviceEvent{Type: DeviceDisconnected, ID: c.ID()}) {
			return
		}
	}
}

func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) bool {
	select {
	case dm.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}
