package input

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"keysurface/channel"
)

// ErrInputHook means the OS key source could not be installed. Fatal at
// startup.
var ErrInputHook = errors.New("key source unavailable")

// DefaultQuitKey stops the session when pressed
const DefaultQuitKey = "q"

// Sender is the write side of the pipe
type Sender interface {
	Send(msg string) error
}

// Listener turns key transitions into press/release lines. It runs on its
// own goroutine and owns the held-key set.
type Listener struct {
	src  KeySource
	out  Sender
	quit string
	log  *zap.Logger

	keys      *KeySet
	snapshots chan []string

	stop     chan struct{}
	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

func NewListener(src KeySource, out Sender, quit string, log *zap.Logger) *Listener {
	if quit == "" {
		quit = DefaultQuitKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Listener{
		src:       src,
		out:       out,
		quit:      quit,
		log:       log,
		keys:      NewKeySet(),
		snapshots: make(chan []string, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start installs the key source and begins processing. cancel is called
// once when the quit key is seen.
func (l *Listener) Start(cancel context.CancelFunc) error {
	if err := l.src.Start(); err != nil {
		return fmt.Errorf("%w: %w", ErrInputHook, err)
	}
	l.started = true
	go l.run(cancel)
	l.log.Info("listening", zap.String("quit", l.quit))
	return nil
}

func (l *Listener) run(cancel context.CancelFunc) {
	defer close(l.done)
	events := l.src.Events()
	for {
		select {
		case <-l.stop:
			return
		case ev, ok := <-events:
			if !ok {
				l.log.Warn("key source closed")
				return
			}
			if ev.ID == l.quit {
				l.log.Info("quit key")
				cancel()
				return
			}
			l.handle(ev)
		}
	}
}

func (l *Listener) handle(ev KeyEvent) {
	var cmd channel.Command
	if ev.Down {
		if !l.keys.Press(ev.ID) {
			return // auto-repeat
		}
		cmd = channel.Press(ev.ID)
	} else {
		if !l.keys.Release(ev.ID) {
			return
		}
		cmd = channel.Release(ev.ID)
	}

	if err := l.out.Send(cmd.String()); err != nil {
		l.log.Warn("send failed", zap.String("line", cmd.String()), zap.Error(err))
	}
	l.publish()
}

// publish replaces any unread snapshot with the current one
func (l *Listener) publish() {
	snap := l.keys.Snapshot()
	select {
	case <-l.snapshots:
	default:
	}
	select {
	case l.snapshots <- snap:
	default:
	}
}

// Snapshots carries sorted copies of the held keys, latest wins
func (l *Listener) Snapshots() <-chan []string {
	return l.snapshots
}

// Done is closed when the listener goroutine exits
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// Stop removes the hook and waits for the listener goroutine. Safe to call
// more than once, and before Start.
func (l *Listener) Stop() error {
	var err error
	l.stopOnce.Do(func() {
		close(l.stop)
		if !l.started {
			return
		}
		err = l.src.Stop()
		<-l.done
	})
	return err
}
