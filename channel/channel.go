package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Error classes. Concrete errors wrap one of these together with the cause.
var (
	// ErrResource means the FIFO could not be created or opened. Fatal at startup.
	ErrResource = errors.New("pipe resource unavailable")
	// ErrChannel means a send failed after the pipe was opened. Callers log and continue.
	ErrChannel = errors.New("pipe write failed")
)

const (
	// DefaultPath is the well-known FIFO shared with the synth process
	DefaultPath = "/tmp/pipe_frequency"
	// PathEnv overrides DefaultPath
	PathEnv = "KEYSURFACE_PIPE"
)

// ResolvePath returns the pipe path, honouring PathEnv
func ResolvePath() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	return DefaultPath
}

// Channel is the write side of the named pipe. One instance is shared by the
// key listener goroutine and the interaction loop; Send serializes them.
type Channel struct {
	path string
	log  *zap.Logger

	mu     sync.Mutex // held for exactly one write, never across open
	w      io.WriteCloser
	closed bool

	shutdownOnce sync.Once
}

// New creates a channel for the FIFO at path. Nothing is touched on disk
// until Ensure/Open.
func New(path string, log *zap.Logger) *Channel {
	if log == nil {
		log = zap.NewNop()
	}
	return &Channel{path: path, log: log}
}

func (c *Channel) Path() string {
	return c.path
}

// Ensure creates the FIFO if it does not exist yet
func (c *Channel) Ensure() error {
	err := unix.Mkfifo(c.path, 0666)
	if err == nil {
		c.log.Info("fifo created", zap.String("path", c.path))
		return nil
	}
	if !errors.Is(err, unix.EEXIST) {
		return fmt.Errorf("%w: mkfifo %s: %w", ErrResource, c.path, err)
	}

	info, statErr := os.Stat(c.path)
	if statErr != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrResource, c.path, statErr)
	}
	if info.Mode()&os.ModeNamedPipe == 0 {
		return fmt.Errorf("%w: %s exists and is not a fifo", ErrResource, c.path)
	}
	c.log.Debug("fifo already present", zap.String("path", c.path))
	return nil
}

// Open opens the FIFO for writing. The kernel blocks the open until a reader
// attaches; Open waits for that or for ctx to be cancelled.
func (c *Channel) Open(ctx context.Context) error {
	type openResult struct {
		f   *os.File
		err error
	}

	c.log.Info("waiting for reader", zap.String("path", c.path))
	ch := make(chan openResult, 1)
	go func() {
		f, err := os.OpenFile(c.path, os.O_WRONLY, 0)
		ch <- openResult{f: f, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return fmt.Errorf("%w: open %s: %w", ErrResource, c.path, r.err)
		}
		c.attach(r.f)
		c.log.Info("fifo opened", zap.String("path", c.path))
		return nil

	case <-ctx.Done():
		// Attach a throwaway reader so the pending open returns, then drop both ends.
		if rf, err := os.OpenFile(c.path, os.O_RDONLY|unix.O_NONBLOCK, 0); err == nil {
			r := <-ch
			if r.f != nil {
				r.f.Close()
			}
			rf.Close()
		}
		return ctx.Err()
	}
}

func (c *Channel) attach(w io.WriteCloser) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w = w
	c.closed = false
}

// Send writes msg followed by a newline as a single write. Safe for
// concurrent use; lines from different goroutines never interleave.
func (c *Channel) Send(msg string) error {
	if strings.ContainsAny(msg, "\r\n") {
		return fmt.Errorf("%w: message %q contains a line break", ErrChannel, msg)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.w == nil || c.closed {
		return fmt.Errorf("%w: %s is not open", ErrChannel, c.path)
	}
	if _, err := io.WriteString(c.w, msg+"\n"); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrChannel, c.path, err)
	}
	if f, ok := c.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("%w: flush %s: %w", ErrChannel, c.path, err)
		}
	}
	c.log.Debug("sent", zap.String("line", msg))
	return nil
}

// Close releases the descriptor. Safe to call repeatedly or before Open.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.w == nil {
		c.closed = true
		return nil
	}
	c.closed = true
	err := c.w.Close()
	c.w = nil
	c.log.Info("fifo closed", zap.String("path", c.path))
	return err
}

// Shutdown sends the quit marker (if the pipe is open) and closes the
// channel. Only the first call does anything.
func (c *Channel) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.mu.Lock()
		open := c.w != nil && !c.closed
		c.mu.Unlock()

		if open {
			if err := c.Send(Quit().String()); err != nil {
				c.log.Warn("quit marker not delivered", zap.Error(err))
			}
		}
		if err := c.Close(); err != nil {
			c.log.Warn("close failed", zap.Error(err))
		}
	})
}
