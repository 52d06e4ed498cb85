package channel

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// openFIFO creates a FIFO in a temp dir, attaches a reader and opens the
// channel's write side.
func openFIFO(t *testing.T) (*Channel, *os.File) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipe_frequency")
	c := New(path, zaptest.NewLogger(t))
	if err := c.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	readers := make(chan *os.File, 1)
	go func() {
		f, err := os.Open(path)
		if err != nil {
			t.Errorf("open reader: %v", err)
		}
		readers <- f
	}()

	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	r := <-readers
	if r == nil {
		t.FailNow()
	}
	t.Cleanup(func() { r.Close() })
	return c, r
}

func readLines(r *os.File) <-chan []string {
	out := make(chan []string, 1)
	go func() {
		var lines []string
		s := bufio.NewScanner(r)
		for s.Scan() {
			lines = append(lines, s.Text())
		}
		out <- lines
	}()
	return out
}

func TestEnsureCreatesFIFO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipe")
	c := New(path, zaptest.NewLogger(t))

	if err := c.Ensure(); err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode()&os.ModeNamedPipe == 0 {
		t.Fatalf("expected named pipe, got mode %v", info.Mode())
	}
	if err := c.Ensure(); err != nil {
		t.Fatalf("second Ensure should accept existing fifo: %v", err)
	}
}

func TestEnsureFailures(t *testing.T) {
	dir := t.TempDir()
	regular := filepath.Join(dir, "plain")
	if err := os.WriteFile(regular, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing parent", filepath.Join(dir, "nope", "pipe")},
		{"regular file", regular},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.path, nil).Ensure()
			if !errors.Is(err, ErrResource) {
				t.Fatalf("expected ErrResource, got %v", err)
			}
		})
	}
}

func TestSendWritesLines(t *testing.T) {
	c, r := openFIFO(t)
	lines := readLines(r)

	for _, msg := range []string{"press:z", "rotary:60", "select:17"} {
		if err := c.Send(msg); err != nil {
			t.Fatalf("Send(%q): %v", msg, err)
		}
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := <-lines
	want := []string{"press:z", "rotary:60", "select:17"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestConcurrentSendsDoNotTear(t *testing.T) {
	c, r := openFIFO(t)
	lines := readLines(r)

	const n = 500
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			if err := c.Send(Press("shift_r").String()); err != nil {
				t.Errorf("listener send: %v", err)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			if err := c.Send(Level(TagRotary, i%101).String()); err != nil {
				t.Errorf("loop send: %v", err)
			}
		}
	}()
	wg.Wait()
	c.Close()

	got := <-lines
	if len(got) != 2*n {
		t.Fatalf("expected %d lines, got %d", 2*n, len(got))
	}
	next := 0
	for _, line := range got {
		cmd, err := ParseCommand(line)
		if err != nil {
			t.Fatalf("torn line %q: %v", line, err)
		}
		if cmd.Tag == TagRotary {
			// program order within one sender is preserved
			if cmd.Payload != strconv.Itoa(next%101) {
				t.Fatalf("rotary out of order: expected %d, got %s", next%101, cmd.Payload)
			}
			next++
		}
	}
}

func TestSendErrors(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "pipe"), nil)
	if err := c.Send("press:a"); !errors.Is(err, ErrChannel) {
		t.Fatalf("send before open: expected ErrChannel, got %v", err)
	}

	w := &recordWriter{}
	c.attach(w)
	if err := c.Send("press:a\npress:b"); !errors.Is(err, ErrChannel) {
		t.Fatalf("embedded newline: expected ErrChannel, got %v", err)
	}
	if w.Len() != 0 {
		t.Fatalf("rejected message must not be written, got %q", w.String())
	}

	cause := errors.New("EPIPE")
	w.failWith = cause
	err := c.Send("press:a")
	if !errors.Is(err, ErrChannel) || !errors.Is(err, cause) {
		t.Fatalf("expected ErrChannel wrapping cause, got %v", err)
	}

	c.Close()
	if err := c.Send("press:a"); !errors.Is(err, ErrChannel) {
		t.Fatalf("send after close: expected ErrChannel, got %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	never := New("/nonexistent/pipe", nil)
	if err := never.Close(); err != nil {
		t.Fatalf("close before open: %v", err)
	}
	if err := never.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	w := &recordWriter{}
	c := New("fake", nil)
	c.attach(w)
	c.Close()
	c.Close()
	if w.closes != 1 {
		t.Fatalf("expected 1 close, got %d", w.closes)
	}
}

func TestShutdownSendsQuitOnce(t *testing.T) {
	w := &recordWriter{}
	c := New("fake", zaptest.NewLogger(t))
	c.attach(w)

	c.Send(Press("z").String())
	c.Shutdown()
	c.Shutdown()
	c.Close()

	if w.String() != "press:z\nquit\n" {
		t.Fatalf("expected press then quit, got %q", w.String())
	}
	if w.closes != 1 {
		t.Fatalf("expected exactly one close, got %d", w.closes)
	}
}

func TestShutdownWithoutOpen(t *testing.T) {
	c := New("fake", nil)
	c.Shutdown()
	if err := c.Send("press:a"); !errors.Is(err, ErrChannel) {
		t.Fatalf("expected ErrChannel after shutdown, got %v", err)
	}
}

func TestOpenCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipe")
	c := New(path, zaptest.NewLogger(t))
	if err := c.Ensure(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Open(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if err := c.Send("press:a"); !errors.Is(err, ErrChannel) {
		t.Fatalf("channel must stay closed after cancelled open, got %v", err)
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv(PathEnv, "")
	if got := ResolvePath(); got != DefaultPath {
		t.Fatalf("expected %s, got %s", DefaultPath, got)
	}
	t.Setenv(PathEnv, "/run/user/1000/synth")
	if got := ResolvePath(); got != "/run/user/1000/synth" {
		t.Fatalf("expected env override, got %s", got)
	}
}

type recordWriter struct {
	buf      bytes.Buffer
	closes   int
	failWith error
}

func (w *recordWriter) Write(p []byte) (int, error) {
	if w.failWith != nil {
		return 0, w.failWith
	}
	return w.buf.Write(p)
}

func (w *recordWriter) String() string { return w.buf.String() }
func (w *recordWriter) Len() int       { return w.buf.Len() }

func (w *recordWriter) Close() error {
	w.closes++
	return nil
}
