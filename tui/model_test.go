package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zaptest"

	"keysurface/control"
)

type recordSender struct {
	lines []string
}

func (r *recordSender) Send(msg string) error {
	r.lines = append(r.lines, msg)
	return nil
}

type harness struct {
	m         Model
	out       *recordSender
	cancel    context.CancelFunc
	snapshots chan []string
	shutdowns int
}

func newHarness(t *testing.T) *harness {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := &harness{out: &recordSender{}, cancel: cancel, snapshots: make(chan []string, 1)}
	h.m = NewModel(Options{
		Ctx:       ctx,
		Surface:   control.NewSurface(h.out, nil),
		Shutdown:  func() { h.shutdowns++ },
		Snapshots: h.snapshots,
		PipePath:  "/tmp/pipe_frequency",
		Source:    "evdev",
		Log:       zaptest.NewLogger(t),
	})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) mouse(action tea.MouseAction, x, y int) {
	h.send(tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft})
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestDragRotaryUp(t *testing.T) {
	h := newHarness(t)
	r := h.m.layout.rotary

	h.mouse(tea.MouseActionPress, r.x+1, r.y+2)
	h.mouse(tea.MouseActionMotion, r.x+1, r.y+1) // up one cell: dy = -16
	h.mouse(tea.MouseActionMotion, r.x+3, r.y+1) // horizontal only
	h.mouse(tea.MouseActionRelease, r.x+3, r.y+1)
	h.mouse(tea.MouseActionMotion, r.x+3, r.y) // not captured

	if got := fmt.Sprint(h.out.lines); got != "[rotary:58]" {
		t.Fatalf("expected [rotary:58], got %s", got)
	}
}

func TestDragWaveformLeavesRegion(t *testing.T) {
	h := newHarness(t)
	w := h.m.layout.waveform

	h.mouse(tea.MouseActionPress, w.x, w.y)
	h.mouse(tea.MouseActionMotion, w.x, w.y+3)  // down three cells
	h.mouse(tea.MouseActionMotion, w.x, w.y+10) // outside, still captured

	if got := fmt.Sprint(h.out.lines); got != "[wave:26 wave:0]" {
		t.Fatalf("expected [wave:26 wave:0], got %s", got)
	}
}

func TestSelectorPressAndDrag(t *testing.T) {
	h := newHarness(t)
	s := h.m.layout.selector

	// cell 35 is x=284 in surface units: (284-16)/512*32 = 16.75 -> step 17
	h.mouse(tea.MouseActionPress, 35, s.y+1)
	h.mouse(tea.MouseActionMotion, 35, s.y)
	h.mouse(tea.MouseActionMotion, s.x+s.w+5, s.y)
	h.mouse(tea.MouseActionMotion, 0, s.y)

	if got := fmt.Sprint(h.out.lines); got != "[select:17 select:32 select:1]" {
		t.Fatalf("unexpected lines %s", got)
	}
}

func TestGenerateIgnoresCapture(t *testing.T) {
	h := newHarness(t)
	r := h.m.layout.rotary
	g := h.m.layout.generate

	h.mouse(tea.MouseActionPress, r.x, r.y)
	h.mouse(tea.MouseActionMotion, r.x, r.y-2)
	h.mouse(tea.MouseActionPress, g.x+2, g.y+1)
	h.mouse(tea.MouseActionPress, g.x+2, g.y+1)

	want := "[rotary:66 generate:66,1 generate:66,1]"
	if got := fmt.Sprint(h.out.lines); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if h.m.flash == 0 {
		t.Fatal("generate button should be lit")
	}
}

func TestPressOutsideControls(t *testing.T) {
	h := newHarness(t)
	h.mouse(tea.MouseActionPress, 0, 0)
	h.mouse(tea.MouseActionMotion, 0, 5)
	h.send(tea.MouseMsg{X: h.m.layout.rotary.x, Y: h.m.layout.rotary.y, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	h.mouse(tea.MouseActionMotion, h.m.layout.rotary.x, 0)
	if len(h.out.lines) != 0 {
		t.Fatalf("expected nothing sent, got %v", h.out.lines)
	}
}

func TestFrameQuitsWhenCancelled(t *testing.T) {
	h := newHarness(t)

	if cmd := h.send(FrameMsg(time.Now())); isQuit(cmd) {
		t.Fatal("should keep running")
	}
	h.cancel()
	cmd := h.send(FrameMsg(time.Now()))
	if !isQuit(cmd) {
		t.Fatal("expected tea.Quit after cancellation")
	}
	h.send(tea.KeyMsg{Type: tea.KeyCtrlC})
	h.send(FrameMsg(time.Now()))
	if h.shutdowns != 1 {
		t.Fatalf("expected exactly one shutdown, got %d", h.shutdowns)
	}
	if h.m.View() != "" {
		t.Fatal("view should be empty after quitting")
	}
}

func TestCtrlCShutsDown(t *testing.T) {
	h := newHarness(t)
	cmd := h.send(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !isQuit(cmd) || h.shutdowns != 1 {
		t.Fatalf("expected quit with one shutdown, got quit=%v shutdowns=%d", isQuit(cmd), h.shutdowns)
	}
}

func TestTypedKeysAreIgnored(t *testing.T) {
	h := newHarness(t)
	for _, r := range "zq" {
		if cmd := h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}); cmd != nil {
			t.Fatalf("key %c should not produce a command", r)
		}
	}
	if h.shutdowns != 0 || len(h.out.lines) != 0 {
		t.Fatal("terminal letters must not drive the surface")
	}
}

func TestFrameTakesLatestSnapshot(t *testing.T) {
	h := newHarness(t)
	h.snapshots <- []string{"c", "z"}
	h.send(FrameMsg(time.Now()))
	if fmt.Sprint(h.m.held) != "[c z]" {
		t.Fatalf("expected held keys from snapshot, got %v", h.m.held)
	}

	view := h.m.View()
	if !strings.Contains(view, string(h.m.theme.Symbols.KeyDown)) {
		t.Fatal("view should highlight held keys")
	}
}

func TestViewMatchesLayout(t *testing.T) {
	h := newHarness(t)
	lines := strings.Split(h.m.View(), "\n")
	if len(lines) <= helpRow {
		t.Fatalf("view too short: %d lines", len(lines))
	}
	if !strings.Contains(lines[controlsRow], "ROTARY") || !strings.Contains(lines[controlsRow], "WAVE") {
		t.Fatalf("knob captions not on row %d: %q", controlsRow, lines[controlsRow])
	}
	if !strings.Contains(lines[controlsRow+1], "GENERATE") {
		t.Fatalf("button label not on row %d: %q", controlsRow+1, lines[controlsRow+1])
	}
	if !strings.Contains(lines[selectorRow], "1/32") {
		t.Fatalf("selector caption not on row %d: %q", selectorRow, lines[selectorRow])
	}
	if idx := strings.Index(lines[controlsRow], "WAVE"); idx < h.m.layout.waveform.x || idx >= h.m.layout.waveform.x+h.m.layout.waveform.w {
		t.Fatalf("wave caption at column %d, outside its hit region", idx)
	}
}

func TestRunHeadlessShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	calls := 0
	done := make(chan struct{})
	go func() {
		RunHeadless(ctx, 200, func() {
			mu.Lock()
			calls++
			mu.Unlock()
		})
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("headless loop did not stop")
	}
	if calls != 1 {
		t.Fatalf("expected one shutdown, got %d", calls)
	}
}
