package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"keysurface/control"
	"keysurface/debug"
	"keysurface/theme"
)

// DefaultFPS is the frame rate of the interaction loop
const DefaultFPS = 60

// frames the generate button stays lit after a press
const flashFrames = 6

// Options wires the model to the rest of the program
type Options struct {
	Ctx       context.Context // cancelled by the quit key or a signal
	Surface   *control.Surface
	Shutdown  func()          // sends the quit marker and closes the pipe, once
	Snapshots <-chan []string // held keys from the listener
	Theme     *theme.Theme
	FPS       int
	PipePath  string
	Source    string
	Log       *zap.Logger
}

type Model struct {
	ctx       context.Context
	surface   *control.Surface
	shutdown  func()
	snapshots <-chan []string
	theme     *theme.Theme
	fps       int
	pipePath  string
	source    string
	log       *zap.Logger

	layout layout
	keys   keyMap
	help   help.Model

	held      []string
	captured  region
	lastY     int // surface units, for delta drags
	flash     int
	showHints bool
	quitting  bool
}

// FrameMsg is one tick of the interaction loop
type FrameMsg time.Time

func NewModel(opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Theme == nil {
		opts.Theme = theme.New(nil)
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Ctx == nil {
		opts.Ctx = context.Background()
	}
	return Model{
		ctx:       opts.Ctx,
		surface:   opts.Surface,
		shutdown:  opts.Shutdown,
		snapshots: opts.Snapshots,
		theme:     opts.Theme,
		fps:       opts.FPS,
		pipePath:  opts.PipePath,
		source:    opts.Source,
		log:       opts.Log,
		layout:    newLayout(),
		keys:      newKeyMap(),
		help:      help.New(),
	}
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

// NextFrame schedules the next frame tick
func NextFrame(fps int) tea.Cmd {
	return tea.Tick(frameInterval(fps), func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return NextFrame(m.fps)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		if m.ctx.Err() != nil {
			m.log.Info("cancelled, shutting down")
			return m.quit()
		}
		m.drainSnapshots()
		if m.flash > 0 {
			m.flash--
		}
		return m, NextFrame(m.fps)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.Help):
			m.showHints = !m.showHints
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if !m.quitting {
		m.quitting = true
		if m.shutdown != nil {
			m.shutdown()
		}
	}
	return m, tea.Quit
}

// drainSnapshots keeps the newest held-key snapshot
func (m *Model) drainSnapshots() {
	if m.snapshots == nil {
		return
	}
	for {
		select {
		case snap := <-m.snapshots:
			m.held = snap
		default:
			return
		}
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	x, y := toSurface(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		hit := m.layout.hit(msg.X, msg.Y)
		if hit == regionGenerate {
			m.surface.TriggerGenerate()
			m.flash = flashFrames
			return
		}
		if hit == regionNone {
			return
		}
		m.captured = hit
		m.lastY = y
		m.log.Debug("capture", zap.Stringer("control", hit), zap.Int("x", x), zap.Int("y", y))
		if hit == regionSelector {
			m.surface.UpdateSelector(x, m.layout.track())
		}

	case tea.MouseActionRelease:
		if m.captured != regionNone {
			m.log.Debug("release", zap.Stringer("control", m.captured))
		}
		m.captured = regionNone

	case tea.MouseActionMotion:
		debug.LogEvery(50, "tui", "drag %s x=%d y=%d", m.captured, x, y)
		switch m.captured {
		case regionRotary:
			m.surface.UpdateRotary(y - m.lastY)
		case regionWaveform:
			m.surface.UpdateWaveform(y - m.lastY)
		case regionSelector:
			m.surface.UpdateSelector(x, m.layout.track())
		default:
			return
		}
		m.lastY = y
	}
}
