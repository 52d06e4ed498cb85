package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"keysurface/channel"
	"keysurface/config"
	"keysurface/control"
	"keysurface/debug"
	"keysurface/input"
	"keysurface/theme"
	"keysurface/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "keysurface: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if cfg.Debug {
		if err := debug.Enable(""); err != nil {
			fmt.Fprintf(os.Stderr, "debug log disabled: %v\n", err)
		}
		defer debug.Disable()
	}
	log := debug.Logger("main")
	debug.Log("main", "config %+v", *cfg)

	th, err := loadTheme(cfg.UI.Palette)
	if err != nil {
		return err
	}

	// Signals and the quit key both end the session through ctx
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pipe := channel.New(channel.ResolvePath(), debug.Logger("channel"))
	if err := pipe.Ensure(); err != nil {
		return err
	}
	defer pipe.Shutdown()

	fmt.Fprintf(os.Stderr, "waiting for a reader on %s (start the synth)\n", pipe.Path())
	if err := pipe.Open(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	listener := input.NewListener(newKeySource(cfg), pipe, cfg.Input.QuitKey, debug.Logger("input"))
	if err := listener.Start(cancel); err != nil {
		return err
	}
	defer listener.Stop()

	log.Info("session started",
		zap.String("pipe", pipe.Path()),
		zap.String("source", string(cfg.Input.Source)),
		zap.Int("fps", cfg.UI.FPS))

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		log.Info("stdout is not a terminal, running headless")
		tui.RunHeadless(ctx, cfg.UI.FPS, pipe.Shutdown)
		return nil
	}

	m := tui.NewModel(tui.Options{
		Ctx:       ctx,
		Surface:   control.NewSurface(pipe, debug.Logger("control")),
		Shutdown:  pipe.Shutdown,
		Snapshots: listener.Snapshots(),
		Theme:     th,
		FPS:       cfg.UI.FPS,
		PipePath:  pipe.Path(),
		Source:    string(cfg.Input.Source),
		Log:       debug.Logger("tui"),
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithoutSignalHandler())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func newKeySource(cfg *config.Config) input.KeySource {
	switch cfg.Input.Source {
	case config.InputMIDI:
		return input.NewMIDISource(cfg.Input.MIDIPort, debug.Logger("midi"))
	default:
		return input.NewEvdevSource(cfg.Input.Device, debug.Logger("evdev"))
	}
}

func loadTheme(path string) (*theme.Theme, error) {
	if path == "" {
		return theme.New(nil), nil
	}
	palette, err := theme.LoadGPL(path)
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	return theme.New(palette), nil
}
