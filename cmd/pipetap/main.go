package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"keysurface/channel"
	"keysurface/input"
	"keysurface/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "listen":
		err = listen()
	case "ports":
		err = listPorts()
	case "keys":
		err = keys()
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipetap: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Pipe and input diagnostics")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  listen        - Read the pipe like the synth does and decode every line")
	fmt.Println("  ports         - List MIDI input ports")
	fmt.Println("  keys [device] - Print raw key events from the keyboard device")
}

// listen stands in for the synth: open the read side, decode, stop at quit
func listen() error {
	path := channel.ResolvePath()
	if err := channel.New(path, nil).Ensure(); err != nil {
		return err
	}

	fmt.Printf("Waiting for a writer on %s...\n", path)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	fmt.Println("Connected")

	return decode(f, os.Stdout)
}

func decode(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		cmd, err := channel.ParseCommand(scanner.Text())
		if err != nil {
			fmt.Fprintf(w, "  ?? %v\n", err)
			continue
		}

		switch cmd.Tag {
		case channel.TagQuit:
			fmt.Fprintln(w, "quit")
			return nil
		case channel.TagPress, channel.TagRelease:
			if note, ok := midi.NoteForKey(cmd.Payload); ok {
				fmt.Fprintf(w, "%-8s %-8s %-4s %8.2f Hz\n", cmd.Tag, cmd.Payload, midi.NoteName(note), midi.Frequency(note))
			} else {
				fmt.Fprintf(w, "%-8s %s\n", cmd.Tag, cmd.Payload)
			}
		case channel.TagGenerate:
			rotary, selector, _ := cmd.GenerateValues()
			fmt.Fprintf(w, "%-8s level=%d harmonic=%d\n", cmd.Tag, rotary, selector)
		default:
			v, _ := cmd.Int()
			fmt.Fprintf(w, "%-8s %d\n", cmd.Tag, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	fmt.Fprintln(w, "writer closed without quit")
	return nil
}

func listPorts() error {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Printf("(waiting up to %s...)\n", midi.PortTimeout)

	ports, err := midi.ListInPorts(midi.PortTimeout)
	if errors.Is(err, midi.ErrPortsTimeout) {
		fmt.Println("\nTIMEOUT! The MIDI backend is not answering.")
		return nil
	}
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("  (none)")
	}
	for i, p := range ports {
		fmt.Printf("  %d: %s\n", i, p.Name)
	}
	return nil
}

func keys() error {
	device := ""
	if len(os.Args) > 2 {
		device = os.Args[2]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src := input.NewEvdevSource(device, nil)
	if err := src.Start(); err != nil {
		return err
	}
	defer src.Stop()

	fmt.Println("Press keys, Ctrl+C to exit")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-src.Events():
			if !ok {
				return errors.New("keyboard device closed")
			}
			state := "up"
			if ev.Down {
				state = "down"
			}
			fmt.Printf("%-12s %s\n", ev.ID, state)
		}
	}
}
