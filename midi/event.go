package midi

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// NoteEvent is sent when a key goes down or up on a keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
	On       bool
}

// noteEventFrom decodes note start/end messages. Note on with velocity 0
// counts as note off.
func noteEventFrom(msg gomidi.Message) (NoteEvent, bool) {
	var channel, note, velocity uint8
	if msg.GetNoteStart(&channel, &note, &velocity) {
		return NoteEvent{Note: note, Velocity: velocity, Channel: channel, On: true}, true
	}
	if msg.GetNoteEnd(&channel, &note) {
		return NoteEvent{Note: note, Channel: channel}, true
	}
	return NoteEvent{}, false
}

// BaseNote is the MIDI note bound to the first computer key (C4)
const BaseNote uint8 = 60

// KeyRow is the computer-keyboard piano row, one key per semitone from BaseNote
var KeyRow = []string{"z", "s", "x", "d", "c", "v", "g", "b", "h", "n", "j", "m"}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// KeyForNote returns the key id for a MIDI note: a KeyRow entry inside the
// mapped octave, note<N> outside it.
func KeyForNote(note uint8) string {
	if note >= BaseNote && int(note-BaseNote) < len(KeyRow) {
		return KeyRow[note-BaseNote]
	}
	return "note" + strconv.Itoa(int(note))
}

// NoteForKey is the inverse of KeyForNote
func NoteForKey(id string) (uint8, bool) {
	for i, k := range KeyRow {
		if k == id {
			return BaseNote + uint8(i), true
		}
	}
	if rest, ok := strings.CutPrefix(id, "note"); ok {
		n, err := strconv.Atoi(rest)
		if err == nil && n >= 0 && n <= 127 {
			return uint8(n), true
		}
	}
	return 0, false
}

// NoteName returns scientific pitch notation, e.g. 61 -> "C#4"
func NoteName(note uint8) string {
	return fmt.Sprintf("%s%d", noteNames[note%12], int(note)/12-1)
}

// Frequency returns the equal-tempered frequency in Hz (A4 = 440)
func Frequency(note uint8) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}
