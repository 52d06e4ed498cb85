package channel

import (
	"fmt"
	"strconv"
	"strings"
)

// Command tags understood by the consumer on the other end of the pipe
const (
	TagPress    = "press"
	TagRelease  = "release"
	TagRotary   = "rotary"
	TagWave     = "wave"
	TagSelect   = "select"
	TagGenerate = "generate"
	TagQuit     = "quit"
)

// Command is one framed line on the pipe: "<tag>:<payload>", or a bare tag
// when there is no payload (quit).
type Command struct {
	Tag     string
	Payload string
}

func (c Command) String() string {
	if c.Payload == "" {
		return c.Tag
	}
	return c.Tag + ":" + c.Payload
}

func Press(id string) Command {
	return Command{Tag: TagPress, Payload: id}
}

func Release(id string) Command {
	return Command{Tag: TagRelease, Payload: id}
}

// Level is a continuous control update (rotary, wave, select)
func Level(tag string, value int) Command {
	return Command{Tag: tag, Payload: strconv.Itoa(value)}
}

func Generate(rotary, selector int) Command {
	return Command{Tag: TagGenerate, Payload: fmt.Sprintf("%d,%d", rotary, selector)}
}

func Quit() Command {
	return Command{Tag: TagQuit}
}

// levelRanges holds the valid payload range for each numeric tag
var levelRanges = map[string][2]int{
	TagRotary: {0, 100},
	TagWave:   {0, 100},
	TagSelect: {1, 32},
}

// ParseCommand decodes a single line (trailing newline allowed) and checks
// the payload against the tag's contract.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == TagQuit {
		return Quit(), nil
	}

	tag, payload, ok := strings.Cut(line, ":")
	if !ok {
		return Command{}, fmt.Errorf("malformed command %q", line)
	}
	cmd := Command{Tag: tag, Payload: payload}

	switch tag {
	case TagPress, TagRelease:
		if payload == "" || strings.Contains(payload, ":") {
			return Command{}, fmt.Errorf("bad key id in %q", line)
		}
	case TagRotary, TagWave, TagSelect:
		v, err := strconv.Atoi(payload)
		if err != nil {
			return Command{}, fmt.Errorf("bad level in %q: %w", line, err)
		}
		r := levelRanges[tag]
		if v < r[0] || v > r[1] {
			return Command{}, fmt.Errorf("level %d out of range [%d,%d] for %s", v, r[0], r[1], tag)
		}
	case TagGenerate:
		if _, _, err := cmd.GenerateValues(); err != nil {
			return Command{}, err
		}
	default:
		return Command{}, fmt.Errorf("unknown tag %q", tag)
	}
	return cmd, nil
}

// Int returns the numeric payload of a level command
func (c Command) Int() (int, error) {
	return strconv.Atoi(c.Payload)
}

// GenerateValues splits a generate payload into rotary and selector values
func (c Command) GenerateValues() (rotary, selector int, err error) {
	a, b, ok := strings.Cut(c.Payload, ",")
	if !ok {
		return 0, 0, fmt.Errorf("bad generate payload %q", c.Payload)
	}
	if rotary, err = strconv.Atoi(a); err != nil {
		return 0, 0, fmt.Errorf("bad generate rotary %q: %w", a, err)
	}
	if selector, err = strconv.Atoi(b); err != nil {
		return 0, 0, fmt.Errorf("bad generate selector %q: %w", b, err)
	}
	return rotary, selector, nil
}
