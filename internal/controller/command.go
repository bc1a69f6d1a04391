package controller

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidCommand is returned for commands that cannot be parsed or applied.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrNotHandled is returned by Apply for commands the caller must handle
	// (save and quit).
	ErrNotHandled = errors.New("command not handled by controller")
)

// CommandKind enumerates the control surface.
type CommandKind int

const (
	SelectColor CommandKind = iota
	ToggleEraser
	Clear
	Thicker
	Thinner
	TogglePreview
	Save
	Quit
)

var commandNames = map[CommandKind]string{
	SelectColor:   "color",
	ToggleEraser:  "eraser",
	Clear:         "clear",
	Thicker:       "thicker",
	Thinner:       "thinner",
	TogglePreview: "preview",
	Save:          "save",
	Quit:          "quit",
}

// String returns the command keyword.
func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is one request from the keyboard, tray or HTTP surface. Color is the
// palette index for SelectColor.
type Command struct {
	Kind  CommandKind
	Color int
}

// String returns the textual form accepted by ParseCommand, e.g. "color:2".
func (c Command) String() string {
	if c.Kind == SelectColor {
		return fmt.Sprintf("%s:%d", c.Kind, c.Color)
	}
	return c.Kind.String()
}

// ParseCommand parses the textual form of a command: one of the keywords, or
// "color:N" with a zero-based palette index.
func ParseCommand(s string) (Command, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if rest, ok := strings.CutPrefix(s, "color:"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q", ErrInvalidCommand, s)
		}
		return Command{Kind: SelectColor, Color: n}, nil
	}

	for kind, name := range commandNames {
		if kind != SelectColor && name == s {
			return Command{Kind: kind}, nil
		}
	}
	return Command{}, fmt.Errorf("%w: %q", ErrInvalidCommand, s)
}

// ParseKey maps a keyboard key to a command. Keys 1 to 8 select palette
// entries 0 to 7.
func ParseKey(key rune) (Command, bool) {
	switch key {
	case 'q', 'Q':
		return Command{Kind: Quit}, true
	case 's', 'S':
		return Command{Kind: Save}, true
	case 'c', 'C':
		return Command{Kind: Clear}, true
	case 'e', 'E':
		return Command{Kind: ToggleEraser}, true
	case 'p', 'P':
		return Command{Kind: TogglePreview}, true
	case '+', '=':
		return Command{Kind: Thicker}, true
	case '-', '_':
		return Command{Kind: Thinner}, true
	}
	if key >= '1' && key <= '8' {
		return Command{Kind: SelectColor, Color: int(key - '1')}, true
	}
	return Command{}, false
}
