package core

import "fmt"

type Color byte

const (
	ColorWhite Color = iota + 1
	ColorBlack
)

// Colors lists both sides in turn order
var Colors = [2]Color{ColorWhite, ColorBlack}

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "w"
	case ColorBlack:
		return "b"
	default:
		return "-"
	}
}

// Name returns the display name of the color
func (c Color) Name() string {
	switch c {
	case ColorWhite:
		return "White"
	case ColorBlack:
		return "Black"
	default:
		return "None"
	}
}

// Index maps white to 0 and black to 1 for array-backed per-color state
func (c Color) Index() int {
	if c == ColorBlack {
		return 1
	}
	return 0
}

func (c Color) Valid() bool {
	return c == ColorWhite || c == ColorBlack
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// ParseColor accepts "w", "b", "white" or "black"
func ParseColor(s string) (Color, error) {
	switch s {
	case "w", "white":
		return ColorWhite, nil
	case "b", "black":
		return ColorBlack, nil
	}
	return 0, fmt.Errorf("invalid color: %q", s)
}

type State int

const (
	StateOngoing State = iota
	StateCheck
	StateCheckmate
	StateStalemate
	StateTimeout
)

func (s State) String() string {
	switch s {
	case StateOngoing:
		return "ongoing"
	case StateCheck:
		return "check"
	case StateCheckmate:
		return "checkmate"
	case StateStalemate:
		return "stalemate"
	case StateTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Over reports whether no further moves can be played
func (s State) Over() bool {
	return s == StateCheckmate || s == StateStalemate || s == StateTimeout
}
