package board

import (
	"fmt"

	"chessrules/internal/core"
)

// Coord addresses a square as rank*8+file, a1 = 0 and h8 = 63
type Coord uint8

const NumSquares = 64

func NewCoord(file, rank int) (Coord, bool) {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return 0, false
	}
	return Coord(rank*8 + file), true
}

// MustCoord is for literals in tests and tables; it panics on bad input
func MustCoord(s string) Coord {
	c, err := ParseCoord(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCoord accepts exactly a lowercase file letter and a rank digit
func ParseCoord(s string) (Coord, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidCoordinate, s)
	}
	return Coord(int(s[1]-'1')*8 + int(s[0]-'a')), nil
}

func (c Coord) File() int { return int(c) % 8 }
func (c Coord) Rank() int { return int(c) / 8 }

func (c Coord) String() string {
	if c >= NumSquares {
		return "-"
	}
	return string([]byte{byte('a' + c.File()), byte('1' + c.Rank())})
}

// IsLight reports the square shade; a1 is dark
func (c Coord) IsLight() bool {
	return (c.File()+c.Rank())%2 == 1
}

// CoordToIdx converts "e4" into zero-based (file, rank) = (4, 3)
func CoordToIdx(s string) (file, rank int, err error) {
	c, err := ParseCoord(s)
	if err != nil {
		return 0, 0, err
	}
	return c.File(), c.Rank(), nil
}

// IdxToCoord is the inverse of CoordToIdx
func IdxToCoord(file, rank int) (string, error) {
	c, ok := NewCoord(file, rank)
	if !ok {
		return "", fmt.Errorf("%w: index (%d, %d)", core.ErrInvalidCoordinate, file, rank)
	}
	return c.String(), nil
}
