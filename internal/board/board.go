package board

import (
	"iter"

	"chessrules/internal/core"
)

var backRank = [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Board owns the 64 squares and tracks each king's position on every
// mutation. All occupancy changes go through Place and Clear.
type Board struct {
	squares [NumSquares]Square
	kings   [2]Coord
	hasKing [2]bool
}

// Empty builds the square graph with no pieces on it
func Empty() *Board {
	b := &Board{}
	for i := range b.squares {
		c := Coord(i)
		sq := &b.squares[i]
		sq.coord = c
		for _, d := range allDirections {
			delta := directionDelta[d]
			if n, ok := NewCoord(c.File()+delta[0], c.Rank()+delta[1]); ok {
				sq.adjacent[d] = int8(n)
			} else {
				sq.adjacent[d] = -1
			}
		}
	}
	return b
}

// New returns a board with the standard starting array
func New() *Board {
	b := Empty()
	for file, k := range backRank {
		b.Place(Coord(file), NewPiece(k, core.ColorWhite))
		b.Place(Coord(8+file), NewPiece(Pawn, core.ColorWhite))
		b.Place(Coord(48+file), NewPiece(Pawn, core.ColorBlack))
		b.Place(Coord(56+file), NewPiece(k, core.ColorBlack))
	}
	return b
}

// Clone returns an independent deep copy
func (b *Board) Clone() *Board {
	nb := *b
	return &nb
}

func (b *Board) Square(c Coord) *Square {
	return &b.squares[c]
}

// Lookup resolves a coordinate string to its square
func (b *Board) Lookup(s string) (*Square, error) {
	c, err := ParseCoord(s)
	if err != nil {
		return nil, err
	}
	return &b.squares[c], nil
}

// Squares yields every square once, a1 through h8
func (b *Board) Squares() iter.Seq[*Square] {
	return func(yield func(*Square) bool) {
		for i := range b.squares {
			if !yield(&b.squares[i]) {
				return
			}
		}
	}
}

func (b *Board) Neighbor(c Coord, d Direction) (Coord, bool) {
	return b.squares[c].Neighbor(d)
}

func (b *Board) PieceAt(c Coord) (Piece, bool) {
	return b.squares[c].Piece()
}

// Place puts p on c, replacing any occupant
func (b *Board) Place(c Coord, p Piece) {
	b.untrackKing(c)
	b.squares[c].piece = p
	if p.Kind == King {
		i := p.Color.Index()
		b.kings[i] = c
		b.hasKing[i] = true
	}
}

// Clear empties c and returns what was there
func (b *Board) Clear(c Coord) Piece {
	b.untrackKing(c)
	p := b.squares[c].piece
	b.squares[c].piece = Piece{}
	return p
}

func (b *Board) untrackKing(c Coord) {
	p := b.squares[c].piece
	if p.Kind != King {
		return
	}
	i := p.Color.Index()
	if b.hasKing[i] && b.kings[i] == c {
		b.hasKing[i] = false
	}
}

// KingSquare returns where the king of the given color stands
func (b *Board) KingSquare(color core.Color) (Coord, bool) {
	i := color.Index()
	return b.kings[i], b.hasKing[i]
}

func (b *Board) SetGhost(c Coord, color core.Color) {
	b.squares[c].ghost = color
}

// ClearGhosts removes every en passant marker left by color
func (b *Board) ClearGhosts(color core.Color) {
	for i := range b.squares {
		if b.squares[i].ghost == color {
			b.squares[i].ghost = 0
		}
	}
}

// Occupied yields the squares holding a piece of color
func (b *Board) Occupied(color core.Color) iter.Seq2[Coord, Piece] {
	return func(yield func(Coord, Piece) bool) {
		for i := range b.squares {
			p := b.squares[i].piece
			if p.Empty() || p.Color != color {
				continue
			}
			if !yield(Coord(i), p) {
				return
			}
		}
	}
}

// Material sums piece values for color
func (b *Board) Material(color core.Color) int {
	total := 0
	for _, p := range b.Occupied(color) {
		total += p.Kind.Value()
	}
	return total
}

// Count tallies pieces of color by kind
func (b *Board) Count(color core.Color) map[Kind]int {
	counts := make(map[Kind]int)
	for _, p := range b.Occupied(color) {
		counts[p.Kind]++
	}
	return counts
}
