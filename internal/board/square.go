package board

import "chessrules/internal/core"

type Direction int

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var allDirections = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

var directionDelta = [8][2]int{
	North:     {0, 1},
	NorthEast: {1, 1},
	East:      {1, 0},
	SouthEast: {1, -1},
	South:     {0, -1},
	SouthWest: {-1, -1},
	West:      {-1, 0},
	NorthWest: {-1, 1},
}

func (d Direction) Opposite() Direction {
	return (d + 4) % 8
}

func (d Direction) String() string {
	return [...]string{"n", "ne", "e", "se", "s", "sw", "w", "nw"}[d]
}

// Square is one node of the board graph. Occupancy is stored inline.
type Square struct {
	coord    Coord
	adjacent [8]int8 // -1 past the edge
	piece    Piece
	ghost    core.Color
}

func (s *Square) Coord() Coord { return s.coord }

// Neighbor follows one adjacency link
func (s *Square) Neighbor(d Direction) (Coord, bool) {
	n := s.adjacent[d]
	if n < 0 {
		return 0, false
	}
	return Coord(n), true
}

// Piece returns the occupant, if any
func (s *Square) Piece() (Piece, bool) {
	return s.piece, !s.piece.Empty()
}

func (s *Square) Occupied() bool { return !s.piece.Empty() }

// Ghost is the color of a pawn that can be taken en passant on this square
func (s *Square) Ghost() core.Color { return s.ghost }

func (s *Square) IsLight() bool { return s.coord.IsLight() }

func (s *Square) String() string { return s.coord.String() }
