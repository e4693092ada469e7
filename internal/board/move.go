package board

// Move is a candidate move. Flags describe side effects beyond relocating
// the mover.
type Move struct {
	From           Coord
	To             Coord
	Castle         bool // also relocates the rook
	EnPassant      bool // captures the pawn beside To
	PawnDoubleMove bool // leaves a ghost on the skipped square
}

func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// Destinations extracts the target squares of moves
func Destinations(moves []Move) []Coord {
	out := make([]Coord, len(moves))
	for i, m := range moves {
		out[i] = m.To
	}
	return out
}

// Find returns the move landing on to, if present
func Find(moves []Move, to Coord) (Move, bool) {
	for _, m := range moves {
		if m.To == to {
			return m, true
		}
	}
	return Move{}, false
}
