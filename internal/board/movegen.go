package board

import "chessrules/internal/core"

const maxSlide = 7

type generator func(b *Board, from Coord, p Piece) []Move

var (
	diagonals  = []Direction{NorthEast, SouthEast, SouthWest, NorthWest}
	orthogonal = []Direction{North, East, South, West}
	// queen moves as bishop and rook combined
	queenDirs = append(append([]Direction{}, diagonals...), orthogonal...)

	knightPaths = [8][3]Direction{
		{North, North, East}, {North, North, West},
		{East, East, North}, {East, East, South},
		{South, South, East}, {South, South, West},
		{West, West, North}, {West, West, South},
	}

	generators = [...]generator{
		Pawn:   pawnMoves,
		Knight: knightMoves,
		Bishop: func(b *Board, from Coord, _ Piece) []Move { return b.slide(from, diagonals, maxSlide) },
		Rook:   func(b *Board, from Coord, _ Piece) []Move { return b.slide(from, orthogonal, maxSlide) },
		Queen:  func(b *Board, from Coord, _ Piece) []Move { return b.slide(from, queenDirs, maxSlide) },
		King:   kingMoves,
	}
)

// PseudoLegalMoves generates moves for the piece on from, ignoring
// whether they expose its own king. The first occupied square on a line
// is included whatever its color.
func (b *Board) PseudoLegalMoves(from Coord) []Move {
	p, ok := b.PieceAt(from)
	if !ok {
		return nil
	}
	return generators[p.Kind](b, from, p)
}

// AllowedMoves drops pseudo-legal moves onto the mover's own pieces
func (b *Board) AllowedMoves(from Coord) []Move {
	p, ok := b.PieceAt(from)
	if !ok {
		return nil
	}
	pseudo := b.PseudoLegalMoves(from)
	allowed := pseudo[:0]
	for _, m := range pseudo {
		if q, occupied := b.PieceAt(m.To); occupied && q.Color == p.Color {
			continue
		}
		allowed = append(allowed, m)
	}
	return allowed
}

// traverse walks d from c, returning each empty square and the first
// occupied one, at most depth squares
func (b *Board) traverse(c Coord, d Direction, depth int) []Coord {
	var path []Coord
	for range depth {
		next, ok := b.Neighbor(c, d)
		if !ok {
			break
		}
		path = append(path, next)
		if b.squares[next].Occupied() {
			break
		}
		c = next
	}
	return path
}

func (b *Board) slide(from Coord, dirs []Direction, depth int) []Move {
	var moves []Move
	for _, d := range dirs {
		for _, to := range b.traverse(from, d, depth) {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

func knightMoves(b *Board, from Coord, _ Piece) []Move {
	var moves []Move
paths:
	for _, path := range knightPaths {
		c := from
		for _, d := range path {
			next, ok := b.Neighbor(c, d)
			if !ok {
				continue paths
			}
			c = next
		}
		moves = append(moves, Move{From: from, To: c})
	}
	return moves
}

// Forward is the direction pawns of color advance
func Forward(color core.Color) Direction {
	if color == core.ColorBlack {
		return South
	}
	return North
}

func pawnMoves(b *Board, from Coord, p Piece) []Move {
	var moves []Move
	fwd := Forward(p.Color)

	if one, ok := b.Neighbor(from, fwd); ok && !b.squares[one].Occupied() {
		moves = append(moves, Move{From: from, To: one})
		if !p.Moved {
			if two, ok := b.Neighbor(one, fwd); ok && !b.squares[two].Occupied() {
				moves = append(moves, Move{From: from, To: two, PawnDoubleMove: true})
			}
		}
	}

	enemy := core.OppositeColor(p.Color)
	for _, side := range []Direction{East, West} {
		diag, ok := b.diagonal(from, fwd, side)
		if !ok {
			continue
		}
		sq := &b.squares[diag]
		switch {
		case sq.Occupied() && sq.piece.Color == enemy:
			moves = append(moves, Move{From: from, To: diag})
		case !sq.Occupied() && sq.ghost == enemy:
			moves = append(moves, Move{From: from, To: diag, EnPassant: true})
		}
	}
	return moves
}

func (b *Board) diagonal(from Coord, fwd, side Direction) (Coord, bool) {
	step, ok := b.Neighbor(from, fwd)
	if !ok {
		return 0, false
	}
	return b.Neighbor(step, side)
}

func kingMoves(b *Board, from Coord, p Piece) []Move {
	moves := b.slide(from, allDirections, 1)
	if p.Moved {
		return moves
	}
	if m, ok := b.castleCandidate(from, p, East, 3); ok {
		moves = append(moves, m)
	}
	if m, ok := b.castleCandidate(from, p, West, 4); ok {
		moves = append(moves, m)
	}
	return moves
}

// castleCandidate succeeds when the walk toward the rook reaches exactly
// dist squares and ends on an unmoved rook of the king's color. The king
// lands two squares over.
func (b *Board) castleCandidate(from Coord, king Piece, d Direction, dist int) (Move, bool) {
	path := b.traverse(from, d, maxSlide)
	if len(path) != dist {
		return Move{}, false
	}
	rook, ok := b.PieceAt(path[dist-1])
	if !ok || rook.Kind != Rook || rook.Moved || rook.Color != king.Color {
		return Move{}, false
	}
	return Move{From: from, To: path[1], Castle: true}, true
}

// CastleRook returns the rook's origin and destination for a castling
// move, derived from the king's landing square
func CastleRook(m Move) (from, to Coord) {
	if m.To.File() > m.From.File() {
		// king side, rook h -> f
		return m.To + 1, m.To - 1
	}
	// queen side, rook a -> d
	return m.To - 2, m.To + 1
}
