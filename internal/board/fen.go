package board

import (
	"fmt"
	"strconv"
	"strings"

	"chessrules/internal/core"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Position is a board plus the side to move and move counters
type Position struct {
	Board    *Board
	Turn     core.Color
	Halfmove int
	Fullmove int
}

// ParseFEN builds a position. Moved flags are derived from castling
// rights and pawn home ranks; the en passant field becomes a ghost.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return nil, fmt.Errorf("invalid FEN: expected 6 parts, got %d", len(parts))
	}

	b := Empty()

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("invalid FEN: expected 8 ranks")
	}

	kings := [2]int{}
	for r := 0; r < 8; r++ {
		rank := 7 - r
		file := 0
		for i := 0; i < len(ranks[r]); i++ {
			ch := ranks[r][i]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file >= 8 {
				return nil, fmt.Errorf("invalid FEN: too many pieces in rank %d", rank+1)
			}
			kind, color, ok := KindFromLetter(ch)
			if !ok {
				return nil, fmt.Errorf("invalid FEN: unknown piece %q", ch)
			}
			if kind == Pawn && (rank == 0 || rank == 7) {
				return nil, fmt.Errorf("invalid FEN: pawn on rank %d", rank+1)
			}
			if kind == King {
				kings[color.Index()]++
			}
			b.Place(Coord(rank*8+file), NewPiece(kind, color))
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("invalid FEN: rank %d has %d files", rank+1, file)
		}
	}
	if kings[0] != 1 || kings[1] != 1 {
		return nil, fmt.Errorf("invalid FEN: each side needs exactly one king")
	}

	pos := &Position{Board: b}

	switch parts[1] {
	case "w":
		pos.Turn = core.ColorWhite
	case "b":
		pos.Turn = core.ColorBlack
	default:
		return nil, fmt.Errorf("invalid FEN: turn must be 'w' or 'b'")
	}

	if err := b.applyCastlingRights(parts[2]); err != nil {
		return nil, err
	}

	if parts[3] != "-" {
		c, err := ParseCoord(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid FEN: en passant square: %w", err)
		}
		mover := core.OppositeColor(pos.Turn)
		wantRank := 2
		if mover == core.ColorBlack {
			wantRank = 5
		}
		if c.Rank() != wantRank {
			return nil, fmt.Errorf("invalid FEN: en passant square %s does not fit side to move", c)
		}
		b.SetGhost(c, mover)
	}

	var err error
	if pos.Halfmove, err = strconv.Atoi(parts[4]); err != nil || pos.Halfmove < 0 {
		return nil, fmt.Errorf("invalid FEN: halfmove counter")
	}
	if pos.Fullmove, err = strconv.Atoi(parts[5]); err != nil || pos.Fullmove < 1 {
		return nil, fmt.Errorf("invalid FEN: fullmove counter")
	}

	return pos, nil
}

// applyCastlingRights marks everything moved except pawns on their home
// rank and the kings and rooks the rights field vouches for
func (b *Board) applyCastlingRights(rights string) error {
	if rights != "-" {
		for _, r := range rights {
			if !strings.ContainsRune("KQkq", r) {
				return fmt.Errorf("invalid FEN: castling field %q", rights)
			}
		}
	}

	unmoved := make(map[Coord]bool)
	for _, right := range []struct {
		flag       rune
		king, rook string
		color      core.Color
	}{
		{'K', "e1", "h1", core.ColorWhite},
		{'Q', "e1", "a1", core.ColorWhite},
		{'k', "e8", "h8", core.ColorBlack},
		{'q', "e8", "a8", core.ColorBlack},
	} {
		if !strings.ContainsRune(rights, right.flag) {
			continue
		}
		king, rook := MustCoord(right.king), MustCoord(right.rook)
		if p, ok := b.PieceAt(king); !ok || p.Kind != King || p.Color != right.color {
			return fmt.Errorf("invalid FEN: castling right %c without king on %s", right.flag, right.king)
		}
		if p, ok := b.PieceAt(rook); !ok || p.Kind != Rook || p.Color != right.color {
			return fmt.Errorf("invalid FEN: castling right %c without rook on %s", right.flag, right.rook)
		}
		unmoved[king] = true
		unmoved[rook] = true
	}

	for i := range b.squares {
		sq := &b.squares[i]
		p := sq.piece
		switch p.Kind {
		case NoKind:
			continue
		case Pawn:
			home := 1
			if p.Color == core.ColorBlack {
				home = 6
			}
			p.Moved = sq.coord.Rank() != home
		case King, Rook:
			p.Moved = !unmoved[sq.coord]
		}
		sq.piece = p
	}
	return nil
}

// FEN serializes the board with the given side to move and counters
func (b *Board) FEN(turn core.Color, halfmove, fullmove int) string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := range 8 {
			p, ok := b.PieceAt(Coord(rank*8 + file))
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	fmt.Fprintf(&sb, " %s %s %s %d %d", turn, b.castlingRights(), b.enPassantField(turn), halfmove, fullmove)
	return sb.String()
}

func (b *Board) castlingRights() string {
	var rights strings.Builder
	for _, right := range []struct {
		flag       byte
		king, rook Coord
		color      core.Color
	}{
		{'K', 4, 7, core.ColorWhite},
		{'Q', 4, 0, core.ColorWhite},
		{'k', 60, 63, core.ColorBlack},
		{'q', 60, 56, core.ColorBlack},
	} {
		k, kok := b.PieceAt(right.king)
		r, rok := b.PieceAt(right.rook)
		if kok && rok && k.Kind == King && !k.Moved && k.Color == right.color &&
			r.Kind == Rook && !r.Moved && r.Color == right.color {
			rights.WriteByte(right.flag)
		}
	}
	if rights.Len() == 0 {
		return "-"
	}
	return rights.String()
}

func (b *Board) enPassantField(turn core.Color) string {
	enemy := core.OppositeColor(turn)
	for i := range b.squares {
		if b.squares[i].ghost == enemy {
			return b.squares[i].coord.String()
		}
	}
	return "-"
}
