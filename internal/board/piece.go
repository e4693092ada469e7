package board

import (
	"strings"

	"chessrules/internal/core"
)

type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// PromotionKinds are the kinds a pawn may become
var PromotionKinds = []Kind{Queen, Knight, Rook, Bishop}

var kindInfo = [...]struct {
	name   string
	letter byte
	value  int
	order  int  // presentation rank, knight above bishop
	glyph  rune // white glyph; black is +6
}{
	NoKind: {"none", '.', 0, 0, 0},
	Pawn:   {"pawn", 'p', 1, 1, '♙'},
	Knight: {"knight", 'n', 3, 3, '♘'},
	Bishop: {"bishop", 'b', 3, 2, '♗'},
	Rook:   {"rook", 'r', 5, 4, '♖'},
	Queen:  {"queen", 'q', 9, 5, '♕'},
	King:   {"king", 'k', 0, 6, '♔'},
}

func (k Kind) String() string { return kindInfo[k].name }

// Value is the relative material value; the king counts zero
func (k Kind) Value() int { return kindInfo[k].value }

// Order ranks kinds for display: by value with knight before bishop
func (k Kind) Order() int {
	return kindInfo[k].value*10 + kindInfo[k].order
}

// Letter is the lowercase FEN letter
func (k Kind) Letter() byte { return kindInfo[k].letter }

// KindFromLetter maps a FEN letter of either case
func KindFromLetter(ch byte) (Kind, core.Color, bool) {
	color := core.ColorBlack
	if ch >= 'A' && ch <= 'Z' {
		color = core.ColorWhite
		ch += 'a' - 'A'
	}
	for k := Pawn; k <= King; k++ {
		if kindInfo[k].letter == ch {
			return k, color, true
		}
	}
	return NoKind, 0, false
}

// ParsePromotion accepts queen, knight, rook or bishop in any case
func ParsePromotion(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range PromotionKinds {
		if k.String() == name {
			return k, nil
		}
	}
	return NoKind, core.NewMoveError(core.ReasonBadPromotion, "%q", name)
}

// Piece is an occupant value. The zero Piece means an empty square.
type Piece struct {
	Kind  Kind       `json:"kind"`
	Color core.Color `json:"color"`
	Moved bool       `json:"moved,omitempty"`
}

func NewPiece(k Kind, c core.Color) Piece {
	return Piece{Kind: k, Color: c}
}

func (p Piece) Empty() bool { return p.Kind == NoKind }

// Same compares kind and color only
func (p Piece) Same(o Piece) bool {
	return p.Kind == o.Kind && p.Color == o.Color
}

// Less orders pieces for captured-material display
func (p Piece) Less(o Piece) bool {
	return p.Kind.Order() < o.Kind.Order()
}

func (p Piece) Glyph() rune {
	if p.Empty() {
		return 0
	}
	g := kindInfo[p.Kind].glyph
	if p.Color == core.ColorBlack {
		g += 6
	}
	return g
}

// Letter is the FEN letter, uppercase for white
func (p Piece) Letter() byte {
	l := p.Kind.Letter()
	if p.Color == core.ColorWhite {
		l -= 'a' - 'A'
	}
	return l
}

func (p Piece) String() string {
	if p.Empty() {
		return "empty"
	}
	return p.Color.Name() + " " + p.Kind.String()
}
