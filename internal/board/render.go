package board

import "strings"

const (
	fileLabels  = "  a b c d e f g h \n"
	lightSquare = '□'
	darkSquare  = '■'
)

// Glyph returns the piece glyph or the shaded empty-square glyph for c
func (b *Board) Glyph(c Coord) rune {
	if p, ok := b.PieceAt(c); ok {
		return p.Glyph()
	}
	if c.IsLight() {
		return lightSquare
	}
	return darkSquare
}

// String renders the glyph grid, rank 8 at the top
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString(fileLabels)
	for rank := 7; rank >= 0; rank-- {
		label := byte('1' + rank)
		sb.WriteByte(label)
		for file := range 8 {
			sb.WriteByte(' ')
			sb.WriteRune(b.Glyph(Coord(rank*8 + file)))
		}
		sb.WriteByte(' ')
		sb.WriteByte(label)
		sb.WriteByte('\n')
	}
	sb.WriteString(fileLabels)
	return sb.String()
}
