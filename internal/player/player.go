// Package player enforces one side's move legality: check safety,
// castling, en passant and promotion, plus that side's clock.
package player

import (
	"slices"
	"time"

	"chessrules/internal/board"
	"chessrules/internal/core"

	"golang.org/x/exp/maps"
)

type Player struct {
	color        core.Color
	board        *board.Board
	opponent     *Player
	promotion    board.Coord
	hasPromotion bool
	starting     map[board.Kind]int
	clock        *Clock
}

// MoveResult describes an applied move
type MoveResult struct {
	Move     board.Move
	Piece    board.Piece // mover as it stood before the move
	Captured board.Piece
	// Promotion is set when the pawn reached the last rank and awaits Promote
	Promotion bool
}

type Option func(*Player)

func WithClock(c *Clock) Option {
	return func(p *Player) { p.clock = c }
}

// WithStartingPieces overrides the material counted as the starting set
func WithStartingPieces(counts map[board.Kind]int) Option {
	return func(p *Player) { p.starting = maps.Clone(counts) }
}

// WithPendingPromotion restores an unresolved promotion on c
func WithPendingPromotion(c board.Coord) Option {
	return func(p *Player) {
		p.promotion = c
		p.hasPromotion = true
	}
}

// New binds a side to a board. The pieces of color currently on the
// board become its starting set.
func New(color core.Color, b *board.Board, opts ...Option) *Player {
	p := &Player{
		color:    color,
		board:    b,
		starting: b.Count(color),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Player) SetOpponent(o *Player) { p.opponent = o }

func (p *Player) Color() core.Color   { return p.color }
func (p *Player) Opponent() *Player   { return p.opponent }
func (p *Player) Board() *board.Board { return p.board }

// StartingPieces returns a copy of the starting material counter
func (p *Player) StartingPieces() map[board.Kind]int {
	return maps.Clone(p.starting)
}

// PendingPromotion reports the square of a pawn awaiting promotion
func (p *Player) PendingPromotion() (board.Coord, bool) {
	return p.promotion, p.hasPromotion
}

// IsChecked reports whether this side's king is attacked
func (p *Player) IsChecked() bool {
	king, ok := p.board.KingSquare(p.color)
	if !ok {
		return false
	}
	return p.IsCheckedAt(king)
}

// IsCheckedAt reports whether any enemy piece has an allowed move onto c.
// Forward pawn moves only land on empty squares, so they never hit an
// occupied king square.
func (p *Player) IsCheckedAt(c board.Coord) bool {
	for from := range p.board.Occupied(core.OppositeColor(p.color)) {
		for _, m := range p.board.AllowedMoves(from) {
			if m.To == c {
				return true
			}
		}
	}
	return false
}

// AllowedMoves lists the legal moves of this side's piece on from
func (p *Player) AllowedMoves(from string) ([]board.Move, error) {
	c, err := board.ParseCoord(from)
	if err != nil {
		return nil, core.NewMoveError(core.ReasonBadCoordinate, "%q", from)
	}
	piece, ok := p.board.PieceAt(c)
	if !ok {
		return nil, core.NewMoveError(core.ReasonNoPiece, "%s", c)
	}
	if piece.Color != p.color {
		return nil, core.NewMoveError(core.ReasonWrongColor, "%s", c)
	}
	return p.legalMoves(c), nil
}

// LegalMoves lists every legal move of this side
func (p *Player) LegalMoves() []board.Move {
	var moves []board.Move
	for from := range p.board.Occupied(p.color) {
		moves = append(moves, p.legalMoves(from)...)
	}
	return moves
}

// HasLegalMove is LegalMoves without collecting everything
func (p *Player) HasLegalMove() bool {
	for from := range p.board.Occupied(p.color) {
		if len(p.legalMoves(from)) > 0 {
			return true
		}
	}
	return false
}

func (p *Player) legalMoves(from board.Coord) []board.Move {
	var legal []board.Move
	for _, m := range p.board.AllowedMoves(from) {
		var ok bool
		if m.Castle {
			ok = p.castleSafe(m)
		} else {
			ok = !p.opensCheck(m)
		}
		if ok {
			legal = append(legal, m)
		}
	}
	return legal
}

// opensCheck applies m hypothetically, tests for check and restores the
// exact prior occupancy
func (p *Player) opensCheck(m board.Move) bool {
	b := p.board
	mover := b.Clear(m.From)
	captured := b.Clear(m.To)

	var passed board.Coord
	var passedPawn board.Piece
	if m.EnPassant {
		passed = enPassantVictim(m)
		passedPawn = b.Clear(passed)
	}

	b.Place(m.To, mover)
	checked := p.IsChecked()

	b.Clear(m.To)
	b.Place(m.From, mover)
	if !captured.Empty() {
		b.Place(m.To, captured)
	}
	if m.EnPassant {
		b.Place(passed, passedPawn)
	}
	return checked
}

// castleSafe requires the king out of check and both squares toward the
// rook unattacked. Each square is probed by standing the king on it.
func (p *Player) castleSafe(m board.Move) bool {
	if p.IsChecked() {
		return false
	}
	dir := board.East
	if m.To.File() < m.From.File() {
		dir = board.West
	}
	c := m.From
	for range 2 {
		next, ok := p.board.Neighbor(c, dir)
		if !ok || p.opensCheck(board.Move{From: m.From, To: next}) {
			return false
		}
		c = next
	}
	return true
}

// enPassantVictim is the square of the pawn taken en passant: the
// destination file on the mover's starting rank
func enPassantVictim(m board.Move) board.Coord {
	c, _ := board.NewCoord(m.To.File(), m.From.Rank())
	return c
}

// Move applies a legal move for this side. Turn order is the caller's
// concern.
func (p *Player) Move(from, to string) (MoveResult, error) {
	if p.hasPromotion {
		return MoveResult{}, core.NewMoveError(core.ReasonPromotionPending, "%s", p.promotion)
	}
	if p.clock != nil && p.clock.Read() <= 0 {
		return MoveResult{}, core.NewMoveError(core.ReasonFlagFell, "%s", p.color.Name())
	}

	moves, err := p.AllowedMoves(from)
	if err != nil {
		return MoveResult{}, err
	}
	dest, err := board.ParseCoord(to)
	if err != nil {
		return MoveResult{}, core.NewMoveError(core.ReasonBadCoordinate, "%q", to)
	}
	m, ok := board.Find(moves, dest)
	if !ok {
		return MoveResult{}, core.NewMoveError(core.ReasonIllegalDestination, "%s%s", from, to)
	}
	return p.apply(m), nil
}

func (p *Player) apply(m board.Move) MoveResult {
	b := p.board
	mover := b.Clear(m.From)
	res := MoveResult{Move: m, Piece: mover}

	if m.EnPassant {
		res.Captured = b.Clear(enPassantVictim(m))
	} else {
		res.Captured = b.Clear(m.To)
	}

	mover.Moved = true
	b.Place(m.To, mover)

	if m.PawnDoubleMove {
		b.SetGhost((m.From+m.To)/2, p.color)
	}

	if mover.Kind == board.Pawn && (m.To.Rank() == 0 || m.To.Rank() == 7) {
		p.promotion = m.To
		p.hasPromotion = true
		res.Promotion = true
	}

	if m.Castle {
		rookFrom, rookTo := board.CastleRook(m)
		rook := b.Clear(rookFrom)
		rook.Moved = true
		b.Place(rookTo, rook)
	}
	return res
}

// Promote replaces the waiting pawn with a piece of the named kind
func (p *Player) Promote(kind string) (board.Piece, error) {
	if !p.hasPromotion {
		return board.Piece{}, core.NewMoveError(core.ReasonNoPromotion, "")
	}
	k, err := board.ParsePromotion(kind)
	if err != nil {
		return board.Piece{}, err
	}
	piece := board.Piece{Kind: k, Color: p.color, Moved: true}
	p.board.Place(p.promotion, piece)
	p.hasPromotion = false
	return piece, nil
}

// ValueDiff is own material minus the opponent's
func (p *Player) ValueDiff() int {
	return p.board.Material(p.color) - p.board.Material(core.OppositeColor(p.color))
}

// TakenPieces lists opponent pieces missing from the board relative to
// their starting set, highest value first and knights before bishops
func (p *Player) TakenPieces() []board.Piece {
	if p.opponent == nil {
		return nil
	}
	opp := p.opponent
	current := p.board.Count(opp.color)

	kinds := maps.Keys(opp.starting)
	slices.SortFunc(kinds, func(a, b board.Kind) int {
		return b.Order() - a.Order()
	})

	var taken []board.Piece
	for _, k := range kinds {
		for range opp.starting[k] - current[k] {
			taken = append(taken, board.NewPiece(k, opp.color))
		}
	}
	return taken
}

func (p *Player) HasClock() bool { return p.clock != nil }

func (p *Player) Clock() *Clock { return p.clock }

func (p *Player) StartClock() {
	if p.clock != nil {
		p.clock.Start()
	}
}

func (p *Player) StopClock() {
	if p.clock != nil {
		p.clock.Stop()
	}
}

// SuspendClock halts a running clock without an increment
func (p *Player) SuspendClock() {
	if p.clock != nil {
		p.clock.Suspend()
	}
}

// ReadClock returns remaining time; zero for an untimed side
func (p *Player) ReadClock() time.Duration {
	if p.clock == nil {
		return 0
	}
	return p.clock.Read()
}

// FlagFell reports a timed side with no time left
func (p *Player) FlagFell() bool {
	return p.clock != nil && p.clock.Read() <= 0
}
