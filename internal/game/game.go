// Package game alternates turns between two players sharing one board
// and keeps the ply history needed for export and persistence.
package game

import (
	"errors"
	"fmt"
	"time"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/player"
)

var ErrGamePaused = errors.New("game is paused")

// Ply is one half-move as played
type Ply struct {
	Color     core.Color `json:"color"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Promotion board.Kind `json:"promotion,omitempty"`
	Captured  board.Kind `json:"captured,omitempty"`
}

// String gives the coordinate form, e.g. "e7e8q"
func (p Ply) String() string {
	s := p.From + p.To
	if p.Promotion != board.NoKind {
		s += string(p.Promotion.Letter())
	}
	return s
}

type Game struct {
	board   *board.Board
	players [2]*player.Player
	turn    int

	started bool
	paused  bool

	initialFEN string
	halfmove   int
	fullmove   int
	plies      []Ply

	control core.TimeControl
	now     func() time.Time
}

type Option func(*Game)

// WithTimeControl gives both sides a clock; the zero value leaves the game untimed
func WithTimeControl(tc core.TimeControl) Option {
	return func(g *Game) { g.control = tc }
}

// WithNow replaces the wall clock used by player clocks
func WithNow(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// New starts a game from the standard array with white to move
func New(opts ...Option) *Game {
	g, _ := NewFromFEN(board.StartingFEN, opts...)
	return g
}

// NewFromFEN starts a game from an arbitrary position. The pieces on the
// board become each side's starting set for captured-material accounting.
func NewFromFEN(fen string, opts ...Option) (*Game, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}

	g := &Game{
		board:      pos.Board,
		initialFEN: fen,
		halfmove:   pos.Halfmove,
		fullmove:   pos.Fullmove,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.players = g.newPlayers(nil)
	g.turn = pos.Turn.Index()
	return g, nil
}

func (g *Game) newPlayers(extra map[core.Color][]player.Option) [2]*player.Player {
	var ps [2]*player.Player
	for i, color := range core.Colors {
		var opts []player.Option
		if g.control.Enabled() {
			opts = append(opts, player.WithClock(player.NewClock(g.control, g.now)))
		}
		opts = append(opts, extra[color]...)
		ps[i] = player.New(color, g.board, opts...)
	}
	ps[0].SetOpponent(ps[1])
	ps[1].SetOpponent(ps[0])
	return ps
}

func (g *Game) Board() *board.Board { return g.board }

func (g *Game) CurrentPlayer() *player.Player { return g.players[g.turn] }

func (g *Game) Player(c core.Color) *player.Player { return g.players[c.Index()] }

func (g *Game) Turn() core.Color { return g.CurrentPlayer().Color() }

func (g *Game) Started() bool { return g.started }

func (g *Game) Paused() bool { return g.paused }

func (g *Game) TimeControl() core.TimeControl { return g.control }

func (g *Game) InitialFEN() string { return g.initialFEN }

// ColorOf reports the color of the piece on coord
func (g *Game) ColorOf(coord string) (core.Color, error) {
	sq, err := g.board.Lookup(coord)
	if err != nil {
		return 0, err
	}
	p, ok := sq.Piece()
	if !ok {
		return 0, core.NewMoveError(core.ReasonNoPiece, "%s", coord)
	}
	return p.Color, nil
}

// Move plays from-to for the side to move. The turn does not pass until
// AdvanceTurn.
func (g *Game) Move(from, to string) (player.MoveResult, error) {
	if g.paused {
		return player.MoveResult{}, ErrGamePaused
	}
	cur := g.CurrentPlayer()
	res, err := cur.Move(from, to)
	if err != nil {
		return res, err
	}

	if res.Piece.Kind == board.Pawn || !res.Captured.Empty() {
		g.halfmove = 0
	} else {
		g.halfmove++
	}
	g.plies = append(g.plies, Ply{
		Color:    cur.Color(),
		From:     res.Move.From.String(),
		To:       res.Move.To.String(),
		Captured: res.Captured.Kind,
	})
	return res, nil
}

// Promote resolves the side to move's pending promotion
func (g *Game) Promote(kind string) (board.Piece, error) {
	if g.paused {
		return board.Piece{}, ErrGamePaused
	}
	piece, err := g.CurrentPlayer().Promote(kind)
	if err != nil {
		return piece, err
	}
	if n := len(g.plies); n > 0 {
		g.plies[n-1].Promotion = piece.Kind
	}
	return piece, nil
}

// AdvanceTurn passes the move to the other side. It stops the mover's
// clock, starts the opponent's and expires the opponent's own ghosts.
// White's clock is not started before the first turn passes.
func (g *Game) AdvanceTurn() (*player.Player, error) {
	if g.paused {
		return nil, ErrGamePaused
	}
	cur := g.CurrentPlayer()
	if c, pending := cur.PendingPromotion(); pending {
		return nil, core.NewMoveError(core.ReasonPromotionPending, "%s", c)
	}

	g.started = true
	cur.StopClock()
	if cur.Color() == core.ColorBlack {
		g.fullmove++
	}

	g.turn = 1 - g.turn
	next := g.CurrentPlayer()
	next.StartClock()
	g.board.ClearGhosts(next.Color())
	return next, nil
}

// Pause suspends the running clock without granting an increment
func (g *Game) Pause() {
	if g.paused {
		return
	}
	g.paused = true
	g.CurrentPlayer().SuspendClock()
}

// Resume restarts the side to move's clock once the game has started
func (g *Game) Resume() {
	if !g.paused {
		return
	}
	g.paused = false
	if g.started {
		g.CurrentPlayer().StartClock()
	}
}

// Status classifies the position for the side to move. A flag fall on
// either side ends the game regardless of the position.
func (g *Game) Status() core.State {
	for _, p := range g.players {
		if p.FlagFell() {
			return core.StateTimeout
		}
	}

	cur := g.CurrentPlayer()
	if _, pending := cur.PendingPromotion(); pending {
		return core.StateOngoing
	}

	checked := cur.IsChecked()
	if !cur.HasLegalMove() {
		if checked {
			return core.StateCheckmate
		}
		return core.StateStalemate
	}
	if checked {
		return core.StateCheck
	}
	return core.StateOngoing
}

// Winner reports the winning color of a decided game
func (g *Game) Winner() (core.Color, bool) {
	switch g.Status() {
	case core.StateCheckmate:
		return core.OppositeColor(g.Turn()), true
	case core.StateTimeout:
		for _, p := range g.players {
			if p.FlagFell() {
				return core.OppositeColor(p.Color()), true
			}
		}
	}
	return 0, false
}

// FEN exports the current position
func (g *Game) FEN() string {
	return g.board.FEN(g.Turn(), g.halfmove, g.fullmove)
}

// History returns a copy of the plies played so far
func (g *Game) History() []Ply {
	out := make([]Ply, len(g.plies))
	copy(out, g.plies)
	return out
}

// Moves lists the plies in coordinate form
func (g *Game) Moves() []string {
	moves := make([]string, 0, len(g.plies))
	for _, p := range g.plies {
		moves = append(moves, p.String())
	}
	return moves
}

// LastPly returns the most recent ply, if any
func (g *Game) LastPly() (Ply, bool) {
	if len(g.plies) == 0 {
		return Ply{}, false
	}
	return g.plies[len(g.plies)-1], true
}

func (g *Game) String() string {
	return g.board.String()
}

// Summary is a one-line status for logs and consoles
func (g *Game) Summary() string {
	return fmt.Sprintf("%s to move, %s, %d plies", g.Turn().Name(), g.Status(), len(g.plies))
}
