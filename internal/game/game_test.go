package game

import (
	"errors"
	"testing"
	"time"

	"chessrules/internal/board"
	"chessrules/internal/core"

	"github.com/google/go-cmp/cmp"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// play makes each move for the side to move and passes the turn
func play(t *testing.T, g *Game, moves ...string) {
	t.Helper()
	for _, mv := range moves {
		if _, err := g.Move(mv[:2], mv[2:]); err != nil {
			t.Fatalf("move %s: %v", mv, err)
		}
		if _, err := g.AdvanceTurn(); err != nil {
			t.Fatalf("advance after %s: %v", mv, err)
		}
	}
}

func pieceAt(t *testing.T, g *Game, s string) board.Piece {
	t.Helper()
	p, _ := g.Board().PieceAt(board.MustCoord(s))
	return p
}

func TestEnPassantCapture(t *testing.T) {
	g := New()
	play(t, g, "b2b4", "a7a6", "b4b5", "c7c5")

	res, err := g.Move("b5", "c6")
	if err != nil {
		t.Fatalf("en passant: %v", err)
	}
	if !res.Move.EnPassant {
		t.Error("b5c6 not flagged en passant")
	}
	if res.Captured.Kind != board.Pawn {
		t.Errorf("captured %v, want pawn", res.Captured)
	}
	if _, ok := g.Board().PieceAt(board.MustCoord("c5")); ok {
		t.Error("c5 pawn not removed")
	}
	if p := pieceAt(t, g, "c6"); !p.Same(board.NewPiece(board.Pawn, core.ColorWhite)) {
		t.Errorf("c6 holds %v, want white pawn", p)
	}
}

func TestEnPassantExpires(t *testing.T) {
	g := New()
	play(t, g, "b2b4", "a7a6", "b4b5", "c7c5", "h2h3", "h7h6")

	_, err := g.Move("b5", "c6")
	if core.ReasonOf(err) != core.ReasonIllegalDestination {
		t.Fatalf("late en passant error = %v, want illegal destination", err)
	}
	if ghost := g.Board().Square(board.MustCoord("c6")).Ghost(); ghost != 0 {
		t.Errorf("c6 ghost = %v after a full round", ghost)
	}
}

func TestEnPassantRankPin(t *testing.T) {
	g, err := NewFromFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatal(err)
	}
	moves, err := g.CurrentPlayer().AllowedMoves("e4")
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range moves {
		if m.EnPassant {
			t.Errorf("en passant %s exposes the king along the rank", m)
		}
	}
}

func TestPromotionBlocksAdvance(t *testing.T) {
	g, err := NewFromFEN("4k3/1P6/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	res, err := g.Move("b7", "b8")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Promotion {
		t.Fatal("reaching the last rank should request promotion")
	}

	for range 2 {
		if _, err := g.AdvanceTurn(); !errors.Is(err, core.ErrInvalidMove) || core.ReasonOf(err) != core.ReasonPromotionPending {
			t.Fatalf("AdvanceTurn error = %v, want promotion pending", err)
		}
	}
	if _, err := g.Move("e1", "e2"); core.ReasonOf(err) != core.ReasonPromotionPending {
		t.Errorf("move during promotion error = %v", err)
	}
	if _, err := g.Promote("pawn"); core.ReasonOf(err) != core.ReasonBadPromotion {
		t.Errorf("promote to pawn error = %v", err)
	}

	if _, err := g.Promote("Queen"); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if p := pieceAt(t, g, "b8"); !p.Same(board.NewPiece(board.Queen, core.ColorWhite)) {
		t.Errorf("b8 holds %v, want white queen", p)
	}
	if _, err := g.AdvanceTurn(); err != nil {
		t.Fatalf("AdvanceTurn after promotion: %v", err)
	}
	if _, err := g.Promote("queen"); core.ReasonOf(err) != core.ReasonNoPromotion {
		t.Errorf("promote without pawn error = %v", err)
	}

	if diff := cmp.Diff([]string{"b7b8q"}, g.Moves()); diff != "" {
		t.Errorf("moves mismatch (-want +got):\n%s", diff)
	}
	if got := g.Status(); got != core.StateCheck {
		t.Errorf("Status = %s, want check", got)
	}
}

func TestCastlingMovesRook(t *testing.T) {
	g := New()
	play(t, g, "e2e4", "a7a6", "f1e2", "a6a5", "g1f3", "a5a4")

	res, err := g.Move("e1", "g1")
	if err != nil {
		t.Fatalf("castle: %v", err)
	}
	if !res.Move.Castle {
		t.Error("e1g1 not flagged castle")
	}
	if p := pieceAt(t, g, "f1"); p.Kind != board.Rook || !p.Moved {
		t.Errorf("f1 holds %+v, want moved rook", p)
	}
	if _, ok := g.Board().PieceAt(board.MustCoord("h1")); ok {
		t.Error("h1 still occupied")
	}
	if _, err := g.AdvanceTurn(); err != nil {
		t.Fatal(err)
	}
	if got, want := g.FEN(), "rnbqkbnr/1ppppppp/8/8/p3P3/5N2/PPPPBPPP/RNBQ1RK1 b kq - 1 4"; got != want {
		t.Errorf("FEN = %q, want %q", got, want)
	}
}

func TestCheckmateAndStalemate(t *testing.T) {
	g := New()
	play(t, g, "f2f3", "e7e5", "g2g4", "d8h4")
	if got := g.Status(); got != core.StateCheckmate {
		t.Fatalf("Status = %s, want checkmate", got)
	}
	if w, ok := g.Winner(); !ok || w != core.ColorBlack {
		t.Errorf("Winner = %v, %v, want black", w, ok)
	}

	g, err := NewFromFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Status(); got != core.StateStalemate {
		t.Errorf("Status = %s, want stalemate", got)
	}
	if _, ok := g.Winner(); ok {
		t.Error("stalemate should have no winner")
	}
}

func TestColorOf(t *testing.T) {
	g := New()
	if c, err := g.ColorOf("d8"); err != nil || c != core.ColorBlack {
		t.Errorf("ColorOf(d8) = %v, %v", c, err)
	}
	if _, err := g.ColorOf("d5"); core.ReasonOf(err) != core.ReasonNoPiece {
		t.Errorf("ColorOf(d5) error = %v", err)
	}
	if _, err := g.ColorOf("k9"); !errors.Is(err, core.ErrInvalidCoordinate) {
		t.Errorf("ColorOf(k9) error = %v", err)
	}
}

func TestClocks(t *testing.T) {
	clk := newFakeClock()
	tc := core.TimeControl{Time: time.Minute, Increment: 2 * time.Second, Delay: 3 * time.Second}
	g := New(WithTimeControl(tc), WithNow(clk.now))
	white, black := g.Player(core.ColorWhite), g.Player(core.ColorBlack)

	// white's first move is free
	clk.advance(30 * time.Second)
	play(t, g, "e2e4")
	if got := white.ReadClock(); got != time.Minute {
		t.Errorf("white after first move = %v, want 1m", got)
	}

	clk.advance(10 * time.Second)
	play(t, g, "e7e5")
	if got := black.ReadClock(); got != 55*time.Second {
		t.Errorf("black = %v, want 55s", got)
	}

	clk.advance(time.Second)
	if got := white.ReadClock(); got != time.Minute {
		t.Errorf("white within delay = %v, want 1m", got)
	}
	if !white.Clock().Running() || black.Clock().Running() {
		t.Error("only white's clock should run")
	}
}

func TestTimeout(t *testing.T) {
	clk := newFakeClock()
	g := New(WithTimeControl(core.TimeControl{Time: time.Minute}), WithNow(clk.now))
	play(t, g, "e2e4")

	clk.advance(61 * time.Second)
	if _, err := g.Move("e7", "e5"); core.ReasonOf(err) != core.ReasonFlagFell {
		t.Errorf("move after flag fall error = %v", err)
	}
	if got := g.Status(); got != core.StateTimeout {
		t.Errorf("Status = %s, want timeout", got)
	}
	if w, ok := g.Winner(); !ok || w != core.ColorWhite {
		t.Errorf("Winner = %v, %v, want white", w, ok)
	}
}

func TestPauseResume(t *testing.T) {
	clk := newFakeClock()
	g := New(WithTimeControl(core.TimeControl{Time: time.Minute, Increment: 5 * time.Second, Delay: 3 * time.Second}), WithNow(clk.now))
	white, black := g.Player(core.ColorWhite), g.Player(core.ColorBlack)

	g.Pause()
	g.Resume()
	if white.Clock().Running() {
		t.Error("resume before the first move must not start white's clock")
	}

	play(t, g, "e2e4")
	clk.advance(5 * time.Second)
	g.Pause()
	if got := black.ReadClock(); got != 58*time.Second {
		t.Errorf("black at pause = %v, want 58s", got)
	}

	clk.advance(time.Hour)
	if _, err := g.Move("e7", "e5"); !errors.Is(err, ErrGamePaused) {
		t.Errorf("move while paused error = %v", err)
	}
	if _, err := g.AdvanceTurn(); !errors.Is(err, ErrGamePaused) {
		t.Errorf("advance while paused error = %v", err)
	}
	if got := black.ReadClock(); got != 58*time.Second {
		t.Errorf("black while paused = %v, want 58s", got)
	}

	g.Resume()
	if !black.Clock().Running() {
		t.Fatal("resume should restart black's clock")
	}
	clk.advance(4 * time.Second)
	play(t, g, "e7e5")
	if got := black.ReadClock(); got != 62*time.Second {
		t.Errorf("black after move = %v, want 62s", got)
	}
}

func TestHalfmoveAndFullmove(t *testing.T) {
	g := New()
	play(t, g, "g1f3", "g8f6", "f3g1")
	if got, want := g.FEN(), "rnbqkb1r/pppppppp/5n2/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 3 2"; got != want {
		t.Errorf("FEN = %q, want %q", got, want)
	}
	play(t, g, "e7e5")
	if got, want := g.FEN(), "rnbqkb1r/pppp1ppp/5n2/4p3/8/8/PPPPPPPP/RNBQKBNR w KQkq e6 0 3"; got != want {
		t.Errorf("FEN = %q, want %q", got, want)
	}
}
