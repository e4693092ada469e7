package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"chessrules/internal/core"
	"chessrules/internal/game"
	"chessrules/internal/server/storage"

	"github.com/google/go-cmp/cmp"
)

var testSecret = []byte("test-secret-minimum-32-characters-long")

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func move(from, to string) func(*game.Game) error {
	return func(g *game.Game) error {
		if _, err := g.Move(from, to); err != nil {
			return err
		}
		_, err := g.AdvanceTurn()
		return err
	}
}

func TestCreateAndUpdate(t *testing.T) {
	svc := New(nil, testSecret)
	id, tokens, err := svc.CreateGame(core.TimeControl{}, "")
	if err != nil {
		t.Fatal(err)
	}

	gameID, color, err := svc.ValidateSeatToken(tokens.Black)
	if err != nil || gameID != id || color != core.ColorBlack {
		t.Errorf("black token = %s, %v, %v", gameID, color, err)
	}
	if _, _, err := svc.ValidateSeatToken(tokens.White + "x"); !errors.Is(err, ErrInvalidSeatToken) {
		t.Errorf("tampered token error = %v", err)
	}

	if err := svc.Update(id, move("e2", "e5")); !errors.Is(err, core.ErrInvalidMove) {
		t.Fatalf("illegal move error = %v", err)
	}
	if err := svc.Update(id, move("e2", "e4")); err != nil {
		t.Fatal(err)
	}

	err = svc.View(id, func(g *game.Game, version int) error {
		if version != 1 {
			t.Errorf("version = %d, want 1 (failed updates must not count)", version)
		}
		if diff := cmp.Diff([]string{"e2e4"}, g.Moves()); diff != "" {
			t.Errorf("moves mismatch (-want +got):\n%s", diff)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteGame(id); err != nil {
		t.Fatal(err)
	}
	if err := svc.View(id, func(*game.Game, int) error { return nil }); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("View after delete error = %v", err)
	}
	if err := svc.DeleteGame(id); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("second delete error = %v", err)
	}
}

func TestCreateGameRejectsBadFEN(t *testing.T) {
	svc := New(nil, testSecret)
	if _, _, err := svc.CreateGame(core.TimeControl{}, "8/8/8/8/8/8/8/8 w - - 0 1"); err == nil {
		t.Error("kingless position accepted")
	}
	if svc.GameCount() != 0 {
		t.Error("failed creation registered a game")
	}
}

func TestWaitReleasedByUpdate(t *testing.T) {
	svc := New(nil, testSecret)
	id, _, _ := svc.CreateGame(core.TimeControl{}, "")

	notify := svc.RegisterWait(context.Background(), id, 0)
	select {
	case <-notify:
		t.Fatal("released before any change")
	default:
	}

	if err := svc.Update(id, move("d2", "d4")); err != nil {
		t.Fatal(err)
	}
	select {
	case <-notify:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter not released by update")
	}
}

func TestWaitAtStaleVersion(t *testing.T) {
	svc := New(nil, testSecret, WithWaitTimeout(time.Minute))
	id, _, _ := svc.CreateGame(core.TimeControl{}, "")
	if err := svc.Update(id, move("e2", "e4")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		gameID  string
		version int
	}{
		{"version already passed", id, 0},
		{"version ahead of the game", id, 7},
		{"unknown game", "missing", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			select {
			case <-svc.RegisterWait(context.Background(), tt.gameID, tt.version):
			case <-time.After(time.Second):
				t.Fatal("wait not released at once")
			}
		})
	}

	current := svc.RegisterWait(context.Background(), id, 1)
	select {
	case <-current:
		t.Fatal("released at the current version")
	default:
	}
	if err := svc.Update(id, move("e7", "e5")); err != nil {
		t.Fatal(err)
	}
	select {
	case <-current:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter not released by update")
	}
}

func TestWaitRegistry(t *testing.T) {
	w := NewWaitRegistry(50 * time.Millisecond)

	timedOut := w.RegisterWait(context.Background(), "g", 0)
	select {
	case <-timedOut:
	case <-time.After(2 * time.Second):
		t.Fatal("wait did not time out")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancelled := w.RegisterWait(ctx, "g", 0)
	cancel()
	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled wait not released")
	}

	w = NewWaitRegistry(time.Minute)
	current := w.RegisterWait(context.Background(), "g", 3)
	w.NotifyGame("g", 3)
	select {
	case <-current:
		t.Fatal("waiter released for a version it has seen")
	default:
	}
	removed := w.RegisterWait(context.Background(), "g", 3)
	w.RemoveGame("g")
	<-current
	<-removed

	late := w.RegisterWait(context.Background(), "h", 0)
	if err := w.Shutdown(time.Second); err != nil {
		t.Fatal(err)
	}
	<-late
	<-w.RegisterWait(context.Background(), "h", 0)
}

func TestClockSweep(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	svc := New(nil, testSecret, WithNow(clk.now))
	id, _, err := svc.CreateGame(core.TimeControl{Time: time.Minute}, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Update(id, move("e2", "e4")); err != nil {
		t.Fatal(err)
	}

	if n := svc.SweepClocks(); n != 0 {
		t.Fatalf("sweep ended %d games early", n)
	}
	clk.t = clk.t.Add(2 * time.Minute)
	if n := svc.SweepClocks(); n != 1 {
		t.Fatalf("sweep ended %d games, want 1", n)
	}
	if n := svc.SweepClocks(); n != 0 {
		t.Errorf("finished game swept again")
	}
	svc.View(id, func(g *game.Game, version int) error {
		if w, ok := g.Winner(); !ok || w != core.ColorWhite {
			t.Errorf("winner = %v, %v", w, ok)
		}
		if version != 2 {
			t.Errorf("version = %d, want 2", version)
		}
		return nil
	})
}

func TestPersistAndRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")
	store, err := storage.NewStore(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.InitDB(); err != nil {
		t.Fatal(err)
	}

	svc := New(store, testSecret)
	id, _, err := svc.CreateGame(core.TimeControl{}, "4k3/1P6/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	err = svc.Update(id, func(g *game.Game) error {
		_, err := g.Move("b7", "b8")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if moves, _ := store.QueryMoves(id); len(moves) != 0 {
		t.Errorf("unfinished promotion recorded: %+v", moves)
	}

	err = svc.Update(id, func(g *game.Game) error {
		if _, err := g.Promote("rook"); err != nil {
			return err
		}
		_, err := g.AdvanceTurn()
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	moves, err := store.QueryMoves(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 1 || moves[0].Move != "b7b8r" || moves[0].PlayerColor != "w" {
		t.Fatalf("moves = %+v", moves)
	}

	fresh := New(store, testSecret)
	n, err := fresh.RestoreGames()
	if err != nil || n != 1 {
		t.Fatalf("RestoreGames = %d, %v", n, err)
	}
	fresh.View(id, func(g *game.Game, version int) error {
		if version != 2 {
			t.Errorf("restored version = %d, want 2", version)
		}
		if got, want := g.FEN(), "1R2k3/8/8/8/8/8/8/4K3 b - - 0 1"; got != want {
			t.Errorf("restored FEN = %q, want %q", got, want)
		}
		return nil
	})

	if err := svc.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
