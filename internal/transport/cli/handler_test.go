package cli

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"chessrules/internal/cli"
	"chessrules/internal/core"
)

func run(t *testing.T, script ...string) (*CLIHandler, string) {
	t.Helper()
	var out bytes.Buffer
	view := cli.New(cli.NewScannerReader(strings.NewReader(strings.Join(script, "\n")+"\n")), &out)
	h := New(view)
	h.Run()
	return h, out.String()
}

func TestFoolsMate(t *testing.T) {
	h, out := run(t, "new", "f2f3", "e7 e5", "g2g4", "d8h4", "a2a3", "quit")

	if got := h.Game().Status(); got != core.StateCheckmate {
		t.Fatalf("state = %s", got)
	}
	for _, want := range []string{"Game started.", "Game Over: checkmate, Black wins"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if n := len(h.Game().Moves()); n != 4 {
		t.Errorf("%d plies recorded after mate, want 4", n)
	}
}

func TestRejectedInput(t *testing.T) {
	h, out := run(t, "e2e4", "new", "e2e5", "e7e5", "moves g1", "moves e7", "jump around")

	if n := len(h.Game().Moves()); n != 0 {
		t.Errorf("plies = %v", h.Game().Moves())
	}
	for _, want := range []string{
		"No active game.",
		"destination not allowed",
		"piece belongs to the opponent",
		"g1: f3 h3",
		`Unknown command "jump around"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestPromotionCommands(t *testing.T) {
	h, out := run(t,
		"resume 4k3/1P6/8/8/8/8/8/4K3 w - - 0 1",
		"b7b8",
		"e1d1",
		"promote king",
		"promote rook",
		"e8f7",
		"resume 4k3/1P6/8/8/8/8/8/4K3 w - - 0 1",
		"b7b8q",
	)

	if got := h.Game().FEN(); got != "1Q2k3/8/8/8/8/8/8/4K3 b - - 0 1" {
		t.Errorf("FEN after one-step promotion = %q", got)
	}
	for _, want := range []string{"Use 'promote", "promotion pending", "unknown promotion piece", "Black is in check."} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestPauseSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.json")
	h, out := run(t,
		"new",
		"e2e4",
		"pause",
		"e7e5",
		"continue",
		"e7e5",
		fmt.Sprintf("save %s", path),
		"g1f3",
		fmt.Sprintf("load %s", path),
		"history",
		"load "+filepath.Join(t.TempDir(), "missing.json"),
	)

	if got, want := h.Game().Moves(), []string{"e2e4", "e7e5"}; strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("moves after load = %v, want %v", got, want)
	}
	if h.Game().Turn() != core.ColorWhite {
		t.Errorf("turn after load = %s", h.Game().Turn())
	}
	for _, want := range []string{"Game is paused.", "Game resumed.", "Game saved to", "1. e2e4 | e7e5", "no saved game at"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
