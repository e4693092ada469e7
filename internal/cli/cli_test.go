package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"chessrules/internal/board"
	"chessrules/internal/game"

	"github.com/google/go-cmp/cmp"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  *Command
	}{
		{"", &Command{Type: CmdNone}},
		{"e2e4", &Command{Type: CmdMove, Args: []string{"e2", "e4"}, Raw: "e2e4"}},
		{"  E2 E4 ", &Command{Type: CmdMove, Args: []string{"e2", "e4"}, Raw: "E2 E4"}},
		{"e7e8n", &Command{Type: CmdMove, Args: []string{"e7", "e8", "n"}, Raw: "e7e8n"}},
		{"moves g1", &Command{Type: CmdMoves, Args: []string{"g1"}}},
		{"promote queen", &Command{Type: CmdPromote, Args: []string{"queen"}}},
		{"resume 4k3/8/8/8/8/8/8/4K2R w K - 0 1", &Command{
			Type: CmdResume,
			Args: []string{"4k3/8/8/8/8/8/8/4K2R", "w", "K", "-", "0", "1"},
			Raw:  "4k3/8/8/8/8/8/8/4K2R w K - 0 1",
		}},
		{"save game.json", &Command{Type: CmdSave, Args: []string{"game.json"}}},
		{"PAUSE", &Command{Type: CmdPause}},
		{"continue", &Command{Type: CmdContinue}},
		{"?", &Command{Type: CmdHelp}},
		{"exit", &Command{Type: CmdQuit}},
		{"castle now", &Command{Type: CmdUnknown, Raw: "castle now"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseCommand(tt.input)); diff != "" {
				t.Errorf("ParseCommand(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestGetCommandEOF(t *testing.T) {
	c := New(NewScannerReader(strings.NewReader("e2e4\n")), io.Discard)
	cmd, err := c.GetCommand()
	if err != nil || cmd.Type != CmdMove {
		t.Fatalf("first command = %+v, %v", cmd, err)
	}
	cmd, err = c.GetCommand()
	if err != nil || cmd.Type != CmdQuit {
		t.Errorf("at EOF = %+v, %v", cmd, err)
	}
}

func TestDisplayBoard(t *testing.T) {
	var out bytes.Buffer
	c := New(NewScannerReader(strings.NewReader("")), &out)
	b := board.New()

	c.DisplayBoard(b)
	if got, want := out.String(), b.String()+"\n"; got != want {
		t.Errorf("plain board mismatch:\n%s\nwant:\n%s", got, want)
	}

	if err := c.SetTheme("purple"); err == nil {
		t.Error("unknown theme accepted")
	}
	if err := c.SetTheme(ThemeBrown); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	c.DisplayBoard(b)
	got := out.String()
	for _, want := range []string{themes[ThemeBrown].lightBg, themes[ThemeBrown].darkBg, "♔", "♚"} {
		if !strings.Contains(got, want) {
			t.Errorf("themed board lacks %q", want)
		}
	}
}

func TestShowStatusAndHistory(t *testing.T) {
	var out bytes.Buffer
	c := New(NewScannerReader(strings.NewReader("")), &out)

	g, err := game.NewFromFEN("4k3/7p/8/8/8/8/8/R3K3 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	for _, mv := range [][2]string{{"e8", "f7"}, {"a1", "a7"}} {
		if _, err := g.Move(mv[0], mv[1]); err != nil {
			t.Fatal(err)
		}
		if _, err := g.AdvanceTurn(); err != nil {
			t.Fatal(err)
		}
	}

	c.ShowStatus(g)
	c.ShowGameHistory(g)
	want := []string{
		"White  +4",
		"Black",
		"1. ... | e8f7",
		"2. a1a7 | ...",
		"Starting FEN: 4k3/7p/8/8/8/8/8/R3K3 b - - 0 1",
	}
	for _, w := range want {
		if !strings.Contains(out.String(), w) {
			t.Errorf("output lacks %q:\n%s", w, out.String())
		}
	}
}
