// Package main is the local two-player console game.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"chessrules/internal/cli"
	"chessrules/internal/core"
	"chessrules/internal/game"
	clitransport "chessrules/internal/transport/cli"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

func main() {
	var (
		baseTime  = flag.Duration("time", 0, "Clock per side, 0 for untimed")
		increment = flag.Duration("increment", 0, "Increment added after each move")
		delay     = flag.Duration("delay", 0, "Delay before the clock starts counting each move")
		theme     = flag.String("theme", "", "Board theme: off, brown, green, gray (default brown on a terminal)")
		fen       = flag.String("fen", "", "Start from this position instead of the standard array")
	)
	flag.Parse()

	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))

	var input cli.LineReader
	if interactive {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "> ",
			HistoryFile:     ".chess_history",
			InterruptPrompt: "^C",
			EOFPrompt:       "quit",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
			os.Exit(1)
		}
		defer rl.Close()
		input = rl
	} else {
		input = cli.NewScannerReader(os.Stdin)
	}

	var output io.Writer = os.Stdout
	view := cli.New(input, output)

	selected := cli.ColorTheme(*theme)
	if selected == "" {
		selected = cli.ThemeOff
		if interactive {
			selected = cli.ThemeBrown
		}
	}
	if err := view.SetTheme(selected); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	tc := core.TimeControl{Time: *baseTime, Increment: *increment, Delay: *delay}
	handler := clitransport.New(view, game.WithTimeControl(tc))

	view.ShowWelcome()
	if *fen != "" {
		handler.ProcessCommand(&cli.Command{Type: cli.CmdResume, Raw: *fen})
	} else {
		handler.ProcessCommand(&cli.Command{Type: cli.CmdNew})
	}
	handler.Run()
}
