// Package cli drives a local two-player game from console commands.
package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"chessrules/internal/board"
	"chessrules/internal/cli"
	"chessrules/internal/game"
	"chessrules/internal/transport"
)

type CLIHandler struct {
	view transport.View
	opts []game.Option
	g    *game.Game
}

// New creates a handler; opts apply to every game it starts
func New(view transport.View, opts ...game.Option) *CLIHandler {
	return &CLIHandler{view: view, opts: opts}
}

// Game returns the active game, nil before the first 'new'
func (h *CLIHandler) Game() *game.Game { return h.g }

// Run is the main loop, it returns on quit or end of input
func (h *CLIHandler) Run() {
	for {
		h.view.ShowPrompt(h.getPrompt())

		cmd, err := h.view.GetCommand()
		if err != nil {
			break
		}

		if !h.ProcessCommand(cmd) {
			break
		}
	}
}

func (h *CLIHandler) getPrompt() string {
	if h.g == nil || h.g.Status().Over() {
		return "> "
	}
	if _, pending := h.g.CurrentPlayer().PendingPromotion(); pending {
		return fmt.Sprintf("[%s promote]> ", h.g.Turn())
	}
	if h.g.Paused() {
		return fmt.Sprintf("[%s paused]> ", h.g.Turn())
	}
	return fmt.Sprintf("[%s]> ", h.g.Turn())
}

// ProcessCommand handles one command and returns false to exit
func (h *CLIHandler) ProcessCommand(cmd *cli.Command) bool {
	switch cmd.Type {
	case cli.CmdQuit:
		return false

	case cli.CmdNone:

	case cli.CmdUnknown:
		h.view.ShowMessage(fmt.Sprintf("Unknown command %q, type 'help' for commands.", cmd.Raw))

	case cli.CmdNew:
		h.start(game.New(h.opts...))

	case cli.CmdResume:
		if cmd.Raw == "" {
			h.view.ShowMessage("Usage: resume <FEN string>")
			return true
		}
		g, err := game.NewFromFEN(cmd.Raw, h.opts...)
		if err != nil {
			h.view.ShowError(fmt.Errorf("could not start the game: %w", err))
			return true
		}
		h.start(g)

	case cli.CmdMove:
		if !h.playable() {
			return true
		}
		h.handleMove(cmd.Args)

	case cli.CmdPromote:
		if !h.playable() {
			return true
		}
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: promote <queen|rook|bishop|knight>")
			return true
		}
		h.handlePromote(cmd.Args[0])

	case cli.CmdMoves:
		if !h.active() {
			return true
		}
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: moves <square>")
			return true
		}
		moves, err := h.g.CurrentPlayer().AllowedMoves(cmd.Args[0])
		if err != nil {
			h.view.ShowError(err)
			return true
		}
		dests := board.Destinations(moves)
		slices.Sort(dests)
		h.view.ShowMoves(cmd.Args[0], dests)

	case cli.CmdPause:
		if !h.playable() {
			return true
		}
		h.g.Pause()
		h.view.ShowMessage("Game paused.")

	case cli.CmdContinue:
		if !h.active() {
			return true
		}
		if !h.g.Paused() {
			h.view.ShowMessage("Game is not paused.")
			return true
		}
		h.g.Resume()
		h.view.ShowMessage("Game resumed.")
		h.show()

	case cli.CmdSave:
		if !h.active() {
			return true
		}
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: save <file>")
			return true
		}
		if err := h.save(cmd.Args[0]); err != nil {
			h.view.ShowError(err)
			return true
		}
		h.view.ShowMessage(fmt.Sprintf("Game saved to %s", cmd.Args[0]))

	case cli.CmdLoad:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: load <file>")
			return true
		}
		g, err := h.load(cmd.Args[0])
		if err != nil {
			h.view.ShowError(err)
			return true
		}
		h.g = g
		h.view.ShowMessage(fmt.Sprintf("Game loaded from %s", cmd.Args[0]))
		h.show()

	case cli.CmdColor:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: color <off|brown|green|gray>")
			return true
		}
		theme := cli.ColorTheme(cmd.Args[0])
		if err := h.view.SetTheme(theme); err != nil {
			h.view.ShowError(err)
			return true
		}
		h.view.ShowMessage(fmt.Sprintf("Color theme set to: %s", theme))
		if h.g != nil {
			h.view.DisplayBoard(h.g.Board())
		}

	case cli.CmdHistory:
		if !h.active() {
			return true
		}
		h.view.ShowGameHistory(h.g)

	case cli.CmdHelp:
		h.view.ShowHelp()
	}

	return true
}

func (h *CLIHandler) active() bool {
	if h.g == nil {
		h.view.ShowMessage("No active game. Use 'new' or 'resume <FEN>'.")
		return false
	}
	return true
}

// playable also rejects finished and paused games
func (h *CLIHandler) playable() bool {
	if !h.active() {
		return false
	}
	if h.g.Status().Over() {
		h.view.ShowGameOver(h.g)
		return false
	}
	if h.g.Paused() {
		h.view.ShowMessage("Game is paused. Use 'continue' first.")
		return false
	}
	return true
}

func (h *CLIHandler) start(g *game.Game) {
	h.g = g
	h.view.ShowMessage("Game started.")
	h.show()
}

func (h *CLIHandler) show() {
	h.view.DisplayBoard(h.g.Board())
	h.view.ShowStatus(h.g)
}

// handleMove plays args[0]->args[1]; an optional args[2] letter completes
// a promotion in the same command
func (h *CLIHandler) handleMove(args []string) {
	res, err := h.g.Move(args[0], args[1])
	if err != nil {
		h.view.ShowError(err)
		if h.g.Status().Over() {
			h.view.ShowGameOver(h.g)
		}
		return
	}

	if res.Promotion {
		name, ok := "", false
		if len(args) > 2 {
			name, ok = cli.PromotionName(args[2])
		}
		if !ok {
			h.view.DisplayBoard(h.g.Board())
			h.view.ShowMessage("Pawn reached the last rank. Use 'promote <queen|rook|bishop|knight>'.")
			return
		}
		h.handlePromote(name)
		return
	}

	h.finishTurn()
}

func (h *CLIHandler) handlePromote(name string) {
	if _, err := h.g.Promote(name); err != nil {
		h.view.ShowError(err)
		return
	}
	h.finishTurn()
}

func (h *CLIHandler) finishTurn() {
	if _, err := h.g.AdvanceTurn(); err != nil {
		h.view.ShowError(err)
		return
	}
	h.show()

	switch state := h.g.Status(); {
	case state.Over():
		h.view.ShowGameOver(h.g)
	case h.g.CurrentPlayer().IsChecked():
		h.view.ShowMessage(fmt.Sprintf("%s is in check.", h.g.Turn().Name()))
	}
}

func (h *CLIHandler) save(path string) error {
	data, err := h.g.Snapshot().MarshalIndent()
	if err != nil {
		return fmt.Errorf("encode game: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (h *CLIHandler) load(path string) (*game.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no saved game at %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := game.ParseSnapshot(data)
	if err != nil {
		return nil, err
	}
	return game.Restore(s, h.opts...)
}
