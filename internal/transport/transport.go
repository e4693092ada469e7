// Package transport holds the contracts between front-end controllers and
// their views.
package transport

import (
	"chessrules/internal/board"
	"chessrules/internal/cli"
	"chessrules/internal/game"
)

// View abstracts console input and display so controllers can be driven
// by scripted input in tests
type View interface {
	GetCommand() (*cli.Command, error)
	SetTheme(theme cli.ColorTheme) error
	DisplayBoard(b *board.Board)
	ShowStatus(g *game.Game)
	ShowMoves(square string, dests []board.Coord)
	ShowMessage(msg string)
	ShowError(err error)
	ShowPrompt(prompt string)
	ShowGameHistory(g *game.Game)
	ShowGameOver(g *game.Game)
	ShowHelp()
}
