package processor

import (
	"chessrules/internal/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreateGame CommandType = iota
	CmdGetGame
	CmdDeleteGame
	CmdMakeMove
	CmdPromote
	CmdAllowedMoves
	CmdGetBoard
	CmdPause
	CmdResume
)

// Command is a unified structure for all processor operations
type Command struct {
	Type   CommandType
	GameID string
	// Seat is the color the caller's token was issued for; zero skips the
	// turn check
	Seat core.Color
	Args any
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewCreateGameCommand(req core.CreateGameRequest) Command {
	return Command{Type: CmdCreateGame, Args: req}
}

func NewGetGameCommand(gameID string) Command {
	return Command{Type: CmdGetGame, GameID: gameID}
}

func NewDeleteGameCommand(gameID string) Command {
	return Command{Type: CmdDeleteGame, GameID: gameID}
}

func NewMakeMoveCommand(gameID string, seat core.Color, req core.MoveRequest) Command {
	return Command{Type: CmdMakeMove, GameID: gameID, Seat: seat, Args: req}
}

func NewPromoteCommand(gameID string, seat core.Color, req core.PromotionRequest) Command {
	return Command{Type: CmdPromote, GameID: gameID, Seat: seat, Args: req}
}

func NewAllowedMovesCommand(gameID, square string) Command {
	return Command{Type: CmdAllowedMoves, GameID: gameID, Args: square}
}

func NewGetBoardCommand(gameID string) Command {
	return Command{Type: CmdGetBoard, GameID: gameID}
}

func NewPauseCommand(gameID string, seat core.Color) Command {
	return Command{Type: CmdPause, GameID: gameID, Seat: seat}
}

func NewResumeCommand(gameID string, seat core.Color) Command {
	return Command{Type: CmdResume, GameID: gameID, Seat: seat}
}
