// Package processor executes transport-independent commands against the
// game service and shapes the responses.
package processor

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/game"
	"chessrules/internal/server/service"
)

var (
	errGameOver    = errors.New("game is over")
	errNotYourTurn = errors.New("not your turn")
)

// Processor handles command execution on top of the service
type Processor struct {
	svc     *service.Service
	control core.TimeControl // used when a create request names none
}

type Option func(*Processor)

func WithDefaultTimeControl(tc core.TimeControl) Option {
	return func(p *Processor) { p.control = tc }
}

func New(svc *service.Service, opts ...Option) *Processor {
	p := &Processor{svc: svc}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdPromote:
		return p.handlePromote(cmd)
	case CmdAllowedMoves:
		return p.handleAllowedMoves(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdPause, CmdResume:
		return p.handlePause(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// checkFEN rejects control characters and anything that is not a FEN
func checkFEN(fen string) error {
	for _, r := range fen {
		if unicode.IsControl(r) {
			return errors.New("control character in FEN")
		}
	}
	_, err := board.ParseFEN(fen)
	return err
}

func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	fen := strings.TrimSpace(args.FEN)
	if fen != "" {
		if err := checkFEN(fen); err != nil {
			return p.errorResponse(fmt.Sprintf("invalid FEN: %v", err), core.ErrInvalidFEN)
		}
	}

	tc := p.control
	if args.TimeControl != nil {
		tc = args.TimeControl.TimeControl()
	}
	gameID, tokens, err := p.svc.CreateGame(tc, fen)
	if err != nil {
		return p.errorResponse(fmt.Sprintf("failed to create game: %v", err), core.ErrInternalError)
	}

	resp := p.gameResponse(gameID)
	if !resp.Success {
		return resp
	}
	return ProcessorResponse{
		Success: true,
		Data: core.CreateGameResponse{
			GameResponse: resp.Data.(core.GameResponse),
			Tokens:       tokens,
		},
	}
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	return p.gameResponse(cmd.GameID)
}

func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	if err := p.svc.DeleteGame(cmd.GameID); err != nil {
		return p.fromError(err)
	}
	return ProcessorResponse{Success: true}
}

// playable checks everything a move or promotion needs besides legality
func playable(g *game.Game, seat core.Color) error {
	if g.Status().Over() {
		return errGameOver
	}
	if g.Paused() {
		return game.ErrGamePaused
	}
	if seat != 0 && seat != g.Turn() {
		return errNotYourTurn
	}
	return nil
}

// handleMakeMove plays a move and passes the turn unless the pawn must
// first be promoted
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	from := strings.ToLower(strings.TrimSpace(args.From))
	to := strings.ToLower(strings.TrimSpace(args.To))

	err := p.svc.Update(cmd.GameID, func(g *game.Game) error {
		if err := playable(g, cmd.Seat); err != nil {
			return err
		}
		res, err := g.Move(from, to)
		if err != nil {
			return err
		}
		if !res.Promotion {
			_, err = g.AdvanceTurn()
		}
		return err
	})
	if err != nil {
		return p.fromError(err)
	}
	return p.gameResponse(cmd.GameID)
}

func (p *Processor) handlePromote(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.PromotionRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	err := p.svc.Update(cmd.GameID, func(g *game.Game) error {
		if err := playable(g, cmd.Seat); err != nil {
			return err
		}
		if _, err := g.Promote(args.Piece); err != nil {
			return err
		}
		_, err := g.AdvanceTurn()
		return err
	})
	if err != nil {
		return p.fromError(err)
	}
	return p.gameResponse(cmd.GameID)
}

// handleAllowedMoves lists destinations for a piece of the side to move
func (p *Processor) handleAllowedMoves(cmd Command) ProcessorResponse {
	square, _ := cmd.Args.(string)
	square = strings.ToLower(strings.TrimSpace(square))

	var resp core.AllowedMovesResponse
	err := p.svc.View(cmd.GameID, func(g *game.Game, _ int) error {
		moves, err := g.CurrentPlayer().AllowedMoves(square)
		if err != nil {
			return err
		}
		resp = core.AllowedMovesResponse{Square: square, Moves: []string{}}
		for _, c := range board.Destinations(moves) {
			resp.Moves = append(resp.Moves, c.String())
		}
		slices.Sort(resp.Moves)
		return nil
	})
	if err != nil {
		return p.fromError(err)
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	var resp core.BoardResponse
	err := p.svc.View(cmd.GameID, func(g *game.Game, _ int) error {
		resp = core.BoardResponse{FEN: g.FEN(), Board: g.String()}
		return nil
	})
	if err != nil {
		return p.fromError(err)
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handlePause(cmd Command) ProcessorResponse {
	err := p.svc.Update(cmd.GameID, func(g *game.Game) error {
		if g.Status().Over() {
			return errGameOver
		}
		if cmd.Type == CmdPause {
			g.Pause()
		} else {
			g.Resume()
		}
		return nil
	})
	if err != nil {
		return p.fromError(err)
	}
	return p.gameResponse(cmd.GameID)
}

func (p *Processor) gameResponse(gameID string) ProcessorResponse {
	var resp core.GameResponse
	err := p.svc.View(gameID, func(g *game.Game, version int) error {
		resp = BuildGameResponse(gameID, g, version)
		return nil
	})
	if err != nil {
		return p.fromError(err)
	}
	return ProcessorResponse{Success: true, Data: resp}
}

// BuildGameResponse snapshots g into its wire form. Caller holds the game.
func BuildGameResponse(gameID string, g *game.Game, version int) core.GameResponse {
	state := g.Status()
	resp := core.GameResponse{
		GameID:  gameID,
		Version: version,
		FEN:     g.FEN(),
		Turn:    g.Turn().String(),
		State:   state.String(),
		Moves:   g.Moves(),
		Paused:  g.Paused(),
	}

	if w, ok := g.Winner(); ok {
		resp.Winner = w.String()
	}
	if c, pending := g.CurrentPlayer().PendingPromotion(); pending {
		resp.Promotion = c.String()
	}

	white, black := g.Player(core.ColorWhite), g.Player(core.ColorBlack)
	if g.TimeControl().Enabled() {
		resp.Clocks = &core.ClocksResponse{
			White: white.ReadClock().Milliseconds(),
			Black: black.ReadClock().Milliseconds(),
		}
	}
	resp.Material = core.MaterialResponse{White: white.ValueDiff(), Black: black.ValueDiff()}
	resp.Captured = core.CapturedResponse{
		White: pieceNames(white.TakenPieces()),
		Black: pieceNames(black.TakenPieces()),
	}

	if ply, ok := g.LastPly(); ok {
		resp.LastMove = &core.MoveInfo{
			Move:        ply.String(),
			PlayerColor: ply.Color.String(),
		}
		if ply.Promotion != board.NoKind {
			resp.LastMove.Promotion = ply.Promotion.String()
		}
	}
	return resp
}

func pieceNames(pieces []board.Piece) []string {
	names := make([]string, 0, len(pieces))
	for _, p := range pieces {
		names = append(names, p.Kind.String())
	}
	return names
}

// fromError maps service and engine errors to response codes
func (p *Processor) fromError(err error) ProcessorResponse {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return p.errorResponse("game not found", core.ErrGameNotFound)
	case errors.Is(err, errGameOver):
		return p.errorResponse(err.Error(), core.ErrGameOver)
	case errors.Is(err, errNotYourTurn):
		return p.errorResponse(err.Error(), core.ErrNotYourTurn)
	case errors.Is(err, game.ErrGamePaused):
		return p.errorResponse(err.Error(), core.ErrGamePaused)
	case core.ReasonOf(err) == core.ReasonPromotionPending:
		return p.errorResponse(err.Error(), core.ErrPromotionPending)
	case errors.Is(err, core.ErrInvalidMove):
		return p.errorResponse(err.Error(), core.ErrInvalidMoveCode)
	case errors.Is(err, core.ErrInvalidCoordinate):
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	default:
		return p.errorResponse(err.Error(), core.ErrInternalError)
	}
}

func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}
