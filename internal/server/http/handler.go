// Package http exposes the game service over a Fiber REST API with
// long-polling and a WebSocket push stream.
package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"chessrules/internal/core"
	"chessrules/internal/game"
	"chessrules/internal/server/processor"
	"chessrules/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	// State stream, one connection per viewer
	app.Get("/ws/games/:gameId", gameIDValidator, wsUpgrade, websocket.New(h.StreamGame))

	api := app.Group("/api/v1")

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	seat := SeatRequired(svc.ValidateSeatToken)

	api.Post("/games", h.CreateGame)
	api.Get("/games/:gameId", gameIDValidator, h.GetGame)
	api.Delete("/games/:gameId", gameIDValidator, h.DeleteGame)
	api.Post("/games/:gameId/moves", gameIDValidator, seat, h.MakeMove)
	api.Get("/games/:gameId/moves/:square", gameIDValidator, h.AllowedMoves)
	api.Post("/games/:gameId/promotion", gameIDValidator, seat, h.Promote)
	api.Get("/games/:gameId/board", gameIDValidator, h.GetBoard)
	api.Post("/games/:gameId/pause", gameIDValidator, seat, h.Pause)
	api.Post("/games/:gameId/resume", gameIDValidator, seat, h.Resume)

	return app
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrGameNotFound
		case fiber.StatusBadRequest, fiber.StatusUpgradeRequired:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusFor maps processor error codes to HTTP status
func statusFor(code string) int {
	switch code {
	case core.ErrGameNotFound:
		return fiber.StatusNotFound
	case core.ErrNotYourTurn:
		return fiber.StatusForbidden
	case core.ErrGameOver, core.ErrGamePaused, core.ErrPromotionPending:
		return fiber.StatusConflict
	case core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

func reply(c *fiber.Ctx, resp processor.ProcessorResponse) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	return c.JSON(resp.Data)
}

func validationBypass(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
		Error: "validation data missing",
		Code:  core.ErrInternalError,
	})
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"games":   h.svc.GameCount(),
		"storage": h.svc.GetStorageHealth(),
	})
}

// CreateGame creates a game from the standard array or a FEN
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, ok := validatedBody[core.CreateGameRequest](c)
	if !ok {
		return validationBypass(c)
	}

	resp := h.proc.Execute(processor.NewCreateGameCommand(req))
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	return c.Status(fiber.StatusCreated).JSON(resp.Data)
}

// GetGame returns the game state. With wait=true and the version the
// client last saw, it blocks until the game changes or the wait times out.
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	if c.Query("wait", "false") != "true" {
		return reply(c, h.proc.Execute(processor.NewGetGameCommand(gameID)))
	}

	seen, err := strconv.Atoi(c.Query("version", "-1"))
	if err != nil {
		seen = -1
	}

	current := -1
	err = h.svc.View(gameID, func(_ *game.Game, version int) error {
		current = version
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "game not found",
			Code:  core.ErrGameNotFound,
		})
	}

	// Client is behind, answer immediately
	if seen != current {
		return reply(c, h.proc.Execute(processor.NewGetGameCommand(gameID)))
	}

	ctx := c.Context()
	notify := h.svc.RegisterWait(ctx, gameID, seen)

	select {
	case <-notify:
		// Changed, timed out or deleted; a deleted game reports not found
		return reply(c, h.proc.Execute(processor.NewGetGameCommand(gameID)))
	case <-ctx.Done():
		return nil
	}
}

// MakeMove plays a move for the token's seat
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	req, ok := validatedBody[core.MoveRequest](c)
	if !ok {
		return validationBypass(c)
	}
	seat, _ := c.Locals("seat").(core.Color)
	return reply(c, h.proc.Execute(processor.NewMakeMoveCommand(c.Params("gameId"), seat, req)))
}

// Promote completes a pending promotion for the token's seat
func (h *HTTPHandler) Promote(c *fiber.Ctx) error {
	req, ok := validatedBody[core.PromotionRequest](c)
	if !ok {
		return validationBypass(c)
	}
	seat, _ := c.Locals("seat").(core.Color)
	return reply(c, h.proc.Execute(processor.NewPromoteCommand(c.Params("gameId"), seat, req)))
}

// AllowedMoves lists destinations for the side to move's piece on :square
func (h *HTTPHandler) AllowedMoves(c *fiber.Ctx) error {
	return reply(c, h.proc.Execute(processor.NewAllowedMovesCommand(c.Params("gameId"), c.Params("square"))))
}

func (h *HTTPHandler) Pause(c *fiber.Ctx) error {
	seat, _ := c.Locals("seat").(core.Color)
	return reply(c, h.proc.Execute(processor.NewPauseCommand(c.Params("gameId"), seat)))
}

func (h *HTTPHandler) Resume(c *fiber.Ctx) error {
	seat, _ := c.Locals("seat").(core.Color)
	return reply(c, h.proc.Execute(processor.NewResumeCommand(c.Params("gameId"), seat)))
}

// DeleteGame ends and cleans up a game
func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	resp := h.proc.Execute(processor.NewDeleteGameCommand(c.Params("gameId")))
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetBoard returns the glyph grid and FEN
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	return reply(c, h.proc.Execute(processor.NewGetBoardCommand(c.Params("gameId"))))
}
