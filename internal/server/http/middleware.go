package http

import (
	"strings"

	"chessrules/internal/core"

	"github.com/gofiber/fiber/v2"
)

// SeatValidator resolves a seat token to its game and color
type SeatValidator func(token string) (gameID string, seat core.Color, err error)

// SeatRequired admits requests carrying a seat token for the game in the
// path and stores the seat color in Locals("seat")
func SeatRequired(validateSeat SeatValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c.Get("Authorization"))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
				Error: "missing seat token",
				Code:  core.ErrUnauthorized,
			})
		}

		gameID, seat, err := validateSeat(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
				Error: "invalid or expired seat token",
				Code:  core.ErrUnauthorized,
			})
		}
		if gameID != c.Params("gameId") {
			return c.Status(fiber.StatusForbidden).JSON(core.ErrorResponse{
				Error: "seat token belongs to another game",
				Code:  core.ErrUnauthorized,
			})
		}

		c.Locals("seat", seat)
		return c.Next()
	}
}

// contentTypeValidator ensures POST requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get("Content-Type")
		if contentType != "application/json" && contentType != "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// gameIDValidator rejects malformed game IDs before they reach a handler
func gameIDValidator(c *fiber.Ctx) error {
	if !isValidUUID(c.Params("gameId")) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid game ID format",
			Code:    core.ErrInvalidRequest,
			Details: "game ID must be a valid UUID",
		})
	}
	return c.Next()
}

func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}
