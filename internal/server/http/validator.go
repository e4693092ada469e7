package http

import (
	"fmt"
	"reflect"
	"strings"

	"chessrules/internal/board"
	"chessrules/internal/core"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = newValidator()

// newValidator registers the chess-specific tags: "square" for a1..h8 and
// "promotion" for the four promotion piece names
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("square", func(fl validator.FieldLevel) bool {
		_, err := board.ParseCoord(strings.ToLower(strings.TrimSpace(fl.Field().String())))
		return err == nil
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("promotion", func(fl validator.FieldLevel) bool {
		_, err := board.ParsePromotion(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

func validationMiddleware(c *fiber.Ctx) error {
	// Skip validation for GET, DELETE, OPTIONS
	method := c.Method()
	if method != fiber.MethodPost {
		return c.Next()
	}

	path := c.Path()
	var requestType any

	switch {
	case strings.HasSuffix(path, "/games"):
		requestType = &core.CreateGameRequest{}
	case strings.HasSuffix(path, "/moves"):
		requestType = &core.MoveRequest{}
	case strings.HasSuffix(path, "/promotion"):
		requestType = &core.PromotionRequest{}
	default:
		return c.Next() // pause and resume carry no body
	}

	if err := c.BodyParser(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.ErrInvalidRequest,
			Details: err.Error(),
		})
	}

	if errs := validate.Struct(requestType); errs != nil {
		var details strings.Builder
		var verrs validator.ValidationErrors
		if ve, ok := errs.(validator.ValidationErrors); ok {
			verrs = ve
		}
		for _, err := range verrs {
			if details.Len() > 0 {
				details.WriteString("; ")
			}
			switch err.Tag() {
			case "required":
				details.WriteString(fmt.Sprintf("%s is required", err.Field()))
			case "square":
				details.WriteString(fmt.Sprintf("%s must be a square a1..h8", err.Field()))
			case "promotion":
				details.WriteString(fmt.Sprintf("%s must be queen, rook, bishop or knight", err.Field()))
			case "min":
				details.WriteString(fmt.Sprintf("%s must be at least %s", err.Field(), err.Param()))
			case "max":
				if err.Type().Kind() == reflect.String {
					details.WriteString(fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param()))
				} else {
					details.WriteString(fmt.Sprintf("%s must be at most %s", err.Field(), err.Param()))
				}
			default:
				details.WriteString(fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag()))
			}
		}

		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: details.String(),
		})
	}

	// Store validated body for handler use
	c.Locals("validatedBody", requestType)
	return c.Next()
}

// validatedBody fetches the request parsed by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (T, bool) {
	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		var zero T
		return zero, false
	}
	return *body, true
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
