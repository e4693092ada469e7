package service

import (
	"errors"
	"fmt"

	"chessrules/internal/core"

	"github.com/lixenwraith/auth"
)

var ErrInvalidSeatToken = errors.New("invalid seat token")

// issueSeatTokens signs one token per color; the subject is the game ID
func (s *Service) issueSeatTokens(gameID string) (core.SeatTokens, error) {
	var tokens core.SeatTokens
	for _, color := range core.Colors {
		token, err := auth.GenerateHS256Token(s.jwtSecret, gameID, map[string]any{
			"seat": color.String(),
		}, s.tokenTTL)
		if err != nil {
			return core.SeatTokens{}, err
		}
		if color == core.ColorWhite {
			tokens.White = token
		} else {
			tokens.Black = token
		}
	}
	return tokens, nil
}

// ValidateSeatToken returns the game and color a token was issued for
func (s *Service) ValidateSeatToken(token string) (string, core.Color, error) {
	gameID, claims, err := auth.ValidateHS256Token(s.jwtSecret, token)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidSeatToken, err)
	}
	seat, _ := claims["seat"].(string)
	color, err := core.ParseColor(seat)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidSeatToken, err)
	}
	return gameID, color, nil
}
