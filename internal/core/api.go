package core

import "time"

// Request types

type TimeControlConfig struct {
	Minutes          int `json:"minutes" validate:"min=0,max=180"`
	IncrementSeconds int `json:"incrementSeconds" validate:"min=0,max=60"`
	DelaySeconds     int `json:"delaySeconds" validate:"min=0,max=60"`
}

// TimeControl converts the request form into a clock setting
func (c *TimeControlConfig) TimeControl() TimeControl {
	if c == nil {
		return TimeControl{}
	}
	return TimeControl{
		Time:      time.Duration(c.Minutes) * time.Minute,
		Increment: time.Duration(c.IncrementSeconds) * time.Second,
		Delay:     time.Duration(c.DelaySeconds) * time.Second,
	}
}

type CreateGameRequest struct {
	TimeControl *TimeControlConfig `json:"timeControl,omitempty"`
	FEN         string             `json:"fen,omitempty" validate:"omitempty,max=100"`
}

type MoveRequest struct {
	From string `json:"from" validate:"required,square"`
	To   string `json:"to" validate:"required,square"`
}

type PromotionRequest struct {
	Piece string `json:"piece" validate:"required,promotion"`
}

// Response types

type GameResponse struct {
	GameID    string           `json:"gameId"`
	Version   int              `json:"version"` // bumped on every change, for ?wait=true polling
	FEN       string           `json:"fen"`
	Turn      string           `json:"turn"`  // "w" or "b"
	State     string           `json:"state"` // "ongoing", "check", "checkmate", ...
	Winner    string           `json:"winner,omitempty"`
	Moves     []string         `json:"moves"`
	Promotion string           `json:"promotion,omitempty"` // square awaiting promotion
	Paused    bool             `json:"paused,omitempty"`
	Clocks    *ClocksResponse  `json:"clocks,omitempty"`
	Material  MaterialResponse `json:"material"`
	Captured  CapturedResponse `json:"captured"`
	LastMove  *MoveInfo        `json:"lastMove,omitempty"`
}

type CreateGameResponse struct {
	GameResponse
	Tokens SeatTokens `json:"tokens"`
}

type SeatTokens struct {
	White string `json:"white"`
	Black string `json:"black"`
}

type ClocksResponse struct {
	White int64 `json:"white"` // milliseconds remaining
	Black int64 `json:"black"`
}

// MaterialResponse holds each side's value differential
type MaterialResponse struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// CapturedResponse lists pieces each side has taken, highest value first
type CapturedResponse struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"` // "w" or "b"
	Promotion   string `json:"promotion,omitempty"`
}

type AllowedMovesResponse struct {
	Square string   `json:"square"`
	Moves  []string `json:"moves"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // glyph grid
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
