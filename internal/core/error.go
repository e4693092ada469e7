package core

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrGameNotFound      = "GAME_NOT_FOUND"
	ErrInvalidMoveCode   = "INVALID_MOVE"
	ErrPromotionPending  = "PROMOTION_PENDING"
	ErrNotYourTurn       = "NOT_YOUR_TURN"
	ErrGameOver          = "GAME_OVER"
	ErrGamePaused        = "GAME_PAUSED"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInvalidFEN        = "INVALID_FEN"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrUnauthorized      = "UNAUTHORIZED"
)

var (
	// ErrInvalidMove covers every rejected move, promotion or turn change.
	// Engine state is unchanged when it is returned.
	ErrInvalidMove = errors.New("invalid move")

	// ErrInvalidCoordinate is returned for anything outside a1..h8
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

type MoveReason int

const (
	ReasonNoPiece MoveReason = iota + 1
	ReasonWrongColor
	ReasonIllegalDestination
	ReasonPromotionPending
	ReasonNoPromotion
	ReasonBadPromotion
	ReasonFlagFell
	ReasonBadCoordinate
)

func (r MoveReason) String() string {
	switch r {
	case ReasonNoPiece:
		return "no piece on square"
	case ReasonWrongColor:
		return "piece belongs to the opponent"
	case ReasonIllegalDestination:
		return "destination not allowed"
	case ReasonPromotionPending:
		return "promotion pending"
	case ReasonNoPromotion:
		return "no promotion pending"
	case ReasonBadPromotion:
		return "unknown promotion piece"
	case ReasonFlagFell:
		return "clock has run out"
	case ReasonBadCoordinate:
		return "malformed coordinate"
	default:
		return "unknown reason"
	}
}

// MoveError is the typed form of ErrInvalidMove
type MoveError struct {
	Reason MoveReason
	Detail string
}

func (e *MoveError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("invalid move: %s", e.Reason)
	}
	return fmt.Sprintf("invalid move: %s: %s", e.Reason, e.Detail)
}

func (e *MoveError) Is(target error) bool {
	return target == ErrInvalidMove
}

func NewMoveError(reason MoveReason, format string, args ...any) *MoveError {
	return &MoveError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the reason from a move error, zero if err is not one
func ReasonOf(err error) MoveReason {
	var me *MoveError
	if errors.As(err, &me) {
		return me.Reason
	}
	return 0
}
