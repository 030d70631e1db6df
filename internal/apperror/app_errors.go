package apperror

import "errors"

var (
	ErrOutOfRange       = errors.New("cell index out of range")
	ErrIllegalMove      = errors.New("illegal move")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNoLegalMoves     = errors.New("no legal moves")
	ErrInvalidState     = errors.New("invalid game state")
	ErrSessionNotFound  = errors.New("session not found")
	ErrUnknownMode      = errors.New("unknown game mode")
)
