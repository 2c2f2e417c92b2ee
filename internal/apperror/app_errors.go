package apperror

import "errors"

var (
	// ErrColumnFull and ErrGameOver are expected rejections: callers treat them as no-ops.
	ErrColumnFull = errors.New("column is full")
	ErrGameOver   = errors.New("game is already over")

	ErrInvalidColumn = errors.New("invalid column index")
	ErrNotFound      = errors.New("not found")
)

// IsRejectedMove reports whether err is one of the move rejections that leave the game untouched.
func IsRejectedMove(err error) bool {
	return errors.Is(err, ErrColumnFull) || errors.Is(err, ErrGameOver) || errors.Is(err, ErrInvalidColumn)
}
