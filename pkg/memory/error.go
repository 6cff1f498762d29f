package memory

import "errors"

var (
	// ErrInvalidUserID is returned when a user id is empty or blank.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidSessionID is returned when a session id is empty or blank.
	ErrInvalidSessionID = errors.New("invalid session id")

	// ErrMalformedTurn is returned when a stored record cannot be decoded
	// into a Turn.
	ErrMalformedTurn = errors.New("malformed turn")
)
