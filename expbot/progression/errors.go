package progression

import "errors"

// Validation errors returned before any state change.
var (
	ErrInvalidUser     = errors.New("invalid user id")
	ErrInvalidAmount   = errors.New("amount must be a positive integer")
	ErrInvalidExp      = errors.New("exp must not be negative")
	ErrInvalidDuration = errors.New("invalid duration, use a number and a unit (minutes/hours/days)")
	ErrInvalidCurve    = errors.New("invalid level curve parameters")
	ErrEngineClosed    = errors.New("engine closed")
)
