package banknote

import "errors"

var (
	// ErrInvalidInput is returned when a collector is built without a banknote collection.
	ErrInvalidInput = errors.New("banknote collection must not be nil")
	// ErrUnknownStrategy is returned when a strategy name cannot be resolved.
	ErrUnknownStrategy = errors.New("unknown collect strategy")
)
