package app

import "errors"

// Sentinel errors for common application errors
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNoExternalSignal = errors.New("store has no cross-process change signal")
)
