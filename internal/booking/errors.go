package booking

import "errors"

// Sentinel errors for the engine. Callers match with errors.Is and the HTTP
// layer translates them to status codes.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("reservation conflict")
	ErrInvalidState = errors.New("invalid state transition")
	ErrPermission   = errors.New("not authorized")
	ErrBusy         = errors.New("room is busy, try again")
)
