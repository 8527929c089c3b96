package services

import "errors"

// Error taxonomy for the booking core. Handlers map these onto HTTP status
// codes; everything except ErrUpstream is terminal and must not be retried.
var (
	ErrValidation   = errors.New("invalid input")
	ErrForbidden    = errors.New("actor not permitted")
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("transition not legal from current state")
	ErrUpstream     = errors.New("upstream collaborator failed")
	ErrBadSignature = errors.New("webhook signature mismatch")
)
