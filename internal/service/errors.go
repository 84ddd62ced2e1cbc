package service

import "errors"

// Sentinel errors mapped onto HTTP status codes by the delivery layer.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")

	// Sequencer state errors.
	ErrNoActiveMilestone = errors.New("no milestone is in progress")
	ErrSequenceDiverged  = errors.New("milestone sequence has moved past this milestone")

	// External dependency errors.
	ErrUpstreamFailure = errors.New("upstream service failure")
)
