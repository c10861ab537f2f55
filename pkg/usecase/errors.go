package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrRunNotFound = errors.New("run not found")

	// Validation errors
	ErrEmptyQuery   = errors.New("query is empty")
	ErrQueryTooLong = errors.New("query is too long")
	ErrEmptyMessage = errors.New("message is empty")

	// Precondition errors
	ErrRunNotCompleted = errors.New("run is not completed")

	// Pipeline errors
	ErrMalformedPlan = errors.New("planner returned a malformed decision")
	ErrEmptyReport   = errors.New("synthesis produced an empty report")
)
