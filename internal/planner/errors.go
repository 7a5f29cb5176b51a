package planner

import "errors"

// The failure taxonomy of plan generation. Callers match with errors.Is; the
// wrapped cause is for logs only.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid wedding attributes")
	ErrQuotaExceeded   = errors.New("plan generation limit reached")
	ErrUpstream        = errors.New("failed to generate plan")
	ErrMalformedOutput = errors.New("failed to parse plan")
	ErrPersistence     = errors.New("failed to save plan")
)
