package verify

import "errors"

var (
	// ErrScorerRequired is returned when a policy is built without a scorer.
	ErrScorerRequired = errors.New("scorer required")

	// ErrInvalidConfig indicates a policy configuration failed validation.
	ErrInvalidConfig = errors.New("invalid verification config")
)
