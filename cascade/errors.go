package cascade

import "errors"

var (
	// ErrBackendUnavailable marks a stage whose backend failed. It is
	// recorded in Result.Failures and reported to the Monitor, never
	// returned from Run.
	ErrBackendUnavailable = errors.New("backend unavailable")

	ErrTextSearcherRequired = errors.New("text searcher is required")
	ErrPolicyRequired       = errors.New("verification policy is required")
	ErrInvalidMaxAttempts   = errors.New("maxAttempts must be greater than 0")
	ErrInvalidConfig        = errors.New("invalid cascade config")
)
