package ai

import "errors"

var (
	// ErrMalformedResponse is returned when a generative reply cannot be
	// parsed into the expected structure.
	ErrMalformedResponse = errors.New("malformed advisor response")

	// ErrEmbeddingCount is returned when an embedding backend returns a
	// different number of vectors than texts sent.
	ErrEmbeddingCount = errors.New("embedding count mismatch")
)
