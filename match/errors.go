package match

import "errors"

var (
	// ErrEmbedderRequired is returned when a semantic scorer is built without an embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrScoring is returned when the embedding backend fails or returns an
	// unusable batch.
	ErrScoring = errors.New("similarity scoring failed")
)
