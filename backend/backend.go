// Package backend defines the search collaborators that produce candidate
// listings for a target product.
//
// Backends return an empty slice, not an error, when a search simply has
// no results. An error means the backend itself failed.
package backend

import (
	"context"

	"github.com/poiesic/wheretobuy/core"
)

// TextSearcher finds listings for a free-text product query.
type TextSearcher interface {
	SearchText(ctx context.Context, query string) ([]core.Candidate, error)
}

// ImageSearcher finds listings visually similar to a reference image.
type ImageSearcher interface {
	SearchImage(ctx context.Context, imageURL string) ([]core.Candidate, error)
}
