// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"context"

	"github.com/poiesic/wheretobuy/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository.
	Close() error
}

// ProductRepository provides operations for managing the product catalog.
type ProductRepository interface {
	Repository
	// AddProducts adds or replaces catalog products.
	// Products with ID=0 get a new ID from the sequence.
	// Products whose ID already exists keep their InsertedAt and Processed
	// values, so re-importing a catalog does not reset finished work.
	// Returns the products with IDs and timestamps populated.
	AddProducts(ctx context.Context, products ...*core.Product) ([]*core.Product, error)

	// GetProduct retrieves a single product by ID.
	// Returns ErrNotFound if the product doesn't exist.
	GetProduct(ctx context.Context, id core.ID) (*core.Product, error)

	// ListProducts returns catalog products ordered by ID.
	// With pendingOnly set, products already processed are skipped.
	ListProducts(ctx context.Context, pendingOnly bool) ([]*core.Product, error)

	// MarkProcessed flags a product as having saved placements.
	// Returns ErrNotFound if the product doesn't exist.
	MarkProcessed(ctx context.Context, id core.ID) error
}

// PlacementRepository stores the ranked places found for a product.
type PlacementRepository interface {
	Repository
	// SavePlacements replaces all placements stored for the product.
	// An empty slice clears them.
	SavePlacements(ctx context.Context, productID core.ID, places []core.Placement) error

	// GetPlacements returns the placements for a product ordered by rank.
	// Returns an empty slice when none are stored.
	GetPlacements(ctx context.Context, productID core.ID) ([]core.Placement, error)
}
