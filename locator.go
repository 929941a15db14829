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

// Package wheretobuy finds where beverage products can be bought.
//
// A Locator ties the catalog store to the search cascade: it resolves a
// product, runs text search, image search and the generative fallback as
// needed, and persists the ranked places it found.
package wheretobuy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/wheretobuy/cascade"
	"github.com/poiesic/wheretobuy/catalog"
	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/storage"
)

// Locator runs searches and keeps their results with the catalog.
type Locator struct {
	products     storage.ProductRepository
	places       storage.PlacementRepository
	mirror       storage.PlacementRepository
	orchestrator *cascade.Orchestrator
	closers      []io.Closer
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures a Locator.
type Option func(*Locator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// WithMirror also writes placements to a second repository, such as the
// SQL results table. Reads always use the primary repository.
func WithMirror(mirror storage.PlacementRepository) Option {
	return func(l *Locator) error {
		l.mirror = mirror
		return nil
	}
}

// WithCloser registers a resource released by Close, after the
// repositories. Closers run in reverse registration order.
func WithCloser(c io.Closer) Option {
	return func(l *Locator) error {
		if c != nil {
			l.closers = append(l.closers, c)
		}
		return nil
	}
}

// NewLocator creates a Locator over already opened components. Close
// releases the repositories, the mirror and any registered closers.
func NewLocator(products storage.ProductRepository, places storage.PlacementRepository, orchestrator *cascade.Orchestrator, opts ...Option) (*Locator, error) {
	if products == nil || places == nil {
		return nil, errors.New("product and placement repositories are required")
	}
	if orchestrator == nil {
		return nil, errors.New("orchestrator is required")
	}

	l := &Locator{
		products:     products,
		places:       places,
		orchestrator: orchestrator,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	l.logger = l.logger.With("component", "locator")
	return l, nil
}

// Locate runs the cascade for an inline target. Nothing is persisted.
// The only error is core.ErrInvalidTarget.
func (l *Locator) Locate(ctx context.Context, target core.Target) (*cascade.Result, error) {
	return l.orchestrator.Run(ctx, target)
}

// LocateProduct resolves a catalog product, runs the cascade for it and
// replaces its stored placements. A result with no places clears them.
// When storing fails the result is still returned with an error wrapping
// ErrPersistence.
func (l *Locator) LocateProduct(ctx context.Context, id core.ID) (*cascade.Result, error) {
	product, err := l.Product(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := l.orchestrator.Run(ctx, product.Target())
	if err != nil {
		return nil, err
	}

	placements := result.Places.Placements(product.Id, l.now().UTC())
	if err := l.places.SavePlacements(ctx, product.Id, placements); err != nil {
		l.logger.Error("failed to save placements", "product", product.Id, "err", err)
		return result, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if l.mirror != nil {
		if err := l.mirror.SavePlacements(ctx, product.Id, placements); err != nil {
			l.logger.Error("failed to mirror placements", "product", product.Id, "err", err)
			return result, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
	}
	if err := l.products.MarkProcessed(ctx, product.Id); err != nil {
		l.logger.Error("failed to mark product processed", "product", product.Id, "err", err)
		return result, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	l.logger.Info("product located",
		"product", product.Id,
		"name", product.Name,
		"places", len(placements),
		"stages", len(result.Stages))
	return result, nil
}

// Product returns a catalog product or ErrProductNotFound.
func (l *Locator) Product(ctx context.Context, id core.ID) (*core.Product, error) {
	product, err := l.products.GetProduct(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return product, err
}

// Products lists catalog products ordered by ID.
func (l *Locator) Products(ctx context.Context, pendingOnly bool) ([]*core.Product, error) {
	return l.products.ListProducts(ctx, pendingOnly)
}

// Places returns the stored placements for a catalog product, ordered by
// rank. An empty slice means the product was never located or nothing was
// found.
func (l *Locator) Places(ctx context.Context, id core.ID) ([]core.Placement, error) {
	if _, err := l.Product(ctx, id); err != nil {
		return nil, err
	}
	return l.places.GetPlacements(ctx, id)
}

// ImportProducts loads a catalog export into the Locator's catalog.
func (l *Locator) ImportProducts(ctx context.Context, path string, opts catalog.Options) ([]*core.Product, *catalog.Report, error) {
	added, report, err := ImportCatalog(ctx, l.products, path, opts)
	if err == nil {
		l.logger.Info("catalog imported", "file", path, "products", len(added))
	}
	return added, report, err
}

// ImportCatalog loads a catalog export and adds its products to repo.
// Rows whose ID is already stored replace the product but keep its
// processed state.
func ImportCatalog(ctx context.Context, repo storage.ProductRepository, path string, opts catalog.Options) ([]*core.Product, *catalog.Report, error) {
	products, report, err := catalog.LoadFile(path, opts)
	if err != nil {
		return nil, nil, err
	}
	if len(products) == 0 {
		return nil, report, nil
	}

	added, err := repo.AddProducts(ctx, products...)
	if err != nil {
		return nil, report, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return added, report, nil
}

// Close releases the repositories and every registered resource. The
// first error is returned; later ones are logged.
func (l *Locator) Close() error {
	var first error
	record := func(what string, err error) {
		if err == nil {
			return
		}
		l.logger.Error("error closing "+what, "err", err)
		if first == nil {
			first = err
		}
	}

	record("product repository", l.products.Close())
	record("placement repository", l.places.Close())
	if l.mirror != nil {
		record("results mirror", l.mirror.Close())
	}
	for i := len(l.closers) - 1; i >= 0; i-- {
		record("resource", l.closers[i].Close())
	}
	return first
}
