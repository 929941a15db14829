package badger

import (
	"context"
	"errors"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/storage"
)

// PlacementRepository implements storage.PlacementRepository for BadgerDB.
// All placements of a product live under one key.
type PlacementRepository struct {
	backend *Backend
}

var _ storage.PlacementRepository = (*PlacementRepository)(nil)

// newPlacementRepository creates a new PlacementRepository.
func newPlacementRepository(backend *Backend) *PlacementRepository {
	return &PlacementRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *PlacementRepository) Close() error {
	return nil
}

// SavePlacements replaces all placements stored for the product.
func (r *PlacementRepository) SavePlacements(ctx context.Context, productID core.ID, places []core.Placement) error {
	for i := range places {
		if err := core.ValidatePlacement(&places[i]); err != nil {
			return err
		}
	}

	sorted := slices.Clone(places)
	for i := range sorted {
		sorted[i].ProductID = productID
	}
	slices.SortStableFunc(sorted, func(a, b core.Placement) int { return a.Rank - b.Rank })

	return r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		key := makePlacementKey(productID)
		if len(sorted) == 0 {
			if err := tx.Delete(key); err != nil {
				return err
			}
		} else if err := tx.Set(key, storage.MarshalPlacements(sorted)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetPlacements returns the placements for a product ordered by rank.
func (r *PlacementRepository) GetPlacements(ctx context.Context, productID core.ID) ([]core.Placement, error) {
	places := []core.Placement{}
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		item, err := tx.Get(makePlacementKey(productID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			places, err = storage.UnmarshalPlacements(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return places, nil
}
