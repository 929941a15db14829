package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/storage"
)

// ProductRepository implements storage.ProductRepository for BadgerDB.
type ProductRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ProductRepository = (*ProductRepository)(nil)

// newProductRepository creates a new ProductRepository.
func newProductRepository(backend *Backend) (*ProductRepository, error) {
	idSeq, err := backend.GetSequence(productIDSeq)
	if err != nil {
		return nil, err
	}

	return &ProductRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ProductRepository) Close() error {
	return r.idSeq.Release()
}

// AddProducts adds or replaces catalog products.
func (r *ProductRepository) AddProducts(ctx context.Context, products ...*core.Product) ([]*core.Product, error) {
	for _, p := range products {
		if err := core.ValidateProduct(p); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, p := range products {
			if p.Id == 0 {
				id, err := r.nextFreeID(tx)
				if err != nil {
					return err
				}
				p.Id = id
			}

			key := makeProductKey(p.Id)
			old, err := readProduct(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				p.InsertedAt = old.InsertedAt
				p.Processed = old.Processed || p.Processed
			} else if p.InsertedAt.IsZero() {
				p.InsertedAt = now
			}
			p.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalProduct(p)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// nextFreeID draws from the sequence, skipping IDs that imported catalogs
// have already claimed.
func (r *ProductRepository) nextFreeID(tx *badger.Txn) (core.ID, error) {
	for {
		next, err := r.idSeq.Next()
		if err != nil {
			return 0, err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if next == 0 {
			continue
		}
		_, err = tx.Get(makeProductKey(core.ID(next)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return core.ID(next), nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// GetProduct retrieves a single product by ID.
func (r *ProductRepository) GetProduct(ctx context.Context, id core.ID) (*core.Product, error) {
	var result *core.Product
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readProduct(tx, makeProductKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListProducts returns catalog products ordered by ID.
func (r *ProductRepository) ListProducts(ctx context.Context, pendingOnly bool) ([]*core.Product, error) {
	var results []*core.Product
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(productPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var p *core.Product
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				p, err = storage.UnmarshalProduct(val)
				return err
			}); err != nil {
				return err
			}
			if pendingOnly && p.Processed {
				continue
			}
			results = append(results, p)
		}
		return nil
	}, false)
	return results, err
}

// MarkProcessed flags a product as having saved placements.
func (r *ProductRepository) MarkProcessed(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		key := makeProductKey(id)
		p, err := readProduct(tx, key)
		if err != nil {
			return err
		}
		if p == nil {
			return storage.ErrNotFound
		}
		p.Processed = true
		p.UpdatedAt = time.Now().UTC()
		if err := tx.Set(key, storage.MarshalProduct(p)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readProduct returns nil, nil when the key is absent.
func readProduct(tx *badger.Txn, key []byte) (*core.Product, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var p *core.Product
	err = item.Value(func(val []byte) error {
		var err error
		p, err = storage.UnmarshalProduct(val)
		return err
	})
	return p, err
}
