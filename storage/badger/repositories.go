package badger

import "github.com/poiesic/wheretobuy/storage"

// Repositories bundles the repositories sharing one database. Closing it
// releases the repositories and then the database.
type Repositories struct {
	Products   storage.ProductRepository
	Placements storage.PlacementRepository
	backend    *Backend
}

// Open opens (creating if needed) a database directory and returns its
// repositories.
func Open(path string) (*Repositories, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}

	products, places, err := newRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &Repositories{Products: products, Placements: places, backend: backend}, nil
}

// Close releases the repositories and the database.
func (r *Repositories) Close() error {
	err := r.Products.Close()
	if cerr := r.Placements.Close(); err == nil {
		err = cerr
	}
	if cerr := r.backend.Close(); err == nil {
		err = cerr
	}
	return err
}

func newRepositories(backend *Backend) (*ProductRepository, *PlacementRepository, error) {
	products, err := newProductRepository(backend)
	if err != nil {
		return nil, nil, err
	}
	return products, newPlacementRepository(backend), nil
}

// Backend returns the shared database handle. Callers that close the
// repositories individually close it last.
func (r *Repositories) Backend() *Backend {
	return r.backend
}
