package badger

import "github.com/poiesic/wheretobuy/storage"

// NewMemoryRepositories creates in-memory product and placement repositories for testing.
// Returns products, placements, backend, and error.
// Caller must close both repos and then the backend when done.
func NewMemoryRepositories() (storage.ProductRepository, storage.PlacementRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	products, places, err := newRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}
	return products, places, backend, nil
}
