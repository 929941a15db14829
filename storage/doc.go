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


// Package storage provides the storage abstraction layer for wheretobuy.
//
// This package defines repository interfaces that decouple storage implementation
// from the search pipeline. Two backends exist: storage/badger keeps the product
// catalog and placements in an embedded key-value store, and storage/sqlstore
// keeps placements in a one-row-per-result SQL table (SQLite or PostgreSQL).
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to keep callers off backend specifics:
//
//	products, places, err := badger.NewRepositories(path)  // storage.ProductRepository, storage.PlacementRepository
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Serialization
//
// Badger values are encoded with the mus-go serializers that cmd/musgen
// generates into core (run go generate ./core after changing Product or
// Placement). Each record starts with a format version byte so the layout
// can evolve without migrating old values.
//
// # Usage
//
//	products, places, err := badger.NewRepositories("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer products.Close()
//	defer places.Close()
//
// Use in tests with in-memory storage:
//
//	products, places, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
