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


package wheretobuy

import "errors"

var (
	// ErrProductNotFound indicates no catalog product has the requested ID.
	ErrProductNotFound = errors.New("product not found")

	// ErrPersistence indicates placements could not be stored. The search
	// itself completed; its result is returned alongside the error.
	ErrPersistence = errors.New("persistence failure")

	// ErrNoMatch indicates a search finished with no place to buy.
	ErrNoMatch = errors.New("no match")
)
