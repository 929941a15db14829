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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidTarget indicates a search target failed validation.
	// No backend is contacted for an invalid target.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrInvalidProduct indicates a catalog Product failed validation.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrInvalidPlacement indicates a Placement failed validation.
	ErrInvalidPlacement = errors.New("invalid placement")

	// ErrEmptyName indicates the product name is empty.
	ErrEmptyName = errors.New("product name cannot be empty")

	// ErrEmptyStore indicates the placement store name is empty.
	ErrEmptyStore = errors.New("store name cannot be empty")

	// ErrInvalidRank indicates a placement rank outside 1..n.
	ErrInvalidRank = errors.New("invalid placement rank")

	// ErrInvalidTier indicates an unknown tier name or a Rejected placement.
	ErrInvalidTier = errors.New("invalid tier")
)
