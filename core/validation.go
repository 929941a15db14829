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

import (
	"fmt"
	"strings"
)

// ValidateTarget validates a search Target.
//
// Validation rules:
//   - Name must not be blank
//
// NOT validated:
//   - Producer, Varietal, Vintage (free text, optional)
//   - ImageURL (reachability is the visual backend's concern)
func ValidateTarget(target *Target) error {
	if target == nil {
		return fmt.Errorf("%w: target is nil", ErrInvalidTarget)
	}

	if strings.TrimSpace(target.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTarget, ErrEmptyName)
	}

	return nil
}

// ValidateProduct validates a catalog Product.
// Only the name is required; non-wine products may carry any vintage text
// because it is ignored when building their target.
func ValidateProduct(product *Product) error {
	if product == nil {
		return fmt.Errorf("%w: product is nil", ErrInvalidProduct)
	}

	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrEmptyName)
	}

	return nil
}

// ValidatePlacement validates a Placement before it is persisted.
func ValidatePlacement(place *Placement) error {
	if place == nil {
		return fmt.Errorf("%w: placement is nil", ErrInvalidPlacement)
	}

	if strings.TrimSpace(place.StoreName) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPlacement, ErrEmptyStore)
	}

	if place.Rank < 1 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidPlacement, ErrInvalidRank, place.Rank)
	}

	if place.Tier == TierRejected {
		return fmt.Errorf("%w: %w: rejected candidates are never placed", ErrInvalidPlacement, ErrInvalidTier)
	}

	return nil
}

// IsYearLike reports whether s is exactly four ASCII digits.
func IsYearLike(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
