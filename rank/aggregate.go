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

// Package rank turns verified candidates into the final ranked result.
package rank

import (
	"slices"
	"strings"

	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/match"
)

// DefaultLimit is the number of places returned for a product.
const DefaultLimit = 3

type options struct {
	limit         int
	reserveLikely bool
}

// Option configures Aggregate.
type Option func(*options)

// WithLimit sets the maximum result length. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithReservedLikely keeps a slot for the best Likely candidate when the
// limit would otherwise be filled by Verified ones.
func WithReservedLikely(reserve bool) Option {
	return func(o *options) {
		o.reserveLikely = reserve
	}
}

// Aggregate drops rejected candidates, deduplicates by (store, link), sorts
// by tier priority then descending score, and truncates to the limit. The
// sort is stable, so equal entries keep their input order, and the first
// entry of a duplicate group after sorting is the one kept.
func Aggregate(candidates []core.VerifiedCandidate, opts ...Option) core.PipelineResult {
	o := options{limit: DefaultLimit}
	for _, opt := range opts {
		opt(&o)
	}

	eligible := make([]core.VerifiedCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Tier == core.TierRejected {
			continue
		}
		eligible = append(eligible, c)
	}

	slices.SortStableFunc(eligible, compare)

	seen := make(map[dedupeKey]bool, len(eligible))
	unique := make([]core.VerifiedCandidate, 0, len(eligible))
	for _, c := range eligible {
		k := keyOf(c.Candidate)
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, c)
	}

	if len(unique) <= o.limit {
		return core.PipelineResult(unique)
	}

	result := slices.Clone(unique[:o.limit])
	if o.reserveLikely && !containsTier(result, core.TierLikely) {
		for _, c := range unique[o.limit:] {
			if c.Tier == core.TierLikely {
				result[len(result)-1] = c
				break
			}
		}
	}
	return core.PipelineResult(result)
}

type dedupeKey struct {
	store string
	link  string
}

func keyOf(c core.Candidate) dedupeKey {
	return dedupeKey{
		store: match.Normalize(c.StoreName),
		link:  strings.TrimSpace(c.Link),
	}
}

// compare orders by tier priority, then score, both descending.
func compare(a, b core.VerifiedCandidate) int {
	if pa, pb := a.Tier.Priority(), b.Tier.Priority(); pa != pb {
		return pb - pa
	}
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	}
	return 0
}

func containsTier(result []core.VerifiedCandidate, tier core.Tier) bool {
	for _, c := range result {
		if c.Tier == tier {
			return true
		}
	}
	return false
}
