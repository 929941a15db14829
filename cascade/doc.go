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


// Package cascade runs the escalating search pipeline for one target.
//
// Stages run strictly in order and each later stage only runs when the
// earlier ones found nothing usable:
//
//	TEXT_SEARCH -> IMAGE_SEARCH -> GENERATIVE_FALLBACK -> DONE
//
// Text and image candidates pass through the negative keyword filter and
// the verification policy. Fallback suggestions skip verification and are
// tagged Suggested. A failing backend never aborts the pipeline: the stage
// is recorded as unavailable and treated as having produced nothing, and a
// failed fallback is replaced by a single generic retailer suggestion.
//
// Basic usage:
//
//	policy, _ := verify.NewPolicy(match.NewLexicalScorer())
//	orch, err := cascade.NewOrchestrator(serp, policy,
//	    cascade.WithImageSearcher(serp),
//	    cascade.WithAdvisor(provider.Advisor()),
//	)
//	result, err := orch.Run(ctx, target)
//	for _, place := range result.Places {
//	    fmt.Println(place.Tier, place.StoreName, place.Link)
//	}
package cascade
