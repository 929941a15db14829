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


// Package match compares candidate listing names against a target product.
//
// It provides the text primitives used by verification:
//   - Normalize and Strict canonicalize names for comparison
//   - KeywordFilter drops listings for non-sellable items (empty bottles,
//     decanted stock, collector displays)
//   - Scorer rates how closely each candidate name matches the target
//
// Two Scorer strategies are provided. LexicalScorer takes the best of
// several fuzzy string ratios on a 0-100 scale. SemanticScorer embeds the
// target and every candidate in a single batched request and returns cosine
// similarities in the range -1.0 to 1.0.
package match
