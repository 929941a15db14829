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


// Package verify decides which candidate listings refer to the target product.
//
// A Policy runs each candidate through a fixed sequence of gates:
//
//  1. Vintage: when the target has a vintage, the raw listing name must
//     contain it literally. Failing candidates are rejected without scoring.
//  2. Name similarity: the match.Scorer score must reach NameThreshold.
//  3. Brand: when the target has a producer, the normalized producer must
//     appear in the normalized listing name (or reach BrandThreshold by
//     partial ratio) for Verified. Otherwise the BrandFallback rule decides
//     between Likely and Rejected.
//  4. Varietal: a Verified candidate missing the target varietal drops to
//     Likely and its score is multiplied by VarietalPenalty.
//
// Every outcome carries a reason naming the deciding gate and the scores
// involved. Scores for all candidates that pass the vintage gate are
// computed in one Scorer call.
package verify
