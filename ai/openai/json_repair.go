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


package openai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// `{store_name":` and `{store_name:` both become `{"store_name":`
	halfQuotedKey = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)"?\s*:`)
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)
	fenceLine     = regexp.MustCompile("(?m)^\\s*```[A-Za-z]*\\s*$")
)

var typographicQuotes = strings.NewReplacer(
	"\u201c", `"`, "\u201d", `"`,
	"\u201e", `"`, "\u00ab", `"`, "\u00bb", `"`,
)

// repairJSON fixes the formatting slips models make when asked for a list
// of retailers: markdown fences, typographic quotes around strings, keys
// missing their opening quote and commas left before a closing bracket.
// Valid JSON is only unfenced, so string values are never rewritten.
func repairJSON(s string) string {
	s = fenceLine.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if json.Valid([]byte(s)) {
		return s
	}
	s = typographicQuotes.Replace(s)
	s = halfQuotedKey.ReplaceAllString(s, `$1"$2":`)
	s = trailingComma.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
