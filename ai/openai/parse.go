package openai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/poiesic/wheretobuy/ai"
)

// place is an internal type used for JSON unmarshaling.
// Models drift between key spellings, so the common aliases are accepted.
type place struct {
	StoreName string `json:"store_name"`
	Store     string `json:"store"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Link      string `json:"link"`
	Reason    string `json:"reason"`
	Rationale string `json:"rationale"`
}

func (p place) suggestion() ai.Suggestion {
	return ai.Suggestion{
		StoreName: strings.TrimSpace(firstNonEmpty(p.StoreName, p.Store, p.Name)),
		URL:       strings.TrimSpace(firstNonEmpty(p.URL, p.Link)),
		Reason:    strings.TrimSpace(firstNonEmpty(p.Reason, p.Rationale)),
	}
}

// advice is the wrapper structure for the model's JSON response.
type advice struct {
	Places      []place `json:"places"`
	Stores      []place `json:"stores"`
	Suggestions []place `json:"suggestions"`
}

var arrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// parseSuggestions extracts suggestions from a model reply. It accepts the
// requested {"places": [...]} object, a bare array, or an array embedded in
// surrounding prose. Entries without a store name are dropped.
func parseSuggestions(raw string) ([]ai.Suggestion, error) {
	text := repairJSON(raw)

	var places []place
	var wrapped advice
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil {
		places = firstNonEmptyList(wrapped.Places, wrapped.Stores, wrapped.Suggestions)
	}
	if len(places) == 0 {
		var bare []place
		if err := json.Unmarshal([]byte(text), &bare); err == nil {
			places = bare
		}
	}
	if len(places) == 0 {
		if m := arrayPattern.FindString(text); m != "" {
			var embedded []place
			if err := json.Unmarshal([]byte(m), &embedded); err == nil {
				places = embedded
			}
		}
	}

	suggestions := make([]ai.Suggestion, 0, len(places))
	for _, p := range places {
		s := p.suggestion()
		if s.StoreName == "" {
			continue
		}
		suggestions = append(suggestions, s)
	}
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w: no store names found", ai.ErrMalformedResponse)
	}
	return suggestions, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstNonEmptyList(lists ...[]place) []place {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}
