package openai

import (
	"testing"

	"github.com/poiesic/wheretobuy/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantStore []string
		wantURL   string
	}{
		{
			name:      "places object",
			raw:       `{"places":[{"store_name":"Majestic Wine","url":"https://www.majestic.co.uk","reason":"Big range"}]}`,
			wantStore: []string{"Majestic Wine"},
			wantURL:   "https://www.majestic.co.uk",
		},
		{
			name:      "bare array",
			raw:       `[{"store_name":"Waitrose Cellar","url":"","reason":"Stocks it"},{"store_name":"Tesco","url":"","reason":"Wide reach"}]`,
			wantStore: []string{"Waitrose Cellar", "Tesco"},
		},
		{
			name:      "fenced reply",
			raw:       "```json\n{\"places\":[{\"store_name\":\"Laithwaites\",\"url\":\"https://www.laithwaites.co.uk\",\"reason\":\"Mail order\"}]}\n```",
			wantStore: []string{"Laithwaites"},
			wantURL:   "https://www.laithwaites.co.uk",
		},
		{
			name:      "array inside prose",
			raw:       "Sure! Here are some options:\n[{\"store_name\":\"The Whisky Exchange\",\"url\":\"\",\"reason\":\"Specialist\"}]\nEnjoy.",
			wantStore: []string{"The Whisky Exchange"},
		},
		{
			name:      "alias keys",
			raw:       `{"stores":[{"store":"Oddbins","link":"https://www.oddbins.com","rationale":"High street"}]}`,
			wantStore: []string{"Oddbins"},
			wantURL:   "https://www.oddbins.com",
		},
		{
			name:      "missing opening quote on key",
			raw:       `{"places":[{store_name":"Majestic Wine","url":"","reason":"Big range"}]}`,
			wantStore: []string{"Majestic Wine"},
		},
		{
			name:      "unquoted keys and trailing comma",
			raw:       `{places: [{store_name: "Oddbins", url: "https://www.oddbins.com", reason: "High street",},]}`,
			wantStore: []string{"Oddbins"},
			wantURL:   "https://www.oddbins.com",
		},
		{
			name:      "typographic quotes",
			raw:       "{\u201cplaces\u201d:[{\u201cstore_name\u201d:\u201cTesco\u201d}]}",
			wantStore: []string{"Tesco"},
		},
		{
			name:      "fence with language tag mid reply",
			raw:       "Here you go:\n```JSON\n[{\"store_name\":\"Majestic Wine\"}]\n```",
			wantStore: []string{"Majestic Wine"},
		},
		{
			name:      "entries without store dropped",
			raw:       `{"places":[{"store_name":"","url":"x","reason":"y"},{"store_name":"Tesco","url":"","reason":""}]}`,
			wantStore: []string{"Tesco"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSuggestions(tt.raw)
			require.NoError(t, err)
			require.Len(t, got, len(tt.wantStore))
			for i, store := range tt.wantStore {
				assert.Equal(t, store, got[i].StoreName)
			}
			assert.Equal(t, tt.wantURL, got[0].URL)
		})
	}
}

func TestParseSuggestions_Malformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"I cannot help with that.",
		`{"places":[]}`,
		`[{"url":"https://example.com"}]`,
		`{"places": [ {"store_name": "Tesco"`,
	} {
		_, err := parseSuggestions(raw)
		assert.ErrorIs(t, err, ai.ErrMalformedResponse, "input %q", raw)
	}
}

func TestRepairJSON(t *testing.T) {
	valid := `{"places":[{"store_name":"Tesco","reason":"Open late, stock: high"}]}`
	assert.Equal(t, valid, repairJSON("```json\n"+valid+"\n```"), "valid JSON is only unfenced")
	assert.Equal(t, `[{"store_name":"Tesco"}]`, repairJSON(`[{"store_name":"Tesco",}]`))
	assert.Equal(t, `{"store":"Tesco"}`, repairJSON(`{store":"Tesco"}`))
}

func TestScrubString(t *testing.T) {
	assert.Equal(t, "Château d'Yquem 2001", scrubString("  Château  d'Yquem {2001} "))
	assert.Equal(t, "Old Oak", scrubString("\"Old\tOak\""))
}
