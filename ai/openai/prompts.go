package openai

import "fmt"

const suggestionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "places": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "properties": {
          "store_name": {"type": "string"},
          "url": {"type": "string"},
          "reason": {"type": "string"}
        },
        "required": ["store_name", "url", "reason"],
        "additionalProperties": false
      }
    }
  },
  "required": ["places"],
  "additionalProperties": false
}`

const suggestionPromptTemplate = `You are a beverage and drinks expert. Suggest up to %d %s-based online or physical
stores where the product described by the user might be purchased.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Always return at least one store, even when you are unsure the product is stocked.
- Prefer specialist wine and spirits merchants and major %s retailers.
- "url" is the store's page for the product when known, otherwise the store's home page, otherwise "".
- "reason" is one short sentence explaining why the store is likely to stock the product.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Old Oak Reserve Acme Shiraz 2015"
Output:
{
  "places": [
    {"store_name":"Majestic Wine","url":"https://www.majestic.co.uk","reason":"Large range of Australian Shiraz."},
    {"store_name":"The Wine Society","url":"https://www.thewinesociety.com","reason":"Stocks back vintages from independent producers."}
  ]
}`

// buildSystemPrompt creates the system prompt for the configured market.
func buildSystemPrompt(maxSuggestions int, region string) string {
	return fmt.Sprintf(suggestionPromptTemplate,
		maxSuggestions,
		region,
		suggestionResponseSchema,
		region)
}
