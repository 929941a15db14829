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
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/wheretobuy/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxParseAttempts bounds how often the model is re-asked after a reply
// that could not be parsed.
const maxParseAttempts = 3

// Advisor implements ai.Advisor using OpenAI-compatible chat APIs.
type Advisor struct {
	client         llms.Model
	maxSuggestions int
	region         string
	logger         *slog.Logger
}

// newAdvisor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newAdvisor(config *ai.Config) (*Advisor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.AdvisorHost),
		openai.WithToken(config.Token()),
		openai.WithModel(config.AdvisorModel),
	)
	if err != nil {
		return nil, err
	}

	return newAdvisorWithModel(client, config), nil
}

func newAdvisorWithModel(client llms.Model, config *ai.Config) *Advisor {
	return &Advisor{
		client:         client,
		maxSuggestions: config.MaxSuggestions,
		region:         config.Region,
		logger:         slog.Default().With("component", "openai-advisor"),
	}
}

// NewAdvisor creates a new retailer advisor using the provided configuration.
//
// Returns ai.Advisor interface to enforce abstraction.
func NewAdvisor(config *ai.Config) (ai.Advisor, error) {
	return newAdvisor(config)
}

// SuggestRetailers asks the model for retailers likely to stock the product.
// Transport errors are returned as-is. Replies that cannot be parsed are
// retried and then reported as ai.ErrMalformedResponse.
func (a *Advisor) SuggestRetailers(ctx context.Context, description string) ([]ai.Suggestion, error) {
	description = scrubString(description)

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt(a.maxSuggestions, a.region)),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(description),
			},
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := a.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			a.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			lastErr = fmt.Errorf("%w: no choices returned", ai.ErrMalformedResponse)
			a.logger.Warn("no choices returned from model", "attempt", attempt+1)
			continue
		}

		suggestions, err := parseSuggestions(response.Choices[0].Content)
		if err != nil {
			lastErr = err
			a.logger.Warn("error parsing advisor response",
				"attempt", attempt+1,
				"response", response.Choices[0].Content,
				"err", err)
			continue
		}

		if len(suggestions) > a.maxSuggestions {
			suggestions = suggestions[:a.maxSuggestions]
		}
		a.logger.Debug("advisor suggested retailers", "count", len(suggestions))
		return suggestions, nil
	}

	a.logger.Error("failed to parse advisor response after retries", "err", lastErr)
	return nil, lastErr
}
