// Package serpapi implements backend.TextSearcher and backend.ImageSearcher
// over the SerpAPI Google Shopping and Google Lens engines.
package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/wheretobuy/backend"
	"github.com/poiesic/wheretobuy/core"
)

// DefaultBaseURL is the SerpAPI search endpoint.
const DefaultBaseURL = "https://serpapi.com/search.json"

// ErrAPIKeyRequired is returned when no API key is configured.
var ErrAPIKeyRequired = errors.New("serpapi: API key is required")

// ErrAPI wraps non-success replies from SerpAPI.
var ErrAPI = errors.New("serpapi: request failed")

// Config holds SerpAPI client configuration.
type Config struct {
	APIKey   string
	BaseURL  string        // Default: DefaultBaseURL
	Language string        // hl parameter. Default: "en"
	Country  string        // gl for shopping, country for lens. Default: "uk"
	Timeout  time.Duration // Default: 30s
}

// Client queries SerpAPI. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	language   string
	country    string
	logger     *slog.Logger
}

var (
	_ backend.TextSearcher  = (*Client)(nil)
	_ backend.ImageSearcher = (*Client)(nil)
)

// NewClient creates a new SerpAPI client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Country == "" {
		cfg.Country = "uk"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		language:   cfg.Language,
		country:    strings.ToLower(cfg.Country),
		logger:     slog.Default().With("component", "serpapi"),
	}, nil
}

// shoppingResponse is the subset of a google_shopping reply that is used.
type shoppingResponse struct {
	ShoppingResults []shoppingResult `json:"shopping_results"`
	Error           string           `json:"error"`
}

type shoppingResult struct {
	Title       string          `json:"title"`
	Source      string          `json:"source"`
	Price       string          `json:"price"`
	Rating      json.RawMessage `json:"rating"`
	Link        string          `json:"link"`
	ProductLink string          `json:"product_link"`
	Thumbnail   string          `json:"thumbnail"`
}

// lensResponse is the subset of a google_lens reply that is used.
type lensResponse struct {
	VisualMatches []lensMatch `json:"visual_matches"`
	Error         string      `json:"error"`
}

type lensMatch struct {
	Title     string          `json:"title"`
	Source    string          `json:"source"`
	Link      string          `json:"link"`
	Thumbnail string          `json:"thumbnail"`
	Price     json.RawMessage `json:"price"`
}

// SearchText queries Google Shopping for the product.
func (c *Client) SearchText(ctx context.Context, query string) ([]core.Candidate, error) {
	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", query)
	params.Set("hl", c.language)
	params.Set("gl", c.country)

	var resp shoppingResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}

	candidates := make([]core.Candidate, 0, len(resp.ShoppingResults))
	for _, r := range resp.ShoppingResults {
		link := r.Link
		if link == "" {
			link = r.ProductLink
		}
		candidates = append(candidates, core.Candidate{
			ProductName: strings.TrimSpace(r.Title),
			StoreName:   strings.TrimSpace(r.Source),
			Price:       strings.TrimSpace(r.Price),
			Rating:      parseRating(r.Rating),
			Link:        link,
			Thumbnail:   r.Thumbnail,
			Provenance:  core.ProvenanceText,
		})
	}
	c.logger.Debug("shopping search complete", "query", query, "results", len(candidates))
	return candidates, nil
}

// SearchImage queries Google Lens product matches for the image.
func (c *Client) SearchImage(ctx context.Context, imageURL string) ([]core.Candidate, error) {
	params := url.Values{}
	params.Set("engine", "google_lens")
	params.Set("url", imageURL)
	params.Set("hl", c.language)
	params.Set("country", lensCountry(c.country))
	params.Set("type", "products")

	var resp lensResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}

	candidates := make([]core.Candidate, 0, len(resp.VisualMatches))
	for _, m := range resp.VisualMatches {
		candidates = append(candidates, core.Candidate{
			ProductName: strings.TrimSpace(m.Title),
			StoreName:   strings.TrimSpace(m.Source),
			Price:       parsePrice(m.Price),
			Link:        m.Link,
			Thumbnail:   m.Thumbnail,
			Provenance:  core.ProvenanceImage,
		})
	}
	c.logger.Debug("lens search complete", "results", len(candidates))
	return candidates, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%w: status %d: %s", ErrAPI, resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("%w: status %d", ErrAPI, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// lensCountry maps the shopping gl code to the Lens country code.
func lensCountry(gl string) string {
	if gl == "uk" {
		return "gb"
	}
	return gl
}

// parseRating accepts a JSON number or numeric string.
func parseRating(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f
		}
	}
	return nil
}

// parsePrice accepts a plain string or Lens's {"value": "..."} object.
func parsePrice(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Value)
	}
	return ""
}
