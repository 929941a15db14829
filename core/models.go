package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Target describes the product being searched for.
// It is built once per search request and never modified by any stage.
type Target struct {
	Name     string
	Producer string
	Varietal string
	Vintage  string
	ImageURL string // Reference label image used by visual search
}

// Description joins the populated fields into the text that is scored
// against candidate names and handed to the fallback advisor.
func (t Target) Description() string {
	return joinFields(t.Name, t.Producer, t.Varietal, t.Vintage)
}

// Query returns the text search query for the target.
// It currently matches Description.
func (t Target) Query() string {
	return t.Description()
}

// HasImage reports whether a reference image is available for visual search.
func (t Target) HasImage() bool {
	return strings.TrimSpace(t.ImageURL) != ""
}

// ID returns a content-derived identifier for inline targets that have no catalog ID.
func (t Target) ID() ID {
	return IDFromContent(strings.ToLower(t.Description()))
}

func joinFields(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// Provenance identifies which backend produced a candidate.
type Provenance string

const (
	ProvenanceText     Provenance = "text_search"
	ProvenanceImage    Provenance = "image_search"
	ProvenanceFallback Provenance = "generative_fallback"
)

// Candidate is one raw listing returned by a search backend.
type Candidate struct {
	ProductName string
	StoreName   string
	Price       string   // Currency formatted, as reported by the backend
	Rating      *float64 // nil when the backend did not report one
	Link        string
	Thumbnail   string
	Provenance  Provenance
}

// Tier classifies match strength and provenance of a verified candidate.
type Tier int

const (
	TierRejected Tier = iota
	TierSuggested
	TierLikely
	TierVerified
)

// Priority orders tiers for ranking. Higher is better.
func (t Tier) Priority() int {
	switch t {
	case TierVerified:
		return 3
	case TierLikely:
		return 2
	case TierSuggested:
		return 1
	default:
		return 0
	}
}

// IsMatch reports whether the tier counts as a verified or likely match.
func (t Tier) IsMatch() bool {
	return t == TierVerified || t == TierLikely
}

func (t Tier) String() string {
	switch t {
	case TierVerified:
		return "Verified"
	case TierLikely:
		return "Likely"
	case TierSuggested:
		return "Suggested"
	case TierRejected:
		return "Rejected"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	tier, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = tier
	return nil
}

// ParseTier parses a tier name case-insensitively.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verified":
		return TierVerified, nil
	case "likely":
		return TierLikely, nil
	case "suggested":
		return TierSuggested, nil
	case "rejected":
		return TierRejected, nil
	}
	return TierRejected, fmt.Errorf("%w: %q", ErrInvalidTier, s)
}

// VerifiedCandidate is a Candidate together with its verification outcome.
type VerifiedCandidate struct {
	Candidate
	IsMatch bool
	Tier    Tier
	Score   float64 // 0-100 for lexical scoring, -1.0-1.0 for semantic
	Reason  string  // Which gate decided the outcome and the scores involved
}

// PipelineResult is the ranked, deduplicated set of purchase locations
// returned for one search.
type PipelineResult []VerifiedCandidate

// Empty reports whether no place survived the cascade.
func (r PipelineResult) Empty() bool {
	return len(r) == 0
}

// Placements converts the result into plain records keyed by product.
// Ranks start at 1.
func (r PipelineResult) Placements(productID ID, at time.Time) []Placement {
	places := make([]Placement, 0, len(r))
	for i, vc := range r {
		p := Placement{
			ProductID:   productID,
			Rank:        i + 1,
			StoreName:   vc.StoreName,
			URL:         vc.Link,
			ProductName: vc.ProductName,
			Price:       vc.Price,
			Thumbnail:   vc.Thumbnail,
			Tier:        vc.Tier,
			Score:       vc.Score,
			Reason:      vc.Reason,
			Provenance:  vc.Provenance,
			CreatedAt:   at,
		}
		if vc.Rating != nil {
			rating := *vc.Rating
			p.Rating = &rating
		}
		places = append(places, p)
	}
	return places
}

// Placement is the persisted form of one ranked place for a product.
type Placement struct {
	ProductID   ID
	Rank        int
	StoreName   string
	URL         string
	ProductName string
	Price       string
	Rating      *float64
	Thumbnail   string
	Tier        Tier
	Score       float64
	Reason      string
	Provenance  Provenance
	CreatedAt   time.Time
}

// Product is a catalog entry whose purchase locations are being looked up.
type Product struct {
	Id         ID
	Name       string
	Producer   string
	Varietal   string
	Vintage    string
	Category   string
	ImageURL   string
	Processed  bool      // Set once placements have been saved
	InsertedAt time.Time // When the product was added to the catalog
	UpdatedAt  time.Time // When the product was last updated
}

// IsWine reports whether varietal and vintage apply to the product.
// Products without a category are treated as wine.
func (p *Product) IsWine() bool {
	c := strings.TrimSpace(p.Category)
	return c == "" || strings.Contains(strings.ToLower(c), "wine")
}

// Target builds the search target for the product. Varietal and vintage
// only carry over for wine, and non-year vintages such as "NV" are dropped.
func (p *Product) Target() Target {
	t := Target{
		Name:     strings.TrimSpace(p.Name),
		Producer: strings.TrimSpace(p.Producer),
		ImageURL: strings.TrimSpace(p.ImageURL),
	}
	if p.IsWine() {
		t.Varietal = strings.TrimSpace(p.Varietal)
		if v := strings.TrimSpace(p.Vintage); IsYearLike(v) {
			t.Vintage = v
		}
	}
	return t
}
