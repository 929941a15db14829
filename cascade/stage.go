package cascade

import "github.com/poiesic/wheretobuy/core"

// Stage is one step of the cascade.
type Stage int

const (
	StageTextSearch Stage = iota
	StageImageSearch
	StageFallback
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageTextSearch:
		return "TEXT_SEARCH"
	case StageImageSearch:
		return "IMAGE_SEARCH"
	case StageFallback:
		return "GENERATIVE_FALLBACK"
	case StageDone:
		return "DONE"
	}
	return "UNKNOWN"
}

func (s Stage) provenance() core.Provenance {
	switch s {
	case StageImageSearch:
		return core.ProvenanceImage
	case StageFallback:
		return core.ProvenanceFallback
	}
	return core.ProvenanceText
}
