package cascade

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/poiesic/wheretobuy/ai"
	aimock "github.com/poiesic/wheretobuy/ai/mock"
	"github.com/poiesic/wheretobuy/backend/mock"
	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/match"
	"github.com/poiesic/wheretobuy/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMonitor captures monitor callbacks.
type recordingMonitor struct {
	mu        sync.Mutex
	started   []Stage
	failed    []Stage
	excluded  []match.Exclusion
	evaluated []core.VerifiedCandidate
	finished  core.PipelineResult
	finishes  int
}

func (m *recordingMonitor) Start(core.Target) {}

func (m *recordingMonitor) StageStarted(_ core.Target, s Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, s)
}

func (m *recordingMonitor) StageFailed(_ core.Target, s Stage, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, s)
}

func (m *recordingMonitor) CandidateExcluded(_ core.Target, _ Stage, ex match.Exclusion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.excluded = append(m.excluded, ex)
}

func (m *recordingMonitor) CandidateEvaluated(_ core.Target, _ Stage, vc core.VerifiedCandidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluated = append(m.evaluated, vc)
}

func (m *recordingMonitor) Finish(_ core.Target, r core.PipelineResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = r
	m.finishes++
}

type fixture struct {
	searcher *mock.Searcher
	advisor  *aimock.MockAdvisor
	monitor  *recordingMonitor
	orch     *Orchestrator
}

func newFixture(t *testing.T, text, image []core.Candidate, cfgOpts ...ConfigOption) *fixture {
	t.Helper()

	f := &fixture{
		searcher: mock.NewSearcher(text, image),
		advisor:  aimock.NewMockAdvisor(),
		monitor:  &recordingMonitor{},
	}

	policy, err := verify.NewPolicy(match.NewLexicalScorer())
	require.NoError(t, err)

	opts := append([]ConfigOption{WithRetry(2, 0)}, cfgOpts...)
	f.orch, err = NewOrchestrator(f.searcher, policy,
		WithImageSearcher(f.searcher),
		WithAdvisor(f.advisor),
		WithMonitor(f.monitor),
		WithConfig(NewConfig(opts...)),
	)
	require.NoError(t, err)
	return f
}

func listing(name, store, link string) core.Candidate {
	return core.Candidate{ProductName: name, StoreName: store, Link: link}
}

var oldOak = core.Target{Name: "Old Oak Reserve", Producer: "Acme"}

func TestRun_VerifiedTextMatch(t *testing.T) {
	f := newFixture(t, []core.Candidate{
		listing("Old Oak Reserve by Acme", "Acme Direct", "https://acme.example/oor"),
	}, nil)

	res, err := f.orch.Run(context.Background(), oldOak)
	require.NoError(t, err)

	require.Len(t, res.Places, 1)
	assert.Equal(t, core.TierVerified, res.Places[0].Tier)
	assert.Equal(t, "Acme Direct", res.Places[0].StoreName)
	assert.Equal(t, core.ProvenanceText, res.Places[0].Provenance)
	assert.Equal(t, []Stage{StageTextSearch, StageDone}, res.Stages)
	assert.Equal(t, []string{"Old Oak Reserve Acme"}, f.searcher.TextCalls())
}

func TestRun_ShortCircuitsAfterTextMatch(t *testing.T) {
	f := newFixture(t,
		[]core.Candidate{listing("Old Oak Reserve by Acme", "Acme Direct", "https://acme.example/oor")},
		[]core.Candidate{listing("Old Oak Reserve Acme", "Waitrose", "https://w.example/oor")},
	)
	target := oldOak
	target.ImageURL = "https://img.example/oor.jpg"

	res, err := f.orch.Run(context.Background(), target)
	require.NoError(t, err)

	assert.Empty(t, f.searcher.ImageCalls())
	assert.Equal(t, 0, f.advisor.CallCount())
	assert.False(t, res.Ran(StageImageSearch))
	assert.False(t, res.Ran(StageFallback))
}

func TestRun_VintageMismatchFallsBack(t *testing.T) {
	f := newFixture(t, []core.Candidate{
		listing("Old Oak Reserve 2015", "Acme Direct", "https://acme.example/oor"),
	}, nil)
	target := core.Target{Name: "Old Oak Reserve", Vintage: "2010"}

	res, err := f.orch.Run(context.Background(), target)
	require.NoError(t, err)

	require.Len(t, res.Evaluated, 2)
	assert.Equal(t, core.TierRejected, res.Evaluated[0].Tier)
	assert.Contains(t, res.Evaluated[0].Reason, "vintage 2010")

	require.Len(t, res.Places, 1)
	assert.Equal(t, core.TierSuggested, res.Places[0].Tier)
	assert.Equal(t, "Mock Wine Merchant", res.Places[0].StoreName)
}

func TestRun_NoCandidatesAdvisorFails(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.advisor.SuggestRetailersFunc = func(context.Context, string) ([]ai.Suggestion, error) {
		return nil, errors.New("connection reset")
	}

	res, err := f.orch.Run(context.Background(), oldOak)
	require.NoError(t, err)

	require.Len(t, res.Places, 1)
	place := res.Places[0]
	assert.Equal(t, core.TierSuggested, place.Tier)
	assert.Equal(t, DefaultGenericRetailer, place.StoreName)
	assert.Equal(t, "Old Oak Reserve", place.ProductName)
	assert.Equal(t, "Suggested: Suggested fallback store for Old Oak Reserve", place.Reason)
	assert.Equal(t, core.ProvenanceFallback, place.Provenance)

	assert.Equal(t, 2, f.advisor.CallCount())
	require.Len(t, res.Failures, 1)
	assert.ErrorIs(t, res.Failures[0].Err, ErrBackendUnavailable)
	assert.Equal(t, []Stage{StageFallback}, f.monitor.failed)
}

func TestRun_MalformedAdvisorReplyNotRetried(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.advisor.SuggestRetailersFunc = func(context.Context, string) ([]ai.Suggestion, error) {
		return nil, ai.ErrMalformedResponse
	}

	res, err := f.orch.Run(context.Background(), oldOak)
	require.NoError(t, err)

	assert.Equal(t, 1, f.advisor.CallCount())
	require.Len(t, res.Places, 1)
	assert.Equal(t, DefaultGenericRetailer, res.Places[0].StoreName)
	require.Len(t, res.Failures, 1)
	assert.ErrorIs(t, res.Failures[0].Err, ai.ErrMalformedResponse)
}

func TestRun_AdvisorSuggestionsRanked(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.advisor.SuggestRetailersFunc = func(context.Context, string) ([]ai.Suggestion, error) {
		return []ai.Suggestion{
			{StoreName: "Majestic", URL: "https://majestic.example", Reason: "Large range"},
			{StoreName: " ", Reason: "blank store is ignored"},
			{StoreName: "Majestic", URL: "https://majestic.example", Reason: "duplicate"},
			{StoreName: "The Wine Society", Reason: ""},
		}, nil
	}

	res, err := f.orch.Run(context.Background(), oldOak)
	require.NoError(t, err)

	require.Len(t, res.Places, 2)
	assert.Equal(t, "Majestic", res.Places[0].StoreName)
	assert.Equal(t, "Suggested: Large range", res.Places[0].Reason)
	assert.Equal(t, "The Wine Society", res.Places[1].StoreName)
	assert.Equal(t, "Suggested: suggested by generative fallback", res.Places[1].Reason)
	assert.Empty(t, res.Failures)
}

func TestRun_ImageStageWhenTextEmpty(t *testing.T) {
	f := newFixture(t, nil, []core.Candidate{
		listing("Old Oak Reserve Acme", "Waitrose", "https://w.example/oor"),
	})
	target := oldOak
	target.ImageURL = "https://img.example/oor.jpg"

	res, err := f.orch.Run(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://img.example/oor.jpg"}, f.searcher.ImageCalls())
	assert.Equal(t, 0, f.advisor.CallCount())
	require.Len(t, res.Places, 1)
	assert.Equal(t, core.ProvenanceImage, res.Places[0].Provenance)
	assert.Equal(t, []Stage{StageTextSearch, StageImageSearch, StageDone}, res.Stages)
}

func TestRun_NoImageSkipsImageStage(t *testing.T) {
	f := newFixture(t, nil, []core.Candidate{
		listing("Old Oak Reserve Acme", "Waitrose", "https://w.example/oor"),
	})

	res, err := f.orch.Run(context.Background(), oldOak)
	require.NoError(t, err)

	assert.Empty(t, f.searcher.ImageCalls())
	assert.True(t, res.Ran(StageFallback))
}

func TestRun_ImageWhenInsufficient(t *testing.T) {
	text := []core.Candidate{listing("Old Oak Reserve by Acme", "Acme Direct", "https://acme.example/oor")}
	image := []core.Candidate{listing("Old Oak Reserve Acme", "Waitrose", "https://w.example/oor")}
	target := oldOak
	target.ImageURL = "https://img.example/oor.jpg"

	f := newFixture(t, text, image)
	_, err := f.orch.Run(context.Background(), target)
	require.NoError(t, err)
	assert.Empty(t, f.searcher.ImageCalls(), "one match is enough by default")

	f = newFixture(t, text, image, WithImageWhenInsufficient(true, 2))
	res, err := f.orch.Run(context.Background(), target)
	require.NoError(t, err)
	assert.Len(t, f.searcher.ImageCalls(), 1)
	assert.Len(t, res.Places, 2)
	assert.Equal(t, 0, f.advisor.CallCount())
}

func TestRun_TextBackendFailure(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.searcher.SearchTextFunc = func(context.Context, string) ([]core.Candidate, error) {
		return nil, errors.New("quota exceeded")
	}

	res, err := f.orch.Run(context.Background(), oldOak)
	require.NoError(t, err)

	assert.Len(t, f.searcher.TextCalls(), 2)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, StageTextSearch, res.Failures[0].Stage)
	assert.ErrorIs(t, res.Failures[0].Err, ErrBackendUnavailable)
	require.Len(t, res.Places, 1)
	assert.Equal(t, core.TierSuggested, res.Places[0].Tier)
}

func TestRun_EmbedderFailureDegradesStage(t *testing.T) {
	embedder := aimock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("embedding service unavailable")
	}
	scorer, err := match.NewSemanticScorer(embedder)
	require.NoError(t, err)
	policy, err := verify.NewPolicy(scorer)
	require.NoError(t, err)

	searcher := mock.NewSearcher([]core.Candidate{
		listing("Old Oak Reserve by Acme", "Acme Direct", "https://acme.example/oor"),
	}, nil)
	advisor := aimock.NewMockAdvisor()
	orch, err := NewOrchestrator(searcher, policy,
		WithAdvisor(advisor),
		WithConfig(NewConfig(WithRetry(2, 0))),
	)
	require.NoError(t, err)

	res, err := orch.Run(context.Background(), oldOak)
	require.NoError(t, err)

	assert.Equal(t, 2, embedder.CallCount(), "one batched call per attempt")
	require.Len(t, res.Failures, 1)
	assert.Equal(t, StageTextSearch, res.Failures[0].Stage)
	assert.ErrorIs(t, res.Failures[0].Err, ErrBackendUnavailable)
	assert.Equal(t, []Stage{StageTextSearch, StageFallback, StageDone}, res.Stages)
	assert.Equal(t, 1, advisor.CallCount())

	require.NotEmpty(t, res.Places)
	for _, vc := range res.Evaluated {
		assert.Equal(t, core.ProvenanceFallback, vc.Provenance, "no text candidate survives a failed scoring")
	}
	for _, vc := range res.Places {
		assert.Equal(t, core.TierSuggested, vc.Tier)
	}
}

func TestRun_RequireLikelyKeepsSlot(t *testing.T) {
	text := []core.Candidate{
		listing("Old Oak Reserve Acme Shiraz", "Acme Direct", "https://acme.example/oor"),
		listing("Acme Old Oak Reserve Shiraz", "Majestic", "https://majestic.example/oor"),
		listing("Old Oak Reserve Shiraz by Acme", "Waitrose", "https://waitrose.example/oor"),
		listing("Old Oak Reserve Acme", "Tesco", "https://tesco.example/oor"),
	}
	target := core.Target{Name: "Old Oak Reserve", Producer: "Acme", Varietal: "Shiraz"}

	stores := func(places core.PipelineResult) []string {
		out := make([]string, len(places))
		for i, vc := range places {
			out[i] = vc.StoreName
		}
		return out
	}

	f := newFixture(t, text, nil)
	res, err := f.orch.Run(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Matches())
	assert.Equal(t, []string{"Acme Direct", "Majestic", "Waitrose"}, stores(res.Places))

	f = newFixture(t, text, nil, WithRequireLikely(true))
	res, err = f.orch.Run(context.Background(), target)
	require.NoError(t, err)
	require.Len(t, res.Places, 3)
	assert.Equal(t, []string{"Acme Direct", "Majestic", "Tesco"}, stores(res.Places))
	assert.Equal(t, core.TierLikely, res.Places[2].Tier)
	assert.Contains(t, res.Places[2].Reason, "varietal")
}

func TestRun_UnlistedStoreExcluded(t *testing.T) {
	f := newFixture(t, []core.Candidate{
		listing("Old Oak Reserve by Acme", "  ", "https://shop.example/oor"),
		listing("Old Oak Reserve by Acme", "Acme Direct", "https://acme.example/oor"),
	}, nil)

	res, err := f.orch.Run(context.Background(), oldOak)
	require.NoError(t, err)

	require.Len(t, res.Excluded, 1)
	assert.Equal(t, "missing store name", res.Excluded[0].Reason)
	assert.Len(t, f.monitor.excluded, 1)
	require.Len(t, res.Places, 1)
	assert.Equal(t, "Acme Direct", res.Places[0].StoreName)
}

func TestRun_NegativeKeywordsExcluded(t *testing.T) {
	f := newFixture(t, []core.Candidate{
		listing("Old Oak Reserve Acme empty bottle", "eBay", "https://ebay.example/1"),
		listing("Old Oak Reserve by Acme", "Acme Direct", "https://acme.example/oor"),
	}, nil)

	res, err := f.orch.Run(context.Background(), oldOak)
	require.NoError(t, err)

	require.Len(t, res.Excluded, 1)
	assert.Equal(t, "empty", res.Excluded[0].Keyword)
	assert.Len(t, f.monitor.excluded, 1)
	require.Len(t, res.Places, 1)
	assert.Equal(t, "Acme Direct", res.Places[0].StoreName)
}

func TestRun_FallbackDisabled(t *testing.T) {
	f := newFixture(t, nil, nil, WithFallback(false))

	res, err := f.orch.Run(context.Background(), oldOak)
	require.NoError(t, err)

	assert.True(t, res.Places.Empty())
	assert.Equal(t, 0, f.advisor.CallCount())
}

func TestRun_InvalidTarget(t *testing.T) {
	f := newFixture(t, nil, nil)

	_, err := f.orch.Run(context.Background(), core.Target{Producer: "Acme"})
	assert.ErrorIs(t, err, core.ErrInvalidTarget)
	assert.Empty(t, f.searcher.TextCalls())
	assert.Equal(t, 0, f.advisor.CallCount())
	assert.Equal(t, 0, f.monitor.finishes)
}

func TestRun_MonitorSeesEveryOutcome(t *testing.T) {
	f := newFixture(t, []core.Candidate{
		listing("Old Oak Reserve by Acme", "Acme Direct", "https://acme.example/oor"),
		listing("Completely Different Gin", "Gin Hut", "https://gin.example"),
	}, nil)

	res, err := f.orch.Run(context.Background(), oldOak)
	require.NoError(t, err)

	assert.Equal(t, []Stage{StageTextSearch}, f.monitor.started)
	assert.Len(t, f.monitor.evaluated, 2)
	assert.Equal(t, 1, f.monitor.finishes)
	assert.Equal(t, res.Places, f.monitor.finished)
	assert.Equal(t, 1, res.Matches())
}

func TestNewOrchestrator_Validation(t *testing.T) {
	policy, err := verify.NewPolicy(match.NewLexicalScorer())
	require.NoError(t, err)

	_, err = NewOrchestrator(nil, policy)
	assert.ErrorIs(t, err, ErrTextSearcherRequired)

	_, err = NewOrchestrator(mock.NewSearcher(nil, nil), nil)
	assert.ErrorIs(t, err, ErrPolicyRequired)

	_, err = NewOrchestrator(mock.NewSearcher(nil, nil), policy, WithConfig(NewConfig(WithMaxResults(0))))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
