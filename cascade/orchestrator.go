package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/wheretobuy/ai"
	"github.com/poiesic/wheretobuy/backend"
	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/match"
	"github.com/poiesic/wheretobuy/rank"
	"github.com/poiesic/wheretobuy/verify"
)

// Orchestrator runs the cascade. It keeps no per-run state and can be
// shared by concurrent callers.
type Orchestrator struct {
	text    backend.TextSearcher
	image   backend.ImageSearcher
	advisor ai.Advisor
	filter  *match.KeywordFilter
	policy  *verify.Policy
	config  Config
	monitor Monitor
	retry   Retry
	logger  *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithImageSearcher enables the IMAGE_SEARCH stage.
func WithImageSearcher(image backend.ImageSearcher) Option {
	return func(o *Orchestrator) error {
		o.image = image
		return nil
	}
}

// WithAdvisor sets the generative fallback backend. Without one the
// fallback stage always yields the generic retailer suggestion.
func WithAdvisor(advisor ai.Advisor) Option {
	return func(o *Orchestrator) error {
		o.advisor = advisor
		return nil
	}
}

// WithKeywordFilter replaces the default negative keyword filter.
func WithKeywordFilter(filter *match.KeywordFilter) Option {
	return func(o *Orchestrator) error {
		if filter == nil {
			return errors.New("keyword filter cannot be nil")
		}
		o.filter = filter
		return nil
	}
}

// WithConfig sets the cascade policy.
func WithConfig(cfg *Config) Option {
	return func(o *Orchestrator) error {
		if cfg == nil {
			return errors.New("config cannot be nil")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		o.config = *cfg
		return nil
	}
}

// WithMonitor sets a monitor to observe runs.
func WithMonitor(monitor Monitor) Option {
	return func(o *Orchestrator) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		o.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates an orchestrator over a text backend and a
// verification policy. Image search and the advisor are optional.
func NewOrchestrator(text backend.TextSearcher, policy *verify.Policy, opts ...Option) (*Orchestrator, error) {
	if text == nil {
		return nil, ErrTextSearcherRequired
	}
	if policy == nil {
		return nil, ErrPolicyRequired
	}

	o := &Orchestrator{
		text:    text,
		policy:  policy,
		filter:  match.NewKeywordFilter(),
		config:  *DefaultConfig(),
		monitor: &noopMonitor{},
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.logger = o.logger.With("component", "cascade")
	o.retry = Retry{
		Attempts: o.config.RetryAttempts,
		Delay:    o.config.RetryDelay,
		Logger:   o.logger,
	}

	return o, nil
}

// Config returns the active cascade policy.
func (o *Orchestrator) Config() Config {
	return o.config
}

// StageFailure records a stage whose backend could not be used.
type StageFailure struct {
	Stage Stage
	Err   error
}

// Result is the outcome of one cascade run.
type Result struct {
	Target core.Target

	// Places is the ranked result returned to the caller.
	Places core.PipelineResult

	// Stages lists the stages that ran, in order, ending with StageDone.
	Stages []Stage

	// Evaluated holds every verification outcome and fallback suggestion,
	// rejected ones included, in the order they were produced.
	Evaluated []core.VerifiedCandidate

	// Excluded holds candidates removed by the negative keyword filter.
	Excluded []match.Exclusion

	Failures []StageFailure
}

// Ran reports whether the stage was executed.
func (r *Result) Ran(stage Stage) bool {
	for _, s := range r.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// Matches counts Verified and Likely outcomes across all stages.
func (r *Result) Matches() int {
	n := 0
	for _, vc := range r.Evaluated {
		if vc.Tier.IsMatch() {
			n++
		}
	}
	return n
}

// Run executes the cascade for target. The only error returned is
// core.ErrInvalidTarget; backend failures degrade stage by stage and the
// fallback guarantees a non-empty result while it is enabled.
func (o *Orchestrator) Run(ctx context.Context, target core.Target) (*Result, error) {
	if err := core.ValidateTarget(&target); err != nil {
		return nil, err
	}

	res := &Result{Target: target}
	o.monitor.Start(target)
	logger := o.logger.With("target", target.Description())

	matches := o.searchStage(ctx, StageTextSearch, "SearchText", target, res, func(ctx context.Context) ([]core.Candidate, error) {
		return o.text.SearchText(ctx, target.Query())
	})

	if o.needsImage(target, matches) {
		matches += o.searchStage(ctx, StageImageSearch, "SearchImage", target, res, func(ctx context.Context) ([]core.Candidate, error) {
			return o.image.SearchImage(ctx, target.ImageURL)
		})
	}

	if matches == 0 && o.config.FallbackEnabled {
		o.fallbackStage(ctx, target, res)
	}

	res.Stages = append(res.Stages, StageDone)
	res.Places = rank.Aggregate(res.Evaluated,
		rank.WithLimit(o.config.MaxResults),
		rank.WithReservedLikely(o.config.RequireLikely))

	logger.Info("cascade complete",
		"stages", len(res.Stages)-1,
		"matches", matches,
		"places", len(res.Places),
		"failures", len(res.Failures))
	o.monitor.Finish(target, res.Places)

	return res, nil
}

func (o *Orchestrator) needsImage(target core.Target, matches int) bool {
	if o.image == nil || !target.HasImage() {
		return false
	}
	if matches == 0 {
		return true
	}
	return o.config.ImageWhenInsufficient && matches < o.config.MinMatches
}

// searchStage fetches, filters and verifies one backend's candidates and
// returns the number of Verified or Likely outcomes.
func (o *Orchestrator) searchStage(ctx context.Context, stage Stage, call string, target core.Target, res *Result,
	search func(context.Context) ([]core.Candidate, error)) int {
	res.Stages = append(res.Stages, stage)
	o.monitor.StageStarted(target, stage)

	var found []core.Candidate
	err := o.retry.Do(ctx, stage, call, func() error {
		var err error
		found, err = search(ctx)
		return err
	})
	if err != nil {
		o.stageFailed(target, stage, res, err)
		return 0
	}

	for i := range found {
		if found[i].Provenance == "" {
			found[i].Provenance = stage.provenance()
		}
	}

	kept, excluded := o.filter.Filter(found)
	kept, unlisted := splitUnlisted(kept)
	excluded = append(excluded, unlisted...)
	for _, ex := range excluded {
		o.monitor.CandidateExcluded(target, stage, ex)
	}
	res.Excluded = append(res.Excluded, excluded...)

	var outcomes []core.VerifiedCandidate
	err = o.retry.Do(ctx, stage, "Score", func() error {
		var err error
		outcomes, err = o.policy.Evaluate(ctx, target, kept)
		return err
	})
	if err != nil {
		o.stageFailed(target, stage, res, err)
		return 0
	}

	matches := 0
	for _, vc := range outcomes {
		o.monitor.CandidateEvaluated(target, stage, vc)
		if vc.Tier.IsMatch() {
			matches++
		}
	}
	res.Evaluated = append(res.Evaluated, outcomes...)

	o.logger.Debug("stage complete",
		"stage", stage.String(),
		"found", len(found),
		"excluded", len(excluded),
		"matches", matches)
	return matches
}

// splitUnlisted drops candidates without a store name. They cannot be
// persisted as placements and tell the caller nothing about where to buy.
func splitUnlisted(candidates []core.Candidate) ([]core.Candidate, []match.Exclusion) {
	kept := candidates[:0]
	var dropped []match.Exclusion
	for _, c := range candidates {
		if strings.TrimSpace(c.StoreName) == "" {
			dropped = append(dropped, match.Exclusion{Candidate: c, Reason: "missing store name"})
			continue
		}
		kept = append(kept, c)
	}
	return kept, dropped
}

// fallbackStage adds advisor suggestions, or the generic suggestion when
// the advisor is missing, fails or suggests nothing.
func (o *Orchestrator) fallbackStage(ctx context.Context, target core.Target, res *Result) {
	stage := StageFallback
	res.Stages = append(res.Stages, stage)
	o.monitor.StageStarted(target, stage)

	var suggestions []ai.Suggestion
	var err error
	if o.advisor == nil {
		err = errors.New("no advisor configured")
	} else {
		err = o.retry.Do(ctx, stage, "SuggestRetailers", func() error {
			s, err := o.advisor.SuggestRetailers(ctx, target.Description())
			if errors.Is(err, ai.ErrMalformedResponse) {
				// the advisor already re-asked
				return Permanent(err)
			}
			suggestions = s
			return err
		})
	}
	if err != nil {
		o.stageFailed(target, stage, res, err)
	}

	added := 0
	for _, s := range suggestions {
		if strings.TrimSpace(s.StoreName) == "" {
			continue
		}
		o.addSuggestion(target, res, suggested(target, s))
		added++
	}
	if added == 0 {
		o.logger.Warn("using generic retailer suggestion", "retailer", o.config.GenericRetailer)
		o.addSuggestion(target, res, o.genericSuggestion(target))
	}
}

func (o *Orchestrator) addSuggestion(target core.Target, res *Result, vc core.VerifiedCandidate) {
	o.monitor.CandidateEvaluated(target, StageFallback, vc)
	res.Evaluated = append(res.Evaluated, vc)
}

func (o *Orchestrator) stageFailed(target core.Target, stage Stage, res *Result, err error) {
	err = fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, stage, err)
	o.logger.Warn("stage unavailable", "stage", stage.String(), "err", err)
	o.monitor.StageFailed(target, stage, err)
	res.Failures = append(res.Failures, StageFailure{Stage: stage, Err: err})
}

func suggested(target core.Target, s ai.Suggestion) core.VerifiedCandidate {
	reason := strings.TrimSpace(s.Reason)
	if reason == "" {
		reason = "suggested by generative fallback"
	}
	return core.VerifiedCandidate{
		Candidate: core.Candidate{
			ProductName: target.Name,
			StoreName:   strings.TrimSpace(s.StoreName),
			Link:        strings.TrimSpace(s.URL),
			Provenance:  core.ProvenanceFallback,
		},
		Tier:   core.TierSuggested,
		Reason: core.TierSuggested.String() + ": " + reason,
	}
}

func (o *Orchestrator) genericSuggestion(target core.Target) core.VerifiedCandidate {
	return suggested(target, ai.Suggestion{
		StoreName: o.config.GenericRetailer,
		Reason:    "Suggested fallback store for " + target.Name,
	})
}
