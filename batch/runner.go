// Package batch runs product searches concurrently on a bounded worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/wheretobuy/cascade"
	"github.com/poiesic/wheretobuy/core"
)

// Locator runs and persists the search for one catalog product.
type Locator interface {
	LocateProduct(ctx context.Context, id core.ID) (*cascade.Result, error)
}

// Outcome classifies how one product finished.
type Outcome int

const (
	OutcomeFailed    Outcome = iota
	OutcomeMatched           // at least one Verified or Likely place
	OutcomeSuggested         // only generative suggestions
	OutcomeEmpty             // nothing found
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeSuggested:
		return "suggested"
	case OutcomeEmpty:
		return "empty"
	default:
		return "failed"
	}
}

// Failure records a product whose search or persistence failed.
type Failure struct {
	ID  core.ID
	Err error
}

// Summary totals a batch run.
type Summary struct {
	Total     int
	Processed int
	Matched   int
	Suggested int
	Empty     int
	Failed    int
	Failures  []Failure
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d/%d processed: %d matched, %d suggested only, %d empty, %d failed",
		s.Processed, s.Total, s.Matched, s.Suggested, s.Empty, s.Failed)
}

func (s *Summary) record(id core.ID, outcome Outcome, err error) {
	switch outcome {
	case OutcomeMatched:
		s.Processed++
		s.Matched++
	case OutcomeSuggested:
		s.Processed++
		s.Suggested++
	case OutcomeEmpty:
		s.Processed++
		s.Empty++
	default:
		s.Failed++
		s.Failures = append(s.Failures, Failure{ID: id, Err: err})
	}
}

// Runner runs LocateProduct for many products at once. Each invocation
// is independent; no candidate state is shared between products.
type Runner struct {
	locator        Locator
	poolSize       int
	progressWriter io.Writer
	reportInterval int
	logger         *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner) error

// WithPoolSize sets the number of concurrent searches.
// Default is runtime.NumCPU()/2, at least 1.
func WithPoolSize(size int) Option {
	return func(r *Runner) error {
		if size < 1 {
			return errors.New("pool size must be at least 1")
		}
		r.poolSize = size
		return nil
	}
}

// WithProgress writes a progress line to w every interval products.
func WithProgress(w io.Writer, interval int) Option {
	return func(r *Runner) error {
		r.progressWriter = w
		r.reportInterval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRunner creates a Runner.
func NewRunner(locator Locator, opts ...Option) (*Runner, error) {
	if locator == nil {
		return nil, errors.New("locator is required")
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	r := &Runner{
		locator:  locator,
		poolSize: poolSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "batch")
	return r, nil
}

// PoolSize returns the number of concurrent searches.
func (r *Runner) PoolSize() int {
	return r.poolSize
}

// Run searches every product and waits for all of them. Per-product
// failures are counted in the summary and do not stop the batch. When ctx
// is cancelled, products not yet started are skipped and ctx.Err() is
// returned with the partial summary.
func (r *Runner) Run(ctx context.Context, products []*core.Product) (*Summary, error) {
	summary := &Summary{Total: len(products)}
	if len(products) == 0 {
		return summary, nil
	}

	pool, err := ants.NewPool(r.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var progress *ProgressTracker
	if r.progressWriter != nil {
		progress = NewProgressTracker(r.progressWriter, len(products), r.reportInterval)
		progress.Start()
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	done := func(id core.ID, outcome Outcome, err error) {
		mu.Lock()
		summary.record(id, outcome, err)
		mu.Unlock()
		if progress != nil {
			progress.Increment(1)
		}
	}

	for _, p := range products {
		if ctx.Err() != nil {
			break
		}
		id := p.Id
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			outcome, err := r.locate(ctx, id)
			done(id, outcome, err)
		}); err != nil {
			wg.Done()
			r.logger.Error("failed to submit product", "product", id, "err", err)
			done(id, OutcomeFailed, err)
		}
	}
	wg.Wait()

	if progress != nil {
		progress.Finish()
	}
	r.logger.Info("batch finished",
		"total", summary.Total,
		"matched", summary.Matched,
		"suggested", summary.Suggested,
		"empty", summary.Empty,
		"failed", summary.Failed)

	return summary, ctx.Err()
}

func (r *Runner) locate(ctx context.Context, id core.ID) (Outcome, error) {
	result, err := r.locator.LocateProduct(ctx, id)
	if err != nil {
		r.logger.Warn("product search failed", "product", id, "err", err)
		return OutcomeFailed, err
	}
	return Classify(result.Places), nil
}

// Classify reports the outcome of a ranked result.
func Classify(places core.PipelineResult) Outcome {
	if places.Empty() {
		return OutcomeEmpty
	}
	for _, vc := range places {
		if vc.Tier.IsMatch() {
			return OutcomeMatched
		}
	}
	return OutcomeSuggested
}
