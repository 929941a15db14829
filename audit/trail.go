// Package audit writes the verification audit trail: one JSON line per
// stage transition, excluded listing, verification decision and final
// result. Trail implements cascade.Monitor.
package audit

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"github.com/poiesic/wheretobuy/cascade"
	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/match"
	"github.com/rs/zerolog"
)

// Config controls the rotating audit file.
type Config struct {
	Filename   string // Default: "logs/verification.log"
	MaxSizeMB  int    // Default: 50
	MaxBackups int    // Default: 5
	MaxAgeDays int    // Default: 30
	Compress   bool
}

// DefaultConfig returns the default audit file settings.
func DefaultConfig() Config {
	return Config{
		Filename:   filepath.Join("logs", "verification.log"),
		MaxSizeMB:  50,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
	}
}

// Trail records cascade activity. zerolog serializes each event into a
// single write, so a Trail can be shared by concurrent runs.
type Trail struct {
	logger zerolog.Logger
	closer io.Closer
}

var _ cascade.Monitor = (*Trail)(nil)

// New creates a trail writing JSON lines to w.
func New(w io.Writer) *Trail {
	return &Trail{
		logger: zerolog.New(w).With().Timestamp().Str("log", "verification").Logger(),
	}
}

// Open creates a trail writing to a size-rotated file.
func Open(cfg Config) (*Trail, error) {
	def := DefaultConfig()
	if cfg.Filename == "" {
		cfg.Filename = def.Filename
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = def.MaxSizeMB
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = def.MaxBackups
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = def.MaxAgeDays
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0o755); err != nil {
		return nil, err
	}

	file := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	t := New(file)
	t.closer = file
	return t, nil
}

// Close closes the underlying file, if any.
func (t *Trail) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}

func (t *Trail) Start(target core.Target) {
	t.logger.Info().
		Str("event", "start").
		Uint64("target_id", uint64(target.ID())).
		Str("product", target.Name).
		Str("producer", target.Producer).
		Str("varietal", target.Varietal).
		Str("vintage", target.Vintage).
		Bool("has_image", target.HasImage()).
		Str("query", target.Query()).
		Msg("search started")
}

func (t *Trail) StageStarted(target core.Target, stage cascade.Stage) {
	t.logger.Info().
		Str("event", "stage").
		Str("product", target.Name).
		Str("stage", stage.String()).
		Msg("stage started")
}

func (t *Trail) StageFailed(target core.Target, stage cascade.Stage, err error) {
	ev := t.logger.Warn().
		Str("event", "stage_failed").
		Str("product", target.Name).
		Str("stage", stage.String()).
		Err(err)
	if errors.Is(err, cascade.ErrBackendUnavailable) {
		ev = ev.Bool("backend_unavailable", true)
	}
	ev.Msg("stage failed")
}

func (t *Trail) CandidateExcluded(target core.Target, stage cascade.Stage, ex match.Exclusion) {
	t.logger.Info().
		Str("event", "excluded").
		Str("product", target.Name).
		Str("stage", stage.String()).
		Str("candidate", ex.Candidate.ProductName).
		Str("store", ex.Candidate.StoreName).
		Str("link", ex.Candidate.Link).
		Str("keyword", ex.Keyword).
		Str("reason", ex.Reason).
		Msg("candidate excluded")
}

func (t *Trail) CandidateEvaluated(target core.Target, stage cascade.Stage, vc core.VerifiedCandidate) {
	event := "rejected"
	switch {
	case vc.Tier == core.TierSuggested:
		event = "suggested"
	case vc.Tier.IsMatch():
		event = "accepted"
	}
	t.logger.Info().
		Str("event", event).
		Str("product", target.Name).
		Str("stage", stage.String()).
		Str("candidate", vc.ProductName).
		Str("store", vc.StoreName).
		Str("link", vc.Link).
		Str("tier", vc.Tier.String()).
		Float64("confidence", vc.Score).
		Str("provenance", string(vc.Provenance)).
		Str("reason", vc.Reason).
		Msg("candidate decision")
}

func (t *Trail) Finish(target core.Target, result core.PipelineResult) {
	places := zerolog.Arr()
	for _, vc := range result {
		places.Dict(zerolog.Dict().
			Str("store", vc.StoreName).
			Str("link", vc.Link).
			Str("tier", vc.Tier.String()).
			Float64("confidence", vc.Score))
	}
	t.logger.Info().
		Str("event", "result").
		Str("product", target.Name).
		Int("count", len(result)).
		Array("places", places).
		Msg("search finished")
}
