package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bernsteinjack-debug/shelfsnap/internal/backend"
	"github.com/bernsteinjack-debug/shelfsnap/internal/config"
	"github.com/bernsteinjack-debug/shelfsnap/internal/core/dedupe"
	"github.com/bernsteinjack-debug/shelfsnap/internal/core/model"
	"github.com/bernsteinjack-debug/shelfsnap/internal/core/normalize"
	"github.com/bernsteinjack-debug/shelfsnap/internal/core/rank"
)

// ErrEmptyImage is the only pipeline-level failure: individual backend
// failures are always recovered by advancing the chain.
var ErrEmptyImage = errors.New("empty input image")

// Pipeline drives the backend fallback chain and consolidates raw detections
// into ranked title results. Created once at startup; each Detect call builds
// all its state fresh, so concurrent invocations share nothing but the
// adapters.
type Pipeline struct {
	Backends      []backend.Adapter
	Clusterer     *dedupe.Clusterer
	Ranker        *rank.Ranker
	MinSufficient int

	BackendTimeout time.Duration
	OverallTimeout time.Duration

	logger *slog.Logger
}

func NewPipeline(backends []backend.Adapter, cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	clusterer := dedupe.NewClusterer()
	if cfg.Detection.MergeThreshold > 0 {
		clusterer.MergeThreshold = cfg.Detection.MergeThreshold
	}
	ranker := rank.NewRanker()
	if cfg.Detection.MaxResults > 0 {
		ranker.MaxResults = cfg.Detection.MaxResults
	}
	return &Pipeline{
		Backends:       backends,
		Clusterer:      clusterer,
		Ranker:         ranker,
		MinSufficient:  cfg.Detection.MinSufficient,
		BackendTimeout: cfg.BackendTimeout(),
		OverallTimeout: cfg.OverallTimeout(),
		logger:         logger.With("component", "pipeline"),
	}
}

// BackendNames returns the configured chain order, for diagnostics.
func (p *Pipeline) BackendNames() []string {
	names := make([]string, len(p.Backends))
	for i, b := range p.Backends {
		names[i] = b.Name()
	}
	return names
}

// Detect runs the fallback chain over one image. Backends are tried strictly
// in order, each under its own timeout, until one attempt yields at least
// MinSufficient validated, deduplicated candidates. Insufficient attempts
// still contribute their detections: everything collected so far is merged in
// one final clustering pass rather than discarded. The returned outcome list
// has one entry per attempted backend.
//
// An empty result list is a valid outcome and is never padded with synthetic
// titles. The only errors surfaced are a malformed input image and caller
// cancellation.
func (p *Pipeline) Detect(ctx context.Context, img backend.Image) ([]model.DetectionResult, []model.BackendOutcome, error) {
	if len(img.Bytes) == 0 {
		return nil, nil, ErrEmptyImage
	}

	if p.OverallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.OverallTimeout)
		defer cancel()
	}

	var (
		candidates []model.NormalizedCandidate
		outcomes   []model.BackendOutcome
	)

	for _, adapter := range p.Backends {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, outcomes, err
			}
			// Overall deadline hit: stop trying backends, keep what we have.
			p.logger.Warn("overall deadline reached, stopping fallback chain",
				"attempted", len(outcomes))
			break
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if p.BackendTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.BackendTimeout)
		}
		detections, err := adapter.Detect(attemptCtx, img)
		if cancel != nil {
			cancel()
		}

		if err != nil {
			if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
				return nil, outcomes, ctx.Err()
			}
			kind := backend.Kind(err)
			p.logger.Warn("backend attempt failed",
				"backend", adapter.Name(), "kind", kind, "error", err)
			outcomes = append(outcomes, model.BackendOutcome{
				BackendName: adapter.Name(),
				Success:     false,
				Error:       kind,
			})
			continue
		}

		outcomes = append(outcomes, model.BackendOutcome{
			BackendName: adapter.Name(),
			Success:     true,
			Detections:  detections,
		})

		attemptCandidates := p.prepare(detections)
		candidates = append(candidates, attemptCandidates...)

		attemptClusters := p.Clusterer.Cluster(attemptCandidates)
		p.logger.Info("backend attempt succeeded",
			"backend", adapter.Name(),
			"detections", len(detections),
			"candidates", len(attemptClusters))

		if len(attemptClusters) >= p.MinSufficient {
			break
		}
	}

	clusters := p.Clusterer.Cluster(candidates)
	results := p.Ranker.Rank(clusters)
	p.logger.Info("pipeline finished",
		"backends_attempted", len(outcomes),
		"clusters", len(clusters),
		"results", len(results))
	return results, outcomes, nil
}

// prepare normalizes and validates one attempt's raw detections, dropping
// anything that cannot be a title.
func (p *Pipeline) prepare(detections []model.RawDetection) []model.NormalizedCandidate {
	candidates := make([]model.NormalizedCandidate, 0, len(detections))
	for _, det := range detections {
		text := normalize.Normalize(det.Text)
		if text == "" || !normalize.IsPlausibleTitle(text) {
			continue
		}
		candidates = append(candidates, model.NormalizedCandidate{
			Original:       det,
			NormalizedText: text,
		})
	}
	return candidates
}
