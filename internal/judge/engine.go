// Package judge orchestrates one judging run: benchmark construction
// and submission collection in parallel, per-submission decoding and
// scoring, deduplication, ranking and optional persistence.
package judge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tidemark/challenge-judge/internal/benchmark"
	"github.com/tidemark/challenge-judge/internal/contracts"
	"github.com/tidemark/challenge-judge/internal/dedupe"
	"github.com/tidemark/challenge-judge/internal/prediction"
	"github.com/tidemark/challenge-judge/internal/ranking"
	"github.com/tidemark/challenge-judge/internal/scoring"
	"github.com/tidemark/challenge-judge/internal/submissions"
	"github.com/tidemark/challenge-judge/pkg/logger"
)

// defaultScoringWorkers bounds the per-submission decode/score fan-out.
const defaultScoringWorkers = 8

// Engine runs judging rounds. Each Run is independent; an Engine may be
// reused across rounds.
type Engine struct {
	builder   *benchmark.Builder
	collector *submissions.Collector
	decoder   *prediction.Decoder
	repo      contracts.ResultRepository // optional
	logger    *logger.Logger
	workers   int
}

// New creates a judging engine. repo may be nil to skip persistence.
func New(
	builder *benchmark.Builder,
	collector *submissions.Collector,
	decoder *prediction.Decoder,
	repo contracts.ResultRepository,
	log *logger.Logger,
) *Engine {
	return &Engine{
		builder:   builder,
		collector: collector,
		decoder:   decoder,
		repo:      repo,
		logger:    log,
		workers:   defaultScoringWorkers,
	}
}

// WithWorkers overrides the scoring concurrency.
func (e *Engine) WithWorkers(n int) *Engine {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Run judges one resolved deadline and returns the leaderboard.
func (e *Engine) Run(ctx context.Context, deadline time.Time) (*contracts.Leaderboard, error) {
	e.logger.WithField("deadline", deadline).Info("Judging run started")

	// The benchmark fetch and the event fetch have no data dependency.
	var (
		bench contracts.BenchmarkSeries
		subs  []contracts.Submission
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bench, err = e.builder.Build(gctx, deadline)
		return err
	})
	g.Go(func() error {
		var err error
		subs, err = e.collector.Collect(gctx, deadline)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("judging run aborted: %w", err)
	}

	scores := e.scoreAll(ctx, bench, subs)

	// For contestants with multiple entries, keep only the youngest.
	dedupe.Apply(subs, scores)

	scored := make([]contracts.ScoredSubmission, len(subs))
	for i, sub := range subs {
		scored[i] = contracts.ScoredSubmission{
			Contestant: sub.Contestant,
			AssetID:    sub.AssetID,
			Score:      scores[i],
		}
	}

	lb := &contracts.Leaderboard{
		RunID:    uuid.NewString(),
		Deadline: deadline,
		JudgedAt: time.Now().UTC(),
		Entries:  ranking.Rank(scored),
	}

	if e.repo != nil {
		if err := e.repo.SaveRun(ctx, lb); err != nil {
			return nil, fmt.Errorf("failed to persist judging run: %w", err)
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"run_id":  lb.RunID,
		"entries": len(lb.Entries),
	}).Info("Judging run completed")

	return lb, nil
}

// scoreAll decodes and scores every submission. Submissions are
// independent of each other; only the read-only benchmark is shared.
// Decode failures are recovered locally as empty series, so this never
// fails the run.
func (e *Engine) scoreAll(ctx context.Context, bench contracts.BenchmarkSeries, subs []contracts.Submission) []float64 {
	scores := make([]float64, len(subs))

	g := new(errgroup.Group)
	g.SetLimit(e.workers)
	for i := range subs {
		i := i
		g.Go(func() error {
			predicted := e.decoder.Decode(ctx, subs[i])
			scores[i] = scoring.Score(bench, predicted)

			e.logger.WithFields(map[string]interface{}{
				"contestant": subs[i].Contestant,
				"asset_id":   subs[i].AssetID,
				"score":      scores[i],
			}).Debug("Submission scored")
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return scores
}
