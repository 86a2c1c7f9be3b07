// Package jobs contains the judge's scheduled jobs.
package jobs

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tidemark/challenge-judge/internal/deadline"
	"github.com/tidemark/challenge-judge/internal/judge"
	"github.com/tidemark/challenge-judge/internal/report"
	"github.com/tidemark/challenge-judge/pkg/logger"
)

// JudgingJob judges the most recent deadline once a week.
// The benchmark window closes 61 minutes after the Wednesday 23:59 UTC
// deadline, so Thursday 01:30 UTC leaves the exchange time to settle
// its last candle.
type JudgingJob struct {
	engine *judge.Engine
	logger *logger.Logger
}

// NewJudgingJob creates a new judging job.
func NewJudgingJob(engine *judge.Engine, log *logger.Logger) *JudgingJob {
	return &JudgingJob{
		engine: engine,
		logger: log,
	}
}

// Name returns the job name.
func (j *JudgingJob) Name() string {
	return "weekly_judging"
}

// Schedule returns the cron schedule (Thursday 01:30 UTC, with seconds).
func (j *JudgingJob) Schedule() string {
	return "0 30 1 * * THU"
}

// Run judges the most recent deadline and prints the leaderboard.
func (j *JudgingJob) Run(ctx context.Context) error {
	dl, err := deadline.Resolve("", time.Now)
	if err != nil {
		return fmt.Errorf("failed to resolve deadline: %w", err)
	}

	j.logger.WithField("deadline", dl).Info("Starting scheduled judging run")

	lb, err := j.engine.Run(ctx, dl)
	if err != nil {
		return fmt.Errorf("judging run failed: %w", err)
	}

	report.New(os.Stdout).Print(lb)
	return nil
}
