package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidemark/challenge-judge/internal/contracts"
	"github.com/tidemark/challenge-judge/internal/deadline"
	"github.com/tidemark/challenge-judge/internal/report"
	"github.com/tidemark/challenge-judge/internal/results"
	"github.com/tidemark/challenge-judge/pkg/config"
	"github.com/tidemark/challenge-judge/pkg/database"
	"github.com/tidemark/challenge-judge/pkg/logger"
	"github.com/tidemark/challenge-judge/pkg/redis"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Judge one deadline and print the leaderboard",
	Long: `Judges one contest deadline end to end.

This command:
- Resolves the deadline (most recent Wednesday 23:59 UTC by default)
- Collects submissions transferred to the judge in the prior 7 days
- Builds the benchmark series from exchange candles
- Decrypts, scores, deduplicates and ranks every submission
- Prints the leaderboard and stores it unless --no-store is set

Example:
  go run ./cmd/judge run
  go run ./cmd/judge run --deadline 2023-05-03_23:59
  go run ./cmd/judge run --no-store`,
	RunE: runJudging,
}

var (
	deadlineSpec string
	noStore      bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&deadlineSpec, "deadline", "",
		"deadline as YYYY-MM-DD_HH:MM in UTC (default: most recent Wednesday 23:59 UTC)")
	runCmd.Flags().BoolVar(&noStore, "no-store", false, "skip persisting the result")
}

func runJudging(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Resolve deadline
	dl, err := deadline.Resolve(deadlineSpec, time.Now)
	if err != nil {
		return fmt.Errorf("resolve deadline: %w", err)
	}

	log.WithField("deadline", dl).Info("Judging deadline resolved")

	// 4. Connect Redis (optional, no-op when disabled)
	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	// 5. Connect database unless the result is not kept
	var repo contracts.ResultRepository
	if !noStore && cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		r := results.NewRepository(db.Pool)
		if err := r.EnsureSchema(cmd.Context()); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		repo = r
	} else {
		log.Info("Persistence disabled for this run")
	}

	// 6. Wire and run the engine
	engine, err := initEngine(cfg, log, rdb, repo)
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	lb, err := engine.Run(ctx, dl)
	if err != nil {
		return fmt.Errorf("judging run: %w", err)
	}

	// 7. Print the leaderboard
	report.New(os.Stdout).Print(lb)

	return nil
}
