package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidemark/challenge-judge/internal/results"
	"github.com/tidemark/challenge-judge/internal/scheduler"
	"github.com/tidemark/challenge-judge/internal/scheduler/jobs"
	"github.com/tidemark/challenge-judge/pkg/config"
	"github.com/tidemark/challenge-judge/pkg/database"
	"github.com/tidemark/challenge-judge/pkg/logger"
	"github.com/tidemark/challenge-judge/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the judging scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
- weekly_judging: Thursday 01:30 UTC, judges the Wednesday 23:59 UTC deadline

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run a job immediately
  status  - show job execution history

Example:
  go run ./cmd/judge scheduler start
  go run ./cmd/judge scheduler run weekly_judging`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show job execution history",
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	fmt.Println("Scheduler started. Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, cleanup, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// RunJob starts the job in the background; block until interrupted
	// so the process does not exit under it.
	fmt.Printf("Job %s started. Press Ctrl+C to stop\n", jobName)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Job history:")
	fmt.Println()

	for _, jobName := range sched.GetAllJobs() {
		history, err := sched.GetJobHistory(jobName)
		if err != nil {
			return fmt.Errorf("job history: %w", err)
		}

		fmt.Printf("%s\n", jobName)
		fmt.Printf("   Total Runs: %d\n", len(history.Results))
		fmt.Printf("   Success Rate: %.1f%%\n", history.GetSuccessRate()*100)

		for _, result := range history.GetLatestResults(10) {
			status := "ok"
			if !result.Success {
				status = "FAILED: " + result.Error
			}
			fmt.Printf("   %s  %-8s  %s\n",
				result.StartTime.Format("2006-01-02 15:04:05"),
				result.Duration.Round(time.Millisecond),
				status)
		}

		fmt.Println()
	}

	return nil
}

// initScheduler wires the scheduler and its jobs. The returned cleanup
// closes the database and Redis connections.
func initScheduler(cmd *cobra.Command) (*scheduler.Scheduler, func(), error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	repo := results.NewRepository(db.Pool)
	if err := repo.EnsureSchema(cmd.Context()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	// 4. Connect Redis (optional)
	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	cleanup := func() {
		rdb.Close()
		db.Close()
	}

	// 5. Wire the engine
	engine, err := initEngine(cfg, log, rdb, repo)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init engine: %w", err)
	}

	// 6. Create scheduler and register jobs
	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewJudgingJob(engine, log)); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("register judging job: %w", err)
	}

	return sched, cleanup, nil
}
