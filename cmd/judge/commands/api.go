package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidemark/challenge-judge/internal/api"
	"github.com/tidemark/challenge-judge/internal/api/handlers"
	"github.com/tidemark/challenge-judge/internal/results"
	"github.com/tidemark/challenge-judge/pkg/config"
	"github.com/tidemark/challenge-judge/pkg/database"
	"github.com/tidemark/challenge-judge/pkg/logger"
	"github.com/tidemark/challenge-judge/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the leaderboard API server",
	Long: `Starts the REST API server serving stored judging results.

Endpoints:
  GET  /health                     - Health check
  GET  /api/leaderboard/latest     - Most recent leaderboard
  GET  /api/leaderboard?deadline=  - Leaderboard for a deadline (YYYY-MM-DD_HH:MM)

Example:
  go run ./cmd/judge api
  go run ./cmd/judge api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default: PORT env)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := results.NewRepository(db.Pool)
	if err := repo.EnsureSchema(cmd.Context()); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	// 4. Connect Redis for response caching (optional)
	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	cache := redis.NewCache(rdb, "judge")

	// 5. Create handler, router and server
	lbHandler := handlers.NewLeaderboardHandler(repo, cache, log)
	router := api.NewRouter(lbHandler, log)
	server := api.New(cfg, log, router)

	// 6. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
