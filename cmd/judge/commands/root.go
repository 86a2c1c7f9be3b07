package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "judge",
	Short: "Challenge judging engine",
	Long: `Challenge judging engine

Judges a recurring price-prediction contest: collects submissions
transferred to the judge address, builds the ground-truth benchmark
from exchange candles, decrypts and scores each prediction series,
and publishes the ranked leaderboard.

Usage:
  go run ./cmd/judge [command]

Examples:
  go run ./cmd/judge run
  go run ./cmd/judge run --deadline 2023-05-03_23:59
  go run ./cmd/judge api
  go run ./cmd/judge scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
