package main

import (
	"os"

	"github.com/tidemark/challenge-judge/cmd/judge/commands"
)

// main is the entry point for the judge CLI: go run ./cmd/judge [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
