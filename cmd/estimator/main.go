package main

import (
	"os"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/cmd/estimator/commands"
)

// main is the entry point for the estimator CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/estimator [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
