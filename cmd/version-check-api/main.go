// Package main is the entry point for the version check API server.
package main

import (
	"os"

	"github.com/relicta-dev/version-check-api/cmd/version-check-api/app"
	"github.com/relicta-dev/version-check-api/pkg/logger"
)

func main() {
	logger.Initialize(os.Getenv("DEBUG") == "1")
	defer logger.Sync()

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
