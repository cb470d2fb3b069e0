package main

import (
	"context"
	"fmt"
	"os"

	"github.com/docsmith/docsmith/internal/ai"
	"github.com/docsmith/docsmith/internal/config"
	"github.com/docsmith/docsmith/internal/critic"
	"github.com/docsmith/docsmith/internal/generator"
	"github.com/docsmith/docsmith/internal/history"
	"github.com/docsmith/docsmith/internal/orchestrator"
	"github.com/docsmith/docsmith/internal/scorer"
	"github.com/docsmith/docsmith/internal/types"
)

// newClient builds the shared model client from the loaded configuration.
func newClient(cfg config.Config) (*ai.Client, error) {
	retry := ai.DefaultRetryConfig()
	retry.Timeout = cfg.Timeout()
	retry.RequestsPerSecond = cfg.RequestsPerSecond
	retry.MaxConcurrentCalls = cfg.MaxConcurrentCalls

	return ai.NewClient(ai.Config{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
		Retry:  retry,
	})
}

// newOrchestrator wires generator, critic, and scorer around client.
func newOrchestrator(client *ai.Client, cfg config.Config, style types.Style, overwrite bool) *orchestrator.Orchestrator {
	return orchestrator.New(
		nil,
		generator.New(client),
		critic.New(client),
		scorer.Scorer{},
		orchestrator.Options{
			Style:            style,
			MaxIterations:    cfg.MaxIterations,
			QualityThreshold: cfg.QualityThreshold,
			Overwrite:        overwrite,
			Concurrency:      cfg.Concurrency,
		},
	)
}

// recordHistory persists a completed run. History failures are reported but
// never fail the command that produced the result.
func recordHistory(ctx context.Context, cfg config.Config, sourcePath string, style types.Style, results []*types.DraftResult) {
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history unavailable: %v\n", err)
		return
	}
	defer store.Close()

	if _, err := store.RecordRun(ctx, sourcePath, style, results); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording run history: %v\n", err)
	}
}
