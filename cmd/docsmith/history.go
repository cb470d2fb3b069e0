package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docsmith/docsmith/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded generation runs",
	Long: `Without arguments, list recent runs. With a run ID, show the final draft
recorded for each element of that run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		if len(args) == 1 {
			return showRun(ctx, store, args[0])
		}
		return listRuns(ctx, store, limit)
	},
}

func listRuns(ctx context.Context, store *history.Store, limit int) error {
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet")
		return nil
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("%s\n", cyan("=== Generation History ==="))
	fmt.Printf("%-36s %-20s %-8s %9s %11s  %s\n", "Run", "When", "Style", "Elements", "Confidence", "Source")
	for _, r := range runs {
		fmt.Printf("%-36s %-20s %-8s %9d %10.1f%%  %s\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Style,
			r.Elements,
			r.AvgConfidence*100,
			r.SourcePath)
	}
	return nil
}

func showRun(ctx context.Context, store *history.Store, runID string) error {
	drafts, err := store.RunDrafts(ctx, runID)
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		return fmt.Errorf("no drafts recorded for run %s", runID)
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	for _, d := range drafts {
		fmt.Printf("%s (confidence %.1f%%, iteration %d)\n", yellow(d.ElementName), d.Confidence*100, d.Iteration)
		fmt.Println(d.Docstring)
		for _, w := range d.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		fmt.Println()
	}
	return nil
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum runs to list")
	rootCmd.AddCommand(historyCmd)
}
