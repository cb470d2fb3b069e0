package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docsmith/docsmith/internal/orchestrator"
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Generate docstrings for every Python file under a directory",
	Long: `Walk a directory tree and process every .py file. Files are rewritten in
place unless --dry-run is set. One file failing to parse is reported and
does not stop the rest of the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]
		styleName, _ := cmd.Flags().GetString("style")
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		style, err := resolveStyle(styleName)
		if err != nil {
			return err
		}

		client, err := newClient(cfg)
		if err != nil {
			return err
		}
		orch := newOrchestrator(client, cfg, style, overwrite)

		ctx := cmd.Context()
		processed, failed, err := batchRun(ctx, root, dryRun, orch.ProcessSource,
			func(path string, result *orchestrator.FileResult) {
				renderReport(result.Results, result.Skipped, style)
				recordHistory(ctx, cfg, path, style, result.Results)
			})

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(os.Stderr, "\n%s %d file(s) processed, %d failed\n", green("Done:"), processed, failed)
		return err
	},
}

// batchRun walks root and runs process over every .py file. A file that
// fails to read or process is reported and counted without stopping its
// siblings; onResult observes each successful file before it is written
// back. The returned error is the walk error, or a summary error when any
// file failed.
func batchRun(ctx context.Context, root string, dryRun bool, process func(ctx context.Context, source string) (*orchestrator.FileResult, error), onResult func(path string, result *orchestrator.FileResult)) (processed, failed int, err error) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(path, ".py") {
			return nil
		}

		fmt.Fprintf(os.Stderr, "%s %s\n", blue("📄 Processing:"), path)
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", red("✗"), path, readErr)
			return nil
		}

		result, procErr := process(ctx, string(data))
		if procErr != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", red("✗"), path, procErr)
			return nil
		}

		onResult(path, result)

		if !dryRun && result.Source != string(data) {
			if writeErr := os.WriteFile(path, []byte(result.Source), 0o644); writeErr != nil {
				failed++
				fmt.Fprintf(os.Stderr, "%s %s: %v\n", red("✗"), path, writeErr)
				return nil
			}
			fmt.Fprintf(os.Stderr, "%s Wrote %s\n", green("✓"), path)
		}
		processed++
		return nil
	})
	if walkErr != nil {
		return processed, failed, walkErr
	}
	if failed > 0 {
		return processed, failed, fmt.Errorf("%d file(s) failed", failed)
	}
	return processed, failed, nil
}

func init() {
	batchCmd.Flags().StringP("style", "s", "", "docstring style: google, numpy, or rst (default from config)")
	batchCmd.Flags().Bool("overwrite", false, "regenerate docstrings for elements that already have one")
	batchCmd.Flags().Bool("dry-run", false, "report without rewriting files")
	rootCmd.AddCommand(batchCmd)
}
