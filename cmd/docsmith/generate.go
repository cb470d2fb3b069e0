package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docsmith/docsmith/internal/injector"
	"github.com/docsmith/docsmith/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Generate docstrings for one Python file",
	Long: `Analyze a Python file, generate a docstring for every function, method,
and constructor that needs one, and write the rewritten source.

By default the rewritten source goes to stdout; use --output to write a
file, or --in-place to overwrite the input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		styleName, _ := cmd.Flags().GetString("style")
		output, _ := cmd.Flags().GetString("output")
		inPlace, _ := cmd.Flags().GetBool("in-place")
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		showDiff, _ := cmd.Flags().GetBool("diff")

		style, err := resolveStyle(styleName)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		source := string(data)

		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		blue := color.New(color.FgBlue, color.Bold).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %s\n", blue("📄 Processing:"), path)

		ctx := cmd.Context()
		result, err := newOrchestrator(client, cfg, style, overwrite).ProcessSource(ctx, source)
		if err != nil {
			return fmt.Errorf("processing %s: %w", path, err)
		}

		renderReport(result.Results, result.Skipped, style)
		recordHistory(ctx, cfg, path, style, result.Results)

		if showDiff {
			fmt.Print(injector.Diff(source, result.Source))
			return nil
		}
		return writeResult(path, output, inPlace, result.Source)
	},
}

func resolveStyle(styleName string) (types.Style, error) {
	if styleName == "" {
		styleName = cfg.Style
	}
	return types.ParseStyle(styleName)
}

func writeResult(inputPath, output string, inPlace bool, source string) error {
	switch {
	case inPlace:
		output = inputPath
	case output == "":
		fmt.Print(source)
		return nil
	}
	if err := os.WriteFile(output, []byte(source), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s Wrote %s\n", green("✓"), output)
	return nil
}

func init() {
	generateCmd.Flags().StringP("style", "s", "", "docstring style: google, numpy, or rst (default from config)")
	generateCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	generateCmd.Flags().Bool("in-place", false, "rewrite the input file")
	generateCmd.Flags().Bool("overwrite", false, "regenerate docstrings for elements that already have one")
	generateCmd.Flags().Bool("diff", false, "print a diff preview instead of the rewritten source")
	rootCmd.AddCommand(generateCmd)
}
