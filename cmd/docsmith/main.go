// docsmith generates Python docstrings with an iterative generate, critique,
// and confidence-score loop, splicing accepted drafts back into the source.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docsmith/docsmith/internal/config"
)

var (
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "docsmith",
	Short: "AI docstring generation with iterative refinement",
	Long: `docsmith analyzes Python source, extracts structural facts about every
function, method, and constructor, and drives a generate -> critique ->
confidence-score loop per element until a quality threshold is met. Accepted
docstrings are spliced back into the source without touching anything else.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
