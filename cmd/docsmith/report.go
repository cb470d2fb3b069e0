package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/docsmith/docsmith/internal/types"
)

// renderReport prints the per-element table and summary statistics for one
// processed source.
func renderReport(results []*types.DraftResult, skipped []string, style types.Style) {
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	for _, name := range skipped {
		fmt.Printf("  %s %s (existing docstring)\n", gray("⏭"), name)
	}
	if len(results) == 0 {
		fmt.Printf("%s\n", yellow("No docstrings generated"))
		return
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n", cyan("=== Docstring Generation Report ==="))
	fmt.Printf("%-30s %12s %10s %8s %8s\n", "Element", "Confidence", "Iterations", "Warnings", "Time(s)")

	var total float64
	for _, r := range results {
		total += r.Confidence
		fmt.Printf("%-30s %s %10d %8d %8.2f\n",
			r.ElementName,
			confidenceCell(r.Confidence),
			r.Iteration,
			len(r.Warnings),
			r.ProcessingTime)
	}

	fmt.Println()
	fmt.Printf("Summary:\n")
	fmt.Printf("  • Average Confidence: %.1f%%\n", total/float64(len(results))*100)
	fmt.Printf("  • Total Elements: %d\n", len(results))
	fmt.Printf("  • Style: %s\n", style)
}

// confidenceCell colors the confidence column: green at or above 80%,
// yellow at or above 60%, red below.
func confidenceCell(confidence float64) string {
	text := fmt.Sprintf("%11.1f%%", confidence*100)
	switch {
	case confidence >= 0.8:
		return color.New(color.FgGreen).Sprint(text)
	case confidence >= 0.6:
		return color.New(color.FgYellow).Sprint(text)
	default:
		return color.New(color.FgRed).Sprint(text)
	}
}
