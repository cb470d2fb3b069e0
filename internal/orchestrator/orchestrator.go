// Package orchestrator drives the per-element refinement loop and the
// per-file pipeline: analyze, refine each documentable element, splice the
// accepted drafts back into the source.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docsmith/docsmith/internal/analyzer"
	"github.com/docsmith/docsmith/internal/injector"
	"github.com/docsmith/docsmith/internal/types"
)

// Generator drafts a docstring for one element. It never fails; fallback
// reports that the deterministic template was used.
type Generator interface {
	Generate(ctx context.Context, elem *types.CodeElement, style types.Style, prior *types.PriorAttempt) (docstring string, fallback bool)
}

// Critic reviews a draft against the code it documents. It never fails; a
// broken reviewer yields the neutral review.
type Critic interface {
	Review(ctx context.Context, code, docstring string) types.Review
}

// Scorer computes the confidence gate for one iteration.
type Scorer interface {
	Calculate(elem *types.CodeElement, draft string, review types.Review) float64
}

// Options configures a refinement run.
type Options struct {
	Style            types.Style
	MaxIterations    int     // default 3
	QualityThreshold float64 // default 0.8
	Overwrite        bool    // regenerate elements that already have a docstring
	Concurrency      int     // elements refined in parallel; default 1 (sequential)
}

const (
	defaultMaxIterations    = 3
	defaultQualityThreshold = 0.8

	// priorSuggestions caps how many critic suggestions feed the next
	// generation attempt.
	priorSuggestions = 3
)

func (o Options) withDefaults() Options {
	if !o.Style.IsValid() {
		o.Style = types.StyleGoogle
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
	if o.QualityThreshold <= 0 {
		o.QualityThreshold = defaultQualityThreshold
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	return o
}

// FileResult is the outcome of processing one source text.
type FileResult struct {
	Source  string               // rewritten source
	Results []*types.DraftResult // one per refined element, in traversal order
	Skipped []string             // qualified names left alone (existing docstring, overwrite off)
}

// Orchestrator runs the refinement pipeline.
type Orchestrator struct {
	analyzer  *analyzer.Analyzer
	generator Generator
	critic    Critic
	scorer    Scorer
	opts      Options
}

// New builds an Orchestrator. A nil analyzer gets the default inference
// strategy; zero option fields take their defaults.
func New(a *analyzer.Analyzer, g Generator, c Critic, s Scorer, opts Options) *Orchestrator {
	if a == nil {
		a = analyzer.New(nil)
	}
	return &Orchestrator{
		analyzer:  a,
		generator: g,
		critic:    c,
		scorer:    s,
		opts:      opts.withDefaults(),
	}
}

// ProcessSource runs the full pipeline on one source text: extract elements,
// refine each one that needs a docstring, inject the accepted drafts. A
// parse failure is fatal for the source; generation and review failures are
// absorbed by the fallback and neutral-review paths, so the only mid-run
// failure left is context cancellation, which aborts without producing a
// rewrite.
func (o *Orchestrator) ProcessSource(ctx context.Context, source string) (*FileResult, error) {
	analysis, err := o.analyzer.AnalyzeSource(source)
	if err != nil {
		return nil, err
	}

	out := &FileResult{Source: source}
	var work []*types.CodeElement
	for _, elem := range analysis.Elements {
		if elem.HasDocstring() && !o.opts.Overwrite {
			out.Skipped = append(out.Skipped, elem.QualifiedName)
			continue
		}
		work = append(work, elem)
	}
	if len(work) == 0 {
		return out, nil
	}

	results := make([]*types.DraftResult, len(work))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Concurrency)
	for i, elem := range work {
		g.Go(func() error {
			r, err := o.refineElement(gctx, elem)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.Results = results

	docs := make(map[string]string, len(results))
	for _, r := range results {
		docs[r.ElementName] = r.Docstring
	}
	rewritten, err := injector.Inject(source, analysis.Points, docs)
	if err != nil {
		return nil, fmt.Errorf("injecting docstrings: %w", err)
	}
	out.Source = rewritten
	return out, nil
}

// refineElement runs generate, review, score for one element until the
// confidence gate passes or the iteration bound is hit. The returned result
// is the threshold-meeting iteration, or else the best-confidence iteration
// seen (ties go to the earliest).
func (o *Orchestrator) refineElement(ctx context.Context, elem *types.CodeElement) (*types.DraftResult, error) {
	start := time.Now()
	var prior *types.PriorAttempt
	var best *types.DraftResult

	for i := 1; i <= o.opts.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slog.Debug("refinement iteration", "element", elem.QualifiedName, "iteration", i)

		draft, fallback := o.generator.Generate(ctx, elem, o.opts.Style, prior)
		review := o.critic.Review(ctx, elem.Source, draft)
		confidence := o.scorer.Calculate(elem, draft, review)

		result := &types.DraftResult{
			ElementName:    elem.QualifiedName,
			Docstring:      draft,
			Confidence:     confidence,
			Style:          o.opts.Style,
			Reasoning:      iterationReasoning(review.Score, fallback),
			Warnings:       review.Issues,
			ProcessingTime: time.Since(start).Seconds(),
			Iteration:      i,
		}
		if best != nil {
			result.ImprovedFrom = best.Docstring
		}

		if best == nil || confidence > best.Confidence {
			best = result
		}
		if confidence >= o.opts.QualityThreshold {
			slog.Debug("quality threshold met",
				"element", elem.QualifiedName, "confidence", confidence, "iteration", i)
			return result, nil
		}

		prior = &types.PriorAttempt{
			Docstring:   draft,
			Suggestions: topSuggestions(review.Suggestions),
		}
	}
	return best, nil
}

func iterationReasoning(criticScore float64, fallback bool) string {
	if fallback {
		return fmt.Sprintf("template fallback with critic review (score: %.2f)", criticScore)
	}
	return fmt.Sprintf("generated with critic review (score: %.2f)", criticScore)
}

func topSuggestions(suggestions []string) []string {
	if len(suggestions) > priorSuggestions {
		return suggestions[:priorSuggestions]
	}
	return suggestions
}
