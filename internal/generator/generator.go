// Package generator produces docstring drafts: a model-backed path with
// structured suggestion parsing and a deterministic template fallback that
// always succeeds.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docsmith/docsmith/internal/ai"
	"github.com/docsmith/docsmith/internal/types"
)

// TextCompleter is the model dependency; *ai.Client satisfies it.
type TextCompleter interface {
	Complete(ctx context.Context, operation, prompt string, maxTokens, maxRetries int) (string, error)
}

// Suggestion is the structured draft the model is asked to return.
type Suggestion struct {
	Summary            string   `json:"summary"`
	Description        string   `json:"description"`
	ArgsDescription    []string `json:"args_description"`
	ReturnsDescription string   `json:"returns_description"`
	RaisesDescription  []string `json:"raises_description"`
	SideEffects        []string `json:"side_effects"`
	Example            string   `json:"example,omitempty"`
}

// generateRetries bounds retries for the generation call. The review call
// gets none; its failure mode is the neutral review, not a retry.
const generateRetries = 1

// Generator drafts docstrings for extracted elements.
type Generator struct {
	completer TextCompleter
}

// New creates a Generator backed by completer.
func New(completer TextCompleter) *Generator {
	return &Generator{completer: completer}
}

// Generate drafts a docstring for elem in the given style. prior carries the
// previous draft and critic suggestions when refining; nil on the first
// iteration. Generate never fails: when the model call or the response parse
// fails it falls back to the deterministic template and reports fallback=true.
func (g *Generator) Generate(ctx context.Context, elem *types.CodeElement, style types.Style, prior *types.PriorAttempt) (docstring string, fallback bool) {
	prompt := buildPrompt(elem, style, prior)

	response, err := g.completer.Complete(ctx, "generate", prompt, 0, generateRetries)
	if err != nil {
		slog.Warn("generation call failed, using template fallback",
			"element", elem.QualifiedName, "error", err)
		return fallbackDocstring(elem), true
	}

	parsed := ai.Parse[Suggestion](response, "generate "+elem.QualifiedName)
	if !parsed.Success || strings.TrimSpace(parsed.Data.Summary) == "" {
		slog.Warn("generation response unusable, using template fallback",
			"element", elem.QualifiedName, "error", parsed.Error)
		return fallbackDocstring(elem), true
	}

	return formatDocstring(parsed.Data, elem, style), false
}

func buildPrompt(elem *types.CodeElement, style types.Style, prior *types.PriorAttempt) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are an expert Python documentation generator.
Generate clear, accurate, and comprehensive docstrings.
Focus on understanding the code's intent, not just syntax.
Follow the specified docstring style exactly.

Generate a docstring for this %s: %s

Code:
`+"```"+`
%s
`+"```"+`

Context:
- Parameters: %s
- Return type: %s
- Exceptions: %s
- Existing docstring: %s
- Complexity: %d

Style: %s
`,
		elem.Kind, elem.Name,
		elem.Source,
		promptParams(elem.Params),
		promptReturn(elem.Returns),
		promptRaises(elem.Raises),
		promptExisting(elem.Docstring),
		elem.Complexity,
		style)

	if prior != nil {
		fmt.Fprintf(&b, `
Previous attempt:
%s

Reviewer suggestions to address:
%s
`, prior.Docstring, strings.Join(prior.Suggestions, "\n"))
	}

	b.WriteString(`
Respond with a single JSON object with these fields:
- "summary": one-line summary of what the code does
- "description": detailed description of the behavior
- "args_description": array with one description per argument, in order
- "returns_description": description of the return value
- "raises_description": array with one description per raised exception
- "side_effects": array of side effects, empty if none
- "example": optional example usage

Ensure the docstring is:
1. Accurate - matches actual behavior
2. Clear - easy to understand
3. Complete - covers parameters, returns, raises
4. Concise - no unnecessary information
`)

	return b.String()
}

func promptParams(params []types.Param) string {
	if len(params) == 0 {
		return "None"
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, fmt.Sprintf("%s (%s)", p.Name, p.TypeLabel()))
	}
	return strings.Join(parts, ", ")
}

func promptReturn(r *types.ReturnInfo) string {
	if !r.HasValue() {
		return "None"
	}
	if r.Inferred != "" {
		return r.Inferred
	}
	return r.Annotation
}

func promptRaises(raises []types.RaiseInfo) string {
	if len(raises) == 0 {
		return "None"
	}
	parts := make([]string, 0, len(raises))
	for _, r := range raises {
		parts = append(parts, r.Type)
	}
	return strings.Join(parts, ", ")
}

func promptExisting(docstring string) string {
	if docstring == "" {
		return "None"
	}
	return docstring
}

// fallbackDocstring is the rule-based template used when the model path
// fails. Always google-shaped regardless of the requested style.
func fallbackDocstring(elem *types.CodeElement) string {
	lines := []string{fmt.Sprintf(`"""%s %s.`, elem.Name, elem.Kind)}

	if len(elem.Params) > 0 {
		lines = append(lines, "", "Args:")
		for _, p := range elem.Params {
			lines = append(lines, fmt.Sprintf("    %s: Description missing", p.Name))
		}
	}

	if elem.Returns.HasValue() {
		lines = append(lines, "", "Returns:")
		lines = append(lines, fmt.Sprintf("    %s: Description missing", returnLabel(elem.Returns)))
	}

	lines = append(lines, `"""`)
	return strings.Join(lines, "\n")
}

func returnLabel(r *types.ReturnInfo) string {
	if r.Inferred != "" {
		return r.Inferred
	}
	if r.Annotation != "" {
		return r.Annotation
	}
	return "Any"
}
