// Package critic reviews docstring drafts against the code they document.
// Model responses are parsed line by line; a failed call degrades to a
// neutral review so the refinement loop never stalls on the reviewer.
package critic

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/docsmith/docsmith/internal/types"
)

// TextCompleter is the model dependency; *ai.Client satisfies it.
type TextCompleter interface {
	Complete(ctx context.Context, operation, prompt string, maxTokens, maxRetries int) (string, error)
}

// defaultScore is assumed when the response never states a score.
const defaultScore = 0.7

// Critic evaluates drafts. Review never fails; a broken reviewer is reported
// through the neutral review, not an error.
type Critic struct {
	completer TextCompleter
}

// New creates a Critic backed by completer.
func New(completer TextCompleter) *Critic {
	return &Critic{completer: completer}
}

// Review asks the model to evaluate docstring against code and parses the
// response. The review call gets no retries.
func (c *Critic) Review(ctx context.Context, code, docstring string) types.Review {
	prompt := buildReviewPrompt(code, docstring)

	response, err := c.completer.Complete(ctx, "review", prompt, 0, 0)
	if err != nil {
		slog.Warn("review call failed, using neutral review", "error", err)
		return types.NeutralReview()
	}
	return parseReview(response)
}

func buildReviewPrompt(code, docstring string) string {
	return fmt.Sprintf(`You are a strict Python documentation reviewer.
Evaluate docstrings for accuracy, clarity, and completeness.
Be critical - identify every issue and suggest specific fixes.
Ensure the docstring actually matches what the code does.

Review this docstring for the following code:

CODE:
`+"```"+`
%s
`+"```"+`

DOCSTRING:
%s

Evaluate:
1. Accuracy - Does it correctly describe the behavior?
2. Completeness - Are all parameters, returns, raises documented?
3. Clarity - Is it easy to understand?
4. Style - Does it follow consistent formatting?
5. Examples - Should there be usage examples?

Respond in plain text, one finding per line:
- "score: <0-1>" exactly once
- "issue: <specific problem>" per problem found
- "suggest: <specific fix>" per improvement
`, code, docstring)
}

// parseReview scans the response line by line for score, issue, and
// suggestion markers. Lines are matched case-insensitively; "rating:",
// "problem:", and "fix:" are accepted as synonyms. An absent or unparsable
// score falls back to the default, and the clarity score is derived from
// the overall score.
func parseReview(content string) types.Review {
	score := defaultScore
	var issues, suggestions []string

	for _, line := range strings.Split(strings.ToLower(content), "\n") {
		switch {
		case strings.Contains(line, "score:") || strings.Contains(line, "rating:"):
			if v, ok := extractNumber(line); ok {
				score = v
			}
		case strings.Contains(line, "issue:") || strings.Contains(line, "problem:"):
			issues = append(issues, afterColon(line))
		case strings.Contains(line, "suggest:") || strings.Contains(line, "fix:"):
			suggestions = append(suggestions, afterColon(line))
		}
	}

	return types.NewReview(score, issues, suggestions, nil, score*0.9)
}

// extractNumber strips everything but digits and dots from the line and
// parses the remainder. "score: 0.85" yields 0.85; a line with several
// numerals yields their concatenation, which the review clamp then bounds.
func extractNumber(line string) (float64, bool) {
	var b strings.Builder
	for _, r := range line {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func afterColon(line string) string {
	_, rest, found := strings.Cut(line, ":")
	if !found {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(rest)
}
