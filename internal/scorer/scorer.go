// Package scorer computes the deterministic confidence score that gates the
// refinement loop: a weighted blend of the critic's judgment and measurable
// coverage checks against the extracted structure.
package scorer

import (
	"strings"

	"github.com/docsmith/docsmith/internal/types"
)

// Weights of the five scoring terms. They sum to 1.0, but the result is not
// clamped: a critic score outside [0,1] is an upstream contract violation,
// not something to paper over here.
const (
	weightCritic  = 0.40
	weightParams  = 0.20
	weightReturns = 0.15
	weightRaises  = 0.10
	weightClarity = 0.15
)

// returnKeywords satisfy the return-coverage check when any of them appears
// in the draft.
var returnKeywords = []string{"returns", "return", "yields", "generator"}

// Scorer is stateless; the zero value is ready to use.
type Scorer struct{}

// Calculate combines the critic score with structural coverage and clarity
// checks. Monotone in each coverage term when the critic score is held
// fixed.
func (Scorer) Calculate(elem *types.CodeElement, draft string, review types.Review) float64 {
	score := review.Score * weightCritic
	score += paramCoverage(elem, draft) * weightParams
	score += returnCoverage(elem, draft) * weightReturns
	score += raiseCoverage(elem, draft) * weightRaises
	score += clarity(draft) * weightClarity
	return score
}

// paramCoverage is the fraction of parameters whose name appears in the
// draft, case-insensitively; vacuously 1.0 without parameters.
func paramCoverage(elem *types.CodeElement, draft string) float64 {
	if len(elem.Params) == 0 {
		return 1.0
	}
	doc := strings.ToLower(draft)
	covered := 0
	for _, p := range elem.Params {
		if strings.Contains(doc, strings.ToLower(p.Name)) {
			covered++
		}
	}
	return float64(covered) / float64(len(elem.Params))
}

// returnCoverage is 1.0 when there is nothing to document, otherwise 1.0
// iff the draft mentions any return keyword.
func returnCoverage(elem *types.CodeElement, draft string) float64 {
	if !elem.Returns.HasValue() {
		return 1.0
	}
	doc := strings.ToLower(draft)
	for _, kw := range returnKeywords {
		if strings.Contains(doc, kw) {
			return 1.0
		}
	}
	return 0.0
}

// raiseCoverage is the fraction of raised exception kinds named in the
// draft, case-insensitively; vacuously 1.0 without raises.
func raiseCoverage(elem *types.CodeElement, draft string) float64 {
	if len(elem.Raises) == 0 {
		return 1.0
	}
	doc := strings.ToLower(draft)
	covered := 0
	for _, r := range elem.Raises {
		if strings.Contains(doc, strings.ToLower(r.Type)) {
			covered++
		}
	}
	return float64(covered) / float64(len(elem.Raises))
}

// clarity sums four binary readability checks, capped at 1.0: reasonable
// length, at least two sentences, the docstring delimiter, and an
// args-style section marker.
func clarity(draft string) float64 {
	score := 0.0

	words := len(strings.Fields(draft))
	if words >= 10 && words <= 200 {
		score += 0.3
	}
	if len(strings.Split(draft, ".")) >= 2 {
		score += 0.3
	}
	if strings.Contains(draft, `"""`) {
		score += 0.2
	}
	if strings.Contains(draft, "Args:") || strings.Contains(draft, "Parameters") || strings.Contains(draft, ":param") {
		score += 0.2
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}
