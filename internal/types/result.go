package types

// maxReviewItems caps the issue and suggestion lists kept from a review.
const maxReviewItems = 5

// Review is the critic's judgment of one draft docstring.
type Review struct {
	Score        float64  `json:"score"` // 0..1
	Issues       []string `json:"issues,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
	MissingInfo  []string `json:"missing_info,omitempty"`
	IsAccurate   bool     `json:"is_accurate"`
	ClarityScore float64  `json:"clarity_score"` // 0..1
}

// NewReview builds a Review from raw critic output, applying the contract
// bounds: score clamped to [0,1], issue/suggestion lists capped at five,
// IsAccurate derived from the clamped score.
func NewReview(score float64, issues, suggestions, missing []string, clarity float64) Review {
	score = clamp01(score)
	return Review{
		Score:        score,
		Issues:       capItems(issues),
		Suggestions:  capItems(suggestions),
		MissingInfo:  missing,
		IsAccurate:   score > 0.7,
		ClarityScore: clamp01(clarity),
	}
}

// NeutralReview is the fixed degradation used when the critic service fails.
func NeutralReview() Review {
	return NewReview(0.5,
		[]string{"review unavailable: critic service failed"},
		[]string{"regenerate the docstring"},
		nil,
		0.5)
}

func capItems(items []string) []string {
	if len(items) > maxReviewItems {
		return items[:maxReviewItems]
	}
	return items
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// PriorAttempt carries feedback from one refinement iteration into the next
// GENERATE call: the previous draft plus the critic's top suggestions. It
// replaces the old trick of scribbling feedback into the extracted fact.
type PriorAttempt struct {
	Docstring   string   `json:"docstring"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// DraftResult records the outcome of processing one element through the
// refinement loop, including per-iteration provenance fields.
type DraftResult struct {
	ElementName    string   `json:"element_name"`
	Docstring      string   `json:"docstring"`
	Confidence     float64  `json:"confidence"` // 0..1
	Style          Style    `json:"style"`
	Reasoning      string   `json:"reasoning,omitempty"`
	Warnings       []string `json:"warnings,omitempty"` // from critic issues, capped at 5
	ProcessingTime float64  `json:"processing_time"`    // seconds, from first generate
	ImprovedFrom   string   `json:"improved_from,omitempty"`
	Iteration      int      `json:"iteration"` // 1-based
}
