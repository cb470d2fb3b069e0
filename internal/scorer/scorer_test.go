package scorer

import (
	"testing"

	"github.com/docsmith/docsmith/internal/types"
	"github.com/stretchr/testify/assert"
)

func element() *types.CodeElement {
	return &types.CodeElement{
		Kind:          types.KindFunction,
		Name:          "divide",
		QualifiedName: "divide",
		Params:        []types.Param{{Name: "a"}, {Name: "b"}},
		Returns:       &types.ReturnInfo{Inferred: "float"},
		Raises:        []types.RaiseInfo{{Type: "ZeroDivisionError"}},
		Source:        "def divide(a, b):\n    return a / b",
		Line:          1,
		Complexity:    1,
	}
}

const goodDraft = `"""Divide a by b.

Args:
    a (float): dividend value
    b (float): divisor value

Returns:
    float: the quotient

Raises:
    ZeroDivisionError: when b is zero
"""`

func TestFullCoverageMeetsThreshold(t *testing.T) {
	review := types.NewReview(1.0, nil, nil, nil, 1.0)
	got := Scorer{}.Calculate(element(), goodDraft, review)
	assert.GreaterOrEqual(t, got, 0.8, "perfect critic plus full coverage must pass the default gate")
	assert.LessOrEqual(t, got, 1.0)
}

func TestMissingParamsScoresLower(t *testing.T) {
	review := types.NewReview(0.5, nil, nil, nil, 0.5)
	missing := `"""Divide two numbers.

Returns:
    float: the quotient. Raises ZeroDivisionError on zero.
"""`
	elem := element()
	// Parameter names a/b appear as substrings of almost any text, so use
	// distinctive names for the missing-coverage case.
	elem.Params = []types.Param{{Name: "dividend_qq"}, {Name: "divisor_qq"}}

	low := Scorer{}.Calculate(elem, missing, review)
	high := Scorer{}.Calculate(element(), goodDraft, review)
	assert.Less(t, low, high, "identical critic score, coverage must decide")

	// The parameter term contributes exactly zero.
	base := Scorer{}.Calculate(elem, missing, review)
	elem2 := element()
	elem2.Params = nil
	noParams := Scorer{}.Calculate(elem2, missing, review)
	assert.InDelta(t, 0.2, noParams-base, 1e-9, "vacuous coverage restores the full 20%% term")
}

func TestMonotoneInCoverage(t *testing.T) {
	review := types.NewReview(0.6, nil, nil, nil, 0.6)
	elem := element()

	drafts := []string{
		`"""Short."""`,
		`"""Covers a only."""`,
		`"""Covers a and b. Returns the quotient."""`,
		goodDraft,
	}
	prev := -1.0
	for _, d := range drafts {
		got := Scorer{}.Calculate(elem, d, review)
		assert.GreaterOrEqual(t, got, prev, "adding coverage must never lower the score: %q", d)
		prev = got
	}
}

func TestReturnCoverage(t *testing.T) {
	elem := element()
	elem.Params = nil
	elem.Raises = nil
	review := types.NewReview(0, nil, nil, nil, 0)

	noMention := Scorer{}.Calculate(elem, `"""Divides things quietly."""`, review)
	mention := Scorer{}.Calculate(elem, `"""Divides things. Returns a float."""`, review)
	assert.InDelta(t, 0.15, mention-noMention, 0.0301, "return keyword is worth the 15%% term (modulo clarity drift)")

	elem.Returns = &types.ReturnInfo{}
	vacuous := Scorer{}.Calculate(elem, `"""Divides things quietly."""`, review)
	assert.Greater(t, vacuous, noMention, "nothing to document means full return credit")
}

func TestClarityChecks(t *testing.T) {
	review := types.NewReview(0, nil, nil, nil, 0)
	elem := &types.CodeElement{
		Kind: types.KindFunction, Name: "f", QualifiedName: "f",
		Complexity: 1, Source: "def f():\n    pass", Line: 1,
	}

	bare := Scorer{}.Calculate(elem, "tiny", review)
	full := Scorer{}.Calculate(elem,
		`"""One sentence here with enough words to pass. Another sentence follows. Args: none."""`, review)
	assert.Greater(t, full, bare)
	assert.InDelta(t, 0.15, full-bare, 1e-9, "all four clarity checks sum to the full 15%% term")
}

func TestNoClampByConstruction(t *testing.T) {
	// The scorer trusts its caller: an out-of-range critic score is passed
	// through rather than re-validated.
	review := types.Review{Score: 1.5}
	got := Scorer{}.Calculate(element(), goodDraft, review)
	assert.Greater(t, got, 1.0)
}
