package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docsmith/docsmith/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCompleter returns a canned response or error and records the prompts
// it saw.
type mockCompleter struct {
	response string
	err      error
	prompts  []string
}

func (m *mockCompleter) Complete(_ context.Context, _, prompt string, _, _ int) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func divideElement() *types.CodeElement {
	return &types.CodeElement{
		Kind:          types.KindFunction,
		Name:          "divide",
		QualifiedName: "divide",
		Params: []types.Param{
			{Name: "a", Inferred: "int"},
			{Name: "b"},
		},
		Returns:    &types.ReturnInfo{Inferred: "float"},
		Raises:     []types.RaiseInfo{{Type: "ZeroDivisionError"}},
		Source:     "def divide(a, b):\n    return a / b",
		Line:       1,
		Complexity: 1,
	}
}

const suggestionJSON = `{
	"summary": "Divide a by b.",
	"description": "Performs true division.",
	"args_description": ["the dividend", "the divisor"],
	"returns_description": "the quotient",
	"raises_description": ["when b is zero"],
	"side_effects": []
}`

func TestGenerateGoogleStyle(t *testing.T) {
	mock := &mockCompleter{response: suggestionJSON}
	doc, fallback := New(mock).Generate(context.Background(), divideElement(), types.StyleGoogle, nil)

	require.False(t, fallback)
	assert.Equal(t, `"""Divide a by b.

Performs true division.

Args:
    a (int): the dividend
    b (Any): the divisor

Returns:
    float: the quotient

Raises:
    ZeroDivisionError: when b is zero
"""`, doc)
}

func TestGenerateNumpyStyle(t *testing.T) {
	mock := &mockCompleter{response: suggestionJSON}
	doc, fallback := New(mock).Generate(context.Background(), divideElement(), types.StyleNumpy, nil)

	require.False(t, fallback)
	assert.Contains(t, doc, "Parameters\n----------")
	assert.Contains(t, doc, "a : int\n    the dividend")
	assert.Contains(t, doc, "Returns\n-------\nfloat\n    the quotient")
	assert.NotContains(t, doc, "Raises:", "numpy formatter has no raises section")
}

func TestGenerateRSTStyle(t *testing.T) {
	mock := &mockCompleter{response: suggestionJSON}
	doc, fallback := New(mock).Generate(context.Background(), divideElement(), types.StyleRST, nil)

	require.False(t, fallback)
	assert.Contains(t, doc, ":param a: the dividend")
	assert.Contains(t, doc, ":type a: int")
	assert.Contains(t, doc, ":returns: the quotient")
	assert.Contains(t, doc, ":rtype: float")
}

func TestGenerateFencedResponse(t *testing.T) {
	mock := &mockCompleter{response: "```json\n" + suggestionJSON + "\n```"}
	doc, fallback := New(mock).Generate(context.Background(), divideElement(), types.StyleGoogle, nil)
	require.False(t, fallback)
	assert.Contains(t, doc, "Divide a by b.")
}

func TestGenerateFallbackOnError(t *testing.T) {
	mock := &mockCompleter{err: errors.New("503 service unavailable")}
	doc, fallback := New(mock).Generate(context.Background(), divideElement(), types.StyleGoogle, nil)

	assert.True(t, fallback)
	assert.Equal(t, `"""divide function.

Args:
    a: Description missing
    b: Description missing

Returns:
    float: Description missing
"""`, doc)
}

func TestGenerateFallbackOnGarbageResponse(t *testing.T) {
	for _, response := range []string{"not json", `{"summary": "   "}`} {
		mock := &mockCompleter{response: response}
		doc, fallback := New(mock).Generate(context.Background(), divideElement(), types.StyleGoogle, nil)
		assert.True(t, fallback, "response %q must fall back", response)
		assert.Contains(t, doc, "divide function.")
	}
}

func TestGeneratePromptContents(t *testing.T) {
	mock := &mockCompleter{response: suggestionJSON}
	New(mock).Generate(context.Background(), divideElement(), types.StyleNumpy, nil)

	require.Len(t, mock.prompts, 1)
	prompt := mock.prompts[0]
	assert.Contains(t, prompt, "def divide(a, b):")
	assert.Contains(t, prompt, "a (int), b (Any)")
	assert.Contains(t, prompt, "ZeroDivisionError")
	assert.Contains(t, prompt, "Style: numpy")
	assert.NotContains(t, prompt, "Previous attempt:")
}

func TestGeneratePromptThreadsPriorAttempt(t *testing.T) {
	mock := &mockCompleter{response: suggestionJSON}
	prior := &types.PriorAttempt{
		Docstring:   `"""Old draft."""`,
		Suggestions: []string{"mention the divisor", "add a raises section"},
	}
	New(mock).Generate(context.Background(), divideElement(), types.StyleGoogle, prior)

	require.Len(t, mock.prompts, 1)
	prompt := mock.prompts[0]
	assert.Contains(t, prompt, `"""Old draft."""`)
	assert.Contains(t, prompt, "mention the divisor\nadd a raises section")
}

func TestGenerateShortDescriptionLists(t *testing.T) {
	// One description for two params: the second arg line is dropped rather
	// than invented.
	mock := &mockCompleter{response: `{"summary": "Divide.", "args_description": ["the dividend"]}`}
	doc, fallback := New(mock).Generate(context.Background(), divideElement(), types.StyleGoogle, nil)
	require.False(t, fallback)
	assert.Contains(t, doc, "a (int): the dividend")
	assert.Equal(t, 1, strings.Count(doc, "): "), "no line for the undescribed param")
}
