package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type suggestion struct {
	Summary string   `json:"summary"`
	Args    []string `json:"args_description"`
}

func TestParseDirect(t *testing.T) {
	res := Parse[suggestion](`{"summary": "Adds numbers.", "args_description": ["a: first"]}`, "test")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Adds numbers.", res.Data.Summary)
	assert.Equal(t, []string{"a: first"}, res.Data.Args)
}

func TestParseCodeFence(t *testing.T) {
	cases := []string{
		"```json\n{\"summary\": \"x\"}\n```",
		"```\n{\"summary\": \"x\"}\n```",
		"```json{\"summary\": \"x\"}```",
	}
	for _, text := range cases {
		res := Parse[suggestion](text, "fence")
		require.True(t, res.Success, "input %q: %s", text, res.Error)
		assert.Equal(t, "x", res.Data.Summary)
	}
}

func TestParseTrailingComma(t *testing.T) {
	res := Parse[suggestion](`{"summary": "x", "args_description": ["a",],}`, "comma")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, []string{"a"}, res.Data.Args)
}

func TestParseFromProse(t *testing.T) {
	text := "Here is the docstring suggestion you asked for:\n\n" +
		`{"summary": "Divides a by b."}` + "\n\nLet me know if you need changes."
	res := Parse[suggestion](text, "prose")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Divides a by b.", res.Data.Summary)
}

func TestParseArrayNotMistakenForElement(t *testing.T) {
	res := Parse[[]suggestion](`[{"summary": "a"}, {"summary": "b"}]`, "array")
	require.True(t, res.Success, res.Error)
	assert.Len(t, res.Data, 2)
}

func TestParseFailure(t *testing.T) {
	for _, text := range []string{"", "   ", "not json at all"} {
		res := Parse[suggestion](text, "bad")
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "bad: ")
	}
}
