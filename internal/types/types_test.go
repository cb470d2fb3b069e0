package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeElementValidate(t *testing.T) {
	valid := CodeElement{
		Kind:          KindFunction,
		Name:          "add",
		QualifiedName: "add",
		Source:        "def add(a, b):\n    return a + b",
		Line:          1,
		Complexity:    1,
		Params:        []Param{{Name: "a"}, {Name: "b"}},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*CodeElement)
	}{
		{"empty name", func(e *CodeElement) { e.Name = "" }},
		{"empty qualified name", func(e *CodeElement) { e.QualifiedName = "" }},
		{"bad kind", func(e *CodeElement) { e.Kind = "module" }},
		{"zero complexity", func(e *CodeElement) { e.Complexity = 0 }},
		{"unnamed param", func(e *CodeElement) { e.Params[0].Name = "" }},
		{"unnamed raise", func(e *CodeElement) { e.Raises = []RaiseInfo{{}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			e.Params = append([]Param(nil), valid.Params...)
			tt.mutate(&e)
			assert.Error(t, e.Validate())
		})
	}
}

func TestParseStyle(t *testing.T) {
	for _, s := range []string{"google", "NumPy", " rst "} {
		style, err := ParseStyle(s)
		require.NoError(t, err)
		assert.True(t, style.IsValid())
	}
	_, err := ParseStyle("javadoc")
	assert.Error(t, err)
}

func TestNewReviewBounds(t *testing.T) {
	many := []string{"a", "b", "c", "d", "e", "f", "g"}
	r := NewReview(1.7, many, many, nil, -0.2)
	assert.Equal(t, 1.0, r.Score)
	assert.Equal(t, 0.0, r.ClarityScore)
	assert.Len(t, r.Issues, 5)
	assert.Len(t, r.Suggestions, 5)
	assert.True(t, r.IsAccurate)

	low := NewReview(0.7, nil, nil, nil, 0.5)
	assert.False(t, low.IsAccurate, "0.7 is not strictly greater than 0.7")
}

func TestReturnInfoHasValue(t *testing.T) {
	var nilInfo *ReturnInfo
	assert.False(t, nilInfo.HasValue())
	assert.False(t, (&ReturnInfo{}).HasValue())
	assert.False(t, (&ReturnInfo{Inferred: "None"}).HasValue())
	assert.True(t, (&ReturnInfo{Inferred: "int"}).HasValue())
}
