package analyzer

import (
	"testing"

	"github.com/docsmith/docsmith/internal/pyast"
	"github.com/docsmith/docsmith/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, src string) []*types.CodeElement {
	t.Helper()
	elems, err := New(nil).Analyze(src)
	require.NoError(t, err)
	for _, e := range elems {
		require.NoError(t, e.Validate(), "element %s must satisfy invariants", e.QualifiedName)
	}
	return elems
}

func TestAnalyzeAdd(t *testing.T) {
	elems := analyze(t, "def add(a, b):\n    return a + b\n")
	require.Len(t, elems, 1)

	e := elems[0]
	assert.Equal(t, "add", e.Name)
	assert.Equal(t, "add", e.QualifiedName)
	assert.Equal(t, types.KindFunction, e.Kind)
	require.Len(t, e.Params, 2)
	assert.Equal(t, "a", e.Params[0].Name)
	assert.Equal(t, "b", e.Params[1].Name)
	assert.Equal(t, 1, e.Complexity)
	assert.Empty(t, e.Docstring)
	require.NotNil(t, e.Returns)
	assert.Contains(t, e.Returns.Inferred, "int")
	assert.Equal(t, "int", e.Params[0].Inferred, "left operand of + votes int")
}

func TestAnalyzeAsync(t *testing.T) {
	elems := analyze(t, "async def fetch(url):\n    return await call(url)\n")
	require.Len(t, elems, 1)
	assert.True(t, elems[0].IsAsync)
	assert.Equal(t, "fetch", elems[0].Name)
}

func TestAnalyzeTraversalOrderAndCount(t *testing.T) {
	src := `def first():
    pass

class Thing:
    def __init__(self, x):
        self.x = x

    def second(self):
        return self.x

def third():
    def nested():
        return 1
    return nested()
`
	elems := analyze(t, src)
	names := make([]string, len(elems))
	for i, e := range elems {
		names[i] = e.QualifiedName
	}
	assert.Equal(t, []string{"first", "Thing.__init__", "Thing.second", "third", "third.nested"}, names)

	assert.Equal(t, types.KindConstructor, elems[1].Kind)
	assert.Equal(t, types.KindMethod, elems[2].Kind)
	assert.Equal(t, types.KindFunction, elems[4].Kind, "a def nested in a function is a function")
}

func TestAnalyzeParamCountMatchesDeclaration(t *testing.T) {
	src := "def f(a, b: int, c=1, d: str = 'x'):\n    pass\n"
	elems := analyze(t, src)
	require.Len(t, elems[0].Params, 4)
	assert.Equal(t, "int", elems[0].Params[1].Annotation)
	assert.Equal(t, "1", elems[0].Params[2].Default)
	assert.Equal(t, "str", elems[0].Params[3].Annotation)
	assert.Equal(t, "'x'", elems[0].Params[3].Default)
}

func TestComplexityCounting(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want int
	}{
		{"no branches", "def f():\n    return 1\n", 1},
		{"single if", "def f(x):\n    if x:\n        return 1\n    return 0\n", 2},
		{"if and elif", "def f(x):\n    if x:\n        return 1\n    elif x > 1:\n        return 2\n    return 0\n", 3},
		{"loop", "def f(xs):\n    for x in xs:\n        pass\n", 2},
		{"while", "def f(x):\n    while x:\n        x -= 1\n", 2},
		{"handler", "def f():\n    try:\n        g()\n    except ValueError:\n        pass\n", 2},
		{"with", "def f():\n    with open('x') as fh:\n        pass\n", 2},
		{"assert", "def f(x):\n    assert x\n", 2},
		{"boolop", "def f(a, b):\n    return a and b\n", 2},
		{"combined", "def f(a, b):\n    if a and b:\n        for i in a:\n            assert i\n", 4 + 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			elems := analyze(t, tc.src)
			assert.Equal(t, tc.want, elems[0].Complexity)
		})
	}
}

func TestExistingDocstringVerbatim(t *testing.T) {
	src := "def f():\n    \"\"\"Keep me.\"\"\"\n    return 1\n"
	elems := analyze(t, src)
	assert.Equal(t, "\"\"\"Keep me.\"\"\"", elems[0].Docstring)
}

func TestRaiseDetection(t *testing.T) {
	src := `def f(x):
    if x < 0:
        raise ValueError("negative")
    if x > 100:
        raise ValueError("too big")
    try:
        g()
    except KeyError:
        raise
    raise some.module.Error("ignored: attribute callee")
`
	elems := analyze(t, src)
	raises := elems[0].Raises
	require.Len(t, raises, 2, "bare re-raise and attribute callees are not detected")
	assert.Equal(t, "ValueError", raises[0].Type)
	assert.Equal(t, "ValueError", raises[1].Type, "duplicates are preserved")
}

func TestReturnAnalysis(t *testing.T) {
	t.Run("tuple return", func(t *testing.T) {
		elems := analyze(t, "def f():\n    return 1, 2\n")
		assert.True(t, elems[0].Returns.IsMultiple)
		assert.Contains(t, elems[0].Returns.Inferred, "tuple")
	})
	t.Run("generator", func(t *testing.T) {
		elems := analyze(t, "def f(n):\n    yield n\n")
		assert.True(t, elems[0].Returns.IsGenerator)
		assert.Contains(t, elems[0].Returns.Inferred, "generator")
	})
	t.Run("no return", func(t *testing.T) {
		elems := analyze(t, "def f():\n    pass\n")
		r := elems[0].Returns
		assert.False(t, r.IsGenerator)
		assert.False(t, r.IsMultiple)
		assert.Empty(t, r.Inferred)
		assert.False(t, r.HasValue())
	})
	t.Run("nested returns are scoped out", func(t *testing.T) {
		src := "def outer():\n    def inner():\n        return 1 + 2\n    inner()\n"
		elems := analyze(t, src)
		require.Equal(t, "outer", elems[0].Name)
		assert.Empty(t, elems[0].Returns.Inferred, "inner's returns must not leak into outer")
		assert.Contains(t, elems[1].Returns.Inferred, "int")
	})
	t.Run("string return", func(t *testing.T) {
		elems := analyze(t, "def f():\n    return 'hi'\n")
		assert.Contains(t, elems[0].Returns.Inferred, "str")
	})
	t.Run("annotation captured", func(t *testing.T) {
		elems := analyze(t, "def f() -> int:\n    return 1\n")
		assert.Equal(t, "int", elems[0].Returns.Annotation)
	})
}

func TestInferenceSignals(t *testing.T) {
	t.Run("constructor call outranks arithmetic", func(t *testing.T) {
		src := "def f(x):\n    y = x + 1\n    return str(x)\n"
		elems := analyze(t, src)
		assert.Equal(t, "str", elems[0].Params[0].Inferred, "str() scores 3, arithmetic scores 2")
	})
	t.Run("len votes list over tuple by table order", func(t *testing.T) {
		src := "def f(xs):\n    return len(xs)\n"
		elems := analyze(t, src)
		assert.Equal(t, "list", elems[0].Params[0].Inferred)
	})
	t.Run("unused parameter stays unknown", func(t *testing.T) {
		src := "def f(x):\n    return 1\n"
		elems := analyze(t, src)
		assert.Empty(t, elems[0].Params[0].Inferred)
	})
}

func TestDecoratorsCaptured(t *testing.T) {
	src := "@staticmethod\n@app.get('/x')\ndef f():\n    pass\n"
	elems := analyze(t, src)
	assert.Equal(t, []string{"staticmethod", "app.get('/x')"}, elems[0].Decorators)
	assert.Equal(t, 3, elems[0].Line, "line numbers point at the def, not the decorators")
}

func TestAnalyzeParseError(t *testing.T) {
	_, err := New(nil).Analyze("def f(:\n    pass\n")
	require.Error(t, err)
	var perr *pyast.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestInsertionPoints(t *testing.T) {
	a := New(nil)

	t.Run("replace span covers existing literal", func(t *testing.T) {
		src := "def f():\n    \"\"\"Old.\"\"\"\n    return 1\n"
		res, err := a.AnalyzeSource(src)
		require.NoError(t, err)
		pt := res.Points["f"]
		require.True(t, pt.HasDocstring)
		assert.Equal(t, "\"\"\"Old.\"\"\"", src[pt.ReplaceStart:pt.ReplaceEnd])
		assert.Equal(t, "    ", pt.Indent, "replace mode records the literal's line indent")
	})

	t.Run("insert at body line start", func(t *testing.T) {
		src := "def f():\n    return 1\n"
		res, err := a.AnalyzeSource(src)
		require.NoError(t, err)
		pt := res.Points["f"]
		assert.False(t, pt.HasDocstring)
		assert.False(t, pt.SameLine)
		assert.Equal(t, "    ", pt.Indent)
		assert.Equal(t, len("def f():\n"), pt.InsertOffset)
	})

	t.Run("single line suite", func(t *testing.T) {
		src := "def f(): return 1\n"
		res, err := a.AnalyzeSource(src)
		require.NoError(t, err)
		pt := res.Points["f"]
		assert.True(t, pt.SameLine)
		assert.Equal(t, "    ", pt.Indent)
	})
}
