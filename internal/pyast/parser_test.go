package pyast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Module {
	t.Helper()
	mod, err := Parse(src)
	require.NoError(t, err)
	return mod
}

func TestParseSimpleFunction(t *testing.T) {
	src := "def add(a, b):\n    return a + b\n"
	mod := mustParse(t, src)
	require.Len(t, mod.Body, 1)

	fn, ok := mod.Body[0].(*FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.False(t, fn.IsAsync)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "b", fn.Params[1].Name)
	assert.Equal(t, 1, fn.DefPos.Line)

	require.Len(t, fn.Body, 1)
	ret, ok := fn.Body[0].(*Return)
	require.True(t, ok)
	bin, ok := ret.Value.(*BinOp)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)

	// Spans slice the verbatim source.
	assert.Equal(t, src[fn.Start().Offset:fn.End().Offset], "def add(a, b):\n    return a + b")
}

func TestParseAnnotationsAndDefaults(t *testing.T) {
	src := "def greet(name: str, times: int = 3) -> str:\n    return name * times\n"
	mod := mustParse(t, src)
	fn := mod.Body[0].(*FunctionDef)

	require.Len(t, fn.Params, 2)
	assert.Equal(t, "str", src[fn.Params[0].Annotation.Start().Offset:fn.Params[0].Annotation.End().Offset])
	require.NotNil(t, fn.Params[1].Default)
	assert.Equal(t, "3", src[fn.Params[1].Default.Start().Offset:fn.Params[1].Default.End().Offset])
	require.NotNil(t, fn.Returns)
}

func TestParseAsyncFunction(t *testing.T) {
	src := "async def fetch(url):\n    return await call(url)\n"
	mod := mustParse(t, src)
	fn := mod.Body[0].(*FunctionDef)
	assert.True(t, fn.IsAsync)
	assert.Equal(t, "fetch", fn.Name)

	ret := fn.Body[0].(*Return)
	aw, ok := ret.Value.(*Await)
	require.True(t, ok)
	call, ok := aw.Value.(*Call)
	require.True(t, ok)
	assert.Equal(t, "call", call.Func.(*Name).Id)
}

func TestParseClassWithMethods(t *testing.T) {
	src := `class Greeter(Base):
    """Class docstring."""

    def __init__(self, name):
        self.name = name

    def greet(self):
        return self.name
`
	mod := mustParse(t, src)
	cls, ok := mod.Body[0].(*ClassDef)
	require.True(t, ok)
	assert.Equal(t, "Greeter", cls.Name)
	require.Len(t, cls.Bases, 1)
	require.Len(t, cls.Body, 3)

	doc, ok := cls.Body[0].(*ExprStmt)
	require.True(t, ok)
	str, ok := doc.Value.(*Str)
	require.True(t, ok)
	assert.Equal(t, "Class docstring.", str.Value)
	assert.Equal(t, `"""Class docstring."""`, src[str.Start().Offset:str.End().Offset])

	init, ok := cls.Body[1].(*FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "__init__", init.Name)
}

func TestParseDecorators(t *testing.T) {
	src := "@app.route('/x')\n@cached\ndef handler(req):\n    pass\n"
	mod := mustParse(t, src)
	fn := mod.Body[0].(*FunctionDef)
	require.Len(t, fn.Decorators, 2)
	assert.Equal(t, "app.route('/x')", src[fn.Decorators[0].Start().Offset:fn.Decorators[0].End().Offset])
	assert.Equal(t, "cached", src[fn.Decorators[1].Start().Offset:fn.Decorators[1].End().Offset])
	// Node span includes the decorators, DefPos does not.
	assert.Equal(t, 1, fn.Start().Line)
	assert.Equal(t, 3, fn.DefPos.Line)
}

func TestParseControlFlow(t *testing.T) {
	src := `def classify(n):
    if n < 0:
        return "neg"
    elif n == 0:
        return "zero"
    else:
        for i in range(n):
            while i > 0:
                i -= 1
        with open("f") as f:
            assert f is not None, "no file"
        try:
            risky()
        except ValueError as e:
            raise RuntimeError("bad") from e
        finally:
            done()
    return "pos"
`
	mod := mustParse(t, src)
	fn := mod.Body[0].(*FunctionDef)

	var ifs, fors, whiles, withs, handlers, asserts, raises int
	Walk(fn, func(n Node) bool {
		switch n.(type) {
		case *If:
			ifs++
		case *For:
			fors++
		case *While:
			whiles++
		case *With:
			withs++
		case *ExceptHandler:
			handlers++
		case *Assert:
			asserts++
		case *Raise:
			raises++
		}
		return true
	})
	assert.Equal(t, 2, ifs, "if + elif")
	assert.Equal(t, 1, fors)
	assert.Equal(t, 1, whiles)
	assert.Equal(t, 1, withs)
	assert.Equal(t, 1, handlers)
	assert.Equal(t, 1, asserts)
	assert.Equal(t, 1, raises)
}

func TestParseExpressions(t *testing.T) {
	src := `def expr_zoo(a, b, xs, d):
    c = a + b * 2 ** 3
    ok = a > 0 and b < 10 or not a
    t = (a, b)
    l = [x * 2 for x in xs if x]
    s = {x for x in xs}
    m = {k: v for k, v in d.items()}
    g = (x for x in xs)
    n = xs[1:2:3]
    lam = lambda x, y=1: x + y
    v = a if b else c
    w = f"{a} and {b}"
    return sum(x for x in xs)
`
	mod := mustParse(t, src)
	fn := mod.Body[0].(*FunctionDef)
	require.Len(t, fn.Body, 12)

	var comps, lambdas, slices, ifexps, boolops int
	Walk(fn, func(n Node) bool {
		switch n.(type) {
		case *Comp:
			comps++
		case *Lambda:
			lambdas++
		case *SliceExpr:
			slices++
		case *IfExp:
			ifexps++
		case *BoolOp:
			boolops++
		}
		return true
	})
	assert.Equal(t, 5, comps)
	assert.Equal(t, 1, lambdas)
	assert.Equal(t, 1, slices)
	assert.Equal(t, 1, ifexps)
	assert.Equal(t, 2, boolops, "and-chain nested in or-chain")
}

func TestParseGenerator(t *testing.T) {
	src := "def gen(n):\n    yield n\n    yield from range(n)\n"
	mod := mustParse(t, src)
	fn := mod.Body[0].(*FunctionDef)
	require.Len(t, fn.Body, 2)

	y1 := fn.Body[0].(*ExprStmt).Value.(*Yield)
	assert.False(t, y1.IsFrom)
	y2 := fn.Body[1].(*ExprStmt).Value.(*Yield)
	assert.True(t, y2.IsFrom)
}

func TestParseStarParams(t *testing.T) {
	src := "def f(a, b=1, *args, c, d=2, **kwargs):\n    pass\n"
	mod := mustParse(t, src)
	fn := mod.Body[0].(*FunctionDef)
	require.Len(t, fn.Params, 2)
	require.NotNil(t, fn.VarArg)
	assert.Equal(t, "args", fn.VarArg.Name)
	require.Len(t, fn.KwOnly, 2)
	require.NotNil(t, fn.KwArg)
	assert.Equal(t, "kwargs", fn.KwArg.Name)
}

func TestParseChainedAssignment(t *testing.T) {
	src := "a = b = 1\n"
	mod := mustParse(t, src)
	asg := mod.Body[0].(*Assign)
	require.Len(t, asg.Targets, 2)
	_, ok := asg.Value.(*Num)
	assert.True(t, ok)
}

func TestParseImplicitLineJoin(t *testing.T) {
	src := "def f(\n        a,\n        b,\n):\n    return (a +\n            b)\n"
	mod := mustParse(t, src)
	fn := mod.Body[0].(*FunctionDef)
	require.Len(t, fn.Params, 2)
	require.Len(t, fn.Body, 1)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unclosed paren body", "def f(:\n    pass\n"},
		{"missing block", "def f():\n"},
		{"bad indent", "def f():\n    x = 1\n  y = 2\n"},
		{"unterminated string", "s = 'abc\n"},
		{"stray operator", "x = $\n"},
		{"try without handlers", "try:\n    pass\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			require.Error(t, err)
			var perr *ParseError
			assert.True(t, errors.As(err, &perr), "want *ParseError, got %T", err)
		})
	}
}

func TestParseBlankLinesAndComments(t *testing.T) {
	src := "# leading comment\n\ndef f():\n    # inner comment\n\n    return 1  # trailing\n\n# tail\n"
	mod := mustParse(t, src)
	require.Len(t, mod.Body, 1)
	fn := mod.Body[0].(*FunctionDef)
	require.Len(t, fn.Body, 1)
}

func TestParseSingleLineSuite(t *testing.T) {
	src := "def f(): return 1\n"
	mod := mustParse(t, src)
	fn := mod.Body[0].(*FunctionDef)
	require.Len(t, fn.Body, 1)
	_, ok := fn.Body[0].(*Return)
	assert.True(t, ok)
}

func TestParseNestedFunctions(t *testing.T) {
	src := `def outer(a):
    def inner(b):
        return b * 2
    return inner(a)
`
	mod := mustParse(t, src)
	outer := mod.Body[0].(*FunctionDef)
	require.Len(t, outer.Body, 2)
	inner, ok := outer.Body[0].(*FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "inner", inner.Name)
}

func TestTripleQuotedDocstring(t *testing.T) {
	src := "def f():\n    \"\"\"Line one.\n\n    Line two.\n    \"\"\"\n    return None\n"
	mod := mustParse(t, src)
	fn := mod.Body[0].(*FunctionDef)
	doc := fn.Body[0].(*ExprStmt).Value.(*Str)
	assert.Contains(t, doc.Value, "Line one.")
	assert.Contains(t, doc.Value, "Line two.")
	verbatim := src[doc.Start().Offset:doc.End().Offset]
	assert.Equal(t, "\"\"\"Line one.\n\n    Line two.\n    \"\"\"", verbatim)
}
