// Package analyzer extracts structural facts from Python source: one record
// per documentable element (function, method, constructor) with parameters,
// heuristic types, return behavior, raised exceptions, and complexity.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/docsmith/docsmith/internal/pyast"
	"github.com/docsmith/docsmith/internal/types"
)

// InsertionPoint tells the injector where an element's docstring lives (or
// should live). Offsets are byte positions into the analyzed source.
type InsertionPoint struct {
	// HasDocstring selects replace mode: [ReplaceStart, ReplaceEnd) spans
	// the existing string literal verbatim, quotes included, and Indent is
	// the literal's leading line whitespace (empty when the literal does not
	// open its line).
	HasDocstring bool
	ReplaceStart int
	ReplaceEnd   int

	// Insert mode: InsertOffset is where new text goes. When SameLine is
	// false the offset is the start of the first body statement's line and
	// Indent is that line's leading whitespace. When SameLine is true the
	// body shares the header line and the injector must break the line
	// itself, indenting by Indent.
	InsertOffset int
	Indent       string
	SameLine     bool
}

// Analysis bundles the extracted elements with the injection index built
// from the same parse, so extraction and injection never parse twice.
type Analysis struct {
	Elements []*types.CodeElement
	Points   map[string]InsertionPoint // keyed by qualified name
}

// Analyzer turns source text into structural fact records. The inference
// strategy is pluggable; zero value is not usable, construct with New.
type Analyzer struct {
	strategy InferenceStrategy
}

// New creates an Analyzer with the given inference strategy; nil selects
// the default table-driven strategy.
func New(strategy InferenceStrategy) *Analyzer {
	if strategy == nil {
		strategy = TableStrategy{}
	}
	return &Analyzer{strategy: strategy}
}

// Analyze extracts the structural facts of every documentable element in
// source, in pre-order traversal order. It fails with a *pyast.ParseError
// (wrapped) when the source is not syntactically valid; that error is fatal
// and must not be retried.
func (a *Analyzer) Analyze(source string) ([]*types.CodeElement, error) {
	analysis, err := a.AnalyzeSource(source)
	if err != nil {
		return nil, err
	}
	return analysis.Elements, nil
}

// AnalyzeSource is Analyze plus the injection index.
func (a *Analyzer) AnalyzeSource(source string) (*Analysis, error) {
	mod, err := pyast.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("analyzing source: %w", err)
	}
	res := &Analysis{Points: make(map[string]InsertionPoint)}
	a.walkBody(mod.Body, source, nil, false, res)
	return res, nil
}

// walkBody visits statements in order, emitting one element per function
// definition encountered. Class bodies contribute their methods immediately;
// the class itself is not emitted. scope is the enclosing dotted path.
func (a *Analyzer) walkBody(body []pyast.Stmt, src string, scope []string, inClass bool, res *Analysis) {
	for _, stmt := range body {
		switch v := stmt.(type) {
		case *pyast.FunctionDef:
			elem := a.analyzeFunction(v, src, scope, inClass)
			res.Elements = append(res.Elements, elem)
			res.Points[elem.QualifiedName] = insertionPoint(v, src)
			// Nested definitions are documentable too and come right
			// after their parent in traversal order.
			a.walkBody(v.Body, src, append(scope, v.Name), false, res)
		case *pyast.ClassDef:
			a.walkBody(v.Body, src, append(scope, v.Name), true, res)
		case *pyast.If:
			a.walkBody(v.Body, src, scope, inClass, res)
			a.walkBody(v.Orelse, src, scope, inClass, res)
		case *pyast.While:
			a.walkBody(v.Body, src, scope, inClass, res)
			a.walkBody(v.Orelse, src, scope, inClass, res)
		case *pyast.For:
			a.walkBody(v.Body, src, scope, inClass, res)
			a.walkBody(v.Orelse, src, scope, inClass, res)
		case *pyast.With:
			a.walkBody(v.Body, src, scope, inClass, res)
		case *pyast.Try:
			a.walkBody(v.Body, src, scope, inClass, res)
			for _, h := range v.Handlers {
				a.walkBody(h.Body, src, scope, inClass, res)
			}
			a.walkBody(v.Orelse, src, scope, inClass, res)
			a.walkBody(v.Final, src, scope, inClass, res)
		}
	}
}

func (a *Analyzer) analyzeFunction(fn *pyast.FunctionDef, src string, scope []string, inClass bool) *types.CodeElement {
	kind := types.KindFunction
	if inClass {
		kind = types.KindMethod
		if fn.Name == "__init__" {
			kind = types.KindConstructor
		}
	}

	params := make([]types.Param, 0, len(fn.Params))
	for _, arg := range fn.Params {
		p := types.Param{Name: arg.Name}
		if arg.Annotation != nil {
			p.Annotation = sliceSource(src, arg.Annotation)
		}
		if arg.Default != nil {
			p.Default = sliceSource(src, arg.Default)
		}
		p.Inferred = resolveType(a.strategy.Score(collectEvidence(fn, arg.Name)))
		params = append(params, p)
	}

	decorators := make([]string, 0, len(fn.Decorators))
	for _, d := range fn.Decorators {
		decorators = append(decorators, sliceSource(src, d))
	}

	return &types.CodeElement{
		Kind:          kind,
		Name:          fn.Name,
		QualifiedName: strings.Join(append(scope, fn.Name), "."),
		Params:        params,
		Returns:       a.analyzeReturns(fn, src),
		Raises:        a.analyzeRaises(fn),
		Docstring:     docstringOf(fn, src),
		Source:        sliceSource(src, fn),
		Line:          fn.DefPos.Line,
		Complexity:    complexity(fn),
		Decorators:    decorators,
		IsAsync:       fn.IsAsync,
	}
}

// docstringOf returns the verbatim source of the function's docstring
// literal (quotes included), or "" when the first body statement is not a
// bare string literal.
func docstringOf(fn *pyast.FunctionDef, src string) string {
	str := docstringNode(fn)
	if str == nil {
		return ""
	}
	return sliceSource(src, str)
}

func docstringNode(fn *pyast.FunctionDef) *pyast.Str {
	if len(fn.Body) == 0 {
		return nil
	}
	expr, ok := fn.Body[0].(*pyast.ExprStmt)
	if !ok {
		return nil
	}
	str, ok := expr.Value.(*pyast.Str)
	if !ok {
		return nil
	}
	return str
}

// insertionPoint computes where the injector should splice a docstring for
// this function.
func insertionPoint(fn *pyast.FunctionDef, src string) InsertionPoint {
	if str := docstringNode(fn); str != nil {
		pt := InsertionPoint{
			HasDocstring: true,
			ReplaceStart: str.Start().Offset,
			ReplaceEnd:   str.End().Offset,
		}
		prefix := src[lineStartOf(src, pt.ReplaceStart):pt.ReplaceStart]
		if strings.TrimLeft(prefix, " \t") == "" {
			pt.Indent = prefix
		}
		return pt
	}

	bodyOff := fn.Body[0].Start().Offset
	lineStart := lineStartOf(src, bodyOff)
	prefix := src[lineStart:bodyOff]
	if strings.TrimLeft(prefix, " \t") == "" {
		// The statement owns its line; insert a full line above it.
		return InsertionPoint{InsertOffset: lineStart, Indent: prefix}
	}
	// Single-line suite (def f(): return 1) or similar: break the line at
	// the statement and indent one level past the def.
	indent := strings.Repeat(" ", fn.DefPos.Col-1+4)
	return InsertionPoint{InsertOffset: bodyOff, Indent: indent, SameLine: true}
}

// lineStartOf returns the offset of the first byte of the line containing off.
func lineStartOf(src string, off int) int {
	for off > 0 && src[off-1] != '\n' {
		off--
	}
	return off
}

func sliceSource(src string, n pyast.Node) string {
	start, end := n.Start().Offset, n.End().Offset
	if start < 0 || end > len(src) || start > end {
		return ""
	}
	return src[start:end]
}
