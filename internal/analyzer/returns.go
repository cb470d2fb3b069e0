package analyzer

import (
	"strings"

	"github.com/docsmith/docsmith/internal/pyast"
	"github.com/docsmith/docsmith/internal/types"
)

// walkOwnBody visits every node of fn's body without descending into nested
// function or class definitions, so an inner function's returns are never
// attributed to the outer one.
func walkOwnBody(fn *pyast.FunctionDef, visit func(pyast.Node) bool) {
	for _, stmt := range fn.Body {
		pyast.Walk(stmt, func(n pyast.Node) bool {
			switch n.(type) {
			case *pyast.FunctionDef, *pyast.ClassDef, *pyast.Lambda:
				return false
			}
			return visit(n)
		})
	}
}

// analyzeReturns inspects every return and yield in the function's own body
// and produces the heuristic return description.
func (a *Analyzer) analyzeReturns(fn *pyast.FunctionDef, src string) *types.ReturnInfo {
	info := &types.ReturnInfo{}
	if fn.Returns != nil {
		info.Annotation = sliceSource(src, fn.Returns)
	}

	seen := make(map[string]bool)
	walkOwnBody(fn, func(n pyast.Node) bool {
		switch v := n.(type) {
		case *pyast.Yield:
			info.IsGenerator = true
			seen["generator"] = true
		case *pyast.Return:
			if v.Value == nil {
				return true
			}
			switch v.Value.(type) {
			case *pyast.Tuple:
				info.IsMultiple = true
				seen["tuple"] = true
			case *pyast.Yield:
				// handled when the walk reaches the yield itself
			default:
				text := sliceSource(src, v.Value)
				for _, name := range candidateTypes {
					if returnPatterns[name].MatchString(text) {
						seen[name] = true
					}
				}
			}
		}
		return true
	})

	if len(seen) > 0 {
		// Join candidates in table order; "generator" sorts last since it
		// is not a table entry.
		var parts []string
		for _, name := range candidateTypes {
			if seen[name] {
				parts = append(parts, name)
			}
		}
		if seen["generator"] {
			parts = append(parts, "generator")
		}
		info.Inferred = strings.Join(parts, ", ")
	}
	return info
}

// analyzeRaises records one entry per raise-with-constructor-call, in
// first-seen order, duplicates preserved. Bare re-raises and non-call raise
// expressions are not detected. The traversal covers nested definitions,
// matching the complexity walk.
func (a *Analyzer) analyzeRaises(fn *pyast.FunctionDef) []types.RaiseInfo {
	var out []types.RaiseInfo
	pyast.Walk(fn, func(n pyast.Node) bool {
		raise, ok := n.(*pyast.Raise)
		if !ok || raise.Exc == nil {
			return true
		}
		call, ok := raise.Exc.(*pyast.Call)
		if !ok {
			return true
		}
		if name, ok := call.Func.(*pyast.Name); ok {
			out = append(out, types.RaiseInfo{Type: name.Id})
		}
		return true
	})
	return out
}

// complexity is a simplified McCabe-style count: one point per branch,
// loop, exception handler, context manager, assertion, and boolean-operator
// expression found anywhere in the definition, plus the base path.
func complexity(fn *pyast.FunctionDef) int {
	score := 1
	pyast.Walk(fn, func(n pyast.Node) bool {
		switch n.(type) {
		case *pyast.If, *pyast.While, *pyast.For, *pyast.ExceptHandler,
			*pyast.With, *pyast.Assert, *pyast.BoolOp:
			score++
		}
		return true
	})
	return score
}
