package analyzer

import (
	"regexp"

	"github.com/docsmith/docsmith/internal/pyast"
)

// candidateTypes is the fixed candidate table, in declaration order. The
// order doubles as the deterministic tie-break for parameter inference and
// as the join order for return-type candidate sets.
var candidateTypes = []string{"int", "float", "str", "bool", "list", "dict", "set", "tuple"}

// returnPatterns maps each candidate type to a lightweight source-text
// pattern. A return expression can match several patterns; every match
// contributes a candidate. The patterns are heuristics for documentation
// hints, nothing more.
var returnPatterns = map[string]*regexp.Regexp{
	"int":   regexp.MustCompile(`[+\-*/%]|\d+`),
	"float": regexp.MustCompile(`\d+\.\d+`),
	"str":   regexp.MustCompile(`['"].*?['"]|str\(|\.format|\+ *['"]`),
	"bool":  regexp.MustCompile(`==|!=|<|>|is |not |True|False`),
	"list":  regexp.MustCompile(`\[.*\]|list\(|\.append|\.extend`),
	"dict":  regexp.MustCompile(`\{.*:.*\}|dict\(|\.keys\(\)|\.values\(\)`),
	"set":   regexp.MustCompile(`\{.*\}|set\(\)`),
	"tuple": regexp.MustCompile(`\(.*,.*\)`),
}

// EvidenceKind classifies one observed use of a parameter.
type EvidenceKind int

const (
	// EvidenceBinaryOp means the parameter was the left operand of a
	// binary operator.
	EvidenceBinaryOp EvidenceKind = iota
	// EvidenceCallArg means the parameter was passed positionally to a
	// named callee.
	EvidenceCallArg
)

// Evidence is a single usage observation collected from a function body.
type Evidence struct {
	Kind   EvidenceKind
	Op     string // operator text for EvidenceBinaryOp
	Callee string // callee name for EvidenceCallArg
}

// InferenceStrategy scores candidate type names given the usage evidence
// collected for one parameter. Implementations must be deterministic;
// alternative strategies can be swapped in without touching the extractor.
type InferenceStrategy interface {
	Score(evidence []Evidence) map[string]int
}

// TableStrategy is the default InferenceStrategy: a fixed signal table over
// arithmetic usage and well-known constructor/aggregate callees.
type TableStrategy struct{}

// arithmeticOps are the operators treated as numeric signals.
var arithmeticOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
}

// constructorCallees get a strong vote for their own type.
var constructorCallees = map[string]bool{
	"int": true, "float": true, "str": true, "list": true, "dict": true,
}

// aggregateCallees suggest a sequence argument.
var aggregateCallees = map[string]bool{
	"len": true, "sum": true, "max": true, "min": true,
}

// Score accumulates per-type scores from the evidence. Arithmetic use votes
// int strongly and float weakly; constructor calls vote their type; length
// and aggregate calls vote list and tuple equally.
func (TableStrategy) Score(evidence []Evidence) map[string]int {
	scores := make(map[string]int, len(candidateTypes))
	for _, ev := range evidence {
		switch ev.Kind {
		case EvidenceBinaryOp:
			if arithmeticOps[ev.Op] {
				scores["int"] += 2
				scores["float"]++
			}
		case EvidenceCallArg:
			switch {
			case constructorCallees[ev.Callee]:
				scores[ev.Callee] += 3
			case aggregateCallees[ev.Callee]:
				scores["list"] += 2
				scores["tuple"] += 2
			}
		}
	}
	return scores
}

// resolveType picks the winning candidate: the strictly highest score wins,
// ties go to the earliest entry in the candidate table, and an all-zero
// board means the type stays unknown.
func resolveType(scores map[string]int) string {
	best := ""
	bestScore := 0
	for _, name := range candidateTypes {
		if scores[name] > bestScore {
			best = name
			bestScore = scores[name]
		}
	}
	return best
}

// collectEvidence walks a function body and gathers usage observations for
// the named parameter. The walk covers the whole body, nested definitions
// included: a parameter captured by an inner function is still evidence.
func collectEvidence(fn *pyast.FunctionDef, param string) []Evidence {
	var out []Evidence
	pyast.Walk(fn, func(n pyast.Node) bool {
		switch v := n.(type) {
		case *pyast.BinOp:
			if name, ok := v.Left.(*pyast.Name); ok && name.Id == param {
				out = append(out, Evidence{Kind: EvidenceBinaryOp, Op: v.Op})
			}
		case *pyast.Call:
			callee, ok := v.Func.(*pyast.Name)
			if !ok {
				return true
			}
			for _, arg := range v.Args {
				if name, ok := arg.(*pyast.Name); ok && name.Id == param {
					out = append(out, Evidence{Kind: EvidenceCallArg, Callee: callee.Id})
				}
			}
		}
		return true
	})
	return out
}
