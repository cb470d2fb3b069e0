package pyast

import "fmt"

// Pos is a position in the source text. Offset is a byte offset, Line and
// Col are 1-based.
type Pos struct {
	Offset int
	Line   int
	Col    int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// TokenKind classifies lexer output.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokName
	TokNumber
	TokString
	TokOp
	TokNewline
	TokIndent
	TokDedent
)

func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "EOF"
	case TokName:
		return "NAME"
	case TokNumber:
		return "NUMBER"
	case TokString:
		return "STRING"
	case TokOp:
		return "OP"
	case TokNewline:
		return "NEWLINE"
	case TokIndent:
		return "INDENT"
	case TokDedent:
		return "DEDENT"
	default:
		return "UNKNOWN"
	}
}

// Token is one lexical unit. For TokString, Value holds the decoded string
// content while the Pos/End span still covers the literal including quotes
// and prefix.
type Token struct {
	Kind  TokenKind
	Text  string // verbatim source text of the token
	Value string // decoded content for strings, same as Text otherwise
	Pos   Pos
	End   Pos
}

// keywords is the set of reserved words the parser dispatches on.
var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true, "elif": true,
	"else": true, "except": true, "finally": true, "for": true, "from": true,
	"global": true, "if": true, "import": true, "in": true, "is": true,
	"lambda": true, "nonlocal": true, "not": true, "or": true, "pass": true,
	"raise": true, "return": true, "try": true, "while": true, "with": true,
	"yield": true,
}

// IsKeyword reports whether the token is the given reserved word.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == TokName && t.Text == kw && keywords[kw]
}

// IsOp reports whether the token is the given operator or delimiter.
func (t Token) IsOp(op string) bool {
	return t.Kind == TokOp && t.Text == op
}
