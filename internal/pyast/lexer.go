package pyast

import (
	"fmt"
	"strings"
)

// ParseError reports a lexical or syntactic error in the source text. It is
// fatal for the file: callers must not retry.
type ParseError struct {
	Pos Pos
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Col, e.Msg)
}

func errAt(pos Pos, format string, args ...any) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// tabWidth follows CPython's tokenizer: a tab advances to the next multiple
// of eight columns for indentation purposes.
const tabWidth = 8

// operators, longest first so the lexer can greedily match.
var operators = []string{
	"**=", "//=", ">>=", "<<=", "...",
	"==", "!=", ">=", "<=", "->", ":=",
	"+=", "-=", "*=", "/=", "%=", "@=", "&=", "|=", "^=",
	"**", "//", ">>", "<<",
	"+", "-", "*", "/", "%", "@", "<", ">", "&", "|", "^", "~",
	"(", ")", "[", "]", "{", "}", ",", ":", ".", ";", "=",
}

type lexer struct {
	src    string
	off    int
	line   int
	col    int
	parens int
	indent []int
	toks   []Token
}

// tokenize converts source text into a token stream with INDENT/DEDENT
// bookkeeping, implicit line joining inside brackets, and comment stripping.
func tokenize(src string) ([]Token, error) {
	lx := &lexer{src: src, line: 1, col: 1, indent: []int{0}}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.toks, nil
}

func (lx *lexer) pos() Pos {
	return Pos{Offset: lx.off, Line: lx.line, Col: lx.col}
}

func (lx *lexer) eof() bool { return lx.off >= len(lx.src) }

func (lx *lexer) peek() byte {
	if lx.eof() {
		return 0
	}
	return lx.src[lx.off]
}

func (lx *lexer) peekAt(n int) byte {
	if lx.off+n >= len(lx.src) {
		return 0
	}
	return lx.src[lx.off+n]
}

// advance consumes one byte, maintaining line/col.
func (lx *lexer) advance() byte {
	c := lx.src[lx.off]
	lx.off++
	if c == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return c
}

func (lx *lexer) emit(kind TokenKind, start Pos, value string) {
	text := lx.src[start.Offset:lx.off]
	if value == "" {
		value = text
	}
	lx.toks = append(lx.toks, Token{Kind: kind, Text: text, Value: value, Pos: start, End: lx.pos()})
}

func (lx *lexer) run() error {
	atLineStart := true
	for !lx.eof() {
		if atLineStart && lx.parens == 0 {
			blank, err := lx.handleIndentation()
			if err != nil {
				return err
			}
			if blank {
				continue
			}
			atLineStart = false
		}

		c := lx.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			lx.advance()
		case c == '#':
			for !lx.eof() && lx.peek() != '\n' {
				lx.advance()
			}
		case c == '\\' && lx.peekAt(1) == '\n':
			lx.advance()
			lx.advance()
		case c == '\n':
			start := lx.pos()
			lx.advance()
			if lx.parens == 0 {
				lx.emit(TokNewline, start, "")
				atLineStart = true
			}
		case isStringStart(lx.src[lx.off:]):
			if err := lx.lexString(); err != nil {
				return err
			}
		case isNameStart(c):
			lx.lexName()
		case isDigit(c) || (c == '.' && isDigit(lx.peekAt(1))):
			lx.lexNumber()
		default:
			if !lx.lexOperator() {
				return errAt(lx.pos(), "unexpected character %q", string(c))
			}
		}
	}

	// Close any open logical line, then unwind the indent stack.
	if n := len(lx.toks); n > 0 && lx.toks[n-1].Kind != TokNewline {
		lx.emit(TokNewline, lx.pos(), "")
	}
	for len(lx.indent) > 1 {
		lx.indent = lx.indent[:len(lx.indent)-1]
		lx.emit(TokDedent, lx.pos(), "")
	}
	lx.emit(TokEOF, lx.pos(), "")
	return nil
}

// handleIndentation measures leading whitespace at a logical line start and
// emits INDENT/DEDENT tokens. Blank and comment-only lines are consumed
// without affecting the indent stack; it returns true for those.
func (lx *lexer) handleIndentation() (blank bool, err error) {
	width := 0
	for !lx.eof() {
		switch lx.peek() {
		case ' ':
			width++
			lx.advance()
		case '\t':
			width += tabWidth - width%tabWidth
			lx.advance()
		case '\r':
			lx.advance()
		default:
			goto measured
		}
	}
measured:
	if lx.eof() {
		return true, nil
	}
	if lx.peek() == '\n' {
		lx.advance()
		return true, nil
	}
	if lx.peek() == '#' {
		for !lx.eof() && lx.peek() != '\n' {
			lx.advance()
		}
		return true, nil
	}

	top := lx.indent[len(lx.indent)-1]
	switch {
	case width > top:
		lx.indent = append(lx.indent, width)
		lx.emit(TokIndent, lx.pos(), "")
	case width < top:
		for len(lx.indent) > 1 && lx.indent[len(lx.indent)-1] > width {
			lx.indent = lx.indent[:len(lx.indent)-1]
			lx.emit(TokDedent, lx.pos(), "")
		}
		if lx.indent[len(lx.indent)-1] != width {
			return false, errAt(lx.pos(), "unindent does not match any outer indentation level")
		}
	}
	return false, nil
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isStringStart reports whether the remaining input begins a string literal,
// including any r/b/f/u prefix combination.
func isStringStart(rest string) bool {
	i := 0
	for i < len(rest) && i < 3 && strings.ContainsRune("rbfuRBFU", rune(rest[i])) {
		i++
	}
	return i < len(rest) && (rest[i] == '"' || rest[i] == '\'')
}

func (lx *lexer) lexName() {
	start := lx.pos()
	for !lx.eof() && isNameChar(lx.peek()) {
		lx.advance()
	}
	lx.emit(TokName, start, "")
}

func (lx *lexer) lexNumber() {
	start := lx.pos()
	if lx.peek() == '0' && (lx.peekAt(1) == 'x' || lx.peekAt(1) == 'X' ||
		lx.peekAt(1) == 'o' || lx.peekAt(1) == 'O' ||
		lx.peekAt(1) == 'b' || lx.peekAt(1) == 'B') {
		lx.advance()
		lx.advance()
		for !lx.eof() && (isNameChar(lx.peek()) || lx.peek() == '_') {
			lx.advance()
		}
		lx.emit(TokNumber, start, "")
		return
	}
	digits := func() {
		for !lx.eof() && (isDigit(lx.peek()) || lx.peek() == '_') {
			lx.advance()
		}
	}
	digits()
	if !lx.eof() && lx.peek() == '.' && isDigit(lx.peekAt(1)) {
		lx.advance()
		digits()
	} else if !lx.eof() && lx.peek() == '.' && !isNameStart(lx.peekAt(1)) && lx.peekAt(1) != '.' {
		lx.advance()
		digits()
	}
	if !lx.eof() && (lx.peek() == 'e' || lx.peek() == 'E') {
		next := lx.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(lx.peekAt(2))) {
			lx.advance()
			if lx.peek() == '+' || lx.peek() == '-' {
				lx.advance()
			}
			digits()
		}
	}
	if !lx.eof() && (lx.peek() == 'j' || lx.peek() == 'J') {
		lx.advance()
	}
	lx.emit(TokNumber, start, "")
}

func (lx *lexer) lexString() error {
	start := lx.pos()
	raw := false
	for !lx.eof() && lx.peek() != '"' && lx.peek() != '\'' {
		c := lx.advance()
		if c == 'r' || c == 'R' {
			raw = true
		}
	}
	if lx.eof() {
		return errAt(start, "unterminated string literal")
	}
	quote := lx.advance()
	triple := false
	if lx.peek() == quote && lx.peekAt(1) == quote {
		lx.advance()
		lx.advance()
		triple = true
	} else if lx.peek() == quote {
		// Empty single-quoted string.
		lx.advance()
		lx.emitString(start, "")
		return nil
	}

	var content strings.Builder
	for {
		if lx.eof() {
			return errAt(start, "unterminated string literal")
		}
		c := lx.peek()
		if c == '\n' && !triple {
			return errAt(lx.pos(), "newline in single-quoted string")
		}
		if c == '\\' && lx.off+1 < len(lx.src) {
			lx.advance()
			esc := lx.advance()
			if raw {
				content.WriteByte('\\')
				content.WriteByte(esc)
			} else {
				content.WriteString(decodeEscape(esc))
			}
			continue
		}
		if c == quote {
			if !triple {
				lx.advance()
				break
			}
			if lx.peekAt(1) == quote && lx.peekAt(2) == quote {
				lx.advance()
				lx.advance()
				lx.advance()
				break
			}
		}
		content.WriteByte(lx.advance())
	}
	lx.emitString(start, content.String())
	return nil
}

// emitString records a string token whose decoded value may legitimately be
// empty, so it bypasses emit's value-defaulting.
func (lx *lexer) emitString(start Pos, value string) {
	text := lx.src[start.Offset:lx.off]
	lx.toks = append(lx.toks, Token{Kind: TokString, Text: text, Value: value, Pos: start, End: lx.pos()})
}

func decodeEscape(c byte) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\':
		return "\\"
	case '\'':
		return "'"
	case '"':
		return "\""
	case '\n':
		return "" // line continuation inside a literal
	default:
		return "\\" + string(c)
	}
}

func (lx *lexer) lexOperator() bool {
	rest := lx.src[lx.off:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			start := lx.pos()
			for range op {
				lx.advance()
			}
			switch op {
			case "(", "[", "{":
				lx.parens++
			case ")", "]", "}":
				if lx.parens > 0 {
					lx.parens--
				}
			}
			lx.emit(TokOp, start, "")
			return true
		}
	}
	return false
}
