package pyast

// Parse converts Python source text into a Module. The grammar covered is
// the statement and expression subset needed for structural analysis of
// function and class definitions; it is not a full Python implementation.
// Errors are always of type *ParseError and are fatal for the file.
func Parse(src string) (*Module, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, src: src}
	mod := &Module{}
	mod.StartPos = Pos{Line: 1, Col: 1}
	for !p.at(TokEOF) {
		stmts, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		mod.Body = append(mod.Body, stmts...)
	}
	mod.EndPos = p.cur().Pos
	return mod, nil
}

type parser struct {
	toks []Token
	pos  int
	src  string
	// last marks the end of the most recent significant token, used to
	// close node spans without including trailing NEWLINE/DEDENT tokens.
	last Pos
}

func (p *parser) cur() Token { return p.toks[p.pos] }

func (p *parser) peek(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	switch t.Kind {
	case TokName, TokNumber, TokString, TokOp:
		p.last = t.End
	}
	return t
}

func (p *parser) at(kind TokenKind) bool   { return p.cur().Kind == kind }
func (p *parser) atOp(op string) bool      { return p.cur().IsOp(op) }
func (p *parser) atKeyword(kw string) bool { return p.cur().IsKeyword(kw) }

func (p *parser) eatOp(op string) bool {
	if p.atOp(op) {
		p.next()
		return true
	}
	return false
}

func (p *parser) eatKeyword(kw string) bool {
	if p.atKeyword(kw) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectOp(op string) error {
	if !p.eatOp(op) {
		return errAt(p.cur().Pos, "expected %q, found %q", op, p.cur().Text)
	}
	return nil
}

func (p *parser) expectNewline() error {
	if p.at(TokNewline) {
		p.next()
		return nil
	}
	if p.at(TokEOF) {
		return nil
	}
	return errAt(p.cur().Pos, "expected end of line, found %q", p.cur().Text)
}

func (p *parser) expectName() (Token, error) {
	t := p.cur()
	if t.Kind != TokName || keywords[t.Text] {
		return t, errAt(t.Pos, "expected identifier, found %q", t.Text)
	}
	return p.next(), nil
}

// skipToNewline consumes the rest of the logical line, used for statements
// whose internals the analyzer never needs (imports).
func (p *parser) skipToNewline() {
	for !p.at(TokNewline) && !p.at(TokEOF) {
		p.next()
	}
	if p.at(TokNewline) {
		p.next()
	}
}

// ---- statements ----

// parseStatement parses one statement, which for simple-statement lines may
// expand to several nodes ("a = 1; b = 2").
func (p *parser) parseStatement() ([]Stmt, error) {
	t := p.cur()
	switch {
	case t.IsOp("@"):
		s, err := p.parseDecorated()
		if err != nil {
			return nil, err
		}
		return []Stmt{s}, nil
	case t.IsKeyword("def"):
		s, err := p.parseFunctionDef(nil, t.Pos, false)
		if err != nil {
			return nil, err
		}
		return []Stmt{s}, nil
	case t.IsKeyword("async"):
		return p.parseAsync(nil, t.Pos)
	case t.IsKeyword("class"):
		s, err := p.parseClassDef(nil, t.Pos)
		if err != nil {
			return nil, err
		}
		return []Stmt{s}, nil
	case t.IsKeyword("if"):
		s, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		return []Stmt{s}, nil
	case t.IsKeyword("while"):
		s, err := p.parseWhile()
		if err != nil {
			return nil, err
		}
		return []Stmt{s}, nil
	case t.IsKeyword("for"):
		s, err := p.parseFor(false, t.Pos)
		if err != nil {
			return nil, err
		}
		return []Stmt{s}, nil
	case t.IsKeyword("with"):
		s, err := p.parseWith(false, t.Pos)
		if err != nil {
			return nil, err
		}
		return []Stmt{s}, nil
	case t.IsKeyword("try"):
		s, err := p.parseTry()
		if err != nil {
			return nil, err
		}
		return []Stmt{s}, nil
	case t.IsKeyword("import") || t.IsKeyword("from"):
		start := t.Pos
		p.skipToNewline()
		imp := &Import{}
		imp.StartPos = start
		imp.EndPos = p.last
		return []Stmt{imp}, nil
	default:
		return p.parseSimpleLine()
	}
}

// parseSimpleLine parses semicolon-separated simple statements up to NEWLINE.
func (p *parser) parseSimpleLine() ([]Stmt, error) {
	var out []Stmt
	for {
		s, err := p.parseSimpleStatement()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		if p.eatOp(";") {
			if p.at(TokNewline) || p.at(TokEOF) {
				break
			}
			continue
		}
		break
	}
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parser) parseSimpleStatement() (Stmt, error) {
	t := p.cur()
	start := t.Pos
	switch {
	case t.IsKeyword("return"):
		p.next()
		node := &Return{}
		node.StartPos = start
		if !p.at(TokNewline) && !p.atOp(";") && !p.at(TokEOF) {
			v, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			node.Value = v
		}
		node.EndPos = p.last
		return node, nil
	case t.IsKeyword("raise"):
		p.next()
		node := &Raise{}
		node.StartPos = start
		if !p.at(TokNewline) && !p.atOp(";") && !p.at(TokEOF) {
			exc, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			node.Exc = exc
			if p.eatKeyword("from") {
				cause, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				node.Cause = cause
			}
		}
		node.EndPos = p.last
		return node, nil
	case t.IsKeyword("assert"):
		p.next()
		node := &Assert{}
		node.StartPos = start
		test, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node.Test = test
		if p.eatOp(",") {
			msg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			node.Msg = msg
		}
		node.EndPos = p.last
		return node, nil
	case t.IsKeyword("pass"):
		p.next()
		node := &Pass{}
		node.StartPos, node.EndPos = start, p.last
		return node, nil
	case t.IsKeyword("break"):
		p.next()
		node := &Break{}
		node.StartPos, node.EndPos = start, p.last
		return node, nil
	case t.IsKeyword("continue"):
		p.next()
		node := &Continue{}
		node.StartPos, node.EndPos = start, p.last
		return node, nil
	case t.IsKeyword("del"):
		p.next()
		node := &Delete{}
		node.StartPos = start
		targets, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		if tup, ok := targets.(*Tuple); ok {
			node.Targets = tup.Elts
		} else {
			node.Targets = []Expr{targets}
		}
		node.EndPos = p.last
		return node, nil
	case t.IsKeyword("global") || t.IsKeyword("nonlocal"):
		p.next()
		node := &ScopeDecl{Keyword: t.Text}
		node.StartPos = start
		for {
			name, err := p.expectName()
			if err != nil {
				return nil, err
			}
			node.Names = append(node.Names, name.Text)
			if !p.eatOp(",") {
				break
			}
		}
		node.EndPos = p.last
		return node, nil
	default:
		return p.parseExprStatement()
	}
}

// augOps are the augmented assignment operators recognized as statements.
var augOps = map[string]bool{
	"+=": true, "-=": true, "*=": true, "/=": true, "//=": true, "%=": true,
	"**=": true, ">>=": true, "<<=": true, "&=": true, "|=": true, "^=": true,
	"@=": true,
}

func (p *parser) parseExprStatement() (Stmt, error) {
	start := p.cur().Pos
	first, err := p.parseExprList()
	if err != nil {
		return nil, err
	}

	if p.cur().Kind == TokOp && augOps[p.cur().Text] {
		op := p.next().Text
		value, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		node := &AugAssign{Target: first, Op: op[:len(op)-1], Value: value}
		node.StartPos, node.EndPos = start, p.last
		return node, nil
	}

	if p.atOp(":") {
		p.next()
		ann, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node := &AnnAssign{Target: first, Annotation: ann}
		if p.eatOp("=") {
			value, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			node.Value = value
		}
		node.StartPos, node.EndPos = start, p.last
		return node, nil
	}

	if p.atOp("=") {
		// Chained assignment: all but the last expression are targets.
		exprs := []Expr{first}
		for p.eatOp("=") {
			v, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, v)
		}
		node := &Assign{Targets: exprs[:len(exprs)-1], Value: exprs[len(exprs)-1]}
		node.StartPos, node.EndPos = start, p.last
		return node, nil
	}

	node := &ExprStmt{Value: first}
	node.StartPos, node.EndPos = start, p.last
	return node, nil
}

func (p *parser) parseDecorated() (Stmt, error) {
	start := p.cur().Pos
	var decorators []Expr
	for p.atOp("@") {
		p.next()
		d, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		decorators = append(decorators, d)
		if err := p.expectNewline(); err != nil {
			return nil, err
		}
	}
	switch {
	case p.atKeyword("def"):
		return p.parseFunctionDef(decorators, start, false)
	case p.atKeyword("async"):
		stmts, err := p.parseAsync(decorators, start)
		if err != nil {
			return nil, err
		}
		return stmts[0], nil
	case p.atKeyword("class"):
		return p.parseClassDef(decorators, start)
	default:
		return nil, errAt(p.cur().Pos, "expected def, async def, or class after decorators")
	}
}

func (p *parser) parseAsync(decorators []Expr, start Pos) ([]Stmt, error) {
	asyncTok := p.next() // async
	switch {
	case p.atKeyword("def"):
		fn, err := p.parseFunctionDef(decorators, start, true)
		if err != nil {
			return nil, err
		}
		fn.(*FunctionDef).DefPos = asyncTok.Pos
		return []Stmt{fn}, nil
	case p.atKeyword("for"):
		s, err := p.parseFor(true, start)
		if err != nil {
			return nil, err
		}
		return []Stmt{s}, nil
	case p.atKeyword("with"):
		s, err := p.parseWith(true, start)
		if err != nil {
			return nil, err
		}
		return []Stmt{s}, nil
	default:
		return nil, errAt(p.cur().Pos, "expected def, for, or with after async")
	}
}

func (p *parser) parseFunctionDef(decorators []Expr, start Pos, isAsync bool) (Stmt, error) {
	defTok := p.next() // def
	nameTok, err := p.expectName()
	if err != nil {
		return nil, err
	}
	node := &FunctionDef{
		Name:       nameTok.Text,
		Decorators: decorators,
		IsAsync:    isAsync,
		DefPos:     defTok.Pos,
	}
	node.StartPos = start

	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	params, vararg, kwonly, kwarg, err := p.parseParamList(")")
	if err != nil {
		return nil, err
	}
	node.Params, node.VarArg, node.KwOnly, node.KwArg = params, vararg, kwonly, kwarg
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	if p.eatOp("->") {
		ret, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node.Returns = ret
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node.Body = body
	node.EndPos = p.last
	return node, nil
}

func (p *parser) parseClassDef(decorators []Expr, start Pos) (Stmt, error) {
	defTok := p.next() // class
	nameTok, err := p.expectName()
	if err != nil {
		return nil, err
	}
	node := &ClassDef{Name: nameTok.Text, Decorators: decorators, DefPos: defTok.Pos}
	node.StartPos = start
	if p.eatOp("(") {
		for !p.atOp(")") {
			// Keyword bases (metaclass=...) are parsed and folded in with
			// positional bases; the analyzer only needs names.
			if p.cur().Kind == TokName && p.peek(1).IsOp("=") && !keywords[p.cur().Text] {
				p.next()
				p.next()
			}
			if p.eatOp("**") {
				// **kwargs in a class header
			}
			if p.atOp(")") {
				break
			}
			base, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			node.Bases = append(node.Bases, base)
			if !p.eatOp(",") {
				break
			}
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node.Body = body
	node.EndPos = p.last
	return node, nil
}

// parseParamList parses def/lambda parameters up to (but not consuming) the
// closing delimiter.
func (p *parser) parseParamList(closer string) (params []*Arg, vararg *Arg, kwonly []*Arg, kwarg *Arg, err error) {
	afterStar := false
	for !p.atOp(closer) && !p.at(TokNewline) && !p.at(TokEOF) {
		switch {
		case p.eatOp("/"):
			// Positional-only marker; parameters before it stay as-is.
		case p.atOp("*") && p.peek(1).IsOp(",") || p.atOp("*") && p.peek(1).IsOp(closer):
			p.next()
			afterStar = true
		case p.atOp("*"):
			p.next()
			arg, aerr := p.parseParam(closer)
			if aerr != nil {
				return nil, nil, nil, nil, aerr
			}
			vararg = arg
			afterStar = true
		case p.atOp("**"):
			p.next()
			arg, aerr := p.parseParam(closer)
			if aerr != nil {
				return nil, nil, nil, nil, aerr
			}
			kwarg = arg
		default:
			arg, aerr := p.parseParam(closer)
			if aerr != nil {
				return nil, nil, nil, nil, aerr
			}
			if afterStar {
				kwonly = append(kwonly, arg)
			} else {
				params = append(params, arg)
			}
		}
		if !p.eatOp(",") {
			break
		}
	}
	return params, vararg, kwonly, kwarg, nil
}

func (p *parser) parseParam(closer string) (*Arg, error) {
	nameTok, err := p.expectName()
	if err != nil {
		return nil, err
	}
	arg := &Arg{Name: nameTok.Text}
	arg.StartPos = nameTok.Pos
	if closer == ")" && p.eatOp(":") { // lambda parameters cannot be annotated
		ann, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		arg.Annotation = ann
	}
	if p.eatOp("=") {
		def, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		arg.Default = def
	}
	arg.EndPos = p.last
	return arg, nil
}

func (p *parser) parseIf() (Stmt, error) {
	start := p.next().Pos // if / elif
	node := &If{}
	node.StartPos = start
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	node.Test = test
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node.Body = body
	switch {
	case p.atKeyword("elif"):
		elif, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		node.Orelse = []Stmt{elif}
	case p.atKeyword("else"):
		p.next()
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	node.EndPos = p.last
	return node, nil
}

func (p *parser) parseWhile() (Stmt, error) {
	start := p.next().Pos
	node := &While{}
	node.StartPos = start
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	node.Test = test
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node.Body = body
	if p.eatKeyword("else") {
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	node.EndPos = p.last
	return node, nil
}

func (p *parser) parseFor(isAsync bool, start Pos) (Stmt, error) {
	p.next() // for
	node := &For{IsAsync: isAsync}
	node.StartPos = start
	target, err := p.parseTargetList()
	if err != nil {
		return nil, err
	}
	node.Target = target
	if !p.eatKeyword("in") {
		return nil, errAt(p.cur().Pos, "expected \"in\" in for statement")
	}
	iter, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	node.Iter = iter
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node.Body = body
	if p.eatKeyword("else") {
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	node.EndPos = p.last
	return node, nil
}

func (p *parser) parseWith(isAsync bool, start Pos) (Stmt, error) {
	p.next() // with
	node := &With{IsAsync: isAsync}
	node.StartPos = start
	for {
		ctx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		item := WithItem{ContextExpr: ctx}
		if p.eatKeyword("as") {
			opt, err := p.parseTarget()
			if err != nil {
				return nil, err
			}
			item.Optional = opt
		}
		node.Items = append(node.Items, item)
		if !p.eatOp(",") {
			break
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node.Body = body
	node.EndPos = p.last
	return node, nil
}

func (p *parser) parseTry() (Stmt, error) {
	start := p.next().Pos
	node := &Try{}
	node.StartPos = start
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node.Body = body
	for p.atKeyword("except") {
		hstart := p.next().Pos
		handler := &ExceptHandler{}
		handler.StartPos = hstart
		if !p.atOp(":") {
			typ, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			handler.Type = typ
			if p.eatKeyword("as") {
				name, err := p.expectName()
				if err != nil {
					return nil, err
				}
				handler.Name = name.Text
			}
		}
		hbody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		handler.Body = hbody
		handler.EndPos = p.last
		node.Handlers = append(node.Handlers, handler)
	}
	if p.eatKeyword("else") {
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	if p.eatKeyword("finally") {
		final, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Final = final
	}
	if len(node.Handlers) == 0 && len(node.Final) == 0 {
		return nil, errAt(start, "try statement needs an except or finally clause")
	}
	node.EndPos = p.last
	return node, nil
}

// parseBlock parses a suite after a header: either an indented block or
// simple statements on the header line.
func (p *parser) parseBlock() ([]Stmt, error) {
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	if p.at(TokNewline) {
		p.next()
		if !p.at(TokIndent) {
			return nil, errAt(p.cur().Pos, "expected an indented block")
		}
		p.next()
		var body []Stmt
		for !p.at(TokDedent) && !p.at(TokEOF) {
			stmts, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			body = append(body, stmts...)
		}
		if p.at(TokDedent) {
			p.next()
		}
		return body, nil
	}
	return p.parseSimpleLine()
}

// ---- expressions ----

// parseExprList parses "expr (, expr)* [,]" and wraps multiple elements in
// an unparenthesized Tuple, as in "return a, b".
func (p *parser) parseExprList() (Expr, error) {
	start := p.cur().Pos
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atOp(",") {
		return first, nil
	}
	tup := &Tuple{Elts: []Expr{first}}
	tup.StartPos = start
	for p.eatOp(",") {
		if p.endsExpr() {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		tup.Elts = append(tup.Elts, e)
	}
	tup.EndPos = p.last
	return tup, nil
}

// endsExpr reports whether the current token cannot begin an expression,
// which closes trailing-comma constructs.
func (p *parser) endsExpr() bool {
	t := p.cur()
	if t.Kind == TokNewline || t.Kind == TokEOF || t.Kind == TokDedent {
		return true
	}
	if t.Kind == TokOp {
		switch t.Text {
		case ")", "]", "}", ":", ";", "=", ",":
			return true
		}
		return augOps[t.Text]
	}
	switch t.Text {
	case "in", "if", "else", "for", "as", "from":
		return t.Kind == TokName && keywords[t.Text]
	}
	return false
}

// parseTargetList parses assignment/loop targets, allowing tuples.
func (p *parser) parseTargetList() (Expr, error) {
	start := p.cur().Pos
	first, err := p.parseTarget()
	if err != nil {
		return nil, err
	}
	if !p.atOp(",") {
		return first, nil
	}
	tup := &Tuple{Elts: []Expr{first}}
	tup.StartPos = start
	for p.eatOp(",") {
		if p.endsExpr() {
			break
		}
		e, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		tup.Elts = append(tup.Elts, e)
	}
	tup.EndPos = p.last
	return tup, nil
}

// parseTarget parses a single assignment target (postfix chain, possibly
// starred or parenthesized).
func (p *parser) parseTarget() (Expr, error) {
	if p.atOp("*") {
		start := p.next().Pos
		inner, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		node := &Starred{Value: inner}
		node.StartPos, node.EndPos = start, p.last
		return node, nil
	}
	return p.parsePostfix()
}

// parseExpr parses a full expression: lambda, ternary, yield, or boolean
// precedence chain, plus the walrus operator.
func (p *parser) parseExpr() (Expr, error) {
	if p.atKeyword("lambda") {
		return p.parseLambda()
	}
	if p.atKeyword("yield") {
		return p.parseYield()
	}
	start := p.cur().Pos
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.atOp(":=") {
		p.next()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node := &BinOp{Left: cond, Op: ":=", Right: value}
		node.StartPos, node.EndPos = start, p.last
		return node, nil
	}
	if p.atKeyword("if") {
		p.next()
		test, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.eatKeyword("else") {
			return nil, errAt(p.cur().Pos, "expected \"else\" in conditional expression")
		}
		orelse, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node := &IfExp{Test: test, Body: cond, Orelse: orelse}
		node.StartPos, node.EndPos = start, p.last
		return node, nil
	}
	return cond, nil
}

func (p *parser) parseLambda() (Expr, error) {
	start := p.next().Pos // lambda
	node := &Lambda{}
	node.StartPos = start
	params, _, _, _, err := p.parseParamList(":")
	if err != nil {
		return nil, err
	}
	node.Params = params
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	node.Body = body
	node.EndPos = p.last
	return node, nil
}

func (p *parser) parseYield() (Expr, error) {
	start := p.next().Pos // yield
	node := &Yield{}
	node.StartPos = start
	if p.eatKeyword("from") {
		node.IsFrom = true
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node.Value = v
	} else if !p.endsExpr() {
		v, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		node.Value = v
	}
	node.EndPos = p.last
	return node, nil
}

func (p *parser) parseOr() (Expr, error) {
	start := p.cur().Pos
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("or") {
		return left, nil
	}
	node := &BoolOp{Op: "or", Values: []Expr{left}}
	node.StartPos = start
	for p.eatKeyword("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		node.Values = append(node.Values, right)
	}
	node.EndPos = p.last
	return node, nil
}

func (p *parser) parseAnd() (Expr, error) {
	start := p.cur().Pos
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("and") {
		return left, nil
	}
	node := &BoolOp{Op: "and", Values: []Expr{left}}
	node.StartPos = start
	for p.eatKeyword("and") {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		node.Values = append(node.Values, right)
	}
	node.EndPos = p.last
	return node, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.atKeyword("not") {
		start := p.next().Pos
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		node := &UnaryOp{Op: "not", Operand: operand}
		node.StartPos, node.EndPos = start, p.last
		return node, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expr, error) {
	start := p.cur().Pos
	left, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	var ops []string
	var comparators []Expr
	for {
		op, ok := p.compOp()
		if !ok {
			break
		}
		right, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		comparators = append(comparators, right)
	}
	if len(ops) == 0 {
		return left, nil
	}
	node := &Compare{Left: left, Ops: ops, Comparators: comparators}
	node.StartPos, node.EndPos = start, p.last
	return node, nil
}

// compOp consumes a comparison operator if one is present.
func (p *parser) compOp() (string, bool) {
	t := p.cur()
	if t.Kind == TokOp {
		switch t.Text {
		case "<", ">", "==", "!=", "<=", ">=":
			p.next()
			return t.Text, true
		}
		return "", false
	}
	switch {
	case t.IsKeyword("in"):
		p.next()
		return "in", true
	case t.IsKeyword("not") && p.peek(1).IsKeyword("in"):
		p.next()
		p.next()
		return "not in", true
	case t.IsKeyword("is"):
		p.next()
		if p.eatKeyword("not") {
			return "is not", true
		}
		return "is", true
	}
	return "", false
}

func (p *parser) parseBitOr() (Expr, error) {
	return p.parseBinaryChain(p.parseBitXor, "|")
}

func (p *parser) parseBitXor() (Expr, error) {
	return p.parseBinaryChain(p.parseBitAnd, "^")
}

func (p *parser) parseBitAnd() (Expr, error) {
	return p.parseBinaryChain(p.parseShift, "&")
}

func (p *parser) parseShift() (Expr, error) {
	return p.parseBinaryChain(p.parseArith, "<<", ">>")
}

func (p *parser) parseArith() (Expr, error) {
	return p.parseBinaryChain(p.parseTerm, "+", "-")
}

func (p *parser) parseTerm() (Expr, error) {
	return p.parseBinaryChain(p.parseFactor, "*", "/", "//", "%", "@")
}

func (p *parser) parseBinaryChain(sub func() (Expr, error), ops ...string) (Expr, error) {
	start := p.cur().Pos
	left, err := sub()
	if err != nil {
		return nil, err
	}
	for {
		matched := ""
		for _, op := range ops {
			if p.atOp(op) {
				matched = op
				break
			}
		}
		if matched == "" {
			return left, nil
		}
		p.next()
		right, err := sub()
		if err != nil {
			return nil, err
		}
		node := &BinOp{Left: left, Op: matched, Right: right}
		node.StartPos, node.EndPos = start, p.last
		left = node
	}
}

func (p *parser) parseFactor() (Expr, error) {
	t := p.cur()
	if t.IsOp("+") || t.IsOp("-") || t.IsOp("~") {
		start := p.next().Pos
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		node := &UnaryOp{Op: t.Text, Operand: operand}
		node.StartPos, node.EndPos = start, p.last
		return node, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	start := p.cur().Pos
	base, err := p.parseAwait()
	if err != nil {
		return nil, err
	}
	if p.atOp("**") {
		p.next()
		exp, err := p.parseFactor() // right-associative, allows unary in exponent
		if err != nil {
			return nil, err
		}
		node := &BinOp{Left: base, Op: "**", Right: exp}
		node.StartPos, node.EndPos = start, p.last
		return node, nil
	}
	return base, nil
}

func (p *parser) parseAwait() (Expr, error) {
	if p.atKeyword("await") {
		start := p.next().Pos
		value, err := p.parseAwait()
		if err != nil {
			return nil, err
		}
		node := &Await{Value: value}
		node.StartPos, node.EndPos = start, p.last
		return node, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses an atom followed by call, attribute, and subscript
// trailers.
func (p *parser) parsePostfix() (Expr, error) {
	start := p.cur().Pos
	expr, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.atOp("("):
			p.next()
			call := &Call{Func: expr}
			call.StartPos = start
			if err := p.parseCallArgs(call); err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			call.EndPos = p.last
			expr = call
		case p.atOp("."):
			p.next()
			name, err := p.expectName()
			if err != nil {
				return nil, err
			}
			attr := &Attribute{Value: expr, Attr: name.Text}
			attr.StartPos, attr.EndPos = start, p.last
			expr = attr
		case p.atOp("["):
			p.next()
			index, err := p.parseSubscriptIndex()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp("]"); err != nil {
				return nil, err
			}
			sub := &Subscript{Value: expr, Index: index}
			sub.StartPos, sub.EndPos = start, p.last
			expr = sub
		default:
			return expr, nil
		}
	}
}

func (p *parser) parseCallArgs(call *Call) error {
	for !p.atOp(")") {
		switch {
		case p.atOp("*"):
			p.next()
			v, err := p.parseExpr()
			if err != nil {
				return err
			}
			star := &Starred{Value: v}
			star.StartPos, star.EndPos = v.Start(), p.last
			call.Args = append(call.Args, star)
		case p.atOp("**"):
			p.next()
			v, err := p.parseExpr()
			if err != nil {
				return err
			}
			call.Keywords = append(call.Keywords, Keyword{Value: v})
		case p.cur().Kind == TokName && !keywords[p.cur().Text] && p.peek(1).IsOp("="):
			name := p.next().Text
			p.next() // =
			v, err := p.parseExpr()
			if err != nil {
				return err
			}
			call.Keywords = append(call.Keywords, Keyword{Name: name, Value: v})
		default:
			v, err := p.parseExpr()
			if err != nil {
				return err
			}
			// A generator expression argument: f(x for x in xs)
			if p.atKeyword("for") || p.atKeyword("async") && p.peek(1).IsKeyword("for") {
				comp, err := p.parseCompClauses("generator", v, nil, v.Start())
				if err != nil {
					return err
				}
				call.Args = append(call.Args, comp)
				return nil
			}
			call.Args = append(call.Args, v)
		}
		if !p.eatOp(",") {
			break
		}
	}
	return nil
}

func (p *parser) parseSubscriptIndex() (Expr, error) {
	start := p.cur().Pos
	parseItem := func() (Expr, error) {
		// A slice item may omit any of its three parts.
		var lower, upper, step Expr
		var err error
		if !p.atOp(":") {
			lower, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
			if !p.atOp(":") {
				return lower, nil
			}
		}
		p.next() // first ':'
		if !p.atOp(":") && !p.atOp("]") && !p.atOp(",") {
			upper, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if p.eatOp(":") {
			if !p.atOp("]") && !p.atOp(",") {
				step, err = p.parseExpr()
				if err != nil {
					return nil, err
				}
			}
		}
		node := &SliceExpr{Lower: lower, Upper: upper, Step: step}
		node.StartPos, node.EndPos = start, p.last
		return node, nil
	}

	first, err := parseItem()
	if err != nil {
		return nil, err
	}
	if !p.atOp(",") {
		return first, nil
	}
	tup := &Tuple{Elts: []Expr{first}}
	tup.StartPos = start
	for p.eatOp(",") {
		if p.atOp("]") {
			break
		}
		item, err := parseItem()
		if err != nil {
			return nil, err
		}
		tup.Elts = append(tup.Elts, item)
	}
	tup.EndPos = p.last
	return tup, nil
}

func (p *parser) parseAtom() (Expr, error) {
	t := p.cur()
	switch {
	case t.Kind == TokName && !keywords[t.Text]:
		p.next()
		node := &Name{Id: t.Text}
		node.StartPos, node.EndPos = t.Pos, t.End
		return node, nil
	case t.IsKeyword("True") || t.IsKeyword("False") || t.IsKeyword("None"):
		p.next()
		node := &Name{Id: t.Text}
		node.StartPos, node.EndPos = t.Pos, t.End
		return node, nil
	case t.Kind == TokNumber:
		p.next()
		isFloat := false
		for i := 0; i < len(t.Text); i++ {
			if t.Text[i] == '.' || t.Text[i] == 'e' || t.Text[i] == 'E' {
				if len(t.Text) > 1 && (t.Text[1] == 'x' || t.Text[1] == 'X') {
					break
				}
				isFloat = true
				break
			}
		}
		node := &Num{Literal: t.Text, IsFloat: isFloat}
		node.StartPos, node.EndPos = t.Pos, t.End
		return node, nil
	case t.Kind == TokString:
		return p.parseStringAtom()
	case t.IsOp("("):
		return p.parseParenAtom()
	case t.IsOp("["):
		return p.parseListAtom()
	case t.IsOp("{"):
		return p.parseBraceAtom()
	case t.IsOp("..."):
		p.next()
		node := &Name{Id: "..."}
		node.StartPos, node.EndPos = t.Pos, t.End
		return node, nil
	case t.IsOp("*"):
		// Starred expression outside a call, e.g. [*xs, 1].
		p.next()
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node := &Starred{Value: v}
		node.StartPos, node.EndPos = t.Pos, p.last
		return node, nil
	case t.IsKeyword("lambda"):
		return p.parseLambda()
	default:
		return nil, errAt(t.Pos, "unexpected token %q", t.Text)
	}
}

// parseStringAtom handles implicit concatenation of adjacent literals; the
// combined node spans from the first literal to the last.
func (p *parser) parseStringAtom() (Expr, error) {
	first := p.next()
	node := &Str{Value: first.Value}
	node.StartPos, node.EndPos = first.Pos, first.End
	for p.at(TokString) {
		next := p.next()
		node.Value += next.Value
		node.EndPos = next.End
	}
	return node, nil
}

func (p *parser) parseParenAtom() (Expr, error) {
	open := p.next() // (
	if p.atOp(")") {
		p.next()
		node := &Tuple{}
		node.StartPos, node.EndPos = open.Pos, p.last
		return node, nil
	}
	if p.atKeyword("yield") {
		inner, err := p.parseYield()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.atKeyword("for") || p.atKeyword("async") && p.peek(1).IsKeyword("for") {
		comp, err := p.parseCompClauses("generator", first, nil, open.Pos)
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		comp.EndPos = p.last
		return comp, nil
	}
	if p.atOp(",") {
		tup := &Tuple{Elts: []Expr{first}}
		tup.StartPos = open.Pos
		for p.eatOp(",") {
			if p.atOp(")") {
				break
			}
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			tup.Elts = append(tup.Elts, e)
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		tup.EndPos = p.last
		return tup, nil
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	// Parenthesized expression: keep the inner node, positions and all.
	return first, nil
}

func (p *parser) parseListAtom() (Expr, error) {
	open := p.next() // [
	if p.atOp("]") {
		p.next()
		node := &List{}
		node.StartPos, node.EndPos = open.Pos, p.last
		return node, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.atKeyword("for") || p.atKeyword("async") && p.peek(1).IsKeyword("for") {
		comp, err := p.parseCompClauses("list", first, nil, open.Pos)
		if err != nil {
			return nil, err
		}
		if err := p.expectOp("]"); err != nil {
			return nil, err
		}
		comp.EndPos = p.last
		return comp, nil
	}
	node := &List{Elts: []Expr{first}}
	node.StartPos = open.Pos
	for p.eatOp(",") {
		if p.atOp("]") {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node.Elts = append(node.Elts, e)
	}
	if err := p.expectOp("]"); err != nil {
		return nil, err
	}
	node.EndPos = p.last
	return node, nil
}

func (p *parser) parseBraceAtom() (Expr, error) {
	open := p.next() // {
	if p.atOp("}") {
		p.next()
		node := &Dict{}
		node.StartPos, node.EndPos = open.Pos, p.last
		return node, nil
	}
	if p.atOp("**") {
		p.next()
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node := &Dict{Keys: []Expr{nil}, Values: []Expr{v}}
		node.StartPos = open.Pos
		if err := p.finishDict(node); err != nil {
			return nil, err
		}
		return node, nil
	}

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.atOp(":") {
		p.next()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.atKeyword("for") || p.atKeyword("async") && p.peek(1).IsKeyword("for") {
			comp, err := p.parseCompClauses("dict", first, value, open.Pos)
			if err != nil {
				return nil, err
			}
			if err := p.expectOp("}"); err != nil {
				return nil, err
			}
			comp.EndPos = p.last
			return comp, nil
		}
		node := &Dict{Keys: []Expr{first}, Values: []Expr{value}}
		node.StartPos = open.Pos
		if err := p.finishDict(node); err != nil {
			return nil, err
		}
		return node, nil
	}
	if p.atKeyword("for") || p.atKeyword("async") && p.peek(1).IsKeyword("for") {
		comp, err := p.parseCompClauses("set", first, nil, open.Pos)
		if err != nil {
			return nil, err
		}
		if err := p.expectOp("}"); err != nil {
			return nil, err
		}
		comp.EndPos = p.last
		return comp, nil
	}
	node := &Set{Elts: []Expr{first}}
	node.StartPos = open.Pos
	for p.eatOp(",") {
		if p.atOp("}") {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node.Elts = append(node.Elts, e)
	}
	if err := p.expectOp("}"); err != nil {
		return nil, err
	}
	node.EndPos = p.last
	return node, nil
}

func (p *parser) finishDict(node *Dict) error {
	for p.eatOp(",") {
		if p.atOp("}") {
			break
		}
		if p.eatOp("**") {
			v, err := p.parseExpr()
			if err != nil {
				return err
			}
			node.Keys = append(node.Keys, nil)
			node.Values = append(node.Values, v)
			continue
		}
		k, err := p.parseExpr()
		if err != nil {
			return err
		}
		if err := p.expectOp(":"); err != nil {
			return err
		}
		v, err := p.parseExpr()
		if err != nil {
			return err
		}
		node.Keys = append(node.Keys, k)
		node.Values = append(node.Values, v)
	}
	if err := p.expectOp("}"); err != nil {
		return err
	}
	node.EndPos = p.last
	return nil
}

// parseCompClauses parses the for/if clauses of a comprehension whose
// element expression(s) have already been parsed.
func (p *parser) parseCompClauses(kind string, elt, value Expr, start Pos) (*Comp, error) {
	node := &Comp{Kind: kind, Elt: elt, Value: value}
	node.StartPos = start
	for {
		isAsync := false
		if p.atKeyword("async") && p.peek(1).IsKeyword("for") {
			p.next()
			isAsync = true
		}
		if !p.eatKeyword("for") {
			break
		}
		target, err := p.parseTargetList()
		if err != nil {
			return nil, err
		}
		if !p.eatKeyword("in") {
			return nil, errAt(p.cur().Pos, "expected \"in\" in comprehension")
		}
		iter, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		clause := CompFor{Target: target, Iter: iter, IsAsync: isAsync}
		for p.atKeyword("if") {
			p.next()
			cond, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			clause.Ifs = append(clause.Ifs, cond)
		}
		node.Fors = append(node.Fors, clause)
	}
	node.EndPos = p.last
	return node, nil
}
