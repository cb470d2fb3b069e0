package pyast

// Walk visits n and its children in pre-order. If visit returns false the
// node's children are skipped. Nil nodes are never visited.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, child := range children(n) {
		Walk(child, visit)
	}
}

func children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			// Typed nils arrive here as non-nil interfaces wrapping nil
			// pointers only if callers pass them explicitly; the parser
			// never stores typed nils, so a plain nil check suffices.
			if c != nil {
				out = append(out, c)
			}
		}
	}
	addStmts := func(stmts []Stmt) {
		for _, s := range stmts {
			add(s)
		}
	}
	addExprs := func(exprs []Expr) {
		for _, e := range exprs {
			add(e)
		}
	}
	addArgs := func(args []*Arg) {
		for _, a := range args {
			if a == nil {
				continue
			}
			add(a.Annotation, a.Default)
		}
	}

	switch v := n.(type) {
	case *Module:
		addStmts(v.Body)
	case *FunctionDef:
		addExprs(v.Decorators)
		addArgs(v.Params)
		if v.VarArg != nil {
			add(v.VarArg.Annotation)
		}
		addArgs(v.KwOnly)
		if v.KwArg != nil {
			add(v.KwArg.Annotation)
		}
		add(v.Returns)
		addStmts(v.Body)
	case *ClassDef:
		addExprs(v.Decorators)
		addExprs(v.Bases)
		addStmts(v.Body)
	case *Return:
		add(v.Value)
	case *Raise:
		add(v.Exc, v.Cause)
	case *If:
		add(v.Test)
		addStmts(v.Body)
		addStmts(v.Orelse)
	case *While:
		add(v.Test)
		addStmts(v.Body)
		addStmts(v.Orelse)
	case *For:
		add(v.Target, v.Iter)
		addStmts(v.Body)
		addStmts(v.Orelse)
	case *With:
		for _, item := range v.Items {
			add(item.ContextExpr, item.Optional)
		}
		addStmts(v.Body)
	case *Try:
		addStmts(v.Body)
		for _, h := range v.Handlers {
			add(h)
		}
		addStmts(v.Orelse)
		addStmts(v.Final)
	case *ExceptHandler:
		add(v.Type)
		addStmts(v.Body)
	case *Assert:
		add(v.Test, v.Msg)
	case *Assign:
		addExprs(v.Targets)
		add(v.Value)
	case *AugAssign:
		add(v.Target, v.Value)
	case *AnnAssign:
		add(v.Target, v.Annotation, v.Value)
	case *ExprStmt:
		add(v.Value)
	case *Delete:
		addExprs(v.Targets)
	case *BinOp:
		add(v.Left, v.Right)
	case *BoolOp:
		addExprs(v.Values)
	case *UnaryOp:
		add(v.Operand)
	case *Compare:
		add(v.Left)
		addExprs(v.Comparators)
	case *Call:
		add(v.Func)
		addExprs(v.Args)
		for _, kw := range v.Keywords {
			add(kw.Value)
		}
	case *Attribute:
		add(v.Value)
	case *Subscript:
		add(v.Value, v.Index)
	case *SliceExpr:
		add(v.Lower, v.Upper, v.Step)
	case *Tuple:
		addExprs(v.Elts)
	case *List:
		addExprs(v.Elts)
	case *Set:
		addExprs(v.Elts)
	case *Dict:
		addExprs(v.Keys)
		addExprs(v.Values)
	case *Lambda:
		addArgs(v.Params)
		add(v.Body)
	case *IfExp:
		add(v.Test, v.Body, v.Orelse)
	case *Yield:
		add(v.Value)
	case *Await:
		add(v.Value)
	case *Starred:
		add(v.Value)
	case *Comp:
		add(v.Elt, v.Value)
		for _, f := range v.Fors {
			add(f.Target, f.Iter)
			addExprs(f.Ifs)
		}
	}
	return out
}
