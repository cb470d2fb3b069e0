package pyast

// Node is implemented by every syntax tree node. Spans are byte-accurate so
// callers can slice verbatim source text and compute injection points.
type Node interface {
	Start() Pos
	End() Pos
}

type span struct {
	StartPos Pos
	EndPos   Pos
}

func (s span) Start() Pos { return s.StartPos }
func (s span) End() Pos   { return s.EndPos }

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Module is the root of a parsed source file.
type Module struct {
	span
	Body []Stmt
}

// Arg is one formal parameter of a function definition.
type Arg struct {
	span
	Name       string
	Annotation Expr // nil when unannotated
	Default    Expr // nil when no default
}

// FunctionDef is a def or async def statement. The node span includes any
// decorators; DefPos marks the def keyword itself (or the async that
// precedes it), which is what line numbers are reported from.
type FunctionDef struct {
	span
	DefPos     Pos
	Name       string
	Params     []*Arg // positional-or-keyword parameters, declaration order
	VarArg     *Arg   // *args, nil when absent
	KwOnly     []*Arg // keyword-only parameters after *
	KwArg      *Arg   // **kwargs, nil when absent
	Returns    Expr   // -> annotation, nil when absent
	Body       []Stmt
	Decorators []Expr
	IsAsync    bool
}

// ClassDef is a class statement; span and DefPos follow FunctionDef's rules.
type ClassDef struct {
	span
	DefPos     Pos
	Name       string
	Bases      []Expr
	Body       []Stmt
	Decorators []Expr
}

// Return is a return statement; Value is nil for a bare return.
type Return struct {
	span
	Value Expr
}

// Raise is a raise statement; Exc is nil for a bare re-raise.
type Raise struct {
	span
	Exc   Expr
	Cause Expr // raise X from Y
}

// If covers if/elif/else chains; an elif becomes a nested If in Orelse.
type If struct {
	span
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

type While struct {
	span
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

type For struct {
	span
	Target  Expr
	Iter    Expr
	Body    []Stmt
	Orelse  []Stmt
	IsAsync bool
}

// WithItem is one "expr as target" clause of a with statement.
type WithItem struct {
	ContextExpr Expr
	Optional    Expr // as-target, nil when absent
}

type With struct {
	span
	Items   []WithItem
	Body    []Stmt
	IsAsync bool
}

// ExceptHandler is one except clause of a try statement.
type ExceptHandler struct {
	span
	Type Expr // nil for a bare except
	Name string
	Body []Stmt
}

type Try struct {
	span
	Body     []Stmt
	Handlers []*ExceptHandler
	Orelse   []Stmt
	Final    []Stmt
}

type Assert struct {
	span
	Test Expr
	Msg  Expr
}

type Assign struct {
	span
	Targets []Expr
	Value   Expr
}

type AugAssign struct {
	span
	Target Expr
	Op     string
	Value  Expr
}

type AnnAssign struct {
	span
	Target     Expr
	Annotation Expr
	Value      Expr // nil for a bare declaration
}

// ExprStmt is an expression used as a statement; docstrings are ExprStmts
// whose Value is a Str.
type ExprStmt struct {
	span
	Value Expr
}

type Pass struct{ span }
type Break struct{ span }
type Continue struct{ span }

type Delete struct {
	span
	Targets []Expr
}

// Import covers both import and from-import statements; the analyzer never
// inspects their internals, so only the raw span is kept.
type Import struct{ span }

// ScopeDecl covers global and nonlocal declarations.
type ScopeDecl struct {
	span
	Keyword string
	Names   []string
}

func (*FunctionDef) stmtNode()   {}
func (*ClassDef) stmtNode()      {}
func (*Return) stmtNode()        {}
func (*Raise) stmtNode()         {}
func (*If) stmtNode()            {}
func (*While) stmtNode()         {}
func (*For) stmtNode()           {}
func (*With) stmtNode()          {}
func (*Try) stmtNode()           {}
func (*Assert) stmtNode()        {}
func (*Assign) stmtNode()        {}
func (*AugAssign) stmtNode()     {}
func (*AnnAssign) stmtNode()     {}
func (*ExprStmt) stmtNode()      {}
func (*Pass) stmtNode()          {}
func (*Break) stmtNode()         {}
func (*Continue) stmtNode()      {}
func (*Delete) stmtNode()        {}
func (*Import) stmtNode()        {}
func (*ScopeDecl) stmtNode()     {}
func (*ExceptHandler) stmtNode() {}

// Name is an identifier, including the constants True/False/None.
type Name struct {
	span
	Id string
}

type Num struct {
	span
	Literal string
	IsFloat bool
}

// Str is a string literal; Value is the decoded content while the node span
// covers the literal verbatim, quotes and prefix included.
type Str struct {
	span
	Value string
}

// BinOp is a binary arithmetic or bitwise operation.
type BinOp struct {
	span
	Left  Expr
	Op    string
	Right Expr
}

// BoolOp is an and/or chain, flattened the way Python's ast module does it.
type BoolOp struct {
	span
	Op     string // "and" or "or"
	Values []Expr
}

type UnaryOp struct {
	span
	Op      string
	Operand Expr
}

type Compare struct {
	span
	Left        Expr
	Ops         []string
	Comparators []Expr
}

// Keyword is a name=value argument in a call.
type Keyword struct {
	Name  string // empty for **expr
	Value Expr
}

type Call struct {
	span
	Func     Expr
	Args     []Expr
	Keywords []Keyword
}

type Attribute struct {
	span
	Value Expr
	Attr  string
}

type Subscript struct {
	span
	Value Expr
	Index Expr
}

// SliceExpr is a [lower:upper:step] slice inside a subscript.
type SliceExpr struct {
	span
	Lower Expr
	Upper Expr
	Step  Expr
}

type Tuple struct {
	span
	Elts []Expr
}

type List struct {
	span
	Elts []Expr
}

type Dict struct {
	span
	Keys   []Expr // nil entry for **expansion
	Values []Expr
}

type Set struct {
	span
	Elts []Expr
}

type Lambda struct {
	span
	Params []*Arg
	Body   Expr
}

// IfExp is a conditional expression: body if test else orelse.
type IfExp struct {
	span
	Test   Expr
	Body   Expr
	Orelse Expr
}

// Yield covers both yield and yield-from; Value may be nil.
type Yield struct {
	span
	Value  Expr
	IsFrom bool
}

type Await struct {
	span
	Value Expr
}

type Starred struct {
	span
	Value Expr
}

// CompFor is one "for target in iter [if cond]*" clause of a comprehension.
type CompFor struct {
	Target  Expr
	Iter    Expr
	Ifs     []Expr
	IsAsync bool
}

// Comp is a list/set/dict/generator comprehension. For dict comprehensions
// Elt is the key and Value the mapped expression; otherwise Value is nil.
type Comp struct {
	span
	Kind  string // "list", "set", "dict", "generator"
	Elt   Expr
	Value Expr
	Fors  []CompFor
}

func (*Name) exprNode()      {}
func (*Num) exprNode()       {}
func (*Str) exprNode()       {}
func (*BinOp) exprNode()     {}
func (*BoolOp) exprNode()    {}
func (*UnaryOp) exprNode()   {}
func (*Compare) exprNode()   {}
func (*Call) exprNode()      {}
func (*Attribute) exprNode() {}
func (*Subscript) exprNode() {}
func (*SliceExpr) exprNode() {}
func (*Tuple) exprNode()     {}
func (*List) exprNode()      {}
func (*Dict) exprNode()      {}
func (*Set) exprNode()       {}
func (*Lambda) exprNode()    {}
func (*IfExp) exprNode()     {}
func (*Yield) exprNode()     {}
func (*Await) exprNode()     {}
func (*Starred) exprNode()   {}
func (*Comp) exprNode()      {}
