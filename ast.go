package hazel

// pos is the source position embedded in every AST node.
type pos struct {
	Line, Col int
}

func (p pos) Pos() pos { return p }

// Expr is an expression node.
type Expr interface {
	Pos() pos
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Pos() pos
	stmtNode()
}

// Expressions.
type (
	// IntLit is an integer literal.
	IntLit struct {
		pos
		Value int64
	}
	// FloatLit is a floating point literal.
	FloatLit struct {
		pos
		Value float64
	}
	// StringLit is a string literal with escapes already applied.
	StringLit struct {
		pos
		Value string
	}
	// BoolLit is true or false.
	BoolLit struct {
		pos
		Value bool
	}
	// NullLit is the null literal.
	NullLit struct {
		pos
	}
	// VariableExpr reads a name, which may be dotted (obj.attr).
	VariableExpr struct {
		pos
		Name string
	}
	// BinaryExpr applies a binary operator.
	BinaryExpr struct {
		pos
		Op          string
		Left, Right Expr
	}
	// UnaryExpr applies a prefix operator (currently only !).
	UnaryExpr struct {
		pos
		Op      string
		Operand Expr
	}
	// CallExpr invokes a function. Either Name is set, for calls through
	// an identifier resolved at run time, or Callee is set, for calling
	// the result of an expression.
	CallExpr struct {
		pos
		Name   string
		Callee Expr
		Args   []Expr
	}
	// MethodCallExpr invokes a method or reads a member of a receiver.
	// A member read parses as a call with no arguments; the evaluator
	// tries a method first and falls back to the attribute.
	MethodCallExpr struct {
		pos
		Recv   Expr
		Method string
		Args   []Expr
	}
	// ArrayLit is an array literal.
	ArrayLit struct {
		pos
		Elems []Expr
	}
	// DictLit is a dict literal. Keys and Values are parallel and keep
	// source order.
	DictLit struct {
		pos
		DictKeys []string
		Values   []Expr
	}
	// IndexExpr reads an element of an array, dict or string.
	IndexExpr struct {
		pos
		Target Expr
		Index  Expr
	}
	// ArrowFuncExpr is a closure literal: (params) => body.
	ArrowFuncExpr struct {
		pos
		Params []string
		Body   *BlockStmt
	}
	// PrefixIncExpr is ++x, yielding the new value.
	PrefixIncExpr struct {
		pos
		Operand Expr
	}
	// PostfixIncExpr is x++, yielding the old value.
	PostfixIncExpr struct {
		pos
		Operand Expr
	}
)

func (*IntLit) exprNode()         {}
func (*FloatLit) exprNode()       {}
func (*StringLit) exprNode()      {}
func (*BoolLit) exprNode()        {}
func (*NullLit) exprNode()        {}
func (*VariableExpr) exprNode()   {}
func (*BinaryExpr) exprNode()     {}
func (*UnaryExpr) exprNode()      {}
func (*CallExpr) exprNode()       {}
func (*MethodCallExpr) exprNode() {}
func (*ArrayLit) exprNode()       {}
func (*DictLit) exprNode()        {}
func (*IndexExpr) exprNode()      {}
func (*ArrowFuncExpr) exprNode()  {}
func (*PrefixIncExpr) exprNode()  {}
func (*PostfixIncExpr) exprNode() {}

// Statements.
type (
	// BlockStmt is a statement sequence.
	BlockStmt struct {
		pos
		Stmts []Stmt
	}
	// AssignStmt assigns to a name. The target may be a two-segment
	// dotted name (obj.attr); everything after the first dot is one
	// literal attribute key.
	AssignStmt struct {
		pos
		Target string
		Value  Expr
	}
	// IndexAssignStmt assigns to an element: name[i] = v or
	// name.attr[i] = v, with the same dotted target rule as AssignStmt.
	IndexAssignStmt struct {
		pos
		Target string
		Index  Expr
		Value  Expr
	}
	// EchoStmt prints a value.
	EchoStmt struct {
		pos
		Value Expr
	}
	// ReturnStmt exits the current call. Value may be nil.
	ReturnStmt struct {
		pos
		Value Expr
	}
	// IfStmt branches. Else may be nil.
	IfStmt struct {
		pos
		Cond Expr
		Then *BlockStmt
		Else *BlockStmt
	}
	// WhileStmt loops while a condition holds.
	WhileStmt struct {
		pos
		Cond Expr
		Body *BlockStmt
	}
	// ForInStmt iterates array elements, dict keys or string characters.
	ForInStmt struct {
		pos
		Var      string
		Iterable Expr
		Body     *BlockStmt
	}
	// CatchClause handles failures matching Kind; an empty Kind catches
	// everything. Var binds the failure value.
	CatchClause struct {
		Kind string
		Var  string
		Body *BlockStmt
	}
	// TryStmt runs Try, dispatching failures to Catches in order.
	// Finally, if present, always runs and its control flow overrides
	// the pending outcome.
	TryStmt struct {
		pos
		Try     *BlockStmt
		Catches []CatchClause
		Finally *BlockStmt
	}
	// ThrowStmt raises a runtime failure. Value may be nil.
	ThrowStmt struct {
		pos
		Value Expr
	}
	// ImportStmt loads a module into scope, optionally under an alias.
	ImportStmt struct {
		pos
		Module string
		Alias  string
	}
	// BreakStmt exits the innermost loop.
	BreakStmt struct {
		pos
	}
	// ContinueStmt restarts the innermost loop.
	ContinueStmt struct {
		pos
	}
	// IncrementStmt is the statement form of name++.
	IncrementStmt struct {
		pos
		Name string
	}
	// ExprStmt evaluates an expression for effect.
	ExprStmt struct {
		pos
		X Expr
	}
)

func (*BlockStmt) stmtNode()       {}
func (*AssignStmt) stmtNode()      {}
func (*IndexAssignStmt) stmtNode() {}
func (*EchoStmt) stmtNode()        {}
func (*ReturnStmt) stmtNode()      {}
func (*IfStmt) stmtNode()          {}
func (*WhileStmt) stmtNode()       {}
func (*ForInStmt) stmtNode()       {}
func (*TryStmt) stmtNode()         {}
func (*ThrowStmt) stmtNode()       {}
func (*ImportStmt) stmtNode()      {}
func (*BreakStmt) stmtNode()       {}
func (*ContinueStmt) stmtNode()    {}
func (*IncrementStmt) stmtNode()   {}
func (*ExprStmt) stmtNode()        {}
