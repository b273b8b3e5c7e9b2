package expr

import "github.com/gonodes/exprgraph/ir"

// Expr is the interface implemented by all expression nodes.
type Expr interface {
	Pos() Span
	// ResolvedType returns the type assigned during resolution, or
	// TypeUnknown before resolution has run.
	ResolvedType() ir.DataType
	// depth reports the height of the subtree rooted at this node.
	depth() int
	exprNode()
}

// exprBase carries the fields shared by all expression nodes.
type exprBase struct {
	Span   Span
	Type   ir.DataType
	height int
}

func (e *exprBase) Pos() Span                 { return e.Span }
func (e *exprBase) ResolvedType() ir.DataType { return e.Type }
func (e *exprBase) depth() int                { return e.height }

// Literal is a numeric or boolean literal.
type Literal struct {
	exprBase
	Value ir.ConstValue
}

func (*Literal) exprNode() {}

// VariableRef references a declared input or a let binding.
type VariableRef struct {
	exprBase
	Name string
}

func (*VariableRef) exprNode() {}

// Unary is a prefix operator application.
type Unary struct {
	exprBase
	Op      string // catalog operator name, "neg" or "not"
	OpSpan  Span
	Operand Expr
}

func (*Unary) exprNode() {}

// Binary is an infix operator application.
type Binary struct {
	exprBase
	Op     string // catalog operator name, e.g. "+", "<=", "and"
	OpSpan Span
	Left   Expr
	Right  Expr
}

func (*Binary) exprNode() {}

// Call is a named function application.
type Call struct {
	exprBase
	Name     string
	NameSpan Span
	Args     []Expr
}

func (*Call) exprNode() {}

// LetStmt binds a name to an expression for the rest of the script.
type LetStmt struct {
	Name     string
	NameSpan Span
	Value    Expr
}

// Script is a parsed script: zero or more let bindings followed by the
// result expression.
type Script struct {
	Lets   []*LetStmt
	Result Expr
}
