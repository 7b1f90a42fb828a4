package joltsyntax

import "fmt"

// Node is any syntax tree node. Its context spans the node's full source text.
type Node interface {
	Context() Context
}

type Expr interface {
	Node
	exprNode()
}

type Stmt interface {
	Node
	stmtNode()
}

// Program is the ordered sequence of top level statements of one source.
type Program struct {
	Stmts []Stmt
}

type UnaryOp uint8

const (
	OpNegate UnaryOp = iota + 1
	OpNot
	OpSize
)

func (o UnaryOp) String() string {
	switch o {
	case OpNegate:
		return "-"
	case OpNot:
		return "!"
	case OpSize:
		return "#"
	}
	return fmt.Sprintf("UnaryOp(%d)", o)
}

type BinaryOp uint8

const (
	OpOr BinaryOp = iota + 1
	OpXor
	OpAnd
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpRemainder
)

var binaryOpNames = map[BinaryOp]string{
	OpOr:           "|",
	OpXor:          "^",
	OpAnd:          "&",
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpAdd:          "+",
	OpSubtract:     "-",
	OpMultiply:     "*",
	OpDivide:       "/",
	OpRemainder:    "%",
}

func (o BinaryOp) String() string {
	if name, ok := binaryOpNames[o]; ok {
		return name
	}
	return fmt.Sprintf("BinaryOp(%d)", o)
}

// expressions

// EmptyExpr stands for an omitted expression, such as a missing initializer.
type EmptyExpr struct {
	Ctx Context
}

// LiteralExpr holds a float64, string or bool.
type LiteralExpr struct {
	Ctx   Context
	Value any
}

type NameExpr struct {
	Ctx  Context
	Name string
}

type NestedExpr struct {
	Ctx   Context
	Inner Expr
}

type ListExpr struct {
	Ctx      Context
	Elements []Expr
}

// ListGeneratorExpr is [Element for Pointer : Iterable].
type ListGeneratorExpr struct {
	Ctx      Context
	Element  Expr
	Pointer  string
	Iterable Expr
}

type UnaryExpr struct {
	Ctx     Context
	Op      UnaryOp
	Operand Expr
}

type BinaryExpr struct {
	Ctx   Context
	Op    BinaryOp
	Left  Expr
	Right Expr
}

type AssignExpr struct {
	Ctx    Context
	Target string
	Value  Expr
}

type GetIndexExpr struct {
	Ctx    Context
	Target Expr
	Index  Expr
}

type SetIndexExpr struct {
	Ctx    Context
	Target Expr
	Index  Expr
	Value  Expr
}

// InterpolationExpr alternates literal string parts and embedded expressions.
type InterpolationExpr struct {
	Ctx   Context
	Parts []Expr
}

func (e *EmptyExpr) Context() Context         { return e.Ctx }
func (e *LiteralExpr) Context() Context       { return e.Ctx }
func (e *NameExpr) Context() Context          { return e.Ctx }
func (e *NestedExpr) Context() Context        { return e.Ctx }
func (e *ListExpr) Context() Context          { return e.Ctx }
func (e *ListGeneratorExpr) Context() Context { return e.Ctx }
func (e *UnaryExpr) Context() Context         { return e.Ctx }
func (e *BinaryExpr) Context() Context        { return e.Ctx }
func (e *AssignExpr) Context() Context        { return e.Ctx }
func (e *GetIndexExpr) Context() Context      { return e.Ctx }
func (e *SetIndexExpr) Context() Context      { return e.Ctx }
func (e *InterpolationExpr) Context() Context { return e.Ctx }

func (*EmptyExpr) exprNode()         {}
func (*LiteralExpr) exprNode()       {}
func (*NameExpr) exprNode()          {}
func (*NestedExpr) exprNode()        {}
func (*ListExpr) exprNode()          {}
func (*ListGeneratorExpr) exprNode() {}
func (*UnaryExpr) exprNode()         {}
func (*BinaryExpr) exprNode()        {}
func (*AssignExpr) exprNode()        {}
func (*GetIndexExpr) exprNode()      {}
func (*SetIndexExpr) exprNode()      {}
func (*InterpolationExpr) exprNode() {}

// statements

type EmptyStmt struct {
	Ctx Context
}

type BlockStmt struct {
	Ctx   Context
	Stmts []Stmt
}

// DeclarationStmt is `let` (Constant) or `var`.
type DeclarationStmt struct {
	Ctx      Context
	Constant bool
	Name     string
	Init     Expr
}

// IfStmt has a nil Else when the branch is absent.
type IfStmt struct {
	Ctx  Context
	Cond Expr
	Then Stmt
	Else Stmt
}

// Loop labels are empty when absent.

type LoopStmt struct {
	Ctx   Context
	Label string
	Body  Stmt
}

type WhileStmt struct {
	Ctx   Context
	Label string
	Cond  Expr
	Body  Stmt
}

type DoStmt struct {
	Ctx   Context
	Label string
	Body  Stmt
	Cond  Expr
}

type ForStmt struct {
	Ctx      Context
	Label    string
	Pointer  string
	Iterable Expr
	Body     Stmt
}

type BreakStmt struct {
	Ctx   Context
	Label string
}

type ContinueStmt struct {
	Ctx   Context
	Label string
}

type ExpressionStmt struct {
	Ctx  Context
	Expr Expr
}

func (s *EmptyStmt) Context() Context       { return s.Ctx }
func (s *BlockStmt) Context() Context       { return s.Ctx }
func (s *DeclarationStmt) Context() Context { return s.Ctx }
func (s *IfStmt) Context() Context          { return s.Ctx }
func (s *LoopStmt) Context() Context        { return s.Ctx }
func (s *WhileStmt) Context() Context       { return s.Ctx }
func (s *DoStmt) Context() Context          { return s.Ctx }
func (s *ForStmt) Context() Context         { return s.Ctx }
func (s *BreakStmt) Context() Context       { return s.Ctx }
func (s *ContinueStmt) Context() Context    { return s.Ctx }
func (s *ExpressionStmt) Context() Context  { return s.Ctx }

func (*EmptyStmt) stmtNode()       {}
func (*BlockStmt) stmtNode()       {}
func (*DeclarationStmt) stmtNode() {}
func (*IfStmt) stmtNode()          {}
func (*LoopStmt) stmtNode()        {}
func (*WhileStmt) stmtNode()       {}
func (*DoStmt) stmtNode()          {}
func (*ForStmt) stmtNode()         {}
func (*BreakStmt) stmtNode()       {}
func (*ContinueStmt) stmtNode()    {}
func (*ExpressionStmt) stmtNode()  {}
