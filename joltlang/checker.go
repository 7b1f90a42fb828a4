package joltlang

import (
	"fmt"

	"github.com/reusee/jolt/joltsyntax"
)

// unknownType marks an expression whose type is only known at run time.
const unknownType = ""

type checkRecord struct {
	constant bool
	typ      string
}

type checkScope struct {
	parent *checkScope
	names  map[string]checkRecord
}

func (s *checkScope) lookup(name string) (checkRecord, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if record, ok := scope.names[name]; ok {
			return record, true
		}
	}
	return checkRecord{}, false
}

type checker struct {
	scope  *checkScope
	labels []string
	errs   []*joltsyntax.Error
}

// Check reports the errors detectable without running the program: undeclared
// names, redeclarations, assignments to constants, break and continue outside
// a matching loop, and operators or conditions applied to values of a known
// wrong type. Root scope names of memory, if not nil, count as declared.
func Check(program *joltsyntax.Program, memory *Memory) []*joltsyntax.Error {
	c := &checker{
		scope: &checkScope{
			names: make(map[string]checkRecord),
		},
	}
	if memory != nil {
		for name, record := range memory.Globals() {
			typ := unknownType
			if record.Constant {
				typ = record.Value.Type()
			}
			c.scope.names[name] = checkRecord{
				constant: record.Constant,
				typ:      typ,
			}
		}
	}
	for _, stmt := range program.Stmts {
		c.stmt(stmt)
	}
	return c.errs
}

func (c *checker) errorf(kind joltsyntax.ErrorKind, ctx joltsyntax.Context, format string, args ...any) {
	c.errs = append(c.errs, joltsyntax.Errorf(kind, ctx, format, args...))
}

func (c *checker) report(err error) {
	if e, ok := joltsyntax.AsError(err); ok {
		c.errs = append(c.errs, e)
	}
}

func (c *checker) push() {
	c.scope = &checkScope{
		parent: c.scope,
		names:  make(map[string]checkRecord),
	}
}

func (c *checker) pop() {
	c.scope = c.scope.parent
}

func (c *checker) declare(ctx joltsyntax.Context, name string, constant bool, typ string) {
	if _, ok := c.scope.names[name]; ok {
		c.errorf(joltsyntax.DeclarationError, ctx, "%q is already declared in this scope", name)
		return
	}
	if !constant {
		// variables may be reassigned to any type
		typ = unknownType
	}
	c.scope.names[name] = checkRecord{
		constant: constant,
		typ:      typ,
	}
}

func (c *checker) loop(label string, body func()) {
	c.labels = append(c.labels, label)
	body()
	c.labels = c.labels[:len(c.labels)-1]
}

func (c *checker) jump(kind signalKind, label string, ctx joltsyntax.Context) {
	if label == "" {
		if len(c.labels) == 0 {
			c.errorf(joltsyntax.ControlFlowError, ctx, "%s outside of a loop", kind)
		}
		return
	}
	for _, l := range c.labels {
		if l == label {
			return
		}
	}
	c.errorf(joltsyntax.ControlFlowError, ctx, "%s to unknown label @%s", kind, label)
}

func (c *checker) condition(expr joltsyntax.Expr) {
	if typ := c.expr(expr); typ != unknownType && typ != TypeBool {
		c.errorf(joltsyntax.TypeError, expr.Context(), "condition must be boolean, got %s", typ)
	}
}

// iterable returns the element type of the iterated expression.
func (c *checker) iterable(expr joltsyntax.Expr) string {
	switch typ := c.expr(expr); typ {
	case TypeBool:
		c.errorf(joltsyntax.TypeError, expr.Context(), "value of type %s cannot be iterated", typ)
	case TypeNumber, TypeString:
		return typ
	}
	return unknownType
}

func (c *checker) stmt(stmt joltsyntax.Stmt) {
	switch stmt := stmt.(type) {

	case *joltsyntax.EmptyStmt:

	case *joltsyntax.ExpressionStmt:
		c.expr(stmt.Expr)

	case *joltsyntax.DeclarationStmt:
		typ := c.expr(stmt.Init)
		c.declare(stmt.Ctx, stmt.Name, stmt.Constant, typ)

	case *joltsyntax.BlockStmt:
		c.push()
		for _, s := range stmt.Stmts {
			c.stmt(s)
		}
		c.pop()

	case *joltsyntax.IfStmt:
		c.condition(stmt.Cond)
		c.stmt(stmt.Then)
		if stmt.Else != nil {
			c.stmt(stmt.Else)
		}

	case *joltsyntax.LoopStmt:
		c.loop(stmt.Label, func() {
			c.stmt(stmt.Body)
		})

	case *joltsyntax.WhileStmt:
		c.condition(stmt.Cond)
		c.loop(stmt.Label, func() {
			c.stmt(stmt.Body)
		})

	case *joltsyntax.DoStmt:
		c.loop(stmt.Label, func() {
			c.stmt(stmt.Body)
		})
		c.condition(stmt.Cond)

	case *joltsyntax.ForStmt:
		elem := c.iterable(stmt.Iterable)
		c.push()
		c.declare(stmt.Ctx, stmt.Pointer, true, elem)
		c.loop(stmt.Label, func() {
			c.stmt(stmt.Body)
		})
		c.pop()

	case *joltsyntax.BreakStmt:
		c.jump(signalBreak, stmt.Label, stmt.Ctx)

	case *joltsyntax.ContinueStmt:
		c.jump(signalContinue, stmt.Label, stmt.Ctx)

	default:
		panic(fmt.Errorf("unknown statement type %T", stmt))
	}
}

// sample is a representative value of a known type, used to run operator
// dispatch without running the program.
func sample(typ string) Value {
	switch typ {
	case TypeBool:
		return Bool(false)
	case TypeNumber:
		return Number(1)
	case TypeString:
		return String("a")
	case TypeList:
		return NewList()
	}
	return nil
}

func (c *checker) expr(expr joltsyntax.Expr) string {
	switch expr := expr.(type) {

	case *joltsyntax.EmptyExpr:
		return TypeNumber

	case *joltsyntax.LiteralExpr:
		value, err := FromLiteral(expr.Value)
		if err != nil {
			c.errorf(joltsyntax.InternalError, expr.Ctx, "%v", err)
			return unknownType
		}
		return value.Type()

	case *joltsyntax.NameExpr:
		record, ok := c.scope.lookup(expr.Name)
		if !ok {
			c.errorf(joltsyntax.NameError, expr.Ctx, "undeclared variable %q", expr.Name)
			return unknownType
		}
		return record.typ

	case *joltsyntax.NestedExpr:
		return c.expr(expr.Inner)

	case *joltsyntax.ListExpr:
		for _, e := range expr.Elements {
			c.expr(e)
		}
		return TypeList

	case *joltsyntax.ListGeneratorExpr:
		elem := c.iterable(expr.Iterable)
		c.push()
		c.declare(expr.Ctx, expr.Pointer, true, elem)
		c.expr(expr.Element)
		c.pop()
		return TypeList

	case *joltsyntax.UnaryExpr:
		typ := c.expr(expr.Operand)
		if typ == unknownType {
			switch expr.Op {
			case joltsyntax.OpNot:
				return TypeBool
			case joltsyntax.OpSize:
				return TypeNumber
			}
			return unknownType
		}
		value, err := unary(expr, sample(typ))
		if err != nil {
			c.report(err)
			return unknownType
		}
		return value.Type()

	case *joltsyntax.BinaryExpr:
		return c.binary(expr)

	case *joltsyntax.AssignExpr:
		record, ok := c.scope.lookup(expr.Target)
		if !ok {
			c.errorf(joltsyntax.NameError, expr.Ctx, "assignment to undeclared variable %q", expr.Target)
		} else if record.constant {
			c.errorf(joltsyntax.NameError, expr.Ctx, "cannot reassign constant %q", expr.Target)
		}
		return c.expr(expr.Value)

	case *joltsyntax.GetIndexExpr:
		target := c.expr(expr.Target)
		c.index(expr.Index)
		switch target {
		case unknownType, TypeList:
			return unknownType
		case TypeString:
			return TypeString
		}
		c.errorf(joltsyntax.TypeError, expr.Target.Context(), "cannot index value of type %s", target)
		return unknownType

	case *joltsyntax.SetIndexExpr:
		target := c.expr(expr.Target)
		c.index(expr.Index)
		typ := c.expr(expr.Value)
		if target != unknownType && target != TypeList {
			c.errorf(joltsyntax.TypeError, expr.Target.Context(), "cannot assign to an index of %s", target)
		}
		return typ

	case *joltsyntax.InterpolationExpr:
		for _, part := range expr.Parts {
			c.expr(part)
		}
		return TypeString

	}

	panic(fmt.Errorf("unknown expression type %T", expr))
}

func (c *checker) index(expr joltsyntax.Expr) {
	if typ := c.expr(expr); typ != unknownType && typ != TypeNumber {
		c.errorf(joltsyntax.TypeError, expr.Context(), "index must be a number, got %s", typ)
	}
}

func (c *checker) binary(expr *joltsyntax.BinaryExpr) string {
	left := c.expr(expr.Left)
	right := c.expr(expr.Right)

	switch expr.Op {
	case joltsyntax.OpOr, joltsyntax.OpAnd, joltsyntax.OpXor:
		// either side alone is enough to reject a non-boolean operand
		if left != unknownType && left != TypeBool {
			_, err := invalidLeft(expr, sample(left))
			c.report(err)
		} else if right != unknownType && right != TypeBool {
			_, err := invalidRight(expr, sample(TypeBool), sample(right))
			c.report(err)
		}
		return TypeBool
	case joltsyntax.OpEqual, joltsyntax.OpNotEqual,
		joltsyntax.OpLess, joltsyntax.OpLessEqual,
		joltsyntax.OpGreater, joltsyntax.OpGreaterEqual:
		if left == unknownType || right == unknownType {
			return TypeBool
		}
	case joltsyntax.OpAdd:
		if left == TypeString {
			return TypeString
		}
		if left == unknownType || right == unknownType {
			return unknownType
		}
	default:
		if left == unknownType || right == unknownType {
			return unknownType
		}
	}

	value, err := binary(expr, sample(left), sample(right))
	if err != nil {
		c.report(err)
		return unknownType
	}
	return value.Type()
}
