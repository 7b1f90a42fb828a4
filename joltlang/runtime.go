package joltlang

import (
	"context"
	"fmt"
	"io"
	"iter"
	"math"
	"slices"
	"strings"

	"github.com/reusee/jolt/joltsyntax"
	"github.com/samber/lo"
)

type signalKind uint8

const (
	signalBreak signalKind = iota + 1
	signalContinue
)

func (k signalKind) String() string {
	switch k {
	case signalBreak:
		return "break"
	case signalContinue:
		return "continue"
	}
	return fmt.Sprintf("signalKind(%d)", k)
}

// signal is a pending break or continue travelling up to its loop.
type signal struct {
	kind  signalKind
	label string
	ctx   joltsyntax.Context
}

// matches reports whether a loop with the label catches the signal.
// An unlabelled signal is caught by the innermost loop.
func (s *signal) matches(label string) bool {
	return s.label == "" || s.label == label
}

func (s *signal) unhandled() error {
	if s.label == "" {
		return joltsyntax.Errorf(joltsyntax.ControlFlowError, s.ctx,
			"unhandled %s: not inside a loop", s.kind)
	}
	return joltsyntax.Errorf(joltsyntax.ControlFlowError, s.ctx,
		"unhandled %s %s: no enclosing loop labelled @%s", s.kind, s.label, s.label)
}

// loopControl decides what a loop does with the signal returned by its body.
// stop ends the loop, and a non-nil propagate is handed to the enclosing statement.
func loopControl(label string, sig *signal) (stop bool, propagate *signal) {
	if sig == nil {
		return false, nil
	}
	if !sig.matches(label) {
		return true, sig
	}
	return sig.kind == signalBreak, nil
}

// maxRepeatLength bounds the size of a repeated string or list.
const maxRepeatLength = 1 << 28

// Runtime evaluates programs against a Memory.
type Runtime struct {
	memory *Memory
	// expression statement values are printed here when not nil
	output io.Writer
	ctx    context.Context
}

func NewRuntime(memory *Memory, output io.Writer) *Runtime {
	return &Runtime{
		memory: memory,
		output: output,
	}
}

// Run executes the program statement by statement and returns the value of the
// last top level expression statement, or NaN if none was executed.
// Cancelling ctx stops loops at their next iteration.
func (r *Runtime) Run(ctx context.Context, program *joltsyntax.Program) (Value, error) {
	r.ctx = ctx
	defer func() {
		r.ctx = nil
	}()

	var result Value = NaN
	for _, stmt := range program.Stmts {
		if exprStmt, ok := stmt.(*joltsyntax.ExpressionStmt); ok {
			value, err := r.execExpression(exprStmt)
			if err != nil {
				return nil, err
			}
			result = value
			continue
		}
		sig, err := r.exec(stmt)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return nil, sig.unhandled()
		}
	}
	return result, nil
}

func (r *Runtime) interrupted(at joltsyntax.Context) error {
	if r.ctx == nil {
		return nil
	}
	if err := r.ctx.Err(); err != nil {
		return fmt.Errorf("interrupted at %s: %w", at, err)
	}
	return nil
}

func (r *Runtime) exec(stmt joltsyntax.Stmt) (*signal, error) {
	switch stmt := stmt.(type) {

	case *joltsyntax.EmptyStmt:
		return nil, nil

	case *joltsyntax.ExpressionStmt:
		_, err := r.execExpression(stmt)
		return nil, err

	case *joltsyntax.DeclarationStmt:
		value, err := r.eval(stmt.Init)
		if err != nil {
			return nil, err
		}
		if _, ok := r.memory.Declare(stmt.Name, stmt.Constant, value); !ok {
			return nil, joltsyntax.Errorf(joltsyntax.DeclarationError, stmt.Ctx,
				"%q is already declared in this scope", stmt.Name)
		}
		return nil, nil

	case *joltsyntax.BlockStmt:
		r.memory.Push()
		defer r.memory.Pop()
		for _, s := range stmt.Stmts {
			sig, err := r.exec(s)
			if err != nil || sig != nil {
				return sig, err
			}
		}
		return nil, nil

	case *joltsyntax.IfStmt:
		cond, err := r.condition(stmt.Cond)
		if err != nil {
			return nil, err
		}
		if cond {
			return r.exec(stmt.Then)
		} else if stmt.Else != nil {
			return r.exec(stmt.Else)
		}
		return nil, nil

	case *joltsyntax.LoopStmt:
		for {
			if err := r.interrupted(stmt.Ctx); err != nil {
				return nil, err
			}
			sig, err := r.exec(stmt.Body)
			if err != nil {
				return nil, err
			}
			if stop, sig := loopControl(stmt.Label, sig); stop {
				return sig, nil
			}
		}

	case *joltsyntax.WhileStmt:
		for {
			if err := r.interrupted(stmt.Ctx); err != nil {
				return nil, err
			}
			cond, err := r.condition(stmt.Cond)
			if err != nil {
				return nil, err
			}
			if !cond {
				return nil, nil
			}
			sig, err := r.exec(stmt.Body)
			if err != nil {
				return nil, err
			}
			if stop, sig := loopControl(stmt.Label, sig); stop {
				return sig, nil
			}
		}

	case *joltsyntax.DoStmt:
		for {
			if err := r.interrupted(stmt.Ctx); err != nil {
				return nil, err
			}
			sig, err := r.exec(stmt.Body)
			if err != nil {
				return nil, err
			}
			if stop, sig := loopControl(stmt.Label, sig); stop {
				return sig, nil
			}
			cond, err := r.condition(stmt.Cond)
			if err != nil {
				return nil, err
			}
			if !cond {
				return nil, nil
			}
		}

	case *joltsyntax.ForStmt:
		return r.execFor(stmt)

	case *joltsyntax.BreakStmt:
		return &signal{
			kind:  signalBreak,
			label: stmt.Label,
			ctx:   stmt.Ctx,
		}, nil

	case *joltsyntax.ContinueStmt:
		return &signal{
			kind:  signalContinue,
			label: stmt.Label,
			ctx:   stmt.Ctx,
		}, nil

	}

	panic(fmt.Errorf("unknown statement type %T", stmt))
}

func (r *Runtime) execExpression(stmt *joltsyntax.ExpressionStmt) (Value, error) {
	value, err := r.eval(stmt.Expr)
	if err != nil {
		return nil, err
	}
	if r.output != nil {
		if _, err := fmt.Fprintln(r.output, value); err != nil {
			return nil, fmt.Errorf("print result: %w", err)
		}
	}
	return value, nil
}

func (r *Runtime) execFor(stmt *joltsyntax.ForStmt) (*signal, error) {
	seq, err := r.iterable(stmt.Iterable)
	if err != nil {
		return nil, err
	}

	// one scope for the whole loop, the pointer cell is reassigned per element
	r.memory.Push()
	defer r.memory.Pop()
	pointer, _ := r.memory.Declare(stmt.Pointer, true, NaN)

	for elem := range seq {
		if err := r.interrupted(stmt.Ctx); err != nil {
			return nil, err
		}
		pointer.Value = elem
		sig, err := r.exec(stmt.Body)
		if err != nil {
			return nil, err
		}
		if stop, sig := loopControl(stmt.Label, sig); stop {
			return sig, nil
		}
	}
	return nil, nil
}

func (r *Runtime) iterable(expr joltsyntax.Expr) (iter.Seq[Value], error) {
	value, err := r.eval(expr)
	if err != nil {
		return nil, err
	}
	seq, ok := Iterate(value)
	if !ok {
		return nil, joltsyntax.Errorf(joltsyntax.TypeError, expr.Context(),
			"value of type %s cannot be iterated", value.Type())
	}
	return seq, nil
}

func (r *Runtime) condition(expr joltsyntax.Expr) (bool, error) {
	value, err := r.eval(expr)
	if err != nil {
		return false, err
	}
	b, ok := value.(Bool)
	if !ok {
		return false, joltsyntax.Errorf(joltsyntax.TypeError, expr.Context(),
			"condition must be boolean, got %s", value.Type())
	}
	return bool(b), nil
}

func (r *Runtime) eval(expr joltsyntax.Expr) (Value, error) {
	switch expr := expr.(type) {

	case *joltsyntax.EmptyExpr:
		return NaN, nil

	case *joltsyntax.LiteralExpr:
		value, err := FromLiteral(expr.Value)
		if err != nil {
			return nil, joltsyntax.Errorf(joltsyntax.InternalError, expr.Ctx, "%v", err)
		}
		return value, nil

	case *joltsyntax.NameExpr:
		record, ok := r.memory.Lookup(expr.Name)
		if !ok {
			return nil, joltsyntax.Errorf(joltsyntax.NameError, expr.Ctx,
				"undeclared variable %q", expr.Name)
		}
		return record.Value, nil

	case *joltsyntax.NestedExpr:
		return r.eval(expr.Inner)

	case *joltsyntax.ListExpr:
		elements := make([]Value, 0, len(expr.Elements))
		for _, e := range expr.Elements {
			value, err := r.eval(e)
			if err != nil {
				return nil, err
			}
			elements = append(elements, value)
		}
		return NewList(elements...), nil

	case *joltsyntax.ListGeneratorExpr:
		seq, err := r.iterable(expr.Iterable)
		if err != nil {
			return nil, err
		}
		r.memory.Push()
		defer r.memory.Pop()
		pointer, _ := r.memory.Declare(expr.Pointer, true, NaN)
		var elements []Value
		for elem := range seq {
			if err := r.interrupted(expr.Ctx); err != nil {
				return nil, err
			}
			pointer.Value = elem
			value, err := r.eval(expr.Element)
			if err != nil {
				return nil, err
			}
			elements = append(elements, value)
		}
		return NewList(elements...), nil

	case *joltsyntax.UnaryExpr:
		operand, err := r.eval(expr.Operand)
		if err != nil {
			return nil, err
		}
		return unary(expr, operand)

	case *joltsyntax.BinaryExpr:
		return r.evalBinary(expr)

	case *joltsyntax.AssignExpr:
		record, ok := r.memory.Lookup(expr.Target)
		if !ok {
			return nil, joltsyntax.Errorf(joltsyntax.NameError, expr.Ctx,
				"assignment to undeclared variable %q", expr.Target)
		}
		if record.Constant {
			return nil, joltsyntax.Errorf(joltsyntax.NameError, expr.Ctx,
				"cannot reassign constant %q", expr.Target)
		}
		value, err := r.eval(expr.Value)
		if err != nil {
			return nil, err
		}
		record.Value = value
		return value, nil

	case *joltsyntax.GetIndexExpr:
		target, err := r.eval(expr.Target)
		if err != nil {
			return nil, err
		}
		index, err := r.eval(expr.Index)
		if err != nil {
			return nil, err
		}
		return getIndex(expr, target, index)

	case *joltsyntax.SetIndexExpr:
		target, err := r.eval(expr.Target)
		if err != nil {
			return nil, err
		}
		index, err := r.eval(expr.Index)
		if err != nil {
			return nil, err
		}
		value, err := r.eval(expr.Value)
		if err != nil {
			return nil, err
		}
		list, ok := target.(*List)
		if !ok {
			return nil, joltsyntax.Errorf(joltsyntax.TypeError, expr.Target.Context(),
				"cannot assign to an index of %s", target.Type())
		}
		i, err := toIndex(expr.Index.Context(), index, TypeList, len(list.Elements))
		if err != nil {
			return nil, err
		}
		list.Elements[i] = value
		return value, nil

	case *joltsyntax.InterpolationExpr:
		var b strings.Builder
		for _, part := range expr.Parts {
			value, err := r.eval(part)
			if err != nil {
				return nil, err
			}
			b.WriteString(value.String())
		}
		return String(b.String()), nil

	}

	panic(fmt.Errorf("unknown expression type %T", expr))
}

func unary(expr *joltsyntax.UnaryExpr, operand Value) (Value, error) {
	switch expr.Op {
	case joltsyntax.OpNegate:
		switch v := operand.(type) {
		case Number:
			return -v, nil
		case String:
			runes := []rune(string(v))
			slices.Reverse(runes)
			return String(runes), nil
		}
	case joltsyntax.OpNot:
		if b, ok := operand.(Bool); ok {
			return !b, nil
		}
	case joltsyntax.OpSize:
		return Number(Size(operand)), nil
	default:
		panic(fmt.Errorf("unknown unary operator %v", expr.Op))
	}
	return nil, joltsyntax.Errorf(joltsyntax.TypeError, expr.Ctx,
		"invalid operand of type %s for unary '%s'", operand.Type(), expr.Op)
}

func (r *Runtime) evalBinary(expr *joltsyntax.BinaryExpr) (Value, error) {
	left, err := r.eval(expr.Left)
	if err != nil {
		return nil, err
	}

	// short circuit
	switch expr.Op {
	case joltsyntax.OpOr, joltsyntax.OpAnd:
		l, ok := left.(Bool)
		if !ok {
			return invalidLeft(expr, left)
		}
		if expr.Op == joltsyntax.OpOr && bool(l) ||
			expr.Op == joltsyntax.OpAnd && !bool(l) {
			return l, nil
		}
		right, err := r.eval(expr.Right)
		if err != nil {
			return nil, err
		}
		rb, ok := right.(Bool)
		if !ok {
			return invalidRight(expr, left, right)
		}
		return rb, nil
	}

	right, err := r.eval(expr.Right)
	if err != nil {
		return nil, err
	}
	return binary(expr, left, right)
}

func binary(expr *joltsyntax.BinaryExpr, left, right Value) (Value, error) {
	switch expr.Op {

	case joltsyntax.OpXor:
		l, ok := left.(Bool)
		if !ok {
			return invalidLeft(expr, left)
		}
		r, ok := right.(Bool)
		if !ok {
			return invalidRight(expr, left, right)
		}
		return Bool(l != r), nil

	case joltsyntax.OpEqual:
		return Bool(Equal(left, right)), nil

	case joltsyntax.OpNotEqual:
		return Bool(!Equal(left, right)), nil

	case joltsyntax.OpLess, joltsyntax.OpLessEqual,
		joltsyntax.OpGreater, joltsyntax.OpGreaterEqual:
		switch l := left.(type) {
		case Number:
			r, ok := right.(Number)
			if !ok {
				return invalidRight(expr, left, right)
			}
			return ordered(expr.Op, l, r), nil
		case String:
			r, ok := right.(String)
			if !ok {
				return invalidRight(expr, left, right)
			}
			return ordered(expr.Op, l, r), nil
		}
		return invalidLeft(expr, left)

	case joltsyntax.OpAdd:
		switch l := left.(type) {
		case String:
			return l + String(right.String()), nil
		case Number:
			switch r := right.(type) {
			case Number:
				return l + r, nil
			case String:
				return String(l.String()) + r, nil
			}
			return invalidRight(expr, left, right)
		case Bool:
			if r, ok := right.(String); ok {
				return String(l.String()) + r, nil
			}
			return invalidRight(expr, left, right)
		case *List:
			if r, ok := right.(*List); ok {
				return NewList(slices.Concat(l.Elements, r.Elements)...), nil
			}
			return invalidRight(expr, left, right)
		}
		return invalidLeft(expr, left)

	case joltsyntax.OpMultiply:
		switch l := left.(type) {
		case Number:
			if r, ok := right.(Number); ok {
				return l * r, nil
			}
			return invalidRight(expr, left, right)
		case String:
			count, err := repeatCount(expr, left, right, len(l))
			if err != nil {
				return nil, err
			}
			return String(strings.Repeat(string(l), count)), nil
		case *List:
			count, err := repeatCount(expr, left, right, len(l.Elements))
			if err != nil {
				return nil, err
			}
			return NewList(lo.Flatten(lo.Times(count, func(int) []Value {
				return l.Elements
			}))...), nil
		}
		return invalidLeft(expr, left)

	case joltsyntax.OpSubtract, joltsyntax.OpDivide, joltsyntax.OpRemainder:
		l, ok := left.(Number)
		if !ok {
			return invalidLeft(expr, left)
		}
		r, ok := right.(Number)
		if !ok {
			return invalidRight(expr, left, right)
		}
		switch expr.Op {
		case joltsyntax.OpSubtract:
			return l - r, nil
		case joltsyntax.OpDivide:
			return l / r, nil
		default:
			return Number(math.Mod(float64(l), float64(r))), nil
		}

	}

	panic(fmt.Errorf("unknown binary operator %v", expr.Op))
}

func ordered[T Number | String](op joltsyntax.BinaryOp, a, b T) Bool {
	switch op {
	case joltsyntax.OpLess:
		return a < b
	case joltsyntax.OpLessEqual:
		return a <= b
	case joltsyntax.OpGreater:
		return a > b
	default:
		return a >= b
	}
}

func repeatCount(expr *joltsyntax.BinaryExpr, left, right Value, unit int) (int, error) {
	n, ok := right.(Number)
	if !ok {
		_, err := invalidRight(expr, left, right)
		return 0, err
	}
	count := math.Floor(float64(n))
	if unit == 0 || math.IsNaN(count) || count < 1 {
		return 0, nil
	}
	if count*float64(unit) > maxRepeatLength {
		return 0, joltsyntax.Errorf(joltsyntax.TypeError, expr.Ctx,
			"repeating %s %s times exceeds the size limit", left.Type(), n)
	}
	return int(count), nil
}

func invalidLeft(expr *joltsyntax.BinaryExpr, left Value) (Value, error) {
	return nil, joltsyntax.Errorf(joltsyntax.TypeError, expr.Left.Context(),
		"invalid left operand of type %s for '%s'", left.Type(), expr.Op)
}

func invalidRight(expr *joltsyntax.BinaryExpr, left, right Value) (Value, error) {
	return nil, joltsyntax.Errorf(joltsyntax.TypeError, expr.Right.Context(),
		"invalid right operand of type %s for '%s' with left operand of type %s",
		right.Type(), expr.Op, left.Type())
}

func getIndex(expr *joltsyntax.GetIndexExpr, target, index Value) (Value, error) {
	switch t := target.(type) {
	case String:
		runes := []rune(string(t))
		i, err := toIndex(expr.Index.Context(), index, TypeString, len(runes))
		if err != nil {
			return nil, err
		}
		return String(runes[i]), nil
	case *List:
		i, err := toIndex(expr.Index.Context(), index, TypeList, len(t.Elements))
		if err != nil {
			return nil, err
		}
		return t.Elements[i], nil
	}
	return nil, joltsyntax.Errorf(joltsyntax.TypeError, expr.Target.Context(),
		"cannot index value of type %s", target.Type())
}

// toIndex truncates the index toward zero and checks it against length.
func toIndex(ctx joltsyntax.Context, index Value, kind string, length int) (int, error) {
	n, ok := index.(Number)
	if !ok {
		return 0, joltsyntax.Errorf(joltsyntax.TypeError, ctx,
			"index must be a number, got %s", index.Type())
	}
	f := math.Trunc(float64(n))
	if math.IsNaN(f) || f < 0 || f >= float64(length) {
		return 0, joltsyntax.Errorf(joltsyntax.TypeError, ctx,
			"index %s out of bounds for %s of length %d", n, kind, length)
	}
	return int(f), nil
}
