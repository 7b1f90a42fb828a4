package joltsyntax

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	program, err := Parse(NewSource("test", src))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return program
}

// sexpr renders an expression as a parenthesized prefix form.
func sexpr(expr Expr) string {
	switch e := expr.(type) {
	case *EmptyExpr:
		return "<empty>"
	case *LiteralExpr:
		if s, ok := e.Value.(string); ok {
			return strconv.Quote(s)
		}
		return fmt.Sprint(e.Value)
	case *NameExpr:
		return e.Name
	case *NestedExpr:
		return "(nested " + sexpr(e.Inner) + ")"
	case *ListExpr:
		parts := []string{"list"}
		for _, elem := range e.Elements {
			parts = append(parts, sexpr(elem))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *ListGeneratorExpr:
		return fmt.Sprintf("(gen %s %s %s)", sexpr(e.Element), e.Pointer, sexpr(e.Iterable))
	case *UnaryExpr:
		return fmt.Sprintf("(%s %s)", e.Op, sexpr(e.Operand))
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", e.Op, sexpr(e.Left), sexpr(e.Right))
	case *AssignExpr:
		return fmt.Sprintf("(= %s %s)", e.Target, sexpr(e.Value))
	case *GetIndexExpr:
		return fmt.Sprintf("(get %s %s)", sexpr(e.Target), sexpr(e.Index))
	case *SetIndexExpr:
		return fmt.Sprintf("(set %s %s %s)", sexpr(e.Target), sexpr(e.Index), sexpr(e.Value))
	case *InterpolationExpr:
		parts := []string{"interp"}
		for _, part := range e.Parts {
			parts = append(parts, sexpr(part))
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return fmt.Sprintf("<%T>", expr)
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		input  string
		output string
	}{
		{"2 + 3 * 4;", "(+ 2 (* 3 4))"},
		{"(2 + 3) * 4;", "(* (nested (+ 2 3)) 4)"},
		{"1 - 2 - 3;", "(- (- 1 2) 3)"},
		{"a | b ^ c & d;", "(| a (^ b (& c d)))"},
		{"a || b && c;", "(| a (& b c))"},
		{"a == b < c;", "(== a (< b c))"},
		{"-!#x;", "(- (! (# x)))"},
		{"-x[1][2];", "(- (get (get x 1) 2))"},
		{"a = b = 3;", "(= a (= b 3))"},
		{"xs[0] = 1 + 1;", "(set xs 0 (+ 1 1))"},
		{"[];", "(list)"},
		{"[1, \"two\", true,];", `(list 1 "two" true)`},
		{"[x * 2 for x : 10];", "(gen (* x 2) x 10)"},
		{`"a{x}b{y + 1}c";`, `(interp "a" x "b" (+ y 1) "c")`},
		{"x % 2 != 0;", "(!= (% x 2) 0)"},
	}
	for _, test := range tests {
		program := mustParse(t, test.input)
		if len(program.Stmts) != 1 {
			t.Fatalf("%q: got %d statements", test.input, len(program.Stmts))
		}
		stmt, ok := program.Stmts[0].(*ExpressionStmt)
		if !ok {
			t.Fatalf("%q: got %T", test.input, program.Stmts[0])
		}
		if got := sexpr(stmt.Expr); got != test.output {
			t.Fatalf("%q: got %s, want %s", test.input, got, test.output)
		}
	}
}

func TestParseStatements(t *testing.T) {
	program := mustParse(t, `
	;
	let a = 1;
	var b;
	{ a; b; }
	if (a) b; else { a; }
	if (b) a;
	while @w (true) break w;
	do { continue; } while (false);
	for @f (i : 3) {}
	loop @outer { break; }
	`)

	if len(program.Stmts) != 10 {
		t.Fatalf("got %d statements", len(program.Stmts))
	}

	if _, ok := program.Stmts[0].(*EmptyStmt); !ok {
		t.Fatalf("got %T", program.Stmts[0])
	}

	decl := program.Stmts[1].(*DeclarationStmt)
	if !decl.Constant || decl.Name != "a" || sexpr(decl.Init) != "1" {
		t.Fatalf("got %+v", decl)
	}
	decl = program.Stmts[2].(*DeclarationStmt)
	if decl.Constant || decl.Name != "b" {
		t.Fatalf("got %+v", decl)
	}
	if _, ok := decl.Init.(*EmptyExpr); !ok {
		t.Fatalf("got %T", decl.Init)
	}

	block := program.Stmts[3].(*BlockStmt)
	if len(block.Stmts) != 2 {
		t.Fatalf("got %d", len(block.Stmts))
	}

	ifStmt := program.Stmts[4].(*IfStmt)
	if _, ok := ifStmt.Else.(*BlockStmt); !ok {
		t.Fatalf("got %T", ifStmt.Else)
	}
	ifStmt = program.Stmts[5].(*IfStmt)
	if ifStmt.Else != nil {
		t.Fatalf("got %T", ifStmt.Else)
	}

	while := program.Stmts[6].(*WhileStmt)
	if while.Label != "w" {
		t.Fatalf("got %q", while.Label)
	}
	if brk := while.Body.(*BreakStmt); brk.Label != "w" {
		t.Fatalf("got %q", brk.Label)
	}

	do := program.Stmts[7].(*DoStmt)
	if do.Label != "" || sexpr(do.Cond) != "false" {
		t.Fatalf("got %+v", do)
	}
	if cont := do.Body.(*BlockStmt).Stmts[0].(*ContinueStmt); cont.Label != "" {
		t.Fatalf("got %q", cont.Label)
	}

	forStmt := program.Stmts[8].(*ForStmt)
	if forStmt.Label != "f" || forStmt.Pointer != "i" || sexpr(forStmt.Iterable) != "3" {
		t.Fatalf("got %+v", forStmt)
	}

	loop := program.Stmts[9].(*LoopStmt)
	if loop.Label != "outer" {
		t.Fatalf("got %q", loop.Label)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"x = ;", "expected expression"},
		{"1 = 2;", "not assignable"},
		{"(a) = 2;", "not assignable"},
		{"{ 1;", "unclosed block"},
		{"let x = 1", "expected ';' after declaration"},
		{"let = 1;", "expected variable name"},
		{"x + 1", "expected ';' after expression"},
		{"fun f;", "reserved keyword"},
		{"return 1;", "reserved keyword"},
		{"else x;", "'else' without 'if'"},
		{"if x {}", "expected '(' after 'if'"},
		{"do {} (x);", "expected 'while'"},
		{"for (i 3) {}", "expected ':'"},
		{"while @ (x) {}", "expected label name"},
		{"[1 2];", "expected ',' or ']'"},
		{"x[1;", "expected ']'"},
		{`"a{1 2}";`, "closing interpolated expression"},
	}
	for _, test := range tests {
		_, err := Parse(NewSource("test", test.input))
		if err == nil {
			t.Fatalf("%q: should error", test.input)
		}
		e, ok := AsError(err)
		if !ok {
			t.Fatalf("%q: got %T", test.input, err)
		}
		if e.Kind != SyntaxError {
			t.Fatalf("%q: got kind %v", test.input, e.Kind)
		}
		if !strings.Contains(e.Message, test.message) {
			t.Fatalf("%q: got %q", test.input, e.Message)
		}
	}
}

func TestParseLexicalErrorPropagates(t *testing.T) {
	_, err := Parse(NewSource("test", "let x = 1 $ 2;"))
	e, ok := AsError(err)
	if !ok || e.Kind != LexicalError {
		t.Fatalf("got %v", err)
	}
}

func TestParseDeterministic(t *testing.T) {
	src := `
	var xs = [i * i for i : 5];
	for @o (x : xs) { if (x > 3) break o; xs[0] = "v{x}"; }
	`
	a := mustParse(t, src)
	b := mustParse(t, src)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("parse results differ")
	}
}

func TestParseEmptyProgram(t *testing.T) {
	program := mustParse(t, "  \n// nothing here\n/* or here */\t")
	if len(program.Stmts) != 0 {
		t.Fatalf("got %d statements", len(program.Stmts))
	}
}

func TestParseContexts(t *testing.T) {
	program := mustParse(t, "xs[1] = 22 + y;")
	stmt := program.Stmts[0].(*ExpressionStmt)
	if ctx := stmt.Context(); ctx.Start != 0 || ctx.End != 15 {
		t.Fatalf("got %+v", ctx)
	}
	set := stmt.Expr.(*SetIndexExpr)
	if ctx := set.Context(); ctx.Start != 0 || ctx.End != 14 {
		t.Fatalf("got %+v", ctx)
	}
	bin := set.Value.(*BinaryExpr)
	if ctx := bin.Context(); ctx.Start != 8 || ctx.End != 14 || ctx.Column != 9 {
		t.Fatalf("got %+v", ctx)
	}
	if ctx := bin.Right.Context(); ctx.Start != 13 || ctx.End != 14 {
		t.Fatalf("got %+v", ctx)
	}
}
