package joltsyntax

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Dump renders a program as YAML, one mapping per node keyed by field name
// with the node type under "kind".
func Dump(program *Program) ([]byte, error) {
	stmts := make([]any, 0, len(program.Stmts))
	for _, stmt := range program.Stmts {
		stmts = append(stmts, dumpNode(stmt))
	}
	return yaml.Marshal(map[string]any{
		"kind":  "Program",
		"stmts": stmts,
	})
}

func dumpNode(node Node) any {
	if node == nil {
		return nil
	}
	ctx := node.Context()
	m := map[string]any{
		"at": fmt.Sprintf("%d:%d+%d", ctx.Row, ctx.Column, ctx.Len()),
	}

	switch n := node.(type) {

	case *EmptyExpr:
		m["kind"] = "Empty"
	case *LiteralExpr:
		m["kind"] = "Value"
		m["value"] = n.Value
	case *NameExpr:
		m["kind"] = "Name"
		m["name"] = n.Name
	case *NestedExpr:
		m["kind"] = "Nested"
		m["inner"] = dumpNode(n.Inner)
	case *ListExpr:
		m["kind"] = "ListLiteral"
		m["elements"] = dumpExprs(n.Elements)
	case *ListGeneratorExpr:
		m["kind"] = "ListGenerator"
		m["element"] = dumpNode(n.Element)
		m["pointer"] = n.Pointer
		m["iterable"] = dumpNode(n.Iterable)
	case *UnaryExpr:
		m["kind"] = "Unary"
		m["op"] = n.Op.String()
		m["operand"] = dumpNode(n.Operand)
	case *BinaryExpr:
		m["kind"] = "Binary"
		m["op"] = n.Op.String()
		m["left"] = dumpNode(n.Left)
		m["right"] = dumpNode(n.Right)
	case *AssignExpr:
		m["kind"] = "Assign"
		m["target"] = n.Target
		m["value"] = dumpNode(n.Value)
	case *GetIndexExpr:
		m["kind"] = "GetIndex"
		m["target"] = dumpNode(n.Target)
		m["index"] = dumpNode(n.Index)
	case *SetIndexExpr:
		m["kind"] = "SetIndex"
		m["target"] = dumpNode(n.Target)
		m["index"] = dumpNode(n.Index)
		m["value"] = dumpNode(n.Value)
	case *InterpolationExpr:
		m["kind"] = "Interpolation"
		m["parts"] = dumpExprs(n.Parts)

	case *EmptyStmt:
		m["kind"] = "Empty"
	case *BlockStmt:
		m["kind"] = "Block"
		m["stmts"] = dumpStmts(n.Stmts)
	case *DeclarationStmt:
		m["kind"] = "Declaration"
		m["constant"] = n.Constant
		m["name"] = n.Name
		m["init"] = dumpNode(n.Init)
	case *IfStmt:
		m["kind"] = "If"
		m["cond"] = dumpNode(n.Cond)
		m["then"] = dumpNode(n.Then)
		if n.Else != nil {
			m["else"] = dumpNode(n.Else)
		}
	case *LoopStmt:
		m["kind"] = "Loop"
		setLabel(m, n.Label)
		m["body"] = dumpNode(n.Body)
	case *WhileStmt:
		m["kind"] = "While"
		setLabel(m, n.Label)
		m["cond"] = dumpNode(n.Cond)
		m["body"] = dumpNode(n.Body)
	case *DoStmt:
		m["kind"] = "Do"
		setLabel(m, n.Label)
		m["body"] = dumpNode(n.Body)
		m["cond"] = dumpNode(n.Cond)
	case *ForStmt:
		m["kind"] = "For"
		setLabel(m, n.Label)
		m["pointer"] = n.Pointer
		m["iterable"] = dumpNode(n.Iterable)
		m["body"] = dumpNode(n.Body)
	case *BreakStmt:
		m["kind"] = "Break"
		setLabel(m, n.Label)
	case *ContinueStmt:
		m["kind"] = "Continue"
		setLabel(m, n.Label)
	case *ExpressionStmt:
		m["kind"] = "Expression"
		m["expr"] = dumpNode(n.Expr)

	default:
		panic(fmt.Errorf("unknown node type %T", node))
	}

	return m
}

func setLabel(m map[string]any, label string) {
	if label != "" {
		m["label"] = label
	}
}

func dumpExprs(exprs []Expr) []any {
	ret := make([]any, 0, len(exprs))
	for _, expr := range exprs {
		ret = append(ret, dumpNode(expr))
	}
	return ret
}

func dumpStmts(stmts []Stmt) []any {
	ret := make([]any, 0, len(stmts))
	for _, stmt := range stmts {
		ret = append(ret, dumpNode(stmt))
	}
	return ret
}
