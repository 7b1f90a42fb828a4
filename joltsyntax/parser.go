package joltsyntax

import "fmt"

// Parser is a recursive descent parser holding one token of lookahead.
type Parser struct {
	lexer *Lexer
	token Token
	// context of the last consumed token
	prev Context
}

func NewParser(lexer *Lexer) (*Parser, error) {
	p := &Parser{
		lexer: lexer,
	}
	if err := p.step(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse parses a whole source into a program.
func Parse(source *Source) (*Program, error) {
	p, err := NewParser(NewLexer(source))
	if err != nil {
		return nil, err
	}
	return p.Parse()
}

func (p *Parser) Parse() (*Program, error) {
	program := new(Program)
	for p.token.Kind != TokenEOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		program.Stmts = append(program.Stmts, stmt)
	}
	return program, nil
}

func (p *Parser) step() error {
	p.prev = p.token.Context
	tok, err := p.lexer.Next()
	if err != nil {
		return err
	}
	p.token = tok
	return nil
}

func (p *Parser) span(start Context) Context {
	return start.RangeTo(p.prev)
}

func (p *Parser) errorf(format string, args ...any) error {
	return Errorf(SyntaxError, p.token.Context, format, args...)
}

func (p *Parser) mustSkip(symbol Symbol, message string) error {
	if !p.token.Is(symbol) {
		if message == "" {
			message = fmt.Sprintf("expected %q", symbol.String())
		}
		return p.errorf("%s, found %s", message, p.token)
	}
	return p.step()
}

func (p *Parser) mustSkipKeyword(keyword Keyword, message string) error {
	if !p.token.IsKeyword(keyword) {
		return p.errorf("%s, found %s", message, p.token)
	}
	return p.step()
}

func (p *Parser) getName(message string) (string, error) {
	if p.token.Kind != TokenName {
		return "", p.errorf("%s, found %s", message, p.token)
	}
	name := p.token.Text
	return name, p.step()
}

// statements

func (p *Parser) parseStmt() (Stmt, error) {
	switch {

	case p.token.Is(SymbolSemicolon):
		start := p.token.Context
		if err := p.step(); err != nil {
			return nil, err
		}
		return &EmptyStmt{Ctx: p.span(start)}, nil

	case p.token.Is(SymbolLeftBrace):
		return p.parseBlock()

	case p.token.Kind == TokenKeyword:
		switch p.token.Keyword {
		case KeywordLet, KeywordVar:
			return p.parseDeclaration()
		case KeywordIf:
			return p.parseIf()
		case KeywordWhile:
			return p.parseWhile()
		case KeywordDo:
			return p.parseDo()
		case KeywordFor:
			return p.parseFor()
		case KeywordLoop:
			return p.parseLoop()
		case KeywordBreak, KeywordContinue:
			return p.parseBreakOrContinue()
		case KeywordElse:
			return nil, p.errorf("'else' without 'if'")
		}
	}

	return p.parseExpressionStmt()
}

func (p *Parser) parseBlock() (*BlockStmt, error) {
	start := p.token.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	var stmts []Stmt
	for !p.token.Is(SymbolRightBrace) {
		if p.token.Kind == TokenEOF {
			return nil, Errorf(SyntaxError, start, "unclosed block")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if err := p.step(); err != nil {
		return nil, err
	}
	return &BlockStmt{
		Ctx:   p.span(start),
		Stmts: stmts,
	}, nil
}

func (p *Parser) parseDeclaration() (Stmt, error) {
	start := p.token.Context
	constant := p.token.Keyword == KeywordLet
	if err := p.step(); err != nil {
		return nil, err
	}

	nameCtx := p.token.Context
	name, err := p.getName("expected variable name")
	if err != nil {
		return nil, err
	}

	var init Expr = &EmptyExpr{Ctx: nameCtx}
	if p.token.Is(SymbolAssign) {
		if err := p.step(); err != nil {
			return nil, err
		}
		init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	if err := p.mustSkip(SymbolSemicolon, "expected ';' after declaration"); err != nil {
		return nil, err
	}
	return &DeclarationStmt{
		Ctx:      p.span(start),
		Constant: constant,
		Name:     name,
		Init:     init,
	}, nil
}

func (p *Parser) parseCondition(after string) (Expr, error) {
	if err := p.mustSkip(SymbolLeftParen, "expected '(' after '"+after+"'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.mustSkip(SymbolRightParen, "expected ')' after condition"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	start := p.token.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition("if")
	if err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	var els Stmt
	if p.token.IsKeyword(KeywordElse) {
		if err := p.step(); err != nil {
			return nil, err
		}
		els, err = p.parseStmt()
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{
		Ctx:  p.span(start),
		Cond: cond,
		Then: then,
		Else: els,
	}, nil
}

// parseLabel parses an optional `@name` loop label.
func (p *Parser) parseLabel() (string, error) {
	if !p.token.Is(SymbolAt) {
		return "", nil
	}
	if err := p.step(); err != nil {
		return "", err
	}
	return p.getName("expected label name after '@'")
}

func (p *Parser) parseWhile() (Stmt, error) {
	start := p.token.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	label, err := p.parseLabel()
	if err != nil {
		return nil, err
	}
	cond, err := p.parseCondition("while")
	if err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{
		Ctx:   p.span(start),
		Label: label,
		Cond:  cond,
		Body:  body,
	}, nil
}

func (p *Parser) parseDo() (Stmt, error) {
	start := p.token.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	label, err := p.parseLabel()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if err := p.mustSkipKeyword(KeywordWhile, "expected 'while' after do body"); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition("while")
	if err != nil {
		return nil, err
	}
	if err := p.mustSkip(SymbolSemicolon, "expected ';' after do-while condition"); err != nil {
		return nil, err
	}
	return &DoStmt{
		Ctx:   p.span(start),
		Label: label,
		Body:  body,
		Cond:  cond,
	}, nil
}

func (p *Parser) parseFor() (Stmt, error) {
	start := p.token.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	label, err := p.parseLabel()
	if err != nil {
		return nil, err
	}
	if err := p.mustSkip(SymbolLeftParen, "expected '(' after 'for'"); err != nil {
		return nil, err
	}
	pointer, err := p.getName("expected loop variable name")
	if err != nil {
		return nil, err
	}
	if err := p.mustSkip(SymbolColon, "expected ':' after loop variable"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.mustSkip(SymbolRightParen, "expected ')' after iterable"); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ForStmt{
		Ctx:      p.span(start),
		Label:    label,
		Pointer:  pointer,
		Iterable: iterable,
		Body:     body,
	}, nil
}

func (p *Parser) parseLoop() (Stmt, error) {
	start := p.token.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	label, err := p.parseLabel()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &LoopStmt{
		Ctx:   p.span(start),
		Label: label,
		Body:  body,
	}, nil
}

func (p *Parser) parseBreakOrContinue() (Stmt, error) {
	start := p.token.Context
	keyword := p.token.Keyword
	if err := p.step(); err != nil {
		return nil, err
	}
	var label string
	if p.token.Kind == TokenName {
		label = p.token.Text
		if err := p.step(); err != nil {
			return nil, err
		}
	}
	if err := p.mustSkip(SymbolSemicolon, "expected ';' after '"+keyword.String()+"'"); err != nil {
		return nil, err
	}
	if keyword == KeywordBreak {
		return &BreakStmt{
			Ctx:   p.span(start),
			Label: label,
		}, nil
	}
	return &ContinueStmt{
		Ctx:   p.span(start),
		Label: label,
	}, nil
}

func (p *Parser) parseExpressionStmt() (Stmt, error) {
	start := p.token.Context
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.mustSkip(SymbolSemicolon, "expected ';' after expression"); err != nil {
		return nil, err
	}
	return &ExpressionStmt{
		Ctx:  p.span(start),
		Expr: expr,
	}, nil
}

// expressions

// binaryLevels lists binary operator symbols from the loosest to the tightest
// binding level.
var binaryLevels = [][]Symbol{
	{SymbolPipe, SymbolPipePipe},
	{SymbolCaret},
	{SymbolAmp, SymbolAmpAmp},
	{SymbolEqual, SymbolNotEqual},
	{SymbolLess, SymbolLessEqual, SymbolGreater, SymbolGreaterEqual},
	{SymbolPlus, SymbolMinus},
	{SymbolStar, SymbolSlash, SymbolPercent},
}

var binaryOps = map[Symbol]BinaryOp{
	SymbolPipe:         OpOr,
	SymbolPipePipe:     OpOr,
	SymbolCaret:        OpXor,
	SymbolAmp:          OpAnd,
	SymbolAmpAmp:       OpAnd,
	SymbolEqual:        OpEqual,
	SymbolNotEqual:     OpNotEqual,
	SymbolLess:         OpLess,
	SymbolLessEqual:    OpLessEqual,
	SymbolGreater:      OpGreater,
	SymbolGreaterEqual: OpGreaterEqual,
	SymbolPlus:         OpAdd,
	SymbolMinus:        OpSubtract,
	SymbolStar:         OpMultiply,
	SymbolSlash:        OpDivide,
	SymbolPercent:      OpRemainder,
}

var unaryOps = map[Symbol]UnaryOp{
	SymbolMinus: OpNegate,
	SymbolBang:  OpNot,
	SymbolHash:  OpSize,
}

func (p *Parser) parseExpression() (Expr, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (Expr, error) {
	start := p.token.Context
	left, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if !p.token.Is(SymbolAssign) {
		return left, nil
	}
	if err := p.step(); err != nil {
		return nil, err
	}
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}

	switch target := left.(type) {
	case *NameExpr:
		return &AssignExpr{
			Ctx:    p.span(start),
			Target: target.Name,
			Value:  value,
		}, nil
	case *GetIndexExpr:
		return &SetIndexExpr{
			Ctx:    p.span(start),
			Target: target.Target,
			Index:  target.Index,
			Value:  value,
		}, nil
	}
	return nil, Errorf(SyntaxError, left.Context(), "expression is not assignable")
}

func (p *Parser) parseBinary(level int) (Expr, error) {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}
	start := p.token.Context
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for p.token.Kind == TokenSymbol && p.atLevel(level) {
		op, ok := binaryOps[p.token.Symbol]
		if !ok {
			panic(fmt.Errorf("no binary operator for symbol %s", p.token.Symbol))
		}
		if err := p.step(); err != nil {
			return nil, err
		}
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Ctx:   p.span(start),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
	return left, nil
}

func (p *Parser) atLevel(level int) bool {
	for _, symbol := range binaryLevels[level] {
		if p.token.Symbol == symbol {
			return true
		}
	}
	return false
}

func (p *Parser) parseUnary() (Expr, error) {
	start := p.token.Context
	if p.token.Kind == TokenSymbol {
		if op, ok := unaryOps[p.token.Symbol]; ok {
			if err := p.step(); err != nil {
				return nil, err
			}
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &UnaryExpr{
				Ctx:     p.span(start),
				Op:      op,
				Operand: operand,
			}, nil
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Expr, error) {
	start := p.token.Context
	expr, err := p.parseTerminal()
	if err != nil {
		return nil, err
	}
	for p.token.Is(SymbolLeftBracket) {
		if err := p.step(); err != nil {
			return nil, err
		}
		index, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.mustSkip(SymbolRightBracket, "expected ']' after index"); err != nil {
			return nil, err
		}
		expr = &GetIndexExpr{
			Ctx:    p.span(start),
			Target: expr,
			Index:  index,
		}
	}
	return expr, nil
}

func (p *Parser) parseTerminal() (Expr, error) {
	tok := p.token
	switch tok.Kind {

	case TokenValue:
		if err := p.step(); err != nil {
			return nil, err
		}
		return &LiteralExpr{
			Ctx:   tok.Context,
			Value: tok.Value,
		}, nil

	case TokenName:
		if err := p.step(); err != nil {
			return nil, err
		}
		return &NameExpr{
			Ctx:  tok.Context,
			Name: tok.Text,
		}, nil

	case TokenOpenInterpolate:
		return p.parseInterpolation()

	case TokenSymbol:
		switch tok.Symbol {
		case SymbolLeftParen:
			return p.parseNested()
		case SymbolLeftBracket:
			return p.parseList()
		}

	case TokenKeyword:
		if tok.Keyword.Reserved() {
			return nil, p.errorf("reserved keyword %q", tok.Keyword.String())
		}
	}

	return nil, p.errorf("expected expression, found %s", tok)
}

func (p *Parser) parseNested() (Expr, error) {
	start := p.token.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.mustSkip(SymbolRightParen, "expected ')'"); err != nil {
		return nil, err
	}
	return &NestedExpr{
		Ctx:   p.span(start),
		Inner: inner,
	}, nil
}

func (p *Parser) parseList() (Expr, error) {
	start := p.token.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	if p.token.Is(SymbolRightBracket) {
		if err := p.step(); err != nil {
			return nil, err
		}
		return &ListExpr{Ctx: p.span(start)}, nil
	}

	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.token.IsKeyword(KeywordFor) {
		if err := p.step(); err != nil {
			return nil, err
		}
		pointer, err := p.getName("expected generator variable name")
		if err != nil {
			return nil, err
		}
		if err := p.mustSkip(SymbolColon, "expected ':' after generator variable"); err != nil {
			return nil, err
		}
		iterable, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.mustSkip(SymbolRightBracket, "expected ']' after list generator"); err != nil {
			return nil, err
		}
		return &ListGeneratorExpr{
			Ctx:      p.span(start),
			Element:  first,
			Pointer:  pointer,
			Iterable: iterable,
		}, nil
	}

	elements := []Expr{first}
	for p.token.Is(SymbolComma) {
		if err := p.step(); err != nil {
			return nil, err
		}
		if p.token.Is(SymbolRightBracket) {
			break
		}
		elem, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)
	}
	if err := p.mustSkip(SymbolRightBracket, "expected ',' or ']' in list"); err != nil {
		return nil, err
	}
	return &ListExpr{
		Ctx:      p.span(start),
		Elements: elements,
	}, nil
}

func (p *Parser) parseInterpolation() (Expr, error) {
	start := p.token.Context
	parts := []Expr{
		&LiteralExpr{Ctx: p.token.Context, Value: p.token.Text},
	}
	if err := p.step(); err != nil {
		return nil, err
	}
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		parts = append(parts, expr)

		tok := p.token
		switch tok.Kind {
		case TokenMidInterpolate, TokenCloseInterpolate:
			parts = append(parts, &LiteralExpr{Ctx: tok.Context, Value: tok.Text})
			if err := p.step(); err != nil {
				return nil, err
			}
			if tok.Kind == TokenCloseInterpolate {
				return &InterpolationExpr{
					Ctx:   p.span(start),
					Parts: parts,
				}, nil
			}
		default:
			return nil, p.errorf("expected '}' closing interpolated expression, found %s", tok)
		}
	}
}
