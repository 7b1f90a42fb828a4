package joltsyntax

import (
	"errors"
	"iter"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer produces tokens from a source one at a time.
type Lexer struct {
	source *Source
	text   string
	offset int
	row    int
	column int
	done   bool

	// brace depth of each open string interpolation, innermost last
	interpolations []int
}

func NewLexer(source *Source) *Lexer {
	return &Lexer{
		source: source,
		text:   source.Content,
		row:    1,
		column: 1,
	}
}

// HasNext reports whether the end of file token is still to be produced.
func (l *Lexer) HasNext() bool {
	return !l.done
}

// Tokens iterates over the remaining tokens, stopping after the end of file
// token or the first error.
func (l *Lexer) Tokens() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for l.HasNext() {
			tok, err := l.Next()
			if !yield(tok, err) || err != nil {
				return
			}
		}
	}
}

// Next returns the next token. After the end of file it keeps returning the
// end of file token.
func (l *Lexer) Next() (Token, error) {
	if err := l.skip(); err != nil {
		return Token{}, err
	}

	start := l.mark()
	if l.offset >= len(l.text) {
		if len(l.interpolations) > 0 {
			return Token{}, Errorf(LexicalError, start, "unterminated string interpolation")
		}
		l.done = true
		return Token{
			Kind:    TokenEOF,
			Context: start,
		}, nil
	}

	r, _ := utf8.DecodeRuneInString(l.text[l.offset:])
	switch {
	case isDigit(r):
		return l.lexNumber(start)
	case isWordStart(r):
		return l.lexWord(start)
	case r == '"':
		l.advance()
		return l.lexString(start, false)
	}
	return l.lexSymbol(start)
}

func (l *Lexer) mark() Context {
	return Context{
		Name:   l.source.Name,
		Row:    l.row,
		Column: l.column,
		Start:  l.offset,
		End:    l.offset,
	}
}

func (l *Lexer) from(start Context) Context {
	start.End = l.offset
	return start
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.text[l.offset:])
	l.offset += size
	if r == '\n' {
		l.row++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) peekByte(n int) byte {
	if l.offset+n < len(l.text) {
		return l.text[l.offset+n]
	}
	return 0
}

func (l *Lexer) skip() error {
	for l.offset < len(l.text) {
		rest := l.text[l.offset:]
		r, _ := utf8.DecodeRuneInString(rest)
		switch {

		case unicode.IsSpace(r):
			l.advance()

		case strings.HasPrefix(rest, "//"):
			for l.offset < len(l.text) && l.text[l.offset] != '\n' {
				l.advance()
			}

		case strings.HasPrefix(rest, "/*"):
			start := l.mark()
			l.advance()
			l.advance()
			start.End = l.offset
			for {
				if l.offset >= len(l.text) {
					return Errorf(LexicalError, start, "unclosed block comment")
				}
				if strings.HasPrefix(l.text[l.offset:], "*/") {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}

		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) lexNumber(start Context) (Token, error) {
	l.digits()
	if l.peekByte(0) == '.' && isDigit(rune(l.peekByte(1))) {
		l.advance()
		l.digits()
	}
	if b := l.peekByte(0); b == 'e' || b == 'E' {
		n := 1
		if sign := l.peekByte(1); sign == '+' || sign == '-' {
			n = 2
		}
		if isDigit(rune(l.peekByte(n))) {
			for range n {
				l.advance()
			}
			l.digits()
		}
	}

	ctx := l.from(start)
	text := l.text[ctx.Start:ctx.End]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Token{}, Errorf(LexicalError, ctx, "invalid number literal %s", text)
	}
	return Token{
		Kind:    TokenValue,
		Context: ctx,
		Value:   v,
	}, nil
}

func (l *Lexer) digits() {
	for isDigit(rune(l.peekByte(0))) {
		l.advance()
	}
}

func (l *Lexer) lexWord(start Context) (Token, error) {
	for l.offset < len(l.text) {
		r, _ := utf8.DecodeRuneInString(l.text[l.offset:])
		if !isWordPart(r) {
			break
		}
		l.advance()
	}
	ctx := l.from(start)
	word := l.text[ctx.Start:ctx.End]

	switch word {
	case "true":
		return Token{Kind: TokenValue, Context: ctx, Value: true}, nil
	case "false":
		return Token{Kind: TokenValue, Context: ctx, Value: false}, nil
	}
	if kw, ok := keywords[word]; ok {
		return Token{Kind: TokenKeyword, Context: ctx, Keyword: kw}, nil
	}
	return Token{Kind: TokenName, Context: ctx, Text: word}, nil
}

// lexString lexes string content up to the closing quote or the next
// interpolation opening. The opening quote or the closing interpolation brace
// is already consumed.
func (l *Lexer) lexString(start Context, resumed bool) (Token, error) {
	var b strings.Builder
	for {
		if l.offset >= len(l.text) {
			return Token{}, Errorf(LexicalError, l.from(start), "unterminated string")
		}
		r := l.advance()
		switch r {

		case '"':
			if resumed {
				return Token{
					Kind:    TokenCloseInterpolate,
					Context: l.from(start),
					Text:    b.String(),
				}, nil
			}
			return Token{
				Kind:    TokenValue,
				Context: l.from(start),
				Value:   b.String(),
			}, nil

		case '{':
			l.interpolations = append(l.interpolations, 0)
			kind := TokenOpenInterpolate
			if resumed {
				kind = TokenMidInterpolate
			}
			return Token{
				Kind:    kind,
				Context: l.from(start),
				Text:    b.String(),
			}, nil

		case '\\':
			if err := l.lexEscape(&b); err != nil {
				return Token{}, err
			}

		default:
			b.WriteRune(r)
		}
	}
}

var simpleEscapes = map[rune]rune{
	'0':  0,
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'\\': '\\',
	'"':  '"',
	'{':  '{',
	'}':  '}',
}

func (l *Lexer) lexEscape(b *strings.Builder) error {
	// the backslash is a single column on the current row
	start := l.mark()
	start.Start--
	start.Column--

	if l.offset >= len(l.text) {
		return Errorf(LexicalError, l.from(start), "unterminated escape sequence")
	}
	r := l.advance()
	if c, ok := simpleEscapes[r]; ok {
		b.WriteRune(c)
		return nil
	}
	switch r {
	case 'x':
		return l.lexHexEscape(b, start, 2)
	case 'u':
		return l.lexHexEscape(b, start, 4)
	case 'U':
		return l.lexHexEscape(b, start, 8)
	}
	return Errorf(LexicalError, l.from(start), "invalid escape sequence \\%c", r)
}

func (l *Lexer) lexHexEscape(b *strings.Builder, start Context, n int) error {
	for i := range n {
		if !isHexDigit(l.peekByte(i)) {
			for range i {
				l.advance()
			}
			return Errorf(LexicalError, l.from(start), "invalid hex escape, expecting %d hex digits", n)
		}
	}
	digits := l.text[l.offset : l.offset+n]
	for range n {
		l.advance()
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return Errorf(LexicalError, l.from(start), "invalid code point %s", digits)
	}
	b.WriteRune(rune(v))
	return nil
}

func (l *Lexer) lexSymbol(start Context) (Token, error) {
	rest := l.text[l.offset:]
	for _, s := range symbols {
		if !strings.HasPrefix(rest, s.repr) {
			continue
		}
		for range len(s.repr) {
			l.advance()
		}

		switch s.symbol {
		case SymbolLeftBrace:
			if n := len(l.interpolations); n > 0 {
				l.interpolations[n-1]++
			}
		case SymbolRightBrace:
			if n := len(l.interpolations); n > 0 {
				if l.interpolations[n-1] == 0 {
					// end of the embedded expression, back to string content
					l.interpolations = l.interpolations[:n-1]
					return l.lexString(start, true)
				}
				l.interpolations[n-1]--
			}
		}

		return Token{
			Kind:    TokenSymbol,
			Context: l.from(start),
			Symbol:  s.symbol,
		}, nil
	}

	r := l.advance()
	return Token{}, Errorf(LexicalError, l.from(start), "illegal character %q", r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(b byte) bool {
	return b >= '0' && b <= '9' ||
		b >= 'a' && b <= 'f' ||
		b >= 'A' && b <= 'F'
}

func isWordStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isWordPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
