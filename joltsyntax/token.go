package joltsyntax

import (
	"fmt"
	"strconv"
	"strings"
)

type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenValue
	TokenName
	TokenKeyword
	TokenSymbol
	TokenOpenInterpolate
	TokenMidInterpolate
	TokenCloseInterpolate
)

var tokenKindNames = [...]string{
	TokenEOF:              "end of file",
	TokenValue:            "value",
	TokenName:             "name",
	TokenKeyword:          "keyword",
	TokenSymbol:           "symbol",
	TokenOpenInterpolate:  "interpolation start",
	TokenMidInterpolate:   "interpolation middle",
	TokenCloseInterpolate: "interpolation end",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

// Token is one lexical unit.
// Value holds a float64, string or bool for TokenValue.
// Text holds the identifier for TokenName and the partial string literal for
// interpolation tokens.
type Token struct {
	Kind    TokenKind
	Context Context
	Value   any
	Text    string
	Keyword Keyword
	Symbol  Symbol
}

func (t Token) Is(symbol Symbol) bool {
	return t.Kind == TokenSymbol && t.Symbol == symbol
}

func (t Token) IsKeyword(keyword Keyword) bool {
	return t.Kind == TokenKeyword && t.Keyword == keyword
}

func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "end of file"
	case TokenName:
		return fmt.Sprintf("name %q", t.Text)
	case TokenKeyword:
		return fmt.Sprintf("keyword %q", t.Keyword.String())
	case TokenSymbol:
		return fmt.Sprintf("%q", t.Symbol.String())
	}
	return t.Source()
}

// Source renders the token back to source text.
// Re-lexing the rendering yields an equal token, modulo position.
func (t Token) Source() string {
	switch t.Kind {
	case TokenEOF:
		return ""
	case TokenValue:
		switch v := t.Value.(type) {
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 64)
		case string:
			return `"` + QuoteString(v) + `"`
		case bool:
			return strconv.FormatBool(v)
		}
		return fmt.Sprint(t.Value)
	case TokenName:
		return t.Text
	case TokenKeyword:
		return t.Keyword.String()
	case TokenSymbol:
		return t.Symbol.String()
	case TokenOpenInterpolate:
		return `"` + QuoteString(t.Text) + `{`
	case TokenMidInterpolate:
		return `}` + QuoteString(t.Text) + `{`
	case TokenCloseInterpolate:
		return `}` + QuoteString(t.Text) + `"`
	}
	return ""
}

// QuoteString escapes s for use between double quotes.
func QuoteString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case 0:
			b.WriteString(`\0`)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\v':
			b.WriteString(`\v`)
		case '\\', '"', '{', '}':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

type Keyword uint8

const (
	KeywordLet Keyword = iota + 1
	KeywordVar
	KeywordIf
	KeywordElse
	KeywordWhile
	KeywordDo
	KeywordFor
	KeywordBreak
	KeywordContinue
	KeywordLoop
	KeywordFun
	KeywordReturn
	KeywordClass
)

var keywords = map[string]Keyword{
	"let":      KeywordLet,
	"var":      KeywordVar,
	"if":       KeywordIf,
	"else":     KeywordElse,
	"while":    KeywordWhile,
	"do":       KeywordDo,
	"for":      KeywordFor,
	"break":    KeywordBreak,
	"continue": KeywordContinue,
	"loop":     KeywordLoop,
	"fun":      KeywordFun,
	"return":   KeywordReturn,
	"class":    KeywordClass,
}

var keywordNames = func() map[Keyword]string {
	ret := make(map[Keyword]string, len(keywords))
	for name, kw := range keywords {
		ret[kw] = name
	}
	return ret
}()

func (k Keyword) String() string {
	if name, ok := keywordNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Keyword(%d)", k)
}

// Reserved reports whether the keyword has no statement form yet.
func (k Keyword) Reserved() bool {
	switch k {
	case KeywordFun, KeywordReturn, KeywordClass:
		return true
	}
	return false
}

type Symbol uint8

const (
	SymbolLeftParen Symbol = iota + 1
	SymbolRightParen
	SymbolLeftBracket
	SymbolRightBracket
	SymbolLeftBrace
	SymbolRightBrace
	SymbolSemicolon
	SymbolComma
	SymbolColon
	SymbolAt
	SymbolAssign
	SymbolEqual
	SymbolNotEqual
	SymbolLess
	SymbolLessEqual
	SymbolGreater
	SymbolGreaterEqual
	SymbolPlus
	SymbolMinus
	SymbolStar
	SymbolSlash
	SymbolPercent
	SymbolBang
	SymbolHash
	SymbolAmp
	SymbolAmpAmp
	SymbolPipe
	SymbolPipePipe
	SymbolCaret
)

// symbols is ordered longest representation first so that the lexer can
// match maximally.
var symbols = []struct {
	repr   string
	symbol Symbol
}{
	{"==", SymbolEqual},
	{"!=", SymbolNotEqual},
	{"<=", SymbolLessEqual},
	{">=", SymbolGreaterEqual},
	{"&&", SymbolAmpAmp},
	{"||", SymbolPipePipe},
	{"(", SymbolLeftParen},
	{")", SymbolRightParen},
	{"[", SymbolLeftBracket},
	{"]", SymbolRightBracket},
	{"{", SymbolLeftBrace},
	{"}", SymbolRightBrace},
	{";", SymbolSemicolon},
	{",", SymbolComma},
	{":", SymbolColon},
	{"@", SymbolAt},
	{"=", SymbolAssign},
	{"<", SymbolLess},
	{">", SymbolGreater},
	{"+", SymbolPlus},
	{"-", SymbolMinus},
	{"*", SymbolStar},
	{"/", SymbolSlash},
	{"%", SymbolPercent},
	{"!", SymbolBang},
	{"#", SymbolHash},
	{"&", SymbolAmp},
	{"|", SymbolPipe},
	{"^", SymbolCaret},
}

var symbolReprs = func() map[Symbol]string {
	ret := make(map[Symbol]string, len(symbols))
	for _, s := range symbols {
		ret[s.symbol] = s.repr
	}
	return ret
}()

func (s Symbol) String() string {
	if repr, ok := symbolReprs[s]; ok {
		return repr
	}
	return fmt.Sprintf("Symbol(%d)", s)
}
