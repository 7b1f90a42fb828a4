package joltsyntax

import (
	"strings"
	"testing"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	lexer := NewLexer(NewSource("test", src))
	var tokens []Token
	for tok, err := range lexer.Tokens() {
		if err != nil {
			t.Fatalf("lex %q: %v", src, err)
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func lexError(t *testing.T, src string) *Error {
	t.Helper()
	lexer := NewLexer(NewSource("test", src))
	for _, err := range lexer.Tokens() {
		if err != nil {
			e, ok := AsError(err)
			if !ok {
				t.Fatalf("got %T", err)
			}
			return e
		}
	}
	t.Fatalf("lex %q: should error", src)
	return nil
}

func TestLexer(t *testing.T) {
	type TokenInfo struct {
		Kind   TokenKind
		Source string
	}

	tests := []struct {
		input  string
		tokens []TokenInfo
	}{
		{
			input: "let x = 1;",
			tokens: []TokenInfo{
				{TokenKeyword, "let"},
				{TokenName, "x"},
				{TokenSymbol, "="},
				{TokenValue, "1"},
				{TokenSymbol, ";"},
			},
		},
		{
			input: "a<=b==c!=d>=e&&f||g",
			tokens: []TokenInfo{
				{TokenName, "a"},
				{TokenSymbol, "<="},
				{TokenName, "b"},
				{TokenSymbol, "=="},
				{TokenName, "c"},
				{TokenSymbol, "!="},
				{TokenName, "d"},
				{TokenSymbol, ">="},
				{TokenName, "e"},
				{TokenSymbol, "&&"},
				{TokenName, "f"},
				{TokenSymbol, "||"},
				{TokenName, "g"},
			},
		},
		{
			input: "12 3.5 1e3 2.5E-2 7e",
			tokens: []TokenInfo{
				{TokenValue, "12"},
				{TokenValue, "3.5"},
				{TokenValue, "1000"},
				{TokenValue, "0.025"},
				{TokenValue, "7"},
				{TokenName, "e"},
			},
		},
		{
			input: "true false _under score9",
			tokens: []TokenInfo{
				{TokenValue, "true"},
				{TokenValue, "false"},
				{TokenName, "_under"},
				{TokenName, "score9"},
			},
		},
		{
			input: "x // line comment\n/* block\ncomment */ y",
			tokens: []TokenInfo{
				{TokenName, "x"},
				{TokenName, "y"},
			},
		},
		{
			input: `"a{x}b{ {1} }c"`,
			tokens: []TokenInfo{
				{TokenOpenInterpolate, `"a{`},
				{TokenName, "x"},
				{TokenMidInterpolate, `}b{`},
				{TokenSymbol, "{"},
				{TokenValue, "1"},
				{TokenSymbol, "}"},
				{TokenCloseInterpolate, `}c"`},
			},
		},
		{
			input: "loop @outer { break outer; }",
			tokens: []TokenInfo{
				{TokenKeyword, "loop"},
				{TokenSymbol, "@"},
				{TokenName, "outer"},
				{TokenSymbol, "{"},
				{TokenKeyword, "break"},
				{TokenName, "outer"},
				{TokenSymbol, ";"},
				{TokenSymbol, "}"},
			},
		},
	}

	for _, test := range tests {
		tokens := lexAll(t, test.input)
		if tokens[len(tokens)-1].Kind != TokenEOF {
			t.Fatalf("%q: last token is %v", test.input, tokens[len(tokens)-1])
		}
		tokens = tokens[:len(tokens)-1]
		if len(tokens) != len(test.tokens) {
			t.Fatalf("%q: got %d tokens, want %d", test.input, len(tokens), len(test.tokens))
		}
		for i, tok := range tokens {
			if tok.Kind != test.tokens[i].Kind {
				t.Fatalf("%q: token %d: got kind %v, want %v", test.input, i, tok.Kind, test.tokens[i].Kind)
			}
			if src := tok.Source(); src != test.tokens[i].Source {
				t.Fatalf("%q: token %d: got %q, want %q", test.input, i, src, test.tokens[i].Source)
			}
		}
	}
}

func TestLexerEndOfFile(t *testing.T) {
	lexer := NewLexer(NewSource("test", "  // only a comment"))
	if !lexer.HasNext() {
		t.Fatal()
	}
	for range 3 {
		tok, err := lexer.Next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Kind != TokenEOF {
			t.Fatalf("got %v", tok)
		}
		if lexer.HasNext() {
			t.Fatal("should be done")
		}
	}
}

func TestLexerPositions(t *testing.T) {
	tokens := lexAll(t, "let x\n  = 10;")
	expected := []Context{
		{Name: "test", Row: 1, Column: 1, Start: 0, End: 3},
		{Name: "test", Row: 1, Column: 5, Start: 4, End: 5},
		{Name: "test", Row: 2, Column: 3, Start: 8, End: 9},
		{Name: "test", Row: 2, Column: 5, Start: 10, End: 12},
		{Name: "test", Row: 2, Column: 7, Start: 12, End: 13},
		{Name: "test", Row: 2, Column: 8, Start: 13, End: 13},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("got %d tokens", len(tokens))
	}
	for i, tok := range tokens {
		if tok.Context != expected[i] {
			t.Fatalf("token %d: got %+v, want %+v", i, tok.Context, expected[i])
		}
	}
}

func TestLexerEscapes(t *testing.T) {
	tokens := lexAll(t, `"\0\a\b\f\n\r\t\v\\\"\{\}\x41é\U0001F600"`)
	got, ok := tokens[0].Value.(string)
	if !ok {
		t.Fatalf("got %#v", tokens[0].Value)
	}
	want := "\x00\a\b\f\n\r\t\v\\\"{}Aé\U0001F600"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
		column  int
	}{
		{"x $ y", "illegal character '$'", 3},
		{`let s = "abc`, "unterminated string", 9},
		{"1 /* never closed", "unclosed block comment", 3},
		{`"\q"`, `invalid escape sequence \q`, 2},
		{`"\x4"`, "invalid hex escape", 2},
		{`"\UFFFFFFFF"`, "invalid code point", 2},
		{`"a{1`, "unterminated string interpolation", 5},
	}
	for _, test := range tests {
		e := lexError(t, test.input)
		if e.Kind != LexicalError {
			t.Fatalf("%q: got kind %v", test.input, e.Kind)
		}
		if !strings.Contains(e.Message, test.message) {
			t.Fatalf("%q: got %q", test.input, e.Message)
		}
		if e.Context.Column != test.column {
			t.Fatalf("%q: got column %d", test.input, e.Context.Column)
		}
	}
}

func TestLexerRoundTrip(t *testing.T) {
	src := `
	var total = 0;
	let name = "jo\tlt {braces}";
	for @each (i : [1, 2.5, 1e21, #"abc"]) {
		total = total + i * 2 - (i / 3) % 4;
		if (!(total >= 10) && total != 3 || false ^ true) continue each;
	}
	"sum {total + 1} of {"inner {name}"}!";
	`
	first := lexAll(t, src)

	var parts []string
	for _, tok := range first {
		parts = append(parts, tok.Source())
	}
	second := lexAll(t, strings.Join(parts, " "))

	if len(first) != len(second) {
		t.Fatalf("got %d tokens, want %d", len(second), len(first))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Kind != b.Kind ||
			a.Value != b.Value ||
			a.Text != b.Text ||
			a.Keyword != b.Keyword ||
			a.Symbol != b.Symbol {
			t.Fatalf("token %d: got %v, want %v", i, b, a)
		}
	}
}
