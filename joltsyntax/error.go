package joltsyntax

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/width"
)

type ErrorKind uint8

const (
	LexicalError ErrorKind = iota + 1
	SyntaxError
	DeclarationError
	TypeError
	NameError
	ControlFlowError
	InternalError
)

var errorKindNames = map[ErrorKind]string{
	LexicalError:     "lexical error",
	SyntaxError:      "syntax error",
	DeclarationError: "declaration error",
	TypeError:        "type error",
	NameError:        "name error",
	ControlFlowError: "control flow error",
	InternalError:    "internal error",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// Error is a fatal diagnostic attached to a source span.
type Error struct {
	Kind    ErrorKind
	Message string
	Context Context
}

func Errorf(kind ErrorKind, ctx Context, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Context: ctx,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Context, e.Kind, e.Message)
}

// AsError extracts a diagnostic from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Render formats the diagnostic with the offending source line and an
// underline below the span.
func (e *Error) Render(source *Source) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s\n", e.Kind, e.Message))
	sb.WriteString(fmt.Sprintf("  --> %s\n", e.Context))

	if source == nil {
		return sb.String()
	}
	line, ok := source.Line(e.Context.Row)
	if !ok {
		return sb.String()
	}
	sb.WriteString("   | ")
	sb.WriteString(line)
	sb.WriteString("\n   | ")

	runes := []rune(line)
	col := e.Context.Column - 1
	for i := 0; i < col && i < len(runes); i++ {
		if runes[i] == '\t' {
			sb.WriteString("\t")
		} else {
			sb.WriteString(strings.Repeat(" ", runeWidth(runes[i])))
		}
	}

	// underline as many runes of the span as fit on this line
	marks := 0
	remaining := e.Context.Len()
	for i := col; i < len(runes) && remaining > 0; i++ {
		marks += runeWidth(runes[i])
		remaining -= len(string(runes[i]))
	}
	if marks == 0 {
		marks = 1
	}
	sb.WriteString(strings.Repeat("^", marks))
	sb.WriteString("\n")

	return sb.String()
}

func runeWidth(r rune) int {
	if r == 0 {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// Errors flattens the diagnostics of an error built with errors.Join.
func Errors(err error) []*Error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var ret []*Error
		for _, e := range joined.Unwrap() {
			ret = append(ret, Errors(e)...)
		}
		return ret
	}
	if e, ok := AsError(err); ok {
		return []*Error{e}
	}
	return nil
}
