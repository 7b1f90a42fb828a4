package joltlang

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Value is a dynamic runtime value: Bool, Number, String or *List.
type Value interface {
	Type() string
	String() string
	joltValue()
}

type Bool bool

type Number float64

type String string

// List is a mutable ordered sequence. Lists are shared by reference.
type List struct {
	Elements []Value
}

var (
	_ Value = Bool(false)
	_ Value = Number(0)
	_ Value = String("")
	_ Value = new(List)
)

func (Bool) joltValue()   {}
func (Number) joltValue() {}
func (String) joltValue() {}
func (*List) joltValue()  {}

const (
	TypeBool   = "bool"
	TypeNumber = "number"
	TypeString = "string"
	TypeList   = "list"
)

func (Bool) Type() string   { return TypeBool }
func (Number) Type() string { return TypeNumber }
func (String) Type() string { return TypeString }
func (*List) Type() string  { return TypeList }

func (b Bool) String() string {
	return strconv.FormatBool(bool(b))
}

func (n Number) String() string {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (s String) String() string {
	return string(s)
}

// String prints [...] where a list contains itself.
func (l *List) String() string {
	return l.format(nil)
}

func (l *List) format(path []*List) string {
	if slices.Contains(path, l) {
		return "[...]"
	}
	path = append(path, l)
	return "[" + strings.Join(lo.Map(l.Elements, func(v Value, _ int) string {
		if list, ok := v.(*List); ok {
			return list.format(path)
		}
		return v.String()
	}), ", ") + "]"
}

func NewList(elements ...Value) *List {
	return &List{
		Elements: elements,
	}
}

// NaN is the result of an omitted expression and of a program that evaluated nothing.
var NaN = Number(math.NaN())

// FromLiteral converts a literal carried by the syntax tree.
func FromLiteral(v any) (Value, error) {
	switch v := v.(type) {
	case bool:
		return Bool(v), nil
	case float64:
		return Number(v), nil
	case string:
		return String(v), nil
	}
	return nil, fmt.Errorf("unknown literal type %T", v)
}

// Iterate returns the iterable projection of v. Numbers produce 0 up to the
// truncated value, strings produce their characters, lists their elements.
func Iterate(v Value) (iter.Seq[Value], bool) {
	switch v := v.(type) {
	case Number:
		return func(yield func(Value) bool) {
			n := math.Trunc(float64(v))
			for i := 0.; i < n; i++ {
				if !yield(Number(i)) {
					return
				}
			}
		}, true
	case String:
		return func(yield func(Value) bool) {
			for _, r := range string(v) {
				if !yield(String(r)) {
					return
				}
			}
		}, true
	case *List:
		return func(yield func(Value) bool) {
			// the length is fixed when iteration starts
			for _, elem := range v.Elements {
				if !yield(elem) {
					return
				}
			}
		}, true
	}
	return nil, false
}

// Equal compares values of the same variant. Values of different variants are never equal.
// Lists compare element-wise; a pair of lists met again while comparing them is equal.
func Equal(a, b Value) bool {
	return equal(a, b, nil)
}

type listPair struct {
	a, b *List
}

func equal(a, b Value, comparing []listPair) bool {
	switch a := a.(type) {
	case Bool:
		b, ok := b.(Bool)
		return ok && a == b
	case Number:
		b, ok := b.(Number)
		return ok && a == b
	case String:
		b, ok := b.(String)
		return ok && a == b
	case *List:
		b, ok := b.(*List)
		if !ok {
			return false
		}
		if a == b {
			return true
		}
		if len(a.Elements) != len(b.Elements) {
			return false
		}
		pair := listPair{a, b}
		if slices.Contains(comparing, pair) {
			return true
		}
		comparing = append(comparing, pair)
		for i, elem := range a.Elements {
			if !equal(elem, b.Elements[i], comparing) {
				return false
			}
		}
		return true
	}
	return false
}

// Size is the character count of a string, the element count of a list, and 1 otherwise.
func Size(v Value) int {
	switch v := v.(type) {
	case String:
		return len([]rune(string(v)))
	case *List:
		return len(v.Elements)
	}
	return 1
}
