package joltlang

import (
	"math"
	"slices"
	"testing"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		value    Value
		expected string
	}{
		{Bool(true), "true"},
		{Number(3), "3"},
		{Number(-0.5), "-0.5"},
		{Number(1e-7), "0.0000001"},
		{Number(math.Inf(1)), "inf"},
		{Number(math.Inf(-1)), "-inf"},
		{NaN, "NaN"},
		{String("raw \"text\""), `raw "text"`},
		{NewList(), "[]"},
		{NewList(Number(1), String("a"), NewList(Bool(false))), "[1, a, [false]]"},
	}
	for _, test := range tests {
		if got := test.value.String(); got != test.expected {
			t.Fatalf("got %q, expected %q", got, test.expected)
		}
	}
}

func TestIterate(t *testing.T) {
	collect := func(v Value) []string {
		seq, ok := Iterate(v)
		if !ok {
			t.Fatalf("%v is not iterable", v)
		}
		var ret []string
		for elem := range seq {
			ret = append(ret, elem.String())
		}
		return ret
	}

	if got := collect(Number(3.7)); !slices.Equal(got, []string{"0", "1", "2"}) {
		t.Fatalf("got %v", got)
	}
	if got := collect(Number(-2)); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
	if got := collect(String("日本")); !slices.Equal(got, []string{"日", "本"}) {
		t.Fatalf("got %v", got)
	}
	if got := collect(NewList(Bool(true), Number(2))); !slices.Equal(got, []string{"true", "2"}) {
		t.Fatalf("got %v", got)
	}
	if _, ok := Iterate(Bool(true)); ok {
		t.Fatal()
	}
}

func TestEqual(t *testing.T) {
	list := NewList(Number(1))
	tests := []struct {
		a, b  Value
		equal bool
	}{
		{Number(1), Number(1), true},
		{Number(1), String("1"), false},
		{Bool(true), Number(1), false},
		{String("a"), String("a"), true},
		{NaN, NaN, false},
		{list, list, true},
		{list, NewList(Number(1)), true},
		{list, NewList(Number(1), Number(2)), false},
		{NewList(String("1")), list, false},
	}
	for _, test := range tests {
		if got := Equal(test.a, test.b); got != test.equal {
			t.Fatalf("%v == %v: got %v", test.a, test.b, got)
		}
	}
}

func TestSize(t *testing.T) {
	if n := Size(String("héllo")); n != 5 {
		t.Fatalf("got %d", n)
	}
	if n := Size(NewList(Bool(true))); n != 1 {
		t.Fatalf("got %d", n)
	}
	if n := Size(Number(42)); n != 1 {
		t.Fatalf("got %d", n)
	}
}

func TestFromLiteral(t *testing.T) {
	for _, lit := range []any{true, 1.5, "s"} {
		if _, err := FromLiteral(lit); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := FromLiteral(1); err == nil {
		t.Fatal("should fail")
	}
}

func TestSelfContainingListValues(t *testing.T) {
	a := NewList(Number(0))
	a.Elements[0] = a
	b := NewList(Number(0))
	b.Elements[0] = b
	if str := a.String(); str != "[[...]]" {
		t.Fatalf("got %s", str)
	}
	if !Equal(a, b) {
		t.Fatal("should be equal")
	}
	if Equal(a, NewList(NewList(Number(0)))) {
		t.Fatal("should not be equal")
	}
}
