package joltlang

import (
	"iter"
	"maps"
	"slices"
)

// Record is a named storage cell.
type Record struct {
	Constant bool
	Value    Value
}

type Scope struct {
	Parent  *Scope
	records map[string]*Record
}

func (s *Scope) lookup(name string) (*Record, bool) {
	for scope := s; scope != nil; scope = scope.Parent {
		if record, ok := scope.records[name]; ok {
			return record, true
		}
	}
	return nil, false
}

// Memory is the scope chain of one interpreter. The root scope is never popped.
type Memory struct {
	root    *Scope
	current *Scope
	depth   int
}

func NewMemory() *Memory {
	root := &Scope{
		records: make(map[string]*Record),
	}
	return &Memory{
		root:    root,
		current: root,
	}
}

func (m *Memory) Push() {
	m.current = &Scope{
		Parent:  m.current,
		records: make(map[string]*Record),
	}
	m.depth++
}

func (m *Memory) Pop() {
	if m.current.Parent == nil {
		panic("pop of root scope")
	}
	m.current = m.current.Parent
	m.depth--
}

// Depth is the number of scopes pushed above the root.
func (m *Memory) Depth() int {
	return m.depth
}

// Declare adds a record to the innermost scope. It returns false if the name
// is already declared in that scope.
func (m *Memory) Declare(name string, constant bool, value Value) (*Record, bool) {
	if _, ok := m.current.records[name]; ok {
		return nil, false
	}
	record := &Record{
		Constant: constant,
		Value:    value,
	}
	m.current.records[name] = record
	return record, true
}

// Lookup walks the chain from the innermost scope outward.
func (m *Memory) Lookup(name string) (*Record, bool) {
	return m.current.lookup(name)
}

// Globals iterates the root scope in name order.
func (m *Memory) Globals() iter.Seq2[string, *Record] {
	return func(yield func(string, *Record) bool) {
		for _, name := range slices.Sorted(maps.Keys(m.root.records)) {
			if !yield(name, m.root.records[name]) {
				return
			}
		}
	}
}
