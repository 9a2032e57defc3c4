// Package kicadsexp provides a small S-expression reader for KiCad files.
// It produces a generic tree of atoms and lists; all KiCad-specific
// interpretation happens in the callers.
package kicadsexp

import (
	"io"
	"strconv"
	"strings"
)

// Sexp represents an S-expression node: a leaf atom or a list.
type Sexp interface {
	// IsLeaf returns true if this is an atom (not a list)
	IsLeaf() bool

	// String returns the S-expression text of the node
	String() string
}

// Symbol is a bare atom such as a keyword or a number
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) String() string { return string(s) }

// Quoted is a double-quoted string literal with escapes resolved
type Quoted string

func (q Quoted) IsLeaf() bool   { return true }
func (q Quoted) String() string { return strconv.Quote(string(q)) }

// List represents a parenthesised list of S-expressions
type List struct {
	elements []Sexp
	// Line is the source line of the opening paren
	Line int
}

// NewList builds a list from elements. Mostly useful in tests.
func NewList(elements ...Sexp) *List {
	return &List{elements: elements}
}

func (l *List) IsLeaf() bool { return false }

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Items returns the list elements. The slice must not be modified.
func (l *List) Items() []Sexp {
	return l.elements
}

// Get returns the element at the given index
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

// Name returns the keyword at the head of the list, or "" if the head is
// not a bare symbol.
func (l *List) Name() string {
	if len(l.elements) == 0 {
		return ""
	}
	if sym, ok := l.elements[0].(Symbol); ok {
		return string(sym)
	}
	return ""
}

// Parse parses all S-expressions from an io.Reader.
func Parse(r io.Reader) ([]Sexp, error) {
	parser, err := NewParser(r)
	if err != nil {
		return nil, err
	}
	return parser.ParseAll()
}

// ParseString parses S-expressions from a string
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}
