package document

import "github.com/tombi-toml/tombi/internal/text"

// ArrayKind distinguishes a plain array from an array of tables, and
// tags the synthetic parent table an `[[a.b]]` path walks through
// (spec §3.4, §3.5).
type ArrayKind int

const (
	// ArrayPlain is an ordinary `[ ... ]` array of values.
	ArrayPlain ArrayKind = iota
	// ArrayOfTables is the array built up by repeated `[[a.b]]` headers.
	ArrayOfTables
	// ArrayParent tags an intermediate array reached while walking a
	// dotted `[[a.b.c]]` path through an already-projected table.
	ArrayParent
)

// Array is an ordered list of Values (spec §3.4).
type Array struct {
	base
	Kind  ArrayKind
	items []Value
}

// NewArray constructs an empty Array of the given kind.
func NewArray(kind ArrayKind, rng text.ByteRange) *Array {
	return &Array{base: base{rng: rng}, Kind: kind}
}

// Append adds a value to the end of the array, used both for literal
// `[ ... ]` elements and for each `[[a.b]]` occurrence.
func (a *Array) Append(v Value) { a.items = append(a.items, v) }

// Values returns every element in source order.
func (a *Array) Values() []Value { return a.items }

// Len returns the element count, used for min/max-items validation.
func (a *Array) Len() int { return len(a.items) }

// Last returns the most recently appended element, or nil if empty —
// used while walking an `[[a.b]]` path to re-enter the table most
// recently appended to the array.
func (a *Array) Last() Value {
	if len(a.items) == 0 {
		return nil
	}
	return a.items[len(a.items)-1]
}
