package document

import "github.com/tombi-toml/tombi/internal/text"

// TableKind governs which merge rules apply to a Table (spec §3.4, §3.5).
type TableKind int

const (
	// TableHeader was created by an explicit `[a.b]` header.
	TableHeader TableKind = iota
	// TableDottedKeys was created implicitly by `a.b.c = v`.
	TableDottedKeys
	// TableInline was created by `{ ... }`.
	TableInline
	// TableParentOfArrayOfTable is an intermediate table on the path to
	// an `[[a.b]]` array-of-tables; it accepts further `[[a.b]]` entries
	// but never direct key-values of its own.
	TableParentOfArrayOfTable
)

// entry pairs a Key with its Value, preserving both the insertion
// (source) order and fast lookup by key text.
type entry struct {
	key   Key
	value Value
}

// Table is an ordered map from Key to Value (spec §3.4). Iteration order
// is always source/insertion order; lookups are O(1) via an index.
type Table struct {
	base
	Kind    TableKind
	order   []entry
	index   map[string]int
}

// NewTable constructs an empty Table of the given kind.
func NewTable(kind TableKind, rng text.ByteRange) *Table {
	return &Table{base: base{rng: rng}, Kind: kind, index: make(map[string]int)}
}

// Get looks up a direct child by key text, reporting whether it exists.
func (t *Table) Get(key string) (Value, bool) {
	i, ok := t.index[key]
	if !ok {
		return nil, false
	}
	return t.order[i].value, true
}

// GetKey returns the Key as originally projected (kind, exact ranges),
// used for rename/highlight and duplicate-key diagnostics.
func (t *Table) GetKey(key string) (Key, bool) {
	i, ok := t.index[key]
	if !ok {
		return Key{}, false
	}
	return t.order[i].key, true
}

// Keys returns every direct child key in source order.
func (t *Table) Keys() []Key {
	out := make([]Key, len(t.order))
	for i, e := range t.order {
		out[i] = e.key
	}
	return out
}

// Entry pairs a projected Key with its Value.
type Entry struct {
	Key   Key
	Value Value
}

// Entries returns every (key, value) pair in source order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.order))
	for i, e := range t.order {
		out[i] = Entry{e.key, e.value}
	}
	return out
}

// Has reports whether key is already a direct child.
func (t *Table) Has(key string) bool {
	_, ok := t.index[key]
	return ok
}

// set inserts or overwrites a direct child, preserving original
// insertion position on overwrite. Projection checks Has before every
// insert, so none of its paths overwrite an existing child.
func (t *Table) set(key Key, value Value) {
	if i, ok := t.index[key.Value]; ok {
		t.order[i] = entry{key, value}
		return
	}
	t.index[key.Value] = len(t.order)
	t.order = append(t.order, entry{key, value})
}

// Len returns the number of direct children, used for min/max-properties
// validation.
func (t *Table) Len() int { return len(t.order) }
