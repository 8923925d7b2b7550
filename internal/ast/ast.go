// Package ast provides strongly typed views over the lossless syntax
// tree: keys, values, tables, and the comment-placement accessors the
// formatter and linter both depend on (spec §3.3).
package ast

import (
	"github.com/tombi-toml/tombi/internal/syntax"
)

// Root is the typed view over a KindRoot node.
type Root struct{ N *syntax.Node }

// CastRoot attempts to view n as a Root.
func CastRoot(n *syntax.Node) (*Root, bool) {
	if n == nil || n.Kind() != syntax.KindRoot {
		return nil, false
	}
	return &Root{N: n}, true
}

// Tables returns every top-level [header] table in source order.
func (r *Root) Tables() []*Table {
	var out []*Table
	for _, n := range r.N.ChildrenOfKind(syntax.KindTable) {
		out = append(out, &Table{N: n})
	}
	return out
}

// ArrayOfTables returns every top-level [[header]] in source order.
func (r *Root) ArrayOfTables() []*ArrayOfTable {
	var out []*ArrayOfTable
	for _, n := range r.N.ChildrenOfKind(syntax.KindArrayOfTable) {
		out = append(out, &ArrayOfTable{N: n})
	}
	return out
}

// KeyValues returns the root's own top-level key-values (those that
// precede the first table header).
func (r *Root) KeyValues() []*KeyValue {
	return keyValuesOf(r.N)
}

// Items returns every direct structural child of Root (tables,
// array-of-tables, and key-values) in source order, the order the
// formatter and document-tree projector must preserve.
func (r *Root) Items() []*syntax.Node {
	var out []*syntax.Node
	for _, n := range r.N.ChildNodes() {
		switch n.Kind() {
		case syntax.KindTable, syntax.KindArrayOfTable, syntax.KindKeyValue:
			out = append(out, n)
		}
	}
	return out
}

// Table is the typed view over a KindTable node: `[a.b]` plus its body.
type Table struct{ N *syntax.Node }

// CastTable attempts to view n as a Table.
func CastTable(n *syntax.Node) (*Table, bool) {
	if n == nil || n.Kind() != syntax.KindTable {
		return nil, false
	}
	return &Table{N: n}, true
}

// Keys returns the header's dotted key path.
func (t *Table) Keys() *Keys {
	n := t.N.FirstChildOfKind(syntax.KindKeys)
	if n == nil {
		return nil
	}
	return &Keys{N: n}
}

// KeyValues returns the table body's own key-values (not nested headers).
func (t *Table) KeyValues() []*KeyValue {
	return keyValuesOf(t.N)
}

// ArrayOfTable is the typed view over a KindArrayOfTable node: `[[a]]`.
type ArrayOfTable struct{ N *syntax.Node }

// CastArrayOfTable attempts to view n as an ArrayOfTable.
func CastArrayOfTable(n *syntax.Node) (*ArrayOfTable, bool) {
	if n == nil || n.Kind() != syntax.KindArrayOfTable {
		return nil, false
	}
	return &ArrayOfTable{N: n}, true
}

// Keys returns the header's dotted key path.
func (a *ArrayOfTable) Keys() *Keys {
	n := a.N.FirstChildOfKind(syntax.KindKeys)
	if n == nil {
		return nil
	}
	return &Keys{N: n}
}

// KeyValues returns the table body's own key-values.
func (a *ArrayOfTable) KeyValues() []*KeyValue {
	return keyValuesOf(a.N)
}

func keyValuesOf(parent *syntax.Node) []*KeyValue {
	var out []*KeyValue
	for _, n := range parent.ChildrenOfKind(syntax.KindKeyValue) {
		out = append(out, &KeyValue{N: n})
	}
	return out
}

// KeyValue is the typed view over a KindKeyValue node: `a.b.c = value`.
type KeyValue struct{ N *syntax.Node }

// CastKeyValue attempts to view n as a KeyValue.
func CastKeyValue(n *syntax.Node) (*KeyValue, bool) {
	if n == nil || n.Kind() != syntax.KindKeyValue {
		return nil, false
	}
	return &KeyValue{N: n}, true
}

// Keys returns the (possibly dotted) key path on the left of '='.
func (kv *KeyValue) Keys() *Keys {
	n := kv.N.FirstChildOfKind(syntax.KindKeys)
	if n == nil {
		return nil
	}
	return &Keys{N: n}
}

// Value returns the syntax element on the right of '=': either a literal
// token (string/number/bool/date-time) or an Array/InlineTable node.
// Returns nil if the value is missing (a parse error already recorded).
func (kv *KeyValue) Value() syntax.Element {
	for _, e := range kv.N.Children() {
		switch v := e.(type) {
		case *syntax.Node:
			if v.Kind() == syntax.KindArray || v.Kind() == syntax.KindInlineTable {
				return v
			}
		case *syntax.Token:
			if v.Kind().IsValue() {
				return v
			}
		}
	}
	return nil
}

// Keys is the typed view over a KindKeys node: one or more dotted Key segments.
type Keys struct{ N *syntax.Node }

// Segments returns each dotted segment in left-to-right order.
func (k *Keys) Segments() []*Key {
	var out []*Key
	for _, n := range k.N.ChildrenOfKind(syntax.KindKey) {
		out = append(out, &Key{N: n})
	}
	return out
}

// Key is the typed view over a single KindKey segment.
type Key struct{ N *syntax.Node }

// RawText returns the key's exact source text, quotes included if quoted.
func (k *Key) RawText() string {
	return k.N.Text()
}

// Array is the typed view over a KindArray node.
type Array struct{ N *syntax.Node }

// CastArray attempts to view n as an Array.
func CastArray(n *syntax.Node) (*Array, bool) {
	if n == nil || n.Kind() != syntax.KindArray {
		return nil, false
	}
	return &Array{N: n}, true
}

// Values returns every element value in source order.
func (a *Array) Values() []syntax.Element {
	var out []syntax.Element
	for _, e := range a.N.Children() {
		switch v := e.(type) {
		case *syntax.Node:
			if v.Kind() == syntax.KindArray || v.Kind() == syntax.KindInlineTable {
				out = append(out, v)
			}
		case *syntax.Token:
			if v.Kind().IsValue() {
				out = append(out, v)
			}
		}
	}
	return out
}

// InlineTable is the typed view over a KindInlineTable node.
type InlineTable struct{ N *syntax.Node }

// CastInlineTable attempts to view n as an InlineTable.
func CastInlineTable(n *syntax.Node) (*InlineTable, bool) {
	if n == nil || n.Kind() != syntax.KindInlineTable {
		return nil, false
	}
	return &InlineTable{N: n}, true
}

// KeyValues returns the inline table's key-values in source order.
func (it *InlineTable) KeyValues() []*KeyValue {
	return keyValuesOf(it.N)
}
