package document

import (
	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/syntax"
	"github.com/tombi-toml/tombi/internal/text"
)

// projector holds the mutable state of one AST → DocumentTree pass
// (spec §4.3). Not reused across projections.
type projector struct {
	version   Version
	diags     []diagnostic.Diagnostic
	observers []Observer
}

func (p *projector) errorf(kind diagnostic.Kind, rng text.ByteRange, msg string) {
	p.diags = append(p.diags, diagnostic.New(diagnostic.SourceMerge, kind, rng, msg))
}

// Project implements the total function `AST → (DocumentTree, merge-errors)`
// (spec §4.3): a total, panic-free structural merge over a parsed syntax
// tree's typed AST view.
func Project(root *ast.Root, version Version, observers ...Observer) (*Table, []diagnostic.Diagnostic) {
	p := &projector{version: version, observers: observers}
	doc := NewTable(TableHeader, root.N.Range())

	var cursor *Table = doc
	var cursorPath []string

	for _, item := range root.Items() {
		switch item.Kind() {
		case syntax.KindKeyValue:
			kv, _ := ast.CastKeyValue(item)
			p.projectKeyValue(cursor, cursorPath, kv)
		case syntax.KindTable:
			tbl, _ := ast.CastTable(item)
			segs := toKeys(tbl.Keys())
			path := keyPath(segs)
			target := p.navigateHeaderPath(doc, segs, false)
			cursor, cursorPath = target, path
			for _, o := range p.observers {
				o.OnTable(path, target)
			}
			for _, kv := range tbl.KeyValues() {
				p.projectKeyValue(cursor, cursorPath, kv)
			}
		case syntax.KindArrayOfTable:
			aot, _ := ast.CastArrayOfTable(item)
			segs := toKeys(aot.Keys())
			path := keyPath(segs)
			target, arr, idx := p.navigateArrayOfTablePath(doc, segs)
			cursor, cursorPath = target, path
			if arr != nil {
				for _, o := range p.observers {
					o.OnArrayOfTables(path, arr, idx)
				}
			}
			for _, kv := range aot.KeyValues() {
				p.projectKeyValue(cursor, cursorPath, kv)
			}
		}
	}

	return doc, p.diags
}

func keyPath(segs []Key) []string {
	out := make([]string, len(segs))
	for i, k := range segs {
		out[i] = k.Value
	}
	return out
}

func toKeys(keys *ast.Keys) []Key {
	if keys == nil {
		return nil
	}
	var out []Key
	for _, seg := range keys.Segments() {
		out = append(out, decodeKey(seg.N))
	}
	return out
}

func (p *projector) projectKeyValue(cursor *Table, path []string, kv *ast.KeyValue) {
	segs := toKeys(kv.Keys())
	if len(segs) == 0 {
		return
	}
	value := p.decodeValue(kv.Value())
	p.insertDottedKeyValue(cursor, segs, value)
	for _, o := range p.observers {
		o.OnKeyValue(append(append([]string{}, path...), keyPath(segs)...), value)
	}
}

// insertDottedKeyValue walks a (possibly dotted) key path under cursor,
// creating DOTTED-KEYS intermediate tables as needed, and inserts value at
// the leaf. Emits a merge error on any key-uniqueness or value-path
// conflict instead of overwriting (spec §3.5, §4.3).
func (p *projector) insertDottedKeyValue(cursor *Table, segs []Key, value Value) {
	cur := cursor
	for i, seg := range segs {
		last := i == len(segs)-1
		if last {
			if cur.Has(seg.Value) {
				p.errorf("duplicate-key", seg.Range, "duplicate key \""+seg.Value+"\"")
				return
			}
			cur.set(seg, value)
			return
		}
		existing, ok := cur.Get(seg.Value)
		if !ok {
			nt := NewTable(TableDottedKeys, seg.Range)
			cur.set(seg, nt)
			cur = nt
			continue
		}
		tbl, ok2 := existing.(*Table)
		if !ok2 {
			p.errorf("value-path-conflict", seg.Range, "key path conflicts with a non-table value")
			return
		}
		cur = tbl
	}
}

// navigateHeaderPath resolves (creating as needed) the table named by an
// explicit `[a.b.c]` header, enforcing the merge rules in spec §3.5: a
// table already created by dotted keys cannot be re-opened by a later
// header (Resolved Open Question, SPEC_FULL.md §E.1), and a header cannot
// redefine a table it already fully defined.
func (p *projector) navigateHeaderPath(root *Table, segs []Key, forArray bool) *Table {
	cur := root
	for i, seg := range segs {
		last := i == len(segs)-1
		existing, ok := cur.Get(seg.Value)
		if !ok {
			nt := NewTable(TableHeader, seg.Range)
			cur.set(seg, nt)
			cur = nt
			continue
		}
		switch v := existing.(type) {
		case *Table:
			if last && !forArray {
				switch v.Kind {
				case TableDottedKeys:
					p.errorf("redefinition-incompatible-kind", seg.Range, "cannot re-open a table already created by dotted keys")
				case TableHeader:
					p.errorf("redefinition-incompatible-kind", seg.Range, "table already defined")
				case TableParentOfArrayOfTable, TableInline:
					p.errorf("redefinition-incompatible-kind", seg.Range, "table already defined as a different kind")
				}
			}
			cur = v
		case *Array:
			if v.Kind == ArrayOfTables {
				if lastTbl, ok3 := v.Last().(*Table); ok3 {
					cur = lastTbl
					continue
				}
			}
			p.errorf("array-of-tables-extends-non-array", seg.Range, "key path conflicts with an array value")
			fallback := NewTable(TableHeader, seg.Range)
			cur = fallback
		default:
			p.errorf("value-path-conflict", seg.Range, "key path conflicts with a non-table value")
			cur = NewTable(TableHeader, seg.Range)
		}
	}
	return cur
}

// navigateArrayOfTablePath resolves an `[[a.b.c]]` header: it navigates the
// parent path exactly like navigateHeaderPath, then appends a new table to
// (creating, if absent) the ARRAY_OF_TABLES array at the final segment,
// tagging the containing table PARENT-OF-ARRAY-OF-TABLE (spec §3.5).
func (p *projector) navigateArrayOfTablePath(root *Table, segs []Key) (*Table, *Array, int) {
	if len(segs) == 0 {
		return root, nil, -1
	}
	parent := p.navigateHeaderPath(root, segs[:len(segs)-1], true)
	last := segs[len(segs)-1]
	if parent != root {
		parent.Kind = TableParentOfArrayOfTable
	}

	existing, ok := parent.Get(last.Value)
	if !ok {
		arr := NewArray(ArrayOfTables, last.Range)
		parent.set(last, arr)
		newTbl := NewTable(TableHeader, last.Range)
		arr.Append(newTbl)
		return newTbl, arr, 0
	}
	arr, ok2 := existing.(*Array)
	if !ok2 || arr.Kind != ArrayOfTables {
		p.errorf("array-of-tables-extends-non-array", last.Range, "key already bound to a non-array-of-tables value")
		return NewTable(TableHeader, last.Range), nil, -1
	}
	newTbl := NewTable(TableHeader, last.Range)
	arr.Append(newTbl)
	return newTbl, arr, arr.Len() - 1
}

func (p *projector) decodeArray(n *syntax.Node) Value {
	arr := NewArray(ArrayPlain, n.Range())
	a, _ := ast.CastArray(n)
	for _, e := range a.Values() {
		arr.Append(p.decodeValue(e))
	}
	return arr
}

func (p *projector) decodeInlineTable(n *syntax.Node) Value {
	tbl := NewTable(TableInline, n.Range())
	it, _ := ast.CastInlineTable(n)
	for _, kv := range it.KeyValues() {
		segs := toKeys(kv.Keys())
		val := p.decodeValue(kv.Value())
		p.insertDottedKeyValue(tbl, segs, val)
	}
	return tbl
}
