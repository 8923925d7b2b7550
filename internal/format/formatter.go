// Package format implements the AST-directed canonicalizing formatter
// (spec §4.7): it never inspects the document tree, only the lossless
// syntax tree via internal/ast, and is driven entirely by Definitions plus
// any local `# tombi:` value-scope directives.
package format

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/directive"
	"github.com/tombi-toml/tombi/internal/schema"
	"github.com/tombi-toml/tombi/internal/syntax"
	"github.com/tombi-toml/tombi/internal/tomlparse"
)

// SchemaLookup resolves the schema governing the value at a dotted key
// path, so the formatter's sorting rule ("Sorting" in spec §4.7) can
// consult `x-tombi-array-values-order`/`x-tombi-table-keys-order` without
// the formatter depending on schema resolution itself. Pass nil to disable
// schema-driven sorting entirely.
type SchemaLookup interface {
	ValueSchemaAt(path []string) *schema.ValueSchema
}

// Formatter re-emits a syntax tree as canonical TOML.
type Formatter struct {
	defs    *Definitions
	lookup  SchemaLookup
	version tomlparse.Version
	buf     strings.Builder
}

// New creates a Formatter. defs nil uses DefaultDefinitions; lookup nil
// disables schema-driven sorting.
func New(defs *Definitions, lookup SchemaLookup, version tomlparse.Version) *Formatter {
	if defs == nil {
		defs = DefaultDefinitions()
	}
	return &Formatter{defs: defs, lookup: lookup, version: version}
}

// Format renders root's contents as canonical TOML. Running Format again
// on the result is a fixed point (spec §4.7 "Idempotence").
func (f *Formatter) Format(root *ast.Root) string {
	f.buf.Reset()
	for _, g := range ast.BeginDanglingComments(root.N) {
		f.writeCommentGroup(g)
	}
	kvs := root.KeyValues()
	f.renderKeyValueRun(kvs, nil)
	items := root.Items()
	for i := len(kvs); i < len(items); i++ {
		n := items[i]
		if i > 0 && blankLineSeparates(items[i-1], n) {
			f.buf.WriteByte('\n')
		}
		f.renderItem(n, nil)
	}
	for _, g := range ast.EndDanglingComments(root.N) {
		f.writeCommentGroup(g)
	}
	return f.buf.String()
}

func (f *Formatter) renderItem(n *syntax.Node, path []string) {
	switch n.Kind() {
	case syntax.KindKeyValue:
		kv, _ := ast.CastKeyValue(n)
		f.renderKeyValueGroup([]*ast.KeyValue{kv}, path)
	case syntax.KindTable:
		t, _ := ast.CastTable(n)
		f.renderTable(t)
	case syntax.KindArrayOfTable:
		a, _ := ast.CastArrayOfTable(n)
		f.renderArrayOfTable(a)
	}
}

func (f *Formatter) renderTable(t *ast.Table) {
	if lc := ast.LeadingComment(t.N); lc != nil {
		f.writeCommentGroup(*lc)
	}
	f.buf.WriteByte('[')
	f.writeKeys(t.Keys())
	f.buf.WriteByte(']')
	f.writeTrailingComment(t.N)
	f.buf.WriteByte('\n')

	path := keyPath(t.Keys())
	f.renderKeyValueRun(t.KeyValues(), path)
}

func (f *Formatter) renderArrayOfTable(a *ast.ArrayOfTable) {
	if lc := ast.LeadingComment(a.N); lc != nil {
		f.writeCommentGroup(*lc)
	}
	f.buf.WriteString("[[")
	f.writeKeys(a.Keys())
	f.buf.WriteString("]]")
	f.writeTrailingComment(a.N)
	f.buf.WriteByte('\n')

	path := keyPath(a.Keys())
	f.renderKeyValueRun(a.KeyValues(), path)
}

// renderKeyValueRun groups kvs into contiguous runs (no blank line between
// members) so alignment (spec §4.7 "Alignment") is computed per run, not
// across the whole table.
func (f *Formatter) renderKeyValueRun(kvs []*ast.KeyValue, path []string) {
	var run []*ast.KeyValue
	flush := func() {
		if len(run) > 0 {
			f.renderKeyValueGroup(run, path)
			run = nil
		}
	}
	for i, kv := range kvs {
		if i > 0 && blankLineSeparates(kvs[i-1].N, kv.N) {
			flush()
			f.buf.WriteByte('\n')
		}
		run = append(run, kv)
	}
	flush()
}

// renderKeyValueGroup renders one contiguous alignment run, optionally
// sorted per an `x-tombi-table-keys-order` schema hint.
func (f *Formatter) renderKeyValueGroup(kvs []*ast.KeyValue, path []string) {
	kvs = f.maybeSortKeyValues(kvs, path)

	maxName := 0
	if f.defs.AlignEntries && len(kvs) > 1 {
		for _, kv := range kvs {
			if w := runewidth.StringWidth(keysText(kv.Keys())); w > maxName {
				maxName = w
			}
		}
	}

	for _, kv := range kvs {
		if lc := ast.LeadingComment(kv.N); lc != nil {
			f.writeCommentGroup(*lc)
		}
		name := keysText(kv.Keys())
		f.buf.WriteString(name)
		if maxName > 0 {
			if pad := maxName - runewidth.StringWidth(name); pad > 0 {
				f.buf.WriteString(strings.Repeat(" ", pad))
			}
		}
		f.buf.WriteString(" = ")
		childPath := append(append([]string{}, path...), firstSegment(kv.Keys()))
		f.renderValue(kv.Value(), childPath, f.effectiveDefs(kv.N))
		f.writeTrailingComment(kv.N)
		f.buf.WriteByte('\n')
	}
}

func (f *Formatter) writeKeys(keys *ast.Keys) {
	if keys == nil {
		return
	}
	f.buf.WriteString(keysText(keys))
}

func keysText(keys *ast.Keys) string {
	if keys == nil {
		return ""
	}
	segs := keys.Segments()
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.RawText()
	}
	return strings.Join(parts, ".")
}

func firstSegment(keys *ast.Keys) string {
	if keys == nil {
		return ""
	}
	segs := keys.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[0].RawText()
}

func keyPath(keys *ast.Keys) []string {
	if keys == nil {
		return nil
	}
	segs := keys.Segments()
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.RawText()
	}
	return out
}

func (f *Formatter) writeTrailingComment(n *syntax.Node) {
	c := ast.TrailingComment(n)
	if c == nil {
		return
	}
	f.buf.WriteString("  # ")
	f.buf.WriteString(strings.TrimSpace(c.Content()))
}

func (f *Formatter) writeCommentGroup(g ast.CommentGroup) {
	for _, c := range g.Comments() {
		f.buf.WriteString("# ")
		f.buf.WriteString(strings.TrimSpace(c.Content()))
		f.buf.WriteByte('\n')
	}
}

// blankLineSeparates reports whether a blank source line separates the end
// of prev and the start of cur among their shared parent's children.
func blankLineSeparates(prev, cur *syntax.Node) bool {
	parent := cur.Parent()
	if parent == nil {
		return false
	}
	siblings := parent.Children()
	idx := -1
	for i, s := range siblings {
		if s.Range() == cur.Range() {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return false
	}
	breaks := 0
	for i := idx - 1; i >= 0; i-- {
		tok, ok := siblings[i].(*syntax.Token)
		if !ok {
			break
		}
		if tok.Kind() == syntax.KindLineBreak {
			breaks++
			if breaks >= 2 {
				return true
			}
			continue
		}
		if tok.Kind() != syntax.KindWhitespace && tok.Kind() != syntax.KindComment {
			break
		}
	}
	return breaks >= 2
}

// effectiveDefs applies any `# tombi: format.rules.value.*` leading-comment
// override local to n (spec §4.7: "any local value-scope directives
// extracted from leading/trailing comments").
func (f *Formatter) effectiveDefs(n *syntax.Node) *Definitions {
	lc := ast.LeadingComment(n)
	if lc == nil {
		return f.defs
	}
	out := *f.defs
	changed := false
	for _, c := range lc.Comments() {
		if !directive.IsTombiDirective(c) {
			continue
		}
		d := directive.ParseTombiDirective(c, directive.ScopeValue, f.version)
		if v, ok := d.FormatSetting("value", "quote-style"); ok {
			if s, ok := stringValue(v); ok {
				out.QuoteStyle = QuoteStyle(s)
				changed = true
			}
		}
		if v, ok := d.FormatSetting("value", "date-time-delimiter"); ok {
			if s, ok := stringValue(v); ok {
				out.DateTimeDelimiter = DateTimeDelimiter(s)
				changed = true
			}
		}
	}
	if !changed {
		return f.defs
	}
	return &out
}
