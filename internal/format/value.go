package format

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/document"
	"github.com/tombi-toml/tombi/internal/syntax"
)

func stringValue(v document.Value) (string, bool) {
	s, ok := v.(document.String)
	if !ok {
		return "", false
	}
	return s.Text, true
}

// renderValue dispatches on the key-value's right-hand syntax element: a
// leaf token, or an Array/InlineTable node (spec §4.7).
func (f *Formatter) renderValue(elem syntax.Element, path []string, defs *Definitions) {
	switch v := elem.(type) {
	case *syntax.Token:
		f.buf.WriteString(f.renderLeaf(v, defs))
	case *syntax.Node:
		switch v.Kind() {
		case syntax.KindArray:
			arr, _ := ast.CastArray(v)
			f.renderArray(arr, path, defs)
		case syntax.KindInlineTable:
			it, _ := ast.CastInlineTable(v)
			f.renderInlineTable(it, path, defs)
		}
	}
}

func (f *Formatter) renderLeaf(tok *syntax.Token, defs *Definitions) string {
	switch tok.Kind() {
	case syntax.KindBasicString, syntax.KindLiteralString:
		return f.renderQuotedString(tok, defs)
	case syntax.KindOffsetDateTime, syntax.KindLocalDateTime:
		return convertDateTimeDelimiter(tok.Text(), defs.DateTimeDelimiter)
	default:
		return tok.Text()
	}
}

func (f *Formatter) renderQuotedString(tok *syntax.Token, defs *Definitions) string {
	raw := tok.Text()
	switch defs.QuoteStyle {
	case QuotePreferDouble:
		if tok.Kind() == syntax.KindLiteralString {
			if converted, ok := literalToBasic(raw); ok {
				return converted
			}
		}
	case QuotePreferSingle:
		if tok.Kind() == syntax.KindBasicString {
			if converted, ok := basicToLiteral(raw); ok {
				return converted
			}
		}
	}
	return raw
}

func basicToLiteral(raw string) (string, bool) {
	if len(raw) < 2 {
		return raw, false
	}
	inner := raw[1 : len(raw)-1]
	if strings.ContainsAny(inner, "\\'") {
		return raw, false
	}
	return "'" + inner + "'", true
}

func literalToBasic(raw string) (string, bool) {
	if len(raw) < 2 {
		return raw, false
	}
	inner := raw[1 : len(raw)-1]
	if strings.ContainsAny(inner, "\"\\") {
		return raw, false
	}
	return "\"" + inner + "\"", true
}

// convertDateTimeDelimiter swaps the separator between a date-time's date
// and time portions. Offset/local date-times always have exactly 10 bytes
// ("YYYY-MM-DD") before the separator.
func convertDateTimeDelimiter(raw string, style DateTimeDelimiter) string {
	if style == DelimiterPreserve || len(raw) <= 10 {
		return raw
	}
	switch raw[10] {
	case 'T', 't', ' ':
	default:
		return raw
	}
	want := byte('T')
	if style == DelimiterSpace {
		want = ' '
	}
	return raw[:10] + string(want) + raw[11:]
}

// renderArray renders an inline array (spec §4.7 "Line width"): single
// line when it fits within LineWidth and carries no forced-multiline
// marker (inner comment, any pre-existing line break among its children),
// else one element per line with a trailing comma.
func (f *Formatter) renderArray(a *ast.Array, path []string, defs *Definitions) {
	values := a.Values()
	if len(values) == 0 {
		f.buf.WriteString("[]")
		return
	}

	values = f.maybeSortArrayValues(values, path)

	oneLine := f.renderArrayOneLine(values, path, defs)
	if !hasForcedMultiline(a.N) && runewidth.StringWidth(oneLine) <= defs.LineWidth {
		f.buf.WriteString(oneLine)
		return
	}

	f.buf.WriteString("[\n")
	for _, v := range values {
		f.buf.WriteString("  ")
		f.renderValueElement(v, path, defs)
		f.buf.WriteString(",\n")
	}
	f.buf.WriteString("]")
}

func (f *Formatter) renderArrayOneLine(values []syntax.Element, path []string, defs *Definitions) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = f.renderValueElementString(v, path, defs)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// renderInlineTable renders `{ ... }`. When it overflows LineWidth it is
// spread across lines, one key-value per line with a terminating comma
// (spec §4.7 edge case E5), still as one inline table rather than a
// standalone `[table]`.
func (f *Formatter) renderInlineTable(it *ast.InlineTable, path []string, defs *Definitions) {
	kvs := it.KeyValues()
	if len(kvs) == 0 {
		f.buf.WriteString("{}")
		return
	}

	oneLine := f.renderInlineTableOneLine(kvs, path, defs)
	if !hasForcedMultiline(it.N) && runewidth.StringWidth(oneLine) <= defs.LineWidth {
		f.buf.WriteString(oneLine)
		return
	}

	f.buf.WriteString("{\n")
	for _, kv := range kvs {
		f.buf.WriteString("  ")
		f.buf.WriteString(keysText(kv.Keys()))
		f.buf.WriteString(" = ")
		childPath := append(append([]string{}, path...), firstSegment(kv.Keys()))
		f.renderValue(kv.Value(), childPath, defs)
		f.buf.WriteString(",\n")
	}
	f.buf.WriteString("}")
}

func (f *Formatter) renderInlineTableOneLine(kvs []*ast.KeyValue, path []string, defs *Definitions) string {
	parts := make([]string, len(kvs))
	for i, kv := range kvs {
		childPath := append(append([]string{}, path...), firstSegment(kv.Keys()))
		parts[i] = keysText(kv.Keys()) + " = " + f.renderValueElementString(kv.Value(), childPath, defs)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// renderValueElement renders one array element into the buffer.
func (f *Formatter) renderValueElement(elem syntax.Element, path []string, defs *Definitions) {
	f.renderValue(elem, path, defs)
}

// renderValueElementString renders one value into a standalone string, for
// composing a one-line candidate without committing it to the buffer. Uses
// a throwaway Formatter rather than swapping f.buf, since strings.Builder
// forbids being copied once it has been written to.
func (f *Formatter) renderValueElementString(elem syntax.Element, path []string, defs *Definitions) string {
	tmp := &Formatter{defs: f.defs, lookup: f.lookup, version: f.version}
	tmp.renderValue(elem, path, defs)
	return tmp.buf.String()
}

// hasForcedMultiline reports whether n's own children contain a line
// break or a comment — either forces multi-line rendering regardless of
// width (spec §4.7 "no forced-multiline marker").
func hasForcedMultiline(n *syntax.Node) bool {
	for _, tok := range n.ChildTokens() {
		if tok.Kind() == syntax.KindLineBreak || tok.Kind() == syntax.KindComment {
			return true
		}
	}
	return false
}
