package format

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/schema"
	"github.com/tombi-toml/tombi/internal/syntax"
)

// maybeSortKeyValues reorders a contiguous key-value run per the schema's
// `x-tombi-table-keys-order`, when it is `ascending`/`descending` (schema
// order is enforced at validation time, not formatting time — spec §4.7
// "Sorting" only names keys-order/values-order, and `schema` ordering has
// no well-defined sort key without re-deriving the declared property
// list, which the validator already checks).
func (f *Formatter) maybeSortKeyValues(kvs []*ast.KeyValue, path []string) []*ast.KeyValue {
	if f.lookup == nil || len(kvs) < 2 {
		return kvs
	}
	sch := f.lookup.ValueSchemaAt(path)
	if sch == nil || (sch.TableKeysOrder != schema.OrderAscending && sch.TableKeysOrder != schema.OrderDescending && sch.TableKeysOrder != schema.OrderVersionSort) {
		return kvs
	}
	out := append([]*ast.KeyValue{}, kvs...)
	sort.SliceStable(out, func(i, j int) bool {
		return schema.CompareOrder(sch.TableKeysOrder, keysText(out[i].Keys()), keysText(out[j].Keys())) < 0
	})
	return out
}

// maybeSortArrayValues reorders array elements per
// `x-tombi-array-values-order` (spec §4.7 "Sorting", SPEC_FULL.md §D.7).
func (f *Formatter) maybeSortArrayValues(values []syntax.Element, path []string) []syntax.Element {
	if f.lookup == nil || len(values) < 2 {
		return values
	}
	sch := f.lookup.ValueSchemaAt(path)
	if sch == nil || sch.ArrayValuesOrder == schema.OrderNone {
		return values
	}
	out := append([]syntax.Element{}, values...)
	sort.SliceStable(out, func(i, j int) bool {
		return schema.CompareOrder(sch.ArrayValuesOrder, nativeOfElement(out[i]), nativeOfElement(out[j])) < 0
	})
	return out
}

// nativeOfElement projects a leaf token into the native Go value
// schema.CompareOrder compares against (string/float64/bool), mirroring
// the validator's document-tree nativeOf but operating directly on raw
// source text since the formatter never touches the document tree.
func nativeOfElement(elem syntax.Element) any {
	tok, ok := elem.(*syntax.Token)
	if !ok {
		return nil
	}
	raw := tok.Text()
	switch tok.Kind() {
	case syntax.KindBasicString, syntax.KindLiteralString, syntax.KindMultiLineBasicString, syntax.KindMultiLineLiteralString:
		return strings.Trim(raw, "\"'")
	case syntax.KindIntegerDec, syntax.KindFloat:
		if f, err := strconv.ParseFloat(strings.ReplaceAll(raw, "_", ""), 64); err == nil {
			return f
		}
		return raw
	case syntax.KindBoolean:
		return raw == "true"
	default:
		return raw
	}
}
