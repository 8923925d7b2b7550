package validator

import (
	"reflect"

	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/document"
	"github.com/tombi-toml/tombi/internal/schema"
)

// validateArray implements spec §4.6 item 3: recurse into every item with
// `items` as the current schema, enforce min/max/uniqueness, and check
// `values-order` if the schema specifies one.
func (v *validator) validateArray(val document.Value, sch *schema.ValueSchema, doc *schema.DocumentSchema, path diagnostic.AccessorPath) []diagnostic.Diagnostic {
	arr, ok := val.(*document.Array)
	if !ok {
		return []diagnostic.Diagnostic{typeMismatch(val, schema.KindArray, path)}
	}

	var diags []diagnostic.Diagnostic
	if sch.MinItems != nil && arr.Len() < *sch.MinItems {
		diags = append(diags, diagnostic.Diagnostic{
			Source: diagnostic.SourceValidator, Kind: "array-min-values", Severity: diagnostic.SeverityError,
			Range: arr.Range(), Accessor: path, Message: "array has fewer items than the schema's minItems",
		})
	}
	if sch.MaxItems != nil && arr.Len() > *sch.MaxItems {
		diags = append(diags, diagnostic.Diagnostic{
			Source: diagnostic.SourceValidator, Kind: "array-max-values", Severity: diagnostic.SeverityError,
			Range: arr.Range(), Accessor: path, Message: "array has more items than the schema's maxItems",
		})
	}

	items := arr.Values()
	if sch.UniqueItems {
		diags = append(diags, checkUniqueItems(items, arr, path)...)
	}
	if sch.ArrayValuesOrder != schema.OrderNone {
		diags = append(diags, checkArrayOrder(items, sch.ArrayValuesOrder, path)...)
	}

	if sch.Items != nil {
		itemSchema, refDiags := schema.Resolve(sch.Items, doc, arr.Range())
		diags = append(diags, refDiags...)
		if itemSchema != nil {
			for i, item := range items {
				itemPath := appendAccessor(path, diagnostic.Accessor{IsIndex: true, Index: i})
				diags = append(diags, v.validateValue(item, itemSchema, doc, itemPath)...)
			}
		}
	}
	return diags
}

func checkUniqueItems(items []document.Value, arr *document.Array, path diagnostic.AccessorPath) []diagnostic.Diagnostic {
	seen := make([]any, 0, len(items))
	var diags []diagnostic.Diagnostic
	for _, item := range items {
		native := nativeOf(item)
		for _, s := range seen {
			if reflect.DeepEqual(s, native) {
				diags = append(diags, diagnostic.Diagnostic{
					Source: diagnostic.SourceValidator, Kind: "array-not-unique", Severity: diagnostic.SeverityError,
					Range: item.Range(), Accessor: path, Message: "array contains a duplicate value but uniqueItems is set",
				})
				break
			}
		}
		seen = append(seen, native)
	}
	return diags
}

// checkArrayOrder reports the first adjacent pair out of order, grounded
// on schema.CompareOrder — the same comparator the formatter's sort rule
// uses (SPEC_FULL.md §D.7) — so a warning here always agrees with what a
// schema-driven format pass would rewrite the array to.
func checkArrayOrder(items []document.Value, order schema.OrderKind, path diagnostic.AccessorPath) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	for i := 1; i < len(items); i++ {
		prev, cur := nativeOf(items[i-1]), nativeOf(items[i])
		if schema.CompareOrder(order, prev, cur) > 0 {
			diags = append(diags, diagnostic.Diagnostic{
				Source: diagnostic.SourceValidator, Kind: "array-out-of-order", Severity: diagnostic.SeverityWarn,
				Range: items[i].Range(), Accessor: path, Message: "array value is out of order",
			})
		}
	}
	return diags
}
