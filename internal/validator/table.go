package validator

import (
	"regexp"

	"github.com/tombi-toml/tombi/internal/cli/ui"
	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/document"
	"github.com/tombi-toml/tombi/internal/schema"
)

// validateTable implements spec §4.6 item 4: iterate in source order,
// resolving each actual key against properties → patternProperties →
// additionalProperties, then check required/min/max-properties and
// keys-order.
func (v *validator) validateTable(val document.Value, sch *schema.ValueSchema, doc *schema.DocumentSchema, path diagnostic.AccessorPath) []diagnostic.Diagnostic {
	tbl, ok := val.(*document.Table)
	if !ok {
		return []diagnostic.Diagnostic{typeMismatch(val, schema.KindTable, path)}
	}

	var diags []diagnostic.Diagnostic
	present := make(map[string]bool, tbl.Len())
	var observedPropertyOrder []string

	for _, e := range tbl.Entries() {
		key := e.Key.Value
		present[key] = true
		childPath := appendAccessor(path, diagnostic.Accessor{Key: key})

		childSchema, matchedProperty, matched := resolveChild(sch, key)
		if !matched {
			if sch.AdditionalProperties != nil && !sch.AdditionalProperties.Allowed {
				msg := "key \"" + key + "\" is not allowed by the schema"
				if names := propertyNames(sch); len(names) > 0 {
					if best := ui.FindBestMatch(key, names, nil); best != "" {
						msg += " (did you mean \"" + best + "\"?)"
					}
				}
				diags = append(diags, diagnostic.Diagnostic{
					Source: diagnostic.SourceValidator, Kind: "key-not-allowed", Severity: diagnostic.SeverityError,
					Range: e.Key.Range, Accessor: childPath, Message: msg,
				})
			}
			continue
		}
		if matchedProperty {
			observedPropertyOrder = append(observedPropertyOrder, key)
		}
		if childSchema == nil {
			continue
		}
		resolved, refDiags := schema.Resolve(childSchema, doc, e.Value.Range())
		diags = append(diags, refDiags...)
		if resolved != nil {
			subDoc, subPath := v.subSchemaFor(childPath, doc)
			diags = append(diags, v.validateValue(e.Value, resolved, subDoc, subPath)...)
		}
	}

	for _, req := range sch.Required {
		if !present[req] {
			diags = append(diags, diagnostic.Diagnostic{
				Source: diagnostic.SourceValidator, Kind: "required-key-missing", Severity: diagnostic.SeverityError,
				Range: tbl.Range(), Accessor: appendAccessor(path, diagnostic.Accessor{Key: req}),
				Message: "required key \"" + req + "\" is missing",
			})
		}
	}
	if sch.MinProperties != nil && tbl.Len() < *sch.MinProperties {
		diags = append(diags, diagnostic.Diagnostic{
			Source: diagnostic.SourceValidator, Kind: "table-min-keys", Severity: diagnostic.SeverityError,
			Range: tbl.Range(), Accessor: path, Message: "table has fewer keys than the schema's minProperties",
		})
	}
	if sch.MaxProperties != nil && tbl.Len() > *sch.MaxProperties {
		diags = append(diags, diagnostic.Diagnostic{
			Source: diagnostic.SourceValidator, Kind: "table-max-keys", Severity: diagnostic.SeverityError,
			Range: tbl.Range(), Accessor: path, Message: "table has more keys than the schema's maxProperties",
		})
	}
	if sch.TableKeysOrder == schema.OrderSchema {
		if !isSubsequence(observedPropertyOrder, propertyNames(sch)) {
			diags = append(diags, diagnostic.Diagnostic{
				Source: diagnostic.SourceValidator, Kind: "table-keys-out-of-order", Severity: diagnostic.SeverityWarn,
				Range: tbl.Range(), Accessor: path,
				Message: "table keys are not a subsequence of the schema's declared property order",
			})
		}
	}
	return diags
}

// resolveChild tries, in spec order, an exact `properties` entry, then a
// matching `patternProperties` regex, then `additionalProperties`'s
// schema (if it carries one). matched is false only when none of the
// three apply, the signal to check additionalProperties' allow/deny.
func resolveChild(sch *schema.ValueSchema, key string) (childSchema *schema.Referable[schema.ValueSchema], matchedProperty bool, matched bool) {
	if ref, ok := sch.Property(key); ok {
		return ref, true, true
	}
	for pattern, ref := range sch.PatternProperties {
		if re, err := regexp.Compile(pattern); err == nil && re.MatchString(key) {
			return ref, false, true
		}
	}
	if sch.AdditionalProperties != nil && sch.AdditionalProperties.Schema != nil {
		return sch.AdditionalProperties.Schema, false, true
	}
	if sch.AdditionalProperties != nil && sch.AdditionalProperties.Allowed {
		return nil, false, true
	}
	return nil, false, false
}

// subSchemaFor swaps in a SourceSchema sub-schema bound at this exact
// accessor path (e.g. `tool.tombi`'s independent binding, spec §3.6),
// falling back to the current DocumentSchema otherwise.
func (v *validator) subSchemaFor(path diagnostic.AccessorPath, fallback *schema.DocumentSchema) (*schema.DocumentSchema, diagnostic.AccessorPath) {
	if v.src == nil || len(v.src.SubSchemas) == 0 {
		return fallback, path
	}
	key := path.String()
	if sub, ok := v.src.SubSchemas[key]; ok {
		return sub, nil
	}
	return fallback, path
}

func propertyNames(sch *schema.ValueSchema) []string {
	out := make([]string, len(sch.Properties))
	for i, p := range sch.Properties {
		out[i] = p.Name
	}
	return out
}

// isSubsequence reports whether observed appears, in order, within
// declared — spec §4.6 item 4's "keys-order = schema" check.
func isSubsequence(observed, declared []string) bool {
	i := 0
	for _, d := range declared {
		if i >= len(observed) {
			return true
		}
		if observed[i] == d {
			i++
		}
	}
	return i >= len(observed)
}
