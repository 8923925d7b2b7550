// Package validator walks a document tree alongside a schema, emitting
// diagnostics for every mismatch (spec §4.6). Given a *schema.SourceSchema
// resolved for one document, it
// produces the same []diagnostic.Diagnostic shape every other pipeline
// stage does.
package validator

import (
	"github.com/sourcegraph/conc/iter"

	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/document"
	"github.com/tombi-toml/tombi/internal/schema"
)

// Validate walks root against src, returning every diagnostic produced
// along the way. A nil src (no applicable schema) is a no-op: an
// unassociated document is never invalid.
func Validate(root *document.Table, src *schema.SourceSchema) []diagnostic.Diagnostic {
	if src == nil || src.Root == nil {
		return nil
	}
	effective, diags := schema.Resolve(src.Root.Root, src.Root, root.Range())
	if effective == nil {
		return diags
	}
	v := &validator{src: src}
	diags = append(diags, v.validateValue(root, effective, src.Root, nil)...)
	return diags
}

// validator holds the state threaded through one Validate call: just the
// SourceSchema, since everything else (current DocumentSchema, accessor
// path) is passed explicitly so the recursion stays goroutine-safe for the
// combinator fan-out.
type validator struct {
	src *schema.SourceSchema
}

// validateValue is the single recursive step spec §4.6 describes: resolve
// the effective schema (unwrapping oneOf/anyOf/allOf), then dispatch on
// kind.
func (v *validator) validateValue(val document.Value, sch *schema.ValueSchema, doc *schema.DocumentSchema, path diagnostic.AccessorPath) []diagnostic.Diagnostic {
	if sch == nil {
		return nil
	}

	var diags []diagnostic.Diagnostic
	if sch.Deprecated {
		diags = append(diags, diagnostic.Diagnostic{
			Source: diagnostic.SourceValidator, Kind: "deprecated", Severity: diagnostic.SeverityWarn,
			Range: val.Range(), Message: "value is deprecated", Accessor: path,
		})
	}

	switch sch.Kind {
	case schema.KindOneOf:
		return append(diags, v.validateOneOf(val, sch, doc, path)...)
	case schema.KindAnyOf:
		return append(diags, v.validateAnyOf(val, sch, doc, path)...)
	case schema.KindAllOf:
		return append(diags, v.validateAllOf(val, sch, doc, path)...)
	case schema.KindTable:
		return append(diags, v.validateTable(val, sch, doc, path)...)
	case schema.KindArray:
		return append(diags, v.validateArray(val, sch, doc, path)...)
	default:
		return append(diags, v.validatePrimitive(val, sch, path)...)
	}
}

// alternative is one combinator branch's outcome: its resolved schema (nil
// if the $ref itself failed to resolve) and the diagnostics validating
// against it produced.
type alternative struct {
	schema *schema.ValueSchema
	diags  []diagnostic.Diagnostic
}

// evaluateAlternatives resolves and validates val against every variant
// concurrently via conc/iter, grounded on the teacher's go.mod carrying
// sourcegraph/conc for exactly this kind of bounded structured-concurrency
// fan-out (SPEC_FULL.md §B).
func (v *validator) evaluateAlternatives(val document.Value, variants []*schema.Referable[schema.ValueSchema], doc *schema.DocumentSchema, path diagnostic.AccessorPath) []alternative {
	return iter.Map(variants, func(ref **schema.Referable[schema.ValueSchema]) alternative {
		resolved, refDiags := schema.Resolve(*ref, doc, val.Range())
		if resolved == nil {
			return alternative{diags: refDiags}
		}
		vdiags := v.validateValue(val, resolved, doc, path)
		return alternative{schema: resolved, diags: append(refDiags, vdiags...)}
	})
}

func (v *validator) validateOneOf(val document.Value, sch *schema.ValueSchema, doc *schema.DocumentSchema, path diagnostic.AccessorPath) []diagnostic.Diagnostic {
	alts := v.evaluateAlternatives(val, sch.Variants, doc, path)

	var matches []alternative
	for _, a := range alts {
		if a.schema != nil && !diagnostic.HasError(a.diags) {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0].diags
	case 0:
		return bestCandidate(alts).diags
	default:
		return []diagnostic.Diagnostic{diagnostic.Diagnostic{
			Source: diagnostic.SourceValidator, Kind: "ambiguous", Severity: diagnostic.SeverityError,
			Range: val.Range(), Accessor: path,
			Message: "value matches more than one oneOf alternative",
		}}
	}
}

func (v *validator) validateAnyOf(val document.Value, sch *schema.ValueSchema, doc *schema.DocumentSchema, path diagnostic.AccessorPath) []diagnostic.Diagnostic {
	alts := v.evaluateAlternatives(val, sch.Variants, doc, path)
	for _, a := range alts {
		if a.schema != nil && !diagnostic.HasError(a.diags) {
			return a.diags
		}
	}
	return bestCandidate(alts).diags
}

func (v *validator) validateAllOf(val document.Value, sch *schema.ValueSchema, doc *schema.DocumentSchema, path diagnostic.AccessorPath) []diagnostic.Diagnostic {
	alts := v.evaluateAlternatives(val, sch.Variants, doc, path)
	var diags []diagnostic.Diagnostic
	for _, a := range alts {
		diags = append(diags, a.diags...)
	}
	return diags
}

// bestCandidate picks the alternative with the fewest diagnostics, spec
// §4.6's "error score" — a plain diagnostic count is the simplest
// admissible scoring function and keeps the comparison total.
func bestCandidate(alts []alternative) alternative {
	best := alternative{diags: []diagnostic.Diagnostic{{
		Source: diagnostic.SourceValidator, Kind: "no-matching-alternative", Severity: diagnostic.SeverityError,
		Message: "value does not match any alternative",
	}}}
	set := false
	for _, a := range alts {
		if a.schema == nil {
			continue
		}
		if !set || len(a.diags) < len(best.diags) {
			best, set = a, true
		}
	}
	return best
}

func kindOf(val document.Value) (schema.ValueKind, bool) {
	switch val.(type) {
	case document.String:
		return schema.KindString, true
	case document.Integer:
		return schema.KindInteger, true
	case document.Float:
		return schema.KindFloat, true
	case document.Boolean:
		return schema.KindBoolean, true
	case document.OffsetDateTime:
		return schema.KindOffsetDateTime, true
	case document.LocalDateTime:
		return schema.KindLocalDateTime, true
	case document.LocalDate:
		return schema.KindLocalDate, true
	case document.LocalTime:
		return schema.KindLocalTime, true
	case *document.Array:
		return schema.KindArray, true
	case *document.Table:
		return schema.KindTable, true
	default:
		return 0, false
	}
}

func typeMismatch(val document.Value, want schema.ValueKind, path diagnostic.AccessorPath) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Source: diagnostic.SourceValidator, Kind: "type-mismatch", Severity: diagnostic.SeverityError,
		Range: val.Range(), Accessor: path,
		Message: "expected " + kindName(want) + ", found " + kindNameOfValue(val),
	}
}

func kindNameOfValue(val document.Value) string {
	k, ok := kindOf(val)
	if !ok {
		return "incomplete value"
	}
	return kindName(k)
}

func kindName(k schema.ValueKind) string {
	switch k {
	case schema.KindNull:
		return "null"
	case schema.KindBoolean:
		return "boolean"
	case schema.KindInteger:
		return "integer"
	case schema.KindFloat:
		return "float"
	case schema.KindString:
		return "string"
	case schema.KindLocalDate:
		return "local-date"
	case schema.KindLocalDateTime:
		return "local-date-time"
	case schema.KindLocalTime:
		return "local-time"
	case schema.KindOffsetDateTime:
		return "offset-date-time"
	case schema.KindArray:
		return "array"
	case schema.KindTable:
		return "table"
	default:
		return "unknown"
	}
}

func appendAccessor(path diagnostic.AccessorPath, a diagnostic.Accessor) diagnostic.AccessorPath {
	out := make(diagnostic.AccessorPath, len(path), len(path)+1)
	copy(out, path)
	return append(out, a)
}
