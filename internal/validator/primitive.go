package validator

import (
	"math/big"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/document"
	"github.com/tombi-toml/tombi/internal/schema"
)

// validatePrimitive implements spec §4.6 item 2: a plain type check, then
// kind-specific constraint checks. Date-time values only ever check
// const/enum, per spec.
func (v *validator) validatePrimitive(val document.Value, sch *schema.ValueSchema, path diagnostic.AccessorPath) []diagnostic.Diagnostic {
	got, ok := kindOf(val)
	if !ok || got != sch.Kind {
		return []diagnostic.Diagnostic{typeMismatch(val, sch.Kind, path)}
	}

	var diags []diagnostic.Diagnostic
	diags = append(diags, checkConstAndEnum(val, sch, path)...)

	switch sch.Kind {
	case schema.KindInteger, schema.KindFloat:
		diags = append(diags, checkNumeric(val, sch, path)...)
	case schema.KindString:
		diags = append(diags, v.checkString(val.(document.String), sch, path)...)
	}
	return diags
}

// checkConstAndEnum applies regardless of primitive kind (spec §4.6 item 2
// lists const/enum for every scalar, not just numerics).
func checkConstAndEnum(val document.Value, sch *schema.ValueSchema, path diagnostic.AccessorPath) []diagnostic.Diagnostic {
	native := nativeOf(val)
	var diags []diagnostic.Diagnostic
	if sch.Const != nil && !reflect.DeepEqual(native, normalizeJSON(sch.Const)) {
		diags = append(diags, diagnostic.Diagnostic{
			Source: diagnostic.SourceValidator, Kind: "const-mismatch", Severity: diagnostic.SeverityError,
			Range: val.Range(), Accessor: path, Message: "value does not match the schema's const",
		})
	}
	if len(sch.Enum) > 0 {
		matched := false
		for _, e := range sch.Enum {
			if reflect.DeepEqual(native, normalizeJSON(e)) {
				matched = true
				break
			}
		}
		if !matched {
			diags = append(diags, diagnostic.Diagnostic{
				Source: diagnostic.SourceValidator, Kind: "enum-mismatch", Severity: diagnostic.SeverityError,
				Range: val.Range(), Accessor: path, Message: "value is not one of the schema's enumerated values",
			})
		}
	}
	return diags
}

func checkNumeric(val document.Value, sch *schema.ValueSchema, path diagnostic.AccessorPath) []diagnostic.Diagnostic {
	f := numberOf(val)
	var diags []diagnostic.Diagnostic
	fail := func(kind diagnostic.Kind, msg string) {
		diags = append(diags, diagnostic.Diagnostic{
			Source: diagnostic.SourceValidator, Kind: kind, Severity: diagnostic.SeverityError,
			Range: val.Range(), Accessor: path, Message: msg,
		})
	}
	if sch.Minimum != nil && f < *sch.Minimum {
		fail("minimum", "value is below the schema's minimum")
	}
	if sch.Maximum != nil && f > *sch.Maximum {
		fail("maximum", "value is above the schema's maximum")
	}
	if sch.ExclusiveMinimum != nil && f <= *sch.ExclusiveMinimum {
		fail("exclusive-minimum", "value is not greater than the schema's exclusiveMinimum")
	}
	if sch.ExclusiveMaximum != nil && f >= *sch.ExclusiveMaximum {
		fail("exclusive-maximum", "value is not less than the schema's exclusiveMaximum")
	}
	if sch.MultipleOf != nil && *sch.MultipleOf != 0 {
		q := f / *sch.MultipleOf
		if q != float64(int64(q)) {
			fail("multiple-of", "value is not a multiple of the schema's multipleOf")
		}
	}
	return diags
}

var formatCheckers = map[string]func(string) bool{
	"email":    isValidEmail,
	"hostname": isValidHostname,
	"uri":      isValidURI,
	"uuid":     isValidUUID,
}

// checkString applies pattern/length/format, skipping any format not in
// sch.AllowedFormats (x-tombi-string-formats) — an empty allow-list
// enforces every known format.
func (v *validator) checkString(s document.String, sch *schema.ValueSchema, path diagnostic.AccessorPath) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	fail := func(kind diagnostic.Kind, msg string) {
		diags = append(diags, diagnostic.Diagnostic{
			Source: diagnostic.SourceValidator, Kind: kind, Severity: diagnostic.SeverityError,
			Range: s.Range(), Accessor: path, Message: msg,
		})
	}

	length := len([]rune(s.Text))
	if sch.MinLength != nil && length < *sch.MinLength {
		fail("min-length", "string is shorter than the schema's minLength")
	}
	if sch.MaxLength != nil && length > *sch.MaxLength {
		fail("max-length", "string is longer than the schema's maxLength")
	}
	if sch.Pattern != nil && !sch.Pattern.MatchString(s.Text) {
		fail("pattern-mismatch", "string does not match the schema's pattern")
	}
	if sch.Format != "" && formatAllowed(sch, sch.Format) {
		if check, ok := formatCheckers[sch.Format]; ok && !check(s.Text) {
			fail("format-mismatch", "string is not a valid "+sch.Format)
		}
	}
	return diags
}

func formatAllowed(sch *schema.ValueSchema, format string) bool {
	if len(sch.AllowedFormats) == 0 {
		return true
	}
	for _, f := range sch.AllowedFormats {
		if f == format {
			return true
		}
	}
	return false
}

// isValidEmail is deliberately the permissive common-subset matcher spec
// SPEC_FULL.md §E.2 resolves on: net/mail's address parser, rejecting
// group syntax and multiple addresses, not a strict RFC 5322 grammar.
func isValidEmail(s string) bool {
	if strings.ContainsAny(s, ",;") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

var hostnameRE = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// isValidHostname has no corpus-grounded third-party validator (no example
// repo imports one); RFC 1123's label grammar is small enough that a
// regexp is the better-justified choice over adding a dependency for one
// rule (see DESIGN.md).
func isValidHostname(s string) bool {
	return len(s) > 0 && len(s) <= 253 && hostnameRE.MatchString(s)
}

func isValidURI(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && u.Scheme != ""
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func numberOf(val document.Value) float64 {
	switch t := val.(type) {
	case document.Integer:
		f := new(big.Float).SetInt(t.Value)
		out, _ := f.Float64()
		return out
	case document.Float:
		return t.Value
	default:
		return 0
	}
}

// nativeOf projects a document Value into a plain Go value comparable
// (via reflect.DeepEqual, after normalizeJSON on the schema side) against
// a schema's const/enum entries, which are decoded JSON (segmentio/encoding
// json.Unmarshal into `any`: string, float64, bool, nil, []any, map[string]any).
func nativeOf(val document.Value) any {
	switch t := val.(type) {
	case document.String:
		return t.Text
	case document.Integer:
		return numberOf(val)
	case document.Float:
		return t.Value
	case document.Boolean:
		return t.Value
	case document.OffsetDateTime:
		return t.Text
	case document.LocalDateTime:
		return t.Text
	case document.LocalDate:
		return t.Text
	case document.LocalTime:
		return t.Text
	case *document.Array:
		out := make([]any, 0, t.Len())
		for _, e := range t.Values() {
			out = append(out, nativeOf(e))
		}
		return out
	case *document.Table:
		out := make(map[string]any, t.Len())
		for _, e := range t.Entries() {
			out[e.Key.Value] = nativeOf(e.Value)
		}
		return out
	default:
		return nil
	}
}

// normalizeJSON widens ints decoded as int/int64 (a possible outcome of
// segmentio/encoding's json.Unmarshal into `any` for whole-number floats)
// to float64, so a schema const of `1` compares equal to a document
// integer's nativeOf regardless of which concrete numeric type the JSON
// decoder chose.
func normalizeJSON(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeJSON(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeJSON(e)
		}
		return out
	default:
		return v
	}
}
