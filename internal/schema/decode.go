package schema

import (
	"fmt"
	"regexp"

	"github.com/segmentio/encoding/json"
)

// DecodeDocumentSchema parses a raw JSON Schema document's bytes into a
// DocumentSchema, recognizing the standard keywords listed in spec §6.3
// plus the `x-tombi-*` extensions. `$defs`/`definitions` entries are
// decoded eagerly into d.Definitions; every other `$ref` stays a pointer
// until Resolve is called (spec §4.5 item 4: "carries the raw pointer
// until first use").
func DecodeDocumentSchema(uri SchemaUri, body []byte) (*DocumentSchema, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("schema %s: invalid JSON: %w", uri, err)
	}

	d := &DocumentSchema{URI: uri, Definitions: map[string]*ValueSchema{}}

	for _, key := range []string{"$defs", "definitions"} {
		defs, _ := raw[key].(map[string]any)
		for name, v := range defs {
			obj, _ := v.(map[string]any)
			d.Definitions[name] = decodeValueSchema(obj)
		}
	}

	if v, ok := raw["x-tombi-toml-version"].(string); ok {
		d.TOMLVersion = v
	}
	if formats, ok := raw["x-tombi-string-formats"].([]any); ok {
		for _, f := range formats {
			if s, ok := f.(string); ok {
				d.AllowedFormats = append(d.AllowedFormats, s)
			}
		}
	}

	d.Root = decodeReferable(raw)
	return d, nil
}

// decodeCatalog unmarshals a fetched catalog document's bytes into dst.
func decodeCatalog(body []byte, dst any) error {
	return json.Unmarshal(body, dst)
}

func decodeReferable(obj map[string]any) *Referable[ValueSchema] {
	if ref, ok := obj["$ref"].(string); ok {
		return NewRef[ValueSchema](ref)
	}
	return NewResolved(*decodeValueSchema(obj))
}

func decodeValueSchema(obj map[string]any) *ValueSchema {
	v := &ValueSchema{}
	if obj == nil {
		return v
	}

	if s, ok := obj["title"].(string); ok {
		v.Title = s
	}
	if s, ok := obj["description"].(string); ok {
		v.Description = s
	}
	if b, ok := obj["deprecated"].(bool); ok {
		v.Deprecated = b
	}
	if d, ok := obj["default"]; ok {
		v.Default = d
	}
	if c, ok := obj["const"]; ok {
		v.Const = c
	}
	if e, ok := obj["enum"].([]any); ok {
		v.Enum = e
	}
	if e, ok := obj["examples"].([]any); ok {
		v.Examples = e
	}

	if variants, ok := decodeVariantList(obj["oneOf"]); ok {
		v.Kind, v.Variants = KindOneOf, variants
		return v
	}
	if variants, ok := decodeVariantList(obj["anyOf"]); ok {
		v.Kind, v.Variants = KindAnyOf, variants
		return v
	}
	if variants, ok := decodeVariantList(obj["allOf"]); ok {
		v.Kind, v.Variants = KindAllOf, variants
		return v
	}

	switch t, _ := obj["type"].(string); t {
	case "null":
		v.Kind = KindNull
	case "boolean":
		v.Kind = KindBoolean
	case "integer":
		v.Kind = KindInteger
	case "number":
		v.Kind = KindFloat
	case "string":
		v.Kind = KindString
		decodeStringConstraints(v, obj)
	case "array":
		v.Kind = KindArray
		decodeArrayConstraints(v, obj)
	case "object", "table":
		v.Kind = KindTable
		decodeTableConstraints(v, obj)
	default:
		v.Kind = KindTable
		decodeTableConstraints(v, obj)
	}

	if v.Kind == KindInteger || v.Kind == KindFloat {
		decodeNumericConstraints(v, obj)
	}

	return v
}

func decodeVariantList(raw any) ([]*Referable[ValueSchema], bool) {
	list, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]*Referable[ValueSchema], 0, len(list))
	for _, item := range list {
		obj, _ := item.(map[string]any)
		out = append(out, decodeReferable(obj))
	}
	return out, true
}

func decodeNumericConstraints(v *ValueSchema, obj map[string]any) {
	v.Minimum = floatPtr(obj["minimum"])
	v.Maximum = floatPtr(obj["maximum"])
	v.ExclusiveMinimum = floatPtr(obj["exclusiveMinimum"])
	v.ExclusiveMaximum = floatPtr(obj["exclusiveMaximum"])
	v.MultipleOf = floatPtr(obj["multipleOf"])
}

func decodeStringConstraints(v *ValueSchema, obj map[string]any) {
	v.MinLength = intPtr(obj["minLength"])
	v.MaxLength = intPtr(obj["maxLength"])
	if s, ok := obj["pattern"].(string); ok {
		if re, err := regexp.Compile(s); err == nil {
			v.Pattern = re
		}
	}
	if s, ok := obj["format"].(string); ok {
		v.Format = s
	}
	if formats, ok := obj["x-tombi-string-formats"].([]any); ok {
		for _, f := range formats {
			if s, ok := f.(string); ok {
				v.AllowedFormats = append(v.AllowedFormats, s)
			}
		}
	}
}

func decodeArrayConstraints(v *ValueSchema, obj map[string]any) {
	if items, ok := obj["items"].(map[string]any); ok {
		v.Items = decodeReferable(items)
	}
	v.MinItems = intPtr(obj["minItems"])
	v.MaxItems = intPtr(obj["maxItems"])
	if b, ok := obj["uniqueItems"].(bool); ok {
		v.UniqueItems = b
	}
	if s, ok := obj["x-tombi-array-values-order"].(string); ok {
		v.ArrayValuesOrder = OrderKind(s)
	}
}

func decodeTableConstraints(v *ValueSchema, obj map[string]any) {
	if props, ok := obj["properties"].(map[string]any); ok {
		names := sortedKeys(props)
		for _, name := range names {
			propObj, _ := props[name].(map[string]any)
			v.Properties = append(v.Properties, Property{Name: name, Schema: decodeReferable(propObj)})
		}
	}
	if pp, ok := obj["patternProperties"].(map[string]any); ok {
		v.PatternProperties = map[string]*Referable[ValueSchema]{}
		for pattern, schemaObj := range pp {
			obj, _ := schemaObj.(map[string]any)
			v.PatternProperties[pattern] = decodeReferable(obj)
		}
	}
	switch ap := obj["additionalProperties"].(type) {
	case bool:
		v.AdditionalProperties = &AdditionalProperties{Allowed: ap}
	case map[string]any:
		v.AdditionalProperties = &AdditionalProperties{Allowed: true, Schema: decodeReferable(ap)}
	}
	if req, ok := obj["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				v.Required = append(v.Required, s)
			}
		}
	}
	v.MinProperties = intPtr(obj["minProperties"])
	v.MaxProperties = intPtr(obj["maxProperties"])
	if s, ok := obj["x-tombi-table-keys-order"].(string); ok {
		v.TableKeysOrder = OrderKind(s)
	}
	if s, ok := obj["x-tombi-table-key-order-by"].(string); ok {
		v.TableKeyOrderBy = s
	}
}

func floatPtr(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	}
	return nil
}

func intPtr(v any) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case int:
		return &n
	}
	return nil
}

// sortedKeys returns m's keys in a stable, deterministic order so
// `properties` decoding (and hence x-tombi-table-keys-order = schema
// comparisons) doesn't depend on Go's randomized map iteration. JSON
// objects don't preserve source key order through map[string]any, so this
// is alphabetical rather than the document's original order — acceptable
// because schema authors opt into order-sensitivity explicitly via
// x-tombi-table-keys-order, not implicitly via declaration order.
func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
