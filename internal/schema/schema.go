package schema

import (
	"regexp"
	"sync"
)

// SchemaUri is an absolute URI identifying a schema document: file, http,
// https, or the internal `tombi://` scheme used for built-in schemas.
type SchemaUri string

// Scheme returns the URI's scheme, or "" if it has none.
func (u SchemaUri) Scheme() string {
	s := string(u)
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == ':':
			return s[:i]
		case s[i] == '/':
			return ""
		}
	}
	return ""
}

// ValueKind is the closed tag of ValueSchema's union (spec §3.6).
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindLocalDate
	KindLocalDateTime
	KindLocalTime
	KindOffsetDateTime
	KindArray
	KindTable
	KindOneOf
	KindAnyOf
	KindAllOf
)

// OrderKind is the closed set of orderings `x-tombi-array-values-order` and
// `x-tombi-table-keys-order` accept (spec §3.6, SPEC_FULL.md §D.7).
type OrderKind string

const (
	OrderNone        OrderKind = ""
	OrderAscending   OrderKind = "ascending"
	OrderDescending  OrderKind = "descending"
	OrderVersionSort OrderKind = "version-sort"
	// OrderSchema is valid only for x-tombi-table-keys-order: the observed
	// key order must be a subsequence of the schema's declared property
	// order (spec §4.6 item 4).
	OrderSchema OrderKind = "schema"
)

// AdditionalProperties is either a plain allow/deny boolean or a schema
// every additional property must satisfy.
type AdditionalProperties struct {
	Allowed bool
	Schema  *Referable[ValueSchema]
}

// Property is one `properties` entry. Decoding orders a table schema's
// properties by name; the declaration order in the JSON source is not
// kept, so `x-tombi-table-keys-order = schema` compares against this
// sorted order.
type Property struct {
	Name   string
	Schema *Referable[ValueSchema]
}

// ValueSchema is the tagged union every JSON Schema value in the store is
// decoded into (spec §3.6): {Null, Boolean, Integer, Float, String,
// LocalDate, LocalDateTime, LocalTime, OffsetDateTime, Array, Table,
// OneOf, AnyOf, AllOf}.
type ValueSchema struct {
	Kind ValueKind

	Title       string
	Description string
	Deprecated  bool
	Default     any
	Examples    []any
	Const       any
	Enum        []any

	// numeric (Integer, Float)
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
	MultipleOf       *float64

	// string
	MinLength      *int
	MaxLength      *int
	Pattern        *regexp.Regexp
	Format         string
	AllowedFormats []string // x-tombi-string-formats

	// array
	Items            *Referable[ValueSchema]
	MinItems         *int
	MaxItems         *int
	UniqueItems      bool
	ArrayValuesOrder OrderKind // x-tombi-array-values-order

	// table
	Properties           []Property
	PatternProperties    map[string]*Referable[ValueSchema]
	AdditionalProperties *AdditionalProperties
	Required             []string
	MinProperties        *int
	MaxProperties        *int
	TableKeysOrder       OrderKind // x-tombi-table-keys-order
	TableKeyOrderBy      string    // x-tombi-table-key-order-by

	// combinators (OneOf, AnyOf, AllOf)
	Variants []*Referable[ValueSchema]
}

// Property looks up a declared properties entry by name.
func (v *ValueSchema) Property(name string) (*Referable[ValueSchema], bool) {
	for _, p := range v.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// Referable is either an unresolved `$ref` pointer or an already-resolved
// value, resolved lazily and in place (spec §3.6, §4.5 item 4). Resolution
// is guarded per-pointer by the owning DocumentSchema's try-lock map so a
// circular `$ref` chain is detected rather than deadlocking or recursing
// forever.
type Referable[T any] struct {
	mu       sync.Mutex
	ref      string
	resolved *T
}

// NewRef builds an unresolved Referable pointing at a JSON Pointer (e.g.
// "#/$defs/Foo") within its owning DocumentSchema.
func NewRef[T any](pointer string) *Referable[T] {
	return &Referable[T]{ref: pointer}
}

// NewResolved builds an already-resolved Referable, used for inline
// (non-$ref) schema values.
func NewResolved[T any](v T) *Referable[T] {
	return &Referable[T]{resolved: &v}
}

// IsRef reports whether r still carries an unresolved pointer.
func (r *Referable[T]) IsRef() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved == nil
}

// Pointer returns the raw `$ref` pointer, if unresolved.
func (r *Referable[T]) Pointer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ref
}
