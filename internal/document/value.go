// Package document projects a parsed syntax tree into Tombi's semantic
// document tree (spec §3.4, §4.3): a typed, merge-checked view over TOML's
// table/array/value structure that the validator, formatter's schema-driven
// sorting, and linter all consume instead of re-walking the syntax tree.
package document

import (
	"math/big"

	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/text"
)

// Value is the tagged union spec §3.4 describes: every projected TOML
// value is one of the concrete types below.
type Value interface {
	// Range is the value's source range (spec §3.5 range monotonicity).
	Range() text.ByteRange
	// Directives returns the value's comment directives. Project does
	// not fill them in, so it is nil for every projected value.
	Directives() []diagnostic.AccessorPath
	isValue()
}

// base is embedded by every concrete Value to share Range/Directives.
type base struct {
	rng        text.ByteRange
	directives []diagnostic.AccessorPath
}

func (b base) Range() text.ByteRange                { return b.rng }
func (b base) Directives() []diagnostic.AccessorPath { return b.directives }
func (base) isValue()                                {}

// StringKind records which of TOML's four string syntaxes produced a
// String value, so the formatter's quoting rule can see original form
// rather than only decoded content (SPEC_FULL.md §D.1).
type StringKind int

const (
	StringBasic StringKind = iota
	StringLiteral
	StringMultiLineBasic
	StringMultiLineLiteral
)

// String is a projected TOML string value.
type String struct {
	base
	Text string // decoded content
	Kind StringKind
}

// IntegerRadix records the lexical base an Integer was written in, so the
// formatter can re-emit the same radix (SPEC_FULL.md §D.4).
type IntegerRadix int

const (
	RadixDec IntegerRadix = iota
	RadixBin
	RadixOct
	RadixHex
)

// Integer is a projected TOML integer value, stored as a big.Int so
// projection can detect and report int64 overflow rather than silently
// wrapping (SPEC_FULL.md §D.4).
type Integer struct {
	base
	Value *big.Int
	Radix IntegerRadix
}

// Float is a projected TOML float value.
type Float struct {
	base
	Value float64
}

// Boolean is a projected TOML boolean value.
type Boolean struct {
	base
	Value bool
}

// OffsetDateTime is a projected TOML offset-date-time value, kept as its
// exact source text: spec §4.3 requires only structural validation, not
// full temporal decoding.
type OffsetDateTime struct {
	base
	Text string
}

// LocalDateTime is a projected TOML local-date-time value.
type LocalDateTime struct {
	base
	Text string
}

// LocalDate is a projected TOML local-date value.
type LocalDate struct {
	base
	Text string
}

// LocalTime is a projected TOML local-time value.
type LocalTime struct {
	base
	Text string
}

// Incomplete stands in for a malformed region: a KeyValue whose value was
// missing, or an unparseable literal. It carries no data beyond its range
// so downstream consumers can skip it without crashing.
type Incomplete struct {
	base
}
