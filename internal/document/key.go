package document

import "github.com/tombi-toml/tombi/internal/text"

// KeyKind records which syntax produced a Key, needed to faithfully
// re-render it and to compute its unquoted range for rename/highlight
// (spec §3.4).
type KeyKind int

const (
	KeyBareKey KeyKind = iota
	KeyBasicString
	KeyLiteralString
)

// Key is a single dotted-key segment, projected.
type Key struct {
	// Value is the unquoted, unescaped key text.
	Value string
	Kind  KeyKind
	// Range is the segment's full source range, quotes included.
	Range text.ByteRange
	// UnquotedRange excludes surrounding quote characters; equal to
	// Range for a bare key.
	UnquotedRange text.ByteRange
}
