// Package tomllex tokenizes TOML source text into a typed token stream.
// It never panics and always terminates: malformed input produces an
// ERROR-kind token (carrying the malformed text) plus a side-channel
// lexical error, so that concatenating every token's text still
// reproduces the source exactly (spec §4.1).
package tomllex

import (
	"fmt"

	"github.com/tombi-toml/tombi/internal/syntax"
	"github.com/tombi-toml/tombi/internal/text"
)

// Token is one lexical unit: a kind plus its byte length. The caller
// reconstructs the token's text by slicing the source at the running
// cursor position, per spec §4.1's "Token{kind, text-length}" contract.
type Token struct {
	Kind syntax.Kind
	Len  uint32
}

// LineEnding is the dominant line-ending style detected while scanning,
// used by the formatter as its default when no config override is set.
type LineEnding int

const (
	LineEndingLF LineEnding = iota
	LineEndingCRLF
)

func (le LineEnding) String() string {
	if le == LineEndingCRLF {
		return "CRLF"
	}
	return "LF"
}

// ErrorKind enumerates the lexical error taxonomy from spec §4.1.
type ErrorKind int

const (
	ErrInvalidKey ErrorKind = iota
	ErrInvalidBasicString
	ErrInvalidLiteralString
	ErrInvalidMultiLineBasicString
	ErrInvalidMultiLineLiteralString
	ErrInvalidNumber
	ErrInvalidOffsetDateTime
	ErrInvalidLocalDateTime
	ErrInvalidLocalDate
	ErrInvalidLocalTime
	ErrInvalidLineBreak
	ErrInvalidToken
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidKey:
		return "invalid-key"
	case ErrInvalidBasicString:
		return "invalid-basic-string"
	case ErrInvalidLiteralString:
		return "invalid-literal-string"
	case ErrInvalidMultiLineBasicString:
		return "invalid-multi-line-basic-string"
	case ErrInvalidMultiLineLiteralString:
		return "invalid-multi-line-literal-string"
	case ErrInvalidNumber:
		return "invalid-number"
	case ErrInvalidOffsetDateTime:
		return "invalid-offset-date-time"
	case ErrInvalidLocalDateTime:
		return "invalid-local-date-time"
	case ErrInvalidLocalDate:
		return "invalid-local-date"
	case ErrInvalidLocalTime:
		return "invalid-local-time"
	case ErrInvalidLineBreak:
		return "invalid-line-break"
	default:
		return "invalid-token"
	}
}

// Error is a single lexical error, always attached to a precise byte range
// within the source so diagnostics never point outside the document.
type Error struct {
	Kind  ErrorKind
	Range text.ByteRange
}

func (e Error) Error() string {
	return fmt.Sprintf("%s at %d..%d", e.Kind, e.Range.Start, e.Range.End)
}
