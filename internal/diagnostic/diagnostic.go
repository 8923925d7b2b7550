// Package diagnostic defines the single structured diagnostic model shared
// by the lexer, parser, document-tree projector, validator, and linter
// (spec §7). Every stage returns both a best-effort result and its
// diagnostics; only true operational failures (file I/O, schema fetch)
// propagate as Go errors.
package diagnostic

import (
	"fmt"

	"github.com/tombi-toml/tombi/internal/text"
)

// Severity is the closed set a diagnostic can carry. Parse and merge
// errors are always SeverityError; validator/linter diagnostics default
// per Kind and can be overridden by config or comment directives.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
	SeverityOff   Severity = "off"
)

// Source identifies which pipeline stage produced a diagnostic.
type Source string

const (
	SourceLexer     Source = "lexer"
	SourceParser    Source = "parser"
	SourceMerge     Source = "merge"
	SourceValidator Source = "validator"
	SourceLinter    Source = "linter"
	SourceDirective Source = "directive"
)

// Kind is a stable, machine-readable identifier for a specific diagnostic
// rule (e.g. "key-empty", "type-mismatch", "duplicate-key"). Kinds are
// looked up against workspace config and comment directives to resolve
// the effective Severity.
type Kind string

// Accessor is a single step along a document/schema path: either a key
// name or an array index (spec §9, grounded on
// tombi-accessor/src/schema_accessor.rs — see SPEC_FULL.md §D.2).
type Accessor struct {
	Key      string
	Index    int
	IsIndex  bool
}

func (a Accessor) String() string {
	if a.IsIndex {
		return fmt.Sprintf("[%d]", a.Index)
	}
	return a.Key
}

// AccessorPath is a dotted/indexed path, rendered like `a.b[2].c`.
type AccessorPath []Accessor

func (p AccessorPath) String() string {
	var s string
	for i, a := range p {
		if a.IsIndex {
			s += a.String()
			continue
		}
		if i > 0 {
			s += "."
		}
		s += a.Key
	}
	return s
}

// Diagnostic is the single structured unit reported by every stage.
type Diagnostic struct {
	Source   Source
	Kind     Kind
	Severity Severity
	Range    text.ByteRange
	Message  string
	Accessor AccessorPath
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s (%d..%d)", d.Severity, d.Kind, d.Message, d.Range.Start, d.Range.End)
}

// New builds a Diagnostic defaulting to SeverityError, the correct default
// for lexer/parser/merge diagnostics.
func New(source Source, kind Kind, rng text.ByteRange, message string) Diagnostic {
	return Diagnostic{Source: source, Kind: kind, Severity: SeverityError, Range: rng, Message: message}
}

// WithSeverity returns a copy of d with Severity overridden, used when
// config or an inline `# tombi:` directive promotes/demotes a rule.
func (d Diagnostic) WithSeverity(sev Severity) Diagnostic {
	d.Severity = sev
	return d
}

// HasError reports whether any diagnostic in the slice is SeverityError —
// the validator uses it to decide whether a oneOf/anyOf alternative
// matched.
func HasError(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
