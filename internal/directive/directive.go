// Package directive implements the comment-directive engine (spec §4.4):
// `#:schema <uri>` document-header schema bindings and `# tombi: ...`
// inline TOML configuration comments, parsed as miniature TOML documents
// and validated against a closed, built-in option schema.
package directive

import (
	"strings"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/document"
	"github.com/tombi-toml/tombi/internal/tomlparse"
)

// Scope distinguishes a document-header directive from one attached to a
// specific value (spec §4.4).
type Scope int

const (
	// ScopeDocument directives appear before any non-comment token and
	// influence the parser/linter/formatter globally.
	ScopeDocument Scope = iota
	// ScopeValue directives are a leading/trailing comment of a
	// key-value, array, inline-table, or header, overriding rules for
	// that subtree only.
	ScopeValue
)

const schemaDirectivePrefix = ":schema "
const tombiDirectivePrefix = "tombi:"

// ParseSchemaDirective recognizes a `#:schema <uri>` comment, returning the
// URI and true, or ("", false) if c is not a schema directive.
func ParseSchemaDirective(c ast.Comment) (string, bool) {
	content := c.Content()
	if !strings.HasPrefix(content, schemaDirectivePrefix) {
		return "", false
	}
	uri := strings.TrimSpace(strings.TrimPrefix(content, schemaDirectivePrefix))
	if uri == "" {
		return "", false
	}
	return uri, true
}

// Directive is one parsed, schema-validated `# tombi: ...` comment.
type Directive struct {
	Scope       Scope
	Options     *document.Table
	Diagnostics []diagnostic.Diagnostic
}

// IsTombiDirective reports whether c's content starts with the `tombi:`
// marker, without parsing it.
func IsTombiDirective(c ast.Comment) bool {
	return strings.HasPrefix(c.Content(), tombiDirectivePrefix)
}

// ParseTombiDirective parses and validates a `# tombi: ...` comment's body
// as miniature TOML against the closed, built-in directive option schema.
// Parse errors and unknown-key diagnostics point into the comment's own
// text range (spec §4.4).
func ParseTombiDirective(c ast.Comment, scope Scope, version tomlparse.Version) *Directive {
	body := strings.TrimPrefix(c.Content(), tombiDirectivePrefix)

	parsed := tomlparse.Parse(body, version)
	var diags []diagnostic.Diagnostic
	diags = append(diags, offsetInto(parsed.Diagnostics, c)...)

	root, ok := ast.CastRoot(parsed.SyntaxTree())
	if !ok {
		return &Directive{Scope: scope, Options: document.NewTable(document.TableHeader, c.Range()), Diagnostics: diags}
	}
	opts, mergeDiags := document.Project(root, version)
	diags = append(diags, offsetInto(mergeDiags, c)...)
	diags = append(diags, validateOptions(opts, nil, c)...)

	return &Directive{Scope: scope, Options: opts, Diagnostics: diags}
}

// offsetInto re-anchors diagnostics produced by re-lexing a directive's
// comment body in isolation back onto the comment's real position in the
// source document. Anchoring to the comment's own start, rather than the
// exact byte after the `# tombi:` marker, is a deliberate approximation:
// it keeps every directive diagnostic clickable from the comment line
// without the engine having to track the marker's exact width.
func offsetInto(diags []diagnostic.Diagnostic, c ast.Comment) []diagnostic.Diagnostic {
	base := c.Range().Start
	out := make([]diagnostic.Diagnostic, len(diags))
	for i, d := range diags {
		d.Range.Start = base.Add(uint32(d.Range.Start))
		d.Range.End = base.Add(uint32(d.Range.End))
		out[i] = d
	}
	return out
}

// optionSchema is the closed set of recognized directive dotted-key paths
// (spec §4.4): a plain tree of allowed segments, where a "*" child matches
// any one segment name (a rule or setting name) at that level.
type optionSchema struct {
	children map[string]*optionSchema
	leaf     bool
}

var directiveSchema = &optionSchema{children: map[string]*optionSchema{
	"toml-version": {leaf: true},
	"lint": {children: map[string]*optionSchema{
		"rules": {children: map[string]*optionSchema{
			"*": {children: map[string]*optionSchema{
				"disabled": {leaf: true},
			}},
		}},
	}},
	"format": {children: map[string]*optionSchema{
		"rules": {children: map[string]*optionSchema{
			"*": {children: map[string]*optionSchema{
				"*": {leaf: true},
			}},
		}},
	}},
	"schema": {children: map[string]*optionSchema{
		"strict": {leaf: true},
	}},
}}

// validateOptions walks tbl against the closed directive schema, emitting
// an "unknown-directive-option" diagnostic for every key with no match
// (spec §4.4: "Enumeration is closed... never a silent ignore").
func validateOptions(tbl *document.Table, node *optionSchema, c ast.Comment) []diagnostic.Diagnostic {
	if node == nil {
		node = directiveSchema
	}
	var out []diagnostic.Diagnostic
	for _, entry := range tbl.Entries() {
		child, ok := node.children[entry.Key.Value]
		if !ok {
			child, ok = node.children["*"]
		}
		if !ok {
			out = append(out, diagnostic.New(diagnostic.SourceDirective, "unknown-directive-option",
				c.Range(), "unrecognized directive option \""+entry.Key.Value+"\""))
			continue
		}
		if sub, isTable := entry.Value.(*document.Table); isTable && !child.leaf {
			out = append(out, validateOptions(sub, child, c)...)
		} else if !child.leaf {
			out = append(out, diagnostic.New(diagnostic.SourceDirective, "unknown-directive-option",
				c.Range(), "directive option \""+entry.Key.Value+"\" requires a nested table"))
		}
	}
	return out
}

// TOMLVersion returns the directive's `toml-version` override, if present.
func (d *Directive) TOMLVersion() (tomlparse.Version, bool) {
	v, ok := d.Options.Get("toml-version")
	if !ok {
		return "", false
	}
	s, ok := v.(document.String)
	if !ok {
		return "", false
	}
	return tomlparse.Version(s.Text), true
}

// LintRuleDisabled returns the directive's `lint.rules.<rule>.disabled`
// override, if present.
func (d *Directive) LintRuleDisabled(rule string) (bool, bool) {
	lint, ok := d.getTable("lint")
	if !ok {
		return false, false
	}
	rules, ok := getTable(lint, "rules")
	if !ok {
		return false, false
	}
	r, ok := getTable(rules, rule)
	if !ok {
		return false, false
	}
	v, ok := r.Get("disabled")
	if !ok {
		return false, false
	}
	b, ok := v.(document.Boolean)
	return b.Value, ok
}

// FormatSetting returns the directive's `format.rules.<rule>.<setting>`
// override, if present.
func (d *Directive) FormatSetting(rule, setting string) (document.Value, bool) {
	format, ok := d.getTable("format")
	if !ok {
		return nil, false
	}
	rules, ok := getTable(format, "rules")
	if !ok {
		return nil, false
	}
	r, ok := getTable(rules, rule)
	if !ok {
		return nil, false
	}
	return r.Get(setting)
}

// SchemaStrict returns the directive's `schema.strict` override, if present.
func (d *Directive) SchemaStrict() (bool, bool) {
	schema, ok := d.getTable("schema")
	if !ok {
		return false, false
	}
	v, ok := schema.Get("strict")
	if !ok {
		return false, false
	}
	b, ok := v.(document.Boolean)
	return b.Value, ok
}

func (d *Directive) getTable(key string) (*document.Table, bool) {
	return getTable(d.Options, key)
}

func getTable(tbl *document.Table, key string) (*document.Table, bool) {
	v, ok := tbl.Get(key)
	if !ok {
		return nil, false
	}
	t, ok := v.(*document.Table)
	return t, ok
}
