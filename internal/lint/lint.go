// Package lint implements the source-level rules layered on top of the
// parser, document tree, and validator (spec §4.8): structural rules that
// operate directly on the AST (key-empty, dotted-keys-out-of-order,
// tables-out-of-order) plus a subset of validator diagnostics bridged in
// under the linter's own kind names.
package lint

import (
	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/document"
	"github.com/tombi-toml/tombi/internal/directive"
	"github.com/tombi-toml/tombi/internal/syntax"
	"github.com/tombi-toml/tombi/internal/tomlparse"
)

// Lint runs every structural rule over root and folds in validatorDiags
// (pass nil to skip bridging, e.g. when linting without a resolved
// schema), returning the combined result with comment-directive disables
// already applied.
func Lint(root *ast.Root, version tomlparse.Version, validatorDiags []diagnostic.Diagnostic) []diagnostic.Diagnostic {
	docOpts := documentDirectiveOptions(root, version)

	var diags []diagnostic.Diagnostic
	if !ruleDisabledAny(docOpts, "key-empty") {
		diags = append(diags, checkKeyEmpty(root, version)...)
	}
	if !ruleDisabledAny(docOpts, "dotted-keys-out-of-order") {
		diags = append(diags, checkDottedKeysOutOfOrder(root.KeyValues())...)
		for _, t := range root.Tables() {
			if !nodeRuleDisabled(t.N, version, "dotted-keys-out-of-order") {
				diags = append(diags, checkDottedKeysOutOfOrder(t.KeyValues())...)
			}
		}
		for _, a := range root.ArrayOfTables() {
			if !nodeRuleDisabled(a.N, version, "dotted-keys-out-of-order") {
				diags = append(diags, checkDottedKeysOutOfOrder(a.KeyValues())...)
			}
		}
	}
	if !ruleDisabledAny(docOpts, "tables-out-of-order") {
		diags = append(diags, checkTablesOutOfOrder(root)...)
	}
	diags = append(diags, bridgeValidatorDiagnostics(validatorDiags, docOpts)...)
	return diags
}

// checkKeyEmpty flags any `""` or `''` key segment anywhere in the tree
// (spec §4.8): a table header, a dotted key-value path, or an inline
// table's own key.
func checkKeyEmpty(root *ast.Root, version tomlparse.Version) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	walkKeysNodes(root.N, func(keysNode *syntax.Node) {
		if owner := keysNode.Parent(); owner != nil && nodeRuleDisabled(owner, version, "key-empty") {
			return
		}
		keys := &ast.Keys{N: keysNode}
		for _, seg := range keys.Segments() {
			if document.DecodeKeyText(seg.RawText()) == "" {
				diags = append(diags, diagnostic.Diagnostic{
					Source: diagnostic.SourceLinter, Kind: "key-empty", Severity: diagnostic.SeverityWarn,
					Range: seg.N.Range(), Message: "key is empty",
				})
			}
		}
	})
	return diags
}

func walkKeysNodes(n *syntax.Node, fn func(*syntax.Node)) {
	if n.Kind() == syntax.KindKeys {
		fn(n)
	}
	for _, c := range n.ChildNodes() {
		walkKeysNodes(c, fn)
	}
}

// checkDottedKeysOutOfOrder implements spec §4.8's "among same-level
// key-values sharing a first segment, the occurrences must be contiguous
// in source order": a first segment reappearing after a different one was
// seen in between is flagged at the reappearance.
func checkDottedKeysOutOfOrder(items []*ast.KeyValue) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	lastIndex := map[string]int{}
	prevSeg, havePrev := "", false
	for i, kv := range items {
		seg, ok := firstDottedSegment(kv)
		if !ok {
			prevSeg, havePrev = "", false
			continue
		}
		if !havePrev || seg != prevSeg {
			if _, seen := lastIndex[seg]; seen {
				diags = append(diags, diagnostic.Diagnostic{
					Source: diagnostic.SourceLinter, Kind: "dotted-keys-out-of-order", Severity: diagnostic.SeverityWarn,
					Range: kv.N.Range(), Message: "dotted keys sharing a first segment must be contiguous",
				})
			}
		}
		lastIndex[seg] = i
		prevSeg, havePrev = seg, true
	}
	return diags
}

func firstDottedSegment(kv *ast.KeyValue) (string, bool) {
	keys := kv.Keys()
	if keys == nil {
		return "", false
	}
	segs := keys.Segments()
	if len(segs) < 2 {
		return "", false
	}
	return document.DecodeKeyText(segs[0].RawText()), true
}

// checkTablesOutOfOrder implements spec §4.8's "same prefix tables /
// arrays-of-tables must be contiguous at the root", combining [header]
// and [[header]] items into one source-ordered sequence before checking
// contiguity, since a `[a]` ... `[[a.b]]` ... `[a]` interleaving is out of
// order regardless of which header kind produced which entry.
func checkTablesOutOfOrder(root *ast.Root) []diagnostic.Diagnostic {
	type header struct {
		node *syntax.Node
		seg  string
	}
	var headers []header
	for _, n := range root.Items() {
		switch n.Kind() {
		case syntax.KindTable:
			t, _ := ast.CastTable(n)
			headers = append(headers, header{n, firstHeaderSegment(t.Keys())})
		case syntax.KindArrayOfTable:
			a, _ := ast.CastArrayOfTable(n)
			headers = append(headers, header{n, firstHeaderSegment(a.Keys())})
		}
	}

	var diags []diagnostic.Diagnostic
	lastIndex := map[string]int{}
	prevSeg, havePrev := "", false
	for i, h := range headers {
		if h.seg == "" {
			continue
		}
		if !havePrev || h.seg != prevSeg {
			if _, seen := lastIndex[h.seg]; seen {
				diags = append(diags, diagnostic.Diagnostic{
					Source: diagnostic.SourceLinter, Kind: "tables-out-of-order", Severity: diagnostic.SeverityWarn,
					Range: h.node.Range(), Message: "tables sharing a prefix must be contiguous at the root",
				})
			}
		}
		lastIndex[h.seg] = i
		prevSeg, havePrev = h.seg, true
	}
	return diags
}

func firstHeaderSegment(keys *ast.Keys) string {
	if keys == nil {
		return ""
	}
	segs := keys.Segments()
	if len(segs) == 0 {
		return ""
	}
	return document.DecodeKeyText(segs[0].RawText())
}

// bridgedKinds maps a validator diagnostic.Kind onto the linter-facing
// name spec §4.8 calls out ("array-min/max-values, table-required-keys,
// type-mismatch, etc. — bridged from validator diagnostics").
var bridgedKinds = map[diagnostic.Kind]diagnostic.Kind{
	"array-min-values":     "array-min-values",
	"array-max-values":      "array-max-values",
	"required-key-missing": "table-required-keys",
	"type-mismatch":         "type-mismatch",
	"key-not-allowed":       "key-not-allowed",
}

func bridgeValidatorDiagnostics(diags []diagnostic.Diagnostic, docOpts []*document.Table) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, d := range diags {
		mapped, ok := bridgedKinds[d.Kind]
		if !ok {
			continue
		}
		if ruleDisabledAny(docOpts, string(mapped)) {
			continue
		}
		d.Source = diagnostic.SourceLinter
		d.Kind = mapped
		out = append(out, d)
	}
	return out
}

// documentDirectiveOptions collects every document-scope `# tombi: ...`
// directive's parsed options among root's own top-level comments (spec
// §4.4 ScopeDocument). Returned as a slice rather than merged into one
// table: a directive's Options table has no exported mutator, so multiple
// document directives are consulted independently (first match disables).
func documentDirectiveOptions(root *ast.Root, version tomlparse.Version) []*document.Table {
	var out []*document.Table
	for _, tok := range root.N.ChildTokens() {
		if tok.Kind() != syntax.KindComment {
			continue
		}
		c := ast.Comment{Tok: tok}
		if !directive.IsTombiDirective(c) {
			continue
		}
		d := directive.ParseTombiDirective(c, directive.ScopeDocument, version)
		out = append(out, d.Options)
	}
	return out
}

// nodeRuleDisabled checks owner's own leading comment for a value-scope
// directive disabling rule (spec §4.8 "each rule consults comment
// directives for scope-local disabling").
func nodeRuleDisabled(owner *syntax.Node, version tomlparse.Version, rule string) bool {
	lc := ast.LeadingComment(owner)
	if lc == nil {
		return false
	}
	for _, c := range lc.Comments() {
		if !directive.IsTombiDirective(c) {
			continue
		}
		d := directive.ParseTombiDirective(c, directive.ScopeValue, version)
		if ruleDisabled(d.Options, rule) {
			return true
		}
	}
	return false
}

func ruleDisabledAny(opts []*document.Table, rule string) bool {
	for _, o := range opts {
		if ruleDisabled(o, rule) {
			return true
		}
	}
	return false
}

// ruleDisabled navigates opts.lint.rules.<rule>.disabled, the directive
// schema's closed shape (internal/directive's optionSchema).
func ruleDisabled(opts *document.Table, rule string) bool {
	if opts == nil {
		return false
	}
	lint, ok := tableChild(opts, "lint")
	if !ok {
		return false
	}
	rules, ok := tableChild(lint, "rules")
	if !ok {
		return false
	}
	ruleTbl, ok := tableChild(rules, rule)
	if !ok {
		return false
	}
	v, ok := ruleTbl.Get("disabled")
	if !ok {
		return false
	}
	b, ok := v.(document.Boolean)
	return ok && b.Value
}

func tableChild(t *document.Table, key string) (*document.Table, bool) {
	v, ok := t.Get(key)
	if !ok {
		return nil, false
	}
	child, ok := v.(*document.Table)
	return child, ok
}
