package lsp

import (
	"context"
	"sync"

	"go.lsp.dev/protocol"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/document"
	"github.com/tombi-toml/tombi/internal/lint"
	"github.com/tombi-toml/tombi/internal/schema"
	"github.com/tombi-toml/tombi/internal/text"
	"github.com/tombi-toml/tombi/internal/tomlparse"
	"github.com/tombi-toml/tombi/internal/validator"
)

// analyzedDocument is one open document's parse, projection, schema
// resolution, and diagnostics — refreshed in full on every didOpen/
// didChange, same as the CLI re-derives it per invocation.
type analyzedDocument struct {
	uri     string
	version int
	source  string

	lineIndex *text.LineIndex
	root      *ast.Root
	table     *document.Table
	src       *schema.SourceSchema

	diags []diagnostic.Diagnostic
}

// documentStore holds the server's view of every currently open
// document, keyed by URI.
type documentStore struct {
	mu   sync.RWMutex
	docs map[string]*analyzedDocument
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[string]*analyzedDocument)}
}

func (s *documentStore) get(uri string) *analyzedDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

func (s *documentStore) close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// update re-analyzes source for uri and stores the result. store may be
// nil (no tombi.toml was found), in which case analyze resolves no
// schema at all, not even from a document's own `#:schema` directive.
func (s *documentStore) update(ctx context.Context, store *schema.Store, uri, source string, version int) {
	doc := analyze(ctx, store, uri, source, version)
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
}

func analyze(ctx context.Context, store *schema.Store, uri, source string, version int) *analyzedDocument {
	doc := &analyzedDocument{
		uri:       uri,
		version:   version,
		source:    source,
		lineIndex: text.NewLineIndex(source, text.EncodingUTF16),
	}

	p := tomlparse.Parse(source, tomlparse.VersionV1_0_0)
	doc.diags = append(doc.diags, p.Diagnostics...)

	root, ok := ast.CastRoot(p.SyntaxTree())
	if !ok {
		return doc
	}
	doc.root = root

	table, projDiags := document.Project(root, tomlparse.VersionV1_0_0)
	doc.diags = append(doc.diags, projDiags...)
	doc.table = table

	if store == nil {
		return doc
	}

	src, schemaDiags := store.ResolveSourceSchemaFromAST(ctx, root, uri)
	doc.diags = append(doc.diags, schemaDiags...)
	if src == nil {
		return doc
	}
	doc.src = src

	var validatorDiags []diagnostic.Diagnostic
	if table != nil {
		validatorDiags = validator.Validate(table, src)
		doc.diags = append(doc.diags, validatorDiags...)
	}
	doc.diags = append(doc.diags, lint.Lint(root, tomlparse.VersionV1_0_0, validatorDiags)...)

	return doc
}

// convertDiagnostics maps doc's diagnostics into LSP wire form, using
// the UTF-16 line index every LSP client negotiates by default.
func convertDiagnostics(doc *analyzedDocument) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(doc.diags))
	for _, d := range doc.diags {
		if d.Severity == diagnostic.SeverityOff {
			continue
		}
		out = append(out, protocol.Diagnostic{
			Range:    rangeToLSP(doc.lineIndex, d.Range),
			Severity: convertSeverity(d.Severity),
			Source:   string(d.Source),
			Code:     string(d.Kind),
			Message:  d.Message,
		})
	}
	return out
}

func convertSeverity(sev diagnostic.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case diagnostic.SeverityError:
		return protocol.DiagnosticSeverityError
	case diagnostic.SeverityWarn:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityHint
	}
}

func rangeToLSP(idx *text.LineIndex, r text.ByteRange) protocol.Range {
	start := idx.ToLSPPosition(r.Start)
	end := idx.ToLSPPosition(r.End)
	return protocol.Range{
		Start: protocol.Position{Line: start.Line, Character: start.Column},
		End:   protocol.Position{Line: end.Line, Character: end.Column},
	}
}
