package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/document"
	"github.com/tombi-toml/tombi/internal/format"
	"github.com/tombi-toml/tombi/internal/schema"
	"github.com/tombi-toml/tombi/internal/text"
	"github.com/tombi-toml/tombi/internal/tomlparse"
)

func (s *Server) handleTextDocumentHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.HoverParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse hover params")
	}

	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil || doc.table == nil {
		return reply(ctx, nil, nil)
	}

	off := doc.lineIndex.Offset(text.Position{Line: params.Position.Line, Column: params.Position.Character})
	path, value := findAtOffset(doc.root, doc.table, off)
	if value == nil {
		return reply(ctx, nil, nil)
	}

	content := hoverContent(doc.src, path, value)
	if content == "" {
		return reply(ctx, nil, nil)
	}

	return reply(ctx, &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.PlainText,
			Value: content,
		},
	}, nil)
}

func hoverContent(src *schema.SourceSchema, path []string, value document.Value) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s", strings.Join(path, "."))
	fmt.Fprintf(&sb, "\n%s", describeValueKind(value))

	if src == nil {
		return sb.String()
	}
	vs := src.ValueSchemaAt(path)
	if vs == nil {
		return sb.String()
	}
	if vs.Title != "" {
		fmt.Fprintf(&sb, "\n\n%s", vs.Title)
	}
	if vs.Description != "" {
		fmt.Fprintf(&sb, "\n%s", vs.Description)
	}
	if vs.Deprecated {
		sb.WriteString("\n(deprecated)")
	}
	return sb.String()
}

func describeValueKind(v document.Value) string {
	switch v.(type) {
	case *document.String:
		return "string"
	case *document.Integer:
		return "integer"
	case *document.Float:
		return "float"
	case *document.Boolean:
		return "boolean"
	case *document.OffsetDateTime:
		return "offset-date-time"
	case *document.LocalDateTime:
		return "local-date-time"
	case *document.LocalDate:
		return "local-date"
	case *document.LocalTime:
		return "local-time"
	case *document.Array:
		return "array"
	case *document.Table:
		return "table"
	default:
		return "value"
	}
}

// findAtOffset locates the value at byte offset off. document.Table's
// own Range is only accurate for TableInline and Array values — a
// TableHeader/TableDottedKeys table's Range is pinned to its final
// header/dotted-key segment, not its body (a Tombi document-tree
// quirk) — so the table the cursor is logically inside is found first
// via tableContextAt's ast-node-range scan (which does span full table
// bodies), navigated to from the document root, and only then is its
// own entries scanned for the precise leaf under the cursor.
func findAtOffset(root *ast.Root, table *document.Table, off text.Offset) ([]string, document.Value) {
	headerPath := tableContextAt(root, off)

	cur := table
	for _, seg := range headerPath {
		v, ok := cur.Get(seg)
		if !ok {
			return nil, nil
		}
		switch vv := v.(type) {
		case *document.Table:
			cur = vv
		case *document.Array:
			tbl, ok := vv.Last().(*document.Table)
			if !ok {
				return headerPath, v
			}
			cur = tbl
		default:
			return headerPath, v
		}
	}

	path, value := scanForOffset(cur, headerPath, off)
	if value == nil && len(headerPath) > 0 {
		return headerPath, cur
	}
	return path, value
}

// scanForOffset scans t's direct entries for the one containing off,
// recursing into inline tables and array elements (whose ranges are
// accurate) and into dotted-key sub-tables (whose ranges aren't, so
// those are entered unconditionally).
func scanForOffset(t *document.Table, prefix []string, off text.Offset) ([]string, document.Value) {
	point := text.ByteRange{Start: off, End: off}
	for _, e := range t.Entries() {
		path := append(append([]string(nil), prefix...), e.Key.Value)

		switch v := e.Value.(type) {
		case *document.Table:
			if v.Kind == document.TableInline && !v.Range().ContainsRange(point) {
				continue
			}
			if nested, nv := scanForOffset(v, path, off); nv != nil {
				return nested, nv
			}
			if v.Kind == document.TableInline {
				return path, v
			}
		case *document.Array:
			if !v.Range().ContainsRange(point) {
				continue
			}
			for _, item := range v.Values() {
				if !item.Range().ContainsRange(point) {
					continue
				}
				if tbl, ok := item.(*document.Table); ok {
					if nested, nv := scanForOffset(tbl, path, off); nv != nil {
						return nested, nv
					}
					return path, tbl
				}
				return path, item
			}
			return path, v
		default:
			if v.Range().ContainsRange(point) {
				return path, v
			}
		}
	}
	return nil, nil
}

func (s *Server) handleTextDocumentDocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse documentSymbol params")
	}

	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil || doc.table == nil {
		return reply(ctx, []protocol.DocumentSymbol{}, nil)
	}

	return reply(ctx, tableSymbols(doc.lineIndex, doc.table), nil)
}

func tableSymbols(idx *text.LineIndex, t *document.Table) []protocol.DocumentSymbol {
	entries := t.Entries()
	out := make([]protocol.DocumentSymbol, 0, len(entries))
	for _, e := range entries {
		sym := protocol.DocumentSymbol{
			Name:           e.Key.Value,
			Kind:           symbolKindFor(e.Value),
			Range:          rangeToLSP(idx, e.Value.Range()),
			SelectionRange: rangeToLSP(idx, e.Key.Range),
		}
		switch v := e.Value.(type) {
		case *document.Table:
			sym.Children = tableSymbols(idx, v)
		case *document.Array:
			for _, item := range v.Values() {
				if tbl, ok := item.(*document.Table); ok {
					sym.Children = append(sym.Children, tableSymbols(idx, tbl)...)
				}
			}
		}
		out = append(out, sym)
	}
	return out
}

func symbolKindFor(v document.Value) protocol.SymbolKind {
	switch v.(type) {
	case *document.Table:
		return protocol.SymbolKindObject
	case *document.Array:
		return protocol.SymbolKindArray
	case *document.String:
		return protocol.SymbolKindString
	case *document.Integer, *document.Float:
		return protocol.SymbolKindNumber
	case *document.Boolean:
		return protocol.SymbolKindBoolean
	default:
		return protocol.SymbolKindField
	}
}

func (s *Server) handleTextDocumentCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CompletionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse completion params")
	}

	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil || doc.root == nil || doc.src == nil {
		return reply(ctx, []protocol.CompletionItem{}, nil)
	}

	off := doc.lineIndex.Offset(text.Position{Line: params.Position.Line, Column: params.Position.Character})
	tablePath := tableContextAt(doc.root, off)

	vs := doc.src.ValueSchemaAt(tablePath)
	if vs == nil {
		return reply(ctx, []protocol.CompletionItem{}, nil)
	}

	items := make([]protocol.CompletionItem, 0, len(vs.Properties))
	for _, p := range vs.Properties {
		items = append(items, protocol.CompletionItem{
			Label: p.Name,
			Kind:  protocol.CompletionItemKindProperty,
		})
	}
	return reply(ctx, items, nil)
}

// tableContextAt reports the dotted header path of the table/array-of-
// table whose full body (header through the line before the next
// header) contains off. ast node ranges span the full body, unlike
// document.Table.Range, which is pinned to just the header's final key
// segment — so positional containment here walks the ast tree, not the
// projected document tree.
func tableContextAt(root *ast.Root, off text.Offset) []string {
	point := text.ByteRange{Start: off, End: off}

	for _, tbl := range root.Tables() {
		if tbl.N.Range().ContainsRange(point) {
			return headerPath(tbl.Keys())
		}
	}
	for _, aot := range root.ArrayOfTables() {
		if aot.N.Range().ContainsRange(point) {
			return headerPath(aot.Keys())
		}
	}
	return nil
}

func headerPath(keys *ast.Keys) []string {
	if keys == nil {
		return nil
	}
	segs := keys.Segments()
	out := make([]string, len(segs))
	for i, k := range segs {
		out[i] = k.RawText()
	}
	return out
}

func (s *Server) handleTextDocumentFormatting(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentFormattingParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse formatting params")
	}

	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil || doc.root == nil {
		return reply(ctx, []protocol.TextEdit{}, nil)
	}

	defs := format.DefaultDefinitions()
	formatted := format.New(defs, doc.src, tomlparse.VersionV1_0_0).Format(doc.root)
	if formatted == doc.source {
		return reply(ctx, []protocol.TextEdit{}, nil)
	}

	end := doc.lineIndex.ToLSPPosition(text.OffsetFromUsize(len(doc.source)))
	edit := protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: end.Line, Character: end.Column},
		},
		NewText: formatted,
	}
	return reply(ctx, []protocol.TextEdit{edit}, nil)
}
