package schema

import "github.com/tombi-toml/tombi/internal/text"

// ValueSchemaAt walks path's key segments through s's applicable
// DocumentSchema (SchemaFor, then one Properties hop per segment),
// dereferencing $refs along the way. It returns nil on any miss,
// including non-table schemas and array indices (path segments that
// aren't plain keys) — callers needing array element schemas resolve
// Items directly instead of going through this helper.
//
// This is the shared SchemaLookup the formatter's alignment/sort pass
// and the LSP's hover/completion handlers both use to ask "what schema
// applies to this path", without the format package importing fetch or
// store machinery.
func (s *SourceSchema) ValueSchemaAt(path []string) *ValueSchema {
	if s == nil || len(path) == 0 {
		return nil
	}

	var acc AccessorPath
	for _, seg := range path {
		acc = append(acc, KeyAccessor(seg))
	}
	doc, _ := s.SchemaFor(acc)
	if doc == nil || doc.Root == nil {
		return nil
	}

	cur, _ := Resolve(doc.Root, doc, text.ByteRange{})
	if cur == nil {
		return nil
	}

	for _, seg := range path {
		if cur == nil || cur.Kind != KindTable {
			return nil
		}
		ref, ok := cur.Property(seg)
		if !ok {
			return nil
		}
		cur, _ = Resolve(ref, doc, text.ByteRange{})
	}
	return cur
}
