package schema

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/config"
	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/directive"
	"github.com/tombi-toml/tombi/internal/syntax"
	"github.com/tombi-toml/tombi/internal/text"
)

// Association binds a file-glob pattern to a schema URI, optionally
// scoped to a named sub-tree (e.g. `tool.tombi` inside `pyproject.toml`),
// the shape of both `tombi.toml`'s `[[schemas]]` entries and a fetched
// catalog document's entries (spec §4.5 item 1, §3.6 "SourceSchema").
type Association struct {
	Pattern  string
	URI      SchemaUri
	At       AccessorPath
	matcher  config.CatalogMatcher
	compiled bool
}

func (a *Association) Matches(path string) bool {
	if !a.compiled {
		a.matcher = config.NewCatalogMatcher(a.Pattern)
		a.compiled = true
	}
	return a.matcher.Match(path)
}

// Store is the single reader-writer-locked registry of SchemaUri →
// DocumentSchema (spec §5 "Shared resources"), grounded on the teacher's
// resource-schema Registry (internal/orm/schema.Registry): a map behind a
// sync.RWMutex, insert-once, safe to read concurrently.
type Store struct {
	mu          sync.RWMutex
	documents   map[SchemaUri]*DocumentSchema
	explicit    []Association // from tombi.toml's [[schemas]]
	catalog     []Association // from fetched catalog documents
	fetcher     *Fetcher
}

// NewStore builds an empty Store backed by fetcher for schema retrieval.
func NewStore(fetcher *Fetcher) *Store {
	return &Store{documents: make(map[SchemaUri]*DocumentSchema), fetcher: fetcher}
}

// LoadConfig ingests `tombi.toml`'s `[[schemas]]` entries directly, and
// fetches+parses each catalog URL into further Associations (spec §4.5
// item 1: "load_config(config, config_path)").
func (s *Store) LoadConfig(ctx context.Context, explicit []Association, catalogURLs []SchemaUri) error {
	s.mu.Lock()
	s.explicit = append(s.explicit, explicit...)
	s.mu.Unlock()

	for _, uri := range catalogURLs {
		entries, err := s.fetchCatalog(ctx, uri)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.catalog = append(s.catalog, entries...)
		s.mu.Unlock()
	}
	return nil
}

// catalogDocument is the standard SchemaStore catalog shape:
// {"schemas": [{"fileMatch": ["*.toml"], "url": "https://..."}]}.
type catalogDocument struct {
	Schemas []struct {
		FileMatch []string `json:"fileMatch"`
		URL       string   `json:"url"`
	} `json:"schemas"`
}

func (s *Store) fetchCatalog(ctx context.Context, uri SchemaUri) ([]Association, error) {
	body, err := s.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	var doc catalogDocument
	if err := decodeCatalog(body, &doc); err != nil {
		return nil, err
	}
	var out []Association
	for _, e := range doc.Schemas {
		for _, pattern := range e.FileMatch {
			out = append(out, Association{Pattern: pattern, URI: SchemaUri(e.URL)})
		}
	}
	return out, nil
}

// Get returns uri's DocumentSchema, fetching and decoding it on first use
// and caching the result for subsequent lookups (spec §5: "schema bodies
// are immutable after insertion").
func (s *Store) Get(ctx context.Context, uri SchemaUri) (*DocumentSchema, error) {
	s.mu.RLock()
	if d, ok := s.documents[uri]; ok {
		s.mu.RUnlock()
		return d, nil
	}
	s.mu.RUnlock()

	body, err := s.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	d, err := DecodeDocumentSchema(uri, body)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.documents[uri]; ok {
		return existing, nil
	}
	s.documents[uri] = d
	return d, nil
}

// ResolveSourceSchemaFromAST attempts, in order, a document `#:schema`
// directive, an explicit `[[schemas]]` match, then a catalog match
// against sourceHint's file name (spec §4.5 item 1:
// "resolve_source_schema_from_ast"). Returns (nil, nil) if nothing
// matches.
func (s *Store) ResolveSourceSchemaFromAST(ctx context.Context, root *ast.Root, sourceHint string) (*SourceSchema, []diagnostic.Diagnostic) {
	if uri, ok := s.schemaDirectiveURI(root); ok {
		return s.buildSourceSchema(ctx, uri)
	}

	s.mu.RLock()
	explicit := append([]Association(nil), s.explicit...)
	catalog := append([]Association(nil), s.catalog...)
	s.mu.RUnlock()

	base := filepath.ToSlash(sourceHint)
	for _, a := range explicit {
		if a.Matches(base) {
			return s.buildSourceSchema(ctx, a.URI)
		}
	}
	for _, a := range catalog {
		if a.Matches(base) {
			return s.buildSourceSchema(ctx, a.URI)
		}
	}
	return nil, nil
}

func (s *Store) schemaDirectiveURI(root *ast.Root) (SchemaUri, bool) {
	for _, tok := range root.N.ChildTokens() {
		if tok.Kind() != syntax.KindComment {
			continue
		}
		if uri, ok := directive.ParseSchemaDirective(ast.Comment{Tok: tok}); ok {
			return SchemaUri(uri), true
		}
	}
	return "", false
}

func (s *Store) buildSourceSchema(ctx context.Context, uri SchemaUri) (*SourceSchema, []diagnostic.Diagnostic) {
	d, err := s.Get(ctx, uri)
	if err != nil {
		return nil, []diagnostic.Diagnostic{
			diagnostic.New(diagnostic.SourceValidator, "schema-fetch-error", text.ByteRange{}, err.Error()),
		}
	}

	s.mu.RLock()
	explicit := append([]Association(nil), s.explicit...)
	s.mu.RUnlock()

	src := &SourceSchema{Root: d, SubSchemas: map[string]*DocumentSchema{}}
	for _, a := range explicit {
		if len(a.At) == 0 || a.URI == uri {
			continue
		}
		sub, err := s.Get(ctx, a.URI)
		if err == nil {
			src.SubSchemas[a.At.String()] = sub
		}
	}
	return src, nil
}
