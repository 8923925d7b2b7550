package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/cli/ui"
	"github.com/tombi-toml/tombi/internal/config"
	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/document"
	"github.com/tombi-toml/tombi/internal/schema"
	"github.com/tombi-toml/tombi/internal/tomlparse"
)

// checkPipeline is the schema store and resolved configuration every
// command that inspects TOML against tombi.toml/schema-catalogs shares,
// grounded on the same Store the LSP server keeps alive across requests.
type checkPipeline struct {
	store *schema.Store
}

// newCheckPipeline loads configPath (if present) and primes a schema
// Store from its [[schemas]] entries and schema-catalogs. A missing
// config file yields a pipeline that resolves schemas only via a
// document's own `#:schema` directive.
func newCheckPipeline(ctx context.Context, configPath string) (*checkPipeline, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", configPath, err)
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	fetcher := schema.NewFetcher(filepath.Join(cacheDir, "tombi", "schemas"), false)
	store := schema.NewStore(fetcher)

	explicit := make([]schema.Association, 0, len(cfg.Schemas))
	for _, e := range cfg.Schemas {
		a := schema.Association{Pattern: e.Path, URI: schema.SchemaUri(e.URI)}
		if e.Root != "" {
			a.At = schema.AccessorPath{schema.KeyAccessor(e.Root)}
		}
		explicit = append(explicit, a)
	}
	catalogURLs := make([]schema.SchemaUri, 0, len(cfg.CatalogURLs))
	for _, u := range cfg.CatalogURLs {
		catalogURLs = append(catalogURLs, schema.SchemaUri(u))
	}

	if len(catalogURLs) > 0 {
		spinner := ui.NewSpinner(os.Stderr, ui.SpinnerOptions{Message: "Fetching schema catalogs..."})
		spinner.Start()
		err := store.LoadConfig(ctx, explicit, catalogURLs)
		spinner.Stop()
		if err != nil {
			return nil, fmt.Errorf("loading schema catalogs: %w", err)
		}
		return &checkPipeline{store: store}, nil
	}

	if err := store.LoadConfig(ctx, explicit, catalogURLs); err != nil {
		return nil, fmt.Errorf("loading schema catalogs: %w", err)
	}
	return &checkPipeline{store: store}, nil
}

// parsed bundles one file's parse tree, projected document, and parse/
// projection diagnostics — the shared starting point for lint and
// validate.
type parsed struct {
	source string
	root   *ast.Root
	table  *document.Table
	diags  []diagnostic.Diagnostic
}

func parseFile(path string, version tomlparse.Version) (*parsed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	src := string(raw)

	p := tomlparse.Parse(src, version)
	diags := append([]diagnostic.Diagnostic(nil), p.Diagnostics...)

	root, ok := ast.CastRoot(p.SyntaxTree())
	if !ok {
		return &parsed{source: src, diags: diags}, nil
	}

	table, projDiags := document.Project(root, version)
	diags = append(diags, projDiags...)

	return &parsed{source: src, root: root, table: table, diags: diags}, nil
}

// resolveSchema resolves the SourceSchema from root's `#:schema`
// directive, or else from p's explicit associations or a catalog match
// against the file path sourceHint — nil if none
// apply, which every caller treats as "run without schema validation".
func (p *checkPipeline) resolveSchema(ctx context.Context, root *ast.Root, sourceHint string) (*schema.SourceSchema, []diagnostic.Diagnostic) {
	if root == nil {
		return nil, nil
	}
	return p.store.ResolveSourceSchemaFromAST(ctx, root, sourceHint)
}
