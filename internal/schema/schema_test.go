package schema

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/text"
	"github.com/tombi-toml/tombi/internal/tomlparse"
)

const samplePackageSchema = `{
  "type": "object",
  "properties": {
    "name": { "type": "string" },
    "version": { "$ref": "#/$defs/Version" }
  },
  "required": ["name"],
  "$defs": {
    "Version": { "type": "string", "pattern": "^[0-9]+\\.[0-9]+\\.[0-9]+$" }
  }
}`

func TestDecodeDocumentSchema(t *testing.T) {
	d, err := DecodeDocumentSchema("tombi://test", []byte(samplePackageSchema))
	require.NoError(t, err)
	require.False(t, d.Root.IsRef())

	root, diags := Resolve(d.Root, d, zeroTestRange())
	require.Empty(t, diags)
	assert.Equal(t, KindTable, root.Kind)
	assert.Equal(t, []string{"name"}, root.Required)

	versionRef, ok := root.Property("version")
	require.True(t, ok)
	assert.True(t, versionRef.IsRef())

	resolved, diags := Resolve(versionRef, d, zeroTestRange())
	require.Empty(t, diags)
	assert.Equal(t, KindString, resolved.Kind)
	assert.NotNil(t, resolved.Pattern)
}

func TestResolveDetectsCircularRef(t *testing.T) {
	body := `{
		"$defs": {
			"A": { "$ref": "#/$defs/B" },
			"B": { "$ref": "#/$defs/A" }
		},
		"$ref": "#/$defs/A"
	}`
	d, err := DecodeDocumentSchema("tombi://cycle", []byte(body))
	require.NoError(t, err)

	_, diags := Resolve(d.Root, d, zeroTestRange())
	require.NotEmpty(t, diags)
	assert.Equal(t, "circular-schema-ref", string(diags[len(diags)-1].Kind))
}

func TestResolveInvalidPointer(t *testing.T) {
	body := `{ "$ref": "#/$defs/Missing" }`
	d, err := DecodeDocumentSchema("tombi://missing-ref", []byte(body))
	require.NoError(t, err)

	_, diags := Resolve(d.Root, d, zeroTestRange())
	require.NotEmpty(t, diags)
	assert.Equal(t, "invalid-schema-ref", string(diags[0].Kind))
}

func TestStoreResolvesSchemaDirective(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePackageSchema))
	}))
	defer srv.Close()

	store := NewStore(NewFetcher(t.TempDir(), false))
	parsed := tomlparse.Parse("#:schema "+srv.URL+"\nname = \"tombi\"\n", tomlparse.VersionV1_0_0)
	root, ok := ast.CastRoot(parsed.SyntaxTree())
	require.True(t, ok)

	src, diags := store.ResolveSourceSchemaFromAST(context.Background(), root, "pyproject.toml")
	require.Empty(t, diags)
	require.NotNil(t, src)
	assert.Equal(t, KindTable, mustResolveRoot(t, src.Root).Kind)
}

func TestStoreResolvesExplicitAssociation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePackageSchema))
	}))
	defer srv.Close()

	store := NewStore(NewFetcher(t.TempDir(), false))
	err := store.LoadConfig(context.Background(), []Association{
		{Pattern: "**/pyproject.toml", URI: SchemaUri(srv.URL)},
	}, nil)
	require.NoError(t, err)

	parsed := tomlparse.Parse("name = \"tombi\"\n", tomlparse.VersionV1_0_0)
	root, ok := ast.CastRoot(parsed.SyntaxTree())
	require.True(t, ok)

	src, diags := store.ResolveSourceSchemaFromAST(context.Background(), root, "sub/pyproject.toml")
	require.Empty(t, diags)
	require.NotNil(t, src)
}

func TestCatalogMatcherNoMatchReturnsNil(t *testing.T) {
	store := NewStore(NewFetcher(t.TempDir(), false))
	parsed := tomlparse.Parse("name = \"tombi\"\n", tomlparse.VersionV1_0_0)
	root, ok := ast.CastRoot(parsed.SyntaxTree())
	require.True(t, ok)

	src, diags := store.ResolveSourceSchemaFromAST(context.Background(), root, "unrelated.toml")
	assert.Empty(t, diags)
	assert.Nil(t, src)
}

func mustResolveRoot(t *testing.T, d *DocumentSchema) *ValueSchema {
	t.Helper()
	v, diags := Resolve(d.Root, d, zeroTestRange())
	require.Empty(t, diags)
	return v
}

func zeroTestRange() text.ByteRange { return text.ByteRange{} }
