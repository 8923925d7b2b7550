package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombi-toml/tombi/internal/config"
)

func TestLoadMissingFileReturnsEmptyConfig(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Schemas)
}

func TestLoadParsesSchemasCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tombi.toml")
	src := "toml-version = \"v1.0.0\"\n\n[[schemas]]\npath = \"**/tombi.toml\"\nschema = \"tombi://schemas/config.json\"\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Schemas, 1)
	assert.Equal(t, "**/tombi.toml", cfg.Schemas[0].Path)
	assert.Equal(t, "tombi://schemas/config.json", cfg.Schemas[0].URI)
}

func TestLoadRejectsUnknownTopLevelKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tombi.toml")
	require.NoError(t, os.WriteFile(path, []byte("bogus = true\n"), 0644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestCatalogMatcherDoubleStar(t *testing.T) {
	m := config.NewCatalogMatcher("**/pyproject.toml")
	assert.True(t, m.Match("a/b/pyproject.toml"))
	assert.True(t, m.Match("pyproject.toml"))
	assert.False(t, m.Match("pyproject.yaml"))
}

func TestCatalogMatcherSingleSegmentGlob(t *testing.T) {
	m := config.NewCatalogMatcher("config/*.toml")
	assert.True(t, m.Match("config/app.toml"))
	assert.False(t, m.Match("config/nested/app.toml"))
}
