package format_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombi-toml/tombi/internal/format"
)

func TestDefaultDefinitions(t *testing.T) {
	defs := format.DefaultDefinitions()
	assert.Equal(t, 80, defs.LineWidth)
	assert.Equal(t, format.QuotePreserve, defs.QuoteStyle)
}

func TestLoadDefinitionsMissingFileReturnsDefaults(t *testing.T) {
	defs, err := format.LoadDefinitions(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, format.DefaultDefinitions(), defs)
}

func TestLoadDefinitionsReadsFormatTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tombi.toml")
	require.NoError(t, os.WriteFile(path, []byte("[format]\nline-width = 100\nquote-style = \"prefer-double\"\n"), 0644))

	defs, err := format.LoadDefinitions(path)
	require.NoError(t, err)
	assert.Equal(t, 100, defs.LineWidth)
	assert.Equal(t, format.QuotePreferDouble, defs.QuoteStyle)
}
