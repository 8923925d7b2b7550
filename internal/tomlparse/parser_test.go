package tomlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombi-toml/tombi/internal/syntax"
)

func TestParseLosslessness(t *testing.T) {
	sources := []string{
		"a = 1\n",
		"[a.b]\nc = 1\n\n[a.d]\ne = 2\n",
		"[[x]]\nn=1\n[[x]]\nn=2\n",
		"t = { a = 1, b = 2 }\n# trailing\n",
		"arr = [\n  1,\n  2,\n]\n",
		"bad\n",
		"a = 1 b = 2\n",
	}
	for _, src := range sources {
		parsed := Parse(src, VersionV1_0_0)
		assert.Equal(t, src, parsed.Green.Text(), "source: %q", src)
	}
}

func TestParseWellFormedHasNoDiagnostics(t *testing.T) {
	parsed := Parse("a = 1\nb = \"x\"\n[c]\nd = 2\n", VersionV1_0_0)
	assert.Empty(t, parsed.Diagnostics)
}

func TestParseArrayOfTablesStructure(t *testing.T) {
	parsed := Parse("[[x]]\nn=1\n[[x]]\nn=2\n", VersionV1_0_0)
	root := parsed.SyntaxTree()
	tables := root.ChildrenOfKind(syntax.KindArrayOfTable)
	require.Len(t, tables, 2)
}

func TestParseMissingValueRecordsDiagnostic(t *testing.T) {
	parsed := Parse("a =\n", VersionV1_0_0)
	require.NotEmpty(t, parsed.Diagnostics)
}

func TestParseDuplicateLineErrorIsLocal(t *testing.T) {
	parsed := Parse("a = 1 b = 2\nc = 3\n", VersionV1_0_0)
	require.NotEmpty(t, parsed.Diagnostics)
	// Recovery must not swallow the well-formed line that follows.
	root := parsed.SyntaxTree()
	kvs := root.ChildrenOfKind(syntax.KindKeyValue)
	assert.GreaterOrEqual(t, len(kvs), 2)
}
