package lint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/lint"
	"github.com/tombi-toml/tombi/internal/tomlparse"
)

func parseRoot(t *testing.T, src string) *ast.Root {
	t.Helper()
	parsed := tomlparse.Parse(src, tomlparse.VersionV1_0_0)
	root, ok := ast.CastRoot(parsed.SyntaxTree())
	require.True(t, ok)
	return root
}

func hasKind(t *testing.T, src string, kind string) bool {
	root := parseRoot(t, src)
	diags := lint.Lint(root, tomlparse.VersionV1_0_0, nil)
	for _, d := range diags {
		if string(d.Kind) == kind {
			return true
		}
	}
	return false
}

func TestKeyEmptyDetected(t *testing.T) {
	assert.True(t, hasKind(t, "\"\" = 1\n", "key-empty"))
}

func TestKeyEmptyAbsentWhenNamed(t *testing.T) {
	assert.False(t, hasKind(t, "a = 1\n", "key-empty"))
}

func TestKeyEmptyRespectsDirectiveDisable(t *testing.T) {
	src := "# tombi: lint.rules.key-empty.disabled = true\n\"\" = 1\n"
	assert.False(t, hasKind(t, src, "key-empty"))
}

func TestDottedKeysOutOfOrderDetected(t *testing.T) {
	src := "a.b = 1\nc = 2\na.d = 3\n"
	assert.True(t, hasKind(t, src, "dotted-keys-out-of-order"))
}

func TestDottedKeysContiguousIsClean(t *testing.T) {
	src := "a.b = 1\na.c = 2\nd = 3\n"
	assert.False(t, hasKind(t, src, "dotted-keys-out-of-order"))
}

func TestTablesOutOfOrderDetected(t *testing.T) {
	src := "[a]\nx = 1\n[b]\ny = 2\n[a]\nz = 3\n"
	assert.True(t, hasKind(t, src, "tables-out-of-order"))
}

func TestTablesContiguousIsClean(t *testing.T) {
	src := "[a]\nx = 1\n[a.b]\ny = 2\n[c]\nz = 3\n"
	assert.False(t, hasKind(t, src, "tables-out-of-order"))
}
