package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombi-toml/tombi/internal/syntax"
	"github.com/tombi-toml/tombi/internal/tomlparse"
)

func parseRoot(t *testing.T, src string) *Root {
	t.Helper()
	parsed := tomlparse.Parse(src, tomlparse.VersionV1_0_0)
	root, ok := CastRoot(parsed.SyntaxTree())
	require.True(t, ok)
	return root
}

func TestRootKeyValuesAndTables(t *testing.T) {
	root := parseRoot(t, "a = 1\n[b]\nc = 2\n[[d]]\ne = 3\n")

	kvs := root.KeyValues()
	require.Len(t, kvs, 1)
	assert.Equal(t, "a", kvs[0].Keys().Segments()[0].RawText())

	tables := root.Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, "b", tables[0].Keys().Segments()[0].RawText())

	aot := root.ArrayOfTables()
	require.Len(t, aot, 1)
	assert.Equal(t, "d", aot[0].Keys().Segments()[0].RawText())
}

func TestKeyValueDottedKeysAndValue(t *testing.T) {
	root := parseRoot(t, "a.b.c = 1\n")
	kvs := root.KeyValues()
	require.Len(t, kvs, 1)

	segs := kvs[0].Keys().Segments()
	require.Len(t, segs, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{segs[0].RawText(), segs[1].RawText(), segs[2].RawText()})

	val := kvs[0].Value()
	tok, ok := val.(*syntax.Token)
	require.True(t, ok)
	assert.Equal(t, "1", tok.Text())
}

func TestArrayAndInlineTableValues(t *testing.T) {
	root := parseRoot(t, "arr = [1, 2, 3]\nit = { x = 1, y = 2 }\n")
	kvs := root.KeyValues()
	require.Len(t, kvs, 2)

	arrNode, ok := kvs[0].Value().(*syntax.Node)
	require.True(t, ok)
	arr, ok := CastArray(arrNode)
	require.True(t, ok)
	assert.Len(t, arr.Values(), 3)

	itNode, ok := kvs[1].Value().(*syntax.Node)
	require.True(t, ok)
	it, ok := CastInlineTable(itNode)
	require.True(t, ok)
	assert.Len(t, it.KeyValues(), 2)
}

func TestLeadingAndTrailingComments(t *testing.T) {
	root := parseRoot(t, "# describes a\na = 1 # inline\n# above b\nb = 2\n")
	kvs := root.KeyValues()
	require.Len(t, kvs, 2)

	leading := LeadingComment(kvs[0].N)
	require.NotNil(t, leading)
	assert.Equal(t, "describes a", leading.Comments()[0].Content())

	trailing := TrailingComment(kvs[0].N)
	require.NotNil(t, trailing)
	assert.Equal(t, "inline", trailing.Content())

	// b's own comment sits right above it with no blank line, so it is
	// leading for b, not dangling for the root.
	leadingB := LeadingComment(kvs[1].N)
	require.NotNil(t, leadingB)
	assert.Equal(t, "above b", leadingB.Comments()[0].Content())
}

func TestDanglingCommentAcrossBlankLineIsNotLeading(t *testing.T) {
	root := parseRoot(t, "a = 1\n\n# separated by a blank line\n\nb = 2\n")
	kvs := root.KeyValues()
	require.Len(t, kvs, 2)
	assert.Nil(t, LeadingComment(kvs[1].N))
}

func TestBeginDanglingCommentsInsideTable(t *testing.T) {
	root := parseRoot(t, "[a]\n# leads b, not the table\nb = 1\n")
	tables := root.Tables()
	require.Len(t, tables, 1)

	groups := BeginDanglingComments(tables[0].N)
	assert.Empty(t, groups, "adjacent comment belongs to b as its leading comment")

	kvs := tables[0].KeyValues()
	require.Len(t, kvs, 1)
	leading := LeadingComment(kvs[0].N)
	require.NotNil(t, leading)
}
