package format_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/format"
	"github.com/tombi-toml/tombi/internal/schema"
	"github.com/tombi-toml/tombi/internal/tomlparse"
)

func parseRoot(t *testing.T, src string) *ast.Root {
	t.Helper()
	parsed := tomlparse.Parse(src, tomlparse.VersionV1_0_0)
	require.Empty(t, parsed.Diagnostics)
	root, ok := ast.CastRoot(parsed.SyntaxTree())
	require.True(t, ok)
	return root
}

func runFormat(t *testing.T, src string, defs *format.Definitions, lookup format.SchemaLookup) string {
	t.Helper()
	root := parseRoot(t, src)
	f := format.New(defs, lookup, tomlparse.VersionV1_0_0)
	return f.Format(root)
}

func TestFormatIdempotent(t *testing.T) {
	src := "name = \"tombi\"\nversion = \"1.0.0\"\n\n[owner]\nname = \"a\"\nemail = \"a@example.com\"\n"
	first := runFormat(t, src, nil, nil)
	second := runFormat(t, first, nil, nil)
	assert.Equal(t, first, second)
}

func TestFormatAlignsContiguousKeyValues(t *testing.T) {
	out := runFormat(t, "a = 1\nbb = 2\n", nil, nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "a  = 1", lines[0])
	assert.Equal(t, "bb = 2", lines[1])
}

func TestFormatBlankLineBreaksAlignmentGroup(t *testing.T) {
	out := runFormat(t, "a = 1\n\nbb = 2\n", nil, nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "a = 1", lines[0])
}

func TestFormatPreservesTableHeadersAndComments(t *testing.T) {
	out := runFormat(t, "# top\n[a.b]\nx = 1 # trailing\n", nil, nil)
	assert.Contains(t, out, "# top")
	assert.Contains(t, out, "[a.b]")
	assert.Contains(t, out, "x = 1  # trailing")
}

func TestFormatInlineTableWrapsWhenOverWidth(t *testing.T) {
	defs := format.DefaultDefinitions()
	defs.LineWidth = 30
	out := runFormat(t, "t = { a = 1, b = 2, c = 3 }\n", defs, nil)
	assert.Contains(t, out, "t = {\n")
	assert.Contains(t, out, "  a = 1,\n")
	assert.Contains(t, out, "}")
}

func TestFormatArrayStaysInlineWhenShort(t *testing.T) {
	out := runFormat(t, "tags = [\"a\", \"b\"]\n", nil, nil)
	assert.Contains(t, out, "tags = [\"a\", \"b\"]")
}

func TestFormatQuoteStylePreferDouble(t *testing.T) {
	defs := format.DefaultDefinitions()
	defs.QuoteStyle = format.QuotePreferDouble
	out := runFormat(t, "name = 'tombi'\n", defs, nil)
	assert.Contains(t, out, "name = \"tombi\"")
}

func TestFormatQuoteStyleSkipsWhenEscapesNeeded(t *testing.T) {
	defs := format.DefaultDefinitions()
	defs.QuoteStyle = format.QuotePreferSingle
	out := runFormat(t, "name = \"a\\\\b\"\n", defs, nil)
	assert.Contains(t, out, "name = \"a\\\\b\"")
}

func TestFormatDateTimeDelimiter(t *testing.T) {
	defs := format.DefaultDefinitions()
	defs.DateTimeDelimiter = format.DelimiterSpace
	out := runFormat(t, "created = 2024-01-02T03:04:05Z\n", defs, nil)
	assert.Contains(t, out, "created = 2024-01-02 03:04:05Z")
}

type fakeLookup struct {
	order schema.OrderKind
}

func (l fakeLookup) ValueSchemaAt(path []string) *schema.ValueSchema {
	if len(path) != 1 || path[0] != "tags" {
		return nil
	}
	return &schema.ValueSchema{Kind: schema.KindArray, ArrayValuesOrder: l.order}
}

func TestFormatSortsArrayBySchemaOrder(t *testing.T) {
	out := runFormat(t, "tags = [\"b\", \"a\", \"c\"]\n", nil, fakeLookup{order: schema.OrderAscending})
	assert.Contains(t, out, "tags = [\"a\", \"b\", \"c\"]")
}
