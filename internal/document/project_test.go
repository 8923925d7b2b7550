package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/tomlparse"
)

func projectSource(t *testing.T, src string) (*Table, []string) {
	t.Helper()
	parsed := tomlparse.Parse(src, tomlparse.VersionV1_0_0)
	root, ok := ast.CastRoot(parsed.SyntaxTree())
	require.True(t, ok)
	doc, diags := Project(root, tomlparse.VersionV1_0_0)
	var kinds []string
	for _, d := range diags {
		kinds = append(kinds, string(d.Kind))
	}
	return doc, kinds
}

func TestProjectSimpleKeyValues(t *testing.T) {
	doc, diags := projectSource(t, "a = 1\nb = \"hi\"\nc = true\n")
	assert.Empty(t, diags)

	v, ok := doc.Get("a")
	require.True(t, ok)
	i, ok := v.(Integer)
	require.True(t, ok)
	assert.Equal(t, int64(1), i.Value.Int64())

	v, ok = doc.Get("b")
	require.True(t, ok)
	s, ok := v.(String)
	require.True(t, ok)
	assert.Equal(t, "hi", s.Text)
}

func TestProjectDottedKeysCreateIntermediateTables(t *testing.T) {
	doc, diags := projectSource(t, "a.b.c = 1\n")
	assert.Empty(t, diags)

	v, ok := doc.Get("a")
	require.True(t, ok)
	a := v.(*Table)
	assert.Equal(t, TableDottedKeys, a.Kind)

	v, ok = a.Get("b")
	require.True(t, ok)
	b := v.(*Table)
	assert.Equal(t, TableDottedKeys, b.Kind)

	v, ok = b.Get("c")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.(Integer).Value.Int64())
}

func TestProjectHeaderTablesAndDuplicateKey(t *testing.T) {
	doc, diags := projectSource(t, "[a]\nx = 1\nx = 2\n")
	require.NotEmpty(t, diags)
	assert.Contains(t, diags, "duplicate-key")

	v, ok := doc.Get("a")
	require.True(t, ok)
	a := v.(*Table)
	assert.Equal(t, TableHeader, a.Kind)
	xv, ok := a.Get("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), xv.(Integer).Value.Int64())
}

func TestProjectArrayOfTablesAppends(t *testing.T) {
	doc, diags := projectSource(t, "[[fruit]]\nname = \"apple\"\n[[fruit]]\nname = \"banana\"\n")
	assert.Empty(t, diags)

	v, ok := doc.Get("fruit")
	require.True(t, ok)
	arr := v.(*Array)
	require.Equal(t, 2, arr.Len())

	t0 := arr.Values()[0].(*Table)
	n0, _ := t0.Get("name")
	assert.Equal(t, "apple", n0.(String).Text)

	t1 := arr.Values()[1].(*Table)
	n1, _ := t1.Get("name")
	assert.Equal(t, "banana", n1.(String).Text)
}

func TestProjectRejectsReopeningDottedKeysTableAsHeader(t *testing.T) {
	_, diags := projectSource(t, "a.b = 1\n[a]\n")
	assert.Contains(t, diags, "redefinition-incompatible-kind")
}

func TestProjectArrayLiteralAndInlineTable(t *testing.T) {
	doc, diags := projectSource(t, "arr = [1, 2, 3]\nit = { x = 1 }\n")
	assert.Empty(t, diags)

	v, _ := doc.Get("arr")
	arr := v.(*Array)
	assert.Equal(t, 3, arr.Len())

	v, _ = doc.Get("it")
	it := v.(*Table)
	assert.Equal(t, TableInline, it.Kind)
	x, ok := it.Get("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), x.(Integer).Value.Int64())
}

func TestProjectIntegerRadixPreserved(t *testing.T) {
	doc, diags := projectSource(t, "h = 0xFF\nb = 0b101\no = 0o17\n")
	assert.Empty(t, diags)

	h, _ := doc.Get("h")
	assert.Equal(t, RadixHex, h.(Integer).Radix)
	assert.Equal(t, int64(255), h.(Integer).Value.Int64())

	b, _ := doc.Get("b")
	assert.Equal(t, RadixBin, b.(Integer).Radix)
	assert.Equal(t, int64(5), b.(Integer).Value.Int64())

	o, _ := doc.Get("o")
	assert.Equal(t, RadixOct, o.(Integer).Radix)
	assert.Equal(t, int64(15), o.(Integer).Value.Int64())
}
