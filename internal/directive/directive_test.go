package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/syntax"
	"github.com/tombi-toml/tombi/internal/tomlparse"
)

func firstComment(t *testing.T, src string) ast.Comment {
	t.Helper()
	parsed := tomlparse.Parse(src, tomlparse.VersionV1_0_0)
	tree := parsed.SyntaxTree()
	for _, tok := range tree.ChildTokens() {
		if tok.Kind() == syntax.KindComment {
			return ast.Comment{Tok: tok}
		}
	}
	t.Fatal("no comment found")
	return ast.Comment{}
}

func TestParseSchemaDirective(t *testing.T) {
	c := firstComment(t, "#:schema https://example.com/schema.json\na = 1\n")
	uri, ok := ParseSchemaDirective(c)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/schema.json", uri)
}

func TestParseSchemaDirectiveRejectsNonMatching(t *testing.T) {
	c := firstComment(t, "# just a comment\na = 1\n")
	_, ok := ParseSchemaDirective(c)
	assert.False(t, ok)
}

func TestParseTombiDirectiveRecognizedOptions(t *testing.T) {
	c := firstComment(t, "# tombi: lint.rules.key-empty.disabled = true\na = 1\n")
	require.True(t, IsTombiDirective(c))

	d := ParseTombiDirective(c, ScopeDocument, tomlparse.VersionV1_0_0)
	assert.Empty(t, d.Diagnostics)

	disabled, ok := d.LintRuleDisabled("key-empty")
	require.True(t, ok)
	assert.True(t, disabled)
}

func TestParseTombiDirectiveRejectsUnknownOption(t *testing.T) {
	c := firstComment(t, "# tombi: made-up-option = true\na = 1\n")
	d := ParseTombiDirective(c, ScopeValue, tomlparse.VersionV1_0_0)
	require.NotEmpty(t, d.Diagnostics)
	assert.Equal(t, diagnosticKind(d), "unknown-directive-option")
}

func diagnosticKind(d *Directive) string {
	return string(d.Diagnostics[0].Kind)
}

func TestParseTombiDirectiveTOMLVersion(t *testing.T) {
	c := firstComment(t, "# tombi: toml-version = \"v1.1.0-preview\"\na = 1\n")
	d := ParseTombiDirective(c, ScopeDocument, tomlparse.VersionV1_0_0)
	require.Empty(t, d.Diagnostics)

	v, ok := d.TOMLVersion()
	require.True(t, ok)
	assert.Equal(t, tomlparse.VersionV1_1_0Preview, v)
}

func TestParseTombiDirectiveSchemaStrict(t *testing.T) {
	c := firstComment(t, "# tombi: schema.strict = false\na = 1\n")
	d := ParseTombiDirective(c, ScopeValue, tomlparse.VersionV1_0_0)
	require.Empty(t, d.Diagnostics)

	strict, ok := d.SchemaStrict()
	require.True(t, ok)
	assert.False(t, strict)
}
