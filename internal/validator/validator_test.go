package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/document"
	"github.com/tombi-toml/tombi/internal/schema"
	"github.com/tombi-toml/tombi/internal/tomlparse"
	"github.com/tombi-toml/tombi/internal/validator"
)

const packageSchema = `{
  "type": "object",
  "properties": {
    "name": { "type": "string", "minLength": 1 },
    "version": { "type": "string", "pattern": "^[0-9]+\\.[0-9]+\\.[0-9]+$" },
    "tags": {
      "type": "array",
      "items": { "type": "string" },
      "uniqueItems": true,
      "x-tombi-array-values-order": "ascending"
    },
    "owner": {
      "type": "object",
      "properties": { "email": { "type": "string", "format": "email" } },
      "additionalProperties": false
    }
  },
  "required": ["name", "version"],
  "additionalProperties": false
}`

func projectAndResolve(t *testing.T, src string) (*document.Table, *schema.SourceSchema) {
	t.Helper()
	parsed := tomlparse.Parse(src, tomlparse.VersionV1_0_0)
	require.Empty(t, parsed.Diagnostics)
	root, ok := ast.CastRoot(parsed.SyntaxTree())
	require.True(t, ok)
	tbl, diags := document.Project(root, tomlparse.VersionV1_0_0)
	require.Empty(t, diags)

	d, err := schema.DecodeDocumentSchema("tombi://package", []byte(packageSchema))
	require.NoError(t, err)
	return tbl, &schema.SourceSchema{Root: d}
}

func TestValidateAcceptsConformingDocument(t *testing.T) {
	tbl, src := projectAndResolve(t, "name = \"tombi\"\nversion = \"1.2.3\"\ntags = [\"a\", \"b\"]\n")
	diags := validator.Validate(tbl, src)
	assert.Empty(t, diags)
}

func TestValidateReportsMissingRequired(t *testing.T) {
	tbl, src := projectAndResolve(t, "tags = [\"a\"]\n")
	diags := validator.Validate(tbl, src)
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if string(d.Kind) == "required-key-missing" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateReportsTypeMismatch(t *testing.T) {
	tbl, src := projectAndResolve(t, "name = 1\nversion = \"1.2.3\"\n")
	diags := validator.Validate(tbl, src)
	require.NotEmpty(t, diags)
	assert.Equal(t, "type-mismatch", string(diags[0].Kind))
}

func TestValidateReportsPatternMismatch(t *testing.T) {
	tbl, src := projectAndResolve(t, "name = \"tombi\"\nversion = \"not-a-version\"\n")
	diags := validator.Validate(tbl, src)
	require.NotEmpty(t, diags)
	assert.Equal(t, "pattern-mismatch", string(diags[0].Kind))
}

func TestValidateReportsKeyNotAllowed(t *testing.T) {
	tbl, src := projectAndResolve(t, "name = \"tombi\"\nversion = \"1.2.3\"\nextra = true\n")
	diags := validator.Validate(tbl, src)
	require.NotEmpty(t, diags)
	assert.Equal(t, "key-not-allowed", string(diags[0].Kind))
}

func TestValidateReportsDuplicateArrayItems(t *testing.T) {
	tbl, src := projectAndResolve(t, "name = \"tombi\"\nversion = \"1.2.3\"\ntags = [\"a\", \"a\"]\n")
	diags := validator.Validate(tbl, src)
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if string(d.Kind) == "array-not-unique" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateReportsOutOfOrderArray(t *testing.T) {
	tbl, src := projectAndResolve(t, "name = \"tombi\"\nversion = \"1.2.3\"\ntags = [\"b\", \"a\"]\n")
	diags := validator.Validate(tbl, src)
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if string(d.Kind) == "array-out-of-order" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateReportsInvalidEmailFormat(t *testing.T) {
	tbl, src := projectAndResolve(t, "name = \"tombi\"\nversion = \"1.2.3\"\n[owner]\nemail = \"not-an-email\"\n")
	diags := validator.Validate(tbl, src)
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if string(d.Kind) == "format-mismatch" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateNilSchemaIsNoop(t *testing.T) {
	parsed := tomlparse.Parse("name = \"tombi\"\n", tomlparse.VersionV1_0_0)
	root, ok := ast.CastRoot(parsed.SyntaxTree())
	require.True(t, ok)
	tbl, _ := document.Project(root, tomlparse.VersionV1_0_0)
	assert.Empty(t, validator.Validate(tbl, nil))
}
