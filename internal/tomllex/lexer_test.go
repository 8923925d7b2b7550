package tomllex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reconstruct(source string, tokens []Token) string {
	var out []byte
	pos := 0
	for _, tok := range tokens {
		out = append(out, source[pos:pos+int(tok.Len)]...)
		pos += int(tok.Len)
	}
	return string(out)
}

func TestScanTokensLosslessness(t *testing.T) {
	sources := []string{
		"a = 1\n",
		"a.b.c = \"hi\" # comment\n",
		"[[x]]\nn=1\n",
		"t = { a = 1, b = 2 }\n",
		"d = 1979-05-27T07:32:00Z\n",
		"bad = @@@\n",
		"s = \"\"\"\nmulti\nline\"\"\"\n",
	}
	for _, src := range sources {
		l := New(src)
		tokens, _, _ := l.ScanTokens()
		assert.Equal(t, src, reconstruct(src, tokens), "source: %q", src)
	}
}

func TestClassifyNumericAndDateTime(t *testing.T) {
	l := New("d = 1979-05-27\nt = 07:32:00\nn = 0xFF\nf = 3.14\nb = true\n")
	tokens, errs, _ := l.ScanTokens()
	require.Empty(t, errs)

	var kinds []string
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind.String())
	}
	assert.Contains(t, kinds, "LOCAL_DATE")
	assert.Contains(t, kinds, "LOCAL_TIME")
	assert.Contains(t, kinds, "INTEGER_HEX")
	assert.Contains(t, kinds, "FLOAT")
	assert.Contains(t, kinds, "BOOLEAN")
}

func TestUnterminatedStringProducesError(t *testing.T) {
	l := New("a = \"unterminated\n")
	_, errs, _ := l.ScanTokens()
	require.Len(t, errs, 1)
	assert.Equal(t, ErrInvalidBasicString, errs[0].Kind)
}

func TestDetectsCRLF(t *testing.T) {
	l := New("a = 1\r\nb = 2\r\n")
	_, _, ending := l.ScanTokens()
	assert.Equal(t, LineEndingCRLF, ending)
}
