package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineIndexLineCol(t *testing.T) {
	src := "a = 1\nb = 2\nc = 3"
	li := NewLineIndex(src, EncodingUTF16)

	pos := li.LineCol(OffsetFromUsize(8)) // '=' on line 1
	require.Equal(t, uint32(1), pos.Line)
	assert.Equal(t, uint32(2), pos.Column)
}

func TestLineIndexRoundTrip(t *testing.T) {
	src := "k = \"héllo\"\nn = 2\n"
	li := NewLineIndex(src, EncodingUTF16)

	off := OffsetFromUsize(13)
	pos := li.LineCol(off)
	back := li.Offset(pos)
	assert.Equal(t, off, back)
}

func TestRangeAdd(t *testing.T) {
	r1 := NewRange(Position{Line: 0, Column: 0}, Position{Line: 0, Column: 3})
	r2 := NewRange(Position{Line: 1, Column: 0}, Position{Line: 1, Column: 5})
	union := r1.Add(r2)
	assert.Equal(t, Position{Line: 0, Column: 0}, union.Start)
	assert.Equal(t, Position{Line: 1, Column: 5}, union.End)
}

func TestByteRangeContainsRange(t *testing.T) {
	outer := NewByteRange(0, 10)
	inner := NewByteRange(2, 5)
	assert.True(t, outer.ContainsRange(inner))
	assert.False(t, inner.ContainsRange(outer))
}
