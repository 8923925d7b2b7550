package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderRoundTripsSourceText(t *testing.T) {
	b := NewBuilder()
	b.StartNode(KindRoot)
	b.StartNode(KindKeyValue)
	b.StartNode(KindKeys)
	b.StartNode(KindKey)
	b.Token(KindBareKeyLiteral, "a")
	b.FinishNode(KindKey)
	b.FinishNode(KindKeys)
	b.Token(KindWhitespace, " ")
	b.Token(KindEquals, "=")
	b.Token(KindWhitespace, " ")
	b.Token(KindIntegerDec, "1")
	b.FinishNode(KindKeyValue)
	b.Token(KindLineBreak, "\n")
	b.FinishNode(KindRoot)

	green := b.Finish()
	assert.Equal(t, "a = 1\n", green.Text())
	assert.Equal(t, KindRoot, green.Kind())
}

func TestRedTreeOffsetsAndRanges(t *testing.T) {
	b := NewBuilder()
	b.StartNode(KindRoot)
	b.StartNode(KindKeyValue)
	b.Token(KindBareKeyLiteral, "a")
	b.Token(KindWhitespace, " ")
	b.Token(KindEquals, "=")
	b.Token(KindWhitespace, " ")
	b.Token(KindIntegerDec, "1")
	b.FinishNode(KindKeyValue)
	b.FinishNode(KindRoot)

	root := NewRoot(b.Finish())
	require.Equal(t, KindRoot, root.Kind())

	kv := root.FirstChildOfKind(KindKeyValue)
	require.NotNil(t, kv)
	assert.Equal(t, uint32(0), uint32(kv.Range().Start))
	assert.Equal(t, uint32(5), uint32(kv.Range().End))

	eq := kv.FirstTokenOfKind(KindEquals)
	require.NotNil(t, eq)
	assert.Equal(t, uint32(2), uint32(eq.Range().Start))
	assert.Equal(t, "=", eq.Text())
}

func TestChildrenParentRangeMonotonicity(t *testing.T) {
	b := NewBuilder()
	b.StartNode(KindRoot)
	b.StartNode(KindTable)
	b.Token(KindLBracket, "[")
	b.Token(KindBareKeyLiteral, "a")
	b.Token(KindRBracket, "]")
	b.FinishNode(KindTable)
	b.FinishNode(KindRoot)

	root := NewRoot(b.Finish())
	table := root.FirstChildOfKind(KindTable)
	require.NotNil(t, table)
	parentRange := table.Range()
	for _, child := range table.Children() {
		assert.True(t, parentRange.ContainsRange(child.Range()))
	}
}
