package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func w(index, tokenID int, head *int) Word {
	return Word{Index: index, TokenID: tokenID, Form: "x", UPOS: "X", Deprel: "dep", HeadIndex: head}
}

func ptr(i int) *int { return &i }

func TestNewTree_IndexAndTokenIDMustBeDense(t *testing.T) {
	_, err := NewTree([]Word{
		w(0, 1, nil),
		w(1, 99, ptr(0)), // wrong token_id
	}, NewOrderedMap())
	require.Error(t, err)
	var se *StructuralError
	assert.ErrorAs(t, err, &se)
}

func TestNewTree_ExactlyOneRoot(t *testing.T) {
	_, err := NewTree([]Word{
		w(0, 1, nil),
		w(1, 2, nil), // second root
	}, NewOrderedMap())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedSentence)

	_, err = NewTree([]Word{
		w(0, 1, ptr(1)),
		w(1, 2, ptr(0)),
	}, NewOrderedMap())
	require.Error(t, err) // no root at all
	assert.ErrorIs(t, err, ErrNoRoot)
	assert.Equal(t, ECStructural, CodeOf(err, false))
}

func TestNewTree_HeadOutOfRange(t *testing.T) {
	_, err := NewTree([]Word{
		w(0, 1, nil),
		w(1, 2, ptr(5)),
	}, NewOrderedMap())
	require.Error(t, err)
}

func TestNewTree_SelfHeadRejected(t *testing.T) {
	_, err := NewTree([]Word{
		w(0, 1, nil),
		w(1, 2, ptr(1)),
	}, NewOrderedMap())
	require.Error(t, err)
}

func TestNewTree_CycleDetected(t *testing.T) {
	_, err := NewTree([]Word{
		w(0, 1, ptr(1)),
		w(1, 2, ptr(2)),
		w(2, 3, ptr(0)),
		w(3, 4, nil),
	}, NewOrderedMap())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestNewTree_DisconnectedWordRejected(t *testing.T) {
	// word 2 is its own head, so the graph under the declared root only
	// covers words 0-1; the self-head check rejects it first.
	_, err := NewTree([]Word{
		w(0, 1, nil),
		w(1, 2, ptr(0)),
		w(2, 3, ptr(2)), // self-head, also unreachable if it weren't rejected first
	}, NewOrderedMap())
	require.Error(t, err)
}

func TestNewTree_ChildrenAscendingAndConsistentWithHead(t *testing.T) {
	tree, err := NewTree([]Word{
		w(0, 1, ptr(1)),
		w(1, 2, nil),
		w(2, 3, ptr(1)),
		w(3, 4, ptr(1)),
	}, NewOrderedMap())
	require.NoError(t, err)

	children := tree.Children(1)
	assert.Equal(t, []int{0, 2, 3}, children)

	for _, c := range children {
		head := tree.Word(c).HeadIndex
		require.NotNil(t, head)
		assert.Equal(t, 1, *head)
	}
}

func TestNewTree_RootAndRef(t *testing.T) {
	tree, err := NewTree([]Word{
		w(0, 1, ptr(1)),
		w(1, 2, nil),
	}, NewOrderedMap())
	require.NoError(t, err)

	assert.Equal(t, 1, tree.Root())

	ref := tree.Ref(0)
	parent, ok := ref.Parent()
	require.True(t, ok)
	assert.Equal(t, 1, parent.Index())

	_, ok = tree.Ref(1).Parent()
	assert.False(t, ok)
}

func TestWordRef_ChildrenByDeprel(t *testing.T) {
	nsubj, obj := "nsubj", "obj"
	words := []Word{
		{Index: 0, TokenID: 1, Form: "He", UPOS: "PRON", Deprel: nsubj, HeadIndex: ptr(1)},
		{Index: 1, TokenID: 2, Form: "helped", UPOS: "VERB", Deprel: "root", HeadIndex: nil},
		{Index: 2, TokenID: 3, Form: "us", UPOS: "PRON", Deprel: obj, HeadIndex: ptr(1)},
	}
	tree, err := NewTree(words, NewOrderedMap())
	require.NoError(t, err)

	subjects := tree.Ref(1).ChildrenByDeprel(nsubj)
	require.Len(t, subjects, 1)
	assert.Equal(t, 0, subjects[0].Index())

	objects := tree.Ref(1).ChildrenByDeprel(obj)
	require.Len(t, objects, 1)
	assert.Equal(t, 2, objects[0].Index())
}

func TestTree_MetadataAndSentenceText(t *testing.T) {
	meta := NewOrderedMap()
	meta.Set("sent_id", "42")
	meta.Set("text", "He helped us.")

	tree, err := NewTree([]Word{w(0, 1, nil)}, meta)
	require.NoError(t, err)

	assert.Equal(t, "42", tree.ID())
	text, ok := tree.SentenceText()
	assert.True(t, ok)
	assert.Equal(t, "He helped us.", text)
}
