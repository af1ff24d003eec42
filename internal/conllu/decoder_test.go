package conllu

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_SingleSentence(t *testing.T) {
	doc := "# sent_id = 1\n# text = He helped us.\n" +
		"1\tHe\the\tPRON\t_\t_\t2\tnsubj\t_\t_\n" +
		"2\thelped\thelp\tVERB\t_\t_\t0\troot\t_\t_\n"

	dec := NewDecoder(strings.NewReader(doc))
	raw, err := dec.Next()
	require.NoError(t, err)
	require.Len(t, raw.Tokens, 2)

	sentID, ok := raw.Metadata.Get("sent_id")
	assert.True(t, ok)
	assert.Equal(t, "1", sentID)

	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoder_MultipleSentencesSeparatedByBlankLine(t *testing.T) {
	doc := "1\ta\ta\tNOUN\t_\t_\t0\troot\t_\t_\n" +
		"\n" +
		"1\tb\tb\tNOUN\t_\t_\t0\troot\t_\t_\n"

	dec := NewDecoder(strings.NewReader(doc))

	first, err := dec.Next()
	require.NoError(t, err)
	assert.Len(t, first.Tokens, 1)
	assert.Equal(t, "a", first.Tokens[0].Form)

	second, err := dec.Next()
	require.NoError(t, err)
	assert.Len(t, second.Tokens, 1)
	assert.Equal(t, "b", second.Tokens[0].Form)

	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoder_TrailingSentenceWithoutFinalBlankLine(t *testing.T) {
	doc := "1\ta\ta\tNOUN\t_\t_\t0\troot\t_\t_"
	dec := NewDecoder(strings.NewReader(doc))

	raw, err := dec.Next()
	require.NoError(t, err)
	assert.Len(t, raw.Tokens, 1)
}

func TestDecoder_SkipsMultiWordTokenRangesAndEmptyNodes(t *testing.T) {
	doc := "1-2\tgimme\t_\t_\t_\t_\t_\t_\t_\t_\n" +
		"1\tgive\tgive\tVERB\t_\t_\t0\troot\t_\t_\n" +
		"2\tme\tme\tPRON\t_\t_\t1\tobj\t_\t_\n" +
		"2.1\tnull\t_\t_\t_\t_\t_\t_\t_\t_\n"

	dec := NewDecoder(strings.NewReader(doc))
	raw, err := dec.Next()
	require.NoError(t, err)
	require.Len(t, raw.Tokens, 2)
	assert.Equal(t, "give", raw.Tokens[0].Form)
	assert.Equal(t, "me", raw.Tokens[1].Form)
}

func TestDecoder_MalformedLineReportsLineNumber(t *testing.T) {
	doc := "1\ta\ta\tNOUN\t_\t_\t0\troot\t_\t_\n" +
		"2\tonly\tfour\tcolumns\n"

	dec := NewDecoder(strings.NewReader(doc))
	_, err := dec.Next()

	var malformed *MalformedLineError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 2, malformed.Line)
}

func TestDecoder_ResyncsToNextBlankLineAfterMalformedLine(t *testing.T) {
	// Everything after the bad line, up to the blank line, must be
	// consumed so it doesn't bleed into the next sentence.
	doc := "1\ta\ta\tNOUN\t_\t_\t0\troot\t_\t_\n" +
		"2\tonly\tfour\tcolumns\n" +
		"3\tstill\tbad\tTAIL\t_\t_\t1\tdep\t_\t_\n\n" +
		"1\tc\tc\tNOUN\t_\t_\t0\troot\t_\t_\n"

	dec := NewDecoder(strings.NewReader(doc))

	_, err := dec.Next()
	var malformed *MalformedLineError
	require.ErrorAs(t, err, &malformed)

	raw, err := dec.Next()
	require.NoError(t, err)
	require.Len(t, raw.Tokens, 1)
	assert.Equal(t, "c", raw.Tokens[0].Form)

	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoder_KeyedCommentsParsedAsMetadata(t *testing.T) {
	doc := "# sent_id = abc\n# text = Hi there.\n1\ta\ta\tNOUN\t_\t_\t0\troot\t_\t_\n"
	dec := NewDecoder(strings.NewReader(doc))
	raw, err := dec.Next()
	require.NoError(t, err)

	v, ok := raw.Metadata.Get("sent_id")
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	v, ok = raw.Metadata.Get("text")
	assert.True(t, ok)
	assert.Equal(t, "Hi there.", v)
}

func TestDecoder_CommentKeyWithSpacesFallsBackToBareValue(t *testing.T) {
	// A "key" containing whitespace (e.g. "newdoc id") isn't a bare
	// identifier, so the whole comment body is stored under the "" key
	// instead of being misparsed as a key literally named "newdoc id".
	doc := "# newdoc id = doc1\n1\ta\ta\tNOUN\t_\t_\t0\troot\t_\t_\n"
	dec := NewDecoder(strings.NewReader(doc))
	raw, err := dec.Next()
	require.NoError(t, err)

	_, ok := raw.Metadata.Get("newdoc id")
	assert.False(t, ok)

	v, ok := raw.Metadata.Get("")
	assert.True(t, ok)
	assert.Equal(t, "newdoc id = doc1", v)
}

func TestDecoder_BareCommentWithoutEquals(t *testing.T) {
	doc := "# newpar\n1\ta\ta\tNOUN\t_\t_\t0\troot\t_\t_\n"
	dec := NewDecoder(strings.NewReader(doc))
	raw, err := dec.Next()
	require.NoError(t, err)

	v, ok := raw.Metadata.Get("")
	assert.True(t, ok)
	assert.Equal(t, "newpar", v)
}

func TestDecoder_EmptyInputIsEOF(t *testing.T) {
	dec := NewDecoder(strings.NewReader(""))
	_, err := dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}
