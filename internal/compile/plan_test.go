package compile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusql/conllu/internal/model"
	"github.com/corpusql/conllu/internal/query"
)

func TestCompile_VerbFinder(t *testing.T) {
	pat, err := Compile(`V [upos="VERB"];`)
	require.NoError(t, err)
	assert.Equal(t, []string{"V"}, pat.OutputVars)
	require.Len(t, pat.Match.Steps, 1)
	assert.Equal(t, "V", pat.Match.Steps[0].Var)
	require.Len(t, pat.Match.Steps[0].NodeChecks, 1)
	assert.Equal(t, "upos", pat.Match.Steps[0].NodeChecks[0].Field)
}

func TestCompile_EdgeStepUsesSourceNotFilter(t *testing.T) {
	pat, err := Compile(`V [upos="VERB"]; V -[nsubj]-> S; S [upos="NOUN"];`)
	require.NoError(t, err)
	require.Len(t, pat.Match.Steps, 2)

	assert.Equal(t, "V", pat.Match.Steps[0].Var)
	assert.False(t, pat.Match.Steps[0].UseEdgeSource)

	sStep := pat.Match.Steps[1]
	assert.Equal(t, "S", sStep.Var)
	require.True(t, sStep.UseEdgeSource)
	assert.Equal(t, "V", sStep.EdgeSource.Other)
	assert.Equal(t, EdgeToChild, sStep.EdgeSource.Dir, "S is the child of V in V -[nsubj]-> S")
	assert.True(t, sStep.EdgeSource.HasLabel)
	assert.Equal(t, "nsubj", sStep.EdgeSource.Label)
	assert.Empty(t, sStep.EdgeChecks, "the sole edge constraint should drive the source, not double as a filter")
}

func TestCompile_SelectivityOrdersConstrainedVariableFirst(t *testing.T) {
	pat, err := Compile(`A; A -[nsubj]-> B; B [upos="NOUN"];`)
	require.NoError(t, err)
	require.Len(t, pat.Match.Steps, 2)
	assert.Equal(t, "B", pat.Match.Steps[0].Var, "B has a constraint, A has none, so B should bind first")
}

func TestCompile_NegatedEdgeBecomesExceptBlock(t *testing.T) {
	pat, err := Compile(`MATCH { V [upos="VERB"]; } EXCEPT { V !-[advmod]-> _; }`)
	require.NoError(t, err)
	require.Len(t, pat.Except, 1)
	eb := pat.Except[0]
	require.Len(t, eb.Steps, 1)
	assert.True(t, eb.Steps[0].UseEdgeSource)
	assert.Equal(t, "advmod", eb.Steps[0].EdgeSource.Label)
}

func TestCompile_OptionalBlockSharesMatchScope(t *testing.T) {
	pat, err := Compile(`MATCH { V [upos="VERB"]; } OPTIONAL { S []; V -[nsubj]-> S; }`)
	require.NoError(t, err)
	require.Len(t, pat.Optional, 1)
	require.Len(t, pat.Optional[0].Steps, 1)
	assert.Equal(t, "S", pat.Optional[0].Steps[0].Var)
}

func TestCompile_UnknownFieldIsCompileError(t *testing.T) {
	_, err := Compile(`V [bogus="x"];`)
	require.Error(t, err)
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, model.ErrUnknownField)
	assert.Equal(t, model.ECQuerySemantic, model.CodeOf(err, false))
}

func TestCompile_InvalidRegexIsCompileError(t *testing.T) {
	_, err := Compile(`V [form~"("];`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidRegex))
}

func TestCompile_PosIsAliasForUpos(t *testing.T) {
	pat, err := Compile(`V [pos="VERB"];`)
	require.NoError(t, err)
	assert.Equal(t, "upos", pat.Match.Steps[0].NodeChecks[0].Field)
}

func TestCompile_FieldNamesAreCaseInsensitive(t *testing.T) {
	pat, err := Compile(`V [UPOS="VERB"];`)
	require.NoError(t, err)
	assert.Equal(t, "upos", pat.Match.Steps[0].NodeChecks[0].Field)

	pat, err = Compile(`V [Pos="VERB"];`)
	require.NoError(t, err)
	assert.Equal(t, "upos", pat.Match.Steps[0].NodeChecks[0].Field)

	pat, err = Compile(`V [Deprel="nsubj"];`)
	require.NoError(t, err)
	assert.Equal(t, "deprel", pat.Match.Steps[0].NodeChecks[0].Field)
}

func TestCompile_RequiresExactlyOneMatchBlockBubblesParserError(t *testing.T) {
	_, err := Compile(`EXCEPT { V -> S; }`)
	require.Error(t, err)
	var perr *query.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestCompile_PrecedenceClauseCompilesAgainstBoundVariable(t *testing.T) {
	pat, err := Compile(`A; A << B;`)
	require.NoError(t, err)
	var bStep *Step
	for i := range pat.Match.Steps {
		if pat.Match.Steps[i].Var == "B" {
			bStep = &pat.Match.Steps[i]
		}
	}
	require.NotNil(t, bStep)
	require.Len(t, bStep.PrecChecks, 1)
	assert.Equal(t, query.PrecBefore, bStep.PrecChecks[0].Op)
	assert.True(t, bStep.PrecChecks[0].OtherIsLeft)
}
