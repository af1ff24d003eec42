// Package compile turns a parsed query.Program into a Pattern: one join
// plan per block, with a variable order and per-step constraint lists
// the matcher can execute without re-inspecting the AST (§4.3).
package compile

import (
	"fmt"
	"regexp"

	"github.com/corpusql/conllu/internal/model"
	"github.com/corpusql/conllu/internal/query"
)

// Attr names recognized on plain word constraints, after alias resolution.
const (
	attrForm   = "form"
	attrLemma  = "lemma"
	attrUpos   = "upos"
	attrXpos   = "xpos"
	attrDeprel = "deprel"
)

var attrAliases = map[string]string{
	"pos": attrUpos,
}

// CompileError reports a semantic error discovered while compiling an
// otherwise syntactically valid query (§7 Query compile error):
// unknown fields, invalid regexes, or a query without a MATCH block.
// Cause is one of the model sentinel errors when the
// failure fits one, so callers can classify it with errors.Is.
type CompileError struct {
	Pos    query.Position
	Reason string
	Cause  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Reason)
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}

// Code reports the machine-readable classification for this error.
func (e *CompileError) Code() model.ErrorCode {
	return model.ECQuerySemantic
}

// NodeCheck is one compiled node constraint, with its regex (if any)
// pre-compiled so the matcher never calls regexp.Compile in the hot loop.
type NodeCheck struct {
	Kind  query.FieldKind
	Field string
	Op    query.ConstraintOp
	Value string
	Re    *regexp.Regexp
}

// Eval reports whether w satisfies this constraint.
func (c NodeCheck) Eval(w model.Word) bool {
	actual, ok := fieldValue(w, c.Kind, c.Field)
	switch c.Op {
	case query.OpEq:
		return ok && actual == c.Value
	case query.OpNeq:
		return !ok || actual != c.Value
	case query.OpMatch:
		return ok && c.Re.MatchString(actual)
	case query.OpNotMatch:
		return !ok || !c.Re.MatchString(actual)
	default:
		return false
	}
}

func fieldValue(w model.Word, kind query.FieldKind, field string) (string, bool) {
	switch kind {
	case query.FieldFeats:
		if w.Feats == nil {
			return "", false
		}
		return w.Feats.Get(field)
	case query.FieldMisc:
		if w.Misc == nil {
			return "", false
		}
		return w.Misc.Get(field)
	default:
		switch field {
		case attrForm:
			return w.Form, true
		case attrLemma:
			return w.Lemma, true
		case attrUpos:
			return w.UPOS, true
		case attrXpos:
			if w.XPOS == nil {
				return "", false
			}
			return *w.XPOS, true
		case attrDeprel:
			return w.Deprel, true
		default:
			return "", false
		}
	}
}

// EdgeDir indicates which side of a compiled edge constraint the bound
// variable sits on, so the matcher knows whether to iterate children or
// the parent of that variable's already-bound word.
type EdgeDir int

const (
	// EdgeToChild: the step variable is the child; Other is the parent.
	EdgeToChild EdgeDir = iota
	// EdgeToParent: the step variable is the parent; Other is the child.
	EdgeToParent
)

// EdgeCheck is a compiled edge constraint against an already-bound
// variable, applied either as the step's candidate source or as a
// post-candidacy filter (§4.3, §4.4).
type EdgeCheck struct {
	Other    string
	Dir      EdgeDir
	HasLabel bool
	Label    string
}

// PrecCheck is a compiled precedence constraint against an already-bound
// variable.
type PrecCheck struct {
	Other string
	Op    query.PrecOp
	// OtherIsLeft is true when Other was the clause's left operand
	// (the step variable is the right operand).
	OtherIsLeft bool
}

// GuardEdge is an edge clause whose both endpoints are already bound at
// block entry (typically a MATCH-scope variable referenced twice from
// an EXCEPT/OPTIONAL block). It is checked once, not per candidate.
type GuardEdge struct {
	Parent, Child string
	HasLabel      bool
	Label         string
}

// GuardPrec is a precedence clause whose both endpoints are already
// bound at block entry.
type GuardPrec struct {
	Left, Right string
	Op          query.PrecOp
}

// Step is one variable binding step of a compiled plan.
type Step struct {
	Var string

	// UseEdgeSource selects an edge constraint to drive candidate
	// enumeration instead of scanning every word index.
	UseEdgeSource bool
	EdgeSource    EdgeCheck

	NodeChecks []NodeCheck
	EdgeChecks []EdgeCheck
	PrecChecks []PrecCheck
}

// Block is one compiled MATCH/EXCEPT/OPTIONAL plan.
type Block struct {
	Kind       query.BlockKind
	Steps      []Step
	GuardEdges []GuardEdge
	GuardPrecs []GuardPrec
}

// Pattern is a fully compiled query: the MATCH plan plus any EXCEPT and
// OPTIONAL plans, and the ordered list of variables that appear in
// emitted bindings (anonymous `_` variables excluded, §4.4).
type Pattern struct {
	Match      *Block
	Except     []*Block
	Optional   []*Block
	OutputVars []string

	// Anonymous holds every fresh variable name generated from a `_`
	// wildcard across all blocks (identified by the parser's own
	// Block.Anonymous sets, not by name convention, since a user could
	// otherwise type an identifier matching the generated name). The
	// matcher strips these from every emitted binding.
	Anonymous map[string]bool
}

// Compile parses and compiles src into a Pattern.
func Compile(src string) (*Pattern, error) {
	prog, err := query.Parse(src)
	if err != nil {
		return nil, err
	}
	return CompileProgram(prog)
}

// ToPattern resolves a query value that is either a query string or an
// already-compiled *Pattern into a *Pattern, so embedding callers may pass
// either at the search/filter boundary and the matcher only ever sees the
// compiled form (§9 "Polymorphic query values").
func ToPattern(query any) (*Pattern, error) {
	switch q := query.(type) {
	case *Pattern:
		return q, nil
	case string:
		return Compile(q)
	default:
		return nil, fmt.Errorf("compile: unsupported query type %T, want string or *Pattern", query)
	}
}

// CompileProgram compiles an already-parsed Program.
func CompileProgram(prog *query.Program) (*Pattern, error) {
	var matchBlock *query.Block
	var exceptBlocks, optionalBlocks []*query.Block
	for _, b := range prog.Blocks {
		switch b.Kind {
		case query.BlockMatch:
			matchBlock = b
		case query.BlockExcept:
			exceptBlocks = append(exceptBlocks, b)
		case query.BlockOptional:
			optionalBlocks = append(optionalBlocks, b)
		}
	}

	outputVars, err := collectOutputVars(matchBlock)
	if err != nil {
		return nil, err
	}

	bound := map[string]bool{}
	matchPlan, err := compileBlock(matchBlock, bound, nil)
	if err != nil {
		return nil, err
	}
	for _, v := range outputVars {
		bound[v] = true
	}

	anon := map[string]bool{}
	mergeAnon(anon, matchBlock)

	pat := &Pattern{Match: matchPlan, OutputVars: outputVars}

	for _, eb := range exceptBlocks {
		mergeAnon(anon, eb)
		rewritten := rewriteNegatedEdges(eb)
		plan, err := compileBlock(rewritten, cloneSet(bound), nil)
		if err != nil {
			return nil, err
		}
		pat.Except = append(pat.Except, plan)
	}
	for _, ob := range optionalBlocks {
		mergeAnon(anon, ob)
		plan, err := compileBlock(ob, cloneSet(bound), nil)
		if err != nil {
			return nil, err
		}
		pat.Optional = append(pat.Optional, plan)
	}

	pat.Anonymous = anon
	return pat, nil
}

func mergeAnon(dst map[string]bool, b *query.Block) {
	if b == nil {
		return
	}
	for k := range b.Anonymous {
		dst[k] = true
	}
}

func cloneSet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// collectOutputVars returns the MATCH block's variables, excluding
// anonymous ones, in order of first textual appearance (§4.2).
func collectOutputVars(b *query.Block) ([]string, error) {
	if b == nil {
		return nil, &CompileError{Reason: "query has no MATCH block"}
	}
	seen := map[string]bool{}
	var out []string
	visit := func(name string) {
		if b.Anonymous[name] || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, c := range b.Clauses {
		switch c := c.(type) {
		case *query.NodeClause:
			visit(c.Var)
		case *query.EdgeClause:
			visit(c.From)
			visit(c.To)
		case *query.PrecedenceClause:
			visit(c.Left)
			visit(c.Right)
		}
	}
	return out, nil
}

// rewriteNegatedEdges rewrites a block so that any negated edge clause
// it contains becomes a positive one; the caller is expected to treat
// the result as an EXCEPT block body (§4.4). Non-edge clauses and
// positive edges pass through unchanged.
func rewriteNegatedEdges(b *query.Block) *query.Block {
	clauses := make([]query.Clause, len(b.Clauses))
	for i, c := range b.Clauses {
		if ec, ok := c.(*query.EdgeClause); ok && ec.Negated {
			positive := *ec
			positive.Negated = false
			clauses[i] = &positive
			continue
		}
		clauses[i] = c
	}
	return &query.Block{Kind: b.Kind, Clauses: clauses, Anonymous: b.Anonymous, Pos: b.Pos}
}
