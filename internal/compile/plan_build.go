package compile

import (
	"regexp"
	"sort"
	"strings"

	"github.com/corpusql/conllu/internal/model"
	"github.com/corpusql/conllu/internal/query"
)

// edgeRef is an edge clause annotated with which side the variable of
// interest sits on, used while building per-variable constraint lists.
type edgeRef struct {
	clause *query.EdgeClause
	isFrom bool // true if the variable of interest is clause.From (the parent side)
}

// compileBlock builds a join plan for b. bound holds the variables
// already resolved by an outer scope (for MATCH, empty; for EXCEPT and
// OPTIONAL, the MATCH block's output variables). The third parameter is
// unused and kept only to mirror the call sites that once threaded
// extra context through; callers pass nil.
func compileBlock(b *query.Block, bound map[string]bool, _ any) (*Block, error) {
	if b == nil {
		return &Block{Kind: query.BlockMatch}, nil
	}

	nodeClauses := map[string][]query.Constraint{}
	edgesOf := map[string][]edgeRef{}
	precsOf := map[string][]*query.PrecedenceClause{}
	firstSeen := map[string]int{}
	order := 0
	seeVar := func(name string) {
		if _, ok := firstSeen[name]; !ok {
			firstSeen[name] = order
			order++
		}
	}

	var guardEdges []GuardEdge
	var guardPrecs []GuardPrec

	for _, c := range b.Clauses {
		switch c := c.(type) {
		case *query.NodeClause:
			seeVar(c.Var)
			nodeClauses[c.Var] = append(nodeClauses[c.Var], c.Constraints...)

		case *query.EdgeClause:
			seeVar(c.From)
			seeVar(c.To)
			if bound[c.From] && bound[c.To] {
				guardEdges = append(guardEdges, GuardEdge{
					Parent: c.From, Child: c.To, HasLabel: c.HasLabel, Label: c.Label,
				})
				continue
			}
			edgesOf[c.From] = append(edgesOf[c.From], edgeRef{clause: c, isFrom: true})
			edgesOf[c.To] = append(edgesOf[c.To], edgeRef{clause: c, isFrom: false})

		case *query.PrecedenceClause:
			seeVar(c.Left)
			seeVar(c.Right)
			if bound[c.Left] && bound[c.Right] {
				guardPrecs = append(guardPrecs, GuardPrec{Left: c.Left, Right: c.Right, Op: c.Op})
				continue
			}
			precsOf[c.Left] = append(precsOf[c.Left], c)
			precsOf[c.Right] = append(precsOf[c.Right], c)
		}
	}

	var unresolved []string
	for name := range firstSeen {
		if !bound[name] {
			unresolved = append(unresolved, name)
		}
	}
	sort.Slice(unresolved, func(i, j int) bool { return firstSeen[unresolved[i]] < firstSeen[unresolved[j]] })

	boundNow := cloneSet(bound)
	var steps []Step

	for len(unresolved) > 0 {
		best := pickNextVar(unresolved, nodeClauses, edgesOf, boundNow, firstSeen)

		step := Step{Var: best}

		for _, cons := range nodeClauses[best] {
			nc, err := buildNodeCheck(cons)
			if err != nil {
				return nil, err
			}
			step.NodeChecks = append(step.NodeChecks, nc)
		}

		for _, ref := range edgesOf[best] {
			var other string
			var dir EdgeDir
			if ref.isFrom {
				other, dir = ref.clause.To, EdgeToParent // best is the parent, other is the child
			} else {
				other, dir = ref.clause.From, EdgeToChild // best is the child, other is the parent
			}
			if !boundNow[other] {
				continue
			}
			ec := EdgeCheck{Other: other, Dir: dir, HasLabel: ref.clause.HasLabel, Label: ref.clause.Label}
			if !step.UseEdgeSource {
				step.UseEdgeSource = true
				step.EdgeSource = ec
				continue
			}
			step.EdgeChecks = append(step.EdgeChecks, ec)
		}

		for _, pc := range precsOf[best] {
			var other string
			var otherIsLeft bool
			if pc.Left == best {
				other = pc.Right
				otherIsLeft = false
			} else {
				other = pc.Left
				otherIsLeft = true
			}
			if !boundNow[other] {
				continue
			}
			step.PrecChecks = append(step.PrecChecks, PrecCheck{Other: other, Op: pc.Op, OtherIsLeft: otherIsLeft})
		}

		steps = append(steps, step)
		boundNow[best] = true
		unresolved = removeVar(unresolved, best)
	}

	return &Block{Kind: b.Kind, Steps: steps, GuardEdges: guardEdges, GuardPrecs: guardPrecs}, nil
}

func removeVar(vars []string, v string) []string {
	out := vars[:0]
	for _, x := range vars {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// pickNextVar applies the greedy selectivity heuristic (§4.3): most
// selective own node constraints first, ties broken toward a variable
// reachable by an edge constraint from an already-bound variable, final
// ties broken by first textual appearance for determinism.
func pickNextVar(
	unresolved []string,
	nodeClauses map[string][]query.Constraint,
	edgesOf map[string][]edgeRef,
	boundNow map[string]bool,
	firstSeen map[string]int,
) string {
	best := unresolved[0]
	bestScore := selectivityScore(nodeClauses[best])
	bestReachable := reachableFromBound(best, edgesOf, boundNow)

	for _, v := range unresolved[1:] {
		score := selectivityScore(nodeClauses[v])
		reachable := reachableFromBound(v, edgesOf, boundNow)

		better := score > bestScore ||
			(score == bestScore && reachable && !bestReachable) ||
			(score == bestScore && reachable == bestReachable && firstSeen[v] < firstSeen[best])
		if better {
			best, bestScore, bestReachable = v, score, reachable
		}
	}
	return best
}

// selectivityScore weighs an equality constraint on a labelled tag-like
// field above a looser one (regex or negation), which is itself above
// having no constraint at all.
func selectivityScore(cons []query.Constraint) int {
	score := 0
	for _, c := range cons {
		switch c.Op {
		case query.OpEq:
			score += 2
		default:
			score++
		}
	}
	return score
}

func reachableFromBound(v string, edgesOf map[string][]edgeRef, boundNow map[string]bool) bool {
	for _, ref := range edgesOf[v] {
		other := ref.clause.From
		if ref.isFrom {
			other = ref.clause.To
		}
		if boundNow[other] {
			return true
		}
	}
	return false
}

// buildNodeCheck resolves field aliases, validates recognized field
// names, and pre-compiles any regex operand (§9: regex is Go RE2,
// evaluated as unanchored substring search, matching regexp.MatchString
// semantics directly).
func buildNodeCheck(c query.Constraint) (NodeCheck, error) {
	field := c.Field
	if c.Kind == query.FieldAttr {
		// Field names are case-insensitive (SPEC_FULL.md §4.2): "UPOS",
		// "upos", and "Upos" must all resolve to the same field.
		field = strings.ToLower(field)
		if alias, ok := attrAliases[field]; ok {
			field = alias
		}
		switch field {
		case attrForm, attrLemma, attrUpos, attrXpos, attrDeprel:
		default:
			return NodeCheck{}, &CompileError{Pos: c.Pos, Reason: "unknown field " + c.Field, Cause: model.ErrUnknownField}
		}
	}

	var re *regexp.Regexp
	if c.Op == query.OpMatch || c.Op == query.OpNotMatch {
		compiled, err := regexp.Compile(c.Value)
		if err != nil {
			return NodeCheck{}, &CompileError{Pos: c.Pos, Reason: "invalid regex " + c.Value + ": " + err.Error(), Cause: model.ErrInvalidRegex}
		}
		re = compiled
	}

	return NodeCheck{Kind: c.Kind, Field: field, Op: c.Op, Value: c.Value, Re: re}, nil
}
