// Package matcher implements the backtracking join described in spec
// §4.4: given a compiled Pattern and a dependency tree, it streams every
// binding of pattern variables to word indices that satisfies the
// MATCH plan, survives every EXCEPT block, and is extended by the
// Cartesian product of every OPTIONAL block's successful extensions.
package matcher

import (
	"github.com/corpusql/conllu/internal/compile"
	"github.com/corpusql/conllu/internal/model"
)

// Matches runs pat against t and calls yield once per emitted binding,
// in the deterministic order fixed by the plan's variable order and
// ascending word index at each step (§4.4). It stops early if yield
// returns false.
func Matches(pat *compile.Pattern, t *model.Tree, yield func(model.Binding) bool) {
	stopped := false
	joinStep(pat.Match, 0, model.Binding{}, t, func(b model.Binding) bool {
		if !evalGuards(pat.Match, b, t) {
			return true
		}
		if exceptRejects(pat, b, t) {
			return true
		}
		for _, full := range expandOptionals(pat.Optional, 0, b, t) {
			if !yield(projectVisible(full, pat.Anonymous)) {
				stopped = true
				return false
			}
		}
		return !stopped
	})
}

// projectVisible drops every variable the compiler generated from a `_`
// wildcard, identified by name against the pattern's recorded anonymous
// set rather than by a naming convention (§4.4: anonymous endpoints
// never appear in output).
func projectVisible(full model.Binding, anonymous map[string]bool) model.Binding {
	out := make(model.Binding, len(full))
	for k, v := range full {
		if !anonymous[k] {
			out[k] = v
		}
	}
	return out
}

// joinStep recursively binds block.Steps[i:], calling onComplete once
// per full binding of the block's variables extending base.
func joinStep(block *compile.Block, i int, base model.Binding, t *model.Tree, onComplete func(model.Binding) bool) bool {
	if block == nil || i >= len(block.Steps) {
		return onComplete(base)
	}
	step := block.Steps[i]

	for _, cand := range candidates(step, base, t) {
		if !passesStep(step, cand, base, t) {
			continue
		}
		next := base.Clone()
		next[step.Var] = cand
		if !joinStep(block, i+1, next, t, onComplete) {
			return false
		}
	}
	return true
}

// candidates returns the ascending-index candidate set for step, using
// a bound edge constraint to narrow the search when one is available
// and falling back to every word in the tree otherwise (§4.4 step 2).
func candidates(step compile.Step, base model.Binding, t *model.Tree) []int {
	if !step.UseEdgeSource {
		out := make([]int, t.Len())
		for i := range out {
			out[i] = i
		}
		return out
	}

	otherIdx, ok := base[step.EdgeSource.Other]
	if !ok {
		return nil
	}
	switch step.EdgeSource.Dir {
	case compile.EdgeToChild:
		return append([]int(nil), t.Children(otherIdx)...)
	case compile.EdgeToParent:
		w := t.Word(otherIdx)
		if w.HeadIndex == nil {
			return nil
		}
		return []int{*w.HeadIndex}
	default:
		return nil
	}
}

// passesStep applies every node, edge, and precedence check attached
// to step against candidate cand.
func passesStep(step compile.Step, cand int, base model.Binding, t *model.Tree) bool {
	w := t.Word(cand)
	for _, nc := range step.NodeChecks {
		if !nc.Eval(w) {
			return false
		}
	}

	if step.UseEdgeSource && step.EdgeSource.HasLabel {
		if !edgeLabelMatches(step.EdgeSource, cand, base[step.EdgeSource.Other], t) {
			return false
		}
	}
	for _, ec := range step.EdgeChecks {
		otherIdx, ok := base[ec.Other]
		if !ok || !edgeHolds(ec, cand, otherIdx, t) {
			return false
		}
	}
	for _, pc := range step.PrecChecks {
		otherIdx, ok := base[pc.Other]
		if !ok || !precHolds(pc, cand, otherIdx) {
			return false
		}
	}
	return true
}

// edgeHolds reports whether the structural relation described by ec
// holds between the step's candidate word (mine) and the already-bound
// other word, including the edge label if one was specified.
func edgeHolds(ec compile.EdgeCheck, mine, other int, t *model.Tree) bool {
	var childIdx, parentIdx int
	switch ec.Dir {
	case compile.EdgeToChild:
		childIdx, parentIdx = mine, other
	case compile.EdgeToParent:
		childIdx, parentIdx = other, mine
	default:
		return false
	}
	child := t.Word(childIdx)
	if child.HeadIndex == nil || *child.HeadIndex != parentIdx {
		return false
	}
	if ec.HasLabel && child.Deprel != ec.Label {
		return false
	}
	return true
}

// edgeLabelMatches checks only the label of an edge already established
// as the step's candidate source (the structural relation is guaranteed
// by construction of the candidate set itself).
func edgeLabelMatches(ec compile.EdgeCheck, mine, other int, t *model.Tree) bool {
	childIdx := mine
	if ec.Dir == compile.EdgeToParent {
		childIdx = other
	}
	return t.Word(childIdx).Deprel == ec.Label
}

func precHolds(pc compile.PrecCheck, mine, other int) bool {
	left, right := mine, other
	if pc.OtherIsLeft {
		left, right = other, mine
	}
	return precOpHolds(pc.Op, left, right)
}
