package matcher

import (
	"github.com/corpusql/conllu/internal/compile"
	"github.com/corpusql/conllu/internal/model"
)

// evalGuards checks the constraints of block whose both endpoints were
// already bound by an outer scope, so they were never turned into a
// plan step (§4.3). These arise when an EXCEPT/OPTIONAL block relates
// two MATCH-scope variables directly.
func evalGuards(block *compile.Block, b model.Binding, t *model.Tree) bool {
	if block == nil {
		return true
	}
	for _, g := range block.GuardEdges {
		parent, ok1 := b[g.Parent]
		child, ok2 := b[g.Child]
		if !ok1 || !ok2 {
			return false
		}
		w := t.Word(child)
		if w.HeadIndex == nil || *w.HeadIndex != parent {
			return false
		}
		if g.HasLabel && w.Deprel != g.Label {
			return false
		}
	}
	for _, g := range block.GuardPrecs {
		left, ok1 := b[g.Left]
		right, ok2 := b[g.Right]
		if !ok1 || !ok2 {
			return false
		}
		if !precOpHolds(g.Op, left, right) {
			return false
		}
	}
	return true
}
