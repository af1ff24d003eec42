package treebank

import (
	"iter"

	"github.com/corpusql/conllu/internal/compile"
	"github.com/corpusql/conllu/internal/matcher"
	"github.com/corpusql/conllu/internal/model"
)

// Search runs query (a query string or an already-compiled *compile.Pattern,
// §9 "Polymorphic query values") against every tree in the treebank and
// streams each (tree, binding) pair. The tree iteration order follows
// Trees; within a tree, bindings follow the matcher's own order (§4.4).
func (tb *Treebank) Search(query any, ordered bool) (iter.Seq2[*model.Tree, model.Binding], error) {
	pat, err := compile.ToPattern(query)
	if err != nil {
		return nil, err
	}
	return func(yield func(*model.Tree, model.Binding) bool) {
		stopped := false
		for tree := range tb.Trees(ordered) {
			matcher.Matches(pat, tree, func(b model.Binding) bool {
				if !yield(tree, b) {
					stopped = true
					return false
				}
				return true
			})
			if stopped {
				return
			}
		}
	}, nil
}

// Filter streams every tree that has at least one binding for query,
// yielding each such tree exactly once even when it has many bindings
// (§9 "Dedup of filter vs. search").
func (tb *Treebank) Filter(query any, ordered bool) (iter.Seq[*model.Tree], error) {
	pat, err := compile.ToPattern(query)
	if err != nil {
		return nil, err
	}
	return func(yield func(*model.Tree) bool) {
		for tree := range tb.Trees(ordered) {
			emitted := false
			matcher.Matches(pat, tree, func(model.Binding) bool {
				emitted = true
				return false
			})
			if emitted && !yield(tree) {
				return
			}
		}
	}, nil
}
