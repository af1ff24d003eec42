// Package conllu is the embedding contract described in spec §6: a thin
// façade over the internal query/compile/model/treebank packages so a Go
// program depends on a single import path rather than reaching into
// internal/.
package conllu

import (
	"iter"

	"github.com/corpusql/conllu/internal/compile"
	"github.com/corpusql/conllu/internal/matcher"
	"github.com/corpusql/conllu/internal/model"
	"github.com/corpusql/conllu/internal/treebank"
)

type (
	// Pattern is a compiled query, ready to run against any Tree.
	Pattern = compile.Pattern
	// Tree is one validated dependency parse.
	Tree = model.Tree
	// Word is one token of a Tree.
	Word = model.Word
	// WordRef navigates a Word within its owning Tree.
	WordRef = model.WordRef
	// Binding maps a Pattern's variable names to word indices in a Tree.
	Binding = model.Binding
	// Treebank is a corpus: one or more sources, iterated in order or by
	// a bounded worker pool (§4.5, §5).
	Treebank = treebank.Treebank
)

// Compile parses and compiles a query string (§4.2) into a Pattern.
func Compile(query string) (*Pattern, error) {
	return compile.Compile(query)
}

// Open builds a Treebank over literal file paths. Shell glob expansion
// is a CLI concern, not the core's (§6) — see cmd/conllu.
func Open(paths ...string) (*Treebank, error) {
	return treebank.Open(paths...)
}

// OpenString builds a single-source Treebank over an in-memory CoNLL-U
// document.
func OpenString(text string) *Treebank {
	return treebank.OpenString(text)
}

// SearchTrees runs query against an already-obtained sequence of trees,
// without opening any Treebank or touching any file — the Go counterpart
// of the original Python layer's search_trees helper for composing a
// custom tree source with the matcher.
func SearchTrees(query any, trees iter.Seq[*Tree]) (iter.Seq2[*Tree, Binding], error) {
	pat, err := compile.ToPattern(query)
	if err != nil {
		return nil, err
	}
	return func(yield func(*Tree, Binding) bool) {
		stopped := false
		for tree := range trees {
			matcher.Matches(pat, tree, func(b Binding) bool {
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
