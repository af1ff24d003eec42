package matcher

import (
	"github.com/corpusql/conllu/internal/compile"
	"github.com/corpusql/conllu/internal/model"
)

// exceptRejects reports whether any EXCEPT block has at least one
// successful extension of b, which rejects the whole MATCH binding
// (§4.4 step 3). Negated edge clauses were already rewritten to
// positive ones by the compiler, so this is a plain existence check.
func exceptRejects(pat *compile.Pattern, b model.Binding, t *model.Tree) bool {
	for _, eb := range pat.Except {
		if !evalGuards(eb, b, t) {
			continue
		}
		found := false
		joinStep(eb, 0, b.Clone(), t, func(model.Binding) bool {
			found = true
			return false // one extension is enough to reject
		})
		if found {
			return true
		}
	}
	return false
}
