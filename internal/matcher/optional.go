package matcher

import (
	"github.com/corpusql/conllu/internal/compile"
	"github.com/corpusql/conllu/internal/model"
)

// expandOptionals combines every OPTIONAL block's successful extensions
// of base via Cartesian product (§4.4 step 4, test scenario 6). Each
// block is joined on top of the binding built so far, but its plan was
// compiled against the MATCH scope only, so its candidates and checks
// never depend on another OPTIONAL block's variables.
func expandOptionals(blocks []*compile.Block, idx int, base model.Binding, t *model.Tree) []model.Binding {
	if idx >= len(blocks) {
		return []model.Binding{base}
	}

	var out []model.Binding
	for _, ext := range optionalExtensions(blocks[idx], base, t) {
		merged := base.Clone()
		for k, v := range ext {
			merged[k] = v
		}
		out = append(out, expandOptionals(blocks, idx+1, merged, t)...)
	}
	return out
}

// optionalExtensions runs one OPTIONAL block's inner join against base
// and returns each extended binding (base plus the block's own
// variables). A single empty binding is returned when the block has zero
// successful extensions, so that merging it back into base is a no-op
// (§4.4 step 4, scenario 5).
func optionalExtensions(block *compile.Block, base model.Binding, t *model.Tree) []model.Binding {
	if !evalGuards(block, base, t) {
		return []model.Binding{{}}
	}

	var exts []model.Binding
	joinStep(block, 0, base.Clone(), t, func(b model.Binding) bool {
		exts = append(exts, b)
		return true
	})
	if len(exts) == 0 {
		return []model.Binding{{}}
	}
	return exts
}
