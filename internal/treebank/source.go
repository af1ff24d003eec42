// Package treebank implements the ordered and unordered fanout described
// in spec §4.5 and §5: a Treebank owns a list of input sources (paths or
// an in-memory string) and streams trees, or (tree, binding) pairs for a
// compiled pattern, from all of them.
package treebank

import (
	"io"
	"strings"

	"github.com/corpusql/conllu/internal/conllu"
)

// source is one input to a Treebank: either a path opened lazily with
// conllu.OpenFile (which handles gzip transparently), or an in-memory
// string wrapped as a reader. name identifies the source in diagnostics.
type source struct {
	name string
	path string
	text *string
}

func pathSource(path string) source {
	return source{name: path, path: path}
}

func stringSource(text string) source {
	return source{name: "<string>", text: &text}
}

func (s source) open() (io.ReadCloser, error) {
	if s.text != nil {
		return io.NopCloser(strings.NewReader(*s.text)), nil
	}
	return conllu.OpenFile(s.path)
}
