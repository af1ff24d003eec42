package conllu

import (
	"errors"
	"io"
	"iter"

	"github.com/corpusql/conllu/internal/model"
)

// Diagnostic describes one quarantined sentence or terminal I/O failure
// surfaced while decoding a stream (§7). Fatal is true only for I/O
// errors, which stop iteration; sentence-level diagnostics never do. Code
// classifies Err via model.CodeOf so callers can branch on it without
// string matching.
type Diagnostic struct {
	Source string
	Line   int
	Err    error
	Fatal  bool
	Code   model.ErrorCode
}

// Trees decodes r (attributed to source for diagnostics) into a sequence
// of validated trees. Malformed sentences and structurally invalid
// sentences are quarantined — reported via onError and skipped — rather
// than aborting the stream; only a read error from r is fatal (§4.1, §7).
// maxLineBytes overrides the decoder's line-length limit when positive
// (config.Config.MaxLineBytes, §5); zero keeps the decoder's built-in
// default. onError may be nil.
func Trees(r io.Reader, source string, maxLineBytes int, onError func(Diagnostic)) iter.Seq[*model.Tree] {
	return func(yield func(*model.Tree) bool) {
		dec := NewDecoder(r)
		if maxLineBytes > 0 {
			dec.SetMaxLineBytes(maxLineBytes)
		}
		for {
			raw, err := dec.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			var malformed *MalformedLineError
			if errors.As(err, &malformed) {
				report(onError, Diagnostic{Source: source, Line: malformed.Line, Err: malformed, Fatal: false, Code: malformed.Code()})
				continue
			}
			if err != nil {
				report(onError, Diagnostic{Source: source, Line: dec.lineNo, Err: err, Fatal: true, Code: model.CodeOf(err, true)})
				return
			}

			tree, err := Build(raw)
			if err != nil {
				report(onError, Diagnostic{Source: source, Line: raw.SourceLine, Err: err, Fatal: false, Code: model.CodeOf(err, false)})
				continue
			}

			if !yield(tree) {
				return
			}
		}
	}
}

func report(onError func(Diagnostic), d Diagnostic) {
	if onError != nil {
		onError(d)
	}
}
