package treebank

import (
	"context"
	"fmt"
	"iter"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/corpusql/conllu/internal/config"
	"github.com/corpusql/conllu/internal/conllu"
	"github.com/corpusql/conllu/internal/model"
)

// Treebank is a corpus: one or more sources, read either sequentially in
// list order or concurrently by a bounded worker pool (§4.5, §5).
type Treebank struct {
	sources []source
	cfg     *config.Config
	log     hclog.Logger

	lastErr error
}

// Open builds a Treebank over paths, each opened lazily (and transparently
// gunzipped) when the treebank is iterated. Glob expansion is the CLI's
// job, not the core's (§6).
func Open(paths ...string) (*Treebank, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("treebank: open requires at least one path")
	}
	srcs := make([]source, len(paths))
	for i, p := range paths {
		srcs[i] = pathSource(p)
	}
	return &Treebank{
		sources: srcs,
		cfg:     config.LoadConfig(),
		log:     hclog.Default().Named("treebank"),
	}, nil
}

// OpenString builds a single-source Treebank over an in-memory CoNLL-U
// document, for tests and small embedded corpora.
func OpenString(text string) *Treebank {
	return &Treebank{
		sources: []source{stringSource(text)},
		cfg:     config.LoadConfig(),
		log:     hclog.Default().Named("treebank"),
	}
}

// Err returns the diagnostics from the most recent iteration started by
// Trees, Search, or Filter, or nil if none occurred. In ordered mode every
// source-open failure, read failure, and quarantined sentence is
// accumulated. In unordered mode only the first error returned by a worker
// is kept (a source-open or read failure, or the cancellation error left
// by an early stop); quarantined sentences there are only logged.
func (tb *Treebank) Err() error {
	return tb.lastErr
}

// Trees iterates every well-formed tree across all sources. In ordered
// mode sources are read in list order and, within a source, sentences in
// source order. In unordered mode a bounded pool of workers decodes
// sources concurrently; the interleaving across sources is unspecified
// but each tree is produced exactly once (§4.5).
func (tb *Treebank) Trees(ordered bool) iter.Seq[*model.Tree] {
	if ordered {
		return tb.treesOrdered
	}
	return tb.treesUnordered
}

func (tb *Treebank) treesOrdered(yield func(*model.Tree) bool) {
	tb.lastErr = nil
	for _, src := range tb.sources {
		if !tb.streamOrdered(src, yield) {
			return
		}
	}
}

// streamOrdered decodes one source and forwards its trees to yield. It
// returns false only when yield asked to stop; a source-local I/O or
// decode failure is logged and accumulated, and iteration moves on to the
// next source, per §7's "aborts the stream for that file, other files
// continue".
func (tb *Treebank) streamOrdered(src source, yield func(*model.Tree) bool) bool {
	r, err := src.open()
	if err != nil {
		tb.log.Warn("cannot open source", "source", src.name, "error", err)
		tb.lastErr = multierror.Append(tb.lastErr, fmt.Errorf("%s: %w", src.name, err))
		return true
	}
	defer r.Close()

	cont := true
	for tree := range conllu.Trees(r, src.name, tb.cfg.MaxLineBytes, tb.recordDiagnostic) {
		if !yield(tree) {
			cont = false
			break
		}
	}
	return cont
}

func (tb *Treebank) recordDiagnostic(d conllu.Diagnostic) {
	if d.Fatal {
		tb.log.Warn("source read failed", "source", d.Source, "line", d.Line, "code", d.Code, "error", d.Err)
	} else {
		tb.log.Debug("quarantined sentence", "source", d.Source, "line", d.Line, "code", d.Code, "error", d.Err)
	}
	tb.lastErr = multierror.Append(tb.lastErr, fmt.Errorf("%s:%d: %w", d.Source, d.Line, d.Err))
}

// treesUnordered runs one goroutine per source, bounded by cfg.Workers,
// feeding decoded trees into a channel of depth cfg.QueueDepth (§5
// backpressure). The first worker error cancels the rest via errgroup's
// shared context (§7 "surfaces the first error... and cancels outstanding
// workers"); a quarantined sentence does not. Workers are launched from a
// separate goroutine, so the consumer drains results while g.Go waits for
// a free slot.
func (tb *Treebank) treesUnordered(yield func(*model.Tree) bool) {
	tb.lastErr = nil
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan *model.Tree, tb.cfg.QueueDepth)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tb.cfg.Workers)

	go func() {
		for _, src := range tb.sources {
			g.Go(func() error {
				return tb.decodeInto(gctx, src, results)
			})
		}
		if err := g.Wait(); err != nil {
			tb.lastErr = multierror.Append(tb.lastErr, err)
		}
		close(results)
	}()

	for tree := range results {
		if !yield(tree) {
			cancel()
			for range results {
				// drain until every worker has returned and results is closed
			}
			return
		}
	}
}

// decodeInto decodes one source's trees onto out, respecting ctx
// cancellation on every send. A fatal (I/O) diagnostic is returned as an
// error, which cancels sibling workers through the errgroup; quarantined
// sentences are only logged.
func (tb *Treebank) decodeInto(ctx context.Context, src source, out chan<- *model.Tree) error {
	r, err := src.open()
	if err != nil {
		return fmt.Errorf("%s: %w", src.name, err)
	}
	defer r.Close()

	var fatalErr error
	for tree := range conllu.Trees(r, src.name, tb.cfg.MaxLineBytes, func(d conllu.Diagnostic) {
		if d.Fatal {
			fatalErr = fmt.Errorf("%s:%d: %w", d.Source, d.Line, d.Err)
			tb.log.Warn("source read failed", "source", d.Source, "line", d.Line, "code", d.Code, "error", d.Err)
			return
		}
		tb.log.Debug("quarantined sentence", "source", d.Source, "line", d.Line, "code", d.Code, "error", d.Err)
	}) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- tree:
		}
	}
	return fatalErr
}
