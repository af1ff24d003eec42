// Command conllu is the CLI front end for the query engine: it owns the
// ambient concerns the core package never touches — shell glob
// expansion, .env defaults, and process exit codes (§6).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/corpusql/conllu/internal/compile"
	"github.com/corpusql/conllu/internal/model"
	"github.com/corpusql/conllu/internal/scanner"
	"github.com/corpusql/conllu/internal/treebank"
)

var ordered bool

func main() {
	// Best effort: a missing .env is not an error, it just means the
	// CONLLU_WORKERS/CONLLU_QUEUE_DEPTH/CONLLU_MAX_LINE_BYTES tunables
	// fall back to their built-in defaults.
	_ = godotenv.Load()

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "conllu:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "conllu",
		Short:         "Query CoNLL-U dependency treebanks with a pattern DSL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&ordered, "ordered", true,
		"read sources in list order instead of a parallel worker pool")
	root.AddCommand(newTreesCmd(), newSearchCmd(), newCompileCmd())
	return root
}

func newTreesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trees PATH...",
		Short: "List every sentence tree found under the given paths or globs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tb, err := openTreebank(cmd.Context(), args)
			if err != nil {
				return err
			}
			for tree := range tb.Trees(ordered) {
				text, _ := tree.SentenceText()
				fmt.Printf("%s\t%d words\t%s\n", tree.ID(), tree.Len(), text)
			}
			return tb.Err()
		},
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY PATH...",
		Short: "Stream every binding of QUERY against the given paths or globs",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pat, err := compile.Compile(args[0])
			if err != nil {
				return fmt.Errorf("compiling query: %w", err)
			}
			tb, err := openTreebank(cmd.Context(), args[1:])
			if err != nil {
				return err
			}
			seq, err := tb.Search(pat, ordered)
			if err != nil {
				return err
			}
			for tree, binding := range seq {
				printBinding(tree, binding, pat.OutputVars)
			}
			return tb.Err()
		},
	}
}

func newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile QUERY",
		Short: "Compile QUERY and report its declared variables, or the parse/semantic error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pat, err := compile.Compile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("ok, variables: %v\n", pat.OutputVars)
			return nil
		},
	}
}

// openTreebank expands targets (literal paths, directories, or doublestar
// globs) into corpus files and opens a Treebank over them. Glob
// expansion stays here rather than in the core per §6.
func openTreebank(ctx context.Context, targets []string) (*treebank.Treebank, error) {
	paths, err := scanner.New(scanner.Config{}).Resolve(ctx, targets)
	if err != nil {
		return nil, fmt.Errorf("resolving paths: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no corpus files matched %v", targets)
	}
	return treebank.Open(paths...)
}

func printBinding(tree *model.Tree, b model.Binding, vars []string) {
	fmt.Printf("%s:", tree.ID())
	for _, v := range vars {
		idx, ok := b[v]
		if !ok {
			continue
		}
		fmt.Printf(" %s=%s(%d)", v, tree.Word(idx).Form, idx)
	}
	fmt.Println()
}
