package conllu

import "github.com/corpusql/conllu/internal/model"

// RawToken holds the ten CoNLL-U columns for one token line, unparsed
// beyond splitting on tabs. Lines whose ID contains "-" or "." (multi-word
// token ranges, empty/enhanced nodes) never become a RawToken — the
// decoder drops them before they reach the builder (§4.1).
type RawToken struct {
	ID     string
	Form   string
	Lemma  string
	Upos   string
	Xpos   string
	Feats  string
	Head   string
	Deprel string
	Deps   string
	Misc   string
}

// RawSentence is one blank-line-delimited CoNLL-U block: ordered comment
// metadata plus the token lines that survived MWT/empty-node filtering.
type RawSentence struct {
	Metadata *model.OrderedMap
	Tokens   []RawToken
	// SourceLine is the 1-based line number the block started on, used to
	// annotate quarantine diagnostics with a useful position.
	SourceLine int
}
