package conllu

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/corpusql/conllu/internal/model"
)

// Build converts a RawSentence into an indexed, validated model.Tree.
// Token-id-out-of-range heads, self-heads, and missing/duplicate roots are
// rejected here (structural errors, §4.1); the caller is expected to
// quarantine the sentence on error and continue with the next one (§7).
func Build(raw *RawSentence) (*model.Tree, error) {
	words := make([]model.Word, len(raw.Tokens))
	for i, tok := range raw.Tokens {
		tokenID, err := strconv.Atoi(tok.ID)
		if err != nil {
			return nil, fmt.Errorf("token %d: invalid id %q: %w", i, tok.ID, err)
		}
		if tokenID != i+1 {
			return nil, fmt.Errorf("token %d: id %d is not dense (expected %d)", i, tokenID, i+1)
		}

		head, err := strconv.Atoi(tok.Head)
		if err != nil {
			return nil, fmt.Errorf("token %d: invalid head %q: %w", i, tok.Head, err)
		}
		var headIndex *int
		if head != 0 {
			h := head - 1
			headIndex = &h
		}

		words[i] = model.Word{
			Index:     i,
			TokenID:   tokenID,
			Form:      norm.NFC.String(tok.Form),
			Lemma:     norm.NFC.String(tok.Lemma),
			UPOS:      tok.Upos,
			XPOS:      nullable(tok.Xpos),
			Deprel:    tok.Deprel,
			HeadIndex: headIndex,
			Feats:     parseKV(tok.Feats),
			Misc:      parseKV(tok.Misc),
		}
	}
	return model.NewTree(words, raw.Metadata)
}

// nullable maps the CoNLL-U absence marker "_" to a nil pointer.
func nullable(field string) *string {
	if field == "_" {
		return nil
	}
	v := field
	return &v
}

// parseKV parses a FEATS/MISC column: "_" is empty, otherwise
// "|"-separated "name=value" pairs. A duplicate name overwrites the
// earlier value but keeps its original position (OrderedMap.Set).
func parseKV(field string) *model.OrderedMap {
	m := model.NewOrderedMap()
	if field == "_" || field == "" {
		return m
	}
	for _, pair := range strings.Split(field, "|") {
		if pair == "" {
			continue
		}
		if eq := strings.IndexByte(pair, '='); eq >= 0 {
			m.Set(pair[:eq], pair[eq+1:])
		} else {
			m.Set(pair, "")
		}
	}
	return m
}
