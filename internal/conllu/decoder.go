package conllu

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/corpusql/conllu/internal/model"
)

// defaultMaxLineBytes bounds a single scanned line; it is overridable via
// Decoder.SetMaxLineBytes for corpora with unusually long MISC columns.
const defaultMaxLineBytes = 1 << 20

// Decoder splits a byte stream into RawSentence blocks. It maintains a
// single pending-sentence buffer and emits a block on a blank line or at
// end-of-stream with content pending (§4.1).
type Decoder struct {
	scanner    *bufio.Scanner
	lineNo     int
	maxLineLen int
}

// NewDecoder wraps r for sentence-block decoding.
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), defaultMaxLineBytes)
	return &Decoder{scanner: s, maxLineLen: defaultMaxLineBytes}
}

// SetMaxLineBytes overrides the maximum line length the underlying
// scanner will accept. bufio.Scanner.Buffer treats the larger of n and
// the initial buffer's capacity as the real ceiling, so the initial
// buffer must never exceed n or a smaller override would be silently
// ignored.
func (d *Decoder) SetMaxLineBytes(n int) {
	d.maxLineLen = n
	initial := 64 * 1024
	if n < initial {
		initial = n
	}
	d.scanner.Buffer(make([]byte, 0, initial), n)
}

// Next returns the next sentence block, or io.EOF once the stream is
// exhausted. A *MalformedLineError means the sentence containing the bad
// line was discarded; the decoder has already resynchronized to the next
// blank-line boundary, so the following Next call resumes cleanly with the
// next sentence (§4.1, §7). Any other non-EOF error is an I/O failure from
// the underlying reader and aborts further decoding of this stream.
func (d *Decoder) Next() (*RawSentence, error) {
	var (
		meta       = model.NewOrderedMap()
		tokens     []RawToken
		started    = false
		sourceLine = 0
	)

	for d.scanner.Scan() {
		d.lineNo++
		line := d.scanner.Text()

		if strings.TrimSpace(line) == "" {
			if started {
				return &RawSentence{Metadata: meta, Tokens: tokens, SourceLine: sourceLine}, nil
			}
			continue // blank lines between sentences are not themselves sentences
		}

		if !started {
			started = true
			sourceLine = d.lineNo
		}

		if strings.HasPrefix(line, "#") {
			parseComment(line, meta)
			continue
		}

		tok, skip, err := parseTokenLine(line)
		if err != nil {
			badLine := d.lineNo
			d.skipToBlankLine()
			return nil, &MalformedLineError{Line: badLine, Reason: err.Error()}
		}
		if skip {
			continue // multi-word token range or empty/enhanced node
		}
		tokens = append(tokens, tok)
	}

	if err := d.scanner.Err(); err != nil {
		return nil, fmt.Errorf("conllu: read error at line %d: %w", d.lineNo, err)
	}
	if started {
		return &RawSentence{Metadata: meta, Tokens: tokens, SourceLine: sourceLine}, nil
	}
	return nil, io.EOF
}

// skipToBlankLine consumes the remainder of the current sentence block so
// that a malformed line doesn't bleed its trailing tokens into the next
// sentence decoded after it.
func (d *Decoder) skipToBlankLine() {
	for d.scanner.Scan() {
		d.lineNo++
		if strings.TrimSpace(d.scanner.Text()) == "" {
			return
		}
	}
}

// MalformedLineError reports a token line that cannot be split into the
// expected ten tab-separated columns. The decoder quarantines the whole
// sentence the line belongs to and continues with the next block (§4.1,
// §7); this error type lets the caller record what was dropped and why.
type MalformedLineError struct {
	Line   int
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed token line %d: %s", e.Line, e.Reason)
}

func (e *MalformedLineError) Unwrap() error {
	return model.ErrMalformedSentence
}

// Code reports the machine-readable classification for this error.
func (e *MalformedLineError) Code() model.ErrorCode {
	return model.ECMalformedLine
}

// parseComment parses "# key = value" into meta[key] = value, trimmed of
// surrounding whitespace. Comments that don't match that shape (including
// bare "# newdoc" / "# newpar" markers) are stored verbatim under the
// empty-string key.
func parseComment(line string, meta *model.OrderedMap) {
	body := strings.TrimPrefix(line, "#")
	if eq := strings.Index(body, "="); eq >= 0 {
		key := strings.TrimSpace(body[:eq])
		if isCommentKey(key) {
			meta.Set(key, strings.TrimSpace(body[eq+1:]))
			return
		}
	}
	meta.Set("", strings.TrimSpace(body))
}

// isCommentKey reports whether key looks like a bare identifier, so that
// e.g. "# this isn't = a key" doesn't get misparsed as key `this isn't `.
func isCommentKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if r == ' ' || r == '\t' {
			return false
		}
	}
	return true
}

// parseTokenLine splits a tab-separated token line into its ten columns.
// skip is true for multi-word token ranges ("3-4") and empty/enhanced
// nodes ("3.1"), which are recognized but never become a RawToken.
func parseTokenLine(line string) (tok RawToken, skip bool, err error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 10 {
		return RawToken{}, false, fmt.Errorf("expected 10 columns, got %d", len(fields))
	}
	id := fields[0]
	if strings.ContainsAny(id, "-.") {
		return RawToken{}, true, nil
	}
	return RawToken{
		ID:     id,
		Form:   fields[1],
		Lemma:  fields[2],
		Upos:   fields[3],
		Xpos:   fields[4],
		Feats:  fields[5],
		Head:   fields[6],
		Deprel: fields[7],
		Deps:   fields[8],
		Misc:   fields[9],
	}, false, nil
}
