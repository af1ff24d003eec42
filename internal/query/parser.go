package query

import (
	"fmt"

	"github.com/corpusql/conllu/internal/model"
)

// ParseError reports a syntax error at a specific source position (§7
// Query parse error).
type ParseError struct {
	Pos    Position
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Reason)
}

// Code reports the machine-readable classification for this error.
func (e *ParseError) Code() model.ErrorCode {
	return model.ECQuerySyntax
}

// Parser consumes the full token stream from a Lexer and builds a
// Program. All tokens are read up front so the parser can look ahead
// freely when disambiguating node, edge, and precedence clauses, which
// all start with an identifier.
type Parser struct {
	toks []Token
	pos  int
}

// Parse lexes and parses src into a Program.
func Parse(src string) (*Program, error) {
	lx := NewLexer(src)
	var toks []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	p := &Parser{toks: toks}
	return p.parseProgram()
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) peekAt(off int) Token {
	i := p.pos + off
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[i]
}

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k TokenKind, what string) (Token, error) {
	if p.cur().Kind != k {
		return Token{}, p.errorf("expected %s", what)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Pos: Position{Line: p.cur().Line, Col: p.cur().Col}, Reason: fmt.Sprintf(format, args...)}
}

// parseProgram recognizes either a sequence of MATCH/EXCEPT/OPTIONAL
// blocks, or (for backward compatibility, §9) a bare sequence of
// clauses with no block keywords at all, which is treated as a single
// implicit MATCH block.
func (p *Parser) parseProgram() (*Program, error) {
	if p.cur().Kind == TokEOF {
		return nil, p.errorf("empty query")
	}

	if p.cur().Kind == TokKeyword {
		var blocks []*Block
		for p.cur().Kind != TokEOF {
			b, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, b)
		}
		if err := requireOneMatch(blocks); err != nil {
			return nil, err
		}
		return &Program{Blocks: blocks}, nil
	}

	b := &Block{Kind: BlockMatch, Anonymous: map[string]bool{}, Pos: Position{Line: p.cur().Line, Col: p.cur().Col}}
	for p.cur().Kind != TokEOF {
		c, err := p.parseClause(b)
		if err != nil {
			return nil, err
		}
		b.Clauses = append(b.Clauses, c)
	}
	return &Program{Blocks: []*Block{b}}, nil
}

func requireOneMatch(blocks []*Block) error {
	n := 0
	for _, b := range blocks {
		if b.Kind == BlockMatch {
			n++
		}
	}
	if n != 1 {
		return &ParseError{Reason: fmt.Sprintf("query must have exactly one MATCH block, found %d", n)}
	}
	return nil
}

func (p *Parser) parseBlock() (*Block, error) {
	kw := p.advance()
	var kind BlockKind
	switch kw.Text {
	case "MATCH":
		kind = BlockMatch
	case "EXCEPT":
		kind = BlockExcept
	case "OPTIONAL":
		kind = BlockOptional
	default:
		return nil, &ParseError{Pos: Position{kw.Line, kw.Col}, Reason: "expected MATCH, EXCEPT, or OPTIONAL"}
	}

	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}

	b := &Block{Kind: kind, Anonymous: map[string]bool{}, Pos: Position{Line: kw.Line, Col: kw.Col}}
	for p.cur().Kind != TokRBrace {
		if p.cur().Kind == TokEOF {
			return nil, p.errorf("unterminated %s block: expected '}'", kind)
		}
		c, err := p.parseClause(b)
		if err != nil {
			return nil, err
		}
		b.Clauses = append(b.Clauses, c)
	}
	p.advance() // '}'
	return b, nil
}

// parseClause reads one node, edge, or precedence clause terminated by
// ';'. All three forms begin with a variable reference (an identifier
// or the anonymous wildcard '_'), disambiguated by what follows it.
func (p *Parser) parseClause(b *Block) (Clause, error) {
	name, err := p.parseVarRef(b)
	if err != nil {
		return nil, err
	}
	pos := Position{Line: p.cur().Line, Col: p.cur().Col}

	switch p.cur().Kind {
	case TokLBrack:
		cons, err := p.parseConstraintList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokSemi, "';'"); err != nil {
			return nil, err
		}
		return &NodeClause{Var: name, Constraints: cons, Pos: pos}, nil

	case TokSemi:
		p.advance()
		return &NodeClause{Var: name, Pos: pos}, nil

	case TokDash, TokNotArrow:
		negated := p.cur().Kind == TokNotArrow
		p.advance()
		label := ""
		hasLabel := false
		if p.cur().Kind == TokLBrack {
			p.advance()
			lbl, err := p.expect(TokIdent, "edge label")
			if err != nil {
				return nil, err
			}
			label = lbl.Text
			hasLabel = true
			if _, err := p.expect(TokRBrack, "']'"); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(TokArrow, "'->'"); err != nil {
			return nil, err
		}
		to, err := p.parseVarRef(b)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokSemi, "';'"); err != nil {
			return nil, err
		}
		return &EdgeClause{From: name, To: to, Label: label, HasLabel: hasLabel, Negated: negated, Pos: pos}, nil

	case TokPrecLL, TokPrecL, TokPrecGG, TokPrecG:
		var op PrecOp
		switch p.cur().Kind {
		case TokPrecLL:
			op = PrecBefore
		case TokPrecL:
			op = PrecImmediatelyBefore
		case TokPrecGG:
			op = PrecAfter
		case TokPrecG:
			op = PrecImmediatelyAfter
		}
		p.advance()
		to, err := p.parseVarRef(b)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokSemi, "';'"); err != nil {
			return nil, err
		}
		return &PrecedenceClause{Left: name, Right: to, Op: op, Pos: pos}, nil

	default:
		return nil, p.errorf("expected '[', ';', an edge arrow, or a precedence operator")
	}
}

// parseVarRef consumes an identifier or the anonymous wildcard '_'. Each
// '_' introduces a fresh variable scoped to the block, never surfaced in
// emitted bindings (§4.4).
func (p *Parser) parseVarRef(b *Block) (string, error) {
	switch p.cur().Kind {
	case TokIdent:
		return p.advance().Text, nil
	case TokUnderscore:
		p.advance()
		name := fmt.Sprintf("_anon%d", len(b.Anonymous))
		b.Anonymous[name] = true
		return name, nil
	default:
		return "", p.errorf("expected a variable name or '_'")
	}
}

func (p *Parser) parseConstraintList() ([]Constraint, error) {
	if _, err := p.expect(TokLBrack, "'['"); err != nil {
		return nil, err
	}
	if p.cur().Kind == TokRBrack {
		p.advance()
		return nil, nil
	}
	var cons []Constraint
	for {
		c, err := p.parseConstraint()
		if err != nil {
			return nil, err
		}
		cons = append(cons, c)
		if p.cur().Kind == TokAmp {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokRBrack, "']'"); err != nil {
		return nil, err
	}
	return cons, nil
}

// parseConstraint reads one `field op "value"` or `feats.Key op "value"`
// atom (§4.2, §9 design note on dotted feats/misc access).
func (p *Parser) parseConstraint() (Constraint, error) {
	pos := Position{Line: p.cur().Line, Col: p.cur().Col}
	fieldTok, err := p.expect(TokIdent, "field name")
	if err != nil {
		return Constraint{}, err
	}

	kind := FieldAttr
	field := fieldTok.Text
	switch field {
	case "feats":
		kind = FieldFeats
	case "misc":
		kind = FieldMisc
	}
	if kind != FieldAttr {
		if _, err := p.expect(TokDot, "'.'"); err != nil {
			return Constraint{}, err
		}
		key, err := p.expect(TokIdent, "feats/misc key")
		if err != nil {
			return Constraint{}, err
		}
		field = key.Text
	}

	var op ConstraintOp
	switch p.cur().Kind {
	case TokEq:
		op = OpEq
	case TokNeq:
		op = OpNeq
	case TokTilde:
		op = OpMatch
	case TokNotTilde:
		op = OpNotMatch
	default:
		return Constraint{}, p.errorf("expected '=', '!=', '~', or '!~'")
	}
	p.advance()

	val, err := p.expect(TokString, "string literal")
	if err != nil {
		return Constraint{}, err
	}

	return Constraint{Kind: kind, Field: field, Op: op, Value: val.Text, Pos: pos}, nil
}
