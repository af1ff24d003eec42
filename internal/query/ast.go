package query

// BlockKind distinguishes MATCH, EXCEPT, and OPTIONAL blocks (§4.2).
type BlockKind int

const (
	BlockMatch BlockKind = iota
	BlockExcept
	BlockOptional
)

func (k BlockKind) String() string {
	switch k {
	case BlockMatch:
		return "MATCH"
	case BlockExcept:
		return "EXCEPT"
	case BlockOptional:
		return "OPTIONAL"
	default:
		return "?"
	}
}

// Program is the parsed form of a query: a mandatory MATCH block plus any
// number of EXCEPT and OPTIONAL blocks. A bare sequence of clauses (no
// surrounding MATCH { ... }) is normalized into a single MATCH block by
// the parser (§9 design note, backwards compatibility).
type Program struct {
	Blocks []*Block
}

// Block is one MATCH/EXCEPT/OPTIONAL body: a set of clauses plus the set
// of variable names that were introduced anonymously within it (via `_`)
// and so must never appear in emitted bindings (§4.4).
type Block struct {
	Kind      BlockKind
	Clauses   []Clause
	Anonymous map[string]bool
	Pos       Position
}

// Clause is one node, edge, or precedence clause.
type Clause interface {
	clause()
}

// ConstraintOp is the comparison operator of an atomic node constraint.
type ConstraintOp int

const (
	OpEq ConstraintOp = iota
	OpNeq
	OpMatch
	OpNotMatch
)

// FieldKind distinguishes a plain word attribute from a feats./misc. map
// lookup (§4.2, §9 design note on dynamic attribute access).
type FieldKind int

const (
	FieldAttr FieldKind = iota
	FieldFeats
	FieldMisc
)

// Constraint is one atomic predicate inside a node clause's bracket list,
// e.g. `upos = "VERB"` or `feats.Number = "Sing"`.
type Constraint struct {
	Kind  FieldKind
	Field string // attribute name, or the feats/misc key for FieldFeats/FieldMisc
	Op    ConstraintOp
	Value string
	Pos   Position
}

// NodeClause declares a variable and, optionally, the constraints it must
// satisfy: `Name [ c1 & c2 & ... ];`.
type NodeClause struct {
	Var         string
	Constraints []Constraint
	Pos         Position
}

func (*NodeClause) clause() {}

// EdgeClause asserts (or, if Negated, denies) a dependency edge between
// two variables: `A -[label]-> B;` / `A -> B;` / `A !-[label]-> B;`.
type EdgeClause struct {
	From, To string
	Label    string
	HasLabel bool
	Negated  bool
	Pos      Position
}

func (*EdgeClause) clause() {}

// PrecOp is a word-order comparison operator (§4.2).
type PrecOp int

const (
	// PrecBefore is "<<": Left's index is strictly less than Right's.
	PrecBefore PrecOp = iota
	// PrecImmediatelyBefore is "<": Left is immediately before Right.
	PrecImmediatelyBefore
	// PrecAfter is ">>": Left's index is strictly greater than Right's.
	PrecAfter
	// PrecImmediatelyAfter is ">": Left is immediately after Right.
	PrecImmediatelyAfter
)

// PrecedenceClause compares two variables' word-order positions.
type PrecedenceClause struct {
	Left, Right string
	Op          PrecOp
	Pos         Position
}

func (*PrecedenceClause) clause() {}
