package matcher

import "github.com/corpusql/conllu/internal/query"

// precOpHolds evaluates a word-order comparison between two word
// indices, left and right being already resolved according to which
// clause operand each one was (§4.2).
func precOpHolds(op query.PrecOp, left, right int) bool {
	switch op {
	case query.PrecBefore:
		return left < right
	case query.PrecImmediatelyBefore:
		return right == left+1
	case query.PrecAfter:
		return left > right
	case query.PrecImmediatelyAfter:
		return left == right+1
	default:
		return false
	}
}
