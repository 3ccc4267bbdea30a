package engine

import "github.com/joripage/exchange-core/pkg/exchange/model"

type OutcomeKind int

const (
	// OutcomeNoOp means the pass produced no fill: nothing crossed, or the
	// taker was already terminal when matching started.
	OutcomeNoOp OutcomeKind = iota
	OutcomeMatched
)

// MatchOutcome is the tagged result of one matching pass, so callers can
// tell an empty pass from a matched one instead of inferring it from a nil
// slice. Trades are in creation order. An outcome can carry trades AND an
// error: fills committed before a persistence failure stand.
type MatchOutcome struct {
	Kind   OutcomeKind
	Trades []*model.Trade
}
