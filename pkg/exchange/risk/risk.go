package risk

import "github.com/joripage/exchange-core/pkg/exchange/model"

// Rule is one pre-admission check. Rules run after structural validation,
// so they can assume a well-formed order.
type Rule interface {
	Check(order *model.Order) error
}
