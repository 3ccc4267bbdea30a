package risk

import (
	"errors"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

var (
	ErrMissingSymbol       = errors.New("symbol is required")
	ErrUnknownSide         = errors.New("side must be buy or sell")
	ErrUnknownType         = errors.New("type must be limit or market")
	ErrNonPositiveQuantity = errors.New("quantity must be positive")
	ErrNonPositivePrice    = errors.New("price must be positive for limit orders")
	ErrPriceOnMarketOrder  = errors.New("market orders cannot carry a price")
)

// ValidateNew rejects malformed orders before admission. An order that
// fails here never reaches the ledger or the matching engine.
func ValidateNew(o *model.Order) error {
	if o.Symbol == "" {
		return ErrMissingSymbol
	}
	if o.Side != model.OrderSideBuy && o.Side != model.OrderSideSell {
		return ErrUnknownSide
	}
	if o.Type != model.OrderTypeLimit && o.Type != model.OrderTypeMarket {
		return ErrUnknownType
	}
	if !o.Quantity.IsPositive() {
		return ErrNonPositiveQuantity
	}
	switch o.Type {
	case model.OrderTypeLimit:
		if !o.Price.Valid || !o.Price.Decimal.IsPositive() {
			return ErrNonPositivePrice
		}
	case model.OrderTypeMarket:
		if o.Price.Valid {
			return ErrPriceOnMarketOrder
		}
	}
	return nil
}
