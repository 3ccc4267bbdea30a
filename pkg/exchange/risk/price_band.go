package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type PriceBand struct {
	Floor decimal.Decimal `yaml:"floor"`
	Ceil  decimal.Decimal `yaml:"ceil"`
}

// PriceBandRule rejects limit prices outside the configured band of a
// symbol. Symbols without a band are unrestricted.
type PriceBandRule struct {
	bands map[string]PriceBand
}

func NewPriceBandRule(bands map[string]PriceBand) *PriceBandRule {
	return &PriceBandRule{bands: bands}
}

func (r *PriceBandRule) Check(order *model.Order) error {
	band, ok := r.bands[order.Symbol]
	if !ok || !order.Price.Valid {
		return nil
	}
	p := order.Price.Decimal
	if p.LessThan(band.Floor) || p.GreaterThan(band.Ceil) {
		return fmt.Errorf("price %s outside band [%s, %s] for %s",
			p, band.Floor, band.Ceil, order.Symbol)
	}
	return nil
}
