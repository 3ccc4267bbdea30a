package risk

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type tickSizeConfig struct {
	MaxPrice decimal.Decimal `json:"maxPrice"` // zero = no limit
	Step     decimal.Decimal `json:"step"`
}

// TickSizeRule validates that limit prices sit on the tick grid configured
// for their symbol. Symbols without config have no rule.
type TickSizeRule struct {
	Config map[string][]tickSizeConfig
}

func NewTickSizeRuleFromFile(path string) (*TickSizeRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg map[string][]tickSizeConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &TickSizeRule{Config: cfg}, nil
}

func (r *TickSizeRule) Check(order *model.Order) error {
	rules, ok := r.Config[order.Symbol]
	if !ok || !order.Price.Valid {
		return nil
	}

	price := order.Price.Decimal
	for _, rule := range rules {
		if rule.MaxPrice.IsZero() || price.LessThanOrEqual(rule.MaxPrice) {
			if !price.Mod(rule.Step).IsZero() {
				return fmt.Errorf("price %s off tick grid (step %s)", price, rule.Step)
			}
			return nil
		}
	}

	return nil
}
