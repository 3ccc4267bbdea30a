package risk

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

func order(mutate func(*model.Order)) *model.Order {
	o := &model.Order{
		Account:  "alice",
		Symbol:   "BTC-USDT",
		Side:     model.OrderSideBuy,
		Type:     model.OrderTypeLimit,
		Price:    decimal.NullDecimal{Decimal: decimal.NewFromInt(100), Valid: true},
		Quantity: decimal.NewFromInt(1),
	}
	if mutate != nil {
		mutate(o)
	}
	return o
}

func TestValidateNew(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.Order)
		wantErr error
	}{
		{"valid limit", nil, nil},
		{"valid market", func(o *model.Order) {
			o.Type = model.OrderTypeMarket
			o.Price = decimal.NullDecimal{}
		}, nil},
		{"missing symbol", func(o *model.Order) { o.Symbol = "" }, ErrMissingSymbol},
		{"bad side", func(o *model.Order) { o.Side = "short" }, ErrUnknownSide},
		{"bad type", func(o *model.Order) { o.Type = "stop" }, ErrUnknownType},
		{"zero quantity", func(o *model.Order) { o.Quantity = decimal.Zero }, ErrNonPositiveQuantity},
		{"negative quantity", func(o *model.Order) { o.Quantity = decimal.NewFromInt(-1) }, ErrNonPositiveQuantity},
		{"limit without price", func(o *model.Order) { o.Price = decimal.NullDecimal{} }, ErrNonPositivePrice},
		{"limit with zero price", func(o *model.Order) {
			o.Price = decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}
		}, ErrNonPositivePrice},
		{"market with price", func(o *model.Order) { o.Type = model.OrderTypeMarket }, ErrPriceOnMarketOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNew(order(tt.mutate))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPriceBandRule(t *testing.T) {
	rule := NewPriceBandRule(map[string]PriceBand{
		"BTC-USDT": {Floor: decimal.NewFromInt(50), Ceil: decimal.NewFromInt(150)},
	})

	if err := rule.Check(order(nil)); err != nil {
		t.Errorf("in-band price rejected: %v", err)
	}
	if err := rule.Check(order(func(o *model.Order) {
		o.Price.Decimal = decimal.NewFromInt(151)
	})); err == nil {
		t.Error("price above ceiling accepted")
	}
	if err := rule.Check(order(func(o *model.Order) {
		o.Price.Decimal = decimal.NewFromInt(49)
	})); err == nil {
		t.Error("price below floor accepted")
	}
	if err := rule.Check(order(func(o *model.Order) { o.Symbol = "ETH-USDT" })); err != nil {
		t.Errorf("symbol without band rejected: %v", err)
	}
	if err := rule.Check(order(func(o *model.Order) {
		o.Type = model.OrderTypeMarket
		o.Price = decimal.NullDecimal{}
	})); err != nil {
		t.Errorf("unpriced order rejected: %v", err)
	}
}

func TestTickSizeRuleFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticksize.json")
	cfg := `{"BTC-USDT": [{"maxPrice": "1000", "step": "0.5"}, {"maxPrice": "0", "step": "1"}]}`
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	rule, err := NewTickSizeRuleFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cases := []struct {
		price string
		ok    bool
	}{
		{"100.5", true},
		{"100.25", false}, // off the 0.5 grid below 1000
		{"2000", true},
		{"2000.5", false}, // above 1000 the step is 1
	}
	for _, c := range cases {
		err := rule.Check(order(func(o *model.Order) {
			o.Price.Decimal = decimal.RequireFromString(c.price)
		}))
		if (err == nil) != c.ok {
			t.Errorf("price %s: got err=%v, want ok=%v", c.price, err, c.ok)
		}
	}

	if err := rule.Check(order(func(o *model.Order) { o.Symbol = "ETH-USDT" })); err != nil {
		t.Errorf("unconfigured symbol rejected: %v", err)
	}
}

func TestTickSizeRuleBadFile(t *testing.T) {
	if _, err := NewTickSizeRuleFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewTickSizeRuleFromFile(path); err == nil {
		t.Error("expected error for malformed file")
	}
}
