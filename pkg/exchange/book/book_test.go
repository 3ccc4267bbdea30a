package book

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

var baseTime = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

func limitOrder(id int64, account string, side model.OrderSide, price string, qty int64, seq int) *model.Order {
	p, err := decimal.NewFromString(price)
	if err != nil {
		panic(err)
	}
	return &model.Order{
		ID:       id,
		Account:  account,
		Symbol:   "BTC-USDT",
		Side:     side,
		Type:     model.OrderTypeLimit,
		Price:    decimal.NullDecimal{Decimal: p, Valid: true},
		Quantity: decimal.NewFromInt(qty),
		Status:   model.OrderStatusOpen,
		CreatedAt: baseTime.Add(time.Duration(seq) * time.Second),
	}
}

func marketOrder(id int64, account string, side model.OrderSide, qty int64, seq int) *model.Order {
	return &model.Order{
		ID:        id,
		Account:   account,
		Symbol:    "BTC-USDT",
		Side:      side,
		Type:      model.OrderTypeMarket,
		Quantity:  decimal.NewFromInt(qty),
		Status:    model.OrderStatusOpen,
		CreatedAt: baseTime.Add(time.Duration(seq) * time.Second),
	}
}

func TestEligibleAsksPriceTimeOrder(t *testing.T) {
	b := NewBook("BTC-USDT")
	b.Add(limitOrder(1, "alice", model.OrderSideSell, "101", 5, 1))
	b.Add(limitOrder(2, "bob", model.OrderSideSell, "99", 5, 2))
	b.Add(limitOrder(3, "carol", model.OrderSideSell, "99", 5, 3))
	b.Add(limitOrder(4, "dave", model.OrderSideSell, "100", 5, 4))

	taker := limitOrder(10, "erin", model.OrderSideBuy, "101", 20, 5)
	ids := b.EligibleCounterparties(taker)

	want := []int64{2, 3, 4, 1}
	if len(ids) != len(want) {
		t.Fatalf("expected %d counterparties, got %d: %v", len(want), len(ids), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("position %d: want order %d, got %d", i, want[i], ids[i])
		}
	}
}

func TestEligibleBidsDescending(t *testing.T) {
	b := NewBook("BTC-USDT")
	b.Add(limitOrder(1, "alice", model.OrderSideBuy, "50", 5, 1))
	b.Add(limitOrder(2, "bob", model.OrderSideBuy, "52", 5, 2))
	b.Add(limitOrder(3, "carol", model.OrderSideBuy, "51", 5, 3))

	taker := limitOrder(10, "erin", model.OrderSideSell, "50", 20, 4)
	ids := b.EligibleCounterparties(taker)

	want := []int64{2, 3, 1}
	if len(ids) != len(want) {
		t.Fatalf("expected %d counterparties, got %d: %v", len(want), len(ids), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("position %d: want order %d, got %d", i, want[i], ids[i])
		}
	}
}

func TestEligibleStopsAtNonCrossingLevel(t *testing.T) {
	b := NewBook("BTC-USDT")
	b.Add(limitOrder(1, "alice", model.OrderSideSell, "99", 5, 1))
	b.Add(limitOrder(2, "bob", model.OrderSideSell, "105", 5, 2))

	taker := limitOrder(10, "erin", model.OrderSideBuy, "100", 20, 3)
	ids := b.EligibleCounterparties(taker)

	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected only order 1, got %v", ids)
	}
}

func TestEligibleMarketTakerSweepsAllLevels(t *testing.T) {
	b := NewBook("BTC-USDT")
	b.Add(limitOrder(1, "alice", model.OrderSideSell, "99", 5, 1))
	b.Add(limitOrder(2, "bob", model.OrderSideSell, "105", 5, 2))

	taker := marketOrder(10, "erin", model.OrderSideBuy, 20, 3)
	ids := b.EligibleCounterparties(taker)

	if len(ids) != 2 {
		t.Fatalf("expected 2 counterparties, got %v", ids)
	}
}

func TestEligibleExcludesSameAccountAndSelf(t *testing.T) {
	b := NewBook("BTC-USDT")
	b.Add(limitOrder(1, "alice", model.OrderSideSell, "99", 5, 1))
	b.Add(limitOrder(2, "bob", model.OrderSideSell, "99", 5, 2))

	taker := limitOrder(10, "alice", model.OrderSideBuy, "100", 20, 3)
	ids := b.EligibleCounterparties(taker)

	if len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("expected only bob's order, got %v", ids)
	}
}

func TestMarketOrderNeverRests(t *testing.T) {
	b := NewBook("BTC-USDT")
	b.Add(marketOrder(1, "alice", model.OrderSideSell, 5, 1))

	taker := marketOrder(10, "bob", model.OrderSideBuy, 5, 2)
	if ids := b.EligibleCounterparties(taker); len(ids) != 0 {
		t.Fatalf("unpriced order must not rest, got %v", ids)
	}
	if _, ok := b.BestAsk(); ok {
		t.Fatal("expected no ask level")
	}
}

func TestFillRemovesExhaustedOrder(t *testing.T) {
	b := NewBook("BTC-USDT")
	b.Add(limitOrder(1, "alice", model.OrderSideSell, "99", 5, 1))

	b.Fill(1, decimal.NewFromInt(3))
	taker := marketOrder(10, "bob", model.OrderSideBuy, 5, 2)
	if ids := b.EligibleCounterparties(taker); len(ids) != 1 {
		t.Fatalf("partially filled order should stay, got %v", ids)
	}

	b.Fill(1, decimal.NewFromInt(2))
	if ids := b.EligibleCounterparties(taker); len(ids) != 0 {
		t.Fatalf("exhausted order should be gone, got %v", ids)
	}
	if _, ok := b.BestAsk(); ok {
		t.Fatal("expected ask level to be retired")
	}
}

func TestRemove(t *testing.T) {
	b := NewBook("BTC-USDT")
	b.Add(limitOrder(1, "alice", model.OrderSideBuy, "50", 5, 1))

	if !b.Remove(1) {
		t.Fatal("expected remove success")
	}
	if b.Remove(1) {
		t.Fatal("expected second remove to report missing")
	}
	if _, ok := b.BestBid(); ok {
		t.Fatal("expected bid level to be retired")
	}
}

func TestEquivalentDecimalPricesShareLevel(t *testing.T) {
	b := NewBook("BTC-USDT")

	o1 := limitOrder(1, "alice", model.OrderSideSell, "100", 2, 1)
	o2 := limitOrder(2, "bob", model.OrderSideSell, "100.0", 3, 2)
	b.Add(o1)
	b.Add(o2)

	levels := b.Levels(model.OrderSideSell, 0)
	if len(levels) != 1 {
		t.Fatalf("expected one level, got %d: %+v", len(levels), levels)
	}
	if !levels[0].Quantity.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected aggregated qty 5, got %s", levels[0].Quantity)
	}
}

func TestLevelsAggregation(t *testing.T) {
	b := NewBook("BTC-USDT")
	b.Add(limitOrder(1, "alice", model.OrderSideBuy, "50", 4, 1))
	b.Add(limitOrder(2, "bob", model.OrderSideBuy, "50", 6, 2))
	b.Add(limitOrder(3, "carol", model.OrderSideBuy, "49", 1, 3))

	levels := b.Levels(model.OrderSideBuy, 0)
	if len(levels) != 2 {
		t.Fatalf("expected 2 levels, got %+v", levels)
	}
	if !levels[0].Price.Equal(decimal.NewFromInt(50)) || !levels[0].Quantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("best level wrong: %+v", levels[0])
	}
	if !levels[1].Price.Equal(decimal.NewFromInt(49)) {
		t.Errorf("second level wrong: %+v", levels[1])
	}
}

func TestSyncRefreshesRemaining(t *testing.T) {
	b := NewBook("BTC-USDT")
	o := limitOrder(1, "alice", model.OrderSideSell, "99", 5, 1)
	b.Add(o)

	o.ApplyFill(decimal.NewFromInt(5))
	b.Sync(o)

	taker := marketOrder(10, "bob", model.OrderSideBuy, 5, 2)
	if ids := b.EligibleCounterparties(taker); len(ids) != 0 {
		t.Fatalf("filled order should be dropped on sync, got %v", ids)
	}
}
