package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/exchange/book"
	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/joripage/exchange-core/pkg/exchange/repo"
)

func seedBook(t *testing.T, orders []*model.Order) *book.Manager {
	t.Helper()
	mem := repo.NewMemoryRepo()
	base := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	for i, o := range orders {
		o.Symbol = "BTC-USDT"
		o.Status = model.OrderStatusOpen
		o.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if _, err := mem.Order().Create(context.Background(), o); err != nil {
			t.Fatalf("seed order: %v", err)
		}
	}
	return book.NewManager(func(ctx context.Context, symbol string) ([]*model.Order, error) {
		return mem.Order().OpenOrders(ctx, symbol)
	})
}

func limit(account string, side model.OrderSide, price string, qty int64) *model.Order {
	return &model.Order{
		Account:  account,
		Side:     side,
		Type:     model.OrderTypeLimit,
		Price:    decimal.NullDecimal{Decimal: decimal.RequireFromString(price), Valid: true},
		Quantity: decimal.NewFromInt(qty),
	}
}

func TestDepthAggregation(t *testing.T) {
	books := seedBook(t, []*model.Order{
		limit("alice", model.OrderSideBuy, "100", 2),
		limit("bob", model.OrderSideBuy, "100", 3),
		limit("carol", model.OrderSideBuy, "99", 1),
		limit("dave", model.OrderSideSell, "101", 4),
		limit("erin", model.OrderSideSell, "102", 5),
	})
	md := NewMarketData(books, nil)

	depth, err := md.Depth(context.Background(), "BTC-USDT", 10)
	if err != nil {
		t.Fatalf("Depth: %v", err)
	}

	if len(depth.Bids) != 2 {
		t.Fatalf("expected 2 bid levels, got %+v", depth.Bids)
	}
	if !depth.Bids[0].Price.Equal(decimal.NewFromInt(100)) || !depth.Bids[0].Quantity.Equal(decimal.NewFromInt(5)) {
		t.Errorf("best bid level should be 5@100, got %+v", depth.Bids[0])
	}
	if !depth.Bids[1].Price.Equal(decimal.NewFromInt(99)) {
		t.Errorf("bids must descend, got %+v", depth.Bids)
	}

	if len(depth.Asks) != 2 {
		t.Fatalf("expected 2 ask levels, got %+v", depth.Asks)
	}
	if !depth.Asks[0].Price.Equal(decimal.NewFromInt(101)) {
		t.Errorf("asks must ascend, got %+v", depth.Asks)
	}

	if !depth.Spread.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected spread 1, got %s", depth.Spread)
	}
}

func TestDepthLimit(t *testing.T) {
	books := seedBook(t, []*model.Order{
		limit("alice", model.OrderSideBuy, "100", 1),
		limit("bob", model.OrderSideBuy, "99", 1),
		limit("carol", model.OrderSideBuy, "98", 1),
	})
	md := NewMarketData(books, nil)

	depth, err := md.Depth(context.Background(), "BTC-USDT", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(depth.Bids) != 2 {
		t.Fatalf("expected depth capped at 2, got %d", len(depth.Bids))
	}
	if len(depth.Asks) != 0 {
		t.Fatalf("expected no asks, got %+v", depth.Asks)
	}
	if !depth.Spread.IsZero() {
		t.Errorf("one-sided book has no spread, got %s", depth.Spread)
	}
}

func TestTicker(t *testing.T) {
	books := seedBook(t, []*model.Order{
		limit("alice", model.OrderSideBuy, "100", 1),
		limit("bob", model.OrderSideSell, "104", 1),
	})
	md := NewMarketData(books, nil)

	tk, err := md.Ticker(context.Background(), "BTC-USDT")
	if err != nil {
		t.Fatalf("Ticker: %v", err)
	}
	if tk.Bid == nil || !tk.Bid.Equal(decimal.NewFromInt(100)) {
		t.Errorf("bad bid: %v", tk.Bid)
	}
	if tk.Ask == nil || !tk.Ask.Equal(decimal.NewFromInt(104)) {
		t.Errorf("bad ask: %v", tk.Ask)
	}
	if tk.LastPrice == nil || !tk.LastPrice.Equal(decimal.NewFromInt(102)) {
		t.Errorf("expected mid 102, got %v", tk.LastPrice)
	}
}

func TestTickerOneSided(t *testing.T) {
	books := seedBook(t, []*model.Order{
		limit("alice", model.OrderSideSell, "104", 1),
	})
	md := NewMarketData(books, nil)

	tk, err := md.Ticker(context.Background(), "BTC-USDT")
	if err != nil {
		t.Fatal(err)
	}
	if tk.Bid != nil {
		t.Errorf("expected nil bid, got %v", tk.Bid)
	}
	if tk.LastPrice == nil || !tk.LastPrice.Equal(decimal.NewFromInt(104)) {
		t.Errorf("last price should fall back to ask, got %v", tk.LastPrice)
	}
}

func TestTickerEmptyBook(t *testing.T) {
	books := seedBook(t, nil)
	md := NewMarketData(books, nil)

	tk, err := md.Ticker(context.Background(), "BTC-USDT")
	if err != nil {
		t.Fatal(err)
	}
	if tk.Bid != nil || tk.Ask != nil || tk.LastPrice != nil {
		t.Errorf("empty book ticker should be all nil: %+v", tk)
	}
}
