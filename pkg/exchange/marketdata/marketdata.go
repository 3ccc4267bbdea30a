package marketdata

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/exchange-core/pkg/exchange/book"
	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type DepthLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Depth is an aggregated snapshot of a symbol's book: bids best (highest)
// first, asks best (lowest) first, remaining quantity summed per level.
type Depth struct {
	Symbol string          `json:"symbol"`
	Bids   []DepthLevel    `json:"bids"`
	Asks   []DepthLevel    `json:"asks"`
	Spread decimal.Decimal `json:"spread"`
}

// Ticker carries best bid/ask and the mid price. Pointers are nil when a
// side is empty; LastPrice falls back to the surviving side.
type Ticker struct {
	Symbol    string           `json:"symbol"`
	LastPrice *decimal.Decimal `json:"last_price"`
	Bid       *decimal.Decimal `json:"bid"`
	Ask       *decimal.Decimal `json:"ask"`
}

// MarketData serves read-only snapshots over the live books. Snapshots are
// optionally cached in redis with a short TTL; queries, not a broadcast
// feed.
type MarketData struct {
	books *book.Manager
	cache *Cache
	log   *zap.SugaredLogger
}

func NewMarketData(books *book.Manager, cache *Cache) *MarketData {
	return &MarketData{
		books: books,
		cache: cache,
		log:   zap.S(),
	}
}

func (m *MarketData) Depth(ctx context.Context, symbol string, depth int) (*Depth, error) {
	if m.cache != nil {
		var cached Depth
		if ok := m.cache.Get(ctx, depthKey(symbol, depth), &cached); ok {
			return &cached, nil
		}
	}

	b, err := m.books.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}

	snapshot := &Depth{Symbol: symbol}
	for _, lvl := range b.Levels(model.OrderSideBuy, depth) {
		snapshot.Bids = append(snapshot.Bids, DepthLevel{Price: lvl.Price, Quantity: lvl.Quantity})
	}
	for _, lvl := range b.Levels(model.OrderSideSell, depth) {
		snapshot.Asks = append(snapshot.Asks, DepthLevel{Price: lvl.Price, Quantity: lvl.Quantity})
	}

	bid, hasBid := b.BestBid()
	ask, hasAsk := b.BestAsk()
	if hasBid && hasAsk {
		snapshot.Spread = ask.Sub(bid)
	}

	if m.cache != nil {
		m.cache.Set(ctx, depthKey(symbol, depth), snapshot)
	}
	return snapshot, nil
}

func (m *MarketData) Ticker(ctx context.Context, symbol string) (*Ticker, error) {
	if m.cache != nil {
		var cached Ticker
		if ok := m.cache.Get(ctx, tickerKey(symbol), &cached); ok {
			return &cached, nil
		}
	}

	b, err := m.books.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}

	t := &Ticker{Symbol: symbol}
	if bid, ok := b.BestBid(); ok {
		t.Bid = &bid
	}
	if ask, ok := b.BestAsk(); ok {
		t.Ask = &ask
	}

	switch {
	case t.Bid != nil && t.Ask != nil:
		mid := t.Bid.Add(*t.Ask).Div(decimal.NewFromInt(2))
		t.LastPrice = &mid
	case t.Bid != nil:
		t.LastPrice = t.Bid
	case t.Ask != nil:
		t.LastPrice = t.Ask
	}

	if m.cache != nil {
		m.cache.Set(ctx, tickerKey(symbol), t)
	}
	return t, nil
}
