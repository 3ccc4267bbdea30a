package book

import (
	"container/heap"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

// entry is the book's view of one resting order. remaining mirrors the
// ledger row; the engine keeps it in sync after every committed fill.
type entry struct {
	orderID   int64
	account   string
	side      model.OrderSide
	price     decimal.Decimal
	remaining decimal.Decimal
	createdAt time.Time
	dead      bool
}

// Book indexes the open, priced orders of one symbol for best-price
// retrieval: one FIFO queue per price level plus a heap of level prices
// per side. The ledger stays the source of truth; the book is the view
// the engine consults for eligibility ordering.
type Book struct {
	symbol string

	bidLevels map[string]*deque.Deque[*entry]
	askLevels map[string]*deque.Deque[*entry]
	bidLive   map[string]int
	askLive   map[string]int

	bidHeap *PriceHeap
	askHeap *PriceHeap

	ordersByID map[int64]*entry

	mu sync.Mutex
}

func NewBook(symbol string) *Book {
	bidHeap := NewPriceHeap(func(i, j decimal.Decimal) bool { return i.GreaterThan(j) }) // max-heap
	askHeap := NewPriceHeap(func(i, j decimal.Decimal) bool { return i.LessThan(j) })    // min-heap

	return &Book{
		symbol:     symbol,
		bidLevels:  make(map[string]*deque.Deque[*entry]),
		askLevels:  make(map[string]*deque.Deque[*entry]),
		bidLive:    make(map[string]int),
		askLive:    make(map[string]int),
		bidHeap:    bidHeap,
		askHeap:    askHeap,
		ordersByID: make(map[int64]*entry),
	}
}

func (b *Book) Symbol() string {
	return b.symbol
}

// Add rests an order on its side of the book. Unpriced (market) orders are
// never added: they cannot provide a maker price so they are not matchable
// once resting.
func (b *Book) Add(o *model.Order) {
	if !o.Price.Valid || !o.Matchable() {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.ordersByID[o.ID]; ok {
		return
	}

	e := &entry{
		orderID:   o.ID,
		account:   o.Account,
		side:      o.Side,
		price:     o.Price.Decimal,
		remaining: o.Remaining(),
		createdAt: o.CreatedAt,
	}

	levels, live, h := b.side(o.Side)
	key := priceKey(e.price)
	if levels[key] == nil {
		levels[key] = &deque.Deque[*entry]{}
		heap.Push(h, e.price)
	}
	levels[key].PushBack(e)
	live[key]++
	b.ordersByID[o.ID] = e
}

// Sync reconciles the book's entry for an order with its ledger state:
// inserts a resting order, refreshes remaining quantity, or drops the entry
// once the order is no longer matchable.
func (b *Book) Sync(o *model.Order) {
	b.mu.Lock()
	e, ok := b.ordersByID[o.ID]
	if ok {
		if o.Matchable() {
			e.remaining = o.Remaining()
			b.mu.Unlock()
			return
		}
		b.kill(e)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	b.Add(o)
}

// Remove drops an order from the book, e.g. on cancellation.
func (b *Book) Remove(orderID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.ordersByID[orderID]
	if !ok {
		return false
	}
	b.kill(e)
	return true
}

// Fill reduces an order's remaining quantity after a committed fill and
// drops it once nothing remains.
func (b *Book) Fill(orderID int64, qty decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.ordersByID[orderID]
	if !ok {
		return
	}
	e.remaining = e.remaining.Sub(qty)
	if !e.remaining.IsPositive() {
		b.kill(e)
	}
}

// EligibleCounterparties returns the ids of resting orders the taker may
// cross, in price-time priority: best price level first, FIFO within a
// level. Same-account orders and the taker itself are excluded. A priced
// taker stops at the first level that no longer crosses; a market taker
// sweeps every level.
func (b *Book) EligibleCounterparties(taker *model.Order) []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var levels map[string]*deque.Deque[*entry]
	var h *PriceHeap
	var crosses func(level decimal.Decimal) bool

	switch taker.Side {
	case model.OrderSideBuy:
		levels, _, h = b.side(model.OrderSideSell)
		crosses = func(level decimal.Decimal) bool {
			return !taker.Price.Valid || level.LessThanOrEqual(taker.Price.Decimal)
		}
	case model.OrderSideSell:
		levels, _, h = b.side(model.OrderSideBuy)
		crosses = func(level decimal.Decimal) bool {
			return !taker.Price.Valid || level.GreaterThanOrEqual(taker.Price.Decimal)
		}
	default:
		return nil
	}

	var ids []int64
	for _, price := range h.Sorted() {
		if !crosses(price) {
			break // levels are best-first, nothing further can cross
		}
		q := levels[priceKey(price)]
		if q == nil {
			continue
		}
		for i := 0; i < q.Len(); i++ {
			e := q.At(i)
			if e.dead || !e.remaining.IsPositive() {
				continue
			}
			if e.orderID == taker.ID || e.account == taker.Account {
				continue
			}
			ids = append(ids, e.orderID)
		}
	}
	return ids
}

func (b *Book) BestBid() (decimal.Decimal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bidHeap.Peek()
}

func (b *Book) BestAsk() (decimal.Decimal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.askHeap.Peek()
}

// Level is one aggregated price level of a depth snapshot.
type Level struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Levels aggregates remaining quantity per price, best-first. depth <= 0
// returns all levels.
func (b *Book) Levels(side model.OrderSide, depth int) []Level {
	b.mu.Lock()
	defer b.mu.Unlock()

	levels, _, h := b.side(side)

	var out []Level
	for _, price := range h.Sorted() {
		if depth > 0 && len(out) >= depth {
			break
		}
		q := levels[priceKey(price)]
		if q == nil {
			continue
		}
		total := decimal.Zero
		for i := 0; i < q.Len(); i++ {
			e := q.At(i)
			if e.dead || !e.remaining.IsPositive() {
				continue
			}
			total = total.Add(e.remaining)
		}
		if total.IsPositive() {
			out = append(out, Level{Price: price, Quantity: total})
		}
	}
	return out
}

func (b *Book) side(s model.OrderSide) (map[string]*deque.Deque[*entry], map[string]int, *PriceHeap) {
	if s == model.OrderSideBuy {
		return b.bidLevels, b.bidLive, b.bidHeap
	}
	return b.askLevels, b.askLive, b.askHeap
}

// kill marks an entry dead and retires its price level once no live entry
// is left. Dead entries stay in the deque and are skipped on traversal;
// the whole queue is dropped with the level. Callers hold b.mu.
func (b *Book) kill(e *entry) {
	if e.dead {
		return
	}
	e.dead = true
	delete(b.ordersByID, e.orderID)

	levels, live, h := b.side(e.side)
	key := priceKey(e.price)
	live[key]--
	if live[key] <= 0 {
		delete(levels, key)
		delete(live, key)
		h.Remove(e.price)
	}
}
