package book

import (
	"container/heap"
	"sort"

	"github.com/shopspring/decimal"
)

// PriceHeap implements heap.Interface over decimal price levels.
type PriceHeap struct {
	prices []decimal.Decimal
	less   func(i, j decimal.Decimal) bool
	index  map[string]bool
}

func NewPriceHeap(less func(i, j decimal.Decimal) bool) *PriceHeap {
	return &PriceHeap{
		prices: []decimal.Decimal{},
		less:   less,
		index:  make(map[string]bool),
	}
}

func (h PriceHeap) Len() int {
	return len(h.prices)
}

func (h PriceHeap) Less(i, j int) bool {
	return h.less(h.prices[i], h.prices[j])
}

func (h PriceHeap) Swap(i, j int) {
	h.prices[i], h.prices[j] = h.prices[j], h.prices[i]
}

func (h *PriceHeap) Push(x any) {
	price := x.(decimal.Decimal)
	key := priceKey(price)
	if !h.index[key] {
		h.index[key] = true
		h.prices = append(h.prices, price)
	}
}

func (h *PriceHeap) Pop() any {
	n := len(h.prices)
	price := h.prices[n-1]
	h.prices = h.prices[:n-1]
	delete(h.index, priceKey(price))
	return price
}

func (h *PriceHeap) Peek() (decimal.Decimal, bool) {
	if len(h.prices) == 0 {
		return decimal.Decimal{}, false
	}
	return h.prices[0], true
}

// Remove drops a price level from the heap if present.
func (h *PriceHeap) Remove(price decimal.Decimal) {
	key := priceKey(price)
	if !h.index[key] {
		return
	}
	for i, p := range h.prices {
		if priceKey(p) == key {
			heap.Remove(h, i)
			return
		}
	}
}

// Sorted returns a copy of all price levels ordered best-first.
func (h *PriceHeap) Sorted() []decimal.Decimal {
	out := make([]decimal.Decimal, len(h.prices))
	copy(out, h.prices)
	sort.Slice(out, func(i, j int) bool { return h.less(out[i], out[j]) })
	return out
}

// priceKey is the canonical level key. StringFixed keeps numerically equal
// decimals with different exponents ("100" vs "100.0") on one level.
func priceKey(p decimal.Decimal) string {
	return p.StringFixed(8)
}
