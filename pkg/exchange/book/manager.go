package book

import (
	"context"
	"fmt"
	"sync"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

// Loader supplies the open, priced orders of a symbol in time order, used
// to seed a book on first access. The ledger is the source of truth; a
// freshly seeded book reflects whatever the ledger held at that point.
type Loader func(ctx context.Context, symbol string) ([]*model.Order, error)

// Manager holds one Book per symbol, created and seeded lazily.
type Manager struct {
	books  sync.Map
	loader Loader
	mu     sync.Mutex
}

func NewManager(loader Loader) *Manager {
	return &Manager{loader: loader}
}

// Get returns the book for a symbol, seeding it from the loader on first
// access. Seeding is serialized so two callers cannot build rival books
// for one symbol.
func (m *Manager) Get(ctx context.Context, symbol string) (*Book, error) {
	if val, ok := m.books.Load(symbol); ok {
		return val.(*Book), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if val, ok := m.books.Load(symbol); ok {
		return val.(*Book), nil
	}

	b := NewBook(symbol)
	if m.loader != nil {
		orders, err := m.loader(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("seed book %s: %w", symbol, err)
		}
		for _, o := range orders {
			b.Add(o)
		}
	}

	m.books.Store(symbol, b)
	return b, nil
}
