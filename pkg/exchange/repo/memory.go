package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

// MemoryRepo is an in-memory IRepo for tests and local runs. Reads hand
// out copies so callers see row snapshots the way a SQL fetch would.
// FailNextTransaction injects a commit failure before anything is applied,
// which is how the engine's abort-on-persistence-failure path is exercised.
type MemoryRepo struct {
	mu sync.Mutex

	orders map[int64]*model.Order
	trades []*model.Trade
	events map[string]*model.OrderEvent

	nextOrderID int64
	nextTradeID int64

	txErr       error
	txCountdown int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		orders: make(map[int64]*model.Order),
		events: make(map[string]*model.OrderEvent),
	}
}

func (m *MemoryRepo) FailNextTransaction(err error) {
	m.FailTransactionAfter(0, err)
}

// FailTransactionAfter lets n transactions through, then fails the next
// one before it applies anything.
func (m *MemoryRepo) FailTransactionAfter(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txErr = err
	m.txCountdown = n
}

func (m *MemoryRepo) Order() IOrder           { return (*memoryOrderRepo)(m) }
func (m *MemoryRepo) Trade() ITrade           { return (*memoryTradeRepo)(m) }
func (m *MemoryRepo) OrderEvent() IOrderEvent { return (*memoryEventRepo)(m) }

func (m *MemoryRepo) Transaction(ctx context.Context, fn func(IRepo) error) error {
	m.mu.Lock()
	if m.txErr != nil {
		if m.txCountdown <= 0 {
			err := m.txErr
			m.txErr = nil
			m.mu.Unlock()
			return err
		}
		m.txCountdown--
	}
	m.mu.Unlock()

	return fn(m)
}

type memoryOrderRepo MemoryRepo

func (m *memoryOrderRepo) Create(_ context.Context, record *model.Order) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record.ID == 0 {
		m.nextOrderID++
		record.ID = m.nextOrderID
	} else if record.ID > m.nextOrderID {
		m.nextOrderID = record.ID
	}
	cp := *record
	m.orders[record.ID] = &cp
	return record, nil
}

func (m *memoryOrderRepo) FindByID(_ context.Context, id int64) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *record
	return &cp, nil
}

func (m *memoryOrderRepo) Update(_ context.Context, record *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *record
	m.orders[record.ID] = &cp
	return nil
}

func (m *memoryOrderRepo) OpenOrders(_ context.Context, symbol string) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Order
	for _, record := range m.orders {
		if record.Symbol == symbol && record.Status == model.OrderStatusOpen {
			cp := *record
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memoryOrderRepo) ListByAccount(_ context.Context, account string, filter OrderFilter) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Order
	for _, record := range m.orders {
		if record.Account != account {
			continue
		}
		if filter.Symbol != "" && record.Symbol != filter.Symbol {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		cp := *record
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type memoryTradeRepo MemoryRepo

func (m *memoryTradeRepo) Create(_ context.Context, record *model.Trade) (*model.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextTradeID++
	record.ID = m.nextTradeID
	cp := *record
	m.trades = append(m.trades, &cp)
	return record, nil
}

func (m *memoryTradeRepo) ListBySymbol(_ context.Context, symbol string, limit int) ([]*model.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Trade
	for i := len(m.trades) - 1; i >= 0; i-- {
		if m.trades[i].Symbol != symbol {
			continue
		}
		cp := *m.trades[i]
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memoryTradeRepo) ListByOrder(_ context.Context, orderID int64) ([]*model.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Trade
	for i := len(m.trades) - 1; i >= 0; i-- {
		if m.trades[i].BuyOrderID != orderID && m.trades[i].SellOrderID != orderID {
			continue
		}
		cp := *m.trades[i]
		out = append(out, &cp)
	}
	return out, nil
}

type memoryEventRepo MemoryRepo

func (m *memoryEventRepo) Create(_ context.Context, record *model.OrderEvent) (*model.OrderEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[record.EventID]; ok {
		return record, nil
	}
	cp := *record
	m.events[record.EventID] = &cp
	return record, nil
}

func (m *memoryEventRepo) BulkCreate(ctx context.Context, records []*model.OrderEvent) ([]*model.OrderEvent, error) {
	for _, record := range records {
		if _, err := m.Create(ctx, record); err != nil {
			return nil, err
		}
	}
	return records, nil
}
