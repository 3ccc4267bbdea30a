package repo

import (
	"context"
	"errors"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

var ErrNotFound = errors.New("record not found")

// OrderFilter narrows history queries. Zero values mean no constraint.
type OrderFilter struct {
	Symbol string
	Status model.OrderStatus
}

type IOrder interface {
	Create(ctx context.Context, record *model.Order) (*model.Order, error)
	FindByID(ctx context.Context, id int64) (*model.Order, error)
	Update(ctx context.Context, record *model.Order) error

	// OpenOrders returns a symbol's open orders in creation order,
	// oldest first. Used to seed the in-memory book.
	OpenOrders(ctx context.Context, symbol string) ([]*model.Order, error)

	// ListByAccount returns a participant's orders, newest first.
	ListByAccount(ctx context.Context, account string, filter OrderFilter) ([]*model.Order, error)
}

type ITrade interface {
	Create(ctx context.Context, record *model.Trade) (*model.Trade, error)
	ListBySymbol(ctx context.Context, symbol string, limit int) ([]*model.Trade, error)
	ListByOrder(ctx context.Context, orderID int64) ([]*model.Trade, error)
}

type IOrderEvent interface {
	Create(ctx context.Context, record *model.OrderEvent) (*model.OrderEvent, error)
	BulkCreate(ctx context.Context, records []*model.OrderEvent) ([]*model.OrderEvent, error)
}

type IRepo interface {
	Order() IOrder
	Trade() ITrade
	OrderEvent() IOrderEvent

	// Transaction runs fn against a transactional view of the repo;
	// everything fn writes commits or rolls back as one unit.
	Transaction(ctx context.Context, fn func(IRepo) error) error
}
