package repo

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	exchangeDB *gorm.DB
}

func NewRepo(exchangeDB *gorm.DB) IRepo {
	return &Repo{
		exchangeDB: exchangeDB,
	}
}

func (r *Repo) Order() IOrder {
	return NewOrderSQLRepo(r.exchangeDB)
}

func (r *Repo) Trade() ITrade {
	return NewTradeSQLRepo(r.exchangeDB)
}

func (r *Repo) OrderEvent() IOrderEvent {
	return NewOrderEventSQLRepo(r.exchangeDB)
}

func (r *Repo) Transaction(ctx context.Context, fn func(IRepo) error) error {
	return r.exchangeDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepo(tx))
	})
}
