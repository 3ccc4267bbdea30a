package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type OrderSQLRepo struct {
	db *gorm.DB
}

func NewOrderSQLRepo(db *gorm.DB) *OrderSQLRepo {
	return &OrderSQLRepo{
		db: db,
	}
}

func (s *OrderSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (r *OrderSQLRepo) Create(ctx context.Context, record *model.Order) (*model.Order, error) {
	return record, r.dbWithContext(ctx).Create(record).Error
}

func (r *OrderSQLRepo) FindByID(ctx context.Context, id int64) (*model.Order, error) {
	var record model.Order
	err := r.dbWithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *OrderSQLRepo) Update(ctx context.Context, record *model.Order) error {
	return r.dbWithContext(ctx).Save(record).Error
}

func (r *OrderSQLRepo) OpenOrders(ctx context.Context, symbol string) ([]*model.Order, error) {
	var records []*model.Order
	err := r.dbWithContext(ctx).
		Where("symbol = ? AND status = ?", symbol, model.OrderStatusOpen).
		Order("created_at asc, id asc").
		Find(&records).Error
	return records, err
}

func (r *OrderSQLRepo) ListByAccount(ctx context.Context, account string, filter OrderFilter) ([]*model.Order, error) {
	q := r.dbWithContext(ctx).Where("account = ?", account)
	if filter.Symbol != "" {
		q = q.Where("symbol = ?", filter.Symbol)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var records []*model.Order
	err := q.Order("created_at desc, id desc").Find(&records).Error
	return records, err
}
