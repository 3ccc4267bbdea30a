package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type TradeSQLRepo struct {
	db *gorm.DB
}

func NewTradeSQLRepo(db *gorm.DB) *TradeSQLRepo {
	return &TradeSQLRepo{
		db: db,
	}
}

func (s *TradeSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (r *TradeSQLRepo) Create(ctx context.Context, record *model.Trade) (*model.Trade, error) {
	return record, r.dbWithContext(ctx).Create(record).Error
}

func (r *TradeSQLRepo) ListBySymbol(ctx context.Context, symbol string, limit int) ([]*model.Trade, error) {
	q := r.dbWithContext(ctx).Where("symbol = ?", symbol).Order("executed_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var records []*model.Trade
	err := q.Find(&records).Error
	return records, err
}

func (r *TradeSQLRepo) ListByOrder(ctx context.Context, orderID int64) ([]*model.Trade, error) {
	var records []*model.Trade
	err := r.dbWithContext(ctx).
		Where("buy_order_id = ? OR sell_order_id = ?", orderID, orderID).
		Order("executed_at desc, id desc").
		Find(&records).Error
	return records, err
}
