package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an immutable execution pairing one buy and one sell order.
// Rows are append-only; nothing in the system updates or deletes them.
type Trade struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	BuyOrderID  int64 `gorm:"index"`
	SellOrderID int64 `gorm:"index"`

	Symbol   string          `gorm:"index"`
	Price    decimal.Decimal `gorm:"type:numeric"`
	Quantity decimal.Decimal `gorm:"type:numeric"`

	ExecutedAt time.Time `gorm:"index"`
}

func (Trade) TableName() string {
	return "trades"
}
