package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderEventType string

const (
	EventTypeNew    OrderEventType = "new"
	EventTypeFill   OrderEventType = "fill"
	EventTypeCancel OrderEventType = "cancel"
)

// OrderEvent is one entry in the append-only order journal. Events are
// published to the feed after commit and persisted by the journal worker;
// EventID makes the consumer side idempotent.
type OrderEvent struct {
	EventID string `gorm:"primaryKey"`

	OrderID int64          `gorm:"index"`
	Account string
	Symbol  string
	Type    OrderEventType

	Qty   decimal.Decimal `gorm:"type:numeric"`
	Price decimal.Decimal `gorm:"type:numeric"`

	Timestamp time.Time
}

func (OrderEvent) TableName() string {
	return "order_events"
}

func NewOrderEvent(o Order, typ OrderEventType, qty, price decimal.Decimal, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:   uuid.New().String(),
		OrderID:   o.ID,
		Account:   o.Account,
		Symbol:    o.Symbol,
		Type:      typ,
		Qty:       qty,
		Price:     price,
		Timestamp: ts,
	}
}
