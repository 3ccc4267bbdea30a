package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

type OrderType string

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"
)

// Order is one participant's intent to trade. The intake service creates it
// in status open; only the matching engine and cancellation mutate it after.
type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	// init info
	Account string    `gorm:"index"`
	Symbol  string    `gorm:"index"`
	Side    OrderSide
	Type    OrderType
	Price   decimal.NullDecimal `gorm:"type:numeric"` // unset for market orders
	Quantity decimal.Decimal    `gorm:"type:numeric"`

	// fill state
	FilledQuantity decimal.Decimal `gorm:"type:numeric"`
	Status         OrderStatus     `gorm:"index"`

	CreatedAt time.Time `gorm:"index"` // time priority
}

func (Order) TableName() string {
	return "orders"
}

// Remaining is quantity minus filled quantity.
func (o *Order) Remaining() decimal.Decimal {
	return o.Quantity.Sub(o.FilledQuantity)
}

func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}

// Matchable reports whether the order can still participate in a fill.
func (o *Order) Matchable() bool {
	return o.IsOpen() && o.Remaining().IsPositive()
}

func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusOpen
}

// ApplyFill adds qty to the filled quantity and flips the order to filled
// once nothing remains. filled_quantity never exceeds quantity; callers cap
// qty at Remaining() before applying.
func (o *Order) ApplyFill(qty decimal.Decimal) {
	o.FilledQuantity = o.FilledQuantity.Add(qty)
	if o.FilledQuantity.GreaterThanOrEqual(o.Quantity) {
		o.Status = OrderStatusFilled
	}
}
