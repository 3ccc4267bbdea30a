package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/exchange-core/pkg/exchange/engine"
	"github.com/joripage/exchange-core/pkg/exchange/feed"
	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/joripage/exchange-core/pkg/exchange/repo"
	"github.com/joripage/exchange-core/pkg/exchange/risk"
)

// Service is the order intake surface: it validates, admits, and hands
// admitted orders to the matching engine. Admission and matching are two
// separate steps; a matching failure after admission leaves the order open
// and is reported to the caller alongside the admitted order instead of
// being swallowed.
type Service struct {
	repo      repo.IRepo
	engine    *engine.Engine
	publisher feed.Publisher
	rules     []risk.Rule
	log       *zap.SugaredLogger
}

func NewService(r repo.IRepo, e *engine.Engine, publisher feed.Publisher, rules ...risk.Rule) *Service {
	if publisher == nil {
		publisher = feed.NopPublisher{}
	}
	return &Service{
		repo:      r,
		engine:    e,
		publisher: publisher,
		rules:     rules,
		log:       zap.S(),
	}
}

type PlaceOrderInput struct {
	Account  string
	Symbol   string
	Side     model.OrderSide
	Type     model.OrderType
	Price    *decimal.Decimal // nil for market orders
	Quantity decimal.Decimal
}

// PlaceOrder admits a new order and runs one matching pass. The returned
// order reflects post-match fill state. Trades are returned even when the
// pass later failed: committed fills stand.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, []*model.Trade, error) {
	order := &model.Order{
		Account:        in.Account,
		Symbol:         in.Symbol,
		Side:           in.Side,
		Type:           in.Type,
		Quantity:       in.Quantity,
		FilledQuantity: decimal.Zero,
		Status:         model.OrderStatusOpen,
		CreatedAt:      time.Now(),
	}
	if in.Price != nil {
		order.Price = decimal.NullDecimal{Decimal: *in.Price, Valid: true}
	}

	if err := risk.ValidateNew(order); err != nil {
		return nil, nil, fmt.Errorf("reject order: %w", err)
	}
	for _, rule := range s.rules {
		if err := rule.Check(order); err != nil {
			return nil, nil, fmt.Errorf("reject order: %w", err)
		}
	}

	if _, err := s.repo.Order().Create(ctx, order); err != nil {
		return nil, nil, fmt.Errorf("admit order: %w", err)
	}

	var price decimal.Decimal
	if order.Price.Valid {
		price = order.Price.Decimal
	}
	ev := model.NewOrderEvent(*order, model.EventTypeNew, order.Quantity, price, order.CreatedAt)
	if err := s.publisher.PublishOrderEvent(ctx, ev); err != nil {
		s.log.Warnw("publish new-order event failed", "order", order.ID, "err", err)
	}

	outcome, matchErr := s.engine.PlaceAndMatch(ctx, order)
	if matchErr != nil {
		s.log.Errorw("matching failed after admission",
			"order", order.ID, "symbol", order.Symbol, "err", matchErr)
	}

	// re-read so the caller sees post-match fill state
	placed, err := s.repo.Order().FindByID(ctx, order.ID)
	if err != nil {
		placed = order
	}

	var trades []*model.Trade
	if outcome != nil {
		trades = outcome.Trades
	}
	return placed, trades, matchErr
}

// CancelOrder cancels an open order on behalf of its owner.
func (s *Service) CancelOrder(ctx context.Context, orderID int64, account string) error {
	return s.engine.Cancel(ctx, orderID, account)
}

// GetOrder fetches one order, enforcing ownership.
func (s *Service) GetOrder(ctx context.Context, orderID int64, account string) (*model.Order, error) {
	ord, err := s.repo.Order().FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, engine.ErrOrderNotFound
		}
		return nil, err
	}
	if ord.Account != account {
		return nil, engine.ErrNotOwner
	}
	return ord, nil
}

// ListOrders returns a participant's order history, newest first.
func (s *Service) ListOrders(ctx context.Context, account string, filter repo.OrderFilter) ([]*model.Order, error) {
	return s.repo.Order().ListByAccount(ctx, account, filter)
}

// ListTrades returns a symbol's recent trades, newest first.
func (s *Service) ListTrades(ctx context.Context, symbol string, limit int) ([]*model.Trade, error) {
	return s.repo.Trade().ListBySymbol(ctx, symbol, limit)
}

// OrderTrades returns the executions an order participated in.
func (s *Service) OrderTrades(ctx context.Context, orderID int64, account string) ([]*model.Trade, error) {
	if _, err := s.GetOrder(ctx, orderID, account); err != nil {
		return nil, err
	}
	return s.repo.Trade().ListByOrder(ctx, orderID)
}
