package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/exchange-core/pkg/exchange/book"
	"github.com/joripage/exchange-core/pkg/exchange/feed"
	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/joripage/exchange-core/pkg/exchange/repo"
)

// Engine matches one admitted order at a time against the resting book of
// its symbol. Matching is serialized per symbol: one mutex per symbol, held
// for the whole pass, so no counter-order can be over-filled by two
// concurrent takers. Every fill commits as one transaction (trade insert +
// both order updates); a failed commit aborts the rest of the pass but the
// fills already committed stand.
type Engine struct {
	repo      repo.IRepo
	books     *book.Manager
	publisher feed.Publisher
	log       *zap.SugaredLogger

	symbolLocks sync.Map
}

func NewEngine(r repo.IRepo, books *book.Manager, publisher feed.Publisher) *Engine {
	if publisher == nil {
		publisher = feed.NopPublisher{}
	}
	return &Engine{
		repo:      r,
		books:     books,
		publisher: publisher,
		log:       zap.S(),
	}
}

// PlaceAndMatch runs one matching pass for an order already persisted as
// open. A terminal or fully filled taker is a no-op, not an error. The
// unfilled remainder of a limit taker rests on the book; a market taker's
// remainder stays open in the ledger but never rests (it cannot provide a
// maker price).
func (e *Engine) PlaceAndMatch(ctx context.Context, order *model.Order) (*MatchOutcome, error) {
	b, err := e.books.Get(ctx, order.Symbol)
	if err != nil {
		return nil, err
	}

	mu := e.symbolLock(order.Symbol)
	mu.Lock()
	defer mu.Unlock()

	// refresh from the ledger; admission happened outside this lock
	taker, err := e.repo.Order().FindByID(ctx, order.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, errors.Join(ErrPersistence, err)
	}

	outcome := &MatchOutcome{Kind: OutcomeNoOp}
	if !taker.Matchable() {
		return outcome, nil
	}

	counterIDs := b.EligibleCounterparties(taker)
	for _, counterID := range counterIDs {
		maker, err := e.repo.Order().FindByID(ctx, counterID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				b.Remove(counterID)
				continue
			}
			e.finish(b, taker)
			return outcome, errors.Join(ErrPersistence, err)
		}

		// freshness re-check: book state can lag the ledger
		if !maker.Matchable() {
			b.Remove(counterID)
			continue
		}
		if maker.Account == taker.Account {
			continue
		}

		fillQty := decimal.Min(taker.Remaining(), maker.Remaining())
		if !fillQty.IsPositive() {
			continue
		}

		// the maker's quoted price governs; an unpriced maker is a
		// degenerate state we can only price from the taker
		var tradePrice decimal.Decimal
		switch {
		case maker.Price.Valid:
			tradePrice = maker.Price.Decimal
		case taker.Price.Valid:
			tradePrice = taker.Price.Decimal
		default:
			continue
		}

		trade := &model.Trade{
			Symbol:     taker.Symbol,
			Price:      tradePrice,
			Quantity:   fillQty,
			ExecutedAt: time.Now(),
		}
		if taker.Side == model.OrderSideBuy {
			trade.BuyOrderID, trade.SellOrderID = taker.ID, maker.ID
		} else {
			trade.BuyOrderID, trade.SellOrderID = maker.ID, taker.ID
		}

		takerNext, makerNext := *taker, *maker
		takerNext.ApplyFill(fillQty)
		makerNext.ApplyFill(fillQty)

		err = e.repo.Transaction(ctx, func(tx repo.IRepo) error {
			if _, err := tx.Trade().Create(ctx, trade); err != nil {
				return err
			}
			if err := tx.Order().Update(ctx, &takerNext); err != nil {
				return err
			}
			return tx.Order().Update(ctx, &makerNext)
		})
		if err != nil {
			e.log.Errorw("fill commit failed",
				"symbol", taker.Symbol, "taker", taker.ID, "maker", maker.ID, "err", err)
			e.finish(b, taker)
			return outcome, errors.Join(ErrPersistence, err)
		}

		*taker, *maker = takerNext, makerNext
		b.Fill(maker.ID, fillQty)
		e.log.Debugw("fill committed",
			"symbol", taker.Symbol, "taker", taker.ID, "maker", maker.ID,
			"price", tradePrice, "qty", fillQty)

		outcome.Kind = OutcomeMatched
		outcome.Trades = append(outcome.Trades, trade)
		e.publishFill(ctx, trade, taker, maker)

		if !taker.Remaining().IsPositive() {
			break
		}
	}

	e.finish(b, taker)
	return outcome, nil
}

// Cancel marks an open order cancelled and takes it off the book. Only the
// owning participant may cancel, and only while the order is still open.
func (e *Engine) Cancel(ctx context.Context, orderID int64, account string) error {
	ord, err := e.repo.Order().FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrOrderNotFound
		}
		return errors.Join(ErrPersistence, err)
	}
	if ord.Account != account {
		return ErrNotOwner
	}

	b, err := e.books.Get(ctx, ord.Symbol)
	if err != nil {
		return err
	}

	mu := e.symbolLock(ord.Symbol)
	mu.Lock()
	defer mu.Unlock()

	// state may have moved while we were unlocked
	ord, err = e.repo.Order().FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrOrderNotFound
		}
		return errors.Join(ErrPersistence, err)
	}
	if !ord.CanCancel() {
		return ErrInvalidOrderStatus
	}

	ord.Status = model.OrderStatusCancelled
	if err := e.repo.Order().Update(ctx, ord); err != nil {
		return errors.Join(ErrPersistence, err)
	}
	b.Remove(ord.ID)

	ev := model.NewOrderEvent(*ord, model.EventTypeCancel, ord.Remaining(), decimal.Decimal{}, time.Now())
	if err := e.publisher.PublishOrderEvent(ctx, ev); err != nil {
		e.log.Warnw("publish cancel event failed", "order", ord.ID, "err", err)
	}
	return nil
}

// finish rests an order's unfilled remainder on the book when it can still
// act as a maker, and clears any stale entry once it cannot. Unpriced
// orders never rest.
func (e *Engine) finish(b *book.Book, taker *model.Order) {
	b.Sync(taker)
}

func (e *Engine) publishFill(ctx context.Context, trade *model.Trade, taker, maker *model.Order) {
	if err := e.publisher.PublishTrade(ctx, trade); err != nil {
		e.log.Warnw("publish trade failed", "trade", trade.ID, "err", err)
	}
	now := time.Now()
	for _, o := range []*model.Order{taker, maker} {
		ev := model.NewOrderEvent(*o, model.EventTypeFill, trade.Quantity, trade.Price, now)
		if err := e.publisher.PublishOrderEvent(ctx, ev); err != nil {
			e.log.Warnw("publish fill event failed", "order", o.ID, "err", err)
		}
	}
}

func (e *Engine) symbolLock(symbol string) *sync.Mutex {
	if mu, ok := e.symbolLocks.Load(symbol); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := e.symbolLocks.LoadOrStore(symbol, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
