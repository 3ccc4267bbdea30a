package worker

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/joripage/exchange-core/pkg/exchange/repo"
	kafkawrapper "github.com/joripage/exchange-core/pkg/kafka_wrapper"
)

// Worker persists the order-event journal from the feed topic. Inserts are
// keyed by event id with conflict-ignore, so redelivery is harmless.
type Worker struct {
	orderEvent repo.IOrderEvent
}

func NewWorker(r repo.IRepo) *Worker {
	return &Worker{
		orderEvent: r.OrderEvent(),
	}
}

func (w *Worker) StartConsumer(ctx context.Context, consumer *kafkawrapper.Consumer) error {
	return consumer.Run(ctx, func(ctx context.Context, msg kafkawrapper.Message) error {
		var ev model.OrderEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			zap.S().Warnw("drop malformed order event", "offset", msg.Offset, "err", err)
			return nil
		}
		return w.handleEvent(ctx, ev)
	})
}

func (w *Worker) handleEvent(ctx context.Context, ev model.OrderEvent) error {
	_, err := w.orderEvent.Create(ctx, &ev)
	return err
}
