package feed

import (
	"context"
	"fmt"

	kafkawrapper "github.com/joripage/exchange-core/pkg/kafka_wrapper"
	"github.com/joripage/exchange-core/pkg/exchange/model"
)

// Publisher carries committed trades and order events downstream. Publishing
// is best-effort: the engine logs failures and keeps matching, because a
// committed fill must never be undone by a feed hiccup.
type Publisher interface {
	PublishTrade(ctx context.Context, trade *model.Trade) error
	PublishOrderEvent(ctx context.Context, ev *model.OrderEvent) error
	Close(ctx context.Context) error
}

type KafkaConfig struct {
	Brokers         []string `yaml:"brokers"`
	TradeTopic      string   `yaml:"trade_topic"`
	OrderEventTopic string   `yaml:"order_event_topic"`
	GroupID         string   `yaml:"group_id"`
}

type KafkaPublisher struct {
	producer        *kafkawrapper.Producer
	tradeTopic      string
	orderEventTopic string
}

func NewKafkaPublisher(cfg *KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		producer: kafkawrapper.NewProducer(kafkawrapper.ProducerConfig{
			Brokers: cfg.Brokers,
		}),
		tradeTopic:      cfg.TradeTopic,
		orderEventTopic: cfg.OrderEventTopic,
	}
}

// PublishTrade keys by symbol so one symbol's trades stay ordered within a
// partition.
func (p *KafkaPublisher) PublishTrade(ctx context.Context, trade *model.Trade) error {
	return p.producer.PublishJSON(ctx, p.tradeTopic, trade.Symbol, trade, nil)
}

func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, ev *model.OrderEvent) error {
	return p.producer.PublishJSON(ctx, p.orderEventTopic, fmt.Sprintf("%d", ev.OrderID), ev, nil)
}

func (p *KafkaPublisher) Close(ctx context.Context) error {
	return p.producer.Close(ctx)
}

// NopPublisher drops everything; used in tests and when no brokers are
// configured.
type NopPublisher struct{}

func (NopPublisher) PublishTrade(context.Context, *model.Trade) error           { return nil }
func (NopPublisher) PublishOrderEvent(context.Context, *model.OrderEvent) error { return nil }
func (NopPublisher) Close(context.Context) error                                { return nil }
