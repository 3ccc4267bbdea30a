package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/joripage/exchange-core/config"
	"github.com/joripage/exchange-core/pkg/exchange/repo"
	"github.com/joripage/exchange-core/pkg/exchange/worker"
	postgres_wrapper "github.com/joripage/exchange-core/pkg/infra/postgres"
	kafkawrapper "github.com/joripage/exchange-core/pkg/kafka_wrapper"
	"github.com/joripage/exchange-core/pkg/logging"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	logging.InitGlobal(logging.INFO)

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres_wrapper.InitPostgres(cfg.ExchangeDB)
	if err != nil {
		zap.S().Errorf("init db fail with err: %v", err)
		panic(err)
	}

	sqlRepo := repo.NewRepo(db)

	consumer := kafkawrapper.NewConsumer(kafkawrapper.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topic:   cfg.Kafka.OrderEventTopic,
	})

	w := worker.NewWorker(sqlRepo)
	go func() {
		if err := w.StartConsumer(ctx, consumer); err != nil {
			zap.S().Errorf("consumer stopped: %v", err)
		}
	}()

	zap.S().Infof("order-event worker started")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	cancel()
	zap.S().Infof("order-event worker exited")
}
