package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/joripage/exchange-core/config"
	"github.com/joripage/exchange-core/pkg/exchange/book"
	"github.com/joripage/exchange-core/pkg/exchange/engine"
	"github.com/joripage/exchange-core/pkg/exchange/feed"
	"github.com/joripage/exchange-core/pkg/exchange/marketdata"
	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/joripage/exchange-core/pkg/exchange/repo"
	"github.com/joripage/exchange-core/pkg/exchange/service"
	"github.com/joripage/exchange-core/pkg/infra"
	postgres_wrapper "github.com/joripage/exchange-core/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/exchange-core/pkg/infra/redis"
	"github.com/joripage/exchange-core/pkg/logging"
)

// exchanged wires the matching core: ledger, per-symbol books, engine,
// intake service, market data. Transport in front of the service is
// deliberately not part of this binary.
func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	logging.InitGlobal(logging.INFO)

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	go func() {
		http.ListenAndServe("localhost:6060", nil)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	if cfg.MigrationSource != "" {
		infra.GetMigrateTool().Migrate(cfg.MigrationSource, cfg.ExchangeDB.MigrationConnURL)
	}

	db := postgres_wrapper.InitPostgresWithBackoff(cfg.ExchangeDB)
	sqlRepo := repo.NewRepo(db)

	var publisher feed.Publisher = feed.NopPublisher{}
	if cfg.Kafka != nil && len(cfg.Kafka.Brokers) > 0 {
		publisher = feed.NewKafkaPublisher(cfg.Kafka)
	}

	books := book.NewManager(func(ctx context.Context, symbol string) ([]*model.Order, error) {
		return sqlRepo.Order().OpenOrders(ctx, symbol)
	})

	matchingEngine := engine.NewEngine(sqlRepo, books, publisher)

	// svc is the embedding point for a transport gateway; none ships with
	// this binary
	svc := service.NewService(sqlRepo, matchingEngine, publisher)
	_ = svc

	var cache *marketdata.Cache
	if cfg.Redis != nil {
		redisClient, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Warnf("redis unavailable, market data uncached: %v", err)
		} else {
			ttl := time.Second
			if cfg.MarketData != nil && cfg.MarketData.CacheTTLSeconds > 0 {
				ttl = time.Duration(cfg.MarketData.CacheTTLSeconds) * time.Second
			}
			cache = marketdata.NewCache(redisClient, ttl)
		}
	}
	md := marketdata.NewMarketData(books, cache)
	if cfg.MarketData != nil && len(cfg.MarketData.Symbols) > 0 {
		go logTickers(ctx, md, cfg.MarketData.Symbols)
	}

	fmt.Println("exchange core started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")

	cancel()
	_ = publisher.Close(context.Background())

	fmt.Println("Exited cleanly.")
}

func logTickers(ctx context.Context, md *marketdata.MarketData, symbols []string) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, symbol := range symbols {
				t, err := md.Ticker(ctx, symbol)
				if err != nil {
					zap.S().Warnf("ticker %s: %v", symbol, err)
					continue
				}
				zap.S().Infow("ticker", "symbol", symbol, "bid", t.Bid, "ask", t.Ask, "last", t.LastPrice)
			}
		}
	}
}
