package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sammade/inventory-api/internal/config"
	"github.com/sammade/inventory-api/internal/httpx"
	"github.com/sammade/inventory-api/internal/inventory"
	kafkax "github.com/sammade/inventory-api/internal/kafka"
	"github.com/sammade/inventory-api/internal/notify"
	"github.com/sammade/inventory-api/internal/orders"
	"github.com/sammade/inventory-api/internal/postgres"
	"github.com/sammade/inventory-api/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per alert topic
	pLow := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicLowStock, 1024, logger)
	pLow.Start()
	pExp := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicExpiring, 1024, logger)
	pExp.Start()

	// Notification sink + post-response dispatcher
	sink := &notify.KafkaSink{LowStock: pLow, Expiring: pExp, Service: cfg.ServiceName}
	dispatcher := notify.NewDispatcher(sink, logger, 1024)
	dispatcher.Start()

	// Stores, engine, handlers
	invRepo := &inventory.Repo{DB: db}
	ledger := &orders.Repo{DB: db}
	engine := &orders.Engine{Inventory: invRepo, Ledger: ledger}

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{
		Engine: engine,
		Ledger: ledger,
		Alerts: dispatcher,
		Redis:  rdb,
		Log:    logger,
	}).Register(router)
	(&httpx.ProductsHandler{
		Store:  invRepo,
		Alerts: dispatcher,
		Log:    logger,
	}).Register(router)
	(&httpx.ReportsHandler{
		Ledger: ledger,
		Log:    logger,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	// drain pending alerts, then flush the producers behind them
	dispatcher.Close()
	dispatcher.WaitClosed()
	pLow.Close()
	pExp.Close()
	pLow.WaitClosed()
	pExp.WaitClosed()
}
