package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sammade/inventory-api/internal/config"
	kafkax "github.com/sammade/inventory-api/internal/kafka"
	"github.com/sammade/inventory-api/internal/notify"
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

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	deliverer := &notify.Deliverer{
		Mailer: &notify.LogMailer{Log: logger},
		Redis:  rdb,
		Log:    logger,
	}

	topics := []string{notify.TopicLowStock, notify.TopicExpiring}
	for _, topic := range topics {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, topic, cfg.NotifierWorkers, logger)
		go func(topic string) {
			logger.Info("notifier consumer started",
				zap.String("group", cfg.NotifierGroup),
				zap.String("topic", topic),
				zap.Int("workers", cfg.NotifierWorkers))
			if err := cons.Start(ctx, deliverer.Handle); err != nil {
				logger.Error("consumer exit", zap.String("topic", topic), zap.Error(err))
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		logger.Info("shutting down notifier...")
	case <-ctx.Done():
	}
	cancel()
	time.Sleep(500 * time.Millisecond)
}
