package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/khoahotran/studyplan/adapters/event"
	"github.com/khoahotran/studyplan/internal/config"
	"github.com/khoahotran/studyplan/pkg/logger"
)

// The worker tails every studyplan event topic and writes each event to the structured
// log, giving an audit trail of generations and progress submissions.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	consumer, err := event.NewKafkaConsumer(cfg, "studyplan-audit", appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init Kafka consumer", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Worker listening for studyplan events")
	err = consumer.Run(ctx, func(_ context.Context, key string, env event.Envelope) error {
		appLogger.Info("Event received",
			zap.String("type", env.Type),
			zap.String("key", key),
			zap.Time("occurred_at", env.OccurredAt),
			zap.ByteString("payload", env.Payload),
		)
		return nil
	})
	if err != nil {
		appLogger.Fatal("Worker stopped", err)
	}
}
