package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/khoahotran/studyplan/internal/application/service"
	"github.com/khoahotran/studyplan/pkg/logger"
)

// LogPublisher stands in for Kafka when no brokers are configured. Events are only logged.
type LogPublisher struct {
	logger logger.Logger
}

func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{logger: log}
}

func (p *LogPublisher) Publish(_ context.Context, ev service.Event) error {
	p.logger.Debug("Domain event", zap.String("type", ev.Type), zap.String("key", ev.Key), zap.Any("payload", ev.Payload))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
