package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/studyplan/internal/application/service"
	"github.com/khoahotran/studyplan/pkg/logger"
)

var tracer = otel.Tracer("llm_client")

// Backend is a GenerativeClient that can name itself for logs.
type Backend interface {
	service.GenerativeClient
	ModelID() string
	Provider() string
}

// LoggingClient records latency and outcome of every call.
type LoggingClient struct {
	inner Backend
	log   logger.Logger
}

func WithLogging(inner Backend, log logger.Logger) *LoggingClient {
	return &LoggingClient{inner: inner, log: log}
}

func (l *LoggingClient) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	purpose := service.PurposeFrom(ctx)
	ctx, span := tracer.Start(ctx, "Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", l.inner.Provider()),
		attribute.String("llm.model", l.inner.ModelID()),
		attribute.String("llm.purpose", purpose),
	)

	start := time.Now()
	text, err := l.inner.Complete(ctx, req)
	latency := time.Since(start)

	fields := []zap.Field{
		zap.String("provider", l.inner.Provider()),
		zap.String("model", l.inner.ModelID()),
		zap.String("purpose", purpose),
		zap.Int64("latency_ms", latency.Milliseconds()),
		zap.Int("prompt_chars", len(req.Prompt)),
	}
	if err != nil {
		span.RecordError(err)
		l.log.Error("LLM completion failed", err, fields...)
		return "", err
	}

	l.log.Info("LLM completion finished", append(fields, zap.Int("response_chars", len(text)))...)
	return text, nil
}

func (l *LoggingClient) ModelID() string { return l.inner.ModelID() }

func (l *LoggingClient) Provider() string { return l.inner.Provider() }
