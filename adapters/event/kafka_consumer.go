package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/studyplan/internal/config"
	"github.com/khoahotran/studyplan/pkg/logger"
)

// HandlerFunc processes one decoded event. A returned error leaves the message uncommitted.
type HandlerFunc func(ctx context.Context, key string, env Envelope) error

type KafkaConsumer struct {
	reader *kafka.Reader
	logger logger.Logger
}

// NewKafkaConsumer subscribes groupID to every studyplan event topic.
func NewKafkaConsumer(cfg config.Config, groupID string, log logger.Logger) (*KafkaConsumer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Kafka.Brokers,
		GroupID:     groupID,
		GroupTopics: []string{TopicRoadmapEvents, TopicCertificationEvents, TopicProgressEvents},
		MinBytes:    10e3,
		MaxBytes:    10e6,
	})
	return &KafkaConsumer{reader: reader, logger: log}, nil
}

// DecodeEnvelope reads the event envelope from a message. The event_type header wins
// over an empty type field.
func DecodeEnvelope(msg kafka.Message) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode event envelope: %w", err)
	}
	if env.Type == "" {
		for _, h := range msg.Headers {
			if h.Key == "event_type" {
				env.Type = string(h.Value)
			}
		}
	}
	return env, nil
}

// Run fetches and handles messages until ctx is cancelled. Undecodable messages are
// logged and committed so they do not block the partition.
func (c *KafkaConsumer) Run(ctx context.Context, handle HandlerFunc) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("fetch kafka message: %w", err)
		}

		env, err := DecodeEnvelope(msg)
		if err != nil {
			c.logger.Warn("Skipping undecodable event", zap.String("topic", msg.Topic), zap.Error(err))
			c.commit(ctx, msg)
			continue
		}

		if err := handle(ctx, string(msg.Key), env); err != nil {
			c.logger.Error("Failed to handle event", err, zap.String("topic", msg.Topic), zap.String("type", env.Type))
			continue
		}
		c.commit(ctx, msg)
	}
}

func (c *KafkaConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message", err, zap.String("topic", msg.Topic))
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
