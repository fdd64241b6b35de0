package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/studyplan/internal/application/service"
	"github.com/khoahotran/studyplan/internal/config"
	"github.com/khoahotran/studyplan/pkg/logger"
)

const (
	TopicRoadmapEvents       = "roadmap.events"
	TopicCertificationEvents = "certification.events"
	TopicProgressEvents      = "progress.events"
)

// topicFor routes an event type to its Kafka topic.
var topicFor = map[string]string{
	service.EventRoadmapGenerated:          TopicRoadmapEvents,
	service.EventCertificationsRecommended: TopicCertificationEvents,
	service.EventProgressRecorded:          TopicProgressEvents,
}

// Envelope is the wire form of every domain event on Kafka.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func encodeEnvelope(ev service.Event, now time.Time) ([]byte, error) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", ev.Type, err)
	}
	return json.Marshal(Envelope{Type: ev.Type, OccurredAt: now, Payload: payload})
}

type KafkaProducerClient struct {
	writers map[string]*kafka.Writer
	logger  logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	c := &KafkaProducerClient{
		writers: make(map[string]*kafka.Writer),
		logger:  log,
	}
	for _, topic := range []string{TopicRoadmapEvents, TopicCertificationEvents, TopicProgressEvents} {
		t := topic
		c.writers[t] = &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    t,
			Balancer: &kafka.Hash{},
			// Publishing must not hold the request open; failures surface in Completion.
			Async: true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					log.Error("Kafka async write failed", err, zap.String("topic", t), zap.Int("messages", len(messages)))
				}
			},
		}
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))
	return c, nil
}

// Publish keys messages by user so one user's events stay ordered within a partition.
func (c *KafkaProducerClient) Publish(ctx context.Context, ev service.Event) error {
	w, ok := c.writers[topicFor[ev.Type]]
	if !ok {
		return fmt.Errorf("no kafka topic for event type %q", ev.Type)
	}

	value, err := encodeEnvelope(ev, time.Now().UTC())
	if err != nil {
		return err
	}

	return w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	})
}

func (c *KafkaProducerClient) Close() error {
	var firstErr error
	for topic, w := range c.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close writer %s: %w", topic, err)
		}
	}
	c.logger.Info("Closed Kafka Producers")
	return firstErr
}
