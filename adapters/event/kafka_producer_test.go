package event

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/studyplan/internal/application/service"
	"github.com/khoahotran/studyplan/internal/config"
	"github.com/khoahotran/studyplan/pkg/logger"
)

func TestNewKafkaProducerClient_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaProducerClient(config.Config{}, logger.NewNop())
	assert.Error(t, err)
}

func TestNewKafkaProducerClient_OneWriterPerTopic(t *testing.T) {
	var cfg config.Config
	cfg.Kafka.Brokers = []string{"localhost:9092"}

	c, err := NewKafkaProducerClient(cfg, logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	for _, eventType := range []string{
		service.EventRoadmapGenerated,
		service.EventCertificationsRecommended,
		service.EventProgressRecorded,
	} {
		w, ok := c.writers[topicFor[eventType]]
		require.True(t, ok, eventType)
		assert.True(t, w.Async)
	}
}

func TestPublish_UnknownEventType(t *testing.T) {
	var cfg config.Config
	cfg.Kafka.Brokers = []string{"localhost:9092"}
	c, err := NewKafkaProducerClient(cfg, logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	err = c.Publish(context.Background(), service.Event{Type: "unknown"})
	assert.Error(t, err)
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(logger.NewNop())
	assert.NoError(t, p.Publish(context.Background(), service.Event{Type: service.EventProgressRecorded}))
	assert.NoError(t, p.Close())
}

func TestEnvelope_DecodesWhatPublishWrites(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	value, err := encodeEnvelope(service.Event{
		Type:    service.EventProgressRecorded,
		Key:     "user-1",
		Payload: map[string]any{"week_number": 3, "completed": true},
	}, now)
	require.NoError(t, err)

	env, err := DecodeEnvelope(kafka.Message{Value: value})
	require.NoError(t, err)
	assert.Equal(t, service.EventProgressRecorded, env.Type)
	assert.True(t, env.OccurredAt.Equal(now))
	assert.JSONEq(t, `{"week_number":3,"completed":true}`, string(env.Payload))
}

func TestDecodeEnvelope_FallsBackToHeader(t *testing.T) {
	env, err := DecodeEnvelope(kafka.Message{
		Value:   []byte(`{"payload":{}}`),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(service.EventRoadmapGenerated)}},
	})
	require.NoError(t, err)
	assert.Equal(t, service.EventRoadmapGenerated, env.Type)

	_, err = DecodeEnvelope(kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}

func TestNewKafkaConsumer_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaConsumer(config.Config{}, "audit", logger.NewNop())
	assert.Error(t, err)
}
