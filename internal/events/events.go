// Package events emits at-least-once domain events to Kafka, keyed by
// primary identifier, for every topic this core publishes to.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ThinkGrid-Labs/altis-engine/internal/logging"
)

// Topic names from the external interfaces section.
const (
	TopicHoldsCreated     = "holds.created"
	TopicBookingConfirmed = "booking.confirmed" // kept for legacy consumers
	TopicOfferGenerated   = "offer_generated"
	TopicOfferAccepted    = "offer_accepted"
	TopicOrderPaid        = "order_paid"
	TopicSettlement       = "settlement"
)

// Publisher is the interface the rest of the core depends on, so tests can
// substitute an in-memory recorder instead of dialing a real broker.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload map[string]interface{}) error
	Close() error
}

// KafkaPublisher is the production Publisher backed by segmentio/kafka-go.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *logging.Logger
}

func NewKafkaPublisher(brokers []string, log *logging.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
		log: log,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: body,
		Time:  time.Now(),
	})
	if err != nil {
		p.log.Error("failed to publish event", zap.String("topic", topic), zap.Error(err))
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
