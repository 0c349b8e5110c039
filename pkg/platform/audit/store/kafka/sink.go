// Package kafka publishes audit events to a Kafka topic with franz-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "onboard-gateway/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client the sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// DefaultProduceTimeout bounds one Append when no timeout is configured.
const DefaultProduceTimeout = 5 * time.Second

// Sink implements audit.Store by producing one record per event. The record
// key is the event id so consumers can deduplicate.
type Sink struct {
	producer Producer
	topic    string
	timeout  time.Duration
}

type Option func(*Sink)

// WithProduceTimeout caps how long Append waits for the broker to acknowledge.
func WithProduceTimeout(d time.Duration) Option {
	return func(s *Sink) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewSink(producer Producer, topic string, opts ...Option) *Sink {
	s := &Sink{producer: producer, topic: topic, timeout: DefaultProduceTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClient builds a producer client for the given brokers. Records that are
// not delivered within deliveryTimeout fail instead of being retried forever.
func NewClient(brokers []string, topic string, deliveryTimeout time.Duration) (*kgo.Client, error) {
	if deliveryTimeout <= 0 {
		deliveryTimeout = DefaultProduceTimeout
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RecordDeliveryTimeout(deliveryTimeout),
		kgo.ProduceRequestTimeout(deliveryTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.ID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(event.Category)},
			{Key: "action", Value: []byte(event.Action)},
		},
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}
