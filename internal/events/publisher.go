package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// producer is the part of *kgo.Client the publisher needs.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Publisher sends OrderCreated records to Kafka, keyed by order id so all
// events of one order land in the same partition.
type Publisher struct {
	client  producer
	topic   string
	encoder *Encoder
	logger  *zap.Logger
}

func NewPublisher(brokers []string, topic string, logger *zap.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("brokers are empty")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("kgo.NewClient: %w", err)
	}

	return newPublisher(client, topic, logger)
}

func newPublisher(client producer, topic string, logger *zap.Logger) (*Publisher, error) {
	if topic == "" {
		return nil, errors.New("topic is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	encoder, err := NewEncoder()
	if err != nil {
		return nil, fmt.Errorf("NewEncoder: %w", err)
	}

	logger.Info("kafka producer created", zap.String("topic", topic))

	return &Publisher{
		client:  client,
		topic:   topic,
		encoder: encoder,
		logger:  logger,
	}, nil
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	event, err := NewOrderCreated(order)
	if err != nil {
		return fmt.Errorf("NewOrderCreated: %w", err)
	}

	payload, err := p.encoder.Encode(event)
	if err != nil {
		return fmt.Errorf("encoder.Encode: %w", err)
	}

	rec := &kgo.Record{
		Topic:     p.topic,
		Key:       []byte(event.OrderID.String()),
		Value:     payload,
		Timestamp: time.Now().UTC(),
	}

	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("publish to kafka topic %s: %w", p.topic, err)
	}

	p.logger.Debug("order event published",
		zap.Stringer("order_id", event.OrderID),
		zap.Int("payload_bytes", len(payload)))

	return nil
}

func (p *Publisher) Close() {
	p.logger.Info("closing kafka producer", zap.String("topic", p.topic))
	p.client.Close()
}
