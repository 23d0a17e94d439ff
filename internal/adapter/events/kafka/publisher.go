// Package kafka publishes wallet events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DmitriySvyatov/WalletApi/config"
	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes WalletEvents as JSON, keyed by wallet id so every event
// for one wallet lands on the same partition. Events are sent after the
// mutation commits, so two changes to one wallet may arrive out of order;
// consumers order them by the event's version.
type Publisher struct {
	writer messageWriter
	topic  string
	log    zerolog.Logger
}

// NewPublisher creates an asynchronous publisher. Delivery failures are
// logged from the writer's completion callback.
func NewPublisher(cfg config.KafkaConfig, log zerolog.Logger) *Publisher {
	p := &Publisher{topic: cfg.Topic, log: log}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion:             p.onCompletion,
	}
	return p
}

var _ ports.EventPublisher = (*Publisher)(nil)

// Publish enqueues event for delivery.
func (p *Publisher) Publish(ctx context.Context, event domain.WalletEvent) error {
	msg, err := encodeEvent(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) onCompletion(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range msgs {
		p.log.Warn().
			Err(err).
			Str("topic", p.topic).
			Str("wallet_id", string(m.Key)).
			Msg("wallet event delivery failed")
	}
}

func encodeEvent(event domain.WalletEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encoding event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.WalletID.String()),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}

// HealthCheck implements ports.HealthChecker by dialing the first reachable broker.
type HealthCheck struct {
	brokers []string
	dial    func(ctx context.Context, network, address string) (*kafka.Conn, error)
}

// NewHealthCheck creates a Kafka health checker.
func NewHealthCheck(brokers []string) *HealthCheck {
	return &HealthCheck{brokers: brokers, dial: kafka.DialContext}
}

// Ping succeeds if any broker accepts a connection.
func (h *HealthCheck) Ping(ctx context.Context) error {
	var lastErr error
	for _, b := range h.brokers {
		conn, err := h.dial(ctx, "tcp", b)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no brokers configured")
	}
	return lastErr
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "kafka"
}
