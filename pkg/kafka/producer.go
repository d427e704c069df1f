package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"assignment_service/pkg/utils"
)

const (
	defaultMaxRetries     = 3
	defaultRetryDelay     = 100 * time.Millisecond
	defaultBreakerFailure = 5
	defaultBreakerReset   = 30 * time.Second
)

type Config struct {
	Brokers    []string
	MaxRetries int
	RetryDelay time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes JSON encoded events. Transient broker failures are
// retried with backoff behind a circuit breaker shared by all topics.
type Producer struct {
	writer     messageWriter
	breaker    *utils.CircuitBreaker
	maxRetries int
	retryDelay time.Duration
}

func NewProducer(cfg Config) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	return newProducer(writer, cfg), nil
}

func newProducer(writer messageWriter, cfg Config) *Producer {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	return &Producer{
		writer:     writer,
		breaker:    utils.NewCircuitBreaker(defaultBreakerFailure, defaultBreakerReset),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

func (p *Producer) Send(ctx context.Context, topic string, message interface{}) error {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	_, err = utils.RetryWithCircuitBreaker(ctx, p.breaker, p.maxRetries, p.retryDelay, func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, kafka.Message{
			Topic: topic,
			Value: msgBytes,
			Time:  time.Now().UTC(),
		})
	})
	if err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
