// Package producer publishes response records to the response topic
package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/mtb-etl/mtb-kafka-bridge/internal/config"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/retry"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/types"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// publishPolicy bounds the publish attempts for one response record.
// A response that cannot be published after these attempts is a record-level
// fault: the caller must not commit the request offset, so the record is
// redelivered after restart.
var publishPolicy = retry.Policy{
	MaxAttempts: 2,
	BaseDelay:   100 * time.Millisecond,
	MaxDelay:    time.Second,
	Multiplier:  2.0,
}

// Producer publishes response records keyed identically to the request
// record they answer
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
	topic  string
}

// NewProducer creates a new response producer
func NewProducer(cfg *config.Config, logger *zap.Logger) (*Producer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.BootstrapServers...),
		Topic:        cfg.Kafka.ResponseTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Kafka.ResponseTopic,
	}, nil
}

// Publish writes one response record to the response topic. The record's key
// is carried over from the inbound request unchanged; a nil key stays nil.
// Publish returns an error only after the bounded retries are exhausted.
func (p *Producer) Publish(ctx context.Context, rec types.Record) error {
	msg := kafka.Message{
		Key:   rec.Key,
		Value: rec.Value,
		Time:  time.Now(),
	}

	err := retry.DoWithRetry(ctx, publishPolicy, func() error {
		return p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		p.logger.Error("Failed to publish response",
			zap.String("topic", p.topic),
			zap.Int("keyLength", len(rec.Key)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish response to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published response",
		zap.String("topic", p.topic),
		zap.Int("keyLength", len(rec.Key)),
		zap.Int("valueLength", len(rec.Value)),
	)
	return nil
}

// Close closes the response producer and releases resources
func (p *Producer) Close() error {
	if p.writer != nil {
		p.logger.Info("Closing response producer")
		return p.writer.Close()
	}
	return nil
}
