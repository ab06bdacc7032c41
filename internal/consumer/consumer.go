// Package consumer reads MTB-File request records from the request topic
package consumer

import (
	"context"
	"fmt"
	"sync"

	"github.com/mtb-etl/mtb-kafka-bridge/internal/config"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/obs"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/queue"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/types"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer fetches records from the request topic and enqueues them for the
// bridge workers. Offsets are committed manually and only after a worker
// reports that the record's response has been published; the commit channel
// decouples commit I/O from record processing.
type Consumer struct {
	reader     *kafka.Reader
	logger     *zap.Logger
	queue      *queue.Sharded
	metrics    *obs.Metrics
	commitChan chan kafka.Message
	commitDone chan struct{}
	commitOnce sync.Once
}

// NewConsumer creates a new Kafka consumer instance
func NewConsumer(cfg *config.Config, logger *zap.Logger, q *queue.Sharded, metrics *obs.Metrics) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if q == nil {
		return nil, fmt.Errorf("queue cannot be nil")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.BootstrapServers,
		Topic:          cfg.Kafka.Topic,
		GroupID:        cfg.Kafka.GroupID,
		StartOffset:    kafka.FirstOffset,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: 0,    // Manual commit only
	})

	return &Consumer{
		reader:     reader,
		logger:     logger,
		queue:      q,
		metrics:    metrics,
		commitChan: make(chan kafka.Message, 100),
		commitDone: make(chan struct{}),
	}, nil
}

// CommitRecord queues a record's offset for commit. Called by a bridge worker
// only after the record's response has been published (or after a terminal,
// already-reported outcome).
func (c *Consumer) CommitRecord(rec *types.Record) {
	if rec.Meta == nil {
		return
	}
	// CommitMessages only needs the record's position
	c.commitChan <- kafka.Message{
		Topic:     rec.Meta.Topic,
		Partition: rec.Meta.Partition,
		Offset:    rec.Meta.Offset,
	}
}

// Start begins fetching records and enqueuing them for processing.
// It blocks until the context is cancelled. Committed offsets keep flowing
// after Start returns, until DrainCommits is called.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("Starting Kafka consumer",
		zap.Strings("bootstrapServers", c.reader.Config().Brokers),
		zap.String("topic", c.reader.Config().Topic),
		zap.String("groupID", c.reader.Config().GroupID),
	)

	go c.commitLoop()

	for {
		// Fetch message with context (does NOT auto-commit)
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Consumer stopped due to context cancellation")
				return ctx.Err()
			}
			// Log error and continue (network errors are transient)
			c.logger.Error("Failed to fetch record from Kafka",
				zap.Error(err),
			)
			continue
		}

		if c.metrics != nil {
			c.metrics.IncrementRecordsConsumed()
			c.metrics.IncrementRecordsInFlight()
		}

		rec := &types.Record{
			Key:   msg.Key,
			Value: msg.Value,
			Meta: &types.RecordMeta{
				Topic:     msg.Topic,
				Partition: msg.Partition,
				Offset:    msg.Offset,
			},
		}

		// Enqueue record (blocks if the shard is full - backpressure)
		if err := c.queue.Enqueue(ctx, rec); err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Consumer stopped due to context cancellation during enqueue")
				return ctx.Err()
			}
			c.logger.Error("Failed to enqueue record",
				zap.Error(err),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			continue
		}

		// Log record metadata only (not content)
		c.logger.Debug("Enqueued record",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Int("keyLength", len(msg.Key)),
			zap.Int("valueLength", len(msg.Value)),
			zap.Int("queueDepth", c.queue.Depth()),
		)
	}
}

// DrainCommits closes the commit channel and waits until every queued offset
// has been committed. It must be called after all workers have stopped, so
// no further CommitRecord calls can race the close.
func (c *Consumer) DrainCommits() {
	c.commitOnce.Do(func() {
		close(c.commitChan)
	})
	<-c.commitDone
}

// commitLoop commits offsets as workers report published responses
func (c *Consumer) commitLoop() {
	defer close(c.commitDone)

	// A fresh context so queued commits are flushed even during shutdown
	commitCtx := context.Background()

	for msg := range c.commitChan {
		if err := c.reader.CommitMessages(commitCtx, msg); err != nil {
			c.logger.Error("Failed to commit offset",
				zap.Error(err),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			continue
		}
		if c.metrics != nil {
			c.metrics.IncrementOffsetsCommitted()
		}
		c.logger.Debug("Committed offset",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		)
	}
}

// Close closes the Kafka consumer and releases resources
func (c *Consumer) Close() error {
	if c.reader != nil {
		c.logger.Info("Closing Kafka consumer")
		if err := c.reader.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka reader: %w", err)
		}
	}
	return nil
}
