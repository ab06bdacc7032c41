// Package queue provides a bounded, partition-sharded record queue with
// backpressure support
package queue

import (
	"context"
	"sync"

	"github.com/mtb-etl/mtb-kafka-bridge/internal/types"
)

// Sharded is a set of bounded channels, one per worker shard. Records are
// routed by partition so all records of one partition land on the same shard,
// preserving per-partition order end-to-end while allowing bounded
// parallelism across partitions. Enqueue blocks when the target shard is
// full, providing backpressure against the broker fetch loop.
type Sharded struct {
	shards []chan *types.Record
	done   chan struct{}
	once   sync.Once
}

// NewSharded creates a queue with shardCount shards of the given buffer size
func NewSharded(shardCount, size int) *Sharded {
	shards := make([]chan *types.Record, shardCount)
	for i := range shards {
		shards[i] = make(chan *types.Record, size)
	}

	return &Sharded{
		shards: shards,
		done:   make(chan struct{}),
	}
}

// ShardCount returns the number of shards
func (q *Sharded) ShardCount() int {
	return len(q.shards)
}

// shardFor maps a record to its shard by partition
func (q *Sharded) shardFor(rec *types.Record) int {
	partition := 0
	if rec.Meta != nil {
		partition = rec.Meta.Partition
	}
	return partition % len(q.shards)
}

// Enqueue adds a record to its partition's shard.
// This operation blocks if the shard is full (backpressure).
// Returns an error if the context is cancelled or the queue is closed.
// Enqueue must not be called concurrently with Close; the bridge closes the
// queue only after the fetch loop has stopped.
func (q *Sharded) Enqueue(ctx context.Context, rec *types.Record) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.shards[q.shardFor(rec)] <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue removes and returns a record from the given shard.
// This operation blocks if the shard is empty.
// Returns an error if the context is cancelled or the queue is closed and drained.
func (q *Sharded) Dequeue(ctx context.Context, shard int) (*types.Record, error) {
	select {
	case rec, ok := <-q.shards[shard]:
		if !ok {
			return nil, ErrQueueClosed
		}
		return rec, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Depth returns the current number of buffered records across all shards
func (q *Sharded) Depth() int {
	depth := 0
	for _, shard := range q.shards {
		depth += len(shard)
	}
	return depth
}

// Close closes the queue gracefully. After closing, no more records can be
// enqueued; workers drain the remaining buffered records before Dequeue
// reports ErrQueueClosed.
func (q *Sharded) Close() {
	q.once.Do(func() {
		close(q.done)
		for _, shard := range q.shards {
			close(shard)
		}
	})
}

// Errors
var (
	ErrQueueClosed = &QueueError{msg: "queue is closed"}
)

// QueueError represents a queue operation error
type QueueError struct {
	msg string
}

func (e *QueueError) Error() string {
	return e.msg
}
