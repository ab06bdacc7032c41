package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mtb-etl/mtb-kafka-bridge/internal/types"
)

func record(partition int, offset int64) *types.Record {
	return &types.Record{
		Key:   []byte("k"),
		Value: []byte("v"),
		Meta: &types.RecordMeta{
			Topic:     "requests",
			Partition: partition,
			Offset:    offset,
		},
	}
}

func TestSharded_SamePartitionSameShardInOrder(t *testing.T) {
	t.Parallel()

	q := NewSharded(4, 8)
	defer q.Close()

	ctx := context.Background()
	for offset := int64(0); offset < 5; offset++ {
		if err := q.Enqueue(ctx, record(2, offset)); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	shard := q.shardFor(record(2, 0))
	for offset := int64(0); offset < 5; offset++ {
		rec, err := q.Dequeue(ctx, shard)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if rec.Meta.Offset != offset {
			t.Errorf("Expected offset %d next, got: %d", offset, rec.Meta.Offset)
		}
	}
}

func TestSharded_PartitionsSpreadAcrossShards(t *testing.T) {
	t.Parallel()

	q := NewSharded(3, 8)
	defer q.Close()

	seen := map[int]bool{}
	for partition := 0; partition < 6; partition++ {
		seen[q.shardFor(record(partition, 0))] = true
	}
	if len(seen) != 3 {
		t.Errorf("Expected all 3 shards used, got: %d", len(seen))
	}
}

func TestSharded_EnqueueBlocksWhenFull(t *testing.T) {
	t.Parallel()

	q := NewSharded(1, 1)
	defer q.Close()

	ctx := context.Background()
	if err := q.Enqueue(ctx, record(0, 0)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Second enqueue must block until cancelled
	blockedCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	err := q.Enqueue(blockedCtx, record(0, 1))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got: %v", err)
	}
}

func TestSharded_CloseDrainsThenReportsClosed(t *testing.T) {
	t.Parallel()

	q := NewSharded(1, 4)
	ctx := context.Background()

	if err := q.Enqueue(ctx, record(0, 7)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	q.Close()

	// Buffered record is still delivered after Close
	rec, err := q.Dequeue(ctx, 0)
	if err != nil {
		t.Fatalf("Expected buffered record after close, got: %v", err)
	}
	if rec.Meta.Offset != 7 {
		t.Errorf("Expected offset 7, got: %d", rec.Meta.Offset)
	}

	// Drained queue reports closed
	if _, err := q.Dequeue(ctx, 0); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Expected ErrQueueClosed, got: %v", err)
	}

	// Enqueue after close fails
	if err := q.Enqueue(ctx, record(0, 8)); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Expected ErrQueueClosed, got: %v", err)
	}
}

func TestSharded_DequeueRespectsContext(t *testing.T) {
	t.Parallel()

	q := NewSharded(1, 1)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := q.Dequeue(ctx, 0); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got: %v", err)
	}
}
