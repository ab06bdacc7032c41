// Package bridge implements the consume-forward-produce loop: each inbound
// MTB-File request is forwarded to the HTTP backend, the outcome is wrapped
// into a response record carrying the request's key, the response is
// published, and only then is the request offset committed.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mtb-etl/mtb-kafka-bridge/internal/backend"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/mtbfile"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/obs"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/queue"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/response"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/types"
	"go.uber.org/zap"
)

// Forwarder issues one backend request per record payload
type Forwarder interface {
	Forward(ctx context.Context, payload []byte) backend.Outcome
}

// Publisher writes one response record to the response topic
type Publisher interface {
	Publish(ctx context.Context, rec types.Record) error
}

// Committer advances the consumer position past a processed record
type Committer interface {
	CommitRecord(rec *types.Record)
}

// Pool runs one worker per queue shard. Since all records of a partition land
// on the same shard, each partition is processed strictly in order; different
// partitions proceed in parallel.
type Pool struct {
	queue     *queue.Sharded
	forwarder Forwarder
	publisher Publisher
	committer Committer
	logger    *zap.Logger
	metrics   *obs.Metrics
	wg        sync.WaitGroup
}

// NewPool creates a worker pool over the given shard queue
func NewPool(q *queue.Sharded, forwarder Forwarder, publisher Publisher, committer Committer, logger *zap.Logger, metrics *obs.Metrics) (*Pool, error) {
	if q == nil {
		return nil, fmt.Errorf("queue cannot be nil")
	}
	if forwarder == nil {
		return nil, fmt.Errorf("forwarder cannot be nil")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher cannot be nil")
	}
	if committer == nil {
		return nil, fmt.Errorf("committer cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Pool{
		queue:     q,
		forwarder: forwarder,
		publisher: publisher,
		committer: committer,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// Start launches one worker goroutine per shard
func (p *Pool) Start() {
	p.logger.Info("Starting bridge workers",
		zap.Int("workerCount", p.queue.ShardCount()),
	)
	for shard := 0; shard < p.queue.ShardCount(); shard++ {
		p.wg.Add(1)
		go p.worker(shard)
	}
}

// Wait blocks until all workers have drained their shards and stopped.
// Workers stop when the queue has been closed and emptied, so every record
// fetched before shutdown still completes its forward/publish/commit cycle.
func (p *Pool) Wait() {
	p.wg.Wait()
	p.logger.Info("Bridge workers stopped")
}

// worker drains a single shard
func (p *Pool) worker(shard int) {
	defer p.wg.Done()

	p.logger.Debug("Worker started", zap.Int("shard", shard))

	// The dequeue context is deliberately background: workers only stop on
	// queue close, after draining, so no accepted record is left half done.
	ctx := context.Background()

	for {
		rec, err := p.queue.Dequeue(ctx, shard)
		if err != nil {
			if errors.Is(err, queue.ErrQueueClosed) {
				p.logger.Debug("Worker stopping, queue closed", zap.Int("shard", shard))
				return
			}
			p.logger.Error("Failed to dequeue record",
				zap.Error(err),
				zap.Int("shard", shard),
			)
			continue
		}

		p.processRecord(ctx, rec)
	}
}

// processRecord advances one record through forward, build, publish and
// commit. A backend transport failure is a business outcome, not a pipeline
// failure: the record still gets a response (the 900 sentinel document) and
// is still committed. Only a publish failure leaves the offset uncommitted,
// so the record is redelivered after restart rather than lost.
func (p *Pool) processRecord(ctx context.Context, rec *types.Record) {
	if p.metrics != nil {
		defer p.metrics.DecrementRecordsInFlight()
	}

	logger := p.logger
	if rec.Meta != nil {
		logger = logger.With(
			zap.Int("partition", rec.Meta.Partition),
			zap.Int64("offset", rec.Meta.Offset),
		)
	}

	// Identifying fields are decoded for logging only; an unparsable payload
	// is forwarded unchanged and the backend decides what to do with it.
	if req, err := mtbfile.Decode(rec.Value); err == nil {
		logger = logger.With(
			zap.String("requestID", req.RequestID),
			zap.String("consentStatus", req.ConsentStatus),
		)
	} else {
		logger.Warn("Cannot decode payload as MTB-File request, forwarding as-is")
	}

	if p.metrics != nil {
		p.metrics.IncrementBackendRequests()
	}
	outcome := p.forwarder.Forward(ctx, rec.Value)
	if outcome.TransportFailed() {
		if p.metrics != nil {
			p.metrics.IncrementTransportFailures()
		}
		logger.Warn("Backend unreachable, publishing sentinel response",
			zap.String("reason", outcome.FailureReason),
		)
	} else {
		logger.Info("Backend responded",
			zap.Int("statusCode", outcome.StatusCode),
		)
	}

	out := response.Build(rec.Key, outcome)

	if err := p.publisher.Publish(ctx, out); err != nil {
		if p.metrics != nil {
			p.metrics.IncrementPublishFailures()
		}
		// Offset stays uncommitted so the record is retried on restart
		logger.Error("Response not published, offset left uncommitted",
			zap.Error(err),
		)
		return
	}

	if p.metrics != nil {
		p.metrics.IncrementResponsesPublished()
	}
	p.committer.CommitRecord(rec)
}

// Fetcher feeds records into the queue until its context is cancelled and
// flushes pending offset commits on demand
type Fetcher interface {
	Start(ctx context.Context) error
	DrainCommits()
}

// Bridge ties the fetch loop, the shard queue and the worker pool together
// and owns their shutdown ordering.
type Bridge struct {
	fetcher Fetcher
	pool    *Pool
	queue   *queue.Sharded
	logger  *zap.Logger
}

// New creates a bridge from its already-constructed parts
func New(fetcher Fetcher, pool *Pool, q *queue.Sharded, logger *zap.Logger) (*Bridge, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher cannot be nil")
	}
	if pool == nil {
		return nil, fmt.Errorf("pool cannot be nil")
	}
	if q == nil {
		return nil, fmt.Errorf("queue cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Bridge{
		fetcher: fetcher,
		pool:    pool,
		queue:   q,
		logger:  logger,
	}, nil
}

// Run processes records until the context is cancelled, then shuts down
// gracefully: stop fetching, drain buffered records through the workers,
// flush pending offset commits. Records accepted before cancellation are
// never dropped; at worst an uncommitted record is reprocessed on restart.
func (b *Bridge) Run(ctx context.Context) error {
	b.pool.Start()

	err := b.fetcher.Start(ctx)

	b.logger.Info("Shutting down bridge, draining in-flight records")
	b.queue.Close()
	b.pool.Wait()
	b.fetcher.DrainCommits()
	b.logger.Info("Bridge stopped")

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
