// Package main is the entry point for the MTB Kafka bridge.
// The bridge consumes MTB-File request records from a Kafka topic, forwards
// each payload to the configured REST backend, and republishes the backend's
// outcome onto the response topic under the request's key, so the ETL
// processor can correlate request and response.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mtb-etl/mtb-kafka-bridge/internal/backend"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/bridge"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/config"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/consumer"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/logger"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/obs"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/producer"
	"github.com/mtb-etl/mtb-kafka-bridge/internal/queue"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mtb-kafka-bridge: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Configuration errors are fatal before the consume loop starts
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Info("Application started",
		zap.String("service", cfg.Service.Name),
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("responseTopic", cfg.Kafka.ResponseTopic),
		zap.String("groupID", cfg.Kafka.GroupID),
		zap.String("restURI", cfg.Rest.URI),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := obs.NewMetrics(cfg.Service.Name)
	if cfg.Service.MetricsPort != "" {
		go func() {
			if err := obs.StartMetricsServer(ctx, cfg.Service.MetricsPort, log); err != nil {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	client, err := backend.NewClient(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	q := queue.NewSharded(cfg.Bridge.WorkerCount, cfg.Bridge.QueueSize)

	cons, err := consumer.NewConsumer(cfg, log, q, metrics)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	defer cons.Close()

	prod, err := producer.NewProducer(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}
	defer prod.Close()

	pool, err := bridge.NewPool(q, client, prod, cons, log, metrics)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}

	b, err := bridge.New(cons, pool, q, log)
	if err != nil {
		return fmt.Errorf("failed to create bridge: %w", err)
	}

	if err := b.Run(ctx); err != nil {
		return fmt.Errorf("bridge stopped with error: %w", err)
	}

	log.Info("Application stopped")
	return nil
}
