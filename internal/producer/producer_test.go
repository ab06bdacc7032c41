package producer

import (
	"testing"

	"github.com/mtb-etl/mtb-kafka-bridge/internal/config"
	"go.uber.org/zap"
)

func TestNewProducer_ValidConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Kafka.BootstrapServers = []string{"localhost:9092"}
	cfg.Kafka.ResponseTopic = "requests_response"
	logger := zap.NewNop()

	producer, err := NewProducer(cfg, logger)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if producer == nil {
		t.Fatal("Expected producer to be non-nil")
	}
	defer producer.Close()

	if producer.topic != "requests_response" {
		t.Errorf("Expected topic 'requests_response', got: %s", producer.topic)
	}
}

func TestNewProducer_NilConfig(t *testing.T) {
	logger := zap.NewNop()

	_, err := NewProducer(nil, logger)
	if err == nil {
		t.Fatal("Expected error for nil config, got nil")
	}
}

func TestNewProducer_NilLogger(t *testing.T) {
	cfg := &config.Config{}
	cfg.Kafka.BootstrapServers = []string{"localhost:9092"}
	cfg.Kafka.ResponseTopic = "requests_response"

	_, err := NewProducer(cfg, nil)
	if err == nil {
		t.Fatal("Expected error for nil logger, got nil")
	}
}
