package config

import (
	"strings"
	"testing"
	"time"
)

// setRequired sets the minimal environment a successful Load needs.
// Individual tests override or unset single variables on top of it.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_REST_URI", "http://backend:9000/bwhc")
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", "kafka:9092")
	t.Setenv("APP_KAFKA_TOPIC", "requests")
	t.Setenv("APP_KAFKA_RESPONSE_TOPIC", "")
	t.Setenv("APP_KAFKA_GROUP_ID", "")
	t.Setenv("APP_REST_TIMEOUT", "")
	t.Setenv("WORKER_COUNT", "")
	t.Setenv("QUEUE_SIZE", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SERVICE_NAME", "")
	t.Setenv("METRICS_PORT", "")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Kafka.ResponseTopic != "requests_response" {
		t.Errorf("Expected response topic 'requests_response', got: %s", cfg.Kafka.ResponseTopic)
	}
	if cfg.Kafka.GroupID != "requests_group" {
		t.Errorf("Expected group id 'requests_group', got: %s", cfg.Kafka.GroupID)
	}
	if cfg.Rest.Timeout != 5*time.Second {
		t.Errorf("Expected default timeout 5s, got: %v", cfg.Rest.Timeout)
	}
	if cfg.Bridge.WorkerCount != 1 {
		t.Errorf("Expected default worker count 1, got: %d", cfg.Bridge.WorkerCount)
	}
	if cfg.Bridge.QueueSize != 32 {
		t.Errorf("Expected default queue size 32, got: %d", cfg.Bridge.QueueSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default log level 'info', got: %s", cfg.Logging.Level)
	}
	if cfg.Service.Name != "mtb-kafka-bridge" {
		t.Errorf("Expected default service name 'mtb-kafka-bridge', got: %s", cfg.Service.Name)
	}
}

func TestLoad_ExplicitOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_KAFKA_RESPONSE_TOPIC", "answers")
	t.Setenv("APP_KAFKA_GROUP_ID", "bridge-1")
	t.Setenv("APP_REST_TIMEOUT", "30s")
	t.Setenv("WORKER_COUNT", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Kafka.ResponseTopic != "answers" {
		t.Errorf("Expected response topic 'answers', got: %s", cfg.Kafka.ResponseTopic)
	}
	if cfg.Kafka.GroupID != "bridge-1" {
		t.Errorf("Expected group id 'bridge-1', got: %s", cfg.Kafka.GroupID)
	}
	if cfg.Rest.Timeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got: %v", cfg.Rest.Timeout)
	}
	if cfg.Bridge.WorkerCount != 4 {
		t.Errorf("Expected worker count 4, got: %d", cfg.Bridge.WorkerCount)
	}
}

func TestLoad_BootstrapServerList(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", " kafka-1:9092 , kafka-2:9092,, kafka-3:9092 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []string{"kafka-1:9092", "kafka-2:9092", "kafka-3:9092"}
	if len(cfg.Kafka.BootstrapServers) != len(want) {
		t.Fatalf("Expected %d servers, got: %d", len(want), len(cfg.Kafka.BootstrapServers))
	}
	for i, server := range want {
		if cfg.Kafka.BootstrapServers[i] != server {
			t.Errorf("Expected server[%d]=%s, got: %s", i, server, cfg.Kafka.BootstrapServers[i])
		}
	}
}

func TestLoad_TrimsTrailingSlashFromURI(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_REST_URI", "http://backend:9000/bwhc/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Rest.URI != "http://backend:9000/bwhc" {
		t.Errorf("Expected trailing slash removed, got: %s", cfg.Rest.URI)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
	}{
		{name: "missing_rest_uri", envVar: "APP_REST_URI"},
		{name: "missing_bootstrap_servers", envVar: "KAFKA_BOOTSTRAP_SERVERS"},
		{name: "missing_topic", envVar: "APP_KAFKA_TOPIC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.envVar, "")

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for unset %s, got nil", tt.envVar)
			}
			if !strings.Contains(err.Error(), tt.envVar) {
				t.Errorf("Expected error to name %s, got: %v", tt.envVar, err)
			}
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{name: "blank_bootstrap_servers", envVar: "KAFKA_BOOTSTRAP_SERVERS", value: " , ,"},
		{name: "bad_timeout", envVar: "APP_REST_TIMEOUT", value: "soon"},
		{name: "negative_timeout", envVar: "APP_REST_TIMEOUT", value: "-5s"},
		{name: "bad_worker_count", envVar: "WORKER_COUNT", value: "many"},
		{name: "zero_worker_count", envVar: "WORKER_COUNT", value: "0"},
		{name: "negative_queue_size", envVar: "QUEUE_SIZE", value: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.envVar, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("Expected error for %s=%q, got nil", tt.envVar, tt.value)
			}
		})
	}
}
