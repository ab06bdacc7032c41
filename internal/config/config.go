// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// It is resolved once at startup and never mutated afterwards.
type Config struct {
	Rest    RestConfig
	Kafka   KafkaConfig
	Bridge  BridgeConfig
	Logging LoggingConfig
	Service ServiceConfig
}

// RestConfig holds settings for the HTTP backend the bridge forwards to
type RestConfig struct {
	URI     string
	Timeout time.Duration
}

// KafkaConfig holds Kafka connection settings.
// ResponseTopic and GroupID are derived from Topic when not set explicitly.
type KafkaConfig struct {
	BootstrapServers []string
	Topic            string
	ResponseTopic    string
	GroupID          string
}

// BridgeConfig holds processing settings for the bridge loop
type BridgeConfig struct {
	WorkerCount int
	QueueSize   int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// ServiceConfig holds service settings
type ServiceConfig struct {
	Name        string
	MetricsPort string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Backend configuration
	restURI := os.Getenv("APP_REST_URI")
	if restURI == "" {
		return nil, fmt.Errorf("APP_REST_URI is required")
	}
	cfg.Rest.URI = strings.TrimRight(restURI, "/")

	restTimeout := os.Getenv("APP_REST_TIMEOUT")
	if restTimeout == "" {
		cfg.Rest.Timeout = 5 * time.Second // default
	} else {
		timeout, err := time.ParseDuration(restTimeout)
		if err != nil || timeout <= 0 {
			return nil, fmt.Errorf("APP_REST_TIMEOUT must be a positive duration: %q", restTimeout)
		}
		cfg.Rest.Timeout = timeout
	}

	// Kafka configuration
	bootstrapServers := os.Getenv("KAFKA_BOOTSTRAP_SERVERS")
	if bootstrapServers == "" {
		return nil, fmt.Errorf("KAFKA_BOOTSTRAP_SERVERS is required")
	}
	// Parse comma-separated servers
	servers := strings.Split(bootstrapServers, ",")
	cfg.Kafka.BootstrapServers = make([]string, 0, len(servers))
	for _, server := range servers {
		server = strings.TrimSpace(server)
		if server != "" {
			cfg.Kafka.BootstrapServers = append(cfg.Kafka.BootstrapServers, server)
		}
	}
	if len(cfg.Kafka.BootstrapServers) == 0 {
		return nil, fmt.Errorf("KAFKA_BOOTSTRAP_SERVERS must contain at least one valid server address")
	}

	topic := os.Getenv("APP_KAFKA_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("APP_KAFKA_TOPIC is required")
	}
	cfg.Kafka.Topic = topic

	// Response topic and group id derive from the inbound topic when not
	// configured explicitly. Derivation happens exactly once, here.
	responseTopic := os.Getenv("APP_KAFKA_RESPONSE_TOPIC")
	if responseTopic == "" {
		responseTopic = topic + "_response"
	}
	cfg.Kafka.ResponseTopic = responseTopic

	groupID := os.Getenv("APP_KAFKA_GROUP_ID")
	if groupID == "" {
		groupID = topic + "_group"
	}
	cfg.Kafka.GroupID = groupID

	// Bridge configuration
	workerCount, err := intFromEnv("WORKER_COUNT", 1)
	if err != nil {
		return nil, err
	}
	cfg.Bridge.WorkerCount = workerCount

	queueSize, err := intFromEnv("QUEUE_SIZE", 32)
	if err != nil {
		return nil, err
	}
	cfg.Bridge.QueueSize = queueSize

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// Service configuration
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "mtb-kafka-bridge" // default
	}
	cfg.Service.Name = serviceName

	// Empty port disables the metrics endpoint
	cfg.Service.MetricsPort = os.Getenv("METRICS_PORT")

	return cfg, nil
}

// intFromEnv reads a positive integer from the environment, falling back to
// the given default when the variable is unset
func intFromEnv(name string, defaultValue int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer: %q", name, raw)
	}
	return value, nil
}
