// Command producer generates synthetic MTB-File request records for load
// testing the bridge. Each record carries a unique case key so the published
// responses can be correlated on the response topic.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	brokers string
	topic   string
	count   int
	rate    int
)

func init() {
	// Try to load .env file (optional)
	godotenv.Load()

	flag.StringVar(&brokers, "brokers", getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092"), "Kafka server addresses (comma-separated)")
	flag.StringVar(&topic, "topic", getEnv("APP_KAFKA_TOPIC", "requests"), "Request topic name")
	flag.IntVar(&count, "count", 100, "Number of records to produce (0 = until interrupted)")
	flag.IntVar(&rate, "rate", 0, "Records per second (0 = as fast as possible)")
	flag.Parse()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// payload builds a minimal MTB-File request document for one synthetic case
func payload(n int) []byte {
	status := "active"
	if n%10 == 0 {
		status = "rejected"
	}
	return fmt.Appendf(nil,
		`{"request_id":"request%08d","content":{"consent":{"id":"CONSENT%d","patient":"PATIENT%d","status":%q}}}`,
		n, n, n, status,
	)
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	brokerList := strings.Split(brokers, ",")
	for i := range brokerList {
		brokerList[i] = strings.TrimSpace(brokerList[i])
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerList...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // same case key always lands on the same partition
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	defer writer.Close()

	logger.Info("Load producer started",
		zap.Strings("brokers", brokerList),
		zap.String("topic", topic),
		zap.Int("count", count),
		zap.Int("rate", rate),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ticker *time.Ticker
	if rate > 0 {
		ticker = time.NewTicker(time.Second / time.Duration(rate))
		defer ticker.Stop()
	}

	produced := 0
	for count == 0 || produced < count {
		if ctx.Err() != nil {
			break
		}
		if ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
			}
		}

		msg := kafka.Message{
			Key:   fmt.Appendf(nil, "case-%d", produced),
			Value: payload(produced),
			Time:  time.Now(),
		}

		writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := writer.WriteMessages(writeCtx, msg)
		cancel()
		if err != nil {
			logger.Error("Failed to produce record", zap.Error(err))
			continue
		}

		produced++
		if produced%100 == 0 {
			logger.Info("Produced records", zap.Int("count", produced))
		}
	}

	logger.Info("Load producer stopped", zap.Int("totalProduced", produced))
}
