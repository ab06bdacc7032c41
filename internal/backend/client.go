// Package backend implements the HTTP client that forwards MTB-File payloads
// to the configured REST backend.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/mtb-etl/mtb-kafka-bridge/internal/config"
	"go.uber.org/zap"
)

// Outcome is the result of a single forward attempt. Exactly one variant
// applies: a received HTTP response (any status, including error-range
// statuses) or a transport failure where no response was received.
// The bridge never interprets backend status codes.
type Outcome struct {
	StatusCode int
	Body       []byte
	// FailureReason is non-empty iff the request failed before a response
	// was received (connection refused, timeout, broken transport).
	FailureReason string
}

// TransportFailed reports whether the outcome is a transport failure
func (o Outcome) TransportFailed() bool {
	return o.FailureReason != ""
}

// Client forwards payloads to the backend REST endpoint.
// It is created once at startup and reused across records; the underlying
// http.Client pools connections and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	uri        string
	logger     *zap.Logger
}

// NewClient creates a backend client from the resolved configuration
func NewClient(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Rest.Timeout,
		},
		uri:    cfg.Rest.URI + "/MTBFile",
		logger: logger,
	}, nil
}

// Forward issues a single synchronous POST with the payload as request body.
// The payload is sent verbatim; the response body is returned verbatim.
// There are no retries: one failed attempt is immediately reported as a
// transport failure, and redelivery is left to the broker's offset handling.
func (c *Client) Forward(ctx context.Context, payload []byte) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uri, bytes.NewReader(payload))
	if err != nil {
		return Outcome{FailureReason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed",
			zap.String("uri", c.uri),
			zap.Error(err),
		)
		return Outcome{FailureReason: reasonFromError(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// The response was cut off mid-body, so nothing trustworthy was
		// received. Treated the same as never reaching the backend.
		c.logger.Warn("Backend response body unreadable",
			zap.String("uri", c.uri),
			zap.Int("statusCode", resp.StatusCode),
			zap.Error(err),
		)
		return Outcome{FailureReason: reasonFromError(err)}
	}

	c.logger.Debug("Backend responded",
		zap.String("uri", c.uri),
		zap.Int("statusCode", resp.StatusCode),
		zap.Int("bodyLength", len(body)),
	)

	return Outcome{
		StatusCode: resp.StatusCode,
		Body:       body,
	}
}

// reasonFromError extracts a human-readable transport failure reason.
// url.Error wrapping is stripped so downstream consumers see the cause
// ("connection refused", "context deadline exceeded") rather than the
// request boilerplate around it.
func reasonFromError(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}
