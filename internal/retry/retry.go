// Package retry provides retry logic with exponential backoff.
// It is used for response publishing only; backend forward calls are never
// retried, redelivery of those is owned by the broker's offset handling.
package retry

import (
	"context"
	"errors"
	"math"
	"time"
)

// Errors
var (
	// ErrMaxRetriesExceeded is returned when all retry attempts have been exhausted
	ErrMaxRetriesExceeded = errors.New("maximum retry attempts exceeded")
)

// Policy describes the retry behavior of DoWithRetry
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
}

// DoWithRetry executes fn with retry logic according to the provided policy.
// It returns ErrMaxRetriesExceeded joined with the last error if all retries fail.
func DoWithRetry(ctx context.Context, policy Policy, fn func() error) error {
	var err error

	// Loop through the retry attempts
	for i := 0; i < policy.MaxAttempts+1; i++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Execute the function
		err = fn()
		if err == nil {
			return nil // Success
		}

		// If this was the last attempt, break the loop
		if i == policy.MaxAttempts {
			break
		}

		// Calculate backoff delay for next retry
		delay := calculateBackoff(policy, i)

		// Wait with context cancellation support
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			// Continue to next retry
		}
	}

	// Return the error if all retries failed
	return errors.Join(ErrMaxRetriesExceeded, err)
}

// calculateBackoff computes the backoff delay for a given attempt
func calculateBackoff(policy Policy, attempt int) time.Duration {
	// Exponential backoff: BaseDelay * (Multiplier ^ attempt)
	delay := policy.BaseDelay * time.Duration(math.Pow(policy.Multiplier, float64(attempt)))

	// Cap at MaxDelay
	return min(delay, policy.MaxDelay)
}
