package cortex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
	}
}

// Retrying wraps a Client so every call goes through retryOperation.
type Retrying struct {
	*Client
	config RetryConfig
}

func NewRetrying(client *Client, config RetryConfig) *Retrying {
	return &Retrying{Client: client, config: config}
}

func (r *Retrying) Complete(ctx context.Context, model, prompt string) (string, error) {
	var result string
	err := r.retryOperation(ctx, "complete", func() error {
		var err error
		result, err = r.Client.Complete(ctx, model, prompt)
		return err
	})
	return result, err
}

func (r *Retrying) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var result *SearchResponse
	err := r.retryOperation(ctx, "search", func() error {
		var err error
		result, err = r.Client.Search(ctx, req)
		return err
	})
	return result, err
}

func (r *Retrying) retryOperation(ctx context.Context, name string, operation func() error) error {
	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := operation()
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return err
		}

		if attempt == r.config.MaxRetries {
			return fmt.Errorf("%s failed after %d retries: %w", name, r.config.MaxRetries, err)
		}

		delay := time.Duration(float64(r.config.BaseDelay) * math.Pow(1.5, float64(attempt)))
		if delay > r.config.MaxDelay {
			delay = r.config.MaxDelay
		}

		r.logger.WithFields(logrus.Fields{
			"operation": name,
			"attempt":   attempt + 1,
			"delay":     delay,
			"error":     err.Error(),
		}).Warn("Retrying Cortex operation")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	// transport failures
	return true
}
