package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryOptions contains configuration for retry behavior.
type RetryOptions struct {
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      uint64
}

// GetTranslationRetryOptions returns retry options for translation calls. The
// delays are kept above the spacing the service enforces between requests.
func GetTranslationRetryOptions(maxRetries uint64, delay, maxDelay time.Duration) RetryOptions {
	return RetryOptions{
		MaxElapsedTime:  time.Duration(maxRetries+1) * (maxDelay + delay),
		InitialInterval: delay,
		MaxInterval:     maxDelay,
		MaxRetries:      maxRetries,
	}
}

// WithRetry executes the given operation with exponential backoff using provided options.
func WithRetry[T any](ctx context.Context, operation func() (T, error), opts RetryOptions) (T, error) {
	return WithRetryIf(ctx, operation, opts, nil)
}

// WithRetryIf works like WithRetry but stops at the first error for which
// retryable returns false. A nil retryable retries every error.
func WithRetryIf[T any](
	ctx context.Context, operation func() (T, error), opts RetryOptions, retryable func(error) bool,
) (T, error) {
	var result T

	// Configure exponential backoff
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(opts.MaxElapsedTime),
		backoff.WithInitialInterval(opts.InitialInterval),
		backoff.WithMaxInterval(opts.MaxInterval),
	), opts.MaxRetries)

	// Create backoff operation with context
	backoffOperation := func() error {
		var err error
		result, err = operation()
		if err != nil && retryable != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.Retry(backoffOperation, backoff.WithContext(b, ctx))
	return result, err
}
