package client

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of requests (including the initial request).
	MaxAttempts int

	// InitialBackoff is the initial backoff duration.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration.
	MaxBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration. A single
// attempt: the adapter does not retry unless configured to.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       1,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// RetryConfigForErrorClass returns the backoff shape for an error class.
// MaxAttempts is left at the default and set by the client.
func RetryConfigForErrorClass(errorClass ErrorClass) RetryConfig {
	config := DefaultRetryConfig()
	switch errorClass {
	case ErrorClassServer:
		config.InitialBackoff = 1 * time.Second
		config.MaxBackoff = 10 * time.Second
	case ErrorClassRateLimit:
		config.InitialBackoff = 5 * time.Second
		config.MaxBackoff = 60 * time.Second
	case ErrorClassNetwork, ErrorClassTimeout:
		config.InitialBackoff = 2 * time.Second
		config.MaxBackoff = 30 * time.Second
	}
	return config
}

// retryWithBackoff calls fn until it succeeds, returns a non-retriable
// error, or the attempts configured for the error's class are used up.
// configFor is consulted after each failure with the failure's class.
// Waiting between attempts respects ctx; if ctx ends first, the context
// failure is returned as a TransportError.
func retryWithBackoff(ctx context.Context, logger zerolog.Logger, path string, configFor func(ErrorClass) RetryConfig, fn func(attempt int) error) error {
	var backoff time.Duration

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Str("path", path).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		errorClass := classOf(err)
		if !shouldRetry(errorClass) {
			return err
		}

		config := configFor(errorClass)
		if attempt >= config.MaxAttempts {
			if config.MaxAttempts > 1 {
				colorAPIRetryExhaustedTotal.WithLabelValues(string(errorClass)).Inc()
				logger.Warn().
					Str("path", path).
					Str("error_class", string(errorClass)).
					Int("max_attempts", config.MaxAttempts).
					Msg("Retry attempts exhausted")
			}
			return err
		}

		if backoff == 0 {
			backoff = config.InitialBackoff
		}

		colorAPIRetriesTotal.WithLabelValues(string(errorClass)).Inc()

		// Add jitter (±20% randomness)
		jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))

		logger.Debug().
			Str("path", path).
			Str("error_class", string(errorClass)).
			Int("attempt", attempt).
			Dur("backoff", jitter).
			Msg("Retrying request after backoff")

		timer := time.NewTimer(jitter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return &TransportError{
				Path:     path,
				Class:    classifyErr(ctx.Err()),
				Attempts: attempt,
				Err:      ctx.Err(),
			}
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * config.BackoffMultiplier)
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}
}
