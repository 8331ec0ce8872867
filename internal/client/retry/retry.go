package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config configures the retry behavior
type Config struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

// DefaultConfig provides sensible defaults for retries
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
		MaxElapsedTime:  30 * time.Second,
	}
}

// NoRetry runs the operation exactly once.
func NoRetry() *Config {
	return &Config{}
}

// Do runs op until it succeeds, returns a permanent error, the retry budget
// is spent or ctx is done. onRetry, if set, is called before each wait.
func Do(ctx context.Context, cfg *Config, op func() error, onRetry func(err error, wait time.Duration)) error {
	if cfg == nil || cfg.MaxRetries <= 0 {
		err := op()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return permanent.Err
		}
		return err
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = cfg.InitialInterval
	expBackoff.MaxInterval = cfg.MaxInterval
	expBackoff.Multiplier = cfg.Multiplier
	expBackoff.MaxElapsedTime = cfg.MaxElapsedTime

	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(cfg.MaxRetries)), ctx)
	if onRetry == nil {
		return backoff.Retry(op, policy)
	}
	return backoff.RetryNotify(op, policy, onRetry)
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
