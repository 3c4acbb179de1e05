// Package retry provides bounded exponential backoff for transient
// failures against remote APIs.
package retry

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config tunes the backoff loop.
type Config struct {
	// MaxRetries is the number of attempts after the first.
	MaxRetries int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the computed delay.
	MaxDelay time.Duration
	// Multiplier grows the delay each attempt.
	Multiplier float64
	// Jitter spreads delays by up to 10% either way.
	Jitter bool
}

// DefaultConfig returns the standard tuning for remote model calls.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 2,
		BaseDelay:  1 * time.Second,
		MaxDelay:   15 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// Do runs op until it succeeds, returns a non-retryable error, exhausts
// MaxRetries, or ctx is done. The last error is returned.
func Do(ctx context.Context, cfg Config, name string, op func() error) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if attempt >= cfg.MaxRetries || !Retryable(lastErr) {
			return lastErr
		}

		delay := backoffDelay(cfg, attempt)
		log.Debug().
			Err(lastErr).
			Str("operation", name).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Retrying after transient failure")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func backoffDelay(cfg Config, attempt int) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter {
		delay += (rand.Float64() - 0.5) * 0.2 * delay
		if delay < 0 {
			delay = float64(cfg.BaseDelay)
		}
	}
	return time.Duration(delay)
}

// Retryable reports whether err looks like a transient network or
// throttling failure worth another attempt.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"service unavailable",
		"too many requests",
		"rate limit",
		"429",
		"502",
		"503",
		"504",
		"no such host",
		"broken pipe",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
