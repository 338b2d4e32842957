package processor

import (
	"context"

	"golang.org/x/time/rate"
)

const defaultRowsPerSecond = 100

// RateLimiter throttles row intake during file batch runs so a large
// upload cannot monopolize the worker pool.
type RateLimiter struct {
	limiter *rate.Limiter
	logger  Logger
}

// NewRateLimiter creates a new rate limiter.
// rps: rows per second; burst: maximum burst size.
func NewRateLimiter(rps, burst int, logger Logger) *RateLimiter {
	if rps <= 0 {
		rps = defaultRowsPerSecond
	}
	if burst <= 0 {
		burst = rps
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// Wait blocks until the rate limit allows the next row.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		r.logger.Warn("Rate limiter wait failed", "error", err)
		return err
	}
	return nil
}

// Allow reports whether a row may proceed without blocking.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}
