package worker

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles calls against the generation service so that a large
// comment batch does not flood it. A zero or negative rate disables limiting.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter allowing requestsPerSecond with the given burst
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		return &Limiter{}
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait blocks until a request may proceed or the context is canceled
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed without waiting
func (l *Limiter) Allow() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}
