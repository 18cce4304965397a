package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client is the generation service boundary: batch embeddings plus
// single-turn chat completion. Implementations classify failures as
// transient (retryable) or permanent via TransientError.
type Client interface {
	// Name returns the provider name
	Name() string

	// Embed returns one vector per input text, in input order
	Embed(ctx context.Context, model string, texts []string) ([][]float64, error)

	// Chat sends a system + user prompt pair and returns the raw response text
	Chat(ctx context.Context, model, system, user string) (string, error)
}

// TransientError marks a failure as retryable (network errors, timeouts,
// 429/5xx responses). Anything not wrapped in TransientError fails the call
// immediately.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retryable. Returns nil for a nil err.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is retryable
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
