package llm

import (
	"errors"
	"math"
	"time"
)

// RetryPolicy is the explicit retry configuration for narrative calls.
// It is a plain value so tests can exercise classification and backoff
// without any network involvement.
type RetryPolicy struct {
	// MaxAttempts bounds the total tries, first attempt included.
	MaxAttempts int `json:"max_attempts"`
	// InitialBackoff is the delay before the second attempt.
	InitialBackoff time.Duration `json:"initial_backoff"`
	// MaxBackoff caps the exponential growth.
	MaxBackoff time.Duration `json:"max_backoff"`
	// Multiplier is the exponential growth factor between attempts.
	Multiplier float64 `json:"multiplier"`
}

// DefaultRetryPolicy returns the standard 3-attempt exponential policy
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
		Multiplier:     2.0,
	}
}

// Backoff returns the delay to sleep after the given 1-based attempt
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.InitialBackoff) * math.Pow(p.Multiplier, float64(attempt-1))
	if d > float64(p.MaxBackoff) {
		return p.MaxBackoff
	}
	return time.Duration(d)
}

// transientError marks a failure as likely to succeed on retry
// (timeouts, rate limits, server errors, garbled transport payloads).
type transientError struct {
	cause error
}

func (e *transientError) Error() string {
	return e.cause.Error()
}

func (e *transientError) Unwrap() error {
	return e.cause
}

func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{cause: err}
}

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
