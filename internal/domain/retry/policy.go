// Package retry provides the backoff policy and failure classifier used for
// in-place retries of external calls within a single job execution attempt.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"
)

// Default policy values used when a config leaves them unset.
const (
	DefaultInitialDelay = 1 * time.Second
	DefaultMaxDelay     = 10 * time.Second
	DefaultMaxTries     = 3
)

// Policy maps an attempt number to a delay using capped exponential backoff.
type Policy struct {
	Initial time.Duration
	Max     time.Duration
}

// DefaultPolicy returns a Policy with the default delays.
func DefaultPolicy() Policy {
	return Policy{Initial: DefaultInitialDelay, Max: DefaultMaxDelay}
}

// Delay returns the delay before the given 1-indexed attempt's retry:
// min(Initial * 2^(attempt-1), Max). Attempts below 1 are treated as 1.
func (p Policy) Delay(attempt int) time.Duration {
	initial := p.Initial
	if initial <= 0 {
		initial = DefaultInitialDelay
	}
	max := p.Max
	if max <= 0 {
		max = DefaultMaxDelay
	}
	if attempt < 1 {
		attempt = 1
	}

	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}

// ErrRateLimited is a sentinel callers can wrap to mark an upstream
// rate-limit signal that carries no HTTP status.
var ErrRateLimited = errors.New("rate limited")

// StatusError reports an unexpected HTTP status from an upstream service.
type StatusError struct {
	Code int
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.Code)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Code, e.Body)
}

// Transient reports whether err is worth retrying: network resets and
// refusals, timeouts, rate-limit signals, and upstream 429/5xx responses.
// Everything else (malformed input, missing configuration, context
// cancellation) is treated as permanent.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == 429 || statusErr.Code >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Connection teardown surfaced as plain text by some transports.
	msg := err.Error()
	return strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "broken pipe")
}
