package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_Delay_DoublesUntilCap(t *testing.T) {
	p := Policy{Initial: time.Second, Max: 10 * time.Second}

	expected := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}
	for attempt, want := range expected {
		assert.Equal(t, want, p.Delay(attempt+1), "attempt %d", attempt+1)
	}
}

func TestPolicy_Delay_ZeroValueUsesDefaults(t *testing.T) {
	var p Policy
	assert.Equal(t, DefaultInitialDelay, p.Delay(1))
	assert.Equal(t, DefaultMaxDelay, p.Delay(20))
}

func TestPolicy_Delay_AttemptBelowOne(t *testing.T) {
	p := Policy{Initial: time.Second, Max: 10 * time.Second}
	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, time.Second, p.Delay(-3))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "wrapped context canceled", err: fmt.Errorf("call: %w", context.Canceled), want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: true},
		{name: "rate limited sentinel", err: ErrRateLimited, want: true},
		{name: "connection refused", err: syscall.ECONNREFUSED, want: true},
		{name: "connection reset", err: syscall.ECONNRESET, want: true},
		{name: "broken pipe", err: syscall.EPIPE, want: true},
		{name: "status 429", err: &StatusError{Code: 429}, want: true},
		{name: "status 500", err: &StatusError{Code: 500}, want: true},
		{name: "status 503", err: &StatusError{Code: 503, Body: "overloaded"}, want: true},
		{name: "status 400", err: &StatusError{Code: 400}, want: false},
		{name: "status 404", err: &StatusError{Code: 404}, want: false},
		{name: "net timeout", err: net.Error(timeoutErr{}), want: true},
		{name: "reset surfaced as text", err: errors.New("read tcp: connection reset by peer"), want: true},
		{name: "plain error", err: errors.New("invalid payload"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Transient(tt.err))
		})
	}
}

func TestStatusError_Error(t *testing.T) {
	assert.Equal(t, "upstream returned status 502", (&StatusError{Code: 502}).Error())
	assert.Equal(
		t,
		"upstream returned status 503: overloaded",
		(&StatusError{Code: 503, Body: "overloaded"}).Error(),
	)
}
