package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPolicy keeps retry sleeps negligible in tests.
var fastPolicy = Policy{Initial: time.Millisecond, Max: 2 * time.Millisecond}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy, 3, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy, 3, func(context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{Code: 503}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	permanent := errors.New("bad request")
	calls := 0
	err := Do(context.Background(), fastPolicy, 3, func(context.Context) error {
		calls++
		return permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsBudgetReturnsLastError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy, 3, func(context.Context) error {
		calls++
		return ErrRateLimited
	})
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancelledBetweenTries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{Initial: time.Minute, Max: time.Minute}, 3, func(context.Context) error {
		calls++
		cancel()
		return &StatusError{Code: 500}
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroTriesRunsOnce(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy, 0, func(context.Context) error {
		calls++
		return &StatusError{Code: 502}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
