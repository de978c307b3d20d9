package store

import (
	"context"
	"errors"
	"testing"

	"github.com/UnderratedBeast/UniqueFabric-Backend/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetrySucceedsAfterTransientConflict(t *testing.T) {
	conflict := apperrors.New(apperrors.KindConflict, "write conflict")
	isConflict := func(err error) bool { return apperrors.IsKind(err, apperrors.KindConflict) }

	calls := 0
	err := WithRetry(context.Background(), 3, isConflict, func() error {
		calls++
		if calls < 3 {
			return conflict
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("broken pipe")

	calls := 0
	err := WithRetry(context.Background(), 5, func(error) bool { return false }, func() error {
		calls++
		return permanent
	})
	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	conflict := apperrors.New(apperrors.KindConflict, "write conflict")

	calls := 0
	err := WithRetry(context.Background(), 3, func(error) bool { return true }, func() error {
		calls++
		return conflict
	})
	assert.Equal(t, conflict, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := WithRetry(ctx, 10, func(error) bool { return true }, func() error {
		calls++
		cancel()
		return apperrors.New(apperrors.KindConflict, "write conflict")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPassthroughRunner(t *testing.T) {
	runner := NewTxnRunner(nil, false)

	ran := false
	err := runner.WithTransaction(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	boom := errors.New("boom")
	err = runner.WithTransaction(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.Equal(t, boom, err)
}
