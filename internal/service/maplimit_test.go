package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloo-solutions/askd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLimit_OrderPreservedUnderReverseCompletion(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}

	// Later items finish first via staggered delays; output order must still
	// follow input order.
	results, err := MapLimit(context.Background(), items, len(items), func(ctx context.Context, n int) (int, error) {
		time.Sleep(time.Duration(len(items)-n) * 10 * time.Millisecond)
		return n * 10, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20, 30, 40}, results)
}

func TestMapLimit_NeverExceedsLimit(t *testing.T) {
	const limit = 3
	var active, peak atomic.Int32

	items := make([]int, 20)
	_, err := MapLimit(context.Background(), items, limit, func(ctx context.Context, _ int) (struct{}, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		return struct{}{}, nil
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(limit))
}

func TestMapLimit_FirstErrorFailsCall(t *testing.T) {
	boom := errors.New("boom")
	items := []int{0, 1, 2, 3}

	_, err := MapLimit(context.Background(), items, 2, func(ctx context.Context, n int) (int, error) {
		if n == 1 {
			return 0, boom
		}
		return n, nil
	})

	assert.ErrorIs(t, err, boom)
}

func TestMapLimit_InvalidLimit(t *testing.T) {
	_, err := MapLimit(context.Background(), []int{1}, 0, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
	assert.ErrorIs(t, err, domain.ErrInvalidConcurrencyLimit)
}

func TestMapLimit_EmptyInput(t *testing.T) {
	results, err := MapLimit(context.Background(), nil, 1, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMapLimit_CancelledContextStopsPendingWork(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int32
	_, err := MapLimit(ctx, make([]int, 50), 1, func(ctx context.Context, _ int) (int, error) {
		ran.Add(1)
		return 0, nil
	})

	assert.Error(t, err)
	assert.Zero(t, ran.Load())
}
