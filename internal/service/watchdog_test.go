package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloo-solutions/askd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDeadline_Success(t *testing.T) {
	result, err := WithDeadline(context.Background(), "embed", time.Second, 0, func(ctx context.Context) (string, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestWithDeadline_PropagatesError(t *testing.T) {
	boom := errors.New("backend down")
	_, err := WithDeadline(context.Background(), "generate", time.Second, 0, func(ctx context.Context) (string, error) {
		return "", boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestWithDeadline_TimeoutIsStageLabeled(t *testing.T) {
	const timeout = 30 * time.Millisecond

	start := time.Now()
	_, err := WithDeadline(context.Background(), "generate", timeout, 0, func(ctx context.Context) (string, error) {
		time.Sleep(500 * time.Millisecond)
		return "too late", nil
	})
	elapsed := time.Since(start)

	var st *domain.StepTimeoutError
	require.ErrorAs(t, err, &st)
	assert.Equal(t, "generate", st.Step)
	assert.Equal(t, timeout, st.Timeout)
	assert.True(t, domain.IsTimeout(err))
	// Fails promptly, not after the slow fn eventually returns.
	assert.Less(t, elapsed, 250*time.Millisecond)
}

func TestWithDeadline_CooperativeTimeoutIsStageLabeled(t *testing.T) {
	// fn honors cancellation and returns its ctx error well before the
	// watchdog timer fires; the caller still sees a stage timeout.
	const timeout = 20 * time.Millisecond

	start := time.Now()
	_, err := WithDeadline(context.Background(), "search", timeout, time.Minute, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	elapsed := time.Since(start)

	var st *domain.StepTimeoutError
	require.ErrorAs(t, err, &st)
	assert.Equal(t, "search", st.Step)
	assert.Less(t, elapsed, time.Second)
}

func TestWithDeadline_MarginOutlastsStageTimeout(t *testing.T) {
	// fn ignores cancellation but finishes within the margin, so its
	// result is kept instead of being preempted at the stage deadline.
	result, err := WithDeadline(context.Background(), "embed", 10*time.Millisecond, time.Second, func(ctx context.Context) (string, error) {
		time.Sleep(50 * time.Millisecond)
		return "slow but fine", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "slow but fine", result)
}

func TestWithDeadline_LateResultDiscarded(t *testing.T) {
	done := make(chan struct{})
	_, err := WithDeadline(context.Background(), "search", 10*time.Millisecond, 0, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(done)
		time.Sleep(50 * time.Millisecond)
		return 42, nil
	})

	require.Error(t, err)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fn never observed cancellation")
	}
}

func TestWithDeadline_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := WithDeadline(ctx, "embed", time.Minute, 0, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		time.Sleep(time.Hour) // never surfaced
		return "", nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}
