package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cloo-solutions/askd/internal/domain"
)

// WithDeadline races fn against a timer. If the timer fires first the call
// fails with a StepTimeoutError carrying the stage label, and fn's eventual
// outcome is discarded. Start, success and failure are logged with elapsed
// time so a failed request is attributable to a specific stage.
//
// fn receives a context cancelled when timeout expires, so transports that
// honor cancellation abort their in-flight call. The watchdog timer fires
// margin after that, catching fn implementations that ignore the context
// without racing fn's own ctx-derived error.
func WithDeadline[T any](ctx context.Context, label string, timeout, margin time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	start := time.Now()
	log.Printf("step %s: started (timeout %s)", label, timeout)

	fnCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result T
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := fn(fnCtx)
		done <- outcome{result: r, err: err}
	}()

	if margin < 0 {
		margin = 0
	}
	timer := time.NewTimer(timeout + margin)
	defer timer.Stop()

	select {
	case o := <-done:
		elapsed := time.Since(start)
		if o.err != nil {
			// A cooperative fn surfaces the stage deadline as its own
			// ctx error; attribute it to the stage unless the parent
			// context expired instead.
			if errors.Is(o.err, context.DeadlineExceeded) && ctx.Err() == nil {
				o.err = domain.NewStepTimeout(label, timeout)
			}
			log.Printf("step %s: failed after %s: %v", label, elapsed.Round(time.Millisecond), o.err)
			return zero, o.err
		}
		log.Printf("step %s: completed in %s", label, elapsed.Round(time.Millisecond))
		return o.result, o.err
	case <-timer.C:
		err := domain.NewStepTimeout(label, timeout)
		log.Printf("step %s: failed after %s: %v", label, time.Since(start).Round(time.Millisecond), err)
		return zero, err
	case <-ctx.Done():
		err := ctx.Err()
		log.Printf("step %s: failed after %s: %v", label, time.Since(start).Round(time.Millisecond), err)
		return zero, err
	}
}
