package timeutils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrAllAttemptsFailed = errors.New("all attempts failed")
)

// Retry calls function once per entry of attemptDelays, sleeping the entry's
// delay after every attempt that onFinished wants retried.
func Retry[T any](
	ctx context.Context,
	attemptDelays []time.Duration,
	function func(context.Context) (T, error),
	onFinished func(T, error) (needRetry bool),
) (T, error) {
	var lastErr error
	for i, delay := range attemptDelays {
		if ctx.Err() != nil {
			var res T
			return res, fmt.Errorf("retry canceled: %w", ctx.Err())
		}
		res, err := function(ctx)
		if !onFinished(res, err) {
			return res, err
		}
		lastErr = err
		if i == len(attemptDelays)-1 {
			break
		}
		err = SleepCtx(ctx, delay)
		if err != nil {
			var res T
			return res, err
		}
	}
	var res T
	if lastErr != nil {
		return res, fmt.Errorf("%w: %w", ErrAllAttemptsFailed, lastErr)
	}
	return res, ErrAllAttemptsFailed
}

func SleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("sleep canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
