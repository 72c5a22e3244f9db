package rabbit

import (
	"context"
	"errors"
	"time"

	"github.com/Temutjin2k/campus-ride/pkg/rabbit"
)

// isRecoverableError reports whether another publish attempt can succeed.
func isRecoverableError(err error) bool {
	return !oneOf(err, rabbit.ErrClosed, context.Canceled, context.DeadlineExceeded)
}

func oneOf(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func retry(ctx context.Context, n int, sleep time.Duration, fn func() error) error {
	var err error
	for i := range n {
		if err = fn(); err == nil || !isRecoverableError(err) {
			return err
		}
		if i == n-1 {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(sleep):
		}
	}
	return err
}
