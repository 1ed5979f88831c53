// Package util provides shared utility functions for govfs.
package util

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"
)

// TransientIORetryOptions returns retry options for native filesystem
// operations (mount, stat, mkdir) that can fail transiently under
// contention — another process briefly holding the write-directory's
// advisory lock, or a momentary EBUSY/EAGAIN from the host OS.
func TransientIORetryOptions(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Attempts(3),
		retry.Delay(100 * time.Millisecond),
		retry.MaxDelay(300 * time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsTransientIOError),
		retry.Context(ctx),
	}
}

// DefaultRetryOptions returns sensible defaults for retry operations.
func DefaultRetryOptions(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Attempts(3),
		retry.Delay(100 * time.Millisecond),
		retry.MaxDelay(1 * time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
	}
}

// Retry executes fn with retry logic.
// Returns the last error if all attempts fail.
func Retry(ctx context.Context, fn func() error, opts ...retry.Option) error {
	if len(opts) == 0 {
		opts = DefaultRetryOptions(ctx)
	}
	return retry.Do(fn, opts...)
}

// RetryWithResult executes fn with retry logic and returns the result.
func RetryWithResult[T any](ctx context.Context, fn func() (T, error), opts ...retry.Option) (T, error) {
	if len(opts) == 0 {
		opts = DefaultRetryOptions(ctx)
	}
	return retry.DoWithData(fn, opts...)
}

// Common retry predicates

// IsTransientIOError reports whether err looks like a momentary
// condition (EBUSY, EAGAIN, EINTR) worth retrying rather than a
// permanent failure.
func IsTransientIOError(err error) bool {
	if err == nil {
		return false
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EBUSY, syscall.EAGAIN, syscall.EINTR:
			return true
		}
	}
	return false
}

