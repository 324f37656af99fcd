package logging

import (
	"context"
	"errors"
)

// IsTransient reports whether an error is worth retrying: deadline
// expiries and anything that self-identifies as a timeout or temporary
// condition (net errors, redis, database drivers).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return true
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		return true
	}

	return false
}
