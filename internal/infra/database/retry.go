package database

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"net"
	"time"

	"github.com/lib/pq"
)

const (
	retryAttempts  = 3
	retryBaseDelay = 100 * time.Millisecond
)

// WithRetry runs fn up to three times with exponential backoff and
// jitter, but only for transient failures. This is the single retry
// point for the persistence boundary; handlers never loop on their own.
func WithRetry(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			backoff := retryBaseDelay << (attempt - 1)
			jitter := time.Duration(rand.Int63n(int64(backoff)))
			select {
			case <-time.After(backoff + jitter):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err = fn(ctx)
		if err == nil || !isTransient(err) {
			return err
		}
	}
	return err
}

// isTransient: network problems and Postgres class 08 (connection) or
// 40P01 (deadlock) are worth another try. Constraint violations and
// plain query errors are not.
func isTransient(err error) bool {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code.Class() == "08" || pqErr.Code == "40P01" {
			return true
		}
	}
	return false
}
