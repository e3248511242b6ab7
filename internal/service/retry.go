package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/loyaltyworks/auctionhouse/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Transaction retry
// ──────────────────────────────────────────────────────────────────────────────

// withRetry runs fn up to attempts times, backing off between tries (the delay
// doubles each attempt).  Only store-level conflicts qualify for a retry:
// domain errors and context cancellation surface immediately.  When the budget
// is exhausted the last error is wrapped in domain.ErrTransient, which tells
// the caller that nothing happened and the whole operation is safe to repeat.
//
// fn must be a complete transaction: begin, do, commit.  A retried fn re-reads
// everything from a fresh snapshot, so no state leaks between attempts.
func withRetry(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("%w: %v", domain.ErrTransient, err)
}

// isRetryable reports whether err is a transient store failure: a
// serialization conflict (40001), a deadlock (40P01), or a broken connection
// (SQLSTATE class 08 or a bad driver conn).
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "40001", pqErr.Code == "40P01":
			return true
		case pqErr.Code.Class() == "08": // connection exceptions
			return true
		}
	}
	return false
}
