package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/loyaltyworks/auctionhouse/internal/domain"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"serialization failure", &pq.Error{Code: "40001"}, true},
		{"deadlock detected", &pq.Error{Code: "40P01"}, true},
		{"connection failure class", &pq.Error{Code: "08006"}, true},
		{"bad driver conn", driver.ErrBadConn, true},
		{"wrapped serialization failure", fmt.Errorf("bid_service: %w", &pq.Error{Code: "40001"}), true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"domain error", domain.ErrBidTooLow, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWithRetry_SucceedsAfterConflict(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &pq.Error{Code: "40001"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry returned %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestWithRetry_ExhaustionYieldsTransient(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return &pq.Error{Code: "40P01"}
	})
	if !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("withRetry returned %v, want ErrTransient", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestWithRetry_DomainErrorNotRetried(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return domain.ErrInsufficientPoints
	})
	if !errors.Is(err, domain.ErrInsufficientPoints) {
		t.Fatalf("withRetry returned %v, want ErrInsufficientPoints", err)
	}
	if calls != 1 {
		t.Errorf("domain error should fail fast, fn called %d times", calls)
	}
}

func TestWithRetry_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withRetry(ctx, 3, time.Minute, func() error {
		return &pq.Error{Code: "40001"}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("withRetry returned %v, want context.Canceled", err)
	}
}
