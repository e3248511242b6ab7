package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func openListing(currentBid int64) *AuctionListing {
	return &AuctionListing{
		ID:         uuid.New(),
		Title:      "Espresso machine",
		CurrentBid: decimal.NewFromInt(currentBid),
		EndsAt:     time.Now().Add(time.Hour),
	}
}

func TestCanAccept(t *testing.T) {
	tests := []struct {
		name       string
		completed  bool
		currentBid int64
		amount     string
		wantErr    error
	}{
		{"higher bid accepted", false, 100, "101", nil},
		{"much higher bid accepted", false, 100, "5000", nil},
		{"first bid over floor", false, 0, "1", nil},
		{"tie rejected", false, 100, "100", ErrBidTooLow},
		{"lower bid rejected", false, 100, "99", ErrBidTooLow},
		{"equal to floor rejected", false, 50, "50", ErrBidTooLow},
		{"zero rejected", false, 0, "0", ErrInvalidBid},
		{"negative rejected", false, 100, "-10", ErrInvalidBid},
		{"fractional rejected", false, 100, "100.5", ErrInvalidBid},
		{"closed listing rejected", true, 100, "200", ErrAuctionClosed},
		// Terminal state wins even when the amount is also bad.
		{"closed beats bad amount", true, 100, "-1", ErrAuctionClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := openListing(tt.currentBid)
			l.Completed = tt.completed

			amount, err := decimal.NewFromString(tt.amount)
			if err != nil {
				t.Fatalf("bad test amount %q: %v", tt.amount, err)
			}

			got := l.CanAccept(amount)
			if !errors.Is(got, tt.wantErr) && got != tt.wantErr {
				t.Errorf("CanAccept(%s) = %v, want %v", tt.amount, got, tt.wantErr)
			}
		})
	}
}

func TestIsCurrentBidder(t *testing.T) {
	l := openListing(100)
	alice := uuid.New()
	bob := uuid.New()

	if l.IsCurrentBidder(alice) {
		t.Error("listing with no bidder should have no current bidder")
	}
	if l.HasBidder() {
		t.Error("HasBidder should be false before any bid")
	}

	l.CurrentBidder = &alice
	if !l.IsCurrentBidder(alice) {
		t.Error("alice should be the current bidder")
	}
	if l.IsCurrentBidder(bob) {
		t.Error("bob should not be the current bidder")
	}
	if !l.HasBidder() {
		t.Error("HasBidder should be true after a bid")
	}
}

func TestToSummaryOmitsBidderIdentity(t *testing.T) {
	l := openListing(250)
	bidder := uuid.New()
	l.CurrentBidder = &bidder

	s := l.ToSummary()
	if !s.HasBidder {
		t.Error("summary should report that a bidder exists")
	}
	if !s.CurrentBid.Equal(decimal.NewFromInt(250)) {
		t.Errorf("summary current bid = %s, want 250", s.CurrentBid)
	}
	// The summary type has no bidder id field at all; this test documents
	// that the price is public but the leader's identity is not.
}

func TestTimeLeft(t *testing.T) {
	l := openListing(0)
	l.EndsAt = time.Now().Add(30 * time.Minute)
	if got := l.TimeLeft(); got <= 0 || got > 30*time.Minute {
		t.Errorf("TimeLeft() = %s, want (0, 30m]", got)
	}

	l.EndsAt = time.Now().Add(-time.Minute)
	if got := l.TimeLeft(); got != 0 {
		t.Errorf("TimeLeft() past deadline = %s, want 0", got)
	}
}
