// Package domain defines the core business entities and types for the
// loyalty-points auction house.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// AuctionListing
// ──────────────────────────────────────────────────────────────────────────────

// AuctionListing is a single item up for auction.  While the listing is open,
// CurrentBid is exactly the number of points held in escrow on behalf of
// CurrentBidder (or the admin-set starting floor when no bid has been placed).
// Once Completed is true the listing is terminal: CurrentBid and CurrentBidder
// never change again.
type AuctionListing struct {
	ID            uuid.UUID       `json:"id"             db:"id"`
	Title         string          `json:"title"          db:"title"`
	Details       string          `json:"details"        db:"details"`
	CurrentBid    decimal.Decimal `json:"current_bid"    db:"current_bid"`
	CurrentBidder *uuid.UUID      `json:"current_bidder" db:"current_bidder"` // NULL = no bid yet
	Completed     bool            `json:"completed"      db:"completed"`
	EndsAt        time.Time       `json:"ends_at"        db:"ends_at"`   // scheduled close
	ClosedAt      *time.Time      `json:"closed_at"      db:"closed_at"` // actual close, set at settlement
	ClosedBy      *string         `json:"closed_by"      db:"closed_by"` // admin id or "scheduler"
	CreatedBy     uuid.UUID       `json:"created_by"     db:"created_by"`
	CreatedAt     time.Time       `json:"created_at"     db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"     db:"updated_at"`
}

// IsOpen returns true while the listing accepts bids.
func (l *AuctionListing) IsOpen() bool {
	return !l.Completed
}

// HasBidder returns true when at least one bid has been accepted.
func (l *AuctionListing) HasBidder() bool {
	return l.CurrentBidder != nil && *l.CurrentBidder != uuid.Nil
}

// IsCurrentBidder reports whether the given account already holds the
// current bid on this listing.
func (l *AuctionListing) IsCurrentBidder(accountID uuid.UUID) bool {
	return l.CurrentBidder != nil && *l.CurrentBidder == accountID
}

// CanAccept checks the listing-local bid preconditions, in order:
// the listing must be open, the amount must be a positive whole number of
// points, and the amount must strictly exceed the current bid.  Ties are
// rejected — a tie would make the escrow swap ambiguous.
//
// Caller-local preconditions (account existence, self-raise, funds) are
// checked by the bid engine after locking the bidder's account.
func (l *AuctionListing) CanAccept(amount decimal.Decimal) error {
	if l.Completed {
		return ErrAuctionClosed
	}
	if !amount.IsPositive() || !amount.IsInteger() {
		return ErrInvalidBid
	}
	if amount.LessThanOrEqual(l.CurrentBid) {
		return ErrBidTooLow
	}
	return nil
}

// TimeLeft returns the duration until the scheduled close, or 0 if the
// scheduled close has already passed.
func (l *AuctionListing) TimeLeft() time.Duration {
	remaining := time.Until(l.EndsAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ──────────────────────────────────────────────────────────────────────────────
// ListingSummary — read model for list endpoints and WS broadcasts
// ──────────────────────────────────────────────────────────────────────────────

// ListingSummary is a derived, read-only view of a listing.
type ListingSummary struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Details       string          `json:"details"`
	CurrentBid    decimal.Decimal `json:"current_bid"`
	HasBidder     bool            `json:"has_bidder"`
	Completed     bool            `json:"completed"`
	EndsAt        time.Time       `json:"ends_at"`
	TimeLeftSec   int64           `json:"time_left_sec"`
}

// ToSummary builds a ListingSummary.  The current bidder's identity is
// deliberately omitted from the public view.
func (l *AuctionListing) ToSummary() ListingSummary {
	return ListingSummary{
		ID:          l.ID,
		Title:       l.Title,
		Details:     l.Details,
		CurrentBid:  l.CurrentBid,
		HasBidder:   l.HasBidder(),
		Completed:   l.Completed,
		EndsAt:      l.EndsAt,
		TimeLeftSec: int64(l.TimeLeft().Seconds()),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// PlaceBidRequest — value object used by BidService
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBidRequest carries the validated inputs for placing a bid.
type PlaceBidRequest struct {
	ListingID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
}
