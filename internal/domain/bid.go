package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Bid
// ──────────────────────────────────────────────────────────────────────────────

// Bid is the audit record of one accepted bid.  At most one bid per listing
// has RefundedAt == nil while the listing is open: that is the bid whose
// points are currently escrowed.  When a higher bid displaces it, RefundedAt
// is set in the same transaction that credits the points back.
type Bid struct {
	ID         uuid.UUID       `json:"id"          db:"id"`
	ListingID  uuid.UUID       `json:"listing_id"  db:"listing_id"`
	BidderID   uuid.UUID       `json:"bidder_id"   db:"bidder_id"`
	Amount     decimal.Decimal `json:"amount"      db:"amount"`
	PlacedAt   time.Time       `json:"placed_at"   db:"placed_at"`
	RefundedAt *time.Time      `json:"refunded_at" db:"refunded_at"`
}

// IsEscrowed returns true while this bid's points are still held.
func (b *Bid) IsEscrowed() bool {
	return b.RefundedAt == nil
}

// ──────────────────────────────────────────────────────────────────────────────
// AuctionWin
// ──────────────────────────────────────────────────────────────────────────────

// AuctionWin is the per-winner history record created exactly once at
// settlement.  It is a denormalized copy of the listing at closing time,
// owned by the winning account and never mutated afterwards.
type AuctionWin struct {
	ListingID  uuid.UUID       `json:"listing_id"  db:"listing_id"`
	OwnerID    uuid.UUID       `json:"owner_id"    db:"owner_id"`
	Title      string          `json:"title"       db:"title"`
	Details    string          `json:"details"     db:"details"`
	WinningBid decimal.Decimal `json:"winning_bid" db:"winning_bid"`
	ClosedAt   time.Time       `json:"closed_at"   db:"closed_at"`
}

// SettlementResult is returned by the settlement engine.  Win is nil when
// the auction closed without any bid.
type SettlementResult struct {
	Listing *AuctionListing `json:"listing"`
	Win     *AuctionWin     `json:"win,omitempty"`
}
