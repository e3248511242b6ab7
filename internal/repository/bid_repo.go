package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/loyaltyworks/auctionhouse/internal/domain"
)

// BidRepository handles bid audit rows.  Writes happen only inside the bid
// engine's transaction, alongside the escrow balance moves they record.
type BidRepository struct {
	db *sqlx.DB
}

// NewBidRepository creates a new BidRepository.
func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create inserts a bid row inside an existing transaction.
func (r *BidRepository) Create(ctx context.Context, tx *sqlx.Tx, b *domain.Bid) error {
	query := `
		INSERT INTO bids (id, listing_id, bidder_id, amount, placed_at, refunded_at)
		VALUES (:id, :listing_id, :bidder_id, :amount, :placed_at, :refunded_at)`
	if _, err := tx.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("bid_repo.Create: %w", err)
	}
	return nil
}

// MarkRefunded stamps the displaced bidder's escrowed bid on the listing.
// The refunded_at IS NULL guard makes the stamp idempotent within a listing:
// each bid can be refunded at most once.
func (r *BidRepository) MarkRefunded(ctx context.Context, tx *sqlx.Tx, listingID, bidderID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bids SET refunded_at = now()
		WHERE listing_id = $1 AND bidder_id = $2 AND refunded_at IS NULL`,
		listingID, bidderID)
	if err != nil {
		return fmt.Errorf("bid_repo.MarkRefunded: %w", err)
	}
	return nil
}

// ListByListing returns all bids on a listing, newest first.
func (r *BidRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	err := r.db.SelectContext(ctx, &bids, `
		SELECT * FROM bids
		WHERE listing_id = $1
		ORDER BY placed_at DESC`,
		listingID)
	if err != nil {
		return nil, fmt.Errorf("bid_repo.ListByListing: %w", err)
	}
	return bids, nil
}

// CountByBidder returns how many bids the account has placed in total.
func (r *BidRepository) CountByBidder(ctx context.Context, bidderID uuid.UUID) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM bids WHERE bidder_id = $1`, bidderID)
	if err != nil {
		return 0, fmt.Errorf("bid_repo.CountByBidder: %w", err)
	}
	return n, nil
}
