package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/loyaltyworks/auctionhouse/internal/domain"
	"github.com/shopspring/decimal"
)

// ListingRepository handles all database operations for AuctionListings.
//
// The listing row is the serialization point for the bid and settlement
// engines: every mutation path first takes a FOR UPDATE lock on the row via
// GetByIDForUpdate, so concurrent operations on one listing execute one at
// a time against a consistent snapshot.
type ListingRepository struct {
	db *sqlx.DB
}

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Create inserts a new listing row.
func (r *ListingRepository) Create(ctx context.Context, l *domain.AuctionListing) error {
	query := `
		INSERT INTO auction_listings
			(id, title, details, current_bid, current_bidder, completed, ends_at, created_by, created_at, updated_at)
		VALUES
			(:id, :title, :details, :current_bid, :current_bidder, :completed, :ends_at, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, l); err != nil {
		return fmt.Errorf("listing_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a listing by its primary key.
func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuctionListing, error) {
	var l domain.AuctionListing
	err := r.db.GetContext(ctx, &l, `SELECT * FROM auction_listings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("listing_repo.GetByID: %w", err)
	}
	return &l, nil
}

// GetByIDForUpdate fetches a listing inside a transaction and locks its row
// until the transaction ends.  Engines must re-validate against the returned
// snapshot — never against a listing read before the lock was taken.
func (r *ListingRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.AuctionListing, error) {
	var l domain.AuctionListing
	err := tx.GetContext(ctx, &l, `SELECT * FROM auction_listings WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("listing_repo.GetByIDForUpdate: %w", err)
	}
	return &l, nil
}

// UpdateBid sets the current bid and bidder inside an existing transaction.
// The WHERE completed = false guard makes a write against a just-settled
// listing fail loudly instead of resurrecting it.
func (r *ListingRepository) UpdateBid(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, amount decimal.Decimal, bidderID uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE auction_listings
		SET current_bid = $1, current_bidder = $2, updated_at = now()
		WHERE id = $3 AND completed = false`,
		amount, bidderID, id)
	if err != nil {
		return fmt.Errorf("listing_repo.UpdateBid: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAuctionClosed
	}
	return nil
}

// Close marks the listing completed inside an existing transaction, recording
// the actual closure time and who closed it.  The scheduled ends_at column is
// left untouched so "when should this end" and "when did this end" stay
// distinguishable.
func (r *ListingRepository) Close(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, closedAt time.Time, closedBy string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE auction_listings
		SET completed = true, closed_at = $1, closed_by = $2, updated_at = now()
		WHERE id = $3 AND completed = false`,
		closedAt, closedBy, id)
	if err != nil {
		return fmt.Errorf("listing_repo.Close: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAuctionAlreadyClosed
	}
	return nil
}

// ListOpen returns open listings ordered by scheduled end, soonest first.
func (r *ListingRepository) ListOpen(ctx context.Context, limit, offset int) ([]*domain.AuctionListing, error) {
	var listings []*domain.AuctionListing
	err := r.db.SelectContext(ctx, &listings, `
		SELECT * FROM auction_listings
		WHERE completed = false
		ORDER BY ends_at ASC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing_repo.ListOpen: %w", err)
	}
	return listings, nil
}

// ListCompleted returns settled listings, most recently closed first.
func (r *ListingRepository) ListCompleted(ctx context.Context, limit, offset int) ([]*domain.AuctionListing, error) {
	var listings []*domain.AuctionListing
	err := r.db.SelectContext(ctx, &listings, `
		SELECT * FROM auction_listings
		WHERE completed = true
		ORDER BY closed_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing_repo.ListCompleted: %w", err)
	}
	return listings, nil
}

// ListOpenByBidder returns open listings on which the given account holds the
// current bid (the "items you have bidded on" view).
func (r *ListingRepository) ListOpenByBidder(ctx context.Context, bidderID uuid.UUID) ([]*domain.AuctionListing, error) {
	var listings []*domain.AuctionListing
	err := r.db.SelectContext(ctx, &listings, `
		SELECT * FROM auction_listings
		WHERE completed = false AND current_bidder = $1
		ORDER BY ends_at ASC`,
		bidderID)
	if err != nil {
		return nil, fmt.Errorf("listing_repo.ListOpenByBidder: %w", err)
	}
	return listings, nil
}

// GetExpiredOpen returns open listings whose scheduled end has passed,
// i.e. those due for settlement by the scheduler.
func (r *ListingRepository) GetExpiredOpen(ctx context.Context, now time.Time) ([]*domain.AuctionListing, error) {
	var listings []*domain.AuctionListing
	err := r.db.SelectContext(ctx, &listings, `
		SELECT * FROM auction_listings
		WHERE completed = false AND ends_at <= $1
		ORDER BY ends_at ASC`,
		now)
	if err != nil {
		return nil, fmt.Errorf("listing_repo.GetExpiredOpen: %w", err)
	}
	return listings, nil
}

// List returns a paginated slice of listings, optionally filtered to
// completed or open only.  completed == nil returns all.
// Returns (listings, totalCount, error).
func (r *ListingRepository) List(ctx context.Context, limit, offset int, completed *bool) ([]*domain.AuctionListing, int, error) {
	var listings []*domain.AuctionListing
	var total int

	if completed != nil {
		if err := r.db.GetContext(ctx, &total,
			`SELECT COUNT(*) FROM auction_listings WHERE completed = $1`, *completed); err != nil {
			return nil, 0, fmt.Errorf("listing_repo.List count: %w", err)
		}
		if err := r.db.SelectContext(ctx, &listings, `
			SELECT * FROM auction_listings WHERE completed = $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			*completed, limit, offset); err != nil {
			return nil, 0, fmt.Errorf("listing_repo.List select: %w", err)
		}
	} else {
		if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM auction_listings`); err != nil {
			return nil, 0, fmt.Errorf("listing_repo.List count: %w", err)
		}
		if err := r.db.SelectContext(ctx, &listings, `
			SELECT * FROM auction_listings
			ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset); err != nil {
			return nil, 0, fmt.Errorf("listing_repo.List select: %w", err)
		}
	}
	return listings, total, nil
}

// ── Dashboard helpers ─────────────────────────────────────────────────────────

// ListingStats holds aggregate counts for the back-office dashboard.
type ListingStats struct {
	OpenCount      int             `db:"open_count"       json:"open_count"`
	CompletedCount int             `db:"completed_count"  json:"completed_count"`
	EscrowedPoints decimal.Decimal `db:"escrowed_points"  json:"escrowed_points"`
}

// GetStats aggregates listing counts and the total points currently held in
// escrow across all open listings with a bidder.
func (r *ListingRepository) GetStats(ctx context.Context) (*ListingStats, error) {
	var s ListingStats
	err := r.db.GetContext(ctx, &s, `
		SELECT
			COUNT(*) FILTER (WHERE completed = false)                              AS open_count,
			COUNT(*) FILTER (WHERE completed = true)                               AS completed_count,
			COALESCE(SUM(current_bid) FILTER
				(WHERE completed = false AND current_bidder IS NOT NULL), 0)       AS escrowed_points
		FROM auction_listings`)
	if err != nil {
		return nil, fmt.Errorf("listing_repo.GetStats: %w", err)
	}
	return &s, nil
}
