package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/loyaltyworks/auctionhouse/internal/domain"
)

// WinRepository handles per-winner auction history records.
type WinRepository struct {
	db *sqlx.DB
}

// NewWinRepository creates a new WinRepository.
func NewWinRepository(db *sqlx.DB) *WinRepository {
	return &WinRepository{db: db}
}

// Create inserts a win record inside the settlement transaction.  listing_id
// is the primary key, so a duplicate settlement attempt fails at the store
// level even if every application guard were bypassed.
func (r *WinRepository) Create(ctx context.Context, tx *sqlx.Tx, w *domain.AuctionWin) error {
	query := `
		INSERT INTO auction_wins (listing_id, owner_id, title, details, winning_bid, closed_at)
		VALUES (:listing_id, :owner_id, :title, :details, :winning_bid, :closed_at)`
	if _, err := tx.NamedExecContext(ctx, query, w); err != nil {
		return fmt.Errorf("win_repo.Create: %w", err)
	}
	return nil
}

// ListByOwner returns the account's won auctions, most recent first.
// Returns (wins, totalCount, error).
func (r *WinRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.AuctionWin, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM auction_wins WHERE owner_id = $1`, ownerID); err != nil {
		return nil, 0, fmt.Errorf("win_repo.ListByOwner count: %w", err)
	}

	var wins []*domain.AuctionWin
	err := r.db.SelectContext(ctx, &wins, `
		SELECT * FROM auction_wins
		WHERE owner_id = $1
		ORDER BY closed_at DESC
		LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("win_repo.ListByOwner: %w", err)
	}
	return wins, total, nil
}
