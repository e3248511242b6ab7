package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/loyaltyworks/auctionhouse/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountRepository handles points-account balances and the points ledger.
//
// Balance mutations (Debit, Credit) are plain UPDATEs: they assume the caller
// already holds a FOR UPDATE lock on the account row via GetForUpdate inside
// the same transaction.  Calling them without the lock breaks the escrow
// invariants, so they deliberately take a *sqlx.Tx and not the pool.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account row, typically at registration.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, points, created_at, updated_at)
		VALUES (:id, :user_id, :points, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("account_repo.Create: %w", err)
	}
	return nil
}

// CreateTx inserts a new account row inside an existing transaction.
func (r *AccountRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, a *domain.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, points, created_at, updated_at)
		VALUES (:id, :user_id, :points, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("account_repo.CreateTx: %w", err)
	}
	return nil
}

// GetByUserID fetches the points account of a user.
func (r *AccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	var a domain.Account
	err := r.db.GetContext(ctx, &a, `SELECT * FROM accounts WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("account_repo.GetByUserID: %w", err)
	}
	return &a, nil
}

// GetForUpdate fetches the account inside a transaction and locks its row
// until the transaction ends.  All balance checks and mutations in the bid
// and settlement engines go through this snapshot.
func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (*domain.Account, error) {
	var a domain.Account
	err := tx.GetContext(ctx, &a, `SELECT * FROM accounts WHERE user_id = $1 FOR UPDATE`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("account_repo.GetForUpdate: %w", err)
	}
	return &a, nil
}

// Debit subtracts amount from the account balance.  Caller must hold the row
// lock and have verified the balance covers the amount.
func (r *AccountRepository) Debit(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, amount decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts SET points = points - $1, updated_at = now()
		WHERE id = $2`,
		amount, accountID)
	if err != nil {
		return fmt.Errorf("account_repo.Debit: %w", err)
	}
	return nil
}

// Credit adds amount to the account balance.  Caller must hold the row lock.
func (r *AccountRepository) Credit(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, amount decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts SET points = points + $1, updated_at = now()
		WHERE id = $2`,
		amount, accountID)
	if err != nil {
		return fmt.Errorf("account_repo.Credit: %w", err)
	}
	return nil
}

// LogEntry writes a ledger entry inside an existing transaction, so the
// entry commits or rolls back together with the balance change it records.
func (r *AccountRepository) LogEntry(ctx context.Context, tx *sqlx.Tx, e *domain.PointsEntry) error {
	query := `
		INSERT INTO points_entries
			(id, account_id, type, amount, balance_before, balance_after, listing_id, description, created_at)
		VALUES
			(:id, :account_id, :type, :amount, :balance_before, :balance_after, :listing_id, :description, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("account_repo.LogEntry: %w", err)
	}
	return nil
}

// GetEntries returns the account's ledger, newest first.
// Returns (entries, totalCount, error).
func (r *AccountRepository) GetEntries(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.PointsEntry, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM points_entries WHERE account_id = $1`, accountID); err != nil {
		return nil, 0, fmt.Errorf("account_repo.GetEntries count: %w", err)
	}

	var entries []*domain.PointsEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM points_entries
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("account_repo.GetEntries: %w", err)
	}
	return entries, total, nil
}

// TotalPoints sums all account balances, for the back-office dashboard.
func (r *AccountRepository) TotalPoints(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(points), 0) FROM accounts`)
	if err != nil {
		return decimal.Zero, fmt.Errorf("account_repo.TotalPoints: %w", err)
	}
	return total, nil
}
