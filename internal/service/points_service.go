package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/loyaltyworks/auctionhouse/internal/config"
	"github.com/loyaltyworks/auctionhouse/internal/domain"
	"github.com/loyaltyworks/auctionhouse/internal/repository"
	"github.com/shopspring/decimal"
)

// PointsService exposes points balances and the ledger, and performs
// back-office balance adjustments.
type PointsService struct {
	db          *sqlx.DB
	accountRepo *repository.AccountRepository
	cfg         *config.Config
}

// NewPointsService creates a PointsService.
func NewPointsService(db *sqlx.DB, accountRepo *repository.AccountRepository, cfg *config.Config) *PointsService {
	return &PointsService{db: db, accountRepo: accountRepo, cfg: cfg}
}

// GetBalance returns the user's points account.
func (s *PointsService) GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	return s.accountRepo.GetByUserID(ctx, userID)
}

// GetEntries returns the user's points ledger, newest first.
func (s *PointsService) GetEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.PointsEntry, int, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.accountRepo.GetEntries(ctx, account.ID, limit, offset)
}

// AdjustPoints applies a signed back-office correction to a user's balance.
// The amount must be a whole number; a negative amount may not take the
// balance below zero.  The balance change and its ledger entry commit
// atomically, under the same row lock the engines use.
func (s *PointsService) AdjustPoints(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reason string) (*domain.Account, error) {
	if amount.IsZero() || !amount.IsInteger() {
		return nil, domain.ErrInvalidAdjustment
	}

	var adjusted *domain.Account

	err := withRetry(ctx, s.cfg.Auction.BidRetryAttempts, s.cfg.Auction.BidRetryBackoff, func() error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("points_service.AdjustPoints: begin tx: %w", err)
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback()
			}
		}()

		account, err := s.accountRepo.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		newBalance := account.Points.Add(amount)
		if newBalance.IsNegative() {
			err = domain.ErrInsufficientPoints
			return err
		}

		if amount.IsPositive() {
			err = s.accountRepo.Credit(ctx, tx, account.ID, amount)
		} else {
			err = s.accountRepo.Debit(ctx, tx, account.ID, amount.Neg())
		}
		if err != nil {
			return err
		}

		entry := &domain.PointsEntry{
			ID:            uuid.New(),
			AccountID:     account.ID,
			Type:          domain.EntryAdjustment,
			Amount:        amount,
			BalanceBefore: account.Points,
			BalanceAfter:  newBalance,
			Description:   reason,
			CreatedAt:     time.Now().UTC(),
		}
		if err = s.accountRepo.LogEntry(ctx, tx, entry); err != nil {
			return err
		}

		if err = tx.Commit(); err != nil {
			return fmt.Errorf("points_service.AdjustPoints: commit: %w", err)
		}

		account.Points = newBalance
		adjusted = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}
