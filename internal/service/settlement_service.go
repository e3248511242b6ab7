package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/loyaltyworks/auctionhouse/internal/config"
	"github.com/loyaltyworks/auctionhouse/internal/domain"
	"github.com/loyaltyworks/auctionhouse/internal/repository"
)

// SettlementService closes auctions: it marks the listing completed and, when
// a bidder holds the listing, converts their escrowed points into a win
// record.  The escrowed points are consumed — the winner pays what they bid
// and receives the item; nothing is credited back.
type SettlementService struct {
	db          *sqlx.DB
	listingRepo *repository.ListingRepository
	winRepo     *repository.WinRepository
	cfg         *config.Config
	broadcaster Broadcaster // injected after WS Hub is built
}

// NewSettlementService builds a SettlementService.
func NewSettlementService(
	db *sqlx.DB,
	listingRepo *repository.ListingRepository,
	winRepo *repository.WinRepository,
	cfg *config.Config,
) *SettlementService {
	return &SettlementService{
		db:          db,
		listingRepo: listingRepo,
		winRepo:     winRepo,
		cfg:         cfg,
	}
}

// SetBroadcaster injects the WS Hub dependency post-construction.
func (s *SettlementService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// ──────────────────────────────────────────────────────────────────────────────
// CloseAuction — settle a single listing
// ──────────────────────────────────────────────────────────────────────────────

// CloseAuction settles one listing.  closedBy records who triggered the
// closure ("scheduler" or an admin identifier) for the audit trail.
//
// The listing row is locked before the terminal-state check, so two
// concurrent closures cannot both succeed: the loser of the race gets
// domain.ErrAuctionAlreadyClosed and at most one win record ever exists.
// Closing a listing with no bidder completes it with no winner.
func (s *SettlementService) CloseAuction(ctx context.Context, listingID uuid.UUID, closedBy string) (*domain.SettlementResult, error) {
	var result *domain.SettlementResult

	err := withRetry(ctx, s.cfg.Auction.BidRetryAttempts, s.cfg.Auction.BidRetryBackoff, func() error {
		res, err := s.closeAuctionTx(ctx, listingID, closedBy)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastAuctionClosed(listingID, result.Win != nil)
	}
	return result, nil
}

// closeAuctionTx is one complete settlement attempt.
func (s *SettlementService) closeAuctionTx(ctx context.Context, listingID uuid.UUID, closedBy string) (*domain.SettlementResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.CloseAuction: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// ── 1. Lock the listing ──────────────────────────────────────────────────
	listing, err := s.listingRepo.GetByIDForUpdate(ctx, tx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Completed {
		err = domain.ErrAuctionAlreadyClosed
		return nil, err
	}

	// ── 2. Mark it completed ─────────────────────────────────────────────────
	now := time.Now().UTC()
	if err = s.listingRepo.Close(ctx, tx, listing.ID, now, closedBy); err != nil {
		return nil, err
	}
	listing.Completed = true
	listing.ClosedAt = &now
	listing.ClosedBy = &closedBy

	// ── 3. Record the win, if a bidder holds the listing ─────────────────────
	var win *domain.AuctionWin
	if listing.HasBidder() {
		win = &domain.AuctionWin{
			ListingID:  listing.ID,
			OwnerID:    *listing.CurrentBidder,
			Title:      listing.Title,
			Details:    listing.Details,
			WinningBid: listing.CurrentBid,
			ClosedAt:   now,
		}
		if err = s.winRepo.Create(ctx, tx, win); err != nil {
			return nil, err
		}
	}

	// ── 4. Commit ────────────────────────────────────────────────────────────
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("settlement_service.CloseAuction: commit: %w", err)
	}

	return &domain.SettlementResult{Listing: listing, Win: win}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// CloseExpired — called by the Scheduler every tick
// ──────────────────────────────────────────────────────────────────────────────

// CloseExpired settles every open listing whose scheduled end has passed.
// A single failing listing does NOT abort the others.  A listing another
// worker settled between the fetch and the lock is skipped silently.
func (s *SettlementService) CloseExpired(ctx context.Context) error {
	listings, err := s.listingRepo.GetExpiredOpen(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("settlement_service.CloseExpired: fetch: %w", err)
	}

	for _, l := range listings {
		if _, err := s.CloseAuction(ctx, l.ID, "scheduler"); err != nil {
			if domain.IsConflict(err) {
				continue // already settled by a concurrent closer
			}
			slog.Error("settlement failed", "listing_id", l.ID, "error", err)
			// Continue: do not block other listings because one failed.
		}
	}
	return nil
}
