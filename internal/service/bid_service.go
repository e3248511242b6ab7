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
)

// ──────────────────────────────────────────────────────────────────────────────
// Interfaces injected into BidService to avoid import cycles
// ──────────────────────────────────────────────────────────────────────────────

// Broadcaster is the minimal interface the engines need from the WS hub.
// Implemented by ws.Hub.
type Broadcaster interface {
	BroadcastBidPlaced(summary *domain.ListingSummary)
	BroadcastAuctionClosed(listingID uuid.UUID, hadWinner bool)
	BroadcastAuctionCreated(summary *domain.ListingSummary)
}

// ──────────────────────────────────────────────────────────────────────────────
// BidService
// ──────────────────────────────────────────────────────────────────────────────

// BidService orchestrates bid placement.  All points movement happens inside
// a single PostgreSQL transaction: the new bidder's escrow debit, the listing
// update, and the previous bidder's refund commit together or not at all.
type BidService struct {
	db          *sqlx.DB
	listingRepo *repository.ListingRepository
	accountRepo *repository.AccountRepository
	bidRepo     *repository.BidRepository
	cfg         *config.Config
	broadcaster Broadcaster // injected after WS Hub is built
}

// NewBidService creates a BidService.
func NewBidService(
	db *sqlx.DB,
	listingRepo *repository.ListingRepository,
	accountRepo *repository.AccountRepository,
	bidRepo *repository.BidRepository,
	cfg *config.Config,
) *BidService {
	return &BidService{
		db:          db,
		listingRepo: listingRepo,
		accountRepo: accountRepo,
		bidRepo:     bidRepo,
		cfg:         cfg,
	}
}

// SetBroadcaster injects the WS Hub dependency post-construction.
func (s *BidService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// ──────────────────────────────────────────────────────────────────────────────
// PlaceBid
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBid validates the request against a locked snapshot of the listing,
// escrows the bidder's points, installs them as the current bidder, and
// refunds the displaced bidder — all inside one PostgreSQL transaction.
//
// The listing row is locked first, so all bids on one listing serialize and
// each validates against the latest committed state.  Serialization conflicts
// and deadlocks are retried with backoff; when the retry budget runs out the
// caller gets domain.ErrTransient and no state has changed.
//
// Checks run in a fixed order so a request failing several ways always
// reports the same error: listing exists, listing open, amount beats the
// current bid, bidder account exists, bidder does not already hold the bid,
// bidder can afford the amount.
func (s *BidService) PlaceBid(ctx context.Context, req domain.PlaceBidRequest) (*domain.Bid, error) {
	// Malformed amounts never reach the store.
	if !req.Amount.IsInteger() || !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidBid
	}

	var bid *domain.Bid
	var summary domain.ListingSummary

	err := withRetry(ctx, s.cfg.Auction.BidRetryAttempts, s.cfg.Auction.BidRetryBackoff, func() error {
		b, sum, err := s.placeBidTx(ctx, req)
		if err != nil {
			return err
		}
		bid, summary = b, sum
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit: push the new price to subscribers.  The summary omits the
	// bidder's identity; only the engine and the back-office see who holds it.
	if s.broadcaster != nil {
		s.broadcaster.BroadcastBidPlaced(&summary)
	}
	return bid, nil
}

// placeBidTx is one complete attempt: begin, validate, move points, commit.
func (s *BidService) placeBidTx(ctx context.Context, req domain.PlaceBidRequest) (*domain.Bid, domain.ListingSummary, error) {
	var none domain.ListingSummary

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, none, fmt.Errorf("bid_service.PlaceBid: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// ── 1. Lock the listing — the serialization point for this auction ───────
	listing, err := s.listingRepo.GetByIDForUpdate(ctx, tx, req.ListingID)
	if err != nil {
		return nil, none, err
	}

	// ── 2. Validate bid against the locked snapshot ──────────────────────────
	if err = listing.CanAccept(req.Amount); err != nil {
		return nil, none, err
	}

	// ── 3. Lock the bidder's account ─────────────────────────────────────────
	account, err := s.accountRepo.GetForUpdate(ctx, tx, req.BidderID)
	if err != nil {
		return nil, none, err
	}
	if listing.IsCurrentBidder(req.BidderID) {
		err = domain.ErrInvalidBidder
		return nil, none, err
	}
	if !account.CanAfford(req.Amount) {
		err = domain.ErrInsufficientPoints
		return nil, none, err
	}

	now := time.Now().UTC()

	// ── 4. Escrow the new bidder's points ────────────────────────────────────
	if err = s.accountRepo.Debit(ctx, tx, account.ID, req.Amount); err != nil {
		return nil, none, err
	}
	listingID := listing.ID
	holdEntry := &domain.PointsEntry{
		ID:            uuid.New(),
		AccountID:     account.ID,
		Type:          domain.EntryBidHold,
		Amount:        req.Amount,
		BalanceBefore: account.Points,
		BalanceAfter:  account.Points.Sub(req.Amount),
		ListingID:     &listingID,
		Description:   fmt.Sprintf("Bid placed on %q", listing.Title),
		CreatedAt:     now,
	}
	if err = s.accountRepo.LogEntry(ctx, tx, holdEntry); err != nil {
		return nil, none, err
	}

	// ── 5. Refund the displaced bidder, if any ───────────────────────────────
	if listing.HasBidder() {
		prev, prevErr := s.accountRepo.GetForUpdate(ctx, tx, *listing.CurrentBidder)
		if prevErr != nil {
			err = fmt.Errorf("bid_service.PlaceBid: lock previous bidder: %w", prevErr)
			return nil, none, err
		}
		if err = s.accountRepo.Credit(ctx, tx, prev.ID, listing.CurrentBid); err != nil {
			return nil, none, err
		}
		refundEntry := &domain.PointsEntry{
			ID:            uuid.New(),
			AccountID:     prev.ID,
			Type:          domain.EntryBidRefund,
			Amount:        listing.CurrentBid,
			BalanceBefore: prev.Points,
			BalanceAfter:  prev.Points.Add(listing.CurrentBid),
			ListingID:     &listingID,
			Description:   fmt.Sprintf("Outbid on %q", listing.Title),
			CreatedAt:     now,
		}
		if err = s.accountRepo.LogEntry(ctx, tx, refundEntry); err != nil {
			return nil, none, err
		}
		if err = s.bidRepo.MarkRefunded(ctx, tx, listing.ID, *listing.CurrentBidder); err != nil {
			return nil, none, err
		}
	}

	// ── 6. Install the new bid on the listing ────────────────────────────────
	if err = s.listingRepo.UpdateBid(ctx, tx, listing.ID, req.Amount, req.BidderID); err != nil {
		return nil, none, err
	}

	// ── 7. Persist the bid audit row ─────────────────────────────────────────
	bid := &domain.Bid{
		ID:        uuid.New(),
		ListingID: listing.ID,
		BidderID:  req.BidderID,
		Amount:    req.Amount,
		PlacedAt:  now,
	}
	if err = s.bidRepo.Create(ctx, tx, bid); err != nil {
		return nil, none, err
	}

	// ── 8. Commit ────────────────────────────────────────────────────────────
	if err = tx.Commit(); err != nil {
		return nil, none, fmt.Errorf("bid_service.PlaceBid: commit: %w", err)
	}

	listing.CurrentBid = req.Amount
	bidderID := req.BidderID
	listing.CurrentBidder = &bidderID
	return bid, listing.ToSummary(), nil
}
