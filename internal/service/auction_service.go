package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/loyaltyworks/auctionhouse/internal/config"
	"github.com/loyaltyworks/auctionhouse/internal/domain"
	"github.com/loyaltyworks/auctionhouse/internal/repository"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Request types
// ──────────────────────────────────────────────────────────────────────────────

// CreateListingRequest contains the fields required to put an item up for
// auction (back-office operation).
type CreateListingRequest struct {
	Title       string          `json:"title"        binding:"required,min=3,max=200"`
	Details     string          `json:"details"      binding:"required"`
	StartingBid decimal.Decimal `json:"starting_bid" binding:"required"`
	EndsAt      time.Time       `json:"ends_at"      binding:"required"`
}

// ──────────────────────────────────────────────────────────────────────────────
// AuctionService
// ──────────────────────────────────────────────────────────────────────────────

// AuctionService handles listing creation and the read-side queries for both
// the member API and the back-office.
type AuctionService struct {
	listingRepo *repository.ListingRepository
	bidRepo     *repository.BidRepository
	winRepo     *repository.WinRepository
	cfg         *config.Config
	broadcaster Broadcaster // injected after WS Hub is built
}

// NewAuctionService creates an AuctionService.
func NewAuctionService(
	listingRepo *repository.ListingRepository,
	bidRepo *repository.BidRepository,
	winRepo *repository.WinRepository,
	cfg *config.Config,
) *AuctionService {
	return &AuctionService{
		listingRepo: listingRepo,
		bidRepo:     bidRepo,
		winRepo:     winRepo,
		cfg:         cfg,
	}
}

// SetBroadcaster injects the WS Hub dependency post-construction.
func (s *AuctionService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// CreateListing opens a new auction.  The starting bid is the floor the first
// real bid must strictly exceed; no points are escrowed for it and
// CurrentBidder stays NULL until someone bids.
func (s *AuctionService) CreateListing(ctx context.Context, req CreateListingRequest, createdBy uuid.UUID) (*domain.AuctionListing, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Details) == "" {
		return nil, domain.ErrInvalidListing
	}
	if req.StartingBid.IsNegative() || !req.StartingBid.IsInteger() {
		return nil, domain.ErrInvalidListing
	}
	if !req.EndsAt.After(time.Now()) {
		return nil, domain.ErrInvalidListing
	}

	now := time.Now().UTC()
	listing := &domain.AuctionListing{
		ID:         uuid.New(),
		Title:      strings.TrimSpace(req.Title),
		Details:    strings.TrimSpace(req.Details),
		CurrentBid: req.StartingBid,
		Completed:  false,
		EndsAt:     req.EndsAt.UTC(),
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		summary := listing.ToSummary()
		s.broadcaster.BroadcastAuctionCreated(&summary)
	}
	return listing, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────────────────────────

// ListOpen returns public summaries of open listings, ending soonest first.
func (s *AuctionService) ListOpen(ctx context.Context, limit, offset int) ([]domain.ListingSummary, error) {
	listings, err := s.listingRepo.ListOpen(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.ListingSummary, 0, len(listings))
	for _, l := range listings {
		summaries = append(summaries, l.ToSummary())
	}
	return summaries, nil
}

// GetSummary returns the public view of a single listing.
func (s *AuctionService) GetSummary(ctx context.Context, id uuid.UUID) (*domain.ListingSummary, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := listing.ToSummary()
	return &summary, nil
}

// GetListing returns the full listing including bidder identity, for the
// back-office and for the engines.
func (s *AuctionService) GetListing(ctx context.Context, id uuid.UUID) (*domain.AuctionListing, error) {
	return s.listingRepo.GetByID(ctx, id)
}

// MyBids returns the open listings on which the account currently holds the
// leading bid, i.e. where its points are escrowed right now.
func (s *AuctionService) MyBids(ctx context.Context, bidderID uuid.UUID) ([]domain.ListingSummary, error) {
	listings, err := s.listingRepo.ListOpenByBidder(ctx, bidderID)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.ListingSummary, 0, len(listings))
	for _, l := range listings {
		summaries = append(summaries, l.ToSummary())
	}
	return summaries, nil
}

// History returns the account's won auctions, newest first.
func (s *AuctionService) History(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.AuctionWin, int, error) {
	return s.winRepo.ListByOwner(ctx, ownerID, limit, offset)
}

// ListingBids returns every bid on a listing (back-office view).
func (s *AuctionService) ListingBids(ctx context.Context, listingID uuid.UUID) ([]*domain.Bid, error) {
	if _, err := s.listingRepo.GetByID(ctx, listingID); err != nil {
		return nil, err
	}
	return s.bidRepo.ListByListing(ctx, listingID)
}

// AdminList returns listings for the back-office, optionally filtered by
// completion state.
func (s *AuctionService) AdminList(ctx context.Context, limit, offset int, completed *bool) ([]*domain.AuctionListing, int, error) {
	return s.listingRepo.List(ctx, limit, offset, completed)
}
