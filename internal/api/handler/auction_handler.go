package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/loyaltyworks/auctionhouse/internal/api/middleware"
	"github.com/loyaltyworks/auctionhouse/internal/domain"
	"github.com/loyaltyworks/auctionhouse/internal/service"
	"github.com/shopspring/decimal"
)

// AuctionHandler serves the public auction views and the bid endpoint.
type AuctionHandler struct {
	auctionSvc *service.AuctionService
	bidSvc     *service.BidService
}

// NewAuctionHandler creates an AuctionHandler.
func NewAuctionHandler(auctionSvc *service.AuctionService, bidSvc *service.BidService) *AuctionHandler {
	return &AuctionHandler{auctionSvc: auctionSvc, bidSvc: bidSvc}
}

// List godoc
// GET /api/auctions — open listings, ending soonest first.
func (h *AuctionHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)

	summaries, err := h.auctionSvc.ListOpen(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list auctions")
		return
	}
	respondList(c, summaries, len(summaries), page, limit)
}

// GetByID godoc
// GET /api/auctions/:id — public view of one listing.
func (h *AuctionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id format")
		return
	}

	summary, err := h.auctionSvc.GetSummary(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_AUCTION_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load auction")
		return
	}
	respondSuccess(c, http.StatusOK, summary)
}

// PlaceBid godoc
// POST /api/auctions/:id/bid [JWT]
// Body: {"amount":"150"}
func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	userID := middleware.GetUserID(c)

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id format")
		return
	}

	var body struct {
		Amount string `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "amount must be a decimal string")
		return
	}

	bid, err := h.bidSvc.PlaceBid(c.Request.Context(), domain.PlaceBidRequest{
		ListingID: listingID,
		BidderID:  userID,
		Amount:    amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrListingNotFound):
			respondError(c, http.StatusNotFound, "ERR_AUCTION_NOT_FOUND", err.Error())
		case errors.Is(err, domain.ErrAuctionClosed):
			respondError(c, http.StatusConflict, "ERR_AUCTION_CLOSED", err.Error())
		case errors.Is(err, domain.ErrInvalidBid):
			respondError(c, http.StatusBadRequest, "ERR_INVALID_BID", err.Error())
		case errors.Is(err, domain.ErrBidTooLow):
			respondError(c, http.StatusBadRequest, "ERR_BID_TOO_LOW", err.Error())
		case errors.Is(err, domain.ErrAccountNotFound):
			respondError(c, http.StatusNotFound, "ERR_ACCOUNT_NOT_FOUND", err.Error())
		case errors.Is(err, domain.ErrInvalidBidder):
			respondError(c, http.StatusConflict, "ERR_ALREADY_LEADING", err.Error())
		case errors.Is(err, domain.ErrInsufficientPoints):
			respondError(c, http.StatusPaymentRequired, "ERR_INSUFFICIENT_POINTS", err.Error())
		case errors.Is(err, domain.ErrTransient):
			respondError(c, http.StatusServiceUnavailable, "ERR_TRY_AGAIN", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not place bid")
		}
		return
	}
	respondSuccess(c, http.StatusCreated, bid)
}

// MyBids godoc
// GET /api/auctions/my-bids [JWT] — open listings the caller currently leads.
func (h *AuctionHandler) MyBids(c *gin.Context) {
	userID := middleware.GetUserID(c)

	summaries, err := h.auctionSvc.MyBids(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list bids")
		return
	}
	respondSuccess(c, http.StatusOK, summaries)
}

// History godoc
// GET /api/auctions/history [JWT] — the caller's won auctions.
func (h *AuctionHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)

	wins, total, err := h.auctionSvc.History(c.Request.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list history")
		return
	}
	respondList(c, wins, total, page, limit)
}
