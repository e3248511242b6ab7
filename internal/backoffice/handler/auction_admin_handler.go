package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/loyaltyworks/auctionhouse/internal/api/middleware"
	"github.com/loyaltyworks/auctionhouse/internal/config"
	"github.com/loyaltyworks/auctionhouse/internal/domain"
	"github.com/loyaltyworks/auctionhouse/internal/service"
)

// AuctionAdminHandler serves /admin/auctions endpoints.
type AuctionAdminHandler struct {
	auctionSvc    *service.AuctionService
	settlementSvc *service.SettlementService
	cfg           *config.Config
}

// NewAuctionAdminHandler creates an AuctionAdminHandler.
func NewAuctionAdminHandler(
	auctionSvc *service.AuctionService,
	settlementSvc *service.SettlementService,
	cfg *config.Config,
) *AuctionAdminHandler {
	return &AuctionAdminHandler{
		auctionSvc:    auctionSvc,
		settlementSvc: settlementSvc,
		cfg:           cfg,
	}
}

// Create godoc
// POST /admin/auctions
// Body: {"title":"...","details":"...","starting_bid":"100","ends_at":"2026-09-01T12:00:00Z"}
func (h *AuctionAdminHandler) Create(c *gin.Context) {
	var req service.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	createdBy := middleware.GetUserID(c)
	if createdBy == uuid.Nil {
		respondError(c, http.StatusUnauthorized, "ERR_UNAUTHORIZED", "missing admin identity")
		return
	}

	listing, err := h.auctionSvc.CreateListing(c.Request.Context(), req, createdBy)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidListing) {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_LISTING", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusCreated, listing)
}

// List godoc
// GET /admin/auctions?page=1&limit=50&completed=true
func (h *AuctionAdminHandler) List(c *gin.Context) {
	page, limit := adminPagination(c)

	var completed *bool
	if v := c.Query("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "completed must be true or false")
			return
		}
		completed = &b
	}

	listings, total, err := h.auctionSvc.AdminList(c.Request.Context(), limit, (page-1)*limit, completed)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondList(c, listings, total, page, limit)
}

// Detail godoc
// GET /admin/auctions/:id — full listing including bidder identity.
func (h *AuctionAdminHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	listing, err := h.auctionSvc.GetListing(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, listing)
}

// Bids godoc
// GET /admin/auctions/:id/bids — full bid trail for one listing.
func (h *AuctionAdminHandler) Bids(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	bids, err := h.auctionSvc.ListingBids(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, bids)
}

// Close godoc
// POST /admin/auctions/:id/close — settle a listing ahead of schedule.
func (h *AuctionAdminHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid auction id")
		return
	}

	closedBy := "admin:" + middleware.GetUserID(c).String()
	result, err := h.settlementSvc.CloseAuction(c.Request.Context(), id, closedBy)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrListingNotFound):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
		case errors.Is(err, domain.ErrAuctionAlreadyClosed):
			respondError(c, http.StatusConflict, "ERR_ALREADY_CLOSED", err.Error())
		case errors.Is(err, domain.ErrTransient):
			respondError(c, http.StatusServiceUnavailable, "ERR_TRY_AGAIN", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		}
		return
	}
	respondSuccess(c, http.StatusOK, result)
}
