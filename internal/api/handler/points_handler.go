package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/loyaltyworks/auctionhouse/internal/api/middleware"
	"github.com/loyaltyworks/auctionhouse/internal/domain"
	"github.com/loyaltyworks/auctionhouse/internal/service"
)

// PointsHandler serves the member's points balance and ledger.
type PointsHandler struct {
	pointsSvc *service.PointsService
}

// NewPointsHandler creates a PointsHandler.
func NewPointsHandler(pointsSvc *service.PointsService) *PointsHandler {
	return &PointsHandler{pointsSvc: pointsSvc}
}

// GetBalance godoc
// GET /api/points/balance [JWT]
func (h *PointsHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)

	account, err := h.pointsSvc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_ACCOUNT_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load balance")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"account_id": account.ID,
		"points":     account.Points,
	})
}

// GetEntries godoc
// GET /api/points/entries [JWT] — points ledger, newest first.
func (h *PointsHandler) GetEntries(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)

	entries, total, err := h.pointsSvc.GetEntries(c.Request.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_ACCOUNT_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load entries")
		return
	}
	respondList(c, entries, total, page, limit)
}
