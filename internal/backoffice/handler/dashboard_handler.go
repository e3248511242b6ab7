package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/loyaltyworks/auctionhouse/internal/config"
	"github.com/loyaltyworks/auctionhouse/internal/repository"
	"github.com/loyaltyworks/auctionhouse/internal/ws"
)

// DashboardHandler serves the /admin/dashboard overview.
type DashboardHandler struct {
	listingRepo *repository.ListingRepository
	accountRepo *repository.AccountRepository
	userRepo    *repository.UserRepository
	hub         *ws.Hub
	cfg         *config.Config
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(
	listingRepo *repository.ListingRepository,
	accountRepo *repository.AccountRepository,
	userRepo *repository.UserRepository,
	hub *ws.Hub,
	cfg *config.Config,
) *DashboardHandler {
	return &DashboardHandler{
		listingRepo: listingRepo,
		accountRepo: accountRepo,
		userRepo:    userRepo,
		hub:         hub,
		cfg:         cfg,
	}
}

// Dashboard godoc
// GET /admin/dashboard — listing counts, escrow totals, user count, and the
// number of live WS connections.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.listingRepo.GetStats(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	totalPoints, err := h.accountRepo.TotalPoints(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	userCount, err := h.userRepo.Count(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	connected := 0
	if h.hub != nil {
		connected = h.hub.ConnectedCount()
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"auctions":     stats,
		"total_points": totalPoints,
		"user_count":   userCount,
		"ws_connected": connected,
		"environment":  h.cfg.Server.Env,
	})
}
