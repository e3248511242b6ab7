// Package backoffice builds the admin HTTP surface, served on its own port
// behind an IP whitelist and role-gated JWT auth.
package backoffice

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/loyaltyworks/auctionhouse/internal/api/middleware"
	"github.com/loyaltyworks/auctionhouse/internal/backoffice/handler"
	"github.com/loyaltyworks/auctionhouse/internal/config"
	"github.com/loyaltyworks/auctionhouse/internal/domain"
	"github.com/loyaltyworks/auctionhouse/internal/repository"
	"github.com/loyaltyworks/auctionhouse/internal/service"
	"github.com/loyaltyworks/auctionhouse/internal/ws"
)

// BackofficeDeps bundles every dependency needed for the admin router.
type BackofficeDeps struct {
	AuthSvc       *service.AuthService
	AuctionSvc    *service.AuctionService
	SettlementSvc *service.SettlementService
	PointsSvc     *service.PointsService
	UserRepo      *repository.UserRepository
	AccountRepo   *repository.AccountRepository
	ListingRepo   *repository.ListingRepository
	Hub           *ws.Hub
	Cfg           *config.Config
}

// SetupBackofficeRouter creates the admin Gin engine.
func SetupBackofficeRouter(deps BackofficeDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(ipWhitelistMiddleware(deps.Cfg.Server.BackofficeAllowedIPs))

	dashH := handler.NewDashboardHandler(deps.ListingRepo, deps.AccountRepo, deps.UserRepo, deps.Hub, deps.Cfg)
	auctionH := handler.NewAuctionAdminHandler(deps.AuctionSvc, deps.SettlementSvc, deps.Cfg)
	userH := handler.NewUserAdminHandler(deps.UserRepo, deps.AccountRepo, deps.PointsSvc, deps.Cfg)

	admin := r.Group("/admin")
	admin.Use(middleware.JWTMiddleware(deps.AuthSvc))
	admin.Use(middleware.BackofficeMiddleware())
	admin.Use(readonlyGuard())
	{
		admin.GET("/dashboard", dashH.Dashboard)

		// Auctions
		a := admin.Group("/auctions")
		{
			a.GET("", auctionH.List)
			a.POST("", auctionH.Create)
			a.GET("/:id", auctionH.Detail)
			a.GET("/:id/bids", auctionH.Bids)
			a.POST("/:id/close", auctionH.Close)
		}

		// Users
		u := admin.Group("/users")
		{
			u.GET("", userH.List)
			u.GET("/:id", userH.Detail)
			u.POST("/:id/suspend", userH.Suspend)
			u.POST("/:id/activate", userH.Activate)
			u.POST("/:id/points", userH.AdjustPoints)
			u.POST("/:id/role", middleware.AdminOnlyMiddleware(), userH.SetRole)
		}
	}

	return r
}

// ── IP whitelist middleware ───────────────────────────────────────────────────

// ipWhitelistMiddleware blocks requests from IPs not in the allowlist.
// allowedIPs is a comma-separated string; empty means allow all.
func ipWhitelistMiddleware(allowedIPs string) gin.HandlerFunc {
	if allowedIPs == "" {
		return func(c *gin.Context) { c.Next() } // dev mode: no restriction
	}

	allowed := make(map[string]bool)
	for _, ip := range strings.Split(allowedIPs, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			allowed[ip] = true
		}
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !allowed[clientIP] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "access denied: your IP is not whitelisted",
			})
			return
		}
		c.Next()
	}
}

// ── Readonly guard ────────────────────────────────────────────────────────────

// readonlyGuard restricts the readonly role to GET requests.  Runs after
// JWTMiddleware and BackofficeMiddleware, so the role is already verified.
func readonlyGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if middleware.GetRole(c) == string(domain.RoleReadOnly) && c.Request.Method != http.MethodGet {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}
