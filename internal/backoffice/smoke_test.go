// Role-gate smoke tests for the back-office router.  No database needed:
// tokens are signed with the test secret and the middleware chain is
// exercised up to (but not into) the repository layer.
package backoffice_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/loyaltyworks/auctionhouse/internal/backoffice"
	"github.com/loyaltyworks/auctionhouse/internal/config"
	"github.com/loyaltyworks/auctionhouse/internal/service"
)

func adminTestCfg() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Env:            "development",
			BackofficePort: "8081",
		},
		JWT: config.JWTConfig{
			AccessSecret:  "test-access-secret-abcdefghijklmnop",
			RefreshSecret: "test-refresh-secret-abcdefghijklmnop",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    30 * 24 * time.Hour,
		},
	}
}

func buildAdminRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	return backoffice.SetupBackofficeRouter(backoffice.BackofficeDeps{
		AuthSvc: service.NewAuthService(nil, nil, nil, cfg),
		Cfg:     cfg,
	})
}

// signAccessToken mints a token the way the auth service does, so the
// middleware under test accepts it.
func signAccessToken(t *testing.T, cfg *config.Config, role string) string {
	t.Helper()
	now := time.Now().UTC()
	claims := service.AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWT.AccessTTL)),
		},
		Role:      role,
		TokenType: "access",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(cfg.JWT.AccessSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func adminDo(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAdminRoutes_NoToken_Returns401(t *testing.T) {
	cfg := adminTestCfg()
	h := buildAdminRouter(t, cfg)

	for _, path := range []string{"/admin/dashboard", "/admin/auctions", "/admin/users"} {
		rr := adminDo(t, h, http.MethodGet, path, "")
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token = %d, want 401", path, rr.Code)
		}
	}
}

func TestAdminRoutes_MemberRole_Returns403(t *testing.T) {
	cfg := adminTestCfg()
	h := buildAdminRouter(t, cfg)
	token := signAccessToken(t, cfg, "user")

	rr := adminDo(t, h, http.MethodGet, "/admin/dashboard", token)
	if rr.Code != http.StatusForbidden {
		t.Errorf("member-role GET /admin/dashboard = %d, want 403", rr.Code)
	}
}

func TestAdminRoutes_ReadonlyCannotMutate(t *testing.T) {
	cfg := adminTestCfg()
	h := buildAdminRouter(t, cfg)
	token := signAccessToken(t, cfg, "readonly")

	// Reads pass the role gates.  Will be 500 (nil repos) — that's acceptable.
	rr := adminDo(t, h, http.MethodGet, "/admin/dashboard", token)
	if rr.Code == http.StatusUnauthorized || rr.Code == http.StatusForbidden {
		t.Errorf("readonly GET /admin/dashboard = %d, should pass the role gates", rr.Code)
	}

	// Writes do not.
	rr = adminDo(t, h, http.MethodPost, "/admin/auctions", token)
	if rr.Code != http.StatusForbidden {
		t.Errorf("readonly POST /admin/auctions = %d, want 403", rr.Code)
	}
}

func TestAdminRoutes_RoleChangeIsAdminOnly(t *testing.T) {
	cfg := adminTestCfg()
	h := buildAdminRouter(t, cfg)
	opsToken := signAccessToken(t, cfg, "ops")

	path := "/admin/users/" + uuid.NewString() + "/role"
	rr := adminDo(t, h, http.MethodPost, path, opsToken)
	if rr.Code != http.StatusForbidden {
		t.Errorf("ops POST %s = %d, want 403 (admin only)", path, rr.Code)
	}
}
