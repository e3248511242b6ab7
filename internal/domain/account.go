package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// UserRole
// ──────────────────────────────────────────────────────────────────────────────

// UserRole controls access levels in the back-office.
type UserRole string

const (
	RoleUser     UserRole = "user"     // standard member, earns and spends points
	RoleAdmin    UserRole = "admin"    // full back-office access
	RoleOps      UserRole = "ops"      // operations: auction management
	RoleReadOnly UserRole = "readonly" // read-only back-office access
)

// CanAccessBackoffice returns true for all non-standard roles.
func (r UserRole) CanAccessBackoffice() bool {
	return r != RoleUser
}

// IsAdmin returns true only for the full admin role.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// ──────────────────────────────────────────────────────────────────────────────
// User
// ──────────────────────────────────────────────────────────────────────────────

// User is the domain entity for registered members.
type User struct {
	ID           uuid.UUID `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"`
	Username     string    `json:"username"   db:"username"`
	PasswordHash string    `json:"-"          db:"password_hash"` // never serialised
	Role         UserRole  `json:"role"       db:"role"`
	IsActive     bool      `json:"is_active"  db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PublicProfile returns a user view safe to expose via API (no password hash).
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      UserRole  `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublicProfile converts a User to its public-safe representation.
func (u *User) ToPublicProfile() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Account
// ──────────────────────────────────────────────────────────────────────────────

// Account holds a user's loyalty-points balance.  Points is an integer-valued
// decimal; the bid and settlement engines never let it go negative.
type Account struct {
	ID        uuid.UUID       `json:"id"         db:"id"`
	UserID    uuid.UUID       `json:"user_id"    db:"user_id"`
	Points    decimal.Decimal `json:"points"     db:"points"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// CanAfford returns true when the balance covers the given amount.
func (a *Account) CanAfford(amount decimal.Decimal) bool {
	return a.Points.GreaterThanOrEqual(amount)
}

// ──────────────────────────────────────────────────────────────────────────────
// PointsEntry
// ──────────────────────────────────────────────────────────────────────────────

// EntryType enumerates points-ledger entry types for auditing.
type EntryType string

const (
	EntryBidHold    EntryType = "bid_hold"    // points escrowed for a bid
	EntryBidRefund  EntryType = "bid_refund"  // escrow returned to a displaced bidder
	EntrySignupGift EntryType = "signup_gift" // registration bonus
	EntryAdjustment EntryType = "adjustment"  // signed back-office correction
)

// PointsEntry is an immutable audit record for every points balance change.
type PointsEntry struct {
	ID            uuid.UUID       `json:"id"             db:"id"`
	AccountID     uuid.UUID       `json:"account_id"     db:"account_id"`
	Type          EntryType       `json:"type"           db:"type"`
	Amount        decimal.Decimal `json:"amount"         db:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before" db:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"  db:"balance_after"`
	ListingID     *uuid.UUID      `json:"listing_id"     db:"listing_id"` // set for bid_hold / bid_refund
	Description   string          `json:"description"    db:"description"`
	CreatedAt     time.Time       `json:"created_at"     db:"created_at"`
}
