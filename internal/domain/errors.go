package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Listing / bidding errors
var (
	// ErrListingNotFound is returned when no auction listing matches the id.
	ErrListingNotFound = errors.New("auction listing not found")

	// ErrAuctionClosed is returned when a bid is placed on a completed listing.
	ErrAuctionClosed = errors.New("auction is closed for bidding")

	// ErrAuctionAlreadyClosed is returned when settlement is attempted on a
	// listing that is already completed.  Surfaced (not silently ignored) so
	// callers can detect double-close attempts.
	ErrAuctionAlreadyClosed = errors.New("auction is already closed")

	// ErrBidTooLow is returned when a bid does not strictly exceed the
	// current bid.  Tie bids are rejected.
	ErrBidTooLow = errors.New("bid must exceed the current bid")

	// ErrInvalidBid is returned when the amount is not a positive whole
	// number of points.
	ErrInvalidBid = errors.New("bid must be a positive whole number of points")

	// ErrInvalidBidder is returned when the caller already holds the current
	// bid on the listing.  Raising one's own bid is not supported: the escrow
	// swap assumes bidder identity changes.
	ErrInvalidBidder = errors.New("you already hold the current bid on this auction")

	// ErrInvalidListing is returned when listing fields fail validation:
	// blank title or details, a negative or fractional starting bid, or a
	// scheduled end in the past.
	ErrInvalidListing = errors.New("invalid listing parameters")
)

// User / account errors
var (
	// ErrUserNotFound is returned when no user matches the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrAccountNotFound is returned when a points account is missing.
	ErrAccountNotFound = errors.New("points account not found")

	// ErrInsufficientPoints is returned when a bid exceeds the bidder's
	// points balance.
	ErrInsufficientPoints = errors.New("insufficient points balance")

	// ErrEmailTaken is returned on registration when the email already exists.
	ErrEmailTaken = errors.New("email address is already registered")

	// ErrUsernameTaken is returned when the username already exists.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserInactive is returned when a suspended user tries to act.
	ErrUserInactive = errors.New("user account is inactive")

	// ErrInvalidAdjustment is returned for zero or fractional back-office
	// balance corrections.
	ErrInvalidAdjustment = errors.New("adjustment must be a non-zero whole number of points")
)

// Auth errors
var (
	// ErrUnauthorized is returned when no valid identity is presented.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the identity lacks permission.
	ErrForbidden = errors.New("forbidden: insufficient permissions")

	// ErrTokenExpired is returned for expired JWTs.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned when a token cannot be parsed or its
	// signature does not match.
	ErrTokenInvalid = errors.New("token is invalid")
)

// Store errors
var (
	// ErrTransient is returned after the bounded retry budget for a
	// conflicted or aborted store transaction is exhausted.  The operation
	// did not happen; no partial state exists.  Callers may simply retry.
	ErrTransient = errors.New("operation aborted by a concurrent conflict, please try again")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// notFoundErrors collects all "entity not found" sentinel errors so that
// IsNotFound can stay in sync automatically.
var notFoundErrors = []error{
	ErrListingNotFound,
	ErrUserNotFound,
	ErrAccountNotFound,
}

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors.  Use this instead of comparing error values
// directly when translating domain errors to HTTP 404 responses.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict returns true for errors that represent a state conflict
// (terminal-state violations and duplicate registrations).
func IsConflict(err error) bool {
	conflictErrors := []error{
		ErrAuctionClosed,
		ErrAuctionAlreadyClosed,
		ErrEmailTaken,
		ErrUsernameTaken,
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsBidRejection returns true for caller-correctable bid failures.
func IsBidRejection(err error) bool {
	rejections := []error{
		ErrBidTooLow,
		ErrInvalidBid,
		ErrInvalidBidder,
		ErrInsufficientPoints,
	}
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsTransient returns true when the operation failed due to a store-level
// conflict and is safe to retry from a fresh read.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsAuthError returns true for authentication/authorisation errors.
func IsAuthError(err error) bool {
	authErrors := []error{
		ErrUnauthorized,
		ErrForbidden,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrInvalidCredentials,
	}
	for _, target := range authErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
