// Package ws holds WebSocket message types and the Hub implementation.
// messages.go defines all message structs broadcast to connected clients.
package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MsgType identifies the kind of WS message so clients can switch on it.
type MsgType string

const (
	MsgTypeBidPlaced      MsgType = "bid_placed"
	MsgTypeAuctionClosed  MsgType = "auction_closed"
	MsgTypeAuctionCreated MsgType = "auction_created"
	MsgTypeError          MsgType = "error"
)

// ──────────────────────────────────────────────────────────────────────────────
// BidPlacedMessage — broadcast after a bid is accepted so prices refresh.
// ──────────────────────────────────────────────────────────────────────────────

// BidPlacedMessage carries the new price of a listing.  The bidder's identity
// is never part of the broadcast.
type BidPlacedMessage struct {
	Type        MsgType         `json:"type"`
	ListingID   uuid.UUID       `json:"listing_id"`
	Title       string          `json:"title"`
	CurrentBid  decimal.Decimal `json:"current_bid"`
	TimeLeftSec int64           `json:"time_left_sec"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// AuctionClosedMessage — broadcast when a listing is settled.
// ──────────────────────────────────────────────────────────────────────────────

// AuctionClosedMessage tells clients the listing is terminal.  HadWinner is
// false when the auction expired with no bid.
type AuctionClosedMessage struct {
	Type      MsgType   `json:"type"`
	ListingID uuid.UUID `json:"listing_id"`
	HadWinner bool      `json:"had_winner"`
	Timestamp time.Time `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// AuctionCreatedMessage — broadcast when a new listing opens.
// ──────────────────────────────────────────────────────────────────────────────

// AuctionCreatedMessage carries the identity and floor of a new listing.
type AuctionCreatedMessage struct {
	Type        MsgType         `json:"type"`
	ListingID   uuid.UUID       `json:"listing_id"`
	Title       string          `json:"title"`
	StartingBid decimal.Decimal `json:"starting_bid"`
	EndsAt      time.Time       `json:"ends_at"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// ErrorMessage — sent to a single client on a non-fatal error.
// ──────────────────────────────────────────────────────────────────────────────

// ErrorMessage is sent directly to one client (not broadcast).
type ErrorMessage struct {
	Type    MsgType `json:"type"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
}
