// Package scheduler runs the background settlement loop: open listings whose
// scheduled end has passed are closed and their winners recorded.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/loyaltyworks/auctionhouse/internal/config"
	"github.com/loyaltyworks/auctionhouse/internal/service"
)

// Scheduler drives the settlement engine on a fixed tick.  Call Start(ctx)
// once from main(); cancel the context to shut it down gracefully.
type Scheduler struct {
	settlementSvc *service.SettlementService
	cfg           *config.Config
	logger        *slog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(settlementSvc *service.SettlementService, cfg *config.Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		settlementSvc: settlementSvc,
		cfg:           cfg,
		logger:        logger,
	}
}

// Start launches the settlement goroutine.  It returns immediately; the loop
// runs until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.settlementLoop(ctx)
	s.logger.Info("scheduler started", "interval", s.cfg.Auction.SettleInterval)
}

// ──────────────────────────────────────────────────────────────────────────────
// settlementLoop
// ──────────────────────────────────────────────────────────────────────────────

// settlementLoop checks for expired listings every SettleInterval and closes
// them.  Each tick is independent: a failed tick is logged and the next tick
// retries the same listings from a fresh read.
func (s *Scheduler) settlementLoop(ctx context.Context) {
	defer s.recoverAndLog("settlementLoop")

	ticker := time.NewTicker(s.cfg.Auction.SettleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("settlementLoop: shutting down")
			return
		case <-ticker.C:
			if err := s.settlementSvc.CloseExpired(ctx); err != nil {
				s.logger.Error("settlementLoop: CloseExpired", "err", err)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Panic recovery
// ──────────────────────────────────────────────────────────────────────────────

// recoverAndLog is deferred inside each goroutine to catch unexpected panics,
// log them, and allow the scheduler to continue running.
func (s *Scheduler) recoverAndLog(loop string) {
	if r := recover(); r != nil {
		s.logger.Error("PANIC recovered in scheduler loop",
			"loop", loop, "panic", r)
	}
}
