// Package monitor implements the sibling monitors driven by the scheduler:
// the auction expiry backlog sweep, revenue reconciliation and the health
// check. Monitors only read; all mutation belongs to the transition engine and
// the dispatch gate.
package monitor

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/souqfin/auctiond/internal/config"
	"github.com/souqfin/auctiond/internal/domain/model"
	"github.com/souqfin/auctiond/internal/metrics"
	"github.com/souqfin/auctiond/internal/support/exception"
	"github.com/souqfin/auctiond/internal/support/logger"
)

const moduleName = "monitor"

// AuctionMonitor measures the backlog of applications whose auction window has
// elapsed but which are still in live_auction. A growing backlog means the
// transition task is falling behind its sweep cadence.
type AuctionMonitor struct {
	recorder      metrics.Recorder
	warnThreshold int

	now func() time.Time
}

// NewAuctionMonitor creates the expiry backlog monitor.
func NewAuctionMonitor(cfg *config.Config, recorder metrics.Recorder) *AuctionMonitor {
	return &AuctionMonitor{
		recorder:      recorder,
		warnThreshold: cfg.Auctiond.Monitor.BacklogWarnThreshold,
		now:           time.Now,
	}
}

// Run counts the expired-but-live backlog and exports it.
func (m *AuctionMonitor) Run(ctx context.Context, db *gorm.DB) error {
	var backlog int64
	err := db.WithContext(ctx).Model(&model.Application{}).
		Where("status = ? AND auction_end_time <= ?", model.StatusLiveAuction, m.now()).
		Count(&backlog).Error
	if err != nil {
		return exception.NewTaskError(moduleName, "failed to count expired backlog", err, true)
	}

	m.recorder.SetExpiredBacklog(int(backlog))
	if int(backlog) > m.warnThreshold {
		logger.Warnf("Auction expiry backlog is %d (threshold %d); transition sweeps are falling behind.",
			backlog, m.warnThreshold)
	} else {
		logger.Debugf("Auction expiry backlog: %d", backlog)
	}
	return nil
}
