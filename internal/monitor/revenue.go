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

// RevenueReconciler cross-checks the terminal population for consistency:
// completed applications must have offers, ignored ones must not, and terminal
// applications older than the grace period must have been notified. Anomalies
// are exported as gauges and logged for the operations dashboard; nothing is
// mutated here.
type RevenueReconciler struct {
	recorder metrics.Recorder
	grace    time.Duration

	now func() time.Time
}

// NewRevenueReconciler creates the reconciliation monitor.
func NewRevenueReconciler(cfg *config.Config, recorder metrics.Recorder) *RevenueReconciler {
	return &RevenueReconciler{
		recorder: recorder,
		grace:    cfg.Auctiond.Monitor.NotificationGrace(),
		now:      time.Now,
	}
}

// Run performs one reconciliation pass.
func (r *RevenueReconciler) Run(ctx context.Context, db *gorm.DB) error {
	var completedWithoutOffers int64
	err := db.WithContext(ctx).Model(&model.Application{}).
		Where("status = ? AND offers_count = ?", model.StatusCompleted, 0).
		Count(&completedWithoutOffers).Error
	if err != nil {
		return exception.NewTaskError(moduleName, "failed to count completed applications without offers", err, true)
	}
	if completedWithoutOffers > 0 {
		logger.Warnf("Reconciliation: %d completed application(s) have zero offers recorded.", completedWithoutOffers)
	}

	var ignoredWithOffers int64
	err = db.WithContext(ctx).Model(&model.Application{}).
		Where("status = ? AND offers_count > ?", model.StatusIgnored, 0).
		Count(&ignoredWithOffers).Error
	if err != nil {
		return exception.NewTaskError(moduleName, "failed to count ignored applications with offers", err, true)
	}
	if ignoredWithOffers > 0 {
		logger.Warnf("Reconciliation: %d ignored application(s) have offers recorded; late offers were not retroactively applied.", ignoredWithOffers)
	}

	cutoff := r.now().Add(-r.grace)
	var stuckNotifications int64
	err = db.WithContext(ctx).Model(&model.Application{}).
		Where("status IN ? AND auction_completion_notification_sent = ? AND auction_end_time <= ?",
			[]model.Status{model.StatusCompleted, model.StatusIgnored}, false, cutoff).
		Count(&stuckNotifications).Error
	if err != nil {
		return exception.NewTaskError(moduleName, "failed to count stuck notifications", err, true)
	}
	if stuckNotifications > 0 {
		logger.Warnf("Reconciliation: %d terminal application(s) unnotified past the %s grace period.", stuckNotifications, r.grace)
	}

	r.recorder.SetReconciliationAnomalies(int(completedWithoutOffers), int(ignoredWithOffers), int(stuckNotifications))
	logger.Debugf("Reconciliation pass complete: completed_without_offers=%d ignored_with_offers=%d stuck_notifications=%d",
		completedWithoutOffers, ignoredWithOffers, stuckNotifications)
	return nil
}
