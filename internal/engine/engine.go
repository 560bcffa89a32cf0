// Package engine implements the auction status transition rules. An
// application in live_auction whose auction window has elapsed moves to
// completed when at least one offer was received, otherwise to ignored. Both
// outcomes are terminal. The write is guarded on the status still being
// live_auction, which makes transitions idempotent and safe under overlapping
// sweeps — the losing writer affects zero rows.
package engine

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/souqfin/auctiond/internal/domain/model"
	"github.com/souqfin/auctiond/internal/metrics"
	"github.com/souqfin/auctiond/internal/support/exception"
	"github.com/souqfin/auctiond/internal/support/logger"
)

const moduleName = "engine"

// Engine evaluates and applies status transitions for applications whose
// auction window has elapsed.
type Engine struct {
	recorder metrics.Recorder

	// now is a clock seam for tests.
	now func() time.Time
}

// New creates a transition engine.
func New(recorder metrics.Recorder) *Engine {
	return &Engine{
		recorder: recorder,
		now:      time.Now,
	}
}

// SweepResult summarizes one sweep pass.
type SweepResult struct {
	// Evaluated is the number of candidate applications selected.
	Evaluated int
	// Completed is the number transitioned to completed.
	Completed int
	// Ignored is the number transitioned to ignored.
	Ignored int
	// Skipped is the number already transitioned by a concurrent sweep
	// (guarded update affected zero rows).
	Skipped int
	// Failed is the number whose transition write failed.
	Failed int
}

// Sweep selects up to batchLimit applications whose auction window has
// elapsed, oldest deadlines first, and transitions each. The offer count used
// for the decision is read in the same query that selects candidates. A
// failure transitioning one application is logged and does not abort the rest
// of the batch.
func (e *Engine) Sweep(ctx context.Context, db *gorm.DB, batchLimit int) (SweepResult, error) {
	var result SweepResult

	var candidates []model.Application
	err := db.WithContext(ctx).
		Where("status = ? AND auction_end_time <= ?", model.StatusLiveAuction, e.now()).
		Order("auction_end_time ASC").
		Limit(batchLimit).
		Find(&candidates).Error
	if err != nil {
		return result, exception.NewTaskError(moduleName, "failed to select transition candidates", err, true)
	}

	result.Evaluated = len(candidates)
	if len(candidates) == 0 {
		return result, nil
	}

	for i := range candidates {
		app := &candidates[i]
		target, reason := decide(app)

		transitioned, err := e.transitionOne(ctx, db, app, target, reason)
		switch {
		case err != nil:
			result.Failed++
			logger.Errorf("Failed to transition application %s to %s: %v", app.ApplicationID, target, err)
		case !transitioned:
			result.Skipped++
			logger.Debugf("Application %s already transitioned; skipping.", app.ApplicationID)
		case target == model.StatusCompleted:
			result.Completed++
		default:
			result.Ignored++
		}
	}

	e.recorder.RecordTransitions(result.Completed, result.Ignored, result.Failed)
	logger.Infof("Transition sweep: evaluated=%d completed=%d ignored=%d skipped=%d failed=%d",
		result.Evaluated, result.Completed, result.Ignored, result.Skipped, result.Failed)
	return result, nil
}

// decide applies the transition rule using the offer count read at selection
// time. An offer arriving between selection and commit is not retroactively
// applied.
func decide(app *model.Application) (model.Status, string) {
	if app.OffersCount > 0 {
		return model.StatusCompleted, fmt.Sprintf("auction window elapsed with %d offer(s)", app.OffersCount)
	}
	return model.StatusIgnored, "auction window elapsed with no offers"
}

// transitionOne applies the guarded update and appends the audit row in a
// single transaction. Returns false without error when the guard matched zero
// rows, meaning another sweep instance already transitioned the application.
func (e *Engine) transitionOne(ctx context.Context, db *gorm.DB, app *model.Application, target model.Status, reason string) (bool, error) {
	transitioned := false

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Application{}).
			Where("application_id = ? AND status = ?", app.ApplicationID, model.StatusLiveAuction).
			Updates(map[string]interface{}{
				"status":     target,
				"updated_at": e.now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		transitioned = true
		return tx.Create(&model.StatusTransitionLog{
			ApplicationID: app.ApplicationID,
			FromStatus:    model.StatusLiveAuction,
			ToStatus:      target,
			Reason:        reason,
			CreatedAt:     e.now(),
		}).Error
	})
	if err != nil {
		return false, exception.NewTaskError(moduleName,
			fmt.Sprintf("transition write failed for application %s", app.ApplicationID), err, true)
	}
	return transitioned, nil
}
