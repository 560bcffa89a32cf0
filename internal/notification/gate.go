package notification

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

const moduleName = "notification"

// DispatchOutcome classifies one DispatchIfPending call.
type DispatchOutcome string

const (
	// OutcomeSent means the sender confirmed delivery and the flag was set.
	OutcomeSent DispatchOutcome = "sent"
	// OutcomeSkipped means the global disable switch was on; the flag was set
	// without invoking the sender.
	OutcomeSkipped DispatchOutcome = "skipped"
	// OutcomeFailed means the sender reported failure; the flag stays unset so
	// a later sweep retries.
	OutcomeFailed DispatchOutcome = "failed"
	// OutcomeNotPending means the precondition did not hold (non-terminal
	// status or already notified).
	OutcomeNotPending DispatchOutcome = "not_pending"
)

// DisabledFunc reports whether notifications are globally disabled. It is
// consulted once per dispatch attempt so the switch can be flipped at runtime.
type DisabledFunc func() bool

// Gate ensures an auction-outcome notification is attempted at most
// effectively once per application. The sent-flag is only persisted after a
// confirmed send or an explicit skip, so a crash between send and flag-write
// results in at most one duplicate retry on the next sweep.
type Gate struct {
	notifier      Notifier
	disabled      DisabledFunc
	recorder      metrics.Recorder
	dispatchDelay time.Duration
}

// NewGate creates a dispatch gate.
func NewGate(notifier Notifier, disabled DisabledFunc, recorder metrics.Recorder, dispatchDelay time.Duration) *Gate {
	return &Gate{
		notifier:      notifier,
		disabled:      disabled,
		recorder:      recorder,
		dispatchDelay: dispatchDelay,
	}
}

// DispatchIfPending sends the auction-outcome notification for one
// application when its status is terminal and the sent-flag is still unset.
func (g *Gate) DispatchIfPending(ctx context.Context, db *gorm.DB, app *model.Application) (DispatchOutcome, error) {
	if !app.Status.IsTerminal() || app.AuctionCompletionNotificationSent {
		return OutcomeNotPending, nil
	}

	if g.disabled() {
		if err := g.markNotified(ctx, db, app); err != nil {
			return OutcomeFailed, err
		}
		g.recorder.RecordNotification(string(OutcomeSkipped))
		logger.Debugf("Notifications disabled; marked application %s as handled without sending.", app.ApplicationID)
		return OutcomeSkipped, nil
	}

	err := g.notifier.NotifyAuctionCompletion(ctx, Outcome{
		ApplicationID: app.ApplicationID,
		BusinessName:  app.BusinessName,
		Recipient:     app.ContactEmail,
		FinalStatus:   app.Status,
		OffersCount:   app.OffersCount,
	})
	if err != nil {
		g.recorder.RecordNotification(string(OutcomeFailed))
		return OutcomeFailed, exception.NewTaskError(moduleName,
			fmt.Sprintf("send failed for application %s", app.ApplicationID),
			fmt.Errorf("%w: %w", exception.ErrNotificationSendFailure, err), true)
	}

	if err := g.markNotified(ctx, db, app); err != nil {
		// The send went out but the flag write failed; the next sweep will
		// retry and may produce one duplicate. Bounded to this crash window.
		return OutcomeFailed, err
	}
	g.recorder.RecordNotification(string(OutcomeSent))
	return OutcomeSent, nil
}

// markNotified persists the sent-flag, guarded on it still being unset.
func (g *Gate) markNotified(ctx context.Context, db *gorm.DB, app *model.Application) error {
	res := db.WithContext(ctx).Model(&model.Application{}).
		Where("application_id = ? AND auction_completion_notification_sent = ?", app.ApplicationID, false).
		Update("auction_completion_notification_sent", true)
	if res.Error != nil {
		return exception.NewTaskError(moduleName,
			fmt.Sprintf("failed to persist sent-flag for application %s", app.ApplicationID), res.Error, true)
	}
	app.AuctionCompletionNotificationSent = true
	return nil
}

// GateResult summarizes one ProcessPending pass.
type GateResult struct {
	Selected int
	Sent     int
	Skipped  int
	Failed   int
}

// ProcessPending selects up to limit terminal applications with the sent-flag
// unset, oldest auction deadlines first, and dispatches each. One failure
// never aborts the batch; a short inter-item delay respects sender rate limits.
func (g *Gate) ProcessPending(ctx context.Context, db *gorm.DB, limit int) (GateResult, error) {
	var result GateResult

	var pending []model.Application
	err := db.WithContext(ctx).
		Where("status IN ? AND auction_completion_notification_sent = ?",
			[]model.Status{model.StatusCompleted, model.StatusIgnored}, false).
		Order("auction_end_time ASC").
		Limit(limit).
		Find(&pending).Error
	if err != nil {
		return result, exception.NewTaskError(moduleName, "failed to select pending notifications", err, true)
	}

	result.Selected = len(pending)
	for i := range pending {
		if i > 0 && g.dispatchDelay > 0 {
			select {
			case <-ctx.Done():
				logger.Warnf("Notification sweep cancelled after %d of %d item(s).", i, len(pending))
				return result, nil
			case <-time.After(g.dispatchDelay):
			}
		}

		outcome, err := g.DispatchIfPending(ctx, db, &pending[i])
		switch outcome {
		case OutcomeSent:
			result.Sent++
		case OutcomeSkipped:
			result.Skipped++
		case OutcomeFailed:
			result.Failed++
			logger.Errorf("Notification dispatch failed for application %s: %v", pending[i].ApplicationID, err)
		}
	}

	if result.Selected > 0 {
		logger.Infof("Notification sweep: selected=%d sent=%d skipped=%d failed=%d",
			result.Selected, result.Sent, result.Skipped, result.Failed)
	}
	return result, nil
}
