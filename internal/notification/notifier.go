// Package notification implements the dispatch gate that delivers
// auction-outcome notifications at most effectively once per application,
// keyed by a persisted sent-flag. The actual send mechanism is behind the
// Notifier interface; transport (email, webhook) is a collaborator concern.
package notification

import (
	"context"

	"github.com/souqfin/auctiond/internal/domain/model"
	"github.com/souqfin/auctiond/internal/support/logger"
)

// Outcome carries the business contact and auction result handed to the sender.
type Outcome struct {
	ApplicationID string
	BusinessName  string
	Recipient     string
	FinalStatus   model.Status
	OffersCount   int
}

// Notifier is the external send collaborator.
type Notifier interface {
	// NotifyAuctionCompletion delivers one auction-outcome notification.
	// A returned error means the attempt failed and may be retried later.
	NotifyAuctionCompletion(ctx context.Context, outcome Outcome) error
}

// LogNotifier is a Notifier implementation that only logs notifications.
// It stands in for the real sender in development and tests.
type LogNotifier struct{}

// NewLogNotifier creates a new instance of LogNotifier.
func NewLogNotifier() Notifier {
	logger.Infof("Notification: Initializing log-only notifier.")
	return &LogNotifier{}
}

// NotifyAuctionCompletion logs the outcome instead of sending it.
func (n *LogNotifier) NotifyAuctionCompletion(ctx context.Context, outcome Outcome) error {
	logger.Infof("Notification: application %s (%s) finished as %s with %d offer(s); recipient %s",
		outcome.ApplicationID, outcome.BusinessName, outcome.FinalStatus, outcome.OffersCount, outcome.Recipient)
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
