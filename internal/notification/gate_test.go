package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqfin/auctiond/internal/domain/model"
	"github.com/souqfin/auctiond/internal/metrics"
	"github.com/souqfin/auctiond/internal/notification"
	"github.com/souqfin/auctiond/internal/support/exception"
	"github.com/souqfin/auctiond/internal/testutil"
)

// fakeNotifier records calls and returns a configurable error.
type fakeNotifier struct {
	err   error
	calls []notification.Outcome
}

func (f *fakeNotifier) NotifyAuctionCompletion(ctx context.Context, outcome notification.Outcome) error {
	f.calls = append(f.calls, outcome)
	return f.err
}

func newGate(notifier notification.Notifier, disabled bool) *notification.Gate {
	return notification.NewGate(notifier, func() bool { return disabled }, metrics.NewNoopRecorder(), 0)
}

func TestDispatchSendsAndSetsFlag(t *testing.T) {
	db := testutil.OpenTestDB(t)
	app := testutil.SeedApplication(t, db, "APP-101", model.StatusCompleted, time.Now().Add(-time.Hour), 2, false)
	sender := &fakeNotifier{}

	outcome, err := newGate(sender, false).DispatchIfPending(context.Background(), db, &app)
	require.NoError(t, err)
	assert.Equal(t, notification.OutcomeSent, outcome)
	require.Len(t, sender.calls, 1)
	assert.Equal(t, "APP-101", sender.calls[0].ApplicationID)
	assert.Equal(t, 2, sender.calls[0].OffersCount)

	var stored model.Application
	require.NoError(t, db.First(&stored, "application_id = ?", "APP-101").Error)
	assert.True(t, stored.AuctionCompletionNotificationSent)
}

func TestDispatchFailureLeavesFlagUnsetForRetry(t *testing.T) {
	db := testutil.OpenTestDB(t)
	app := testutil.SeedApplication(t, db, "APP-102", model.StatusIgnored, time.Now().Add(-time.Hour), 0, false)
	sender := &fakeNotifier{err: errors.New("smtp unavailable")}
	gate := newGate(sender, false)

	outcome, err := gate.DispatchIfPending(context.Background(), db, &app)
	assert.Equal(t, notification.OutcomeFailed, outcome)
	require.Error(t, err)
	assert.True(t, errors.Is(err, exception.ErrNotificationSendFailure))
	assert.Contains(t, err.Error(), "smtp unavailable", "the sender's cause must reach the logs")

	var stored model.Application
	require.NoError(t, db.First(&stored, "application_id = ?", "APP-102").Error)
	assert.False(t, stored.AuctionCompletionNotificationSent)

	// A later sweep with a recovered sender succeeds.
	sender.err = nil
	result, err := gate.ProcessPending(context.Background(), db, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)

	require.NoError(t, db.First(&stored, "application_id = ?", "APP-102").Error)
	assert.True(t, stored.AuctionCompletionNotificationSent)
}

func TestDispatchSkipsWhenGloballyDisabled(t *testing.T) {
	db := testutil.OpenTestDB(t)
	app := testutil.SeedApplication(t, db, "APP-103", model.StatusCompleted, time.Now().Add(-time.Hour), 1, false)
	sender := &fakeNotifier{}

	outcome, err := newGate(sender, true).DispatchIfPending(context.Background(), db, &app)
	require.NoError(t, err)
	assert.Equal(t, notification.OutcomeSkipped, outcome)
	assert.Empty(t, sender.calls, "disabled dispatch must not invoke the sender")

	var stored model.Application
	require.NoError(t, db.First(&stored, "application_id = ?", "APP-103").Error)
	assert.True(t, stored.AuctionCompletionNotificationSent, "skip path still marks the application handled")
}

func TestDispatchPreconditions(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sender := &fakeNotifier{}
	gate := newGate(sender, false)

	live := testutil.SeedApplication(t, db, "APP-104", model.StatusLiveAuction, time.Now().Add(time.Hour), 0, false)
	outcome, err := gate.DispatchIfPending(context.Background(), db, &live)
	require.NoError(t, err)
	assert.Equal(t, notification.OutcomeNotPending, outcome)

	done := testutil.SeedApplication(t, db, "APP-105", model.StatusCompleted, time.Now().Add(-time.Hour), 1, true)
	outcome, err = gate.DispatchIfPending(context.Background(), db, &done)
	require.NoError(t, err)
	assert.Equal(t, notification.OutcomeNotPending, outcome)
	assert.Empty(t, sender.calls)
}

func TestProcessPendingContinuesPastFailures(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.SeedApplication(t, db, "APP-106", model.StatusCompleted, time.Now().Add(-3*time.Hour), 1, false)
	testutil.SeedApplication(t, db, "APP-107", model.StatusIgnored, time.Now().Add(-2*time.Hour), 0, false)
	testutil.SeedApplication(t, db, "APP-108", model.StatusLiveAuction, time.Now().Add(time.Hour), 0, false)

	// Fails on every attempt: both pending items must be attempted anyway.
	sender := &fakeNotifier{err: errors.New("send failed")}
	result, err := newGate(sender, false).ProcessPending(context.Background(), db, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Selected, "live applications are not in the pending set")
	assert.Equal(t, 2, result.Failed)
	assert.Len(t, sender.calls, 2)

	// Oldest auction deadline first.
	assert.Equal(t, "APP-106", sender.calls[0].ApplicationID)
	assert.Equal(t, "APP-107", sender.calls[1].ApplicationID)
}
