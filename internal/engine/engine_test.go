package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqfin/auctiond/internal/domain/model"
	"github.com/souqfin/auctiond/internal/engine"
	"github.com/souqfin/auctiond/internal/metrics"
	"github.com/souqfin/auctiond/internal/testutil"
)

func newEngine() *engine.Engine {
	return engine.New(metrics.NewNoopRecorder())
}

func TestSweepCompletesApplicationWithOffers(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.SeedApplication(t, db, "APP-001", model.StatusLiveAuction, time.Now().Add(-time.Hour), 3, false)

	result, err := newEngine().Sweep(context.Background(), db, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Evaluated)
	assert.Equal(t, 1, result.Completed)
	assert.Equal(t, 0, result.Ignored)

	var app model.Application
	require.NoError(t, db.First(&app, "application_id = ?", "APP-001").Error)
	assert.Equal(t, model.StatusCompleted, app.Status)

	var logs []model.StatusTransitionLog
	require.NoError(t, db.Find(&logs, "application_id = ?", "APP-001").Error)
	require.Len(t, logs, 1)
	assert.Equal(t, model.StatusLiveAuction, logs[0].FromStatus)
	assert.Equal(t, model.StatusCompleted, logs[0].ToStatus)
	assert.Contains(t, logs[0].Reason, "3 offer(s)")
}

func TestSweepIgnoresApplicationWithoutOffers(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.SeedApplication(t, db, "APP-002", model.StatusLiveAuction, time.Now().Add(-time.Hour), 0, false)

	result, err := newEngine().Sweep(context.Background(), db, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Ignored)

	var app model.Application
	require.NoError(t, db.First(&app, "application_id = ?", "APP-002").Error)
	assert.Equal(t, model.StatusIgnored, app.Status)
}

func TestSweepLeavesOpenAuctionsUntouched(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.SeedApplication(t, db, "APP-003", model.StatusLiveAuction, time.Now().Add(time.Hour), 2, false)

	result, err := newEngine().Sweep(context.Background(), db, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Evaluated)

	var app model.Application
	require.NoError(t, db.First(&app, "application_id = ?", "APP-003").Error)
	assert.Equal(t, model.StatusLiveAuction, app.Status)
}

func TestSweepIsIdempotent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.SeedApplication(t, db, "APP-004", model.StatusLiveAuction, time.Now().Add(-time.Hour), 1, false)
	eng := newEngine()

	first, err := eng.Sweep(context.Background(), db, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Completed)

	second, err := eng.Sweep(context.Background(), db, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Evaluated)

	var count int64
	require.NoError(t, db.Model(&model.StatusTransitionLog{}).Where("application_id = ?", "APP-004").Count(&count).Error)
	assert.EqualValues(t, 1, count, "exactly one audit row per transition")
}

func TestSweepNeverLeavesTerminalState(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.SeedApplication(t, db, "APP-005", model.StatusCompleted, time.Now().Add(-time.Hour), 2, true)
	testutil.SeedApplication(t, db, "APP-006", model.StatusIgnored, time.Now().Add(-time.Hour), 0, true)

	result, err := newEngine().Sweep(context.Background(), db, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Evaluated)

	var app model.Application
	require.NoError(t, db.First(&app, "application_id = ?", "APP-005").Error)
	assert.Equal(t, model.StatusCompleted, app.Status)
	app = model.Application{}
	require.NoError(t, db.First(&app, "application_id = ?", "APP-006").Error)
	assert.Equal(t, model.StatusIgnored, app.Status)
}

func TestSweepRespectsBatchLimitOldestFirst(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.SeedApplication(t, db, "APP-NEW", model.StatusLiveAuction, time.Now().Add(-time.Hour), 1, false)
	testutil.SeedApplication(t, db, "APP-OLD", model.StatusLiveAuction, time.Now().Add(-48*time.Hour), 1, false)

	result, err := newEngine().Sweep(context.Background(), db, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Evaluated)

	// The oldest deadline must be processed first.
	var old model.Application
	require.NoError(t, db.First(&old, "application_id = ?", "APP-OLD").Error)
	assert.Equal(t, model.StatusCompleted, old.Status)

	var recent model.Application
	require.NoError(t, db.First(&recent, "application_id = ?", "APP-NEW").Error)
	assert.Equal(t, model.StatusLiveAuction, recent.Status)
}

func TestSweepSkipsConcurrentlyTransitionedApplication(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.SeedApplication(t, db, "APP-007", model.StatusLiveAuction, time.Now().Add(-time.Hour), 1, false)
	eng := newEngine()

	// Simulate a second sweep instance winning the guarded update between
	// candidate selection and write.
	require.NoError(t, db.Model(&model.Application{}).
		Where("application_id = ?", "APP-007").
		Update("status", model.StatusCompleted).Error)

	// Reset so the row matches the selection criteria again, then race two
	// sequential sweeps: only the first may transition.
	require.NoError(t, db.Model(&model.Application{}).
		Where("application_id = ?", "APP-007").
		Update("status", model.StatusLiveAuction).Error)

	first, err := eng.Sweep(context.Background(), db, 10)
	require.NoError(t, err)
	second, err := eng.Sweep(context.Background(), db, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Completed)
	assert.Equal(t, 0, second.Completed)

	var count int64
	require.NoError(t, db.Model(&model.StatusTransitionLog{}).Where("application_id = ?", "APP-007").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSweepIsolatesSingleRowFailure(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.SeedApplication(t, db, "APP-008", model.StatusLiveAuction, time.Now().Add(-3*time.Hour), 2, false)
	testutil.SeedApplication(t, db, "APP-009", model.StatusLiveAuction, time.Now().Add(-2*time.Hour), 1, false)
	testutil.SeedApplication(t, db, "APP-010", model.StatusLiveAuction, time.Now().Add(-time.Hour), 0, false)

	// Make APP-008's audit insert fail so its transaction rolls back.
	require.NoError(t, db.Exec(`CREATE TRIGGER reject_audit_app_008
		BEFORE INSERT ON status_transition_logs
		WHEN NEW.application_id = 'APP-008'
		BEGIN SELECT RAISE(ABORT, 'audit insert rejected'); END`).Error)

	eng := newEngine()
	result, err := eng.Sweep(context.Background(), db, 10)
	require.NoError(t, err, "a single failed row must not abort the sweep")
	assert.Equal(t, 3, result.Evaluated)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Completed)
	assert.Equal(t, 1, result.Ignored)

	// The failed row rolled back whole: still live, no audit row.
	var app model.Application
	require.NoError(t, db.First(&app, "application_id = ?", "APP-008").Error)
	assert.Equal(t, model.StatusLiveAuction, app.Status)
	var count int64
	require.NoError(t, db.Model(&model.StatusTransitionLog{}).Where("application_id = ?", "APP-008").Count(&count).Error)
	assert.Zero(t, count)

	// The siblings transitioned despite the failure.
	app = model.Application{}
	require.NoError(t, db.First(&app, "application_id = ?", "APP-009").Error)
	assert.Equal(t, model.StatusCompleted, app.Status)
	app = model.Application{}
	require.NoError(t, db.First(&app, "application_id = ?", "APP-010").Error)
	assert.Equal(t, model.StatusIgnored, app.Status)

	// Once the fault clears, the next cycle picks the row up again.
	require.NoError(t, db.Exec(`DROP TRIGGER reject_audit_app_008`).Error)
	retry, err := eng.Sweep(context.Background(), db, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, retry.Completed)
	app = model.Application{}
	require.NoError(t, db.First(&app, "application_id = ?", "APP-008").Error)
	assert.Equal(t, model.StatusCompleted, app.Status)
}
