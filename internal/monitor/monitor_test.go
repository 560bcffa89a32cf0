package monitor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	dbadapter "github.com/souqfin/auctiond/internal/adapter/database"
	gormadapter "github.com/souqfin/auctiond/internal/adapter/database/gorm"
	"github.com/souqfin/auctiond/internal/config"
	"github.com/souqfin/auctiond/internal/domain/model"
	"github.com/souqfin/auctiond/internal/governor"
	"github.com/souqfin/auctiond/internal/metrics"
	"github.com/souqfin/auctiond/internal/monitor"
	"github.com/souqfin/auctiond/internal/testutil"
)

// gaugeRecorder captures the monitor gauges for assertions.
type gaugeRecorder struct {
	metrics.Recorder
	backlog                int
	completedWithoutOffers int
	ignoredWithOffers      int
	stuckNotifications     int
}

func (r *gaugeRecorder) SetExpiredBacklog(n int) { r.backlog = n }

func (r *gaugeRecorder) SetReconciliationAnomalies(completedWithoutOffers, ignoredWithOffers, stuckNotifications int) {
	r.completedWithoutOffers = completedWithoutOffers
	r.ignoredWithOffers = ignoredWithOffers
	r.stuckNotifications = stuckNotifications
}

func TestAuctionMonitorCountsExpiredBacklog(t *testing.T) {
	db := testutil.OpenTestDB(t)
	now := time.Now().UTC()

	// Two expired and still live, one live with time remaining, one terminal.
	testutil.SeedApplication(t, db, "app-1", model.StatusLiveAuction, now.Add(-time.Hour), 2, false)
	testutil.SeedApplication(t, db, "app-2", model.StatusLiveAuction, now.Add(-time.Minute), 0, false)
	testutil.SeedApplication(t, db, "app-3", model.StatusLiveAuction, now.Add(time.Hour), 1, false)
	testutil.SeedApplication(t, db, "app-4", model.StatusCompleted, now.Add(-time.Hour), 3, true)

	rec := &gaugeRecorder{Recorder: metrics.NewNoopRecorder()}
	m := monitor.NewAuctionMonitor(config.NewConfig(), rec)

	require.NoError(t, m.Run(context.Background(), db))
	assert.Equal(t, 2, rec.backlog)
}

func TestAuctionMonitorEmptyBacklog(t *testing.T) {
	db := testutil.OpenTestDB(t)

	rec := &gaugeRecorder{Recorder: metrics.NewNoopRecorder(), backlog: -1}
	m := monitor.NewAuctionMonitor(config.NewConfig(), rec)

	require.NoError(t, m.Run(context.Background(), db))
	assert.Equal(t, 0, rec.backlog)
}

func TestRevenueReconcilerToleratesConsistentData(t *testing.T) {
	db := testutil.OpenTestDB(t)
	now := time.Now().UTC()

	testutil.SeedApplication(t, db, "app-1", model.StatusCompleted, now.Add(-time.Hour), 2, true)
	testutil.SeedApplication(t, db, "app-2", model.StatusIgnored, now.Add(-time.Hour), 0, true)
	testutil.SeedApplication(t, db, "app-3", model.StatusLiveAuction, now.Add(time.Hour), 0, false)

	rec := &gaugeRecorder{Recorder: metrics.NewNoopRecorder()}
	r := monitor.NewRevenueReconciler(config.NewConfig(), rec)
	assert.NoError(t, r.Run(context.Background(), db))

	assert.Zero(t, rec.completedWithoutOffers)
	assert.Zero(t, rec.ignoredWithOffers)
	assert.Zero(t, rec.stuckNotifications)
}

func TestRevenueReconcilerSurvivesAnomalies(t *testing.T) {
	db := testutil.OpenTestDB(t)
	now := time.Now().UTC()

	// Completed without offers, ignored with offers, terminal unnotified past
	// the grace period. All are exported and warned, never errors.
	testutil.SeedApplication(t, db, "app-1", model.StatusCompleted, now.Add(-time.Hour), 0, true)
	testutil.SeedApplication(t, db, "app-2", model.StatusIgnored, now.Add(-time.Hour), 4, true)
	testutil.SeedApplication(t, db, "app-3", model.StatusCompleted, now.Add(-2*time.Hour), 1, false)

	rec := &gaugeRecorder{Recorder: metrics.NewNoopRecorder()}
	r := monitor.NewRevenueReconciler(config.NewConfig(), rec)
	assert.NoError(t, r.Run(context.Background(), db))

	assert.Equal(t, 1, rec.completedWithoutOffers)
	assert.Equal(t, 1, rec.ignoredWithOffers)
	assert.Equal(t, 1, rec.stuckNotifications)
}

func TestHealthCheckerProbesThroughGovernedConnection(t *testing.T) {
	db := testutil.OpenTestDB(t)
	conn, err := gormadapter.NewGormDBAdapter(db, dbadapter.DatabaseConfig{Type: "sqlite", Database: ":memory:"}, "test")
	require.NoError(t, err)

	gov := governor.New(config.NewConfig(), conn, metrics.NewNoopRecorder())
	h := monitor.NewHealthChecker(gov)

	err = gov.RunWithConnection(context.Background(), "healthCheck", func(leased *gorm.DB) error {
		return h.Run(context.Background(), leased)
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, gov.Status().TotalActive)
}
