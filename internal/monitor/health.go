package monitor

import (
	"context"

	"gorm.io/gorm"

	"github.com/souqfin/auctiond/internal/governor"
	"github.com/souqfin/auctiond/internal/support/exception"
	"github.com/souqfin/auctiond/internal/support/logger"
)

// HealthChecker verifies the database answers through a governed connection
// and reports the governor's lease bookkeeping. Stale leases are logged as
// warnings; containment already happened in the governor.
type HealthChecker struct {
	gov *governor.Governor
}

// NewHealthChecker creates the health check monitor.
func NewHealthChecker(gov *governor.Governor) *HealthChecker {
	return &HealthChecker{gov: gov}
}

// Run performs one health check pass over the supplied (already governed)
// connection.
func (h *HealthChecker) Run(ctx context.Context, db *gorm.DB) error {
	var one int
	if err := db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return exception.NewTaskError(moduleName, "database health probe failed", err, false)
	}

	st := h.gov.Status()
	if st.StaleCount > 0 {
		logger.Warnf("Health: %d of %d lease(s) past the stale threshold.", st.StaleCount, st.TotalActive)
		for _, lease := range st.Leases {
			logger.Warnf("Health: lease %s held by task '%s' for %s.", lease.ID, lease.TaskName, lease.Age)
		}
	} else {
		logger.Debugf("Health: database reachable, %d active lease(s).", st.TotalActive)
	}
	return nil
}
