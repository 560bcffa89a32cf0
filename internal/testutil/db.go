// Package testutil provides shared helpers for package tests: an in-memory
// SQLite database carrying the auctiond schema.
package testutil

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/souqfin/auctiond/internal/domain/model"
)

// OpenTestDB opens a fresh in-memory SQLite database with the application
// schema migrated.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	if err := db.AutoMigrate(&model.Application{}, &model.StatusTransitionLog{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

// SeedApplication inserts one application row and returns it.
func SeedApplication(t *testing.T, db *gorm.DB, id string, status model.Status, endTime time.Time, offers int, notified bool) model.Application {
	t.Helper()

	app := model.Application{
		ApplicationID:                     id,
		BusinessName:                      "Business " + id,
		ContactEmail:                      id + "@example.com",
		Status:                            status,
		SubmittedAt:                       endTime.Add(-model.AuctionWindow),
		AuctionEndTime:                    endTime,
		OffersCount:                       offers,
		AuctionCompletionNotificationSent: notified,
	}
	if err := db.Create(&app).Error; err != nil {
		t.Fatalf("failed to seed application %s: %v", id, err)
	}
	return app
}
