// Package model defines the persistent entities the auction lifecycle core
// reads and mutates. The tables themselves are shared with the marketplace web
// application, which creates Application rows at submission time; this core is
// the sole writer of the status column and the notification flag.
package model

import "time"

// Status represents the lifecycle state of a financing application's auction.
type Status string

const (
	// StatusLiveAuction is the initial state, entered at submission. Banks may
	// submit offers while the application is in this state.
	StatusLiveAuction Status = "live_auction"
	// StatusCompleted is the terminal state for an application whose auction
	// window elapsed with at least one offer.
	StatusCompleted Status = "completed"
	// StatusIgnored is the terminal state for an application whose auction
	// window elapsed with no offers.
	StatusIgnored Status = "ignored"
)

// IsTerminal reports whether no further transitions may occur from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusIgnored
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// AuctionWindow is the fixed interval after submission during which banks may
// submit offers. AuctionEndTime is computed once at submission and never
// mutated afterwards.
const AuctionWindow = 48 * time.Hour

// Application is the unit of work of the auction lifecycle.
// Rows are created by the marketplace web application at submission; this core
// mutates only Status and AuctionCompletionNotificationSent, and never deletes.
type Application struct {
	ApplicationID                     string    `gorm:"column:application_id;primaryKey"`
	BusinessName                      string    `gorm:"column:business_name"`
	ContactEmail                      string    `gorm:"column:contact_email"`
	Status                            Status    `gorm:"column:status"`
	SubmittedAt                       time.Time `gorm:"column:submitted_at"`
	AuctionEndTime                    time.Time `gorm:"column:auction_end_time"`
	OffersCount                       int       `gorm:"column:offers_count"`
	AuctionCompletionNotificationSent bool      `gorm:"column:auction_completion_notification_sent"`
	UpdatedAt                         time.Time `gorm:"column:updated_at"`
}

// TableName implements the gorm table naming convention.
func (Application) TableName() string {
	return "applications"
}
