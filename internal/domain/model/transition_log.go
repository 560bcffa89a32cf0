package model

import "time"

// StatusTransitionLog is the append-only audit record of a status transition.
// Exactly one row is written per transition; rows are never updated or deleted.
type StatusTransitionLog struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement"`
	ApplicationID string    `gorm:"column:application_id"`
	FromStatus    Status    `gorm:"column:from_status"`
	ToStatus      Status    `gorm:"column:to_status"`
	Reason        string    `gorm:"column:reason"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

// TableName implements the gorm table naming convention.
func (StatusTransitionLog) TableName() string {
	return "status_transition_logs"
}
