package models

import (
	"time"
)

// InstallationAppointment holds the single installation visit scheduled for
// an order. Re-scheduling replaces the existing row; cancelling the order
// deletes it.
type InstallationAppointment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OrderID       uint      `gorm:"uniqueIndex;not null" json:"order_id"`
	ScheduledAt   time.Time `gorm:"not null" json:"scheduled_at"`
	TimeWindow    string    `json:"time_window"` // e.g. "09:00-12:00"
	InstallerName string    `json:"installer_name"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for the InstallationAppointment model
func (InstallationAppointment) TableName() string {
	return "installation_appointments"
}
