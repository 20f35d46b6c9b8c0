package models

import (
	"time"
)

// Event types
const (
	EventStatusChange   = "STATUS_CHANGE"
	EventNoteAdded      = "NOTE_ADDED"
	EventMediaAdded     = "MEDIA_ADDED"
	EventAppointmentSet = "APPOINTMENT_SET"
	EventOrderCancelled = "ORDER_CANCELLED"
)

// Event is an append-only audit record of a change to an order or one of
// its stages. Events are never updated or deleted; there is no API surface
// that mutates them.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	StageID     *uint     `gorm:"index" json:"stage_id"` // nil for order-level events and deleted stages
	EventType   string    `gorm:"not null" json:"event_type"`
	Description string    `gorm:"type:text;not null" json:"description"`
	ActorID     *uint     `json:"actor_id"` // staff user, nil for webhook/customer triggers
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for the Event model
func (Event) TableName() string {
	return "events"
}
