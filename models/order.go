package models

import (
	"time"
)

// Order statuses. These are the coarse lifecycle labels on the order itself,
// independent of the per-stage statuses below.
const (
	OrderStatusPendingMeasurement   = "PENDING_MEASUREMENT"
	OrderStatusDesignApproval       = "DESIGN_APPROVAL"
	OrderStatusMaterialsProcurement = "MATERIALS_PROCUREMENT"
	OrderStatusInProduction         = "IN_PRODUCTION"
	OrderStatusQualityCheck         = "QUALITY_CHECK"
	OrderStatusPackaging            = "PACKAGING"
	OrderStatusReadyForInstall      = "READY_FOR_INSTALL"
	OrderStatusInstalled            = "INSTALLED"
	OrderStatusCompleted            = "COMPLETED"
	OrderStatusCancelled            = "CANCELLED"
)

// OrderStatuses lists every valid order status.
var OrderStatuses = []string{
	OrderStatusPendingMeasurement,
	OrderStatusDesignApproval,
	OrderStatusMaterialsProcurement,
	OrderStatusInProduction,
	OrderStatusQualityCheck,
	OrderStatusPackaging,
	OrderStatusReadyForInstall,
	OrderStatusInstalled,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// IsValidOrderStatus reports whether s is one of the enumerated order statuses.
func IsValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Order represents a custom curtains/interiors order in the system
type Order struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OrderNumber     string    `gorm:"uniqueIndex;not null" json:"order_number"` // IV-<year>-<seq>, immutable once assigned
	CustomerID      uint      `gorm:"not null;index" json:"customer_id"`
	Customer        Customer  `gorm:"foreignKey:CustomerID" json:"customer"`
	TotalAmount     float64   `gorm:"not null" json:"total_amount"`
	Status          string    `gorm:"not null;default:'PENDING_MEASUREMENT'" json:"status"`
	ProgressPercent int       `gorm:"not null;default:0;check:progress_percent >= 0 AND progress_percent <= 100" json:"progress_percent"` // set by callers, never derived from stages
	CurrentStageID  *uint     `json:"current_stage_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Stages      []Stage                  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"stages,omitempty"`
	Events      []Event                  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
	MediaFiles  []MediaFile              `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"media_files,omitempty"`
	Appointment *InstallationAppointment `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"appointment,omitempty"`
	Rating      *CustomerRating          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"rating,omitempty"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
