package models

import (
	"time"
)

// Stage types in fulfillment order. Every order gets the full set at
// creation time; the list index defines the pipeline position.
const (
	StageOrderReceived       = "ORDER_RECEIVED"
	StageSiteMeasurement     = "SITE_MEASUREMENT"
	StageDesignApproval      = "DESIGN_APPROVAL"
	StageMaterialsProcure    = "MATERIALS_PROCUREMENT"
	StageProductionCutting   = "PRODUCTION_CUTTING"
	StageProductionStitching = "PRODUCTION_STITCHING"
	StageProductionAssembly  = "PRODUCTION_ASSEMBLY"
	StageFinishing           = "FINISHING"
	StageQualityCheck        = "QUALITY_CHECK"
	StagePackaging           = "PACKAGING"
	StageDeliveryScheduling  = "DELIVERY_SCHEDULING"
	StageInstallation        = "INSTALLATION"
	StageRating              = "RATING"
)

// Stage statuses
const (
	StageStatusPending    = "PENDING"
	StageStatusInProgress = "IN_PROGRESS"
	StageStatusDone       = "DONE"
)

// StageTypes lists the 13 stage types in pipeline order.
var StageTypes = []string{
	StageOrderReceived,
	StageSiteMeasurement,
	StageDesignApproval,
	StageMaterialsProcure,
	StageProductionCutting,
	StageProductionStitching,
	StageProductionAssembly,
	StageFinishing,
	StageQualityCheck,
	StagePackaging,
	StageDeliveryScheduling,
	StageInstallation,
	StageRating,
}

// stageLabels maps stage types to the labels used in events and emails.
var stageLabels = map[string]string{
	StageOrderReceived:       "Order received",
	StageSiteMeasurement:     "Site measurement",
	StageDesignApproval:      "Design approval",
	StageMaterialsProcure:    "Materials procurement",
	StageProductionCutting:   "Production - cutting",
	StageProductionStitching: "Production - stitching",
	StageProductionAssembly:  "Production - assembly",
	StageFinishing:           "Finishing",
	StageQualityCheck:        "Quality check",
	StagePackaging:           "Packaging",
	StageDeliveryScheduling:  "Delivery scheduling",
	StageInstallation:        "Installation",
	StageRating:              "Rating",
}

// notifyStageTypes are the stage types whose status changes trigger a
// customer email: the design sign-off gate and the two installation-facing
// steps.
var notifyStageTypes = map[string]bool{
	StageDesignApproval:     true,
	StageDeliveryScheduling: true,
	StageInstallation:       true,
}

// IsValidStageType reports whether t is one of the 13 stage types.
func IsValidStageType(t string) bool {
	_, ok := stageLabels[t]
	return ok
}

// IsValidStageStatus reports whether s is PENDING, IN_PROGRESS or DONE.
func IsValidStageStatus(s string) bool {
	return s == StageStatusPending || s == StageStatusInProgress || s == StageStatusDone
}

// StageLabel returns the human-readable label for a stage type, or the raw
// type string if it is unknown.
func StageLabel(t string) string {
	if label, ok := stageLabels[t]; ok {
		return label
	}
	return t
}

// NotifiesCustomer reports whether status changes on this stage type should
// send a customer email.
func NotifiesCustomer(t string) bool {
	return notifyStageTypes[t]
}

// Stage represents one named step in the fixed fulfillment pipeline of an order
type Stage struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OrderID     uint       `gorm:"not null;index" json:"order_id"`
	StageType   string     `gorm:"not null" json:"stage_type"`
	Status      string     `gorm:"not null;default:'PENDING'" json:"status"` // PENDING, IN_PROGRESS, DONE
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Notes       *string    `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Stage model
func (Stage) TableName() string {
	return "stages"
}

// ApplyStatus sets the stage status and stamps StartedAt/CompletedAt on the
// first transition into IN_PROGRESS/DONE. Timestamps are never overwritten,
// so re-applying the same status is a no-op on them.
func (s *Stage) ApplyStatus(status string, now time.Time) {
	s.Status = status
	switch status {
	case StageStatusInProgress:
		if s.StartedAt == nil {
			t := now
			s.StartedAt = &t
		}
	case StageStatusDone:
		if s.CompletedAt == nil {
			t := now
			s.CompletedAt = &t
		}
	}
}

// DefaultStageSet builds the full 13-stage set for a new order. The
// ORDER_RECEIVED stage is pre-completed with both timestamps set to now;
// everything else starts PENDING.
func DefaultStageSet(orderID uint, now time.Time) []Stage {
	stages := make([]Stage, 0, len(StageTypes))
	for _, stageType := range StageTypes {
		stage := Stage{
			OrderID:   orderID,
			StageType: stageType,
			Status:    StageStatusPending,
		}
		if stageType == StageOrderReceived {
			t := now
			stage.Status = StageStatusDone
			stage.StartedAt = &t
			stage.CompletedAt = &t
		}
		stages = append(stages, stage)
	}
	return stages
}
