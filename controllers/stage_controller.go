package controllers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ivory-interiors/ivory-orders-api/config"
	"github.com/ivory-interiors/ivory-orders-api/models"
	"github.com/ivory-interiors/ivory-orders-api/services"
)

// UpdateStageRequest represents the request body for a stage status change
type UpdateStageRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

// CreateStageRequest represents the request body for appending a stage
type CreateStageRequest struct {
	StageType string  `json:"stage_type" binding:"required"`
	Status    string  `json:"status"`
	Notes     *string `json:"notes"`
}

// applyStageUpdate performs the stage transition: status change with
// set-once timestamps, verbatim notes replacement, and the audit event.
// Any status may be set at any time; there is no transition table. The
// customer email for notify-worthy stage types is sent afterwards,
// best-effort, by notifyStageChanged.
func applyStageUpdate(db *gorm.DB, order *models.Order, stage *models.Stage, status string, notes *string, actorID *uint) *apiError {
	stage.ApplyStatus(status, time.Now())
	if notes != nil {
		stage.Notes = notes
	}

	eventType := models.EventStatusChange
	description := fmt.Sprintf("Stage %q set to %s", models.StageLabel(stage.StageType), status)
	if notes != nil {
		eventType = models.EventNoteAdded
		description = fmt.Sprintf("Stage %q set to %s with note: %s", models.StageLabel(stage.StageType), status, *notes)
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(stage).Error; err != nil {
			return err
		}
		event := models.Event{
			OrderID:     order.ID,
			StageID:     &stage.ID,
			EventType:   eventType,
			Description: description,
			ActorID:     actorID,
		}
		return tx.Create(&event).Error
	})
	if txErr != nil {
		return &apiError{Status: http.StatusInternalServerError, Code: "DATABASE_ERROR", Message: "Failed to update stage"}
	}

	return nil
}

// notifyStageChanged emails the customer when the stage type is one of the
// notify-worthy ones. Failures are logged and swallowed.
func notifyStageChanged(db *gorm.DB, order *models.Order, stage *models.Stage) {
	if !models.NotifiesCustomer(stage.StageType) {
		return
	}

	var customer models.Customer
	if err := db.First(&customer, order.CustomerID).Error; err != nil {
		log.Printf("No customer record for order %s, skipping stage email", order.OrderNumber)
		return
	}

	if err := services.GetNotifier().SendStageChanged(&customer, order, stage); err != nil {
		log.Printf("Failed to send stage-changed email for %s: %v", order.OrderNumber, err)
	}
}

// UpdateStage handles PATCH /api/v1/orders/:id/stages/:stageId - changes a
// stage status and/or notes (staff only)
func UpdateStage(c *gin.Context) {
	user, ok := requireStaffUser(c)
	if !ok {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var stage models.Stage
	if err := db.Where("id = ? AND order_id = ?", c.Param("stageId"), order.ID).First(&stage).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STAGE_NOT_FOUND",
				"message": "Stage does not belong to this order",
			},
		})
		return
	}

	var req UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if !models.IsValidStageStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": fmt.Sprintf("Stage status must be one of PENDING, IN_PROGRESS, DONE; got %q", req.Status),
			},
		})
		return
	}

	if apiErr := applyStageUpdate(db, order, &stage, req.Status, req.Notes, &user.ID); apiErr != nil {
		writeAPIError(c, apiErr)
		return
	}

	notifyStageChanged(db, order, &stage)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stage,
	})
}

// CreateStage handles POST /api/v1/orders/:id/stages - appends a stage of
// any type to an order (staff only)
func CreateStage(c *gin.Context) {
	user, ok := requireStaffUser(c)
	if !ok {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	var req CreateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if !models.IsValidStageType(req.StageType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": fmt.Sprintf("Unknown stage type %q", req.StageType),
			},
		})
		return
	}

	status := req.Status
	if status == "" {
		status = models.StageStatusPending
	}
	if !models.IsValidStageStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": fmt.Sprintf("Stage status must be one of PENDING, IN_PROGRESS, DONE; got %q", status),
			},
		})
		return
	}

	stage := models.Stage{
		OrderID:   order.ID,
		StageType: req.StageType,
		Notes:     req.Notes,
		Status:    models.StageStatusPending,
	}
	// Starting a stage as IN_PROGRESS or DONE stamps its timestamps at creation
	stage.ApplyStatus(status, time.Now())

	db := config.GetDB()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&stage).Error; err != nil {
			return err
		}
		event := models.Event{
			OrderID:     order.ID,
			StageID:     &stage.ID,
			EventType:   models.EventStatusChange,
			Description: fmt.Sprintf("Stage %q added with status %s", models.StageLabel(stage.StageType), stage.Status),
			ActorID:     &user.ID,
		}
		return tx.Create(&event).Error
	})
	if txErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create stage",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    stage,
	})
}

// DeleteStage handles DELETE /api/v1/orders/:id/stages/:stageId - removes a
// stage, allowed only while it is still PENDING (staff only)
func DeleteStage(c *gin.Context) {
	user, ok := requireStaffUser(c)
	if !ok {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var stage models.Stage
	if err := db.Where("id = ? AND order_id = ?", c.Param("stageId"), order.ID).First(&stage).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STAGE_NOT_FOUND",
				"message": "Stage does not belong to this order",
			},
		})
		return
	}

	// The guard runs before any mutation; a rejected delete changes nothing
	if stage.Status != models.StageStatusPending {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATE",
				"message": fmt.Sprintf("Cannot delete a stage with status %s; only PENDING stages can be removed", stage.Status),
			},
		})
		return
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&stage).Error; err != nil {
			return err
		}
		// StageID stays nil: the stage row no longer exists
		event := models.Event{
			OrderID:     order.ID,
			EventType:   models.EventStatusChange,
			Description: fmt.Sprintf("Stage %q removed", models.StageLabel(stage.StageType)),
			ActorID:     &user.ID,
		}
		return tx.Create(&event).Error
	})
	if txErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete stage",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"deleted": true,
		},
	})
}
