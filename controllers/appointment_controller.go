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

// ScheduleAppointmentRequest represents the request body for scheduling an
// installation appointment
type ScheduleAppointmentRequest struct {
	ScheduledAt   time.Time `json:"scheduled_at" binding:"required"`
	TimeWindow    string    `json:"time_window"`
	InstallerName string    `json:"installer_name"`
	Notes         string    `json:"notes"`
}

// ScheduleAppointment handles POST /api/v1/orders/:id/appointment - creates
// or replaces the order's single installation appointment (staff only)
func ScheduleAppointment(c *gin.Context) {
	user, ok := requireStaffUser(c)
	if !ok {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	if order.Status == models.OrderStatusCancelled {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATE",
				"message": "Cannot schedule installation for a cancelled order",
			},
		})
		return
	}

	var req ScheduleAppointmentRequest
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

	db := config.GetDB()

	// One appointment per order: re-scheduling replaces the existing row
	var appointment models.InstallationAppointment
	err := db.Where("order_id = ?", order.ID).First(&appointment).Error
	isNew := err != nil

	appointment.OrderID = order.ID
	appointment.ScheduledAt = req.ScheduledAt
	appointment.TimeWindow = req.TimeWindow
	appointment.InstallerName = req.InstallerName
	appointment.Notes = req.Notes

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&appointment).Error; err != nil {
			return err
		}
		verb := "scheduled"
		if !isNew {
			verb = "rescheduled"
		}
		event := models.Event{
			OrderID:     order.ID,
			EventType:   models.EventAppointmentSet,
			Description: fmt.Sprintf("Installation %s for %s %s", verb, req.ScheduledAt.Format("2006-01-02"), req.TimeWindow),
			ActorID:     &user.ID,
		}
		return tx.Create(&event).Error
	})
	if txErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to schedule appointment",
			},
		})
		return
	}

	// Fire-and-forget confirmation email
	var customer models.Customer
	if err := db.First(&customer, order.CustomerID).Error; err == nil {
		if err := services.GetNotifier().SendInstallationScheduled(&customer, order, &appointment); err != nil {
			log.Printf("Failed to send installation email for %s: %v", order.OrderNumber, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    appointment,
	})
}
