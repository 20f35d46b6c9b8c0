package controllers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ivory-interiors/ivory-orders-api/config"
	"github.com/ivory-interiors/ivory-orders-api/models"
	"github.com/ivory-interiors/ivory-orders-api/services"
)

// SubmitRatingRequest represents the request body for a customer rating
type SubmitRatingRequest struct {
	Rating  int     `json:"rating" binding:"required,gte=1,lte=5"`
	Comment *string `json:"comment"`
}

// SubmitRating handles POST /api/v1/orders/:id/rating - the customer-facing
// rating submission. Exactly one rating may exist per order; a successful
// submission also marks the order COMPLETED at 100% progress.
func SubmitRating(c *gin.Context) {
	order, ok := findOrder(c)
	if !ok {
		return
	}

	var req SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Rating must be a number between 1 and 5",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()

	// Create-once: reject before touching anything when a rating exists
	var existing models.CustomerRating
	if err := db.Where("order_id = ?", order.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RATING_EXISTS",
				"message": "This order has already been rated",
			},
		})
		return
	}

	rating := models.CustomerRating{
		OrderID: order.ID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rating).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"status":           models.OrderStatusCompleted,
			"progress_percent": 100,
		}
		if err := tx.Model(order).Updates(updates).Error; err != nil {
			return err
		}
		event := models.Event{
			OrderID:     order.ID,
			EventType:   models.EventNoteAdded,
			Description: fmt.Sprintf("Customer rated the order %d/5", req.Rating),
		}
		return tx.Create(&event).Error
	})
	if txErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save rating",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    rating,
	})
}

// RequestRating handles POST /api/v1/orders/:id/rating-request - emails the
// customer asking for a rating (staff only)
func RequestRating(c *gin.Context) {
	if _, ok := requireStaffUser(c); !ok {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var customer models.Customer
	if err := db.First(&customer, order.CustomerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CUSTOMER_NOT_FOUND",
				"message": "Customer record not found for this order",
			},
		})
		return
	}

	if err := services.GetNotifier().SendRatingRequest(&customer, order); err != nil {
		log.Printf("Failed to send rating-request email for %s: %v", order.OrderNumber, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Rating request sent",
	})
}
