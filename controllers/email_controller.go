package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivory-interiors/ivory-orders-api/config"
	"github.com/ivory-interiors/ivory-orders-api/models"
	"github.com/ivory-interiors/ivory-orders-api/services"
)

// SendEmailRequest represents the request body for a staff-composed email
type SendEmailRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// SendCustomEmail handles POST /api/v1/orders/:id/email - sends a
// staff-composed email to the order's customer (staff only)
func SendCustomEmail(c *gin.Context) {
	if _, ok := requireStaffUser(c); !ok {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Subject and body are required",
				"details": err.Error(),
			},
		})
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

	if err := services.GetNotifier().SendCustom(&customer, order, req.Subject, req.Body); err != nil {
		log.Printf("Failed to send custom email for %s: %v", order.OrderNumber, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMAIL_ERROR",
				"message": "Failed to send email",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Email sent",
	})
}
