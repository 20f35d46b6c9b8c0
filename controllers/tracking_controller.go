package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ivory-interiors/ivory-orders-api/config"
	"github.com/ivory-interiors/ivory-orders-api/models"
	"github.com/ivory-interiors/ivory-orders-api/utils"
)

// TrackOrder handles GET /api/v1/track?phone=...&order_number=... - the
// public order-status lookup. Both the phone and the order number must
// match; a miss on either returns the same ORDER_NOT_FOUND so the endpoint
// does not reveal which customers exist.
func TrackOrder(c *gin.Context) {
	rawPhone := c.Query("phone")
	orderNumber := c.Query("order_number")
	if rawPhone == "" || orderNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Both phone and order_number are required",
			},
		})
		return
	}

	phone, err := utils.NormalizePhone(rawPhone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var customer models.Customer
	if err := db.Where("phone = ?", phone).First(&customer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "No order matches that phone and order number",
			},
		})
		return
	}

	var order models.Order
	err = db.Where("order_number = ? AND customer_id = ?", orderNumber, customer.ID).
		Preload("Stages", func(db *gorm.DB) *gorm.DB { return db.Order("stages.id ASC") }).
		Preload("MediaFiles").
		Preload("Appointment").
		Preload("Rating").
		First(&order).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "No order matches that phone and order number",
			},
		})
		return
	}

	attachMediaURLs(order.MediaFiles)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
