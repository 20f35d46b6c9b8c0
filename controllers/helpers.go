package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ivory-interiors/ivory-orders-api/config"
	"github.com/ivory-interiors/ivory-orders-api/middleware"
	"github.com/ivory-interiors/ivory-orders-api/models"
)

// apiError carries an HTTP status plus the error envelope fields. Workflow
// helpers return it so handlers and webhooks can share the same logic while
// writing their own responses.
type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string {
	return e.Message
}

// writeAPIError writes the standard error envelope for an apiError
func writeAPIError(c *gin.Context, err *apiError) {
	c.JSON(err.Status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    err.Code,
			"message": err.Message,
		},
	})
}

// requireStaffUser resolves the authenticated staff user from the bearer
// token. On failure it writes the error response and returns false.
func requireStaffUser(c *gin.Context) (*models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "Staff profile not found. Please create a profile first.",
			},
		})
		return nil, false
	}

	return &user, true
}

// findOrder loads an order by the :id URL parameter. On failure it writes
// the error response and returns false.
func findOrder(c *gin.Context) (*models.Order, bool) {
	orderID := c.Param("id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Order ID is required",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return nil, false
	}

	return &order, true
}
