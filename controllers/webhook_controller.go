package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivory-interiors/ivory-orders-api/config"
	"github.com/ivory-interiors/ivory-orders-api/models"
)

// WebhookStageUpdateRequest represents the storefront stage-update payload.
// The stage is addressed by type because the storefront does not know our
// row identifiers.
type WebhookStageUpdateRequest struct {
	StageType string  `json:"stage_type" binding:"required"`
	Status    string  `json:"status" binding:"required"`
	Notes     *string `json:"notes"`
}

// WebhookCreateOrder handles POST /api/v1/webhooks/orders - order creation
// triggered by the external storefront. Same workflow as the staff
// endpoint, with no acting user on the audit trail.
func WebhookCreateOrder(c *gin.Context) {
	var req CreateOrderRequest
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

	result, apiErr := createOrderWorkflow(config.GetDB(), req, nil)
	if apiErr != nil {
		writeAPIError(c, apiErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result,
	})
}

// WebhookUpdateStage handles POST /api/v1/webhooks/orders/:orderNumber/stages
// - stage update triggered by the external storefront, keyed by order
// number and stage type
func WebhookUpdateStage(c *gin.Context) {
	var req WebhookStageUpdateRequest
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

	db := config.GetDB()
	var order models.Order
	if err := db.Where("order_number = ?", c.Param("orderNumber")).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	var stage models.Stage
	if err := db.Where("order_id = ? AND stage_type = ?", order.ID, req.StageType).First(&stage).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STAGE_NOT_FOUND",
				"message": fmt.Sprintf("Order has no stage of type %q", req.StageType),
			},
		})
		return
	}

	if apiErr := applyStageUpdate(db, &order, &stage, req.Status, req.Notes, nil); apiErr != nil {
		writeAPIError(c, apiErr)
		return
	}

	notifyStageChanged(db, &order, &stage)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stage,
	})
}
