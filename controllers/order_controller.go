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
	"github.com/ivory-interiors/ivory-orders-api/utils"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	CustomerPhone string  `json:"customer_phone" binding:"required"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email" binding:"omitempty,email"`
	TotalAmount   float64 `json:"total_amount" binding:"required,gt=0"`
}

// UpdateOrderRequest represents the request body for updating order status,
// progress or current stage. All fields are optional; progress is never
// derived from stage state, callers set it explicitly.
type UpdateOrderRequest struct {
	Status          *string `json:"status"`
	ProgressPercent *int    `json:"progress_percent" binding:"omitempty,gte=0,lte=100"`
	CurrentStageID  *uint   `json:"current_stage_id"`
}

// CancelOrderRequest represents the request body for cancelling an order
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// createOrderResult bundles what the creation workflow produced
type createOrderResult struct {
	Order    models.Order    `json:"order"`
	Customer models.Customer `json:"customer"`
	Stages   []models.Stage  `json:"stages"`
}

// createOrderWorkflow runs the full order-creation sequence: resolve or
// create the customer by phone, allocate the year-scoped order number,
// seed the 13-stage pipeline with ORDER_RECEIVED pre-completed, and append
// the creation event. The order-received email goes out after commit and is
// best-effort. Shared by the staff endpoint and the storefront webhook.
func createOrderWorkflow(db *gorm.DB, req CreateOrderRequest, actorID *uint) (*createOrderResult, *apiError) {
	phone, err := utils.NormalizePhone(req.CustomerPhone)
	if err != nil {
		return nil, &apiError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: err.Error()}
	}

	var result createOrderResult
	txErr := db.Transaction(func(tx *gorm.DB) error {
		// Resolve or create the customer; phone is the dedup key
		var customer models.Customer
		if err := tx.Where("phone = ?", phone).First(&customer).Error; err != nil {
			customer = models.Customer{Name: req.CustomerName, Phone: phone, Email: req.CustomerEmail}
			if err := tx.Create(&customer).Error; err != nil {
				return err
			}
		} else if customer.Name == "" && req.CustomerName != "" {
			if err := tx.Model(&customer).Update("name", req.CustomerName).Error; err != nil {
				return err
			}
		}

		orderNumber, err := services.NextOrderNumber(tx, services.CurrentYear())
		if err != nil {
			return err
		}

		order := models.Order{
			OrderNumber:     orderNumber,
			CustomerID:      customer.ID,
			TotalAmount:     req.TotalAmount,
			Status:          models.OrderStatusPendingMeasurement,
			ProgressPercent: 5,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		now := order.CreatedAt
		stages := models.DefaultStageSet(order.ID, now)
		if err := tx.Create(&stages).Error; err != nil {
			return err
		}

		// ORDER_RECEIVED is the current stage of a fresh order
		if err := tx.Model(&order).Update("current_stage_id", stages[0].ID).Error; err != nil {
			return err
		}

		event := models.Event{
			OrderID:     order.ID,
			StageID:     &stages[0].ID,
			EventType:   models.EventStatusChange,
			Description: fmt.Sprintf("Order %s created", order.OrderNumber),
			ActorID:     actorID,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		result = createOrderResult{Order: order, Customer: customer, Stages: stages}
		return nil
	})
	if txErr != nil {
		return nil, &apiError{Status: http.StatusInternalServerError, Code: "DATABASE_ERROR", Message: "Failed to create order"}
	}

	// Fire-and-forget: a failed email never undoes the order
	if err := services.GetNotifier().SendOrderReceived(&result.Customer, &result.Order); err != nil {
		log.Printf("Failed to send order-received email for %s: %v", result.Order.OrderNumber, err)
	}

	return &result, nil
}

// CreateOrder handles POST /api/v1/orders - creates a new order with its
// full stage pipeline (staff only)
func CreateOrder(c *gin.Context) {
	user, ok := requireStaffUser(c)
	if !ok {
		return
	}

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

	result, apiErr := createOrderWorkflow(config.GetDB(), req, &user.ID)
	if apiErr != nil {
		writeAPIError(c, apiErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result,
	})
}

// ListOrders handles GET /api/v1/orders - lists orders, optionally filtered
// by status or customer phone (staff only)
func ListOrders(c *gin.Context) {
	if _, ok := requireStaffUser(c); !ok {
		return
	}

	db := config.GetDB()
	query := db.Preload("Customer").Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		if !models.IsValidOrderStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": fmt.Sprintf("Unknown order status %q", status),
				},
			})
			return
		}
		query = query.Where("status = ?", status)
	}

	if rawPhone := c.Query("phone"); rawPhone != "" {
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
		query = query.Joins("JOIN customers ON customers.id = orders.customer_id").
			Where("customers.phone = ?", phone)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id - returns an order with its
// stages, events, media, appointment and rating (staff only)
func GetOrder(c *gin.Context) {
	if _, ok := requireStaffUser(c); !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	err := db.Preload("Customer").
		Preload("Stages", func(db *gorm.DB) *gorm.DB { return db.Order("stages.id ASC") }).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("events.created_at ASC") }).
		Preload("MediaFiles").
		Preload("Appointment").
		Preload("Rating").
		First(&order, c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
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

// UpdateOrder handles PATCH /api/v1/orders/:id - updates order status,
// progress percent and/or current stage (staff only)
func UpdateOrder(c *gin.Context) {
	user, ok := requireStaffUser(c)
	if !ok {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	var req UpdateOrderRequest
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

	if req.Status != nil && !models.IsValidOrderStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": fmt.Sprintf("Unknown order status %q", *req.Status),
			},
		})
		return
	}

	// CANCELLED is terminal; use the cancel endpoint to get there
	if req.Status != nil && order.Status == models.OrderStatusCancelled {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATE",
				"message": "Cannot change status of a cancelled order",
			},
		})
		return
	}

	updates := make(map[string]interface{})
	var changes []string
	if req.Status != nil {
		updates["status"] = *req.Status
		changes = append(changes, fmt.Sprintf("status to %s", *req.Status))
	}
	if req.ProgressPercent != nil {
		updates["progress_percent"] = *req.ProgressPercent
		changes = append(changes, fmt.Sprintf("progress to %d%%", *req.ProgressPercent))
	}
	if req.CurrentStageID != nil {
		var stage models.Stage
		db := config.GetDB()
		if err := db.Where("id = ? AND order_id = ?", *req.CurrentStageID, order.ID).First(&stage).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "STAGE_NOT_FOUND",
					"message": "Stage does not belong to this order",
				},
			})
			return
		}
		updates["current_stage_id"] = *req.CurrentStageID
		changes = append(changes, fmt.Sprintf("current stage to %s", models.StageLabel(stage.StageType)))
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    order,
		})
		return
	}

	db := config.GetDB()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(order).Updates(updates).Error; err != nil {
			return err
		}
		description := "Order updated: "
		for i, change := range changes {
			if i > 0 {
				description += ", "
			}
			description += change
		}
		event := models.Event{
			OrderID:     order.ID,
			EventType:   models.EventStatusChange,
			Description: description,
			ActorID:     &user.ID,
		}
		return tx.Create(&event).Error
	})
	if txErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CancelOrder handles POST /api/v1/orders/:id/cancel - cancels an order,
// removing any scheduled installation appointment (staff only)
func CancelOrder(c *gin.Context) {
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
				"message": "Order is already cancelled",
			},
		})
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
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

	reason := req.Reason
	if reason == "" {
		reason = "cancelled by staff"
	}

	db := config.GetDB()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(order).Update("status", models.OrderStatusCancelled).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.InstallationAppointment{}).Error; err != nil {
			return err
		}
		event := models.Event{
			OrderID:     order.ID,
			EventType:   models.EventOrderCancelled,
			Description: fmt.Sprintf("Order %s cancelled: %s", order.OrderNumber, reason),
			ActorID:     &user.ID,
		}
		return tx.Create(&event).Error
	})
	if txErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to cancel order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
