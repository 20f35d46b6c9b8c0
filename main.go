package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ivory-interiors/ivory-orders-api/config"
	"github.com/ivory-interiors/ivory-orders-api/controllers"
	"github.com/ivory-interiors/ivory-orders-api/middleware"
	"github.com/ivory-interiors/ivory-orders-api/models"
	"github.com/ivory-interiors/ivory-orders-api/services"
)

func main() {
	log.Println("Starting Ivory Interiors orders API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	err = db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Order{},
		&models.Stage{},
		&models.Event{},
		&models.MediaFile{},
		&models.InstallationAppointment{},
		&models.CustomerRating{},
		&models.OrderSequence{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Media storage is optional in development; endpoints report
	// STORAGE_ERROR when it is not configured
	if cfg.AWSS3Bucket != "" {
		if _, err := services.InitS3Service(); err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		log.Printf("Media storage ready (bucket %s)", cfg.AWSS3Bucket)
	} else {
		log.Println("AWS_S3_BUCKET not set, media upload disabled")
	}

	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the Gin engine with all routes and middleware
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"https://ivoryinteriors.com", "http://localhost:3000"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}))

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Public customer endpoints
		v1.GET("/track", controllers.TrackOrder)
		v1.POST("/orders/:id/rating", controllers.SubmitRating)

		// Storefront webhooks (unauthenticated by contract)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/orders", controllers.WebhookCreateOrder)
			webhooks.POST("/orders/:orderNumber/stages", controllers.WebhookUpdateStage)
		}

		// Staff endpoints behind Auth0 bearer validation
		staff := v1.Group("")
		staff.Use(middleware.EnsureValidToken(cfg))
		{
			staff.POST("/users", controllers.CreateUser)
			staff.GET("/users/me", controllers.GetMyProfile)

			staff.POST("/orders", controllers.CreateOrder)
			staff.GET("/orders", controllers.ListOrders)
			staff.GET("/orders/:id", controllers.GetOrder)
			staff.PATCH("/orders/:id", controllers.UpdateOrder)
			staff.POST("/orders/:id/cancel", controllers.CancelOrder)

			staff.POST("/orders/:id/stages", controllers.CreateStage)
			staff.PATCH("/orders/:id/stages/:stageId", controllers.UpdateStage)
			staff.DELETE("/orders/:id/stages/:stageId", controllers.DeleteStage)

			staff.POST("/orders/:id/appointment", controllers.ScheduleAppointment)

			staff.POST("/orders/:id/media", controllers.UploadMedia)
			staff.GET("/orders/:id/media", controllers.ListMedia)
			staff.DELETE("/orders/:id/media/:mediaId", controllers.DeleteMedia)

			staff.POST("/orders/:id/email", controllers.SendCustomEmail)
			staff.POST("/orders/:id/rating-request", controllers.RequestRating)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Ivory Interiors orders API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
