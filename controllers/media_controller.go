package controllers

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ivory-interiors/ivory-orders-api/config"
	"github.com/ivory-interiors/ivory-orders-api/models"
	"github.com/ivory-interiors/ivory-orders-api/services"
	"github.com/ivory-interiors/ivory-orders-api/utils"
)

// attachMediaURLs fills in presigned URLs for a slice of media files. A
// presign failure leaves that file's URL empty rather than failing the
// whole response.
func attachMediaURLs(files []models.MediaFile) {
	s3Service := services.GetS3Service()
	if s3Service == nil {
		return
	}
	for i := range files {
		url, err := s3Service.GetPresignedURL(files[i].S3Key)
		if err != nil {
			log.Printf("Failed to presign %s: %v", files[i].S3Key, err)
			continue
		}
		files[i].URL = url
	}
}

// UploadMedia handles POST /api/v1/orders/:id/media - uploads a photo or
// video for an order, optionally linked to a stage (staff only)
func UploadMedia(c *gin.Context) {
	user, ok := requireStaffUser(c)
	if !ok {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "A file form field is required",
			},
		})
		return
	}

	if err := utils.ValidateMediaFile(fileHeader); err != nil {
		uploadErr := err.(*utils.FileUploadError)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    uploadErr.Code,
				"message": uploadErr.Message,
			},
		})
		return
	}

	db := config.GetDB()

	// Optional link to the stage the media documents
	var stageID *uint
	if raw := c.PostForm("stage_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "stage_id must be a number",
				},
			})
			return
		}
		var stage models.Stage
		if err := db.Where("id = ? AND order_id = ?", parsed, order.ID).First(&stage).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "STAGE_NOT_FOUND",
					"message": "Stage does not belong to this order",
				},
			})
			return
		}
		id := uint(parsed)
		stageID = &id
	}

	s3Service := services.GetS3Service()
	if s3Service == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "Media storage is not configured",
			},
		})
		return
	}

	s3Key, err := s3Service.UploadOrderMedia(order.ID, fileHeader)
	if err != nil {
		log.Printf("Failed to upload media for order %s: %v", order.OrderNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "Failed to store uploaded file",
			},
		})
		return
	}

	media := models.MediaFile{
		OrderID:      order.ID,
		StageID:      stageID,
		S3Key:        s3Key,
		FileName:     filepath.Base(fileHeader.Filename),
		ContentType:  utils.ContentTypeForFile(fileHeader.Filename),
		SizeBytes:    fileHeader.Size,
		UploadedByID: &user.ID,
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&media).Error; err != nil {
			return err
		}
		event := models.Event{
			OrderID:     order.ID,
			StageID:     stageID,
			EventType:   models.EventMediaAdded,
			Description: fmt.Sprintf("Media %q uploaded", media.FileName),
			ActorID:     &user.ID,
		}
		return tx.Create(&event).Error
	})
	if txErr != nil {
		// Roll back the orphaned S3 object; a failure here only leaks a file
		if delErr := s3Service.DeleteFile(s3Key); delErr != nil {
			log.Printf("Failed to remove orphaned S3 object %s: %v", s3Key, delErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to record uploaded file",
			},
		})
		return
	}

	if url, err := s3Service.GetPresignedURL(s3Key); err == nil {
		media.URL = url
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    media,
	})
}

// ListMedia handles GET /api/v1/orders/:id/media - lists an order's media
// with presigned URLs (staff only)
func ListMedia(c *gin.Context) {
	if _, ok := requireStaffUser(c); !ok {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var files []models.MediaFile
	if err := db.Where("order_id = ?", order.ID).Order("created_at ASC").Find(&files).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch media files",
			},
		})
		return
	}

	attachMediaURLs(files)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    files,
	})
}

// DeleteMedia handles DELETE /api/v1/orders/:id/media/:mediaId - removes a
// media file from S3 and the database (staff only)
func DeleteMedia(c *gin.Context) {
	if _, ok := requireStaffUser(c); !ok {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var media models.MediaFile
	if err := db.Where("id = ? AND order_id = ?", c.Param("mediaId"), order.ID).First(&media).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MEDIA_NOT_FOUND",
				"message": "Media file not found on this order",
			},
		})
		return
	}

	if s3Service := services.GetS3Service(); s3Service != nil {
		if err := s3Service.DeleteFile(media.S3Key); err != nil {
			log.Printf("Failed to delete S3 object %s: %v", media.S3Key, err)
		}
	}

	if err := db.Delete(&media).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete media file",
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
