package models

import (
	"time"
)

// MediaFile represents a photo or video attached to an order, stored in S3
type MediaFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;index" json:"order_id"`
	StageID      *uint     `gorm:"index" json:"stage_id"` // optional link to the stage the media documents
	S3Key        string    `gorm:"not null" json:"s3_key"`
	FileName     string    `gorm:"not null" json:"file_name"`
	ContentType  string    `gorm:"not null" json:"content_type"`
	SizeBytes    int64     `gorm:"not null" json:"size_bytes"`
	UploadedByID *uint     `json:"uploaded_by_id"`
	URL          string    `gorm:"-" json:"url,omitempty"` // computed field, presigned URL
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for the MediaFile model
func (MediaFile) TableName() string {
	return "media_files"
}
