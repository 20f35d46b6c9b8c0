package models

import (
	"time"
)

// CustomerRating is the single post-installation rating for an order.
// At most one rating exists per order; submission is create-once.
type CustomerRating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"uniqueIndex;not null" json:"order_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   *string   `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the CustomerRating model
func (CustomerRating) TableName() string {
	return "customer_ratings"
}
