package models

import (
	"time"
)

// Customer represents a customer tracked by phone number.
// Customers are created implicitly the first time an order is placed for
// their phone number; they never log in.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Phone     string    `gorm:"uniqueIndex;not null" json:"phone"` // canonical +<countrycode><number> form
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
