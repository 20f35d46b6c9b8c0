package models

// OrderSequence stores the last allocated order-number sequence for a
// calendar year. The row is incremented atomically so that concurrent order
// creations within the same year never share a sequence number.
type OrderSequence struct {
	Year    int `gorm:"primaryKey" json:"year"`
	LastSeq int `gorm:"not null;default:0" json:"last_seq"`
}

// TableName specifies the table name for the OrderSequence model
func (OrderSequence) TableName() string {
	return "order_sequences"
}
