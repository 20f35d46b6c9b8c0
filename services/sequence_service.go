package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ivory-interiors/ivory-orders-api/models"
)

// OrderNumberPrefix is the business prefix on every order number.
const OrderNumberPrefix = "IV"

// FormatOrderNumber builds the external order number IV-<year>-<seq>,
// with the sequence zero-padded to 4 digits.
func FormatOrderNumber(year, seq int) string {
	return fmt.Sprintf("%s-%04d-%04d", OrderNumberPrefix, year, seq)
}

// NextOrderNumber allocates the next order number for the given year.
// It must be called inside the order-creation transaction: the increment is
// a single atomic UPDATE on the year's sequence row, so two concurrent
// creations in the same year can never receive the same number.
func NextOrderNumber(tx *gorm.DB, year int) (string, error) {
	// Seed the year row if this is the first order of the year. DO NOTHING
	// keeps concurrent first-of-year creations from failing on the insert.
	seed := models.OrderSequence{Year: year}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return "", fmt.Errorf("failed to seed order sequence for year %d: %w", year, err)
	}

	var seq int
	err := tx.Raw(
		"UPDATE order_sequences SET last_seq = last_seq + 1 WHERE year = ? RETURNING last_seq",
		year,
	).Scan(&seq).Error
	if err != nil {
		return "", fmt.Errorf("failed to allocate order sequence for year %d: %w", year, err)
	}

	return FormatOrderNumber(year, seq), nil
}

// CurrentYear returns the calendar year order numbers are scoped to.
func CurrentYear() int {
	return time.Now().Year()
}
