package models

import (
	"time"

	"github.com/google/uuid"
)

// StockEntry tracks the on-hand quantity for exactly one product.
// QuantityOnHand never goes negative; every mutation refreshes LastUpdated.
// ReorderLevel is a low-stock flag threshold, never a hard cap.
type StockEntry struct {
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	QuantityOnHand int       `gorm:"column:quantity_on_hand;not null;default:0"`
	ReorderLevel   *int      `gorm:"column:reorder_level"`
	Location       *string   `gorm:"column:location"`
	LastUpdated    time.Time `gorm:"column:last_updated;not null"`
}
