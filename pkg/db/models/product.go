package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents one catalog listing. Identity (ID, SKU) is immutable;
// price and category stay mutable by the catalog owner.
type Product struct {
	ID         uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	SupplierID uuid.UUID   `gorm:"column:supplier_id;type:uuid;not null;index"`
	Name       string      `gorm:"column:name;not null"`
	SKU        string      `gorm:"column:sku;not null;uniqueIndex"`
	Category   *string     `gorm:"column:category"`
	PriceCents int         `gorm:"column:price_cents;not null;default:0"`
	Stock      *StockEntry `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
