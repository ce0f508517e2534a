package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// LineItem captures the snapshot of one product within an order. Name and
// PriceAtPurchaseCents are frozen at placement, decoupled from later catalog
// edits. Status moves independently of the order header.
type LineItem struct {
	ID                   uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	OrderID              uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID            uuid.UUID            `gorm:"column:product_id;type:uuid;not null;index"`
	Name                 string               `gorm:"column:name;not null"`
	Quantity             int                  `gorm:"column:quantity;not null"`
	PriceAtPurchaseCents int                  `gorm:"column:price_at_purchase_cents;not null"`
	Status               enums.LineItemStatus `gorm:"column:status;not null;default:'pending'"`
	CreatedAt            time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
