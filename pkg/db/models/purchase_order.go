package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// PurchaseOrder is one inbound replenishment order for a single product.
// Marking it delivered books Quantity onto the product's stock entry exactly
// once; the lifecycle timestamps record when each stage was reached.
type PurchaseOrder struct {
	ID               uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	SupplierID       uuid.UUID                 `gorm:"column:supplier_id;type:uuid;not null;index"`
	ProductID        uuid.UUID                 `gorm:"column:product_id;type:uuid;not null;index"`
	Quantity         int                       `gorm:"column:quantity;not null;default:1"`
	Status           enums.PurchaseOrderStatus `gorm:"column:status;not null;default:'draft'"`
	ExpectedDelivery *time.Time                `gorm:"column:expected_delivery"`
	SubmittedAt      *time.Time                `gorm:"column:submitted_at"`
	ShippedAt        *time.Time                `gorm:"column:shipped_at"`
	DeliveredAt      *time.Time                `gorm:"column:delivered_at"`
	Shipments        []Shipment                `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
