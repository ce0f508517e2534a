package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// Order is the persisted order header. TotalCents is computed at placement
// and frozen; later product price changes never touch it. Orders own their
// line items (cascade delete) and are never deleted through this core.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	PlacedBy        uuid.UUID         `gorm:"column:placed_by;type:uuid;not null;index"`
	OrderDate       time.Time         `gorm:"column:order_date;not null"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	TotalCents      int               `gorm:"column:total_cents;not null"`
	ShippingAddress string            `gorm:"column:shipping_address;not null"`
	CustomerName    *string           `gorm:"column:customer_name"`
	CustomerEmail   *string           `gorm:"column:customer_email"`
	Items           []LineItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
