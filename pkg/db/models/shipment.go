package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// Shipment is one tracked delivery against a purchase order. A purchase
// order may spread across several shipments; the last one to arrive flips
// the order to delivered.
type Shipment struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	PurchaseOrderID   uuid.UUID            `gorm:"column:purchase_order_id;type:uuid;not null;index"`
	TrackingNumber    *string              `gorm:"column:tracking_number"`
	CarrierDetails    *string              `gorm:"column:carrier_details"`
	Status            enums.ShipmentStatus `gorm:"column:status;not null;default:'in_transit'"`
	EstimatedDelivery *time.Time           `gorm:"column:estimated_delivery"`
	ActualDelivery    *time.Time           `gorm:"column:actual_delivery"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
