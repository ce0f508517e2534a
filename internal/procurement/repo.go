package procurement

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
)

// Repository persists purchase orders and their shipments.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a procurement repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// SupplierExists reports whether the supplier row is present.
func (r *Repository) SupplierExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Supplier{}).
		Where("id = ?", id).
		Count(&count).
		Error
	return count > 0, err
}

// CreatePurchaseOrder inserts a new purchase order row.
func (r *Repository) CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit("Shipments").Create(po).Error
}

// FindPurchaseOrder loads one purchase order with its shipments.
func (r *Repository) FindPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Shipments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&po, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// ListPurchaseOrders returns all purchase orders, newest first, optionally
// scoped to one supplier.
func (r *Repository) ListPurchaseOrders(ctx context.Context, supplierID *uuid.UUID) ([]models.PurchaseOrder, error) {
	query := r.db.WithContext(ctx).Preload("Shipments")
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}
	var rows []models.PurchaseOrder
	err := query.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// SavePurchaseOrder writes the full purchase order row back.
func (r *Repository) SavePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit("Shipments").Save(po).Error
}

// DeletePurchaseOrder removes the purchase order and its shipments.
func (r *Repository) DeletePurchaseOrder(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", id).
		Delete(&models.Shipment{}).
		Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.PurchaseOrder{}, "id = ?", id).Error
}

// CreateShipment inserts a new shipment row.
func (r *Repository) CreateShipment(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Create(shipment).Error
}

// FindShipment loads one shipment.
func (r *Repository) FindShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shipment, nil
}

// ListShipmentsForOrder returns a purchase order's shipments, newest first.
func (r *Repository) ListShipmentsForOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]models.Shipment, error) {
	var rows []models.Shipment
	err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// SaveShipment writes the full shipment row back.
func (r *Repository) SaveShipment(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Save(shipment).Error
}
