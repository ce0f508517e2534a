package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// Repository persists orders and line items.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
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

// CreateOrder inserts the order header.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Create(order).Error
}

// CreateLineItems inserts the order's lines.
func (r *Repository) CreateLineItems(ctx context.Context, items []models.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// FindByID loads one order with its line items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByPlacer returns the orders placed by one user, newest first.
func (r *Repository) ListByPlacer(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("placed_by = ?", userID).
		Order("order_date DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListContainingProduct returns orders holding at least one line for the
// product, newest first.
func (r *Repository) ListContainingProduct(ctx context.Context, productID uuid.UUID) ([]models.Order, error) {
	return r.listByLineItemFilter(ctx,
		"SELECT DISTINCT order_id FROM line_items WHERE product_id = ?", productID)
}

// ListContainingSupplierProducts returns orders holding at least one line
// for any product owned by the supplier.
func (r *Repository) ListContainingSupplierProducts(ctx context.Context, supplierID uuid.UUID) ([]models.Order, error) {
	return r.listByLineItemFilter(ctx,
		"SELECT DISTINCT li.order_id FROM line_items li JOIN products p ON p.id = li.product_id WHERE p.supplier_id = ?",
		supplierID)
}

func (r *Repository) listByLineItemFilter(ctx context.Context, subquery string, arg any) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id IN ("+subquery+")", arg).
		Order("order_date DESC").
		Find(&rows).
		Error
	return rows, err
}

// UpdateOrderStatus sets the header status and reports whether a row matched.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FindLineItem loads one line item scoped to its parent order.
func (r *Repository) FindLineItem(ctx context.Context, orderID, lineItemID uuid.UUID) (*models.LineItem, error) {
	var item models.LineItem
	err := r.db.WithContext(ctx).
		First(&item, "id = ? AND order_id = ?", lineItemID, orderID).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateLineItemStatus sets one line's status and reports whether a row matched.
func (r *Repository) UpdateLineItemStatus(ctx context.Context, lineItemID uuid.UUID, status enums.LineItemStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.LineItem{}).
		Where("id = ?", lineItemID).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
