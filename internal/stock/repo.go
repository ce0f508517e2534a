package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
)

// LowStockRow is one entry of the low-stock feed, joined with its product.
type LowStockRow struct {
	ProductID      uuid.UUID `json:"product_id" gorm:"column:product_id"`
	ProductName    string    `json:"product_name" gorm:"column:product_name"`
	SKU            string    `json:"sku" gorm:"column:sku"`
	QuantityOnHand int       `json:"quantity_on_hand" gorm:"column:quantity_on_hand"`
	ReorderLevel   int       `json:"reorder_level" gorm:"column:reorder_level"`
	Location       *string   `json:"location,omitempty" gorm:"column:location"`
	Deficit        int       `json:"deficit" gorm:"column:deficit"`
}

const lowStockQuery = `
SELECT p.id AS product_id,
       p.name AS product_name,
       p.sku,
       s.quantity_on_hand,
       s.reorder_level,
       s.location,
       (s.reorder_level - s.quantity_on_hand) AS deficit
FROM stock_entries s
JOIN products p ON p.id = s.product_id
WHERE s.reorder_level IS NOT NULL
  AND s.quantity_on_hand <= s.reorder_level
`

// Repository persists stock entries.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
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

// Get loads the stock entry for the provided product.
func (r *Repository) Get(ctx context.Context, productID uuid.UUID) (*models.StockEntry, error) {
	var entry models.StockEntry
	if err := r.db.WithContext(ctx).First(&entry, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create inserts a new stock entry row.
func (r *Repository) Create(ctx context.Context, entry *models.StockEntry) error {
	if entry.LastUpdated.IsZero() {
		entry.LastUpdated = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// Adjust applies quantity_on_hand += delta as one conditional UPDATE and
// reports whether a row was changed. The underflow guard lives in the WHERE
// clause, so concurrent adjustments on the same product serialize at the row
// level and can never drive the quantity negative.
func (r *Repository) Adjust(ctx context.Context, productID uuid.UUID, delta int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.StockEntry{}).
		Where("product_id = ? AND quantity_on_hand + ? >= 0", productID, delta).
		UpdateColumns(map[string]any{
			"quantity_on_hand": gorm.Expr("quantity_on_hand + ?", delta),
			"last_updated":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListLowStock returns entries at or below their reorder level, worst deficit
// first, optionally scoped to one supplier's products.
func (r *Repository) ListLowStock(ctx context.Context, supplierID *uuid.UUID) ([]LowStockRow, error) {
	query := lowStockQuery
	args := []any{}
	if supplierID != nil {
		query += "  AND p.supplier_id = ?\n"
		args = append(args, *supplierID)
	}
	query += "ORDER BY deficit DESC"

	var rows []LowStockRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
