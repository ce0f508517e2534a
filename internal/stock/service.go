package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
)

// DefaultReorderLevel applies when a stock entry is provisioned without an
// explicit threshold.
const DefaultReorderLevel = 10

// Shortfall describes one rejected decrement.
type Shortfall struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// Service exposes the stock ledger operations.
type Service interface {
	Get(ctx context.Context, productID uuid.UUID) (*models.StockEntry, error)
	CreateForProduct(ctx context.Context, input CreateEntryInput) (*models.StockEntry, error)
	Adjust(ctx context.Context, productID uuid.UUID, delta int) (*models.StockEntry, error)
	Increase(ctx context.Context, productID uuid.UUID, amount int) (*models.StockEntry, error)
	Decrease(ctx context.Context, productID uuid.UUID, amount int) (*models.StockEntry, error)
	ListLowStock(ctx context.Context, supplierID *uuid.UUID) ([]LowStockRow, error)
}

// CreateEntryInput captures the data needed to provision a stock entry.
type CreateEntryInput struct {
	ProductID       uuid.UUID
	InitialQuantity int
	ReorderLevel    *int
	Location        *string
}

type productChecker interface {
	Exists(ctx context.Context, productID uuid.UUID) (bool, error)
}

type service struct {
	repo     *Repository
	products productChecker
	metrics  *metrics.CheckoutMetrics
}

// NewService wires the stock ledger service.
func NewService(repo *Repository, products productChecker, m *metrics.CheckoutMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product checker required")
	}
	return &service{repo: repo, products: products, metrics: m}, nil
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*models.StockEntry, error) {
	entry, err := s.repo.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock entry not found")
		}
		return nil, err
	}
	return entry, nil
}

func (s *service) CreateForProduct(ctx context.Context, input CreateEntryInput) (*models.StockEntry, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.InitialQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial quantity must not be negative")
	}
	if input.ReorderLevel != nil && *input.ReorderLevel < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reorder level must not be negative")
	}

	exists, err := s.products.Exists(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	reorder := input.ReorderLevel
	if reorder == nil {
		level := DefaultReorderLevel
		reorder = &level
	}

	entry := &models.StockEntry{
		ProductID:      input.ProductID,
		QuantityOnHand: input.InitialQuantity,
		ReorderLevel:   reorder,
		Location:       input.Location,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "stock entry already exists for product")
		}
		return nil, err
	}
	return entry, nil
}

func (s *service) Adjust(ctx context.Context, productID uuid.UUID, delta int) (*models.StockEntry, error) {
	entry, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if delta == 0 {
		return entry, nil
	}

	applied, err := s.repo.Adjust(ctx, productID, delta)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "adjustment would drive stock negative").
			WithDetails([]Shortfall{{
				ProductID: productID,
				Requested: -delta,
				Available: entry.QuantityOnHand,
			}})
	}

	if delta > 0 {
		s.metrics.IncAdjustment("increase")
	} else {
		s.metrics.IncAdjustment("decrease")
	}
	return s.Get(ctx, productID)
}

func (s *service) Increase(ctx context.Context, productID uuid.UUID, amount int) (*models.StockEntry, error) {
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a positive integer")
	}
	return s.Adjust(ctx, productID, amount)
}

func (s *service) Decrease(ctx context.Context, productID uuid.UUID, amount int) (*models.StockEntry, error) {
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a positive integer")
	}
	return s.Adjust(ctx, productID, -amount)
}

func (s *service) ListLowStock(ctx context.Context, supplierID *uuid.UUID) ([]LowStockRow, error) {
	return s.repo.ListLowStock(ctx, supplierID)
}
