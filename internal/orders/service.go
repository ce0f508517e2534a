package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/internal/cart"
	"github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// BuyerInfo carries the caller identity and shipping/contact fields for one
// checkout. Authentication is the caller's concern; the core only records
// the references it is handed.
type BuyerInfo struct {
	PlacedBy        uuid.UUID
	ShippingAddress string
	CustomerName    *string
	CustomerEmail   *string
}

// SkippedLine records a raw cart entry excluded during reconciliation
// because its product no longer exists.
type SkippedLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
}

// Shortfall describes one line that failed stock validation.
type Shortfall struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Requested   int       `json:"requested"`
	Available   int       `json:"available"`
}

// PlacedOrder is the service's success result: the persisted order plus the
// reconciliation notes accumulated on the way.
type PlacedOrder struct {
	Order   *models.Order `json:"order"`
	Skipped []SkippedLine `json:"skipped,omitempty"`
}

// Service converts session carts into persisted orders and drives
// post-placement status transitions and role-scoped projections.
type Service interface {
	PlaceOrder(ctx context.Context, sessionID string, info BuyerInfo) (*PlacedOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByPlacer(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListContainingProduct(ctx context.Context, productID uuid.UUID) ([]models.Order, error)
	ListContainingSupplierProducts(ctx context.Context, supplierID uuid.UUID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	UpdateLineItemStatus(ctx context.Context, orderID, lineItemID uuid.UUID, status enums.LineItemStatus) (*models.LineItem, error)
}

type service struct {
	repo     *Repository
	tx       txRunner
	carts    cart.Store
	products productLoader
	stock    *stock.Repository
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
}

// NewService wires the order builder.
func NewService(
	repo *Repository,
	tx txRunner,
	carts cart.Store,
	products productLoader,
	ledger *stock.Repository,
	logg *logger.Logger,
	m *metrics.CheckoutMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		carts:    carts,
		products: products,
		stock:    ledger,
		logg:     logg,
		metrics:  m,
	}, nil
}

type validatedLine struct {
	product  *models.Product
	quantity int
}

// PlaceOrder runs the validate-then-commit checkout workflow. Validation
// never mutates stock; the commit pass persists the order header, its line
// items, and every stock decrement as a single transaction. A decrement that
// no longer fits at commit time rolls the whole transaction back.
func (s *service) PlaceOrder(ctx context.Context, sessionID string, info BuyerInfo) (*PlacedOrder, error) {
	start := time.Now()
	placed, err := s.placeOrder(ctx, sessionID, info)
	s.observe(start, err)
	return placed, err
}

func (s *service) placeOrder(ctx context.Context, sessionID string, info BuyerInfo) (*PlacedOrder, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if info.PlacedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "placing user is required")
	}
	if strings.TrimSpace(info.ShippingAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}

	entries, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	// Reconciliation pass: resolve products, dropping lines whose product
	// was deleted since being added to the cart.
	var (
		lines   []validatedLine
		skipped []SkippedLine
	)
	for _, productID := range sortedIDs(entries) {
		requested := entries[productID]
		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				skipped = append(skipped, SkippedLine{ProductID: productID, Requested: requested})
				continue
			}
			return nil, err
		}
		lines = append(lines, validatedLine{product: product, quantity: requested})
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "no orderable items left in cart").
			WithDetails(map[string]any{"skipped": skipped})
	}

	// Stock validation pass, read-only: any shortfall fails the whole
	// checkout before a single row is written.
	var insufficient []Shortfall
	for _, line := range lines {
		available := 0
		entry, err := s.stock.Get(ctx, line.product.ID)
		if err == nil {
			available = entry.QuantityOnHand
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if available < line.quantity {
			insufficient = append(insufficient, Shortfall{
				ProductID:   line.product.ID,
				ProductName: line.product.Name,
				Requested:   line.quantity,
				Available:   available,
			})
		}
	}
	if len(insufficient) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "some items have insufficient stock").
			WithDetails(insufficient)
	}

	order := &models.Order{
		ID:              uuid.New(),
		PlacedBy:        info.PlacedBy,
		OrderDate:       time.Now().UTC(),
		Status:          enums.OrderStatusPending,
		ShippingAddress: strings.TrimSpace(info.ShippingAddress),
		CustomerName:    info.CustomerName,
		CustomerEmail:   info.CustomerEmail,
	}
	items := make([]models.LineItem, 0, len(lines))
	for _, line := range lines {
		order.TotalCents += line.product.PriceCents * line.quantity
		items = append(items, models.LineItem{
			ID:                   uuid.New(),
			OrderID:              order.ID,
			ProductID:            line.product.ID,
			Name:                 line.product.Name,
			Quantity:             line.quantity,
			PriceAtPurchaseCents: line.product.PriceCents,
			Status:               enums.LineItemStatusPending,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := repo.CreateLineItems(ctx, items); err != nil {
			return err
		}
		ledger := s.stock.WithTx(tx)
		for _, line := range lines {
			applied, err := ledger.Adjust(ctx, line.product.ID, -line.quantity)
			if err != nil {
				return err
			}
			if !applied {
				// A concurrent request won the race between validation and
				// commit; the whole transaction rolls back.
				return pkgerrors.New(pkgerrors.CodeConcurrentModification, "stock changed during checkout").
					WithDetails(map[string]any{
						"product_id":   line.product.ID,
						"product_name": line.product.Name,
						"requested":    line.quantity,
					})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil && s.logg != nil {
		// The order is committed; a stale cart is an annoyance, not a
		// correctness problem.
		s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "failed to clear cart after checkout")
	}

	created, err := s.repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &PlacedOrder{Order: created, Skipped: skipped}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return order, nil
}

func (s *service) ListByPlacer(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.repo.ListByPlacer(ctx, userID)
}

func (s *service) ListContainingProduct(ctx context.Context, productID uuid.UUID) ([]models.Order, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.repo.ListContainingProduct(ctx, productID)
}

func (s *service) ListContainingSupplierProducts(ctx context.Context, supplierID uuid.UUID) ([]models.Order, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id is required")
	}
	return s.repo.ListContainingSupplierProducts(ctx, supplierID)
}

// UpdateStatus applies a free-form header transition. Cancelled and
// delivered are terminal by convention only; the looseness is documented,
// not enforced.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}
	matched, err := s.repo.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.repo.FindByID(ctx, orderID)
}

func (s *service) UpdateLineItemStatus(ctx context.Context, orderID, lineItemID uuid.UUID, status enums.LineItemStatus) (*models.LineItem, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid line item status %q", status))
	}
	if _, err := s.repo.FindLineItem(ctx, orderID, lineItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
		}
		return nil, err
	}
	if _, err := s.repo.UpdateLineItemStatus(ctx, lineItemID, status); err != nil {
		return nil, err
	}
	return s.repo.FindLineItem(ctx, orderID, lineItemID)
}

func (s *service) observe(start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		if typed := pkgerrors.As(err); typed != nil {
			outcome = strings.ToLower(string(typed.Code()))
		}
		s.metrics.IncRejected(outcome)
	} else {
		s.metrics.IncPlaced()
	}
	s.metrics.ObserveCheckout(outcome, time.Since(start))
}

func sortedIDs(entries map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
