package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

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

// CreatePurchaseOrderInput captures a new inbound replenishment order.
type CreatePurchaseOrderInput struct {
	SupplierID       uuid.UUID
	ProductID        uuid.UUID
	Quantity         int
	ExpectedDelivery *time.Time
}

// UpdatePurchaseOrderInput holds the mutable purchase order fields. Nil
// means unchanged.
type UpdatePurchaseOrderInput struct {
	Quantity         *int
	Status           *enums.PurchaseOrderStatus
	ExpectedDelivery *time.Time
}

// CreateShipmentInput captures a new shipment against a purchase order.
type CreateShipmentInput struct {
	PurchaseOrderID   uuid.UUID
	TrackingNumber    *string
	CarrierDetails    *string
	EstimatedDelivery *time.Time
}

// UpdateShipmentInput holds the mutable shipment fields. Nil means unchanged.
type UpdateShipmentInput struct {
	TrackingNumber *string
	CarrierDetails *string
	Status         *enums.ShipmentStatus
	ActualDelivery *time.Time
}

// Service drives inbound replenishment: purchase orders, their shipments,
// and the handover into the stock ledger when a delivery lands. Receiving
// happens exactly once per purchase order, on the transition into delivered.
type Service interface {
	CreatePurchaseOrder(ctx context.Context, input CreatePurchaseOrderInput) (*models.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, supplierID *uuid.UUID) ([]models.PurchaseOrder, error)
	UpdatePurchaseOrder(ctx context.Context, id uuid.UUID, input UpdatePurchaseOrderInput) (*models.PurchaseOrder, error)
	DeletePurchaseOrder(ctx context.Context, id uuid.UUID) error
	CreateShipment(ctx context.Context, input CreateShipmentInput) (*models.Shipment, error)
	ListShipments(ctx context.Context, purchaseOrderID uuid.UUID) ([]models.Shipment, error)
	UpdateShipment(ctx context.Context, id uuid.UUID, input UpdateShipmentInput) (*models.Shipment, error)
}

type service struct {
	repo     *Repository
	tx       txRunner
	products productLoader
	stock    *stock.Repository
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
}

// NewService wires the procurement service.
func NewService(
	repo *Repository,
	tx txRunner,
	products productLoader,
	ledger *stock.Repository,
	logg *logger.Logger,
	m *metrics.CheckoutMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("procurement repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
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
		products: products,
		stock:    ledger,
		logg:     logg,
		metrics:  m,
	}, nil
}

func (s *service) CreatePurchaseOrder(ctx context.Context, input CreatePurchaseOrderInput) (*models.PurchaseOrder, error) {
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}

	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	exists, err := s.repo.SupplierExists(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}

	po := &models.PurchaseOrder{
		ID:               uuid.New(),
		SupplierID:       input.SupplierID,
		ProductID:        input.ProductID,
		Quantity:         input.Quantity,
		Status:           enums.PurchaseOrderStatusDraft,
		ExpectedDelivery: input.ExpectedDelivery,
	}
	if err := s.repo.CreatePurchaseOrder(ctx, po); err != nil {
		return nil, err
	}
	return s.repo.FindPurchaseOrder(ctx, po.ID)
}

func (s *service) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	po, err := s.repo.FindPurchaseOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}
		return nil, err
	}
	return po, nil
}

func (s *service) ListPurchaseOrders(ctx context.Context, supplierID *uuid.UUID) ([]models.PurchaseOrder, error) {
	return s.repo.ListPurchaseOrders(ctx, supplierID)
}

// UpdatePurchaseOrder applies partial edits. Moving into delivered books the
// ordered quantity onto the stock entry in the same transaction; delivered
// itself is terminal and the quantity is frozen from then on.
func (s *service) UpdatePurchaseOrder(ctx context.Context, id uuid.UUID, input UpdatePurchaseOrderInput) (*models.PurchaseOrder, error) {
	po, err := s.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
		}
		if po.Status == enums.PurchaseOrderStatusDelivered {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "quantity is frozen once delivered")
		}
		po.Quantity = *input.Quantity
	}
	if input.ExpectedDelivery != nil {
		po.ExpectedDelivery = input.ExpectedDelivery
	}

	deliver := false
	if input.Status != nil && *input.Status != po.Status {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid purchase order status %q", *input.Status))
		}
		if po.Status == enums.PurchaseOrderStatusDelivered {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "purchase order already delivered")
		}
		now := time.Now().UTC()
		switch *input.Status {
		case enums.PurchaseOrderStatusSubmitted:
			if po.SubmittedAt == nil {
				po.SubmittedAt = &now
			}
		case enums.PurchaseOrderStatusShipped:
			if po.ShippedAt == nil {
				po.ShippedAt = &now
			}
		case enums.PurchaseOrderStatusDelivered:
			deliver = true
		}
		po.Status = *input.Status
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if deliver {
			if err := s.receive(ctx, tx, po); err != nil {
				return err
			}
		}
		return s.repo.WithTx(tx).SavePurchaseOrder(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	if deliver {
		s.metrics.IncAdjustment("receive")
		if s.logg != nil {
			s.logg.Info(s.logg.WithFields(ctx, map[string]any{
				"purchase_order_id": po.ID,
				"product_id":        po.ProductID,
				"quantity":          po.Quantity,
			}), "purchase order delivered, stock received")
		}
	}
	return s.repo.FindPurchaseOrder(ctx, id)
}

// DeletePurchaseOrder removes a purchase order and its shipments. Only
// orders that never left the supplier can go; anything in flight or already
// received stays as history.
func (s *service) DeletePurchaseOrder(ctx context.Context, id uuid.UUID) error {
	po, err := s.GetPurchaseOrder(ctx, id)
	if err != nil {
		return err
	}
	switch po.Status {
	case enums.PurchaseOrderStatusDraft, enums.PurchaseOrderStatusCancelled:
	default:
		return pkgerrors.New(pkgerrors.CodeConflict, "only draft or cancelled purchase orders can be deleted").
			WithDetails(map[string]any{"status": po.Status})
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeletePurchaseOrder(ctx, id)
	})
}

// CreateShipment records a shipment and moves the purchase order to shipped
// unless it already passed that stage.
func (s *service) CreateShipment(ctx context.Context, input CreateShipmentInput) (*models.Shipment, error) {
	po, err := s.GetPurchaseOrder(ctx, input.PurchaseOrderID)
	if err != nil {
		return nil, err
	}

	shipment := &models.Shipment{
		ID:                uuid.New(),
		PurchaseOrderID:   po.ID,
		TrackingNumber:    input.TrackingNumber,
		CarrierDetails:    input.CarrierDetails,
		Status:            enums.ShipmentStatusInTransit,
		EstimatedDelivery: input.EstimatedDelivery,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateShipment(ctx, shipment); err != nil {
			return err
		}
		switch po.Status {
		case enums.PurchaseOrderStatusShipped,
			enums.PurchaseOrderStatusDelivered,
			enums.PurchaseOrderStatusCancelled:
			return nil
		}
		now := time.Now().UTC()
		po.Status = enums.PurchaseOrderStatusShipped
		if po.ShippedAt == nil {
			po.ShippedAt = &now
		}
		return repo.SavePurchaseOrder(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

func (s *service) ListShipments(ctx context.Context, purchaseOrderID uuid.UUID) ([]models.Shipment, error) {
	if _, err := s.GetPurchaseOrder(ctx, purchaseOrderID); err != nil {
		return nil, err
	}
	return s.repo.ListShipmentsForOrder(ctx, purchaseOrderID)
}

// UpdateShipment applies partial edits. A shipment arriving delivered pulls
// its purchase order along: the order flips to delivered and the stock
// receive runs in the same transaction.
func (s *service) UpdateShipment(ctx context.Context, id uuid.UUID, input UpdateShipmentInput) (*models.Shipment, error) {
	shipment, err := s.repo.FindShipment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		return nil, err
	}

	if input.TrackingNumber != nil {
		shipment.TrackingNumber = input.TrackingNumber
	}
	if input.CarrierDetails != nil {
		shipment.CarrierDetails = input.CarrierDetails
	}

	arrived := false
	if input.Status != nil && *input.Status != shipment.Status {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid shipment status %q", *input.Status))
		}
		shipment.Status = *input.Status
		if *input.Status == enums.ShipmentStatusDelivered {
			arrived = true
			if shipment.ActualDelivery == nil {
				now := time.Now().UTC()
				shipment.ActualDelivery = &now
			}
		}
	}
	if input.ActualDelivery != nil {
		shipment.ActualDelivery = input.ActualDelivery
	}

	received := false
	var po *models.PurchaseOrder
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SaveShipment(ctx, shipment); err != nil {
			return err
		}
		if !arrived {
			return nil
		}
		var err error
		po, err = repo.FindPurchaseOrder(ctx, shipment.PurchaseOrderID)
		if err != nil {
			return err
		}
		if po.Status == enums.PurchaseOrderStatusDelivered {
			return nil
		}
		if err := s.receive(ctx, tx, po); err != nil {
			return err
		}
		po.Status = enums.PurchaseOrderStatusDelivered
		received = true
		return repo.SavePurchaseOrder(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	if received {
		s.metrics.IncAdjustment("receive")
		if s.logg != nil {
			s.logg.Info(s.logg.WithFields(ctx, map[string]any{
				"purchase_order_id": po.ID,
				"shipment_id":       shipment.ID,
				"quantity":          po.Quantity,
			}), "shipment delivered, stock received")
		}
	}
	return s.repo.FindShipment(ctx, id)
}

// receive books the ordered quantity onto the product's stock entry and
// stamps the delivery time. Runs inside the caller's transaction.
func (s *service) receive(ctx context.Context, tx *gorm.DB, po *models.PurchaseOrder) error {
	applied, err := s.stock.WithTx(tx).Adjust(ctx, po.ProductID, po.Quantity)
	if err != nil {
		return err
	}
	if !applied {
		// A positive delta only misses when the stock row itself is gone.
		return pkgerrors.New(pkgerrors.CodeNotFound, "stock entry not found for product").
			WithDetails(map[string]any{"product_id": po.ProductID})
	}
	now := time.Now().UTC()
	po.DeliveredAt = &now
	return nil
}
