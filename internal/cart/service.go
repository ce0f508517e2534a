package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

// FlagReason classifies one reconciliation action taken on a cart entry.
type FlagReason string

const (
	ReasonProductDeleted   FlagReason = "removed_product_deleted"
	ReasonOutOfStock       FlagReason = "removed_out_of_stock"
	ReasonQuantityAdjusted FlagReason = "quantity_adjusted"
)

// Flag reports one drop/adjustment performed while reconciling a cart
// against live stock, for caller-level user notification.
type Flag struct {
	ProductID   uuid.UUID  `json:"product_id"`
	ProductName string     `json:"product_name,omitempty"`
	Reason      FlagReason `json:"reason"`
	Quantity    int        `json:"quantity,omitempty"`
}

// Item is one reconciled cart line.
type Item struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Quantity       int       `json:"quantity"`
	AvailableStock int       `json:"available_stock"`
	SubtotalCents  int       `json:"subtotal_cents"`
}

// Snapshot is the materialized, reconciled view of one session's cart.
type Snapshot struct {
	Items           []Item `json:"items"`
	Flags           []Flag `json:"flags,omitempty"`
	GrandTotalCents int    `json:"grand_total_cents"`
}

// SetQuantityResult reports the applied quantity and whether it was clamped
// down to the available stock.
type SetQuantityResult struct {
	Quantity int  `json:"quantity"`
	Clamped  bool `json:"clamped"`
	Removed  bool `json:"removed"`
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service owns the session cart operations. All stock reads go through the
// product loader; the cart itself never mutates stock.
type Service interface {
	Add(ctx context.Context, sessionID string, productID uuid.UUID, qty int) error
	SetQuantity(ctx context.Context, sessionID string, productID uuid.UUID, qty int) (*SetQuantityResult, error)
	Remove(ctx context.Context, sessionID string, productID uuid.UUID) error
	Clear(ctx context.Context, sessionID string) error
	Snapshot(ctx context.Context, sessionID string) (*Snapshot, error)
}

type service struct {
	store    Store
	products productLoader
}

// NewService wires the cart service.
func NewService(store Store, products productLoader) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{store: store, products: products}, nil
}

func (s *service) Add(ctx context.Context, sessionID string, productID uuid.UUID, qty int) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return err
	}

	entries, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	available := availableStock(product)
	if entries[productID]+qty > available {
		// Atomic no-op: the cart is left untouched on rejection.
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "requested quantity exceeds available stock").
			WithDetails(map[string]any{
				"product_id": productID,
				"requested":  entries[productID] + qty,
				"available":  available,
				"in_cart":    entries[productID],
			})
	}

	entries[productID] += qty
	return s.store.Save(ctx, sessionID, entries)
}

func (s *service) SetQuantity(ctx context.Context, sessionID string, productID uuid.UUID, qty int) (*SetQuantityResult, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	entries, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Non-positive quantity means remove, idempotently: a line that is
	// already absent is left absent without complaint.
	if qty <= 0 {
		if _, ok := entries[productID]; ok {
			delete(entries, productID)
			if err := s.store.Save(ctx, sessionID, entries); err != nil {
				return nil, err
			}
		}
		return &SetQuantityResult{Removed: true}, nil
	}

	if _, ok := entries[productID]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	available := availableStock(product)
	result := &SetQuantityResult{Quantity: qty}
	if qty > available {
		// Clamp down instead of hard-failing; the caller surfaces a warning.
		result.Quantity = available
		result.Clamped = true
	}
	if result.Quantity == 0 {
		delete(entries, productID)
		result.Removed = true
	} else {
		entries[productID] = result.Quantity
	}
	if err := s.store.Save(ctx, sessionID, entries); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Remove(ctx context.Context, sessionID string, productID uuid.UUID) error {
	entries, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	delete(entries, productID)
	return s.store.Save(ctx, sessionID, entries)
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}

// Snapshot re-reads live stock for every entry and reconciles the stored
// cart in place: deleted products and zero-stock lines are dropped,
// over-requests are reduced to the available amount. Because the mutations
// are persisted, repeated snapshots without intervening stock changes are
// idempotent.
func (s *service) Snapshot(ctx context.Context, sessionID string) (*Snapshot, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	entries, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{Items: []Item{}}
	changed := false

	for _, productID := range sortedIDs(entries) {
		requested := entries[productID]

		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				delete(entries, productID)
				changed = true
				snapshot.Flags = append(snapshot.Flags, Flag{
					ProductID: productID,
					Reason:    ReasonProductDeleted,
				})
				continue
			}
			return nil, err
		}

		available := availableStock(product)
		quantity := requested
		switch {
		case available == 0:
			delete(entries, productID)
			changed = true
			snapshot.Flags = append(snapshot.Flags, Flag{
				ProductID:   productID,
				ProductName: product.Name,
				Reason:      ReasonOutOfStock,
			})
			continue
		case available < requested:
			quantity = available
			entries[productID] = quantity
			changed = true
			snapshot.Flags = append(snapshot.Flags, Flag{
				ProductID:   productID,
				ProductName: product.Name,
				Reason:      ReasonQuantityAdjusted,
				Quantity:    quantity,
			})
		}

		subtotal := product.PriceCents * quantity
		snapshot.Items = append(snapshot.Items, Item{
			ProductID:      productID,
			Name:           product.Name,
			UnitPriceCents: product.PriceCents,
			Quantity:       quantity,
			AvailableStock: available,
			SubtotalCents:  subtotal,
		})
		snapshot.GrandTotalCents += subtotal
	}

	if changed {
		if err := s.store.Save(ctx, sessionID, entries); err != nil {
			return nil, err
		}
	}
	return snapshot, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return product, nil
}

func availableStock(product *models.Product) int {
	if product == nil || product.Stock == nil {
		return 0
	}
	return product.Stock.QuantityOnHand
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
