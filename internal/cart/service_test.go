package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

type stubProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (s stubProductLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func stubProduct(name string, priceCents, onHand int) *models.Product {
	return &models.Product{
		ID:         uuid.New(),
		SupplierID: uuid.New(),
		Name:       name,
		SKU:        "SKU-" + name,
		PriceCents: priceCents,
		Stock:      &models.StockEntry{QuantityOnHand: onHand},
	}
}

func newCartService(t *testing.T, products ...*models.Product) (Service, *MemoryStore) {
	t.Helper()

	loader := stubProductLoader{products: map[uuid.UUID]*models.Product{}}
	for _, p := range products {
		loader.products[p.ID] = p
	}
	store := NewMemoryStore()
	svc, err := NewService(store, loader)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store
}

func mustEntries(t *testing.T, store *MemoryStore, sessionID string) map[uuid.UUID]int {
	t.Helper()
	entries, err := store.Load(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return entries
}

func TestAddAccumulatesQuantity(t *testing.T) {
	t.Parallel()

	product := stubProduct("Widget", 500, 10)
	svc, store := newCartService(t, product)

	if err := svc.Add(context.Background(), "sess", product.ID, 3); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := svc.Add(context.Background(), "sess", product.ID, 4); err != nil {
		t.Fatalf("second add: %v", err)
	}

	entries := mustEntries(t, store, "sess")
	if entries[product.ID] != 7 {
		t.Fatalf("quantity = %d, want 7", entries[product.ID])
	}
}

func TestAddRejectsBeyondStockWithoutMutating(t *testing.T) {
	t.Parallel()

	product := stubProduct("Widget", 500, 5)
	svc, store := newCartService(t, product)

	if err := svc.Add(context.Background(), "sess", product.ID, 3); err != nil {
		t.Fatalf("add: %v", err)
	}

	// 3 in cart + 3 requested > 5 on hand: rejected, cart untouched.
	err := svc.Add(context.Background(), "sess", product.ID, 3)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("err = %v, want %s", err, pkgerrors.CodeInsufficientStock)
	}

	entries := mustEntries(t, store, "sess")
	if entries[product.ID] != 3 {
		t.Fatalf("quantity = %d, want 3 after rejection", entries[product.ID])
	}
}

func TestAddUnknownProduct(t *testing.T) {
	t.Parallel()

	svc, _ := newCartService(t)

	err := svc.Add(context.Background(), "sess", uuid.New(), 1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want %s", err, pkgerrors.CodeNotFound)
	}
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	product := stubProduct("Widget", 500, 5)
	svc, _ := newCartService(t, product)

	for _, qty := range []int{0, -1} {
		err := svc.Add(context.Background(), "sess", product.ID, qty)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("qty %d: err = %v, want %s", qty, err, pkgerrors.CodeValidation)
		}
	}
}

func TestSetQuantityClampsToStock(t *testing.T) {
	t.Parallel()

	product := stubProduct("Widget", 500, 4)
	svc, store := newCartService(t, product)

	if err := svc.Add(context.Background(), "sess", product.ID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	result, err := svc.SetQuantity(context.Background(), "sess", product.ID, 9)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if !result.Clamped || result.Quantity != 4 {
		t.Fatalf("result = %+v, want clamped to 4", result)
	}

	entries := mustEntries(t, store, "sess")
	if entries[product.ID] != 4 {
		t.Fatalf("quantity = %d, want 4", entries[product.ID])
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	t.Parallel()

	product := stubProduct("Widget", 500, 4)
	svc, store := newCartService(t, product)

	if err := svc.Add(context.Background(), "sess", product.ID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	result, err := svc.SetQuantity(context.Background(), "sess", product.ID, 0)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if !result.Removed {
		t.Fatalf("result = %+v, want removed", result)
	}
	if entries := mustEntries(t, store, "sess"); len(entries) != 0 {
		t.Fatalf("entries = %v, want empty", entries)
	}
}

func TestSetQuantityMissingLine(t *testing.T) {
	t.Parallel()

	product := stubProduct("Widget", 500, 4)
	svc, _ := newCartService(t, product)

	_, err := svc.SetQuantity(context.Background(), "sess", product.ID, 2)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want %s", err, pkgerrors.CodeNotFound)
	}
}

func TestSetQuantityZeroMissingLineIsNoOp(t *testing.T) {
	t.Parallel()

	product := stubProduct("Widget", 500, 4)
	svc, store := newCartService(t, product)

	// Removing a line that was never added succeeds; the cart is already in
	// the requested state.
	for _, qty := range []int{0, -3} {
		result, err := svc.SetQuantity(context.Background(), "sess", product.ID, qty)
		if err != nil {
			t.Fatalf("qty %d: %v", qty, err)
		}
		if !result.Removed {
			t.Fatalf("qty %d: result = %+v, want removed", qty, result)
		}
	}
	if entries := mustEntries(t, store, "sess"); len(entries) != 0 {
		t.Fatalf("entries = %v, want empty", entries)
	}
}

func TestSnapshotReconcilesAndPersists(t *testing.T) {
	t.Parallel()

	healthy := stubProduct("Healthy", 250, 10)
	depleted := stubProduct("Depleted", 300, 0)
	scarce := stubProduct("Scarce", 400, 2)
	svc, store := newCartService(t, healthy, depleted, scarce)

	deletedID := uuid.New()
	seed := map[uuid.UUID]int{
		healthy.ID:  3,
		depleted.ID: 2,
		scarce.ID:   5,
		deletedID:   1,
	}
	if err := store.Save(context.Background(), "sess", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	snapshot, err := svc.Snapshot(context.Background(), "sess")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if len(snapshot.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(snapshot.Items))
	}
	byID := map[uuid.UUID]Item{}
	for _, item := range snapshot.Items {
		byID[item.ProductID] = item
	}
	if byID[healthy.ID].Quantity != 3 || byID[healthy.ID].SubtotalCents != 750 {
		t.Fatalf("healthy line = %+v", byID[healthy.ID])
	}
	if byID[scarce.ID].Quantity != 2 || byID[scarce.ID].SubtotalCents != 800 {
		t.Fatalf("scarce line = %+v", byID[scarce.ID])
	}
	if snapshot.GrandTotalCents != 1550 {
		t.Fatalf("grand total = %d, want 1550", snapshot.GrandTotalCents)
	}

	reasons := map[uuid.UUID]FlagReason{}
	for _, flag := range snapshot.Flags {
		reasons[flag.ProductID] = flag.Reason
	}
	if reasons[deletedID] != ReasonProductDeleted {
		t.Fatalf("deleted flag = %v", reasons[deletedID])
	}
	if reasons[depleted.ID] != ReasonOutOfStock {
		t.Fatalf("depleted flag = %v", reasons[depleted.ID])
	}
	if reasons[scarce.ID] != ReasonQuantityAdjusted {
		t.Fatalf("scarce flag = %v", reasons[scarce.ID])
	}

	// Reconciliation is persisted; with no stock changes a second snapshot
	// raises no flags.
	entries := mustEntries(t, store, "sess")
	if len(entries) != 2 || entries[healthy.ID] != 3 || entries[scarce.ID] != 2 {
		t.Fatalf("persisted entries = %v", entries)
	}
	again, err := svc.Snapshot(context.Background(), "sess")
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if len(again.Flags) != 0 {
		t.Fatalf("second snapshot flags = %v, want none", again.Flags)
	}
	if again.GrandTotalCents != snapshot.GrandTotalCents {
		t.Fatalf("grand total changed between snapshots: %d vs %d", again.GrandTotalCents, snapshot.GrandTotalCents)
	}
}

func TestSnapshotEmptySession(t *testing.T) {
	t.Parallel()

	svc, _ := newCartService(t)

	snapshot, err := svc.Snapshot(context.Background(), "sess")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot.Items) != 0 || snapshot.GrandTotalCents != 0 {
		t.Fatalf("snapshot = %+v, want empty", snapshot)
	}
}

func TestRemoveAndClear(t *testing.T) {
	t.Parallel()

	product := stubProduct("Widget", 500, 10)
	other := stubProduct("Other", 100, 10)
	svc, store := newCartService(t, product, other)

	if err := svc.Add(context.Background(), "sess", product.ID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Add(context.Background(), "sess", other.ID, 1); err != nil {
		t.Fatalf("add other: %v", err)
	}

	if err := svc.Remove(context.Background(), "sess", product.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	entries := mustEntries(t, store, "sess")
	if len(entries) != 1 || entries[other.ID] != 1 {
		t.Fatalf("entries = %v", entries)
	}

	if err := svc.Clear(context.Background(), "sess"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if entries := mustEntries(t, store, "sess"); len(entries) != 0 {
		t.Fatalf("entries = %v, want empty", entries)
	}
}
