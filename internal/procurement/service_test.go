package procurement

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/stockroom-backend/internal/products"
	"github.com/angelmondragon/stockroom-backend/internal/stock"
	pkgdb "github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

type procurementHarness struct {
	conn *gorm.DB
	svc  Service
}

func setupProcurementTest(t *testing.T) *procurementHarness {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Supplier{},
		&models.Product{},
		&models.StockEntry{},
		&models.PurchaseOrder{},
		&models.Shipment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(
		NewRepository(conn),
		pkgdb.NewWithConn(conn),
		products.NewRepository(conn),
		stock.NewRepository(conn),
		nil,
		nil,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &procurementHarness{conn: conn, svc: svc}
}

func (h *procurementHarness) seedSupplier(t *testing.T) *models.Supplier {
	t.Helper()

	supplier := &models.Supplier{
		ID:    uuid.New(),
		Name:  "Acme Supply " + uuid.NewString(),
		Email: uuid.NewString() + "@acme.test",
	}
	if err := h.conn.Create(supplier).Error; err != nil {
		t.Fatalf("seed supplier: %v", err)
	}
	return supplier
}

func (h *procurementHarness) seedProduct(t *testing.T, supplierID uuid.UUID, onHand int, withStock bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:         uuid.New(),
		SupplierID: supplierID,
		Name:       "Widget",
		SKU:        "SKU-" + uuid.NewString(),
		PriceCents: 500,
	}
	if err := h.conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if withStock {
		entry := &models.StockEntry{ProductID: product.ID, QuantityOnHand: onHand}
		if err := h.conn.Create(entry).Error; err != nil {
			t.Fatalf("seed stock: %v", err)
		}
	}
	return product
}

func (h *procurementHarness) onHand(t *testing.T, productID uuid.UUID) int {
	t.Helper()

	var entry models.StockEntry
	if err := h.conn.First(&entry, "product_id = ?", productID).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return entry.QuantityOnHand
}

func (h *procurementHarness) createOrder(t *testing.T, supplierID, productID uuid.UUID, qty int) *models.PurchaseOrder {
	t.Helper()

	po, err := h.svc.CreatePurchaseOrder(context.Background(), CreatePurchaseOrderInput{
		SupplierID: supplierID,
		ProductID:  productID,
		Quantity:   qty,
	})
	if err != nil {
		t.Fatalf("create purchase order: %v", err)
	}
	return po
}

func poStatusPtr(s enums.PurchaseOrderStatus) *enums.PurchaseOrderStatus { return &s }
func shipStatusPtr(s enums.ShipmentStatus) *enums.ShipmentStatus         { return &s }

func TestCreatePurchaseOrderDefaultsToDraft(t *testing.T) {
	t.Parallel()

	h := setupProcurementTest(t)
	supplier := h.seedSupplier(t)
	product := h.seedProduct(t, supplier.ID, 0, true)

	po := h.createOrder(t, supplier.ID, product.ID, 5)
	if po.Status != enums.PurchaseOrderStatusDraft {
		t.Fatalf("status = %s, want draft", po.Status)
	}
	if po.Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", po.Quantity)
	}
	if po.DeliveredAt != nil {
		t.Fatalf("delivered at = %v, want nil", po.DeliveredAt)
	}
}

func TestCreatePurchaseOrderValidates(t *testing.T) {
	t.Parallel()

	h := setupProcurementTest(t)
	supplier := h.seedSupplier(t)
	product := h.seedProduct(t, supplier.ID, 0, true)

	cases := []struct {
		name  string
		input CreatePurchaseOrderInput
		code  pkgerrors.Code
	}{
		{"unknown product", CreatePurchaseOrderInput{SupplierID: supplier.ID, ProductID: uuid.New(), Quantity: 1}, pkgerrors.CodeNotFound},
		{"unknown supplier", CreatePurchaseOrderInput{SupplierID: uuid.New(), ProductID: product.ID, Quantity: 1}, pkgerrors.CodeNotFound},
		{"zero quantity", CreatePurchaseOrderInput{SupplierID: supplier.ID, ProductID: product.ID, Quantity: 0}, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		_, err := h.svc.CreatePurchaseOrder(context.Background(), tc.input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != tc.code {
			t.Fatalf("%s: err = %v, want %s", tc.name, err, tc.code)
		}
	}
}

func TestDeliveryReceivesStock(t *testing.T) {
	t.Parallel()

	h := setupProcurementTest(t)
	supplier := h.seedSupplier(t)
	product := h.seedProduct(t, supplier.ID, 3, true)
	po := h.createOrder(t, supplier.ID, product.ID, 5)

	updated, err := h.svc.UpdatePurchaseOrder(context.Background(), po.ID, UpdatePurchaseOrderInput{
		Status: poStatusPtr(enums.PurchaseOrderStatusDelivered),
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if updated.Status != enums.PurchaseOrderStatusDelivered {
		t.Fatalf("status = %s, want delivered", updated.Status)
	}
	if updated.DeliveredAt == nil {
		t.Fatal("delivered at not stamped")
	}
	if got := h.onHand(t, product.ID); got != 8 {
		t.Fatalf("on hand = %d, want 8", got)
	}
}

func TestDeliveryBooksStockOnlyOnce(t *testing.T) {
	t.Parallel()

	h := setupProcurementTest(t)
	supplier := h.seedSupplier(t)
	product := h.seedProduct(t, supplier.ID, 3, true)
	po := h.createOrder(t, supplier.ID, product.ID, 5)

	if _, err := h.svc.UpdatePurchaseOrder(context.Background(), po.ID, UpdatePurchaseOrderInput{
		Status: poStatusPtr(enums.PurchaseOrderStatusDelivered),
	}); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	// Repeating the delivered status is a no-op, not a second receive.
	if _, err := h.svc.UpdatePurchaseOrder(context.Background(), po.ID, UpdatePurchaseOrderInput{
		Status: poStatusPtr(enums.PurchaseOrderStatusDelivered),
	}); err != nil {
		t.Fatalf("repeat deliver: %v", err)
	}
	if got := h.onHand(t, product.ID); got != 8 {
		t.Fatalf("on hand = %d, want 8", got)
	}
}

func TestDeliveredIsTerminal(t *testing.T) {
	t.Parallel()

	h := setupProcurementTest(t)
	supplier := h.seedSupplier(t)
	product := h.seedProduct(t, supplier.ID, 0, true)
	po := h.createOrder(t, supplier.ID, product.ID, 5)

	if _, err := h.svc.UpdatePurchaseOrder(context.Background(), po.ID, UpdatePurchaseOrderInput{
		Status: poStatusPtr(enums.PurchaseOrderStatusDelivered),
	}); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	_, err := h.svc.UpdatePurchaseOrder(context.Background(), po.ID, UpdatePurchaseOrderInput{
		Status: poStatusPtr(enums.PurchaseOrderStatusShipped),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("leave delivered: err = %v, want %s", err, pkgerrors.CodeConflict)
	}

	qty := 9
	_, err = h.svc.UpdatePurchaseOrder(context.Background(), po.ID, UpdatePurchaseOrderInput{Quantity: &qty})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("quantity after delivery: err = %v, want %s", err, pkgerrors.CodeConflict)
	}
}

func TestDeliveryWithoutStockEntryRollsBack(t *testing.T) {
	t.Parallel()

	h := setupProcurementTest(t)
	supplier := h.seedSupplier(t)
	product := h.seedProduct(t, supplier.ID, 0, false)
	po := h.createOrder(t, supplier.ID, product.ID, 5)

	_, err := h.svc.UpdatePurchaseOrder(context.Background(), po.ID, UpdatePurchaseOrderInput{
		Status: poStatusPtr(enums.PurchaseOrderStatusDelivered),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want %s", err, pkgerrors.CodeNotFound)
	}

	// The whole transition rolled back with the failed receive.
	reloaded, err := h.svc.GetPurchaseOrder(context.Background(), po.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != enums.PurchaseOrderStatusDraft {
		t.Fatalf("status = %s, want draft", reloaded.Status)
	}
	if reloaded.DeliveredAt != nil {
		t.Fatalf("delivered at = %v, want nil", reloaded.DeliveredAt)
	}
}

func TestSubmitStampsTimestamp(t *testing.T) {
	t.Parallel()

	h := setupProcurementTest(t)
	supplier := h.seedSupplier(t)
	product := h.seedProduct(t, supplier.ID, 0, true)
	po := h.createOrder(t, supplier.ID, product.ID, 2)

	updated, err := h.svc.UpdatePurchaseOrder(context.Background(), po.ID, UpdatePurchaseOrderInput{
		Status: poStatusPtr(enums.PurchaseOrderStatusSubmitted),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if updated.Status != enums.PurchaseOrderStatusSubmitted {
		t.Fatalf("status = %s, want submitted", updated.Status)
	}
	if updated.SubmittedAt == nil {
		t.Fatal("submitted at not stamped")
	}
}

func TestCreateShipmentMarksOrderShipped(t *testing.T) {
	t.Parallel()

	h := setupProcurementTest(t)
	supplier := h.seedSupplier(t)
	product := h.seedProduct(t, supplier.ID, 0, true)
	po := h.createOrder(t, supplier.ID, product.ID, 2)

	tracking := "TRACK-1"
	shipment, err := h.svc.CreateShipment(context.Background(), CreateShipmentInput{
		PurchaseOrderID: po.ID,
		TrackingNumber:  &tracking,
	})
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	if shipment.Status != enums.ShipmentStatusInTransit {
		t.Fatalf("shipment status = %s, want in_transit", shipment.Status)
	}

	reloaded, err := h.svc.GetPurchaseOrder(context.Background(), po.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != enums.PurchaseOrderStatusShipped {
		t.Fatalf("order status = %s, want shipped", reloaded.Status)
	}
	if reloaded.ShippedAt == nil {
		t.Fatal("shipped at not stamped")
	}
	if len(reloaded.Shipments) != 1 {
		t.Fatalf("shipments = %d, want 1", len(reloaded.Shipments))
	}
}

func TestCreateShipmentUnknownOrder(t *testing.T) {
	t.Parallel()

	h := setupProcurementTest(t)

	_, err := h.svc.CreateShipment(context.Background(), CreateShipmentInput{PurchaseOrderID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want %s", err, pkgerrors.CodeNotFound)
	}
}

func TestShipmentDeliveryCascadesToOrder(t *testing.T) {
	t.Parallel()

	h := setupProcurementTest(t)
	supplier := h.seedSupplier(t)
	product := h.seedProduct(t, supplier.ID, 1, true)
	po := h.createOrder(t, supplier.ID, product.ID, 4)

	shipment, err := h.svc.CreateShipment(context.Background(), CreateShipmentInput{PurchaseOrderID: po.ID})
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}

	updated, err := h.svc.UpdateShipment(context.Background(), shipment.ID, UpdateShipmentInput{
		Status: shipStatusPtr(enums.ShipmentStatusDelivered),
	})
	if err != nil {
		t.Fatalf("deliver shipment: %v", err)
	}
	if updated.Status != enums.ShipmentStatusDelivered {
		t.Fatalf("shipment status = %s, want delivered", updated.Status)
	}
	if updated.ActualDelivery == nil {
		t.Fatal("actual delivery not stamped")
	}

	reloaded, err := h.svc.GetPurchaseOrder(context.Background(), po.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != enums.PurchaseOrderStatusDelivered {
		t.Fatalf("order status = %s, want delivered", reloaded.Status)
	}
	if got := h.onHand(t, product.ID); got != 5 {
		t.Fatalf("on hand = %d, want 5", got)
	}

	// A second shipment arriving later finds the order already delivered
	// and leaves the ledger alone.
	second, err := h.svc.CreateShipment(context.Background(), CreateShipmentInput{PurchaseOrderID: po.ID})
	if err != nil {
		t.Fatalf("second shipment: %v", err)
	}
	if _, err := h.svc.UpdateShipment(context.Background(), second.ID, UpdateShipmentInput{
		Status: shipStatusPtr(enums.ShipmentStatusDelivered),
	}); err != nil {
		t.Fatalf("deliver second shipment: %v", err)
	}
	if got := h.onHand(t, product.ID); got != 5 {
		t.Fatalf("on hand = %d, want still 5", got)
	}
}

func TestDeletePurchaseOrderOnlyBeforeSubmission(t *testing.T) {
	t.Parallel()

	h := setupProcurementTest(t)
	supplier := h.seedSupplier(t)
	product := h.seedProduct(t, supplier.ID, 0, true)

	draft := h.createOrder(t, supplier.ID, product.ID, 2)
	if err := h.svc.DeletePurchaseOrder(context.Background(), draft.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	_, err := h.svc.GetPurchaseOrder(context.Background(), draft.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want %s after delete", err, pkgerrors.CodeNotFound)
	}

	submitted := h.createOrder(t, supplier.ID, product.ID, 2)
	if _, err := h.svc.UpdatePurchaseOrder(context.Background(), submitted.ID, UpdatePurchaseOrderInput{
		Status: poStatusPtr(enums.PurchaseOrderStatusSubmitted),
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	err = h.svc.DeletePurchaseOrder(context.Background(), submitted.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("err = %v, want %s", err, pkgerrors.CodeConflict)
	}
}

func TestListPurchaseOrdersScopedToSupplier(t *testing.T) {
	t.Parallel()

	h := setupProcurementTest(t)
	first := h.seedSupplier(t)
	second := h.seedSupplier(t)
	firstProduct := h.seedProduct(t, first.ID, 0, true)
	secondProduct := h.seedProduct(t, second.ID, 0, true)

	h.createOrder(t, first.ID, firstProduct.ID, 1)
	h.createOrder(t, first.ID, firstProduct.ID, 2)
	h.createOrder(t, second.ID, secondProduct.ID, 3)

	all, err := h.svc.ListPurchaseOrders(context.Background(), nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %d, want 3", len(all))
	}

	scoped, err := h.svc.ListPurchaseOrders(context.Background(), &first.ID)
	if err != nil {
		t.Fatalf("list scoped: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("scoped = %d, want 2", len(scoped))
	}
	for _, po := range scoped {
		if po.SupplierID != first.ID {
			t.Fatalf("supplier = %s, want %s", po.SupplierID, first.ID)
		}
	}
}
