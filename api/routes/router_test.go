package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	cartsvc "github.com/angelmondragon/stockroom-backend/internal/cart"
	ordersvc "github.com/angelmondragon/stockroom-backend/internal/orders"
	procurementsvc "github.com/angelmondragon/stockroom-backend/internal/procurement"
	productsvc "github.com/angelmondragon/stockroom-backend/internal/products"
	stocksvc "github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/pkg/config"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubProductService struct{}

func (stubProductService) Create(context.Context, productsvc.CreateProductInput) (*models.Product, error) {
	return &models.Product{ID: uuid.New()}, nil
}
func (stubProductService) Get(context.Context, uuid.UUID) (*models.Product, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}
func (stubProductService) Update(context.Context, uuid.UUID, productsvc.UpdateProductInput) (*models.Product, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}
func (stubProductService) Delete(context.Context, uuid.UUID) error { return nil }
func (stubProductService) ListBySupplier(context.Context, uuid.UUID) ([]models.Product, error) {
	return nil, nil
}

type stubStockService struct{}

func (stubStockService) Get(context.Context, uuid.UUID) (*models.StockEntry, error) {
	return &models.StockEntry{}, nil
}
func (stubStockService) CreateForProduct(context.Context, stocksvc.CreateEntryInput) (*models.StockEntry, error) {
	return &models.StockEntry{}, nil
}
func (stubStockService) Adjust(context.Context, uuid.UUID, int) (*models.StockEntry, error) {
	return &models.StockEntry{}, nil
}
func (stubStockService) Increase(context.Context, uuid.UUID, int) (*models.StockEntry, error) {
	return &models.StockEntry{}, nil
}
func (stubStockService) Decrease(context.Context, uuid.UUID, int) (*models.StockEntry, error) {
	return &models.StockEntry{}, nil
}
func (stubStockService) ListLowStock(context.Context, *uuid.UUID) ([]stocksvc.LowStockRow, error) {
	return []stocksvc.LowStockRow{}, nil
}

type stubCartService struct{}

func (stubCartService) Add(context.Context, string, uuid.UUID, int) error { return nil }
func (stubCartService) SetQuantity(context.Context, string, uuid.UUID, int) (*cartsvc.SetQuantityResult, error) {
	return &cartsvc.SetQuantityResult{}, nil
}
func (stubCartService) Remove(context.Context, string, uuid.UUID) error { return nil }
func (stubCartService) Clear(context.Context, string) error             { return nil }
func (stubCartService) Snapshot(context.Context, string) (*cartsvc.Snapshot, error) {
	return &cartsvc.Snapshot{Items: []cartsvc.Item{}}, nil
}

type stubOrderService struct{}

func (stubOrderService) PlaceOrder(context.Context, string, ordersvc.BuyerInfo) (*ordersvc.PlacedOrder, error) {
	return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
}
func (stubOrderService) Get(context.Context, uuid.UUID) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}
func (stubOrderService) ListByPlacer(context.Context, uuid.UUID) ([]models.Order, error) {
	return nil, nil
}
func (stubOrderService) ListContainingProduct(context.Context, uuid.UUID) ([]models.Order, error) {
	return nil, nil
}
func (stubOrderService) ListContainingSupplierProducts(context.Context, uuid.UUID) ([]models.Order, error) {
	return nil, nil
}
func (stubOrderService) UpdateStatus(context.Context, uuid.UUID, enums.OrderStatus) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}
func (stubOrderService) UpdateLineItemStatus(context.Context, uuid.UUID, uuid.UUID, enums.LineItemStatus) (*models.LineItem, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
}

type stubProcurementService struct{}

func (stubProcurementService) CreatePurchaseOrder(context.Context, procurementsvc.CreatePurchaseOrderInput) (*models.PurchaseOrder, error) {
	return &models.PurchaseOrder{ID: uuid.New()}, nil
}
func (stubProcurementService) GetPurchaseOrder(context.Context, uuid.UUID) (*models.PurchaseOrder, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
}
func (stubProcurementService) ListPurchaseOrders(context.Context, *uuid.UUID) ([]models.PurchaseOrder, error) {
	return []models.PurchaseOrder{}, nil
}
func (stubProcurementService) UpdatePurchaseOrder(context.Context, uuid.UUID, procurementsvc.UpdatePurchaseOrderInput) (*models.PurchaseOrder, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
}
func (stubProcurementService) DeletePurchaseOrder(context.Context, uuid.UUID) error { return nil }
func (stubProcurementService) CreateShipment(context.Context, procurementsvc.CreateShipmentInput) (*models.Shipment, error) {
	return &models.Shipment{ID: uuid.New()}, nil
}
func (stubProcurementService) ListShipments(context.Context, uuid.UUID) ([]models.Shipment, error) {
	return nil, nil
}
func (stubProcurementService) UpdateShipment(context.Context, uuid.UUID, procurementsvc.UpdateShipmentInput) (*models.Shipment, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
}

func newTestRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return NewRouter(Deps{
		Config:      cfg,
		Logger:      logger.New(logger.Options{ServiceName: "test"}),
		DB:          stubPinger{},
		Sessions:    stubPinger{},
		Products:    stubProductService{},
		Stock:       stubStockService{},
		Carts:       stubCartService{},
		Orders:      stubOrderService{},
		Procurement: stubProcurementService{},
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", path, w.Code)
		}
	}
}

func TestCartSnapshotRoute(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/sess-1/cart/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestCheckoutRouteReportsEmptyCart(t *testing.T) {
	router := newTestRouter()

	payload := `{"placed_by":"` + uuid.NewString() + `","shipping_address":"1 Warehouse Way"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/checkout", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeEmptyCart) {
		t.Fatalf("code = %s, want %s", body.Error.Code, pkgerrors.CodeEmptyCart)
	}
}

func TestInvalidUUIDParamRejected(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("code = %s, want %s", body.Error.Code, pkgerrors.CodeValidation)
	}
}

func TestPurchaseOrderRoutesMounted(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}

	payload := `{"purchase_order_id":"` + uuid.NewString() + `"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/shipments/", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create shipment status = %d, want 201", w.Code)
	}
}

func TestMetricsEndpointMounted(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
