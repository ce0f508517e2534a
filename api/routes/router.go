package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/stockroom-backend/api/controllers"
	"github.com/angelmondragon/stockroom-backend/api/middleware"
	cartsvc "github.com/angelmondragon/stockroom-backend/internal/cart"
	ordersvc "github.com/angelmondragon/stockroom-backend/internal/orders"
	procurementsvc "github.com/angelmondragon/stockroom-backend/internal/procurement"
	productsvc "github.com/angelmondragon/stockroom-backend/internal/products"
	stocksvc "github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/pkg/config"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Sessions controllers.Pinger

	Products    productsvc.Service
	Stock       stocksvc.Service
	Carts       cartsvc.Service
	Orders      ordersvc.Service
	Procurement procurementsvc.Service
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, map[string]controllers.Pinger{
			"database":      d.DB,
			"session_store": d.Sessions,
		}))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(d.Products, d.Logger))
			r.Get("/{productID}", controllers.GetProduct(d.Products, d.Logger))
			r.Patch("/{productID}", controllers.UpdateProduct(d.Products, d.Logger))
			r.Delete("/{productID}", controllers.DeleteProduct(d.Products, d.Logger))
			r.Get("/{productID}/orders", controllers.ListOrdersForProduct(d.Orders, d.Logger))
		})

		r.Route("/suppliers/{supplierID}", func(r chi.Router) {
			r.Get("/products", controllers.ListSupplierProducts(d.Products, d.Logger))
			r.Get("/orders", controllers.ListOrdersForSupplier(d.Orders, d.Logger))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Post("/", controllers.CreateStockEntry(d.Stock, d.Logger))
			r.Get("/low", controllers.ListLowStock(d.Stock, d.Logger))
			r.Get("/{productID}", controllers.GetStockEntry(d.Stock, d.Logger))
			r.Post("/{productID}/increase", controllers.IncreaseStock(d.Stock, d.Logger))
			r.Post("/{productID}/decrease", controllers.DecreaseStock(d.Stock, d.Logger))
		})

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(d.Carts, d.Logger))
				r.Post("/items", controllers.AddCartItem(d.Carts, d.Logger))
				r.Put("/items/{productID}", controllers.SetCartItemQuantity(d.Carts, d.Logger))
				r.Delete("/items/{productID}", controllers.RemoveCartItem(d.Carts, d.Logger))
				r.Delete("/", controllers.ClearCart(d.Carts, d.Logger))
			})
			r.Post("/checkout", controllers.PlaceOrder(d.Orders, d.Logger))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderID}", controllers.GetOrder(d.Orders, d.Logger))
			r.Patch("/{orderID}/status", controllers.UpdateOrderStatus(d.Orders, d.Logger))
			r.Patch("/{orderID}/line-items/{lineItemID}/status", controllers.UpdateLineItemStatus(d.Orders, d.Logger))
		})

		r.Route("/purchase-orders", func(r chi.Router) {
			r.Get("/", controllers.ListPurchaseOrders(d.Procurement, d.Logger))
			r.Post("/", controllers.CreatePurchaseOrder(d.Procurement, d.Logger))
			r.Get("/{purchaseOrderID}", controllers.GetPurchaseOrder(d.Procurement, d.Logger))
			r.Patch("/{purchaseOrderID}", controllers.UpdatePurchaseOrder(d.Procurement, d.Logger))
			r.Delete("/{purchaseOrderID}", controllers.DeletePurchaseOrder(d.Procurement, d.Logger))
			r.Get("/{purchaseOrderID}/shipments", controllers.ListPurchaseOrderShipments(d.Procurement, d.Logger))
		})

		r.Route("/shipments", func(r chi.Router) {
			r.Post("/", controllers.CreateShipment(d.Procurement, d.Logger))
			r.Patch("/{shipmentID}", controllers.UpdateShipment(d.Procurement, d.Logger))
		})

		r.Get("/users/{userID}/orders", controllers.ListOrdersByPlacer(d.Orders, d.Logger))
	})

	return r
}
