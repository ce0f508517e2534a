package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/api/responses"
	"github.com/angelmondragon/stockroom-backend/api/validators"
	productsvc "github.com/angelmondragon/stockroom-backend/internal/products"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
)

type createProductRequest struct {
	SupplierID      string  `json:"supplier_id" validate:"required,uuid"`
	Name            string  `json:"name" validate:"required,max=255"`
	SKU             string  `json:"sku" validate:"required,max=64"`
	Category        *string `json:"category,omitempty"`
	PriceCents      int     `json:"price_cents" validate:"gte=0"`
	InitialQuantity int     `json:"initial_quantity" validate:"gte=0"`
	ReorderLevel    *int    `json:"reorder_level,omitempty" validate:"omitempty,gte=0"`
	Location        *string `json:"location,omitempty"`
}

type updateProductRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Category   *string `json:"category,omitempty"`
	PriceCents *int    `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
}

func (p createProductRequest) toCreateInput(supplierID uuid.UUID) productsvc.CreateProductInput {
	return productsvc.CreateProductInput{
		SupplierID:      supplierID,
		Name:            p.Name,
		SKU:             p.SKU,
		Category:        p.Category,
		PriceCents:      p.PriceCents,
		InitialQuantity: p.InitialQuantity,
		ReorderLevel:    p.ReorderLevel,
		Location:        p.Location,
	}
}

// CreateProduct registers a product and provisions its stock entry.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := validators.ParseUUID(payload.SupplierID, "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), payload.toCreateInput(supplierID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// GetProduct returns a single product with its stock entry.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.UUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// UpdateProduct applies partial edits to a product.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.UUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), productID, productsvc.UpdateProductInput{
			Name:       payload.Name,
			Category:   payload.Category,
			PriceCents: payload.PriceCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes a product and its stock entry. Refused while any
// order line item still references the product.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.UUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": productID})
	}
}

// ListSupplierProducts returns a supplier's catalog.
func ListSupplierProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := validators.UUIDParam(r, "supplierID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		products, err := svc.ListBySupplier(r.Context(), supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}
