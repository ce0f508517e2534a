package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/stockroom-backend/api/responses"
	"github.com/angelmondragon/stockroom-backend/api/validators"
	procurementsvc "github.com/angelmondragon/stockroom-backend/internal/procurement"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
)

type createPurchaseOrderRequest struct {
	SupplierID       string  `json:"supplier_id" validate:"required,uuid"`
	ProductID        string  `json:"product_id" validate:"required,uuid"`
	Quantity         int     `json:"quantity" validate:"required,gt=0"`
	ExpectedDelivery *string `json:"expected_delivery,omitempty"`
}

type updatePurchaseOrderRequest struct {
	Quantity         *int    `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Status           *string `json:"status,omitempty"`
	ExpectedDelivery *string `json:"expected_delivery,omitempty"`
}

type createShipmentRequest struct {
	PurchaseOrderID   string  `json:"purchase_order_id" validate:"required,uuid"`
	TrackingNumber    *string `json:"tracking_number,omitempty"`
	CarrierDetails    *string `json:"carrier_details,omitempty"`
	EstimatedDelivery *string `json:"estimated_delivery,omitempty"`
}

type updateShipmentRequest struct {
	TrackingNumber *string `json:"tracking_number,omitempty"`
	CarrierDetails *string `json:"carrier_details,omitempty"`
	Status         *string `json:"status,omitempty"`
	ActualDelivery *string `json:"actual_delivery,omitempty"`
}

func parseDateField(raw *string, name string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name).
			WithDetails(map[string]string{name: "must be a date in YYYY-MM-DD format"})
	}
	return &parsed, nil
}

// CreatePurchaseOrder opens a new replenishment order in draft.
func CreatePurchaseOrder(svc procurementsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createPurchaseOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := validators.ParseUUID(payload.SupplierID, "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUID(payload.ProductID, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expected, err := parseDateField(payload.ExpectedDelivery, "expected_delivery")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		po, err := svc.CreatePurchaseOrder(r.Context(), procurementsvc.CreatePurchaseOrderInput{
			SupplierID:       supplierID,
			ProductID:        productID,
			Quantity:         payload.Quantity,
			ExpectedDelivery: expected,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, po)
	}
}

// GetPurchaseOrder returns one purchase order with its shipments.
func GetPurchaseOrder(svc procurementsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poID, err := validators.UUIDParam(r, "purchaseOrderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		po, err := svc.GetPurchaseOrder(r.Context(), poID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, po)
	}
}

// ListPurchaseOrders returns purchase orders, newest first, optionally
// filtered by supplier_id.
func ListPurchaseOrders(svc procurementsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := validators.OptionalUUIDQuery(r, "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orders, err := svc.ListPurchaseOrders(r.Context(), supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// UpdatePurchaseOrder applies partial edits; moving to delivered books the
// quantity into stock.
func UpdatePurchaseOrder(svc procurementsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poID, err := validators.UUIDParam(r, "purchaseOrderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePurchaseOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := procurementsvc.UpdatePurchaseOrderInput{Quantity: payload.Quantity}
		if payload.Status != nil {
			status, err := enums.ParsePurchaseOrderStatus(*payload.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(
					pkgerrors.CodeValidation, "unknown purchase order status").
					WithDetails(map[string]string{"status": *payload.Status}))
				return
			}
			input.Status = &status
		}
		input.ExpectedDelivery, err = parseDateField(payload.ExpectedDelivery, "expected_delivery")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		po, err := svc.UpdatePurchaseOrder(r.Context(), poID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, po)
	}
}

// DeletePurchaseOrder removes a draft or cancelled purchase order.
func DeletePurchaseOrder(svc procurementsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poID, err := validators.UUIDParam(r, "purchaseOrderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeletePurchaseOrder(r.Context(), poID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": poID})
	}
}

// ListPurchaseOrderShipments returns a purchase order's shipments.
func ListPurchaseOrderShipments(svc procurementsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poID, err := validators.UUIDParam(r, "purchaseOrderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shipments, err := svc.ListShipments(r.Context(), poID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipments)
	}
}

// CreateShipment records a shipment against a purchase order.
func CreateShipment(svc procurementsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createShipmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		poID, err := validators.ParseUUID(payload.PurchaseOrderID, "purchase_order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		estimated, err := parseDateField(payload.EstimatedDelivery, "estimated_delivery")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.CreateShipment(r.Context(), procurementsvc.CreateShipmentInput{
			PurchaseOrderID:   poID,
			TrackingNumber:    payload.TrackingNumber,
			CarrierDetails:    payload.CarrierDetails,
			EstimatedDelivery: estimated,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, shipment)
	}
}

// UpdateShipment applies partial edits to a shipment; an arriving shipment
// flips its purchase order to delivered.
func UpdateShipment(svc procurementsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipmentID, err := validators.UUIDParam(r, "shipmentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateShipmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := procurementsvc.UpdateShipmentInput{
			TrackingNumber: payload.TrackingNumber,
			CarrierDetails: payload.CarrierDetails,
		}
		if payload.Status != nil {
			status, err := enums.ParseShipmentStatus(*payload.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(
					pkgerrors.CodeValidation, "unknown shipment status").
					WithDetails(map[string]string{"status": *payload.Status}))
				return
			}
			input.Status = &status
		}
		input.ActualDelivery, err = parseDateField(payload.ActualDelivery, "actual_delivery")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.UpdateShipment(r.Context(), shipmentID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipment)
	}
}
