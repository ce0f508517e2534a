package controllers

import (
	"net/http"

	"github.com/angelmondragon/stockroom-backend/api/responses"
	"github.com/angelmondragon/stockroom-backend/api/validators"
	ordersvc "github.com/angelmondragon/stockroom-backend/internal/orders"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
)

type placeOrderRequest struct {
	PlacedBy        string  `json:"placed_by" validate:"required,uuid"`
	ShippingAddress string  `json:"shipping_address" validate:"required"`
	CustomerName    *string `json:"customer_name,omitempty"`
	CustomerEmail   *string `json:"customer_email,omitempty" validate:"omitempty,email"`
}

// PlaceOrder turns the session's cart into a committed order.
func PlaceOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		placedBy, err := validators.ParseUUID(payload.PlacedBy, "placed_by")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		placed, err := svc.PlaceOrder(r.Context(), sessionID, ordersvc.BuyerInfo{
			PlacedBy:        placedBy,
			ShippingAddress: payload.ShippingAddress,
			CustomerName:    payload.CustomerName,
			CustomerEmail:   payload.CustomerEmail,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, placed)
	}
}
