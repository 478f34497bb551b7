package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/aresheg/restaurant-storefront/api/middleware"
	"github.com/aresheg/restaurant-storefront/api/responses"
	"github.com/aresheg/restaurant-storefront/api/validators"
	"github.com/aresheg/restaurant-storefront/internal/orders"
	pkgerrors "github.com/aresheg/restaurant-storefront/pkg/errors"
	"github.com/aresheg/restaurant-storefront/pkg/logger"
)

type checkoutRequest struct {
	DeliveryAddress string `json:"delivery_address" validate:"required"`
}

// Checkout submits the signed-in user's cart as a new order.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user"))
			return
		}

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Submit(r.Context(), userID, req.DeliveryAddress)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
