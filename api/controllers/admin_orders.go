package controllers

import (
	"net/http"

	"github.com/aresheg/restaurant-storefront/api/responses"
	"github.com/aresheg/restaurant-storefront/api/validators"
	"github.com/aresheg/restaurant-storefront/internal/orders"
	"github.com/aresheg/restaurant-storefront/pkg/logger"
)

type adminSetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type adminSetPaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
}

// AdminOrdersList returns every order in the system, capped by the same
// optional limit parameter as the user-facing list.
func AdminOrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxOrdersPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.AllOrders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if limit > 0 && len(list) > limit {
			list = list[:limit]
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminSetOrderStatus applies a manual order status correction.
func AdminSetOrderStatus(editor *orders.AdminEditor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req adminSetStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := editor.SetStatus(r.Context(), orderID, req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminSetPaymentStatus applies a manual payment status correction.
func AdminSetPaymentStatus(editor *orders.AdminEditor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req adminSetPaymentStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := editor.SetPaymentStatus(r.Context(), orderID, req.PaymentStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
