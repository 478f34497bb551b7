package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aresheg/restaurant-storefront/api/middleware"
	"github.com/aresheg/restaurant-storefront/api/responses"
	"github.com/aresheg/restaurant-storefront/api/validators"
	"github.com/aresheg/restaurant-storefront/internal/cart"
	pkgerrors "github.com/aresheg/restaurant-storefront/pkg/errors"
	"github.com/aresheg/restaurant-storefront/pkg/logger"
)

type addCartItemRequest struct {
	RestaurantID   string          `json:"restaurant_id" validate:"required"`
	RestaurantName string          `json:"restaurant_name"`
	DishID         string          `json:"dish_id" validate:"required"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity" validate:"required,min=1"`
	ImageURL       string          `json:"image_url"`
}

type setCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartFetch returns the signed-in user's cart.
func CartFetch(carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user"))
			return
		}
		responses.WriteSuccess(w, carts.Get(userID))
	}
}

// CartAddItem adds a dish line to the cart, replacing the cart contents when
// the dish comes from a different restaurant.
func CartAddItem(carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user"))
			return
		}

		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, carts.AddItem(userID, cart.AddItemInput{
			RestaurantID:   req.RestaurantID,
			RestaurantName: req.RestaurantName,
			DishID:         req.DishID,
			Name:           req.Name,
			Price:          req.Price,
			Quantity:       req.Quantity,
			ImageURL:       req.ImageURL,
		}))
	}
}

// CartSetQuantity pins a line's quantity; zero or less removes the line.
func CartSetQuantity(carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user"))
			return
		}

		dishID := strings.TrimSpace(chi.URLParam(r, "dishId"))
		if dishID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "dish id is required"))
			return
		}

		var req setCartQuantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, carts.SetQuantity(userID, dishID, req.Quantity))
	}
}

// CartRemoveItem drops a dish from the cart.
func CartRemoveItem(carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user"))
			return
		}

		dishID := strings.TrimSpace(chi.URLParam(r, "dishId"))
		if dishID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "dish id is required"))
			return
		}

		responses.WriteSuccess(w, carts.RemoveItem(userID, dishID))
	}
}

// CartClear empties the cart.
func CartClear(carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user"))
			return
		}

		carts.Clear(userID)
		responses.WriteSuccess(w, carts.Get(userID))
	}
}
