package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aresheg/restaurant-storefront/api/middleware"
	"github.com/aresheg/restaurant-storefront/internal/orderservice"
	"github.com/aresheg/restaurant-storefront/pkg/enums"
	pkgerrors "github.com/aresheg/restaurant-storefront/pkg/errors"
	"github.com/aresheg/restaurant-storefront/pkg/logger"
	"github.com/aresheg/restaurant-storefront/pkg/types"
)

type stubOrdersService struct {
	submit         func(ctx context.Context, userID uuid.UUID, deliveryAddress string) (*orderservice.Order, error)
	confirmPayment func(ctx context.Context, userID, orderID uuid.UUID, method enums.PaymentMethod, outcome enums.PaymentStatus) (*orderservice.Order, error)
	refresh        func(ctx context.Context, orderID uuid.UUID) (*orderservice.Order, error)
	ordersForUser  func(ctx context.Context, userID uuid.UUID) ([]*orderservice.Order, error)
	allOrders      func(ctx context.Context) ([]*orderservice.Order, error)
	currentOrder   func(userID uuid.UUID) *orderservice.Order
	cachedOrder    func(orderID uuid.UUID) *orderservice.Order
}

func (s *stubOrdersService) Submit(ctx context.Context, userID uuid.UUID, deliveryAddress string) (*orderservice.Order, error) {
	if s.submit == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "Submit not stubbed")
	}
	return s.submit(ctx, userID, deliveryAddress)
}

func (s *stubOrdersService) ConfirmPayment(ctx context.Context, userID, orderID uuid.UUID, method enums.PaymentMethod, outcome enums.PaymentStatus) (*orderservice.Order, error) {
	if s.confirmPayment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ConfirmPayment not stubbed")
	}
	return s.confirmPayment(ctx, userID, orderID, method, outcome)
}

func (s *stubOrdersService) Refresh(ctx context.Context, orderID uuid.UUID) (*orderservice.Order, error) {
	if s.refresh == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "Refresh not stubbed")
	}
	return s.refresh(ctx, orderID)
}

func (s *stubOrdersService) OrdersForUser(ctx context.Context, userID uuid.UUID) ([]*orderservice.Order, error) {
	if s.ordersForUser == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "OrdersForUser not stubbed")
	}
	return s.ordersForUser(ctx, userID)
}

func (s *stubOrdersService) AllOrders(ctx context.Context) ([]*orderservice.Order, error) {
	if s.allOrders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "AllOrders not stubbed")
	}
	return s.allOrders(ctx)
}

func (s *stubOrdersService) CurrentOrder(userID uuid.UUID) *orderservice.Order {
	if s.currentOrder == nil {
		return nil
	}
	return s.currentOrder(userID)
}

func (s *stubOrdersService) CachedOrder(orderID uuid.UUID) *orderservice.Order {
	if s.cachedOrder == nil {
		return nil
	}
	return s.cachedOrder(orderID)
}

func controllerTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func sampleOrder(userID uuid.UUID) *orderservice.Order {
	return &orderservice.Order{
		ID:           uuid.New(),
		UserID:       userID,
		RestaurantID: "R1",
		Items: []orderservice.OrderItem{
			{DishID: "D1", Quantity: 2, Price: decimal.NewFromInt(10)},
		},
		DeliveryAddress: "1 Main St",
		Total:           decimal.RequireFromString("27.00"),
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		CreatedAt:       time.Now().UTC(),
	}
}

// withUser seeds the request context the way the auth middleware would.
func withUser(req *http.Request, userID uuid.UUID, role enums.UserRole) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

// withURLParam seeds a chi route parameter for handlers called outside a
// router.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope
}
