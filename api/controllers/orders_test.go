package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aresheg/restaurant-storefront/internal/orders"
	"github.com/aresheg/restaurant-storefront/internal/orderservice"
	"github.com/aresheg/restaurant-storefront/pkg/enums"
	pkgerrors "github.com/aresheg/restaurant-storefront/pkg/errors"
	"github.com/aresheg/restaurant-storefront/pkg/metrics"
)

func TestOrdersListRequiresUser(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := &stubOrdersService{
		ordersForUser: func(_ context.Context, gotUser uuid.UUID) ([]*orderservice.Order, error) {
			if gotUser != userID {
				t.Fatalf("expected user %s, got %s", userID, gotUser)
			}
			return []*orderservice.Order{sampleOrder(userID)}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req = withUser(req, userID, enums.UserRoleUser)
	rec := httptest.NewRecorder()
	OrdersList(svc, controllerTestLogger())(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	OrdersList(svc, controllerTestLogger())(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth context, got %d", rec.Code)
	}
}

func TestOrdersListLimit(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := &stubOrdersService{
		ordersForUser: func(context.Context, uuid.UUID) ([]*orderservice.Order, error) {
			return []*orderservice.Order{sampleOrder(userID), sampleOrder(userID), sampleOrder(userID)}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=2", nil)
	req = withUser(req, userID, enums.UserRoleUser)
	rec := httptest.NewRecorder()
	OrdersList(svc, controllerTestLogger())(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data []*orderservice.Order `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected the list capped at 2, got %d", len(envelope.Data))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=abc", nil)
	req = withUser(req, userID, enums.UserRoleUser)
	rec = httptest.NewRecorder()
	OrdersList(svc, controllerTestLogger())(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-numeric limit, got %d", rec.Code)
	}
}

func TestOrderDetailRefreshesAndGuardsOwnership(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	order := sampleOrder(owner)
	svc := &stubOrdersService{
		refresh: func(_ context.Context, orderID uuid.UUID) (*orderservice.Order, error) {
			if orderID != order.ID {
				t.Fatalf("expected order %s, got %s", order.ID, orderID)
			}
			return order, nil
		},
	}

	// the owner can read it
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+order.ID.String(), nil)
	req = withUser(req, owner, enums.UserRoleUser)
	req = withURLParam(req, "orderId", order.ID.String())
	rec := httptest.NewRecorder()
	OrderDetail(svc, controllerTestLogger())(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner read: expected 200, got %d", rec.Code)
	}

	// another user cannot
	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+order.ID.String(), nil)
	req = withUser(req, uuid.New(), enums.UserRoleUser)
	req = withURLParam(req, "orderId", order.ID.String())
	rec = httptest.NewRecorder()
	OrderDetail(svc, controllerTestLogger())(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("stranger read: expected 403, got %d", rec.Code)
	}

	// admins can
	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+order.ID.String(), nil)
	req = withUser(req, uuid.New(), enums.UserRoleAdmin)
	req = withURLParam(req, "orderId", order.ID.String())
	rec = httptest.NewRecorder()
	OrderDetail(svc, controllerTestLogger())(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin read: expected 200, got %d", rec.Code)
	}
}

func TestOrderDetailRejectsBadID(t *testing.T) {
	t.Parallel()

	svc := &stubOrdersService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil)
	req = withUser(req, uuid.New(), enums.UserRoleUser)
	req = withURLParam(req, "orderId", "not-a-uuid")
	rec := httptest.NewRecorder()

	OrderDetail(svc, controllerTestLogger())(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOrderCurrent(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	order := sampleOrder(userID)
	svc := &stubOrdersService{
		currentOrder: func(gotUser uuid.UUID) *orderservice.Order {
			if gotUser == userID {
				return order
			}
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/current", nil)
	req = withUser(req, userID, enums.UserRoleUser)
	rec := httptest.NewRecorder()
	OrderCurrent(svc, controllerTestLogger())(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders/current", nil)
	req = withUser(req, uuid.New(), enums.UserRoleUser)
	rec = httptest.NewRecorder()
	OrderCurrent(svc, controllerTestLogger())(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a checkout, got %d", rec.Code)
	}
}

func TestConfirmPaymentValidatesMethod(t *testing.T) {
	t.Parallel()

	svc := &stubOrdersService{}
	orderID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/payment", strings.NewReader(`{"method":"crypto"}`))
	req = withUser(req, uuid.New(), enums.UserRoleUser)
	req = withURLParam(req, "orderId", orderID.String())
	rec := httptest.NewRecorder()

	ConfirmPayment(svc, controllerTestLogger())(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown method, got %d", rec.Code)
	}
}

func TestConfirmPaymentForwardsToService(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	order := sampleOrder(userID)
	order.PaymentStatus = enums.PaymentStatusPaid
	svc := &stubOrdersService{
		confirmPayment: func(_ context.Context, gotUser, gotOrder uuid.UUID, method enums.PaymentMethod, outcome enums.PaymentStatus) (*orderservice.Order, error) {
			if method != enums.PaymentMethodCard || outcome != enums.PaymentStatusPaid {
				t.Fatalf("unexpected method/outcome %s/%s", method, outcome)
			}
			return order, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/payment", strings.NewReader(`{"method":"card","outcome":"PAID"}`))
	req = withUser(req, userID, enums.UserRoleUser)
	req = withURLParam(req, "orderId", order.ID.String())
	rec := httptest.NewRecorder()

	ConfirmPayment(svc, controllerTestLogger())(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTrackStartAndStop(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	order := sampleOrder(userID)
	svc := &stubOrdersService{
		refresh: func(context.Context, uuid.UUID) (*orderservice.Order, error) {
			return order, nil
		},
	}
	tracker := newTestTracker(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/track", nil)
	req = withUser(req, userID, enums.UserRoleUser)
	req = withURLParam(req, "orderId", order.ID.String())
	rec := httptest.NewRecorder()
	TrackStart(svc, tracker, controllerTestLogger())(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if !tracker.Tracking(order.ID) {
		t.Fatal("expected the tracker to hold a live poller")
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/orders/"+order.ID.String()+"/track", nil)
	req = withUser(req, userID, enums.UserRoleUser)
	req = withURLParam(req, "orderId", order.ID.String())
	rec = httptest.NewRecorder()
	TrackStop(tracker, controllerTestLogger())(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if tracker.Tracking(order.ID) {
		t.Fatal("expected tracking stopped")
	}
}

func TestTrackStartSkipsTerminalOrders(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	order := sampleOrder(userID)
	order.Status = enums.OrderStatusDelivered

	svc := &stubOrdersService{
		refresh: func(context.Context, uuid.UUID) (*orderservice.Order, error) {
			return order, nil
		},
	}
	tracker := newTestTracker(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/track", nil)
	req = withUser(req, userID, enums.UserRoleUser)
	req = withURLParam(req, "orderId", order.ID.String())
	rec := httptest.NewRecorder()
	TrackStart(svc, tracker, controllerTestLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for terminal order, got %d", rec.Code)
	}
	if tracker.Tracking(order.ID) {
		t.Fatal("terminal orders must not be tracked")
	}
}

func TestTrackStartRejectsUnknownOrder(t *testing.T) {
	t.Parallel()

	svc := &stubOrdersService{
		refresh: func(context.Context, uuid.UUID) (*orderservice.Order, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		},
	}
	tracker := newTestTracker(t, svc)

	orderID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/track", nil)
	req = withUser(req, uuid.New(), enums.UserRoleUser)
	req = withURLParam(req, "orderId", orderID.String())
	rec := httptest.NewRecorder()
	TrackStart(svc, tracker, controllerTestLogger())(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if tracker.Tracking(orderID) {
		t.Fatal("failed track start must not leave a poller behind")
	}
}

func newTestTracker(t *testing.T, svc orders.Service) *orders.Tracker {
	t.Helper()
	tracker := orders.NewTracker(svc, 5*time.Millisecond, controllerTestLogger(), metrics.NewOrderMetrics(nil))
	t.Cleanup(tracker.Shutdown)
	return tracker
}
