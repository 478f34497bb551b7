package orders

import (
	"context"
	"testing"

	"github.com/aresheg/restaurant-storefront/internal/orderservice"
	"github.com/aresheg/restaurant-storefront/pkg/enums"
	pkgerrors "github.com/aresheg/restaurant-storefront/pkg/errors"
	"github.com/google/uuid"
)

func newAdminFixture(t *testing.T) (*fixture, *AdminEditor) {
	t.Helper()
	f := newFixture(t)
	editor, err := NewAdminEditor(f.client, f.cache, testLogger())
	if err != nil {
		t.Fatalf("new admin editor: %v", err)
	}
	return f, editor
}

func TestAdminSetStatusRejectsUnknownStatusLocally(t *testing.T) {
	t.Parallel()

	f, editor := newAdminFixture(t)

	_, err := editor.SetStatus(context.Background(), uuid.New(), "SHIPPED")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInvalidStatus {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if f.client.setStatusCalls != 0 {
		t.Fatal("unknown status must be rejected before any service call")
	}

	// lowercase is not a valid wire value either
	_, err = editor.SetStatus(context.Background(), uuid.New(), "delivered")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInvalidStatus {
		t.Fatalf("expected invalid status for lowercase input, got %v", err)
	}
}

func TestAdminSetStatusUpdatesEveryCachedCopy(t *testing.T) {
	t.Parallel()

	f, editor := newAdminFixture(t)
	userID := uuid.New()
	order := testOrder(userID)
	f.cache.put(order)
	f.cache.setCurrent(userID, order.ID)

	f.client.setOrderStatusFn = func(_ context.Context, orderID uuid.UUID, status enums.OrderStatus) (*orderservice.Order, error) {
		updated := order.Clone()
		updated.Status = status
		return updated, nil
	}

	updated, err := editor.SetStatus(context.Background(), order.ID, "CANCELLED")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", updated.Status)
	}

	if cached := f.svc.CachedOrder(order.ID); cached.Status != enums.OrderStatusCancelled {
		t.Fatalf("order cache must reflect the admin edit, got %s", cached.Status)
	}
	if current := f.svc.CurrentOrder(userID); current.Status != enums.OrderStatusCancelled {
		t.Fatalf("current-order view must reflect the admin edit, got %s", current.Status)
	}
}

func TestAdminSetStatusBackwardRequestStillReachesService(t *testing.T) {
	t.Parallel()

	f, editor := newAdminFixture(t)
	order := testOrder(uuid.New())
	order.Status = enums.OrderStatusPreparing
	f.cache.put(order)

	// the service has the final word; the editor only warns
	f.client.setOrderStatusFn = func(_ context.Context, orderID uuid.UUID, status enums.OrderStatus) (*orderservice.Order, error) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "transition not allowed")
	}

	_, err := editor.SetStatus(context.Background(), order.ID, "PENDING")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected the service rejection to propagate, got %v", err)
	}
	if f.client.setStatusCalls != 1 {
		t.Fatalf("backward request must still be attempted, got %d calls", f.client.setStatusCalls)
	}

	if cached := f.svc.CachedOrder(order.ID); cached.Status != enums.OrderStatusPreparing {
		t.Fatalf("cache must be untouched on rejection, got %s", cached.Status)
	}
}

func TestAdminSetPaymentStatus(t *testing.T) {
	t.Parallel()

	f, editor := newAdminFixture(t)
	order := testOrder(uuid.New())
	f.cache.put(order)

	_, err := editor.SetPaymentStatus(context.Background(), order.ID, "REFUNDED")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInvalidStatus {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if f.client.setPaymentCalls != 0 {
		t.Fatal("unknown payment status must be rejected before any service call")
	}

	f.client.setPaymentStatusFn = func(_ context.Context, orderID uuid.UUID, status enums.PaymentStatus) (*orderservice.Order, error) {
		updated := order.Clone()
		updated.PaymentStatus = status
		return updated, nil
	}

	updated, err := editor.SetPaymentStatus(context.Background(), order.ID, "PAID")
	if err != nil {
		t.Fatalf("set payment status: %v", err)
	}
	if updated.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected PAID, got %s", updated.PaymentStatus)
	}
	if updated.Status != order.Status {
		t.Fatalf("order status must be untouched, got %s", updated.Status)
	}
	if cached := f.svc.CachedOrder(order.ID); cached.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("cache must reflect the payment edit, got %s", cached.PaymentStatus)
	}
}
