package orders

import (
	"context"
	"testing"
	"time"

	"github.com/aresheg/restaurant-storefront/internal/orderservice"
	"github.com/aresheg/restaurant-storefront/pkg/enums"
	pkgerrors "github.com/aresheg/restaurant-storefront/pkg/errors"
	"github.com/aresheg/restaurant-storefront/pkg/metrics"
	"github.com/google/uuid"
)

const pollTestInterval = 5 * time.Millisecond

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func newPollerFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixture(t)
}

func (f *fixture) newPoller(orderID uuid.UUID) *Poller {
	return NewPoller(orderID, pollTestInterval, f.svc, testLogger(), metrics.NewOrderMetrics(nil))
}

func TestPollerStopsOnTerminalStatus(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	userID := uuid.New()
	order := testOrder(userID)

	statuses := []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusPreparing,
		enums.OrderStatusDelivered,
		enums.OrderStatusDelivered,
	}
	calls := 0
	f.client.getOrderFn = func(context.Context, uuid.UUID) (*orderservice.Order, error) {
		snap := order.Clone()
		if calls < len(statuses) {
			snap.Status = statuses[calls]
		} else {
			snap.Status = enums.OrderStatusDelivered
		}
		calls++
		return snap, nil
	}

	poller := f.newPoller(order.ID)
	poller.Start()

	waitFor(t, time.Second, func() bool { return poller.State() == PollerStopped })

	if cached := f.svc.CachedOrder(order.ID); cached == nil || cached.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected the terminal snapshot cached, got %+v", cached)
	}

	// the goroutine is gone; no further refreshes happen
	f.client.mu.Lock()
	after := f.client.getCalls
	f.client.mu.Unlock()
	time.Sleep(5 * pollTestInterval)
	f.client.mu.Lock()
	later := f.client.getCalls
	f.client.mu.Unlock()
	if later != after {
		t.Fatalf("poller kept refreshing after terminal status: %d -> %d", after, later)
	}
}

func TestPollerSwallowsRefreshErrors(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	userID := uuid.New()
	order := testOrder(userID)

	calls := 0
	f.client.getOrderFn = func(context.Context, uuid.UUID) (*orderservice.Order, error) {
		calls++
		if calls < 3 {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "blip")
		}
		snap := order.Clone()
		snap.Status = enums.OrderStatusCancelled
		return snap, nil
	}

	poller := f.newPoller(order.ID)
	poller.Start()

	waitFor(t, time.Second, func() bool { return poller.State() == PollerStopped })
	if calls < 3 {
		t.Fatalf("expected the poller to retry through errors, got %d calls", calls)
	}
}

func TestPollerStopIsImmediateAndIdempotent(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	userID := uuid.New()
	order := testOrder(userID)
	f.client.getOrderFn = func(context.Context, uuid.UUID) (*orderservice.Order, error) {
		return order.Clone(), nil
	}

	poller := f.newPoller(order.ID)
	poller.Start()
	waitFor(t, time.Second, func() bool {
		f.client.mu.Lock()
		defer f.client.mu.Unlock()
		return f.client.getCalls > 0
	})

	poller.Stop()
	poller.Stop() // idempotent

	if poller.State() != PollerStopped {
		t.Fatalf("expected stopped state, got %s", poller.State())
	}

	f.client.mu.Lock()
	after := f.client.getCalls
	f.client.mu.Unlock()
	time.Sleep(5 * pollTestInterval)
	f.client.mu.Lock()
	later := f.client.getCalls
	f.client.mu.Unlock()
	if later != after {
		t.Fatalf("refresh issued after Stop returned: %d -> %d", after, later)
	}
}

func TestPollerNeverRestarts(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	poller := f.newPoller(uuid.New())

	poller.Stop() // stopping an idle poller just parks it
	if poller.State() != PollerStopped {
		t.Fatalf("expected stopped, got %s", poller.State())
	}

	poller.Start() // no-op on a stopped poller
	if poller.State() != PollerStopped {
		t.Fatalf("a stopped poller must not restart, got %s", poller.State())
	}

	time.Sleep(3 * pollTestInterval)
	f.client.mu.Lock()
	calls := f.client.getCalls
	f.client.mu.Unlock()
	if calls != 0 {
		t.Fatalf("stopped poller must never refresh, got %d calls", calls)
	}
}

func TestTrackerReplacesAndStops(t *testing.T) {
	t.Parallel()

	f := newPollerFixture(t)
	userID := uuid.New()
	order := testOrder(userID)
	f.client.getOrderFn = func(context.Context, uuid.UUID) (*orderservice.Order, error) {
		return order.Clone(), nil
	}

	tracker := NewTracker(f.svc, pollTestInterval, testLogger(), metrics.NewOrderMetrics(nil))

	tracker.StartTracking(order.ID)
	if !tracker.Tracking(order.ID) {
		t.Fatal("expected the order to be tracked")
	}

	// re-tracking replaces the poller with a fresh instance
	tracker.StartTracking(order.ID)
	if !tracker.Tracking(order.ID) {
		t.Fatal("expected the order to still be tracked after replacement")
	}

	tracker.StopTracking(order.ID)
	if tracker.Tracking(order.ID) {
		t.Fatal("expected tracking to stop")
	}

	tracker.StartTracking(order.ID)
	tracker.Shutdown()
	if tracker.Tracking(order.ID) {
		t.Fatal("expected shutdown to stop all pollers")
	}
}
