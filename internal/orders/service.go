// Package orders drives the order lifecycle for storefront users: checkout
// submission, payment confirmation, cache refreshes and background status
// polling against the external order service.
package orders

import (
	"context"
	"strings"

	"github.com/aresheg/restaurant-storefront/internal/cart"
	"github.com/aresheg/restaurant-storefront/internal/orderservice"
	"github.com/aresheg/restaurant-storefront/pkg/enums"
	pkgerrors "github.com/aresheg/restaurant-storefront/pkg/errors"
	"github.com/aresheg/restaurant-storefront/pkg/logger"
	"github.com/aresheg/restaurant-storefront/pkg/metrics"
	"github.com/google/uuid"
)

// Service is the order lifecycle controller. All order reads and writes go
// through the order service client; the local cache only mirrors what the
// service last returned.
type Service interface {
	// Submit checks out the user's cart: it validates locally, creates the
	// order remotely, records it as the user's current order and clears the
	// cart. The cart is untouched when the order service rejects the call.
	Submit(ctx context.Context, userID uuid.UUID, deliveryAddress string) (*orderservice.Order, error)

	// ConfirmPayment records the payment outcome for an order. Card payments
	// push PAID or FAILED to the order service; cash on delivery leaves the
	// payment status PENDING until the courier settles. Order status is never
	// touched here.
	ConfirmPayment(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, method enums.PaymentMethod, outcome enums.PaymentStatus) (*orderservice.Order, error)

	// Refresh fetches the latest snapshot of an order and overwrites the
	// cached copy wholesale.
	Refresh(ctx context.Context, orderID uuid.UUID) (*orderservice.Order, error)

	// OrdersForUser lists the user's orders and merges them into the cache.
	OrdersForUser(ctx context.Context, userID uuid.UUID) ([]*orderservice.Order, error)

	// AllOrders lists every order. Privileged; the HTTP layer gates it to
	// admins.
	AllOrders(ctx context.Context) ([]*orderservice.Order, error)

	// CurrentOrder returns the cached current order for the user, nil when
	// the user has not checked out this session.
	CurrentOrder(userID uuid.UUID) *orderservice.Order

	// CachedOrder returns the cached copy of an order without a fetch.
	CachedOrder(orderID uuid.UUID) *orderservice.Order
}

type ServiceDeps struct {
	Client  orderservice.Client
	Carts   *cart.Store
	Cache   *Cache
	Logger  *logger.Logger
	Metrics *metrics.OrderMetrics
}

type service struct {
	client  orderservice.Client
	carts   *cart.Store
	cache   *Cache
	log     *logger.Logger
	metrics *metrics.OrderMetrics
}

func NewService(deps ServiceDeps) (Service, error) {
	if deps.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service requires an order service client")
	}
	if deps.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service requires a cart store")
	}
	if deps.Cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service requires an order cache")
	}
	if deps.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service requires a logger")
	}
	return &service{
		client:  deps.Client,
		carts:   deps.Carts,
		cache:   deps.Cache,
		log:     deps.Logger,
		metrics: deps.Metrics,
	}, nil
}

func (s *service) Submit(ctx context.Context, userID uuid.UUID, deliveryAddress string) (*orderservice.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if strings.TrimSpace(deliveryAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required")
	}

	snap := s.carts.Get(userID)
	if snap.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	// Only dish ids and quantities are transmitted; the order service prices
	// the order from its own catalog.
	items := make([]orderservice.ItemRef, 0, len(snap.Items))
	for _, line := range snap.Items {
		items = append(items, orderservice.ItemRef{
			DishID:   line.DishID,
			Quantity: line.Quantity,
		})
	}

	order, err := s.client.CreateOrder(ctx, orderservice.CreateOrderInput{
		UserID:          userID,
		RestaurantID:    snap.RestaurantID,
		Items:           items,
		DeliveryAddress: strings.TrimSpace(deliveryAddress),
	})
	if err != nil {
		s.metrics.IncCheckout("failure")
		return nil, err
	}

	s.cache.put(order)
	s.cache.setCurrent(userID, order.ID)
	s.carts.Clear(userID)
	s.metrics.IncCheckout("success")

	s.log.Info(s.log.WithOrderID(ctx, order.ID.String()), "order submitted")
	return order, nil
}

func (s *service) ConfirmPayment(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, method enums.PaymentMethod, outcome enums.PaymentStatus) (*orderservice.Order, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	ctx = s.log.WithOrderID(ctx, orderID.String())

	order := s.cache.get(orderID)
	if order == nil {
		fetched, err := s.client.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		order = fetched
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}

	if method == enums.PaymentMethodCash {
		// Cash on delivery: the order stands and settlement happens with the
		// courier, so the recorded payment status stays PENDING.
		s.cache.put(order)
		s.carts.Clear(userID)
		s.metrics.IncPayment(order.PaymentStatus.String())
		s.log.Info(ctx, "cash payment accepted")
		return order, nil
	}

	if outcome != enums.PaymentStatusPaid && outcome != enums.PaymentStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card payment outcome must be PAID or FAILED")
	}

	updated, err := s.client.SetPaymentStatus(ctx, orderID, outcome)
	if err != nil {
		return nil, err
	}
	s.cache.put(updated)
	if updated.PaymentStatus == enums.PaymentStatusPaid {
		s.carts.Clear(userID)
	}
	s.metrics.IncPayment(updated.PaymentStatus.String())
	s.log.Info(ctx, "card payment recorded")
	return updated, nil
}

func (s *service) Refresh(ctx context.Context, orderID uuid.UUID) (*orderservice.Order, error) {
	order, err := s.client.GetOrder(ctx, orderID)
	if err != nil {
		s.metrics.IncRefresh("error")
		return nil, err
	}
	s.cache.put(order)
	s.metrics.IncRefresh("ok")
	return order, nil
}

func (s *service) OrdersForUser(ctx context.Context, userID uuid.UUID) ([]*orderservice.Order, error) {
	list, err := s.client.GetOrdersForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, order := range list {
		s.cache.put(order)
	}
	return list, nil
}

func (s *service) AllOrders(ctx context.Context) ([]*orderservice.Order, error) {
	list, err := s.client.GetAllOrders(ctx)
	if err != nil {
		return nil, err
	}
	for _, order := range list {
		s.cache.put(order)
	}
	return list, nil
}

func (s *service) CurrentOrder(userID uuid.UUID) *orderservice.Order {
	return s.cache.currentFor(userID)
}

func (s *service) CachedOrder(orderID uuid.UUID) *orderservice.Order {
	return s.cache.get(orderID)
}
