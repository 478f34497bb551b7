package orderservice

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aresheg/restaurant-storefront/pkg/config"
	"github.com/aresheg/restaurant-storefront/pkg/enums"
	pkgerrors "github.com/aresheg/restaurant-storefront/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dish is a priced catalog entry the simulator sells.
type Dish struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Available bool
}

// Restaurant groups the dishes the simulator can price.
type Restaurant struct {
	ID     string
	Name   string
	Dishes map[string]Dish
}

// Simulator is an in-process Order Service used in dev mode and tests.
// It owns the authoritative pricing rules the storefront must not apply
// itself: per-item prices come from the catalog, and delivery/service
// fees are added to the total at creation time. Status transitions are
// validated server-side; the storefront only requests them.
type Simulator struct {
	mu          sync.Mutex
	restaurants map[string]Restaurant
	orders      map[uuid.UUID]*Order
	deliveryFee decimal.Decimal
	serviceFee  decimal.Decimal
	now         func() time.Time
}

// NewSimulator builds an empty simulator with the configured fees.
func NewSimulator(fees config.FeesConfig) (*Simulator, error) {
	delivery, err := decimal.NewFromString(strings.TrimSpace(fees.Delivery))
	if err != nil {
		return nil, fmt.Errorf("parsing delivery fee: %w", err)
	}
	service, err := decimal.NewFromString(strings.TrimSpace(fees.Service))
	if err != nil {
		return nil, fmt.Errorf("parsing service fee: %w", err)
	}
	return &Simulator{
		restaurants: make(map[string]Restaurant),
		orders:      make(map[uuid.UUID]*Order),
		deliveryFee: delivery,
		serviceFee:  service,
		now:         time.Now,
	}, nil
}

// SeedRestaurant registers a restaurant and its dishes, replacing any
// previous entry with the same id.
func (s *Simulator) SeedRestaurant(r Restaurant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Dishes == nil {
		r.Dishes = make(map[string]Dish)
	}
	s.restaurants[r.ID] = r
}

// SeedDefaultCatalog loads a small fixed menu so dev mode works out of
// the box.
func (s *Simulator) SeedDefaultCatalog() {
	s.SeedRestaurant(Restaurant{
		ID:   "R1",
		Name: "Bella Napoli",
		Dishes: map[string]Dish{
			"D1": {ID: "D1", Name: "Margherita", Price: decimal.NewFromInt(10), Available: true},
			"D2": {ID: "D2", Name: "Quattro Formaggi", Price: decimal.RequireFromString("13.50"), Available: true},
			"D3": {ID: "D3", Name: "Tiramisu", Price: decimal.RequireFromString("6.50"), Available: true},
		},
	})
	s.SeedRestaurant(Restaurant{
		ID:   "R2",
		Name: "Golden Wok",
		Dishes: map[string]Dish{
			"D10": {ID: "D10", Name: "Kung Pao Chicken", Price: decimal.RequireFromString("11.90"), Available: true},
			"D11": {ID: "D11", Name: "Spring Rolls", Price: decimal.RequireFromString("4.90"), Available: true},
		},
	})
}

func (s *Simulator) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if strings.TrimSpace(input.DeliveryAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required")
	}

	restaurant, ok := s.restaurants[input.RestaurantID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
	}

	items := make([]OrderItem, 0, len(input.Items))
	total := s.deliveryFee.Add(s.serviceFee)
	for _, ref := range input.Items {
		dish, ok := restaurant.Dishes[ref.DishID]
		if !ok || !dish.Available {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dish not available").
				WithDetails(map[string]any{"dish_id": ref.DishID})
		}
		if ref.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive").
				WithDetails(map[string]any{"dish_id": ref.DishID})
		}
		items = append(items, OrderItem{
			DishID:   ref.DishID,
			Quantity: ref.Quantity,
			Price:    dish.Price,
		})
		total = total.Add(dish.Price.Mul(decimal.NewFromInt(int64(ref.Quantity))))
	}

	order := &Order{
		ID:              uuid.New(),
		UserID:          input.UserID,
		RestaurantID:    input.RestaurantID,
		Items:           items,
		DeliveryAddress: input.DeliveryAddress,
		Total:           total,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		CreatedAt:       s.now().UTC(),
	}
	s.orders[order.ID] = order
	return order.Clone(), nil
}

func (s *Simulator) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order.Clone(), nil
}

func (s *Simulator) GetOrdersForUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*Order
	for _, order := range s.orders {
		if order.UserID == userID {
			result = append(result, order.Clone())
		}
	}
	sortByCreation(result)
	return result, nil
}

func (s *Simulator) GetAllOrders(ctx context.Context) ([]*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*Order, 0, len(s.orders))
	for _, order := range s.orders {
		result = append(result, order.Clone())
	}
	sortByCreation(result)
	return result, nil
}

func (s *Simulator) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidStatus, "unknown order status").
			WithDetails(map[string]any{"status": status.String()})
	}
	order, ok := s.orders[orderID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "status transition not allowed").
			WithDetails(map[string]any{"from": order.Status.String(), "to": status.String()})
	}
	order.Status = status
	return order.Clone(), nil
}

func (s *Simulator) SetPaymentStatus(ctx context.Context, orderID uuid.UUID, paymentStatus enums.PaymentStatus) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !paymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidStatus, "unknown payment status").
			WithDetails(map[string]any{"payment_status": paymentStatus.String()})
	}
	order, ok := s.orders[orderID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	order.PaymentStatus = paymentStatus
	return order.Clone(), nil
}

func sortByCreation(orders []*Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID.String() < orders[j].ID.String()
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}
