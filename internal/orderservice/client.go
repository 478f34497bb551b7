package orderservice

import (
	"context"
	"time"

	"github.com/aresheg/restaurant-storefront/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one priced line of an order. Price is the per-unit price
// the Order Service settled on at creation time.
type OrderItem struct {
	DishID   string          `json:"dish_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order is the server-authoritative record created from a submitted cart.
// The storefront never fabricates an ID and never recomputes Total.
type Order struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	RestaurantID    string              `json:"restaurant_id"`
	Items           []OrderItem         `json:"items"`
	DeliveryAddress string              `json:"delivery_address"`
	Total           decimal.Decimal     `json:"total"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	CreatedAt       time.Time           `json:"created_at"`
}

// Clone returns a deep copy so cached orders can be handed out without
// aliasing the cache's backing slices.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	dup := *o
	dup.Items = make([]OrderItem, len(o.Items))
	copy(dup.Items, o.Items)
	return &dup
}

// ItemRef is what the storefront submits at checkout: dish and quantity
// only. Prices are never trusted from the client side.
type ItemRef struct {
	DishID   string `json:"dish_id"`
	Quantity int    `json:"quantity"`
}

// CreateOrderInput is the checkout submission payload.
type CreateOrderInput struct {
	UserID          uuid.UUID `json:"user_id"`
	RestaurantID    string    `json:"restaurant_id"`
	Items           []ItemRef `json:"items"`
	DeliveryAddress string    `json:"delivery_address"`
}

// Client is the Order Service boundary. Implementations must be safe for
// concurrent use; every call is a single request/response round trip.
type Client interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error)
	GetOrdersForUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	GetAllOrders(ctx context.Context) ([]*Order, error)
	SetOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*Order, error)
	SetPaymentStatus(ctx context.Context, orderID uuid.UUID, paymentStatus enums.PaymentStatus) (*Order, error)
}
