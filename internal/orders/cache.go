package orders

import (
	"sync"

	"github.com/aresheg/restaurant-storefront/internal/orderservice"
	"github.com/google/uuid"
)

// Cache is the local view of orders fetched from the order service. Writes
// overwrite the cached copy wholesale with the incoming snapshot; whichever
// fetch completes last wins. It also tracks the "current" order per user,
// the one most recently submitted through checkout.
type Cache struct {
	mu            sync.Mutex
	byID          map[uuid.UUID]*orderservice.Order
	currentByUser map[uuid.UUID]uuid.UUID
}

func NewCache() *Cache {
	return &Cache{
		byID:          make(map[uuid.UUID]*orderservice.Order),
		currentByUser: make(map[uuid.UUID]uuid.UUID),
	}
}

func (c *Cache) put(order *orderservice.Order) {
	if order == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[order.ID] = order.Clone()
}

func (c *Cache) get(orderID uuid.UUID) *orderservice.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	if order, ok := c.byID[orderID]; ok {
		return order.Clone()
	}
	return nil
}

func (c *Cache) setCurrent(userID uuid.UUID, orderID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentByUser[userID] = orderID
}

func (c *Cache) currentFor(userID uuid.UUID) *orderservice.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	orderID, ok := c.currentByUser[userID]
	if !ok {
		return nil
	}
	if order, ok := c.byID[orderID]; ok {
		return order.Clone()
	}
	return nil
}
