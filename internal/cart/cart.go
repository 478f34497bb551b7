// Package cart holds the in-memory shopping carts for storefront users.
//
// A cart only ever contains dishes from a single restaurant. Adding a dish
// from another restaurant replaces the cart contents wholesale, matching the
// single-restaurant checkout flow downstream. No cart operation fails:
// unusable input degrades to a no-op and the caller gets the current
// snapshot back.
package cart

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one cart line. Price is the unit price captured when the dish was
// added; the order service re-prices authoritatively at checkout. Name and
// ImageURL are display data carried so the cart view renders without a
// catalog refetch.
type Item struct {
	DishID   string          `json:"dish_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	ImageURL string          `json:"image_url,omitempty"`
}

// Snapshot is a detached copy of a cart safe to hand to callers. Items keep
// the order dishes were added in. Total is derived from the lines on every
// read, never stored.
type Snapshot struct {
	RestaurantID   string          `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name,omitempty"`
	Items          []Item          `json:"items"`
	Total          decimal.Decimal `json:"total"`
}

// Empty reports whether the snapshot has no lines.
func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}

// AddItemInput describes a dish being added to a cart.
type AddItemInput struct {
	RestaurantID   string
	RestaurantName string
	DishID         string
	Name           string
	Price          decimal.Decimal
	Quantity       int
	ImageURL       string
}

type cartState struct {
	restaurantID   string
	restaurantName string
	items          []Item
}

func (c *cartState) find(dishID string) int {
	for i := range c.items {
		if c.items[i].DishID == dishID {
			return i
		}
	}
	return -1
}

// Store keeps one cart per user. All methods are safe for concurrent use;
// returned snapshots never alias internal state.
type Store struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*cartState
}

func NewStore() *Store {
	return &Store{carts: make(map[uuid.UUID]*cartState)}
}

// AddItem puts a dish into the user's cart. Re-adding a dish already in the
// cart sums the quantities in place; a new dish is appended after the
// existing lines. Adding a dish from a different restaurant clears the cart
// before the add. Input without a user, restaurant or dish id is a no-op;
// a quantity below one is raised to one.
func (s *Store) AddItem(userID uuid.UUID, in AddItemInput) Snapshot {
	restaurantID := strings.TrimSpace(in.RestaurantID)
	dishID := strings.TrimSpace(in.DishID)
	if userID == uuid.Nil || restaurantID == "" || dishID == "" {
		return s.Get(userID)
	}
	if in.Quantity < 1 {
		in.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.carts[userID]
	if state == nil || state.restaurantID != restaurantID {
		state = &cartState{
			restaurantID:   restaurantID,
			restaurantName: strings.TrimSpace(in.RestaurantName),
		}
		s.carts[userID] = state
	}

	if i := state.find(dishID); i >= 0 {
		state.items[i].Name = in.Name
		state.items[i].Price = in.Price
		state.items[i].ImageURL = in.ImageURL
		state.items[i].Quantity += in.Quantity
	} else {
		state.items = append(state.items, Item{
			DishID:   dishID,
			Name:     in.Name,
			Price:    in.Price,
			Quantity: in.Quantity,
			ImageURL: in.ImageURL,
		})
	}

	return snapshotLocked(state)
}

// RemoveItem drops a dish from the cart. Removing a dish that is not in the
// cart is a no-op.
func (s *Store) RemoveItem(userID uuid.UUID, dishID string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.carts[userID]
	if state == nil {
		return Snapshot{}
	}
	if i := state.find(dishID); i >= 0 {
		state.items = append(state.items[:i], state.items[i+1:]...)
	}
	if len(state.items) == 0 {
		delete(s.carts, userID)
		return Snapshot{}
	}
	return snapshotLocked(state)
}

// SetQuantity pins the quantity of a dish already in the cart. A quantity of
// zero or less removes the line; a dish that is not in the cart is a no-op.
func (s *Store) SetQuantity(userID uuid.UUID, dishID string, quantity int) Snapshot {
	if quantity <= 0 {
		return s.RemoveItem(userID, dishID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.carts[userID]
	if state == nil {
		return Snapshot{}
	}
	if i := state.find(dishID); i >= 0 {
		state.items[i].Quantity = quantity
	}
	return snapshotLocked(state)
}

// Clear empties the user's cart.
func (s *Store) Clear(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

// Get returns the current cart contents. An empty snapshot is returned when
// the user has no cart.
func (s *Store) Get(userID uuid.UUID) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.carts[userID]
	if state == nil {
		return Snapshot{}
	}
	return snapshotLocked(state)
}

func snapshotLocked(state *cartState) Snapshot {
	items := make([]Item, len(state.items))
	copy(items, state.items)
	total := decimal.Zero
	for _, line := range items {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return Snapshot{
		RestaurantID:   state.restaurantID,
		RestaurantName: state.restaurantName,
		Items:          items,
		Total:          total,
	}
}
