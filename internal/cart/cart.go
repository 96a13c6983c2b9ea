// Package cart holds the in-session shopping cart
package cart

import (
	"sync"
	"time"

	"github.com/twillco/storefront/pkg/catalog"
)

// Item is one configured garment in the cart. Items are never mutated after
// they are added.
type Item struct {
	ID       int64               `json:"id"`
	Product  catalog.ProductType `json:"product"`
	Color    string              `json:"color"`
	Size     string              `json:"size"`
	Quantity int                 `json:"quantity"`
	Price    catalog.Cents       `json:"price"`
	Total    catalog.Cents       `json:"total"`
	Preview  string              `json:"preview,omitempty"` // PNG data URL
}

// Cart is an ordered list of items
type Cart struct {
	items  []Item
	lastID int64
	now    func() time.Time
	mu     sync.RWMutex
}

// New creates an empty cart
func New() *Cart {
	return &Cart{now: time.Now}
}

// Add appends item and returns it with its assigned id. Ids are creation
// timestamps in milliseconds, bumped when two adds land in the same
// millisecond so they stay unique and increasing. Total is recomputed from
// Price and Quantity.
func (c *Cart) Add(item Item) Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id

	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if item.Quantity > catalog.MaxQuantity {
		item.Quantity = catalog.MaxQuantity
	}
	item.ID = id
	item.Total = item.Price.Times(item.Quantity)

	c.items = append(c.items, item)
	return item
}

// Remove deletes the item with id. It reports whether anything was removed.
func (c *Cart) Remove(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if item.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the items in insertion order
func (c *Cart) List() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]Item, len(c.items))
	copy(result, c.items)
	return result
}

// Total sums the line totals
func (c *Cart) Total() catalog.Cents {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total catalog.Cents
	for _, item := range c.items {
		total += item.Total
	}
	return total
}

// Count sums the quantities
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Len is the number of lines, not units
func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}
