package service

import (
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/niksmo/menu-admin/internal/core/catalog"
	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/niksmo/menu-admin/internal/core/port"
)

var _ port.CartKeeper = (*Cart)(nil)

// Cart is the customer side demo cart. Only items currently available
// in the store can be added.
type Cart struct {
	store *catalog.Store

	mu    sync.Mutex
	lines []domain.CartLine
}

func NewCart(store *catalog.Store) *Cart {
	return &Cart{store: store}
}

func (c *Cart) Add(itemID int64) error {
	const op = "Cart.Add"

	item, ok := c.store.Item(itemID)
	if !ok {
		return fmt.Errorf("%s: item %d: %w", op, itemID, domain.ErrNotFound)
	}
	if !item.Available {
		return fmt.Errorf("%s: item %d: %w", op, itemID, domain.ErrUnavailable)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.lines, func(l domain.CartLine) bool {
		return l.Item.ID == itemID
	})
	if i < 0 {
		c.lines = append(c.lines, domain.CartLine{Item: item, Quantity: 1})
		return nil
	}
	c.lines[i].Item = item
	c.lines[i].Quantity++
	return nil
}

// Remove drops one unit of the item.
func (c *Cart) Remove(itemID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.lines, func(l domain.CartLine) bool {
		return l.Item.ID == itemID
	})
	if i < 0 {
		return
	}
	c.lines[i].Quantity--
	if c.lines[i].Quantity == 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
	}
}

func (c *Cart) Cart() domain.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Item.FinalPrice().Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return domain.Cart{Lines: slices.Clone(c.lines), Total: total}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}
