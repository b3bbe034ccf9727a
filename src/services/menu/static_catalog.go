package menu

import (
	"cmp"
	"context"
	"go-restaurant-pos/src/services/order/domain"
	"slices"
	"sync"
)

type staticCatalog struct {
	mu    sync.RWMutex
	items map[string]MenuItem
}

// NewStaticCatalog keeps the menu in memory. It backs the memory store driver
// and tests.
func NewStaticCatalog(items ...MenuItem) Catalog {
	c := &staticCatalog{items: make(map[string]MenuItem, len(items))}
	for _, item := range items {
		c.items[item.ID] = item
	}
	return c
}

func (c *staticCatalog) Resolve(_ context.Context, id string) (*domain.MenuEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	return item.entry(), nil
}

func (c *staticCatalog) GetAll(_ context.Context) ([]MenuItem, error) {
	c.mu.RLock()
	items := make([]MenuItem, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	c.mu.RUnlock()

	slices.SortFunc(items, func(a, b MenuItem) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Name, b.Name))
	})
	return items, nil
}

func (c *staticCatalog) Seed(_ context.Context, items []MenuItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range items {
		if _, exists := c.items[item.ID]; !exists {
			c.items[item.ID] = item
		}
	}
	return nil
}
