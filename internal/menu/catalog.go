package menu

import (
	"errors"
	"fmt"

	"pizzeria-system/internal/config"
	"pizzeria-system/internal/models"
)

// ErrItemNotFound is returned when a menu id does not exist
var ErrItemNotFound = errors.New("menu item not found")

// Entry is one catalog listing: the lookup id plus the item itself
type Entry struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Catalog is the in-memory menu, keyed by item id. Items are loaded
// once at startup and never mutated afterwards.
type Catalog struct {
	items map[string]models.MenuItem
	order []string
}

// NewCatalog returns a catalog seeded with the default menu
func NewCatalog() *Catalog {
	c := &Catalog{items: make(map[string]models.MenuItem)}
	c.add("margherita", models.MenuItem{Name: "Margherita", Price: 30.0})
	c.add("calabresa", models.MenuItem{Name: "Calabresa", Price: 35.0})
	c.add("portuguesa", models.MenuItem{Name: "Portuguesa", Price: 38.0})
	return c
}

// FromConfig returns a catalog built from config entries, falling back
// to the default menu when the config has none.
func FromConfig(entries []config.MenuEntry) *Catalog {
	if len(entries) == 0 {
		return NewCatalog()
	}
	c := &Catalog{items: make(map[string]models.MenuItem)}
	for _, e := range entries {
		c.add(e.ID, models.MenuItem{Name: e.Name, Price: e.Price})
	}
	return c
}

func (c *Catalog) add(id string, item models.MenuItem) {
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = item
}

// Get looks up a menu item by id
func (c *Catalog) Get(id string) (models.MenuItem, error) {
	item, ok := c.items[id]
	if !ok {
		return models.MenuItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item, nil
}

// List returns all catalog entries in insertion order
func (c *Catalog) List() []Entry {
	entries := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		item := c.items[id]
		entries = append(entries, Entry{ID: id, Name: item.Name, Price: item.Price})
	}
	return entries
}
