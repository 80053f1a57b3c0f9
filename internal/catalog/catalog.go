package catalog

import (
	"fmt"
)

// Item is one manga title in the catalog. Items are immutable once loaded.
type Item struct {
	ID       int      `json:"item_id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Author   string   `json:"author"`
	Year     int      `json:"year"`
	Tags     []string `json:"tags"`
	Synopsis string   `json:"synopsis"`
	ImageURL string   `json:"image_url"`
}

// Rating is one user's score for one item on the 1-5 scale.
type Rating struct {
	UserID int `json:"user_id"`
	ItemID int `json:"item_id"`
	Score  int `json:"rating"`
}

// Catalog is an ordered collection of items. The position of an item is
// assigned at construction and never changes for the lifetime of the catalog;
// the vector space relies on this ordering.
type Catalog struct {
	items []Item
	byID  map[int]int // item id -> position
}

// New builds a catalog from items in the given order.
func New(items []Item) (*Catalog, error) {
	c := &Catalog{
		items: items,
		byID:  make(map[int]int, len(items)),
	}
	for i, it := range items {
		if _, exists := c.byID[it.ID]; exists {
			return nil, fmt.Errorf("duplicate item id %d at row %d", it.ID, i)
		}
		c.byID[it.ID] = i
	}
	return c, nil
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns the items in catalog order. Callers must not modify the slice.
func (c *Catalog) Items() []Item {
	return c.items
}

// At returns the item at the given position.
func (c *Catalog) At(i int) Item {
	return c.items[i]
}

// ByID looks an item up by its id.
func (c *Catalog) ByID(id int) (Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Index returns the catalog position of an item id.
func (c *Catalog) Index(id int) (int, bool) {
	i, ok := c.byID[id]
	return i, ok
}
