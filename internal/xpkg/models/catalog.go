package models

// Catalog is an immutable view over one menu snapshot.
type Catalog struct {
	items map[string]MenuItem
	order []string
}

func NewCatalog(items []MenuItem) Catalog {
	c := Catalog{
		items: make(map[string]MenuItem, len(items)),
		order: make([]string, 0, len(items)),
	}
	for _, it := range items {
		if _, dup := c.items[it.ID]; !dup {
			c.order = append(c.order, it.ID)
		}
		c.items[it.ID] = it
	}
	return c
}

func (c Catalog) Lookup(id string) (MenuItem, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Stock returns 0 for unknown items.
func (c Catalog) Stock(id string) int {
	return c.items[id].Stock
}

// Items returns the menu in its original order.
func (c Catalog) Items() []MenuItem {
	out := make([]MenuItem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c Catalog) Len() int {
	return len(c.order)
}
