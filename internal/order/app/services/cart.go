package services

import (
	"math"
	"sync"

	"table-order/internal/order/app/core"
	"table-order/internal/xpkg/models"
)

type CartEntry struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

// Cart holds the requested quantities of one ordering session. Entries keep
// the order in which items were first added.
type Cart struct {
	mu    sync.Mutex
	qty   map[string]int
	order []string
}

func NewCart() *Cart {
	return &Cart{qty: make(map[string]int)}
}

// Add changes the quantity of itemID by delta. Raising the quantity above
// the catalog stock returns a *core.StaleCatalogWarning and leaves the cart
// as it was. A resulting quantity of zero or less removes the entry.
func (c *Cart) Add(catalog models.Catalog, itemID string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.qty[itemID]
	if delta > 0 {
		// Compared against the remaining headroom so a huge delta cannot
		// overflow the quantity.
		if stock := catalog.Stock(itemID); delta > stock-cur {
			return &core.StaleCatalogWarning{ItemID: itemID, Requested: saturatingAdd(cur, delta), Available: stock}
		}
	}

	newQty := cur + delta

	if newQty <= 0 {
		c.removeLocked(itemID)
		return nil
	}
	if _, ok := c.qty[itemID]; !ok {
		c.order = append(c.order, itemID)
	}
	c.qty[itemID] = newQty
	return nil
}

func saturatingAdd(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

func (c *Cart) removeLocked(itemID string) {
	if _, ok := c.qty[itemID]; !ok {
		return
	}
	delete(c.qty, itemID)
	for i, id := range c.order {
		if id == itemID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cart) Quantity(itemID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.qty[itemID]
}

func (c *Cart) Entries() []CartEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartEntry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, CartEntry{ItemID: id, Qty: c.qty[id]})
	}
	return out
}

// Total prices the cart against catalog. Items missing from the catalog
// contribute nothing.
func (c *Cart) Total(catalog models.Catalog) int64 {
	var total int64
	for _, e := range c.Entries() {
		if it, ok := catalog.Lookup(e.ItemID); ok {
			total += it.Price * int64(e.Qty)
		}
	}
	return total
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Subtract takes the quantities of entries out of the cart. Anything added
// after entries were read stays in the cart.
func (c *Cart) Subtract(entries []CartEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		if left := c.qty[e.ItemID] - e.Qty; left > 0 {
			c.qty[e.ItemID] = left
			continue
		}
		c.removeLocked(e.ItemID)
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.qty = make(map[string]int)
	c.order = nil
}

// Carts maps ordering sessions to their carts.
type Carts struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewCarts() *Carts {
	return &Carts{carts: make(map[string]*Cart)}
}

// Get returns the cart of session, creating an empty one on first use.
func (cs *Carts) Get(session string) *Cart {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.carts[session]
	if !ok {
		c = NewCart()
		cs.carts[session] = c
	}
	return c
}

func (cs *Carts) Drop(session string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.carts, session)
}
