// Package memstore is an in-process implementation of the order and menu
// repositories. It gives the services and their tests the same atomic
// checkout semantics as the postgres adapters without a database.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/models"
)

type Store struct {
	mu     sync.Mutex
	menu   map[string]models.MenuItem
	ids    []string
	orders map[string]models.Order
	seq    []string
	log    []models.StatusLog

	// FailPlace makes the next PlaceOrder fail with the given error.
	FailPlace error
	now       func() time.Time
}

func New(menu []models.MenuItem) *Store {
	s := &Store{
		menu:   make(map[string]models.MenuItem),
		orders: make(map[string]models.Order),
		now:    time.Now,
	}
	for _, it := range menu {
		s.putMenu(it)
	}
	return s
}

func (s *Store) putMenu(it models.MenuItem) {
	if _, ok := s.menu[it.ID]; !ok {
		s.ids = append(s.ids, it.ID)
	}
	s.menu[it.ID] = it
}

func (s *Store) ListMenu(_ context.Context) ([]models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.menuLocked(), nil
}

func (s *Store) menuLocked() []models.MenuItem {
	out := make([]models.MenuItem, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.menu[id])
	}
	return out
}

func (s *Store) UpsertMenu(_ context.Context, items []models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		s.putMenu(it)
	}
	return nil
}

// SetPrice changes a menu price. Placed orders keep the price they captured.
func (s *Store) SetPrice(id string, price int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.menu[id]
	it.Price = price
	s.menu[id] = it
}

// PlaceOrder inserts the order and decrements stock for every item, or does
// neither.
func (s *Store) PlaceOrder(_ context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailPlace; err != nil {
		s.FailPlace = nil
		return err
	}
	if _, dup := s.orders[order.ID]; dup {
		return fmt.Errorf("order %s already exists", order.ID)
	}

	need := make(map[string]int, len(order.Items))
	for _, it := range order.Items {
		need[it.ItemID] += it.Qty
	}
	for id, qty := range need {
		mi, ok := s.menu[id]
		if !ok || mi.Stock < qty {
			return fmt.Errorf("item %s: %w", id, apperr.ErrInsufficientStock)
		}
	}
	for id, qty := range need {
		mi := s.menu[id]
		mi.Stock -= qty
		s.menu[id] = mi
	}

	s.orders[order.ID] = order.Clone()
	s.seq = append(s.seq, order.ID)
	s.appendLog(order.ID, order.Status, "order-service", "order placed")
	return nil
}

func (s *Store) GetOrder(_ context.Context, id string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, apperr.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (s *Store) GetOrderByTransaction(_ context.Context, txID string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.seq {
		if o := s.orders[id]; o.Payment.TransactionID == txID {
			return o.Clone(), nil
		}
	}
	return models.Order{}, apperr.ErrOrderNotFound
}

// ListOrders returns orders newest first.
func (s *Store) ListOrders(_ context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ordersLocked(func(models.Order) bool { return true }), nil
}

func (s *Store) ListOrdersByUser(_ context.Context, userID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ordersLocked(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (s *Store) ordersLocked(keep func(models.Order) bool) []models.Order {
	out := make([]models.Order, 0, len(s.seq))
	for _, id := range s.seq {
		if o := s.orders[id]; keep(o) {
			out = append(out, o.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) Snapshot(_ context.Context) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Snapshot{
		Menu:    s.menuLocked(),
		Orders:  s.ordersLocked(func(models.Order) bool { return true }),
		TakenAt: s.now(),
	}, nil
}

// UpdateOrderStatus sets the order status when the current status is one of
// from (or unconditionally when from is empty) and returns the updated order.
func (s *Store) UpdateOrderStatus(_ context.Context, id string, to models.OrderStatus, changedBy string, from ...models.OrderStatus) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, apperr.ErrOrderNotFound
	}
	if len(from) > 0 && !slices.Contains(from, o.Status) {
		return o.Clone(), fmt.Errorf("order %s is %s: %w", id, o.Status, apperr.ErrStatusConflict)
	}
	if o.Status != to {
		o.Status = to
		s.orders[id] = o
		s.appendLog(id, to, changedBy, "")
	}
	return o.Clone(), nil
}

func (s *Store) SetItemStatus(_ context.Context, orderID string, position int, st models.ItemStatus, changedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return apperr.ErrOrderNotFound
	}
	if position < 0 || position >= len(o.Items) {
		return fmt.Errorf("order %s has no item %d", orderID, position)
	}
	o = o.Clone()
	o.Items[position].Status = st
	s.orders[orderID] = o
	s.appendLog(orderID, o.Status, changedBy, models.ItemStatusNote(position, o.Items[position].Name, st))
	return nil
}

// History returns the status log of one order, oldest first.
func (s *Store) History(orderID string) []models.StatusLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.StatusLog
	for _, l := range s.log {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out
}

func (s *Store) appendLog(orderID string, st models.OrderStatus, by, note string) {
	s.log = append(s.log, models.StatusLog{
		OrderID:   orderID,
		Status:    st,
		ChangedBy: by,
		ChangedAt: s.now(),
		Note:      note,
	})
}
