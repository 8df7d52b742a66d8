package status

import "table-order/internal/xpkg/models"

type ReadyNotification struct {
	OrderID  string `json:"order_id"`
	TableID  string `json:"table_id"`
	UserID   string `json:"user_id"`
	Index    int    `json:"index"`
	ItemName string `json:"item_name"`
}

// Tracker keeps the previous snapshot of every order it has seen so that
// consecutive snapshots can be diffed. It is not safe for concurrent use.
type Tracker struct {
	last map[string]models.Order
}

func NewTracker() *Tracker {
	return &Tracker{last: make(map[string]models.Order)}
}

// Observe replaces the working copy with orders and returns one notification
// per item that turned ready since the previous snapshot. Orders seen for the
// first time never notify.
func (t *Tracker) Observe(orders []models.Order) []ReadyNotification {
	next := make(map[string]models.Order, len(orders))
	var out []ReadyNotification

	for _, o := range orders {
		if prev, ok := t.last[o.ID]; ok {
			for _, i := range DiffReadiness(prev, o) {
				out = append(out, ReadyNotification{
					OrderID:  o.ID,
					TableID:  o.TableID,
					UserID:   o.UserID,
					Index:    i,
					ItemName: o.Items[i].Name,
				})
			}
		}
		next[o.ID] = o.Clone()
	}

	t.last = next
	return out
}

// Len is the number of orders in the working copy.
func (t *Tracker) Len() int {
	return len(t.last)
}
