package models

import (
	"fmt"
	"time"
)

type PaymentMethod string

const (
	MethodCash PaymentMethod = "CASH"
	MethodUPI  PaymentMethod = "UPI"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodCash || m == MethodUPI
}

type OrderStatus string

const (
	StatusPaymentPending OrderStatus = "payment_pending"
	StatusPending        OrderStatus = "pending"
	StatusServed         OrderStatus = "served"
	StatusBillRequested  OrderStatus = "bill_requested"
	StatusSettled        OrderStatus = "settled"
)

type ItemStatus string

const (
	ItemPending ItemStatus = "pending"
	ItemReady   ItemStatus = "ready"
	ItemServed  ItemStatus = "served"
)

type MenuItem struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Price       int64  `json:"price" yaml:"price"`
	Stock       int    `json:"stock" yaml:"stock"`
	Category    string `json:"category" yaml:"category"`
}

// OrderItem is the copy of a cart line taken at checkout. Only Status
// changes after creation.
type OrderItem struct {
	ItemID string     `json:"item_id"`
	Name   string     `json:"name"`
	Qty    int        `json:"qty"`
	Price  int64      `json:"price"`
	Status ItemStatus `json:"status"`
}

type Payment struct {
	TransactionID string        `json:"transaction_id"`
	Method        PaymentMethod `json:"method"`
}

type Order struct {
	ID        string      `json:"id"`
	TableID   string      `json:"table_id"`
	UserID    string      `json:"user_id"`
	Total     int64       `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	Payment   Payment     `json:"payment"`
	Items     []OrderItem `json:"items"`
}

// Clone returns a copy that shares no memory with o.
func (o Order) Clone() Order {
	if o.Items != nil {
		items := make([]OrderItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}

// Snapshot is the full point-in-time state delivered by the live feed.
type Snapshot struct {
	Menu    []MenuItem `json:"menu"`
	Orders  []Order    `json:"orders"`
	TakenAt time.Time  `json:"taken_at"`
}

// ItemStatusNote is the status log note recorded when one item changes.
func ItemStatusNote(position int, name string, st ItemStatus) string {
	return fmt.Sprintf("item %d %s: %s", position, name, st)
}

type StatusLog struct {
	OrderID   string      `json:"order_id"`
	Status    OrderStatus `json:"status"`
	ChangedBy string      `json:"changed_by"`
	ChangedAt time.Time   `json:"changed_at"`
	Note      string      `json:"note"`
}

// WorkerStaleAfter is how long an online worker may go without a heartbeat
// before it counts as gone. Its name can then be taken over.
const WorkerStaleAfter = 90 * time.Second

// Worker is a kitchen worker as recorded in kitchen_workers.
type Worker struct {
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	OrdersProcessed int       `json:"orders_processed"`
	LastSeen        time.Time `json:"last_seen"`
	CreatedAt       time.Time `json:"created_at"`
}

// Responsive reports whether w is online with a heartbeat inside the stale
// window as of now.
func (w Worker) Responsive(now time.Time) bool {
	return w.Status == "online" && now.Sub(w.LastSeen) <= WorkerStaleAfter
}
