package models

import "time"

const (
	CollectionOrders = "orders"
	CollectionMenu   = "menu"
)

// ChangeEvent tells feed subscribers that a collection changed. It carries
// no state; subscribers reload the full snapshot.
type ChangeEvent struct {
	Collection string    `json:"collection"`
	OrderID    string    `json:"order_id,omitempty"`
	Kind       string    `json:"kind"`
	At         time.Time `json:"at"`
}

// OrderPlaced is sent to the kitchen after a checkout commits.
type OrderPlaced struct {
	OrderID  string        `json:"order_id"`
	TableID  string        `json:"table_id"`
	Method   PaymentMethod `json:"method"`
	Items    int           `json:"items"`
	PlacedAt time.Time     `json:"placed_at"`
}

// PaymentIntent is the fire-and-forget UPI initiation message.
type PaymentIntent struct {
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	Payee         string `json:"payee"`
	PayeeName     string `json:"payee_name"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	URI           string `json:"uri"`
}

type PromptKind string

const (
	PromptNone         PromptKind = "none"
	PromptUPIRedirect  PromptKind = "upi_redirect"
	PromptPayAtCounter PromptKind = "pay_at_counter"
)

// PaymentPrompt tells the customer how to pay for a placed order.
type PaymentPrompt struct {
	Kind PromptKind `json:"kind"`
	URI  string     `json:"uri,omitempty"`
}
