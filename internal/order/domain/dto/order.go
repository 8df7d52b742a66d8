package dto

import (
	"table-order/internal/xpkg/models"
)

type CartItemRequest struct {
	ItemID string `json:"item_id"`
	Delta  int    `json:"delta"`
}

type CheckoutRequest struct {
	TableID string               `json:"table_id"`
	UserID  string               `json:"user_id"`
	Method  models.PaymentMethod `json:"method"`
}

type BillRequest struct {
	UserID string `json:"user_id"`
}

type CartLine struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Qty      int    `json:"qty"`
	Price    int64  `json:"price"`
	Subtotal int64  `json:"subtotal"`
}

type CartResponse struct {
	SessionID string     `json:"session_id"`
	Items     []CartLine `json:"items"`
	Total     int64      `json:"total"`
	Warning   string     `json:"warning,omitempty"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Kind    string   `json:"kind"`
	Dropped []string `json:"dropped,omitempty"`
}
