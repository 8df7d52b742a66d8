package core

import (
	"context"

	"table-order/internal/xpkg/models"
)

type IOrderRepo interface {
	ListMenu(ctx context.Context) ([]models.MenuItem, error)
	UpsertMenu(ctx context.Context, items []models.MenuItem) error
	// PlaceOrder stores the order and decrements stock for each item in one
	// atomic unit. Lack of stock is reported as apperr.ErrInsufficientStock.
	PlaceOrder(ctx context.Context, order models.Order) error
	GetOrder(ctx context.Context, id string) (models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, to models.OrderStatus, changedBy string, from ...models.OrderStatus) (models.Order, error)
}

type IRabbitMQ interface {
	PushOrderPlaced(ctx context.Context, msg models.OrderPlaced) error
	PushChange(ctx context.Context, ev models.ChangeEvent) error
}

// IPaymentChannel starts an external payment for an order and returns the
// URI the customer follows once the channel has accepted it.
type IPaymentChannel interface {
	Initiate(ctx context.Context, order models.Order) (string, error)
}
