package core

import (
	"context"

	"table-order/internal/xpkg/models"
)

type ILedgerRepo interface {
	GetOrder(ctx context.Context, id string) (models.Order, error)
	GetOrderByTransaction(ctx context.Context, txID string) (models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, to models.OrderStatus, changedBy string, from ...models.OrderStatus) (models.Order, error)
	Snapshot(ctx context.Context) (models.Snapshot, error)
}

type IRabbitMQ interface {
	PushChange(ctx context.Context, ev models.ChangeEvent) error
}

// ITrackingRepo serves the kitchen and audit views.
type ITrackingRepo interface {
	History(ctx context.Context, orderID string) ([]models.StatusLog, error)
	Workers(ctx context.Context) ([]models.Worker, error)
}
