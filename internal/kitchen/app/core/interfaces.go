package core

import (
	"context"

	"table-order/internal/xpkg/models"
)

type IOrderRepo interface {
	GetOrder(ctx context.Context, id string) (models.Order, error)
	SetItemStatus(ctx context.Context, orderID string, position int, st models.ItemStatus, changedBy string) error
	UpdateOrderStatus(ctx context.Context, id string, to models.OrderStatus, changedBy string, from ...models.OrderStatus) (models.Order, error)
}

// IWorkerRepo tracks which kitchen workers are online.
type IWorkerRepo interface {
	Register(ctx context.Context, name string) error
	Heartbeat(ctx context.Context, name string) error
	AddProcessed(ctx context.Context, name string) error
	SetOffline(ctx context.Context, name string) error
}

type IRabbitMQ interface {
	PushChange(ctx context.Context, ev models.ChangeEvent) error
}
