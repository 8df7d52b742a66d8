package brokermessage

import (
	"context"

	"table-order/internal/xpkg/broker"
	"table-order/internal/xpkg/models"
)

// RabbitMQ publishes order service messages over the shared connection.
type RabbitMQ struct {
	mb *broker.RabbitMQ
}

func New(mb *broker.RabbitMQ) *RabbitMQ {
	return &RabbitMQ{mb: mb}
}

func (r *RabbitMQ) PushOrderPlaced(ctx context.Context, msg models.OrderPlaced) error {
	return r.mb.Publish(ctx, broker.OrdersExchange, broker.KitchenRoutingKey(msg.Method), msg)
}

func (r *RabbitMQ) PushChange(ctx context.Context, ev models.ChangeEvent) error {
	return r.mb.PublishChange(ctx, ev)
}
