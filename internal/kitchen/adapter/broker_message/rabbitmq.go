package brokermessage

import (
	"context"

	"table-order/internal/xpkg/broker"
	"table-order/internal/xpkg/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQ struct {
	mb *broker.RabbitMQ
}

func New(mb *broker.RabbitMQ) *RabbitMQ {
	return &RabbitMQ{mb: mb}
}

func (r *RabbitMQ) PushChange(ctx context.Context, ev models.ChangeEvent) error {
	return r.mb.PublishChange(ctx, ev)
}

func (r *RabbitMQ) ConsumeOrders(ctx context.Context, workerName string) (<-chan amqp.Delivery, error) {
	return r.mb.Consume(ctx, broker.KitchenQueue, workerName)
}
