package brokermessage

import (
	"context"

	"table-order/internal/xpkg/broker"
	"table-order/internal/xpkg/models"
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

// Changes subscribes to the change fanout.
func (r *RabbitMQ) Changes(ctx context.Context) (<-chan models.ChangeEvent, error) {
	return r.mb.SubscribeChanges(ctx)
}
