package core

import (
	"context"

	"table-order/internal/xpkg/models"
)

type IRabbitMQ interface {
	Changes(ctx context.Context) (<-chan models.ChangeEvent, error)
}

type ISnapshotRepo interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
}
