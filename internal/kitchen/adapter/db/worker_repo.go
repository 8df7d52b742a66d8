package db

import (
	"context"
	"fmt"

	"table-order/internal/kitchen/app/core"
	xdb "table-order/internal/xpkg/db"
	"table-order/internal/xpkg/models"
)

type WorkerRepo struct {
	q xdb.Querier
}

func NewWorkerRepo(q xdb.Querier) *WorkerRepo {
	return &WorkerRepo{q: q}
}

// Register marks the worker online, creating it on first start. A name held
// by a worker that is online and still heartbeating is refused; a worker
// that went silent for longer than the stale window is taken over.
func (wr *WorkerRepo) Register(ctx context.Context, name string) error {
	tag, err := wr.q.Exec(ctx, `
		INSERT INTO kitchen_workers (name, status, last_seen)
		VALUES ($1, 'online', now())
		ON CONFLICT (name) DO UPDATE SET
			status = 'online',
			last_seen = now()
		WHERE kitchen_workers.status = 'offline'
			OR kitchen_workers.last_seen < now() - make_interval(secs => $2)`,
		name, models.WorkerStaleAfter.Seconds())
	if err != nil {
		return fmt.Errorf("register worker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", name, core.ErrWorkerOnline)
	}
	return nil
}

func (wr *WorkerRepo) Heartbeat(ctx context.Context, name string) error {
	return wr.exec(ctx, `UPDATE kitchen_workers SET last_seen = now(), status = 'online' WHERE name = $1`, name)
}

func (wr *WorkerRepo) AddProcessed(ctx context.Context, name string) error {
	return wr.exec(ctx, `UPDATE kitchen_workers SET orders_processed = orders_processed + 1, last_seen = now() WHERE name = $1`, name)
}

func (wr *WorkerRepo) SetOffline(ctx context.Context, name string) error {
	return wr.exec(ctx, `UPDATE kitchen_workers SET status = 'offline' WHERE name = $1`, name)
}

func (wr *WorkerRepo) exec(ctx context.Context, q, name string) error {
	tag, err := wr.q.Exec(ctx, q, name)
	if err != nil {
		return fmt.Errorf("failed to execute update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no worker found with name: %s", name)
	}
	return nil
}
