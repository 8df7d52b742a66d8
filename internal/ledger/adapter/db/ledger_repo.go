package db

import (
	"context"

	xdb "table-order/internal/xpkg/db"
	"table-order/internal/xpkg/models"
)

type LedgerRepo struct {
	db *xdb.DB
}

func NewLedgerRepo(db *xdb.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

func (lr *LedgerRepo) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return xdb.GetOrder(ctx, lr.db.Pool(), id)
}

func (lr *LedgerRepo) GetOrderByTransaction(ctx context.Context, txID string) (models.Order, error) {
	return xdb.GetOrderByTransaction(ctx, lr.db.Pool(), txID)
}

func (lr *LedgerRepo) UpdateOrderStatus(ctx context.Context, id string, to models.OrderStatus, changedBy string, from ...models.OrderStatus) (models.Order, error) {
	return lr.db.UpdateOrderStatus(ctx, id, to, changedBy, from...)
}

func (lr *LedgerRepo) Snapshot(ctx context.Context) (models.Snapshot, error) {
	return lr.db.Snapshot(ctx)
}

func (lr *LedgerRepo) History(ctx context.Context, orderID string) ([]models.StatusLog, error) {
	return xdb.History(ctx, lr.db.Pool(), orderID)
}

func (lr *LedgerRepo) Workers(ctx context.Context) ([]models.Worker, error) {
	if err := lr.db.IsAlive(ctx); err != nil {
		return nil, err
	}
	return xdb.ListWorkers(ctx, lr.db.Pool())
}
