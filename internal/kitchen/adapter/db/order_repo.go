package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	xdb "table-order/internal/xpkg/db"
	"table-order/internal/xpkg/models"

	"github.com/jackc/pgx/v5"
)

type OrderRepo struct {
	db *xdb.DB
}

func NewOrderRepo(db *xdb.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (or *OrderRepo) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return xdb.GetOrder(ctx, or.db.Pool(), id)
}

// SetItemStatus updates one item and records the change, under the order's
// current status, in the status log.
func (or *OrderRepo) SetItemStatus(ctx context.Context, orderID string, position int, st models.ItemStatus, changedBy string) error {
	return or.db.InTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var name string
		err := tx.QueryRow(ctx, `
			UPDATE order_items
			SET status = $3
			WHERE order_id = $1 AND position = $2
			RETURNING name`, orderID, position, st).Scan(&name)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("order %s has no item %d", orderID, position)
		}
		if err != nil {
			return fmt.Errorf("update item status: %w", err)
		}

		var current models.OrderStatus
		if err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&current); err != nil {
			return fmt.Errorf("read order status: %w", err)
		}
		return xdb.InsertStatusLog(ctx, tx, models.StatusLog{
			OrderID:   orderID,
			Status:    current,
			ChangedBy: changedBy,
			ChangedAt: time.Now(),
			Note:      models.ItemStatusNote(position, name, st),
		})
	})
}

func (or *OrderRepo) UpdateOrderStatus(ctx context.Context, id string, to models.OrderStatus, changedBy string, from ...models.OrderStatus) (models.Order, error) {
	return or.db.UpdateOrderStatus(ctx, id, to, changedBy, from...)
}
