package db

import (
	"context"
	"fmt"
	"sort"

	"table-order/internal/order/app/core"
	"table-order/internal/xpkg/apperr"
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

func (or *OrderRepo) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	return xdb.ListMenu(ctx, or.db.Pool())
}

func (or *OrderRepo) UpsertMenu(ctx context.Context, items []models.MenuItem) error {
	return or.db.InTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return xdb.UpsertMenu(ctx, tx, items)
	})
}

// PlaceOrder inserts the order, its items and the first status log row and
// decrements stock, all in one transaction. Stock rows are locked in item id
// order so concurrent checkouts cannot deadlock.
func (or *OrderRepo) PlaceOrder(ctx context.Context, order models.Order) error {
	if err := or.db.IsAlive(ctx); err != nil {
		return err
	}

	need := make(map[string]int, len(order.Items))
	for _, it := range order.Items {
		need[it.ItemID] += it.Qty
	}
	ids := make([]string, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return or.db.InTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, id := range ids {
			tag, err := tx.Exec(ctx, `
				UPDATE menu_items
				SET stock = stock - $2
				WHERE id = $1 AND stock >= $2`, id, need[id])
			if err != nil {
				return fmt.Errorf("decrement stock of %s: %w", id, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("item %s: %w", id, apperr.ErrInsufficientStock)
			}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO orders (id, table_id, user_id, total, status, payment_method, transaction_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			order.ID, order.TableID, order.UserID, order.Total, order.Status,
			order.Payment.Method, order.Payment.TransactionID, order.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		batch := &pgx.Batch{}
		for pos, it := range order.Items {
			batch.Queue(`
				INSERT INTO order_items (order_id, position, item_id, name, qty, price, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				order.ID, pos, it.ItemID, it.Name, it.Qty, it.Price, it.Status)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}

		return xdb.InsertStatusLog(ctx, tx, models.StatusLog{
			OrderID:   order.ID,
			Status:    order.Status,
			ChangedBy: core.ServiceName,
			ChangedAt: order.CreatedAt,
			Note:      "order placed",
		})
	})
}

func (or *OrderRepo) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return xdb.GetOrder(ctx, or.db.Pool(), id)
}

func (or *OrderRepo) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return xdb.LoadOrders(ctx, or.db.Pool(), `user_id = $1`, userID)
}

func (or *OrderRepo) UpdateOrderStatus(ctx context.Context, id string, to models.OrderStatus, changedBy string, from ...models.OrderStatus) (models.Order, error) {
	return or.db.UpdateOrderStatus(ctx, id, to, changedBy, from...)
}
